// Package services reports and controls the launchd agents that make up an
// OpenClaw install.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/openclaw/admin-ui/pkg/runner"
)

const (
	launchctl      = "launchctl"
	commandTimeout = 30 * time.Second
	restartPause   = time.Second
)

var (
	ErrUnknownService = errors.New("unknown service")
	ErrUnknownAction  = errors.New("invalid action. Use: start, stop, restart")
)

// Status is the state of one agent as launchd reports it.
type Status struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	PID     *int   `json:"pid"`
	Status  string `json:"status"`
	Running bool   `json:"running"`
}

// ActionResult is returned after a start, stop or restart.
type ActionResult struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Action  string `json:"action"`
	Label   string `json:"label"`
	Stdout  string `json:"stdout"`
	Stderr  string `json:"stderr"`
}

type listing struct {
	pid    string
	status string
}

// Manager drives launchctl for a configured set of services. Entries may be
// glob patterns such as "ai.openclaw.*".
type Manager struct {
	Names  []string
	Runner runner.Runner
	UID    int
	Logger *slog.Logger

	patterns []glob.Glob
}

// NewManager compiles the configured names. Entries that are not valid
// patterns are matched literally.
func NewManager(names []string, r runner.Runner, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{Names: names, Runner: r, UID: os.Getuid(), Logger: logger}
	for _, n := range names {
		if g, err := glob.Compile(n, '.'); err == nil {
			m.patterns = append(m.patterns, g)
		} else {
			m.patterns = append(m.patterns, literal(n))
		}
	}
	return m
}

type literal string

func (l literal) Match(s string) bool { return string(l) == s }

func isPattern(name string) bool {
	return strings.ContainsAny(name, "*?[{")
}

// Label is the short display name: the last dot-separated segment.
func Label(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

// Known reports whether name is one of the configured services or matches
// one of the configured patterns.
func (m *Manager) Known(name string) bool {
	for _, p := range m.patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}

// List returns the status of every configured service. Patterns expand to
// the loaded agents they match, in label order.
func (m *Manager) List(ctx context.Context) ([]Status, error) {
	res, err := m.Runner.Run(ctx, commandTimeout, launchctl, "list")
	if err != nil {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("launchctl list failed: %s", msg)
	}
	loaded := ParseList(res.Stdout)

	out := make([]Status, 0, len(m.Names))
	for i, name := range m.Names {
		if !isPattern(name) {
			out = append(out, status(name, loaded))
			continue
		}
		var matched []string
		for label := range loaded {
			if m.patterns[i].Match(label) {
				matched = append(matched, label)
			}
		}
		sort.Strings(matched)
		for _, label := range matched {
			out = append(out, status(label, loaded))
		}
	}
	return out, nil
}

// ParseList reads `launchctl list` output (PID, status and label separated
// by tabs) keyed by label.
func ParseList(out string) map[string]listing {
	loaded := make(map[string]listing)
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(line, "\t")
		if len(parts) < 3 {
			continue
		}
		loaded[strings.TrimSpace(parts[2])] = listing{pid: strings.TrimSpace(parts[0]), status: strings.TrimSpace(parts[1])}
	}
	return loaded
}

func status(name string, loaded map[string]listing) Status {
	s := Status{Name: name, Label: Label(name), Status: "not loaded"}
	l, ok := loaded[name]
	if !ok {
		return s
	}
	if pid, err := strconv.Atoi(l.pid); err == nil {
		s.PID = &pid
		s.Running = true
		s.Status = "running"
		return s
	}
	s.Status = "exit(" + l.status + ")"
	return s
}

// Do performs action on the named service.
func (m *Manager) Do(ctx context.Context, name, action string) (ActionResult, error) {
	if !m.Known(name) {
		return ActionResult{}, ErrUnknownService
	}
	target := fmt.Sprintf("gui/%d/%s", m.UID, name)

	var (
		res runner.Result
		err error
	)
	switch action {
	case "start":
		res, err = m.start(ctx, target)
	case "stop":
		res, err = m.stop(ctx, target)
	case "restart":
		res, err = m.stop(ctx, target)
		if err == nil {
			select {
			case <-ctx.Done():
				return ActionResult{}, ctx.Err()
			case <-time.After(restartPause):
			}
			var started runner.Result
			started, err = m.start(ctx, target)
			res.Stdout += started.Stdout
			res.Stderr += started.Stderr
		}
	default:
		return ActionResult{}, ErrUnknownAction
	}

	m.Logger.Info("service action", "service", name, "action", action, "error", err)
	result := ActionResult{OK: err == nil, Service: name, Action: action, Label: Label(name), Stdout: res.Stdout, Stderr: res.Stderr}
	if err != nil {
		return result, runner.Failed(err, res)
	}
	return result, nil
}

func (m *Manager) start(ctx context.Context, target string) (runner.Result, error) {
	return m.Runner.Run(ctx, commandTimeout, launchctl, "kickstart", target)
}

func (m *Manager) stop(ctx context.Context, target string) (runner.Result, error) {
	return m.Runner.Run(ctx, commandTimeout, launchctl, "kill", "SIGTERM", target)
}
