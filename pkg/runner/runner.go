// Package runner executes external programs (the openclaw CLI, launchctl,
// scripts in the bin dir) with a timeout and without a shell.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	ErrTimeout     = errors.New("command timed out")
	ErrCircuitOpen = errors.New("command circuit breaker is open")
)

var commandRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "adminui_command_runs_total",
	Help: "External command invocations by outcome.",
}, []string{"command", "outcome"})

// Result is the captured output of one command.
type Result struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"-"`
}

// CommandError carries the output of a failed command.
type CommandError struct {
	Err    error
	Stdout string
	Stderr string
}

func (e *CommandError) Error() string { return e.Err.Error() }
func (e *CommandError) Unwrap() error { return e.Err }

// Failed wraps err with the output captured in res.
func Failed(err error, res Result) error {
	return &CommandError{Err: err, Stdout: res.Stdout, Stderr: res.Stderr}
}

// Runner runs name with args. A non-zero exit is reported as an error that
// wraps *exec.ExitError, with the output still filled in.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error)
}

// ExecRunner runs real processes. Each program gets its own circuit breaker
// that opens after repeated launch failures or timeouts.
type ExecRunner struct {
	Logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// New returns an ExecRunner logging to logger.
func New(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{Logger: logger, breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

func (r *ExecRunner) breaker(name string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := r.breakers[name]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// The program ran; a non-zero exit is its answer, not an outage.
		IsSuccessful: func(err error) bool {
			var exitErr *exec.ExitError
			return err == nil || errors.As(err, &exitErr)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.Logger.Warn("command breaker state changed", "command", name, "from", from.String(), "to", to.String())
		},
	})
	r.breakers[name] = cb
	return cb
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	label := filepath.Base(name)
	var res Result

	_, err := r.breaker(label).Execute(func() (any, error) {
		var err error
		res, err = run(ctx, timeout, name, args...)
		return nil, err
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		commandRuns.WithLabelValues(label, "rejected").Inc()
		return res, fmt.Errorf("%s: %w", label, ErrCircuitOpen)
	case errors.Is(err, ErrTimeout):
		commandRuns.WithLabelValues(label, "timeout").Inc()
	case err != nil:
		commandRuns.WithLabelValues(label, "error").Inc()
	default:
		commandRuns.WithLabelValues(label, "ok").Inc()
	}

	r.Logger.Debug("command finished", "command", label, "exit", res.ExitCode, "duration", res.Duration, "error", err)
	return res, err
}

func run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() == context.DeadlineExceeded {
		return res, fmt.Errorf("%s after %s: %w", filepath.Base(name), timeout, ErrTimeout)
	}
	if err != nil {
		return res, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return res, nil
}
