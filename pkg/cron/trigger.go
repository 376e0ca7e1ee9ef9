package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/openclaw/admin-ui/pkg/runner"
)

// Timeouts for the openclaw CLI calls made when a job is run by hand.
const (
	AgentTurnTimeout = 310 * time.Second
	AgentCLITimeout  = 300 // seconds, passed to `openclaw agent --timeout`
	SendTimeout      = 15 * time.Second
	CronRunTimeout   = 120 * time.Second
)

var ErrNoText = errors.New("agent returned no text to deliver")

// TriggerResult is the outcome of a manual run.
type TriggerResult struct {
	OK     bool   `json:"ok"`
	Text   string `json:"text,omitempty"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr,omitempty"`
}

// Trigger runs jobs on demand through the openclaw CLI.
type Trigger struct {
	Runner runner.Runner
	Bin    string
	Logger *slog.Logger
}

// NewTrigger returns a Trigger invoking bin (usually "openclaw").
func NewTrigger(r runner.Runner, bin string, logger *slog.Logger) *Trigger {
	if bin == "" {
		bin = "openclaw"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{Runner: r, Bin: bin, Logger: logger}
}

// Run executes job now. Agent turns go straight to `openclaw agent`; when the
// job names a delivery target the agent only composes the text and delivery
// is done with `openclaw message send`. Other jobs use `openclaw cron run`.
func (t *Trigger) Run(ctx context.Context, job CronJob) (TriggerResult, error) {
	if job.Payload.Kind == PayloadAgentTurn && job.Payload.Message != "" {
		return t.agentTurn(ctx, job)
	}

	t.Logger.Info("forcing cron run", "job", job.ID)
	res, err := t.Runner.Run(ctx, CronRunTimeout, t.Bin, "cron", "run", job.ID, "--force")
	if err != nil && !strings.Contains(res.Stderr, "gateway timeout") {
		return TriggerResult{}, runner.Failed(err, res)
	}
	return TriggerResult{OK: true, Stdout: res.Stdout, Stderr: res.Stderr}, nil
}

func (t *Trigger) agentTurn(ctx context.Context, job CronJob) (TriggerResult, error) {
	instruction := job.Payload.Message
	deliver := job.Payload.Delivers()
	if deliver {
		instruction = ComposeOnly(instruction)
	}

	t.Logger.Info("running agent turn", "job", job.ID, "agent", job.Agent(), "deliver", deliver)
	res, err := t.Runner.Run(ctx, AgentTurnTimeout, t.Bin,
		"agent", "--agent", job.Agent(), "--message", instruction, "--json", "--timeout", strconv.Itoa(AgentCLITimeout))
	if err != nil {
		return TriggerResult{}, runner.Failed(err, res)
	}

	text := agentText(res.Stdout)
	if !deliver {
		if text == "" {
			text = "(agent handled delivery)"
		}
		return TriggerResult{OK: true, Text: text, Stdout: res.Stdout}, nil
	}
	if text == "" {
		return TriggerResult{}, ErrNoText
	}

	sent, err := t.Runner.Run(ctx, SendTimeout, t.Bin,
		"message", "send", "--channel", job.Payload.Channel, "--target", job.Payload.To, "--message", text)
	if err != nil {
		return TriggerResult{}, runner.Failed(err, sent)
	}
	return TriggerResult{OK: true, Text: text, Stdout: sent.Stdout}, nil
}

var (
	textWordRe = regexp.MustCompile(`(?i)\btext\b`)
	sendWordRe = regexp.MustCompile(`(?i)\bsend\b`)
)

// ComposeOnly rewrites an instruction so the agent writes the message
// instead of sending it.
func ComposeOnly(instruction string) string {
	instruction = replaceFirst(textWordRe, instruction, "Compose a message for")
	instruction = replaceFirst(sendWordRe, instruction, "Write a message for")
	return instruction + " Do not try to send it, just write the message text."
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

// agentText pulls result.payloads[0].text out of `openclaw agent --json`.
// Non-JSON output yields "".
func agentText(stdout string) string {
	var out struct {
		Result struct {
			Payloads []struct {
				Text string `json:"text"`
			} `json:"payloads"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		return ""
	}
	if len(out.Result.Payloads) == 0 {
		return ""
	}
	return out.Result.Payloads[0].Text
}
