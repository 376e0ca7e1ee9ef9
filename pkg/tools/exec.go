package tools

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/openclaw/admin-ui/pkg/runner"
)

// RunTimeout bounds a tool started from the dashboard.
const RunTimeout = 30 * time.Second

// ExecTool runs scripts from the registry. Arguments are split on
// whitespace and passed as argv; no shell is involved.
type ExecTool struct {
	Registry *Registry
	Runner   runner.Runner
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewExecTool creates an ExecTool with the default timeout.
func NewExecTool(reg *Registry, r runner.Runner, logger *slog.Logger) *ExecTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecTool{Registry: reg, Runner: r, Timeout: RunTimeout, Logger: logger}
}

// Execute runs name with args. A failed run returns a *runner.CommandError
// carrying the captured output.
func (t *ExecTool) Execute(ctx context.Context, name, args string) (runner.Result, error) {
	path, err := t.Registry.executable(name)
	if err != nil {
		return runner.Result{}, err
	}

	argv := strings.Fields(args)
	t.Logger.Info("running tool", "tool", name, "args", argv)
	res, err := t.Runner.Run(ctx, t.Timeout, path, argv...)
	if err != nil {
		return res, runner.Failed(err, res)
	}
	return res, nil
}
