package runner

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"
	"time"
)

func skipWithoutShellTools(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs POSIX tools")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	skipWithoutShellTools(t)
	r := New(nil)

	res, err := r.Run(context.Background(), 5*time.Second, "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stdout != "out\n" || res.Stderr != "err\n" || res.ExitCode != 0 {
		t.Errorf("got %+v", res)
	}
}

func TestExecRunnerArgsNotShellExpanded(t *testing.T) {
	skipWithoutShellTools(t)
	r := New(nil)

	res, err := r.Run(context.Background(), 5*time.Second, "echo", "it's $HOME; `id`")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stdout != "it's $HOME; `id`\n" {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestExecRunnerExitError(t *testing.T) {
	skipWithoutShellTools(t)
	r := New(nil)

	res, err := r.Run(context.Background(), 5*time.Second, "sh", "-c", "echo nope >&2; exit 3")
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want ExitError", err)
	}
	if res.ExitCode != 3 || res.Stderr != "nope\n" {
		t.Errorf("got %+v", res)
	}

	// Exit failures do not trip the breaker.
	for i := 0; i < 5; i++ {
		r.Run(context.Background(), 5*time.Second, "sh", "-c", "exit 1")
	}
	if _, err := r.Run(context.Background(), 5*time.Second, "sh", "-c", "true"); err != nil {
		t.Errorf("breaker tripped on exit codes: %v", err)
	}
}

func TestExecRunnerTimeout(t *testing.T) {
	skipWithoutShellTools(t)
	r := New(nil)

	_, err := r.Run(context.Background(), 50*time.Millisecond, "sleep", "5")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestExecRunnerBreakerOpensOnMissingBinary(t *testing.T) {
	r := New(nil)
	name := "/nonexistent/adminui-test-binary"

	for i := 0; i < 3; i++ {
		if _, err := r.Run(context.Background(), time.Second, name); err == nil {
			t.Fatal("expected launch failure")
		}
	}
	_, err := r.Run(context.Background(), time.Second, name)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestFakeRecordsCalls(t *testing.T) {
	f := &Fake{Respond: func(c Call) (Result, error) {
		return Result{Stdout: c.Command()}, nil
	}}
	res, _ := f.Run(context.Background(), time.Second, "openclaw", "cron", "run", "x")
	if res.Stdout != "openclaw cron run x" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if calls := f.Calls(); len(calls) != 1 || calls[0].Timeout != time.Second {
		t.Errorf("calls = %+v", calls)
	}
}
