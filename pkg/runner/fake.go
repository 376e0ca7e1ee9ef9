package runner

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Call records one invocation seen by Fake.
type Call struct {
	Timeout time.Duration
	Name    string
	Args    []string
}

// Command renders the call as a single space-joined string.
func (c Call) Command() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Fake is a Runner for tests. Respond picks the result per call; without it
// every call succeeds with empty output.
type Fake struct {
	Respond func(c Call) (Result, error)

	mu    sync.Mutex
	calls []Call
}

// Run implements Runner.
func (f *Fake) Run(_ context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	c := Call{Timeout: timeout, Name: name, Args: append([]string(nil), args...)}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	if f.Respond == nil {
		return Result{}, nil
	}
	return f.Respond(c)
}

// Calls returns a copy of the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
