package gateway

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openclaw/admin-ui/pkg/session"
)

func TestFormatTokens(t *testing.T) {
	tests := map[int64]string{
		0:         "0",
		999:       "999",
		1000:      "1.0K",
		12_345:    "12.3K",
		999_999:   "1000.0K",
		1_000_000: "1.0M",
		2_560_000: "2.6M",
	}
	for in, want := range tests {
		if got := FormatTokens(in); got != want {
			t.Errorf("FormatTokens(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestStats(t *testing.T) {
	root := t.TempDir()
	sessions := filepath.Join(root, "sessions")
	os.MkdirAll(sessions, 0755)
	os.WriteFile(filepath.Join(sessions, "sessions.json"), []byte(`{
		"a": {"totalTokens": 1500000, "model": "sonnet"},
		"b": {"totalTokens": 500000}
	}`), 0644)

	logFile := filepath.Join(root, "gateway.log")
	os.WriteFile(logFile, []byte(strings.Join([]string{
		"2026-02-03T01:00:00.000Z [imessage] delivered to +1",
		"2026-02-03T02:00:00.000Z [imessage] delivered to +2",
		"2026-02-02T23:00:00.000Z [imessage] delivered to +3",
		"2026-02-03T03:00:00.000Z [gateway] started",
		"",
	}, "\n")), 0644)

	errFile := filepath.Join(root, "gateway.err.log")
	os.WriteFile(errFile, []byte("2026-02-03T01:00:00.000Z boom\n    at x\n2026-02-03T01:00:01.000Z boom\n"), 0644)

	s := New(logFile, errFile, session.NewManager(sessions))
	st := s.Stats(time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC))

	want := Stats{TotalSessions: 2, TotalTokens: 2_000_000, FormattedTokens: "2.0M", DeliveriesToday: 2, ErrorsToday: 2, Model: "sonnet"}
	if st != want {
		t.Errorf("got %+v\nwant %+v", st, want)
	}

	if ev := s.Activity(2); len(ev) != 2 || ev[0].Message != "started" || ev[1].Category != "delivery" {
		t.Errorf("activity = %+v", ev)
	}
	if errs := s.Errors(10); len(errs) != 1 || errs[0].Count != 2 {
		t.Errorf("errors = %+v", errs)
	}
}

func TestStatsMissingFiles(t *testing.T) {
	root := t.TempDir()
	s := New(filepath.Join(root, "a.log"), filepath.Join(root, "b.log"), session.NewManager(root))
	st := s.Stats(time.Now())
	if st.TotalSessions != 0 || st.FormattedTokens != "0" || st.DeliveriesToday != 0 {
		t.Errorf("got %+v", st)
	}
	if got := s.Activity(10); got == nil || len(got) != 0 {
		t.Errorf("activity = %v", got)
	}
}
