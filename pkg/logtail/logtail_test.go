package logtail

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadTail(t *testing.T) {
	content := "first line\nsecond line\nthird line\n"

	t.Run("small file returned whole", func(t *testing.T) {
		path := writeFile(t, content)
		if got := ReadTail(path, 1000); got != content {
			t.Errorf("got %q", got)
		}
	})

	t.Run("exact budget returned whole", func(t *testing.T) {
		path := writeFile(t, content)
		if got := ReadTail(path, int64(len(content))); got != content {
			t.Errorf("got %q", got)
		}
	})

	t.Run("partial first line dropped", func(t *testing.T) {
		path := writeFile(t, content)
		// last 15 bytes are "ine\nthird line\n"
		got := ReadTail(path, 15)
		if got != "third line\n" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("never starts with a fragment", func(t *testing.T) {
		path := writeFile(t, content)
		for budget := int64(1); budget < int64(len(content)); budget++ {
			got := ReadTail(path, budget)
			if got == "" {
				continue
			}
			first := strings.SplitN(got, "\n", 2)[0]
			if first != "second line" && first != "third line" && first != "" {
				t.Errorf("budget %d: first line %q is a fragment", budget, first)
			}
		}
	})

	t.Run("no newline in window", func(t *testing.T) {
		path := writeFile(t, strings.Repeat("x", 100))
		if got := ReadTail(path, 10); got != "" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if got := ReadTail(filepath.Join(t.TempDir(), "nope.log"), 100); got != "" {
			t.Errorf("got %q", got)
		}
	})
}

func TestParseLine(t *testing.T) {
	long := strings.Repeat("x", 501)
	tests := []struct {
		name     string
		line     string
		ok       bool
		sub      string
		msg      string
		category string
	}{
		{"no timestamp", "continuation of something", false, "", "", ""},
		{"seconds only", "2026-02-03T05:57:42Z [gateway] up", false, "", "", ""},
		{"subsystem", "2026-02-03T05:57:42.855Z [gateway] listening on 18789", true, "gateway", "listening on 18789", CategorySystem},
		{"no subsystem", "2026-02-03T05:57:42.855Z started", true, "", "started", CategorySystem},
		{"imessage subsystem", "2026-02-03T05:57:42.855Z [imessage] queued", true, "imessage", "queued", CategoryDelivery},
		{"delivered text", "2026-02-03T05:57:42.855Z Message DELIVERED to +1555", true, "", "Message DELIVERED to +1555", CategoryDelivery},
		{"browser by text", "2026-02-03T05:57:42.855Z [tools] launching Chrome", true, "tools", "launching Chrome", CategoryBrowser},
		{"auth", "2026-02-03T05:57:42.855Z [gateway] token refreshed", true, "gateway", "token refreshed", CategoryAuth},
		{"delivery beats auth", "2026-02-03T05:57:42.855Z [imessage] auth ok, sent", true, "imessage", "auth ok, sent", CategoryDelivery},
		{"long untagged dropped", "2026-02-03T05:57:42.855Z " + long, false, "", "", ""},
		{"long tagged kept", "2026-02-03T05:57:42.855Z [agent] " + long, true, "agent", long, CategorySystem},
		{"exactly 500 untagged kept", "2026-02-03T05:57:42.855Z " + strings.Repeat("y", 500), true, "", strings.Repeat("y", 500), CategorySystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := ParseLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if ev.Subsystem != tt.sub || ev.Message != tt.msg || ev.Category != tt.category {
				t.Errorf("got %+v", ev)
			}
			if ev.Timestamp != "2026-02-03T05:57:42.855Z" {
				t.Errorf("timestamp = %q", ev.Timestamp)
			}
		})
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if c := Categorize("imessage", "auth token sent"); c != CategoryDelivery {
			t.Fatalf("got %q", c)
		}
	}
}

func TestMatchLineOrder(t *testing.T) {
	never := func(string) (LogEvent, bool) { return LogEvent{}, false }
	always := func(line string) (LogEvent, bool) { return LogEvent{Message: "fallback"}, true }

	ev, ok := MatchLine("2026-02-03T05:57:42.855Z [x] real", never, GatewayLineMatcher, always)
	if !ok || ev.Message != "real" {
		t.Errorf("got %+v, %v", ev, ok)
	}
	ev, ok = MatchLine("garbage", never, GatewayLineMatcher, always)
	if !ok || ev.Message != "fallback" {
		t.Errorf("got %+v, %v", ev, ok)
	}
}

func TestActivityNewestFirst(t *testing.T) {
	text := strings.Join([]string{
		"2026-02-03T01:00:00.000Z [a] one",
		"raw dump line",
		"2026-02-03T02:00:00.000Z [a] two",
		"2026-02-03T03:00:00.000Z [a] three",
		"",
	}, "\n")
	got := Activity(text, 2)
	if len(got) != 2 || got[0].Message != "three" || got[1].Message != "two" {
		t.Errorf("got %+v", got)
	}
}

func TestParseErrors(t *testing.T) {
	text := strings.Join([]string{
		"2026-02-03T01:00:00.000Z [gw] boom",
		"2026-02-03T02:00:00.000Z [gw] socket closed",
		"    at Socket.emit (node:events:1)",
		"2026-02-03T03:00:00.000Z [gw] socket closed",
		"  Error: ECONNRESET",
		"2026-02-03T04:00:00.000Z [gw] socket closed",
		"not a log line",
	}, "\n")

	got := ParseErrors(text, 50)
	if len(got) != 2 {
		t.Fatalf("got %d entries: %+v", len(got), got)
	}
	if got[0].Message != "socket closed" || got[0].Count != 3 {
		t.Errorf("first = %+v", got[0])
	}
	if got[0].Timestamp != "2026-02-03T04:00:00.000Z" {
		t.Errorf("dedupe should keep newest timestamp, got %s", got[0].Timestamp)
	}
	if got[1].Message != "boom" || got[1].Count != 1 {
		t.Errorf("second = %+v", got[1])
	}

	if got := ParseErrors(text, 1); len(got) != 1 || got[0].Message != "socket closed" {
		t.Errorf("limit 1 = %+v", got)
	}
}

func TestParseErrorsLongLinesKept(t *testing.T) {
	long := strings.Repeat("z", 800)
	got := ParseErrors("2026-02-03T01:00:00.000Z "+long, 10)
	if len(got) != 1 || got[0].Message != long {
		t.Errorf("got %+v", got)
	}
}

func TestParseWatchdogLine(t *testing.T) {
	wl, ok := ParseWatchdogLine("2026-02-07 20:27:21.227 [INFO] run abc stalled")
	if !ok || wl.Level != "INFO" || wl.Message != "run abc stalled" || wl.Timestamp != "2026-02-07 20:27:21.227" {
		t.Errorf("got %+v %v", wl, ok)
	}
	if _, ok := ParseWatchdogLine("2026-02-07T20:27:21.227Z [INFO] x"); ok {
		t.Error("ISO timestamp should not match")
	}
	got := ParseWatchdogLog([]string{"junk", "2026-02-07 20:27:21.227 [WARN] w"})
	if len(got) != 1 || got[0].Level != "WARN" {
		t.Errorf("got %+v", got)
	}
}

func TestCountToday(t *testing.T) {
	text := "2026-02-03T01:00:00.000Z delivered\n2026-02-02T01:00:00.000Z delivered\n2026-02-03T02:00:00.000Z queued\n"
	if n := CountToday(text, "2026-02-03", "delivered"); n != 1 {
		t.Errorf("deliveries = %d", n)
	}
	if n := CountToday(text, "2026-02-03", ""); n != 2 {
		t.Errorf("all = %d", n)
	}
}

func TestFollowerDrain(t *testing.T) {
	path := writeFile(t, "2026-02-03T01:00:00.000Z [a] old\n")
	f := NewFollower(path, nil)

	fh, _ := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	fh.WriteString("2026-02-03T02:00:00.000Z [a] new\n2026-02-03T03:00:00.000Z [a] partial")
	fh.Close()

	got := f.drain()
	if len(got) != 1 || got[0].Message != "new" {
		t.Fatalf("got %+v", got)
	}

	fh, _ = os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	fh.WriteString(" done\n")
	fh.Close()

	got = f.drain()
	if len(got) != 1 || got[0].Message != "partial done" {
		t.Errorf("got %+v", got)
	}
}

func TestFollowerRunEmits(t *testing.T) {
	path := writeFile(t, "")
	f := NewFollower(path, nil)
	f.Debounce = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan LogEvent, 1)
	ready := make(chan struct{})
	go func() {
		close(ready)
		f.Run(ctx, func(ev LogEvent) {
			select {
			case got <- ev:
			default:
			}
		})
	}()
	<-ready

	// The watcher may not be registered yet; keep appending until it fires.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case ev := <-got:
			if ev.Subsystem != "imessage" {
				t.Errorf("got %+v", ev)
			}
			return
		case <-tick.C:
			fh, _ := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
			fh.WriteString("2026-02-03T02:00:00.000Z [imessage] hello\n")
			fh.Close()
		case <-ctx.Done():
			t.Fatal("no event before timeout")
		}
	}
}
