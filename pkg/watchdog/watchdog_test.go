package watchdog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"
)

const (
	runA    = "aaaa-1111"
	runB    = "bbbb-2222"
	runC    = "cccc-3333"
	session = "5e55-0000"
)

func startLine(run, at, channel string) string {
	return fmt.Sprintf(`{"0":"agent","1":"embedded run start: runId=%s sessionId=%s provider=x messageChannel=%s","time":"%s"}`, run, session, channel, at)
}

func doneLine(run, at string, ms int, aborted bool) string {
	return fmt.Sprintf(`{"1":"embedded run done: runId=%s sessionId=%s durationMs=%d aborted=%t","time":"%s"}`, run, session, ms, aborted, at)
}

func TestReconstructRuns(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	log := strings.Join([]string{
		startLine(runA, "2026-02-07T10:00:00.000Z", "imessage"),
		`not json at all`,
		`{"1": 42, "time": "2026-02-07T10:00:01.000Z"}`,
		startLine(runB, "2026-02-07T11:00:00.000Z", "telegram"),
		doneLine(runA, "2026-02-07T10:00:05.000Z", 5000, false),
		startLine(runC, "2026-02-07T11:30:00.000Z", "imessage"),
		doneLine(runC, "2026-02-07T11:31:00.000Z", 60000, true),
		doneLine("dead-beef", "2026-02-07T11:32:00.000Z", 1, false),
		"",
	}, "\n")

	runs := ReconstructRuns(strings.NewReader(log), now, 50)
	if len(runs) != 3 {
		t.Fatalf("got %d runs: %+v", len(runs), runs)
	}

	c, b, a := runs[0], runs[1], runs[2]
	if c.RunID != runC || c.Status != StatusAborted || *c.DurationMs != 60000 || !*c.Aborted {
		t.Errorf("C = %+v", c)
	}
	if b.RunID != runB || b.Status != StatusRunning || b.ElapsedMs == nil || *b.ElapsedMs != time.Hour.Milliseconds() || b.MessageChannel != "telegram" {
		t.Errorf("B = %+v", b)
	}
	if b.CompletedAt != "" || b.DurationMs != nil {
		t.Errorf("running run has completion fields: %+v", b)
	}
	if a.RunID != runA || a.Status != StatusCompleted || *a.DurationMs != 5000 || a.CompletedAt != "2026-02-07T10:00:05.000Z" {
		t.Errorf("A = %+v", a)
	}

	limited := ReconstructRuns(strings.NewReader(log), now, 1)
	if len(limited) != 1 || limited[0].RunID != runC {
		t.Errorf("limited = %+v", limited)
	}
}

func TestReconstructRunsIdempotent(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	log := startLine(runA, "2026-02-07T10:00:00.000Z", "imessage") + "\n" + doneLine(runA, "2026-02-07T10:00:01.000Z", 1000, false)

	first := ReconstructRuns(strings.NewReader(log), now, 50)
	second := ReconstructRuns(strings.NewReader(log), now, 50)
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Errorf("first %+v != second %+v", first, second)
	}
}

func TestReconstructRunsUnparseableStart(t *testing.T) {
	log := startLine(runA, "yesterday-ish", "imessage")
	runs := ReconstructRuns(strings.NewReader(log), time.Now(), 50)
	if len(runs) != 1 || runs[0].ElapsedMs != nil {
		t.Errorf("runs = %+v", runs)
	}
}

func TestReconstructRunsRestartedRun(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	log := strings.Join([]string{
		startLine(runA, "2026-02-07T10:00:00.000Z", "imessage"),
		doneLine(runA, "2026-02-07T10:00:02.000Z", 2000, false),
		startLine(runA, "2026-02-07T11:00:00.000Z", "imessage"),
	}, "\n")

	runs := ReconstructRuns(strings.NewReader(log), now, 50)
	if len(runs) != 2 {
		t.Fatalf("got %d runs: %+v", len(runs), runs)
	}
	if runs[0].Status != StatusRunning || runs[0].StartedAt != "2026-02-07T11:00:00.000Z" {
		t.Errorf("restart = %+v", runs[0])
	}
	if runs[1].Status != StatusCompleted || runs[1].StartedAt != "2026-02-07T10:00:00.000Z" {
		t.Errorf("first run = %+v", runs[1])
	}
}

func TestReconstructRunsLongLine(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	huge := `{"1":"` + strings.Repeat("x", 17<<20) + `","time":"2026-02-07T10:30:00.000Z"}`
	log := strings.Join([]string{
		startLine(runA, "2026-02-07T10:00:00.000Z", "imessage"),
		huge,
		startLine(runB, "2026-02-07T11:00:00.000Z", "telegram"),
		doneLine(runB, "2026-02-07T11:00:03.000Z", 3000, false),
	}, "\n")

	runs := ReconstructRuns(strings.NewReader(log), now, 50)
	if len(runs) != 2 || runs[0].RunID != runB || runs[0].Status != StatusCompleted || runs[1].RunID != runA {
		t.Errorf("runs = %+v", runs)
	}
}

func TestReconstructRunsReadError(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	r := io.MultiReader(
		strings.NewReader(startLine(runA, "2026-02-07T10:00:00.000Z", "imessage")+"\n"),
		iotest.ErrReader(errors.New("disk went away")),
	)
	runs := ReconstructRuns(r, now, 50)
	if len(runs) != 1 || runs[0].RunID != runA {
		t.Errorf("runs = %+v", runs)
	}
}

func TestReadRunsMissingLog(t *testing.T) {
	runs := ReadRuns(t.TempDir(), time.Now(), 50)
	if runs == nil || len(runs) != 0 {
		t.Errorf("runs = %v", runs)
	}
}

func TestReadRunsUnreadableLog(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	if err := os.Mkdir(GatewayLogPath(dir, now), 0755); err != nil {
		t.Fatal(err)
	}
	runs := ReadRuns(dir, now, 50)
	if runs == nil || len(runs) != 0 {
		t.Errorf("runs = %v", runs)
	}
}

func TestGatewayLogPathUsesUTCDate(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	now := time.Date(2026, 2, 7, 20, 0, 0, 0, loc) // 04:00 UTC on the 8th
	if got := GatewayLogPath("/tmp/openclaw", now); got != filepath.Join("/tmp/openclaw", "openclaw-2026-02-08.log") {
		t.Errorf("got %s", got)
	}
}

func TestServiceStateDefault(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "watchdog-state.json"), filepath.Join(dir, "wd.log"), dir)

	state, err := s.State()
	if err != nil {
		t.Fatal(err)
	}
	pos, ok := state["lastLogPosition"].(map[string]any)
	if !ok || pos["file"] != nil || pos["offset"] != 0 {
		t.Errorf("lastLogPosition = %v", state["lastLogPosition"])
	}
	if _, ok := state["lastRecoveryAttempt"]; !ok {
		t.Error("lastRecoveryAttempt key missing")
	}

	os.WriteFile(s.StateFile, []byte(`{"alertHistory":[],"custom":true}`), 0644)
	state, _ = s.State()
	if state["custom"] != true {
		t.Errorf("state = %v", state)
	}
}

func TestServiceStats(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	s := New(filepath.Join(dir, "state.json"), filepath.Join(dir, "wd.log"), dir)

	state := `{
		"alertHistory": [
			{"at": "2026-02-07T11:30:00.000Z", "level": 1},
			{"at": "2026-02-07T11:45:00.000Z", "level": 2},
			{"at": "2026-02-07T11:50:00.000Z", "level": 2},
			{"at": "2026-02-07T10:00:00.000Z", "level": 3},
			{"at": "garbage", "level": 3}
		],
		"lastRecoveryAttempt": "2026-02-07T11:00:00.000Z"
	}`
	os.WriteFile(s.StateFile, []byte(state), 0644)

	log := strings.Join([]string{
		startLine(runA, "2026-02-07T10:00:00.000Z", "imessage"),
		doneLine(runA, "2026-02-07T10:00:01.000Z", 1000, false),
		startLine(runB, "2026-02-07T10:10:00.000Z", "imessage"),
		doneLine(runB, "2026-02-07T10:10:02.000Z", 2001, false),
		startLine(runC, "2026-02-07T11:50:00.000Z", "imessage"),
		startLine("dddd-4444", "2026-02-07T11:00:00.000Z", "imessage"),
		doneLine("dddd-4444", "2026-02-07T11:01:00.000Z", 60000, true),
	}, "\n")
	os.WriteFile(GatewayLogPath(dir, now), []byte(log), 0644)

	st, err := s.Stats(now)
	if err != nil {
		t.Fatal(err)
	}
	if st.AlertsLastHour != 3 || st.AlertsByLevel["L1"] != 1 || st.AlertsByLevel["L2"] != 2 || st.AlertsByLevel["L3"] != 0 {
		t.Errorf("alerts = %d %v", st.AlertsLastHour, st.AlertsByLevel)
	}
	if st.ActiveRuns != 1 || st.CompletedToday != 2 || st.AbortedToday != 1 {
		t.Errorf("runs = %+v", st)
	}
	if st.AvgDurationMs != 1501 {
		t.Errorf("avg = %d, want 1501 (rounded)", st.AvgDurationMs)
	}
	if st.LongestActiveMs != 10*time.Minute.Milliseconds() {
		t.Errorf("longest = %d", st.LongestActiveMs)
	}
	if st.LastRecoveryAttempt != "2026-02-07T11:00:00.000Z" {
		t.Errorf("lastRecoveryAttempt = %v", st.LastRecoveryAttempt)
	}
}

func TestServiceStatsNoFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "state.json"), filepath.Join(dir, "wd.log"), dir)
	st, err := s.Stats(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if st.AlertsLastHour != 0 || st.AlertsByLevel == nil || st.LastRecoveryAttempt != nil {
		t.Errorf("st = %+v", st)
	}
}

func TestServiceLogs(t *testing.T) {
	dir := t.TempDir()
	s := New("", filepath.Join(dir, "wd.log"), dir)
	body := "2026-02-07 20:27:21.227 [INFO] one\njunk\n2026-02-07 20:27:22.000 [WARN] two\n2026-02-07 20:27:23.000 [ERROR] three\n"
	os.WriteFile(s.LogFile, []byte(body), 0644)

	got := s.Logs(3)
	if len(got) != 2 || got[0].Message != "two" || got[1].Level != "ERROR" {
		t.Errorf("got %+v", got)
	}
	if got := New("", filepath.Join(dir, "none.log"), dir).Logs(10); len(got) != 0 {
		t.Errorf("missing log = %+v", got)
	}
}
