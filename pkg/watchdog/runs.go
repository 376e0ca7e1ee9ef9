// Package watchdog reports on agent runs and the message watchdog's alerts.
package watchdog

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
)

// RunRecord is one embedded agent run reconstructed from the gateway log.
type RunRecord struct {
	RunID          string `json:"runId"`
	SessionID      string `json:"sessionId"`
	MessageChannel string `json:"messageChannel"`
	StartedAt      string `json:"startedAt"`
	CompletedAt    string `json:"completedAt,omitempty"`
	DurationMs     *int64 `json:"durationMs,omitempty"`
	Aborted        *bool  `json:"aborted,omitempty"`
	Status         string `json:"status"`
	ElapsedMs      *int64 `json:"elapsedMs,omitempty"`

	started time.Time
}

var (
	runStartRe = regexp.MustCompile(`embedded run start: runId=([a-f0-9-]+) sessionId=([a-f0-9-]+).*?messageChannel=(\w+)`)
	runDoneRe  = regexp.MustCompile(`embedded run done: runId=([a-f0-9-]+) sessionId=([a-f0-9-]+) durationMs=(\d+) aborted=(true|false)`)
)

// gatewayEntry is the subset of a structured gateway log line we read.
type gatewayEntry struct {
	Message string `json:"1"`
	Time    string `json:"time"`
}

func parseTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	return t, err == nil
}

// ReconstructRuns pairs run start and done records from a JSONL gateway log.
// Starts without a done are reported as running with the time elapsed
// since they began. Output is newest start first. A read error ends the
// scan and the runs seen so far are returned.
func ReconstructRuns(r io.Reader, now time.Time, limit int) []RunRecord {
	var (
		done   []RunRecord
		active = map[string]*RunRecord{}
		order  []string
		listed = map[string]bool{}
	)

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			var e gatewayEntry
			if json.Unmarshal(line, &e) == nil {
				if m := runStartRe.FindStringSubmatch(e.Message); m != nil {
					if !listed[m[1]] {
						listed[m[1]] = true
						order = append(order, m[1])
					}
					active[m[1]] = &RunRecord{
						RunID:          m[1],
						SessionID:      m[2],
						MessageChannel: m[3],
						StartedAt:      e.Time,
						Status:         StatusRunning,
					}
				}

				if m := runDoneRe.FindStringSubmatch(e.Message); m != nil {
					if run, ok := active[m[1]]; ok {
						dur, _ := strconv.ParseInt(m[3], 10, 64)
						aborted := m[4] == "true"
						run.CompletedAt = e.Time
						run.DurationMs = &dur
						run.Aborted = &aborted
						run.Status = StatusCompleted
						if aborted {
							run.Status = StatusAborted
						}
						done = append(done, *run)
						delete(active, m[1])
					}
				}
			}
		}
		if err != nil {
			break
		}
	}

	runs := done
	for _, id := range order {
		run, ok := active[id]
		if !ok {
			continue
		}
		if t, ok := parseTime(run.StartedAt); ok {
			elapsed := now.Sub(t).Milliseconds()
			run.ElapsedMs = &elapsed
		}
		runs = append(runs, *run)
	}

	for i := range runs {
		runs[i].started, _ = parseTime(runs[i].StartedAt)
	}
	sort.SliceStable(runs, func(a, b int) bool {
		return runs[a].started.After(runs[b].started)
	})
	if limit >= 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	if runs == nil {
		runs = []RunRecord{}
	}
	return runs
}

// GatewayLogPath is the gateway's structured log for the UTC day of now.
func GatewayLogPath(dir string, now time.Time) string {
	return filepath.Join(dir, "openclaw-"+now.UTC().Format("2006-01-02")+".log")
}

// ReadRuns reconstructs today's runs. A log that cannot be opened means no
// runs.
func ReadRuns(dir string, now time.Time, limit int) []RunRecord {
	f, err := os.Open(GatewayLogPath(dir, now))
	if err != nil {
		return []RunRecord{}
	}
	defer f.Close()
	return ReconstructRuns(f, now, limit)
}
