package watchdog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/openclaw/admin-ui/pkg/docstore"
	"github.com/openclaw/admin-ui/pkg/logtail"
)

// StatsWindow is how many recent runs the stats cover.
const StatsWindow = 1000

var activeRunsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "adminui_watchdog_active_runs",
	Help: "Agent runs started today without a matching done record.",
})

// Service reads the watchdog's state file, its own log and the gateway's
// structured log.
type Service struct {
	StateFile     string
	LogFile       string
	GatewayLogDir string
}

// New returns a Service over the given files.
func New(stateFile, logFile, gatewayLogDir string) *Service {
	return &Service{StateFile: stateFile, LogFile: logFile, GatewayLogDir: gatewayLogDir}
}

// DefaultState is reported before the watchdog has written anything.
func DefaultState() map[string]any {
	return map[string]any{
		"lastLogPosition":     map[string]any{"file": nil, "offset": 0},
		"alertHistory":        []any{},
		"suppressedRuns":      map[string]any{},
		"lastRecoveryAttempt": nil,
	}
}

// State returns the raw state document, or DefaultState when there is none.
func (s *Service) State() (map[string]any, error) {
	var state map[string]any
	err := docstore.ReadJSON(s.StateFile, &state)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && state == nil) {
		return DefaultState(), nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Logs returns the parsed last limit lines of the watchdog log.
func (s *Service) Logs(limit int) []logtail.WatchdogLine {
	text := logtail.ReadTail(s.LogFile, logtail.GatewayTailBytes)
	return logtail.ParseWatchdogLog(logtail.LastLines(text, limit))
}

// Runs returns today's runs, newest first.
func (s *Service) Runs(now time.Time, limit int) []RunRecord {
	return ReadRuns(s.GatewayLogDir, now, limit)
}

// Stats summarises recent alerts and today's runs.
type Stats struct {
	AlertsLastHour      int            `json:"alertsLastHour"`
	AlertsByLevel       map[string]int `json:"alertsByLevel"`
	ActiveRuns          int            `json:"activeRuns"`
	CompletedToday      int            `json:"completedToday"`
	AbortedToday        int            `json:"abortedToday"`
	AvgDurationMs       int64          `json:"avgDurationMs"`
	LongestActiveMs     int64          `json:"longestActiveMs"`
	LastRecoveryAttempt any            `json:"lastRecoveryAttempt"`
}

// Alert is one entry of the watchdog's alert history.
type Alert struct {
	At    string `json:"at"`
	Level any    `json:"level"`
}

type stateView struct {
	AlertHistory        []Alert `json:"alertHistory"`
	LastRecoveryAttempt any     `json:"lastRecoveryAttempt"`
}

// Stats computes the summary as of now.
func (s *Service) Stats(now time.Time) (Stats, error) {
	var state stateView
	if err := docstore.ReadJSON(s.StateFile, &state); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Stats{}, err
	}
	st := Summarize(state.AlertHistory, s.Runs(now, StatsWindow), now)
	st.LastRecoveryAttempt = state.LastRecoveryAttempt
	activeRunsGauge.Set(float64(st.ActiveRuns))
	return st, nil
}

// Summarize counts alerts newer than an hour before now and aggregates runs.
func Summarize(alerts []Alert, runs []RunRecord, now time.Time) Stats {
	st := Stats{AlertsByLevel: map[string]int{}}

	cutoff := now.Add(-time.Hour)
	for _, a := range alerts {
		at, ok := parseTime(a.At)
		if !ok || !at.After(cutoff) {
			continue
		}
		st.AlertsLastHour++
		st.AlertsByLevel[levelKey(a.Level)]++
	}

	var total int64
	for _, r := range runs {
		switch r.Status {
		case StatusRunning:
			st.ActiveRuns++
			if r.ElapsedMs != nil && *r.ElapsedMs > st.LongestActiveMs {
				st.LongestActiveMs = *r.ElapsedMs
			}
		case StatusCompleted:
			st.CompletedToday++
			if r.DurationMs != nil {
				total += *r.DurationMs
			}
		case StatusAborted:
			st.AbortedToday++
		}
	}
	if st.CompletedToday > 0 {
		st.AvgDurationMs = int64(math.Round(float64(total) / float64(st.CompletedToday)))
	}
	return st
}

func levelKey(level any) string {
	switch v := level.(type) {
	case float64:
		return fmt.Sprintf("L%g", v)
	case json.Number:
		return "L" + v.String()
	case nil:
		return "Lundefined"
	}
	return fmt.Sprintf("L%v", level)
}
