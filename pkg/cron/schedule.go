package cron

import (
	"sort"
	"time"
)

// ScheduleMap projects each enabled cron job onto the hours of the current
// day (in the job's own timezone) at which it fires. Jobs whose expression
// or timezone cannot be evaluated are kept with no hours.
func ScheduleMap(jobs []CronJob, now time.Time) []ScheduleEntry {
	return defaultEvaluator.ScheduleMap(jobs, now)
}

// ScheduleMap is the evaluator-bound form of the package function.
func (e *Evaluator) ScheduleMap(jobs []CronJob, now time.Time) []ScheduleEntry {
	out := make([]ScheduleEntry, 0, len(jobs))
	for _, j := range jobs {
		if !j.Enabled || j.Schedule.Kind != KindCron || j.Schedule.Expr == "" {
			continue
		}
		tz := j.Schedule.Timezone()
		out = append(out, ScheduleEntry{
			ID:      j.ID,
			Name:    j.Name,
			AgentID: j.Agent(),
			Expr:    j.Schedule.Expr,
			Tz:      tz,
			Hours:   e.fireHours(j.Schedule.Expr, tz, now),
		})
	}
	return out
}

func (e *Evaluator) fireHours(expr, tz string, now time.Time) []int {
	hours := []int{}
	loc, err := e.Location(tz)
	if err != nil {
		return hours
	}
	start, end := DayBounds(now, loc)
	fires, err := e.Fires(expr, tz, start, end)
	if err != nil {
		return hours
	}

	seen := make(map[int]bool)
	for _, f := range fires {
		h := f.In(loc).Hour()
		if !seen[h] {
			seen[h] = true
			hours = append(hours, h)
		}
	}
	sort.Ints(hours)
	return hours
}

// NextUp lists the soonest upcoming fires of enabled jobs.
func NextUp(jobs []CronJob, now time.Time, limit int) []NextUpEntry {
	return defaultEvaluator.NextUp(jobs, now, limit)
}

// NextUp is the evaluator-bound form of the package function. The gateway's
// recorded nextRunAtMs wins; cron jobs without one are evaluated from now and
// one-shot jobs fall back to atMs. Jobs with no resolvable time are left out.
func (e *Evaluator) NextUp(jobs []CronJob, now time.Time, limit int) []NextUpEntry {
	entries := make([]NextUpEntry, 0, len(jobs))
	for _, j := range jobs {
		if !j.Enabled {
			continue
		}
		next := j.State.NextRunAtMs
		if next == 0 && j.Schedule.Kind == KindCron && j.Schedule.Expr != "" {
			if t, err := e.Next(j.Schedule.Expr, j.Schedule.Timezone(), now); err == nil {
				next = t.UnixMilli()
			}
		}
		if next == 0 && j.Schedule.Kind == KindAt {
			next = j.Schedule.AtMs
		}
		if next == 0 {
			continue
		}

		kind := j.Schedule.Kind
		if kind == "" {
			kind = "unknown"
		}
		entries = append(entries, NextUpEntry{
			ID:             j.ID,
			Name:           j.Name,
			AgentID:        j.Agent(),
			NextRunAtMs:    next,
			ScheduleKind:   kind,
			Expr:           j.Schedule.Expr,
			LastStatus:     j.State.LastStatus,
			LastDurationMs: j.State.LastDurationMs,
		})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].NextRunAtMs < entries[b].NextRunAtMs
	})
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
