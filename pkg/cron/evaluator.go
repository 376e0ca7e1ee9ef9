package cron

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// maxFiresPerDay bounds enumeration: one fire per minute plus slack.
const maxFiresPerDay = 1500

// Evaluator parses five-field cron expressions (and @descriptors) and
// computes fire times in a given timezone.
type Evaluator struct {
	parser cron.Parser

	mu    sync.Mutex
	cache map[string]cron.Schedule
	locs  map[string]*time.Location
}

// NewEvaluator returns an evaluator with parse and location caches.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		cache:  make(map[string]cron.Schedule),
		locs:   make(map[string]*time.Location),
	}
}

var defaultEvaluator = NewEvaluator()

func (e *Evaluator) schedule(expr string) (cron.Schedule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.cache[expr]; ok {
		return s, nil
	}
	s, err := e.parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expr %q: %w", expr, err)
	}
	e.cache[expr] = s
	return s, nil
}

// Location loads tz, caching the result.
func (e *Evaluator) Location(tz string) (*time.Location, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if loc, ok := e.locs[tz]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	e.locs[tz] = loc
	return loc, nil
}

// Next returns the first fire strictly after after, evaluated in tz.
func (e *Evaluator) Next(expr, tz string, after time.Time) (time.Time, error) {
	sched, err := e.schedule(expr)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := e.Location(tz)
	if err != nil {
		return time.Time{}, err
	}
	next := sched.Next(after.In(loc))
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("cron expr %q never fires", expr)
	}
	return next, nil
}

// Fires returns every fire in [from, to], evaluated in tz.
func (e *Evaluator) Fires(expr, tz string, from, to time.Time) ([]time.Time, error) {
	sched, err := e.schedule(expr)
	if err != nil {
		return nil, err
	}
	loc, err := e.Location(tz)
	if err != nil {
		return nil, err
	}

	// Next works at second granularity and is strictly-after, so step back
	// one second to include a fire at exactly from.
	t := from.In(loc).Add(-time.Second)
	var fires []time.Time
	for i := 0; i < maxFiresPerDay; i++ {
		t = sched.Next(t)
		if t.IsZero() || t.After(to) {
			break
		}
		if t.Before(from) {
			continue
		}
		fires = append(fires, t)
	}
	return fires, nil
}

// DayBounds returns the start and end of the local day containing now in loc.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}
