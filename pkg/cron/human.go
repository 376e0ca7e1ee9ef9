package cron

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf16"
)

// ScheduleToHuman renders a schedule the way the job list shows it.
func ScheduleToHuman(s CronSchedule, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	switch s.Kind {
	case KindAt:
		if s.AtMs == 0 {
			return "Once: (no date)"
		}
		return "Once: " + time.UnixMilli(s.AtMs).In(loc).Format("2006-01-02 15:04")
	case KindEvery:
		if s.EveryMs <= 0 {
			return "Every (unset)"
		}
		return "Every " + FormatDuration(s.EveryMs)
	case KindCron:
		return cronToHuman(s.Expr)
	}
	return s.Kind
}

func cronToHuman(expr string) string {
	parts := strings.Fields(expr)
	if len(parts) < 5 {
		return expr
	}
	min, hour, dom := parts[0], parts[1], parts[2]
	if dom == "*" && hour != "*" && min != "*" && concrete(hour) && concrete(min) {
		if len(min) < 2 {
			min = "0" + min
		}
		return fmt.Sprintf("Daily at %s:%s", hour, min)
	}
	if strings.HasPrefix(hour, "*/") {
		return "Every " + hour[2:] + "h"
	}
	if strings.HasPrefix(min, "*/") {
		return "Every " + min[2:] + "m"
	}
	return expr
}

func concrete(field string) bool {
	for _, r := range field {
		if r < '0' || r > '9' {
			return false
		}
	}
	return field != ""
}

// FormatDuration renders a millisecond duration as <1s, Ns or Mm Ss.
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return "<1s"
	}
	total := ms / 1000
	m, s := total/60, total%60
	if m == 0 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

// FormatCountdown renders the time from now until targetMs.
func FormatCountdown(targetMs int64, now time.Time) string {
	diff := targetMs - now.UnixMilli()
	if diff <= 0 {
		return "now"
	}
	totalMin := diff / 60000
	h, m := totalMin/60, totalMin%60
	if h == 0 {
		return fmt.Sprintf("in %dm", m)
	}
	d, remH := h/24, h%24
	if d == 0 {
		return fmt.Sprintf("in %dh %dm", h, m)
	}
	mo, remD := d/30, d%30
	if mo == 0 {
		return fmt.Sprintf("in %dd %dh", d, remH)
	}
	y, remMo := mo/12, mo%12
	if y == 0 {
		return fmt.Sprintf("in %dmo %dd", mo, remD)
	}
	return fmt.Sprintf("in %dy %dmo", y, remMo)
}

// TimeAgo renders how long ago t was.
func TimeAgo(t, now time.Time) string {
	mins := int64(now.Sub(t) / time.Minute)
	switch {
	case mins < 1:
		return "just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case mins < 60*24:
		return fmt.Sprintf("%dh ago", mins/60)
	}
	return fmt.Sprintf("%dd ago", mins/60/24)
}

var jobPalette = []string{
	"#60a5fa", "#a78bfa", "#f472b6", "#fb923c", "#34d399",
	"#facc15", "#38bdf8", "#c084fc", "#f87171", "#2dd4bf",
}

// JobColor picks a stable palette colour for a job id. The hash runs over
// UTF-16 code units in 32-bit arithmetic so ids keep the colour the web UI
// gives them.
func JobColor(id string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(id)) {
		h = (h << 5) - h + int32(u)
	}
	n := int64(h)
	if n < 0 {
		n = -n
	}
	return jobPalette[n%int64(len(jobPalette))]
}
