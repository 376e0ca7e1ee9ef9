package logtail

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Categories assigned to gateway log events.
const (
	CategorySystem   = "system"
	CategoryDelivery = "delivery"
	CategoryBrowser  = "browser"
	CategoryAuth     = "auth"
)

// maxUntaggedMessage is the longest message without a [subsystem] tag that
// is still treated as a log event. Longer ones are agent text dumps.
const maxUntaggedMessage = 500

// LogEvent is one parsed gateway.log line.
type LogEvent struct {
	Timestamp string `json:"timestamp"`
	Subsystem string `json:"subsystem"`
	Message   string `json:"message"`
	Category  string `json:"category"`
}

// Matcher turns a raw line into an event, or reports false when the line is
// not one it understands.
type Matcher func(line string) (LogEvent, bool)

// MatchLine tries matchers in order and returns the first hit.
func MatchLine(line string, matchers ...Matcher) (LogEvent, bool) {
	for _, m := range matchers {
		if ev, ok := m(line); ok {
			return ev, true
		}
	}
	return LogEvent{}, false
}

var (
	isoLineRe   = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+Z)\s+(.*)$`)
	subsystemRe = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*)`)
)

// splitStamped extracts timestamp, subsystem and message from an
// ISO-timestamped line.
func splitStamped(line string) (ts, subsystem, msg string, ok bool) {
	m := isoLineRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", "", false
	}
	ts, msg = m[1], m[2]
	if b := subsystemRe.FindStringSubmatch(msg); b != nil {
		subsystem, msg = b[1], b[2]
	}
	return ts, subsystem, msg, true
}

// GatewayLineMatcher parses `<ISO ts> [subsystem] message` lines and drops
// long untagged lines.
func GatewayLineMatcher(line string) (LogEvent, bool) {
	ts, sub, msg, ok := splitStamped(line)
	if !ok {
		return LogEvent{}, false
	}
	if sub == "" && utf8.RuneCountInString(msg) > maxUntaggedMessage {
		return LogEvent{}, false
	}
	return LogEvent{
		Timestamp: ts,
		Subsystem: sub,
		Message:   msg,
		Category:  Categorize(sub, msg),
	}, true
}

// GatewayMatchers is the priority list applied to gateway.log.
var GatewayMatchers = []Matcher{GatewayLineMatcher}

// ParseLine parses one gateway.log line.
func ParseLine(line string) (LogEvent, bool) {
	return MatchLine(line, GatewayMatchers...)
}

type categoryRule struct {
	category   string
	subsystem  string
	substrings []string
}

// First matching rule wins.
var categoryRules = []categoryRule{
	{CategoryDelivery, "imessage", []string{"delivered", "sent"}},
	{CategoryBrowser, "browser", []string{"chrome", "browser"}},
	{CategoryAuth, "", []string{"auth", "token"}},
}

// Categorize classifies an event by subsystem and message content.
func Categorize(subsystem, message string) string {
	lower := strings.ToLower(message)
	for _, r := range categoryRules {
		if r.subsystem != "" && subsystem == r.subsystem {
			return r.category
		}
		for _, s := range r.substrings {
			if strings.Contains(lower, s) {
				return r.category
			}
		}
	}
	return CategorySystem
}

// Activity parses text newest-first and returns at most limit events.
func Activity(text string, limit int) []LogEvent {
	lines := strings.Split(text, "\n")
	events := make([]LogEvent, 0)
	for i := len(lines) - 1; i >= 0 && len(events) < limit; i-- {
		if ev, ok := ParseLine(lines[i]); ok {
			events = append(events, ev)
		}
	}
	return events
}

// CountToday counts lines that start with the day prefix (YYYY-MM-DD) and,
// when contains is set, include it.
func CountToday(text, day, contains string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(line, day) || strings.TrimSpace(line) == "" {
			continue
		}
		if contains != "" && !strings.Contains(line, contains) {
			continue
		}
		n++
	}
	return n
}
