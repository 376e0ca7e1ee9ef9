package logtail

import (
	"regexp"
)

// ErrorEntry is a run of identical adjacent error messages.
type ErrorEntry struct {
	Timestamp string `json:"timestamp"`
	Subsystem string `json:"subsystem"`
	Message   string `json:"message"`
	Count     int    `json:"count"`
}

var stackLineRe = regexp.MustCompile(`^\s+(at |Error:)`)

// ParseErrors walks the error log newest-first, skipping stack frames, and
// folds adjacent identical messages into one entry. The folded entry keeps
// the timestamp of the newest occurrence.
func ParseErrors(text string, limit int) []ErrorEntry {
	lines := Lines(text)
	entries := make([]ErrorEntry, 0)

	for i := len(lines) - 1; i >= 0 && len(entries) < limit; i-- {
		line := lines[i]
		if stackLineRe.MatchString(line) {
			continue
		}
		ts, sub, msg, ok := splitStamped(line)
		if !ok {
			continue
		}
		if n := len(entries); n > 0 && entries[n-1].Message == msg {
			entries[n-1].Count++
			continue
		}
		entries = append(entries, ErrorEntry{Timestamp: ts, Subsystem: sub, Message: msg, Count: 1})
	}
	return entries
}
