package logtail

import "regexp"

// WatchdogLine is one line of the message watchdog's own log.
type WatchdogLine struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// 2026-02-07 20:27:21.227 [INFO] message
var watchdogLineRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}) \[(\w+)\] (.*)$`)

// ParseWatchdogLine parses a `<date> <time> [LEVEL] message` line.
func ParseWatchdogLine(line string) (WatchdogLine, bool) {
	m := watchdogLineRe.FindStringSubmatch(line)
	if m == nil {
		return WatchdogLine{}, false
	}
	return WatchdogLine{Timestamp: m[1], Level: m[2], Message: m[3]}, true
}

// ParseWatchdogLog parses the given lines in file order, dropping the ones
// that do not match.
func ParseWatchdogLog(lines []string) []WatchdogLine {
	out := make([]WatchdogLine, 0, len(lines))
	for _, l := range lines {
		if wl, ok := ParseWatchdogLine(l); ok {
			out = append(out, wl)
		}
	}
	return out
}
