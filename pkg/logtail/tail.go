// Package logtail reads the end of growing log files and turns gateway log
// lines into structured events.
package logtail

import (
	"io"
	"os"
	"strings"
)

// Tail budgets used by the dashboard views.
const (
	GatewayTailBytes = 200_000
	ErrorTailBytes   = 100_000
	RunsTailBytes    = 50_000
)

// ReadTail returns at most the last maxBytes of the file at path. When the
// read starts mid-file the leading partial line is dropped. Any failure
// yields "".
func ReadTail(path string, maxBytes int64) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || maxBytes <= 0 {
		return ""
	}

	size := info.Size()
	start := size - maxBytes
	if start < 0 {
		start = 0
	}
	buf := make([]byte, size-start)
	n, err := f.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return ""
	}

	text := string(buf[:n])
	if start > 0 {
		// A chunk without any newline is one fragment of a longer line.
		nl := strings.IndexByte(text, '\n')
		if nl == -1 {
			return ""
		}
		text = text[nl+1:]
	}
	return text
}

// Lines splits text on newlines and drops blank lines.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := raw[:0]
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// LastLines returns the final n non-blank lines of text.
func LastLines(text string, n int) []string {
	lines := Lines(text)
	if n >= 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
