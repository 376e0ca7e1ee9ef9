package logtail

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Follower watches a log file and emits the events appended to it.
type Follower struct {
	Path     string
	Debounce time.Duration
	Logger   *slog.Logger

	offset int64
}

// NewFollower starts at the current end of path.
func NewFollower(path string, logger *slog.Logger) *Follower {
	f := &Follower{Path: path, Debounce: 250 * time.Millisecond, Logger: logger}
	if info, err := os.Stat(path); err == nil {
		f.offset = info.Size()
	}
	return f
}

// Run watches the file's directory (the gateway rotates and recreates the
// log) and calls emit with newly appended events in file order. It returns
// when ctx is done.
func (f *Follower) Run(ctx context.Context, emit func(LogEvent)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(f.Path)); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(f.Path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(f.Debounce)
				fire = timer.C
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if f.Logger != nil {
				f.Logger.Warn("log watcher error", "path", f.Path, "error", err)
			}
		case <-fire:
			timer, fire = nil, nil
			for _, ev := range f.drain() {
				emit(ev)
			}
		}
	}
}

// drain reads everything past the last offset. A shrunk file means it was
// rotated, so reading restarts from the top.
func (f *Follower) drain() []LogEvent {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil
	}
	if info.Size() < f.offset {
		f.offset = 0
	}
	if info.Size() == f.offset {
		return nil
	}

	buf := make([]byte, info.Size()-f.offset)
	n, _ := file.ReadAt(buf, f.offset)
	buf = buf[:n]

	// Hold back a trailing partial line until it is complete.
	last := -1
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i] == '\n' {
			last = i
			break
		}
	}
	if last == -1 {
		return nil
	}
	f.offset += int64(last + 1)

	var events []LogEvent
	for _, line := range Lines(string(buf[:last])) {
		if ev, ok := ParseLine(line); ok {
			events = append(events, ev)
		}
	}
	return events
}
