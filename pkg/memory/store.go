// Package memory serves an agent's daily memory notes and stories.
package memory

import (
	"errors"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/openclaw/admin-ui/pkg/workspace"
)

var ErrNotDaily = errors.New("only daily memory files (YYYY-MM-DD.md) are allowed")

var dailyRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.md$`)

// Daily accepts YYYY-MM-DD.md names.
func Daily(name string) error {
	if !dailyRe.MatchString(name) {
		return ErrNotDaily
	}
	return nil
}

// DailyFile is one listed day of notes.
type DailyFile struct {
	Filename  string `json:"filename"`
	Date      string `json:"date"`
	Lines     int    `json:"lines"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"sizeHuman"`
}

// Story is one listed story.
type Story struct {
	Filename string `json:"filename"`
	Lines    int    `json:"lines"`
	Size     int64  `json:"size"`
}

// MemoryStore manages an agent's memory directory.
type MemoryStore struct {
	MemoryDir string
}

// NewMemoryStore returns the store rooted at memoryDir (<workspace>/memory).
func NewMemoryStore(memoryDir string) *MemoryStore {
	return &MemoryStore{MemoryDir: memoryDir}
}

// Days is the directory of daily notes.
func (m *MemoryStore) Days() workspace.Dir {
	return workspace.Dir{Path: m.MemoryDir, Accept: Daily}
}

// Stories is the directory of stories.
func (m *MemoryStore) Stories() workspace.Dir {
	return workspace.MarkdownDir(filepath.Join(m.MemoryDir, "stories"))
}

// ListMemoryFiles lists daily notes, newest first.
func (m *MemoryStore) ListMemoryFiles() ([]DailyFile, error) {
	entries, err := m.Days().List()
	if err != nil {
		return nil, err
	}
	files := make([]DailyFile, 0, len(entries))
	for _, e := range entries {
		files = append(files, DailyFile{
			Filename:  e.Name,
			Date:      strings.TrimSuffix(e.Name, ".md"),
			Lines:     e.Lines,
			Size:      e.Size,
			SizeHuman: humanize.Bytes(uint64(e.Size)),
		})
	}
	sort.Slice(files, func(a, b int) bool { return files[a].Date > files[b].Date })
	return files, nil
}

// ListStories lists stories in name order.
func (m *MemoryStore) ListStories() ([]Story, error) {
	entries, err := m.Stories().List()
	if err != nil {
		return nil, err
	}
	stories := make([]Story, 0, len(entries))
	for _, e := range entries {
		stories = append(stories, Story{Filename: e.Name, Lines: e.Lines, Size: e.Size})
	}
	return stories, nil
}
