// Package workspace serves the markdown files of an agent workspace and its
// friends notes.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openclaw/admin-ui/pkg/utils"
)

var ErrNotMarkdown = errors.New("only .md files are allowed")

// Entry is a listed file.
type Entry struct {
	Name  string
	Lines int
	Size  int64
}

// Doc is a file with its content.
type Doc struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Lines    int    `json:"lines"`
}

// Dir is a flat directory of text files. Accept validates names before any
// file access.
type Dir struct {
	Path   string
	Accept func(name string) error
}

// Markdown accepts names ending in .md.
func Markdown(name string) error {
	if !strings.HasSuffix(name, ".md") {
		return ErrNotMarkdown
	}
	return nil
}

// MarkdownDir returns a Dir of .md files.
func MarkdownDir(path string) Dir {
	return Dir{Path: path, Accept: Markdown}
}

func (d Dir) resolve(name string) (string, error) {
	if d.Accept != nil {
		if err := d.Accept(name); err != nil {
			return "", err
		}
	}
	return utils.SafeJoin(d.Path, name)
}

// List returns the accepted regular files at the top of the directory in
// name order. A missing directory lists as empty.
func (d Dir) List() ([]Entry, error) {
	entries, err := os.ReadDir(d.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if d.Accept != nil && d.Accept(e.Name()) != nil {
			continue
		}
		path := filepath.Join(d.Path, e.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		out = append(out, Entry{Name: e.Name(), Lines: utils.CountLines(string(data)), Size: info.Size()})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

// Read returns the named file. Missing files yield an error wrapping
// os.ErrNotExist.
func (d Dir) Read(name string) (Doc, error) {
	path, err := d.resolve(name)
	if err != nil {
		return Doc{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Doc{}, err
	}
	content := string(data)
	return Doc{Filename: name, Content: content, Lines: utils.CountLines(content)}, nil
}

// Write replaces the named file and returns its line count. The directory
// is created when missing.
func (d Dir) Write(name, content string) (int, error) {
	path, err := d.resolve(name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return 0, fmt.Errorf("write %s: %w", name, err)
	}
	return utils.CountLines(content), nil
}
