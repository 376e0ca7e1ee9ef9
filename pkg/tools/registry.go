// Package tools lists, shows, edits and runs the helper scripts kept in the
// user's bin directory.
package tools

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/openclaw/admin-ui/pkg/utils"
)

const (
	previewChars    = 400
	previewMaxBytes = 50_000
	binarySniff     = 8192
)

var (
	ErrInvalidName   = errors.New("invalid tool name")
	ErrNotFound      = errors.New("tool not found")
	ErrNotEditable   = errors.New("only .sql files can be edited")
	ErrNotFile       = errors.New("not a file")
	ErrNotExecutable = errors.New("file is not executable")
)

// Tool is one entry of the bin directory listing.
type Tool struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	SizeHuman    string    `json:"sizeHuman"`
	Modified     time.Time `json:"modified"`
	IsExecutable bool      `json:"isExecutable"`
	IsFile       bool      `json:"isFile"`
	IsDirectory  bool      `json:"isDirectory"`
	Preview      string    `json:"preview"`
}

// Detail is the full view of one tool.
type Detail struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Content     string `json:"content"`
	Language    string `json:"language"`
	Description string `json:"description"`
	IsBinary    bool   `json:"isBinary"`
	Editable    bool   `json:"editable"`
}

// Registry is the bin directory.
type Registry struct {
	BinDir string
}

// NewRegistry returns the registry for binDir.
func NewRegistry(binDir string) *Registry {
	return &Registry{BinDir: binDir}
}

// List returns every entry of the bin directory. Entries that cannot be
// stat'ed are skipped.
func (r *Registry) List() ([]Tool, error) {
	entries, err := os.ReadDir(r.BinDir)
	if err != nil {
		return nil, err
	}

	tools := make([]Tool, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(r.BinDir, e.Name())
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		t := Tool{
			Name:         e.Name(),
			Size:         info.Size(),
			SizeHuman:    humanize.Bytes(uint64(info.Size())),
			Modified:     info.ModTime().UTC(),
			IsExecutable: info.Mode().Perm()&0111 != 0,
			IsFile:       info.Mode().IsRegular(),
			IsDirectory:  info.IsDir(),
		}
		if t.IsFile && info.Size() < previewMaxBytes {
			if data, err := os.ReadFile(path); err == nil {
				t.Preview = utils.Truncate(string(data), previewChars)
			}
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func (r *Registry) resolve(name string) (string, error) {
	if err := utils.PlainName(name); err != nil {
		return "", ErrInvalidName
	}
	return utils.SafeJoin(r.BinDir, name)
}

// Get returns the content and derived metadata of name.
func (r *Registry) Get(name string) (Detail, error) {
	path, err := r.resolve(name)
	if err != nil {
		return Detail{}, err
	}
	if _, err := os.Stat(path); err != nil {
		return Detail{}, ErrNotFound
	}

	d := Detail{Name: name, Path: path, Editable: Editable(name)}
	data, err := os.ReadFile(path)
	if err != nil || bytes.IndexByte(data[:min(len(data), binarySniff)], 0) >= 0 {
		d.IsBinary = true
		d.Language = "binary"
		return d, nil
	}
	d.Content = string(data)
	d.Language = DetectLanguage(d.Content, name)
	d.Description = ExtractDescription(d.Content, d.Language)
	return d, nil
}

// Editable reports whether name may be saved from the dashboard.
func Editable(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".sql")
}

// Write replaces the content of an editable tool.
func (r *Registry) Write(name, content string) error {
	path, err := r.resolve(name)
	if err != nil {
		return err
	}
	if !Editable(name) {
		return ErrNotEditable
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// executable resolves name to an executable regular file.
func (r *Registry) executable(name string) (string, error) {
	path, err := r.resolve(name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", ErrNotFound
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotFile
	}
	if info.Mode().Perm()&0111 == 0 {
		return "", ErrNotExecutable
	}
	return path, nil
}
