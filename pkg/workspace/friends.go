package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/openclaw/admin-ui/pkg/utils"
)

var ErrFriendNotFound = errors.New("friend not found")

// Friend is one contact directory.
type Friend struct {
	Slug      string   `json:"slug"`
	Name      string   `json:"name"`
	FileCount int      `json:"fileCount"`
	Files     []string `json:"files"`
}

// FriendDoc is one file of a contact.
type FriendDoc struct {
	Slug    string `json:"slug"`
	File    string `json:"file"`
	Content string `json:"content,omitempty"`
	Lines   int    `json:"lines"`
}

var headingPrefixRe = regexp.MustCompile(`^#+\s*`)

// Friends manages the per-contact directories under an agent's memory.
type Friends struct {
	Dir string
}

// List returns every contact directory. The display name is the first line
// of index.md without its heading marks, or the slug.
func (f Friends) List() ([]Friend, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return []Friend{}, nil
	}

	out := make([]Friend, 0)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		slug := e.Name()
		dir := filepath.Join(f.Dir, slug)

		files := []string{}
		if inner, err := os.ReadDir(dir); err == nil {
			for _, fe := range inner {
				if strings.HasSuffix(fe.Name(), ".md") {
					files = append(files, fe.Name())
				}
			}
		}

		name := slug
		if data, err := os.ReadFile(filepath.Join(dir, "index.md")); err == nil {
			first, _, _ := strings.Cut(string(data), "\n")
			if n := strings.TrimSpace(headingPrefixRe.ReplaceAllString(first, "")); n != "" {
				name = n
			}
		}
		out = append(out, Friend{Slug: slug, Name: name, FileCount: len(files), Files: files})
	}
	return out, nil
}

// Read returns one file of a contact.
func (f Friends) Read(slug, file string) (FriendDoc, error) {
	path, err := utils.SafeJoin(f.Dir, slug, file)
	if err != nil {
		return FriendDoc{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return FriendDoc{}, err
	}
	content := string(data)
	return FriendDoc{Slug: slug, File: file, Content: content, Lines: utils.CountLines(content)}, nil
}

// Write stores one file of a contact, creating the contact when needed.
func (f Friends) Write(slug, file, content string) (FriendDoc, error) {
	path, err := utils.SafeJoin(f.Dir, slug, file)
	if err != nil {
		return FriendDoc{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return FriendDoc{}, err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return FriendDoc{}, err
	}
	return FriendDoc{Slug: slug, File: file, Lines: utils.CountLines(content)}, nil
}

// Delete removes a contact directory and everything in it.
func (f Friends) Delete(slug string) error {
	path, err := utils.SafeJoin(f.Dir, slug)
	if err != nil {
		return err
	}
	if path == filepath.Clean(f.Dir) {
		return utils.ErrPathTraversal
	}
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrFriendNotFound
		}
		return err
	}
	return os.RemoveAll(path)
}
