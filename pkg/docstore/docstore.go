// Package docstore reads and rewrites JSON documents owned by the gateway.
//
// Writes take an advisory lock on <path>.lock, copy the current bytes to
// <path>.bak and replace the document with an atomic rename, so readers only
// ever see the old or the new content.
package docstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ReadJSON decodes the document at path into v. It returns fs.ErrNotExist
// (wrapped) when the file is missing.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadJSONOr decodes path into v and reports whether a document was found.
// Missing or malformed files leave v untouched.
func ReadJSONOr(path string, v any) bool {
	return ReadJSON(path, v) == nil
}

// Update locks path, hands the current bytes (nil when the file does not
// exist) to fn and writes whatever fn returns. fn may return nil bytes to
// leave the document unchanged.
func Update(path string, fn func(current []byte) ([]byte, error)) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", filepath.Base(path), err)
	}
	defer lock.Unlock()

	current, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	if !json.Valid(next) {
		return fmt.Errorf("refusing to write invalid JSON to %s", filepath.Base(path))
	}

	if current != nil {
		if err := os.WriteFile(path+".bak", current, 0644); err != nil {
			return fmt.Errorf("backup %s: %w", filepath.Base(path), err)
		}
	}
	return writeAtomic(path, next)
}

// UpdateJSON is Update for callers working on a decoded value. fn receives a
// pointer to the decoded document (left zero when the file is missing).
func UpdateJSON[T any](path string, fn func(doc *T) error) error {
	return Update(path, func(current []byte) ([]byte, error) {
		var doc T
		if current != nil {
			if err := json.Unmarshal(current, &doc); err != nil {
				return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
			}
		}
		if err := fn(&doc); err != nil {
			return nil, err
		}
		return Marshal(doc)
	})
}

// WriteJSON replaces the document at path with v.
func WriteJSON(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	return Update(path, func([]byte) ([]byte, error) { return data, nil })
}

// Marshal encodes v with two-space indentation and a trailing newline, the
// format the gateway itself writes.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
