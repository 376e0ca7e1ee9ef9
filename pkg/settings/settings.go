// Package settings reads and writes the gateway's openclaw.json.
package settings

import (
	"encoding/json"
	"errors"
	"regexp"

	"github.com/openclaw/admin-ui/pkg/docstore"
)

var ErrNotObject = errors.New("body must be a JSON object")

var secretKeyRe = regexp.MustCompile(`(?i)key|secret|token|password`)

// Store is the openclaw.json document.
type Store struct {
	Path string
}

// NewStore returns the store for path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Read returns the document with secrets redacted.
func (s *Store) Read() (any, error) {
	var doc any
	if err := docstore.ReadJSON(s.Path, &doc); err != nil {
		return nil, err
	}
	return Redact(doc), nil
}

// Write replaces the document. raw must be a JSON object.
func (s *Store) Write(raw json.RawMessage) error {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return ErrNotObject
	}
	return docstore.WriteJSON(s.Path, obj)
}

// Redact returns a copy of v in which every string stored under a key that
// looks like a credential is shortened to its first 10 and last 4
// characters. v itself is not modified.
func Redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if s, ok := val.(string); ok && secretKeyRe.MatchString(k) {
				out[k] = mask(s)
				continue
			}
			out[k] = Redact(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Redact(val)
		}
		return out
	default:
		return v
	}
}

func mask(s string) string {
	r := []rune(s)
	head := r[:min(10, len(r))]
	tail := r[max(0, len(r)-4):]
	return string(head) + "..." + string(tail)
}
