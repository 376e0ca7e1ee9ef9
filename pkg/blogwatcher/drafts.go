package blogwatcher

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/openclaw/admin-ui/pkg/docstore"
	"github.com/openclaw/admin-ui/pkg/utils"
)

var (
	ErrDraftsDisabled = errors.New("LinkedIn drafts feature disabled")
	ErrNoDraft        = errors.New("no draft for this article")
	ErrDraftMissing   = errors.New("draft file missing")
)

// Draft is a LinkedIn draft written for an article.
type Draft struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

var sourceRe = regexp.MustCompile(`(?m)^\**Source:\**\s*(.+)$`)

// NormalizeURL drops trailing slashes and lower-cases u.
func NormalizeURL(u string) string {
	return strings.ToLower(strings.TrimRight(u, "/"))
}

func (w *Watcher) draftsMap() (map[string]string, error) {
	m := map[string]string{}
	if err := readOptional(w.DraftsMapFile, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// SyncDrafts maps draft files that are not yet mapped to articles through
// their Source: line and persists the map when it grew. The URL must match
// an article link exactly or one must contain the other.
func (w *Watcher) SyncDrafts(articles []Article) (map[string]string, error) {
	m, err := w.draftsMap()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(w.DraftsDir)
	if err != nil {
		return m, nil
	}

	type link struct{ url, id string }
	exact := map[string]string{}
	var links []link
	for _, a := range articles {
		if a.Link() == "" {
			continue
		}
		u := NormalizeURL(a.Link())
		exact[u] = a.ID()
		links = append(links, link{u, a.ID()})
	}

	mapped := make(map[string]bool, len(m))
	for _, f := range m {
		mapped[f] = true
	}

	changed := false
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".md") || mapped[name] {
			continue
		}
		data, err := os.ReadFile(filepath.Join(w.DraftsDir, name))
		if err != nil {
			continue
		}
		match := sourceRe.FindStringSubmatch(string(data))
		if match == nil {
			continue
		}
		source := NormalizeURL(strings.TrimSpace(match[1]))
		if source == "" {
			continue
		}
		id := exact[source]
		if id == "" {
			for _, l := range links {
				if strings.Contains(l.url, source) || strings.Contains(source, l.url) {
					id = l.id
					break
				}
			}
		}
		if id != "" && m[id] == "" {
			m[id] = name
			mapped[name] = true
			changed = true
		}
	}

	if changed {
		if err := docstore.WriteJSON(w.DraftsMapFile, m); err != nil {
			return nil, err
		}
		w.Logger.Info("linkedin drafts mapped", "count", len(m))
	}
	return m, nil
}

// Draft returns the draft mapped to article id.
func (w *Watcher) Draft(id string) (Draft, error) {
	if !w.DraftsEnabled {
		return Draft{}, ErrDraftsDisabled
	}
	m, err := w.draftsMap()
	if err != nil {
		return Draft{}, err
	}
	name := m[id]
	if name == "" {
		return Draft{}, ErrNoDraft
	}
	path, err := utils.SafeJoin(w.DraftsDir, name)
	if err != nil {
		return Draft{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Draft{}, ErrDraftMissing
	}
	return Draft{Filename: name, Content: string(data)}, nil
}
