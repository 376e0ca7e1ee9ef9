// Package blogwatcher exposes the feed watcher's article store: articles,
// feeds, LinkedIn drafts and the send-to-Kindle queue.
package blogwatcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/openclaw/admin-ui/pkg/config"
	"github.com/openclaw/admin-ui/pkg/docstore"
	"github.com/openclaw/admin-ui/pkg/runner"
)

const (
	KindleTimeout = 180 * time.Second
	CheckTimeout  = 120 * time.Second
)

var (
	ErrDisabled        = errors.New("blog watcher feature disabled")
	ErrArticleNotFound = errors.New("article not found")
	ErrAlreadySent     = errors.New("already sent to Kindle")
	ErrNoFeedWatcher   = errors.New("feed-watcher script not found")
)

// Article is one processed article. The feed watcher owns the schema, so
// every field is passed through.
type Article map[string]any

func (a Article) str(key string) string {
	s, _ := a[key].(string)
	return s
}

// ID is the article id.
func (a Article) ID() string { return a.str("id") }

// Link is the article URL.
func (a Article) Link() string { return a.str("link") }

// Feed is a configured feed with its seen-article count.
type Feed struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	ArticleCount int    `json:"articleCount"`
}

// Status summarizes the store.
type Status struct {
	TotalArticles int        `json:"totalArticles"`
	RichArticles  int        `json:"richArticles"`
	FeedCount     int        `json:"feedCount"`
	LastCheck     *time.Time `json:"lastCheck"`
}

// Watcher reads the feed watcher directory.
type Watcher struct {
	Enabled        bool
	DraftsEnabled  bool
	Dir            string
	ArticlesFile   string
	KindleSentFile string
	DraftsMapFile  string
	FeedsFile      string
	SeenFile       string
	LogFile        string
	DraftsDir      string
	BinDir         string
	Runner         runner.Runner
	Logger         *slog.Logger

	wg sync.WaitGroup
}

// New builds a Watcher from the configuration.
func New(cfg *config.Config, r runner.Runner, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	p := cfg.Paths()
	return &Watcher{
		Enabled:        cfg.Features.BlogWatcher,
		DraftsEnabled:  cfg.Features.LinkedinDrafts,
		Dir:            p.FeedwatcherDir,
		ArticlesFile:   p.ArticlesFile,
		KindleSentFile: p.KindleSentFile,
		DraftsMapFile:  p.LinkedinMapFile,
		FeedsFile:      p.FeedsFile,
		SeenFile:       p.SeenFile,
		LogFile:        p.FeedWatcherLog,
		DraftsDir:      p.LinkedinDrafts,
		BinDir:         cfg.BinDir,
		Runner:         r,
		Logger:         logger,
	}
}

// active reports whether reads should return data.
func (w *Watcher) active() bool {
	if !w.Enabled {
		return false
	}
	info, err := os.Stat(w.Dir)
	return err == nil && info.IsDir()
}

// readOptional decodes path into v. A missing file leaves v untouched.
func readOptional(path string, v any) error {
	err := docstore.ReadJSON(path, v)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (w *Watcher) articles() ([]Article, error) {
	var articles []Article
	if err := readOptional(w.ArticlesFile, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (w *Watcher) kindleSent() (map[string]bool, error) {
	var ids []string
	if err := readOptional(w.KindleSentFile, &ids); err != nil {
		return nil, err
	}
	sent := make(map[string]bool, len(ids))
	for _, id := range ids {
		sent[id] = true
	}
	return sent, nil
}

// Articles returns every article with kindleSent and linkedinDraft added,
// newest first by processedAt, then pubDate.
func (w *Watcher) Articles() ([]Article, error) {
	if !w.active() {
		return []Article{}, nil
	}
	articles, err := w.articles()
	if err != nil {
		return nil, err
	}
	sent, err := w.kindleSent()
	if err != nil {
		return nil, err
	}
	drafts := map[string]string{}
	if w.DraftsEnabled {
		if drafts, err = w.SyncDrafts(articles); err != nil {
			return nil, err
		}
	}

	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		e := make(Article, len(a)+2)
		for k, v := range a {
			e[k] = v
		}
		e["kindleSent"] = sent[a.ID()]
		if f, ok := drafts[a.ID()]; ok {
			e["linkedinDraft"] = f
		} else {
			e["linkedinDraft"] = nil
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return articleTime(out[i]).After(articleTime(out[j])) })
	return out, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// articleTime is processedAt or pubDate. Unparseable dates sort as the
// epoch.
func articleTime(a Article) time.Time {
	s := a.str("processedAt")
	if s == "" {
		s = a.str("pubDate")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Unix(0, 0)
}

// Feeds lists the configured feeds.
func (w *Watcher) Feeds() ([]Feed, error) {
	if !w.active() {
		return []Feed{}, nil
	}
	var feeds []Feed
	if err := readOptional(w.FeedsFile, &feeds); err != nil {
		return nil, err
	}
	seen := map[string][]string{}
	if err := readOptional(w.SeenFile, &seen); err != nil {
		return nil, err
	}
	out := make([]Feed, 0, len(feeds))
	for _, f := range feeds {
		out = append(out, Feed{Name: f.Name, URL: f.URL, ArticleCount: len(seen[f.Name])})
	}
	return out, nil
}

// Status counts seen and processed articles. LastCheck is the modification
// time of the feed watcher's log.
func (w *Watcher) Status() (Status, error) {
	if !w.active() {
		return Status{}, nil
	}
	articles, err := w.articles()
	if err != nil {
		return Status{}, err
	}
	var seen map[string][]string
	if err := readOptional(w.SeenFile, &seen); err != nil {
		return Status{}, err
	}
	var feeds []any
	if err := readOptional(w.FeedsFile, &feeds); err != nil {
		return Status{}, err
	}

	st := Status{RichArticles: len(articles), FeedCount: len(feeds)}
	for _, ids := range seen {
		st.TotalArticles += len(ids)
	}
	if info, err := os.Stat(w.LogFile); err == nil {
		t := info.ModTime().UTC()
		st.LastCheck = &t
	}
	return st, nil
}

// SendToKindle marks an article as sent and starts send-to-kindle for its
// link in the background. The mark is recorded before the script runs.
func (w *Watcher) SendToKindle(id string) error {
	if !w.Enabled {
		return ErrDisabled
	}
	articles, err := w.articles()
	if err != nil {
		return err
	}
	var article Article
	for _, a := range articles {
		if a.ID() == id {
			article = a
			break
		}
	}
	if article == nil {
		return ErrArticleNotFound
	}

	err = docstore.UpdateJSON(w.KindleSentFile, func(ids *[]string) error {
		for _, s := range *ids {
			if s == id {
				return ErrAlreadySent
			}
		}
		*ids = append(*ids, id)
		return nil
	})
	if err != nil {
		return err
	}

	script := filepath.Join(w.BinDir, "send-to-kindle")
	if _, err := os.Stat(script); err != nil {
		return nil
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		res, err := w.Runner.Run(context.Background(), KindleTimeout, script, article.Link())
		if err != nil {
			w.Logger.Error("send-to-kindle failed", "article", id, "error", err, "stderr", res.Stderr)
			return
		}
		w.Logger.Info("sent to kindle", "article", id)
	}()
	return nil
}

// Wait blocks until background sends have finished.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// Check runs the feed watcher once and waits for it.
func (w *Watcher) Check(ctx context.Context) (runner.Result, error) {
	if !w.Enabled {
		return runner.Result{}, ErrDisabled
	}
	script := filepath.Join(w.BinDir, "feed-watcher")
	if _, err := os.Stat(script); err != nil {
		return runner.Result{}, ErrNoFeedWatcher
	}
	res, err := w.Runner.Run(ctx, CheckTimeout, script)
	if err != nil {
		return res, runner.Failed(err, res)
	}
	return res, nil
}
