package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) blogArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.blog.Articles()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) blogDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.blog.Draft(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) blogSendToKindle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.blog.SendToKindle(id); err != nil {
		writeErr(w, r, err, "")
		return
	}
	s.logger.Info("kindle send queued", "article", id)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) blogFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.blog.Feeds()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, feeds)
}

func (s *Server) blogStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.blog.Status()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) blogCheck(w http.ResponseWriter, r *http.Request) {
	res, err := s.blog.Check(r.Context())
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stdout": res.Stdout, "stderr": res.Stderr})
}

func (s *Server) textDecisions(w http.ResponseWriter, r *http.Request) {
	d, err := s.text.Decisions()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) textWatchedChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.text.WatchedChats(r.Context(), s.now())
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

func (s *Server) textUnwatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "chatId")
	if err := s.text.Unwatch(id); err != nil {
		writeErr(w, r, err, "")
		return
	}
	s.logger.Info("chat unwatched", "chat", id)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) textStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.text.Stats()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, st)
}
