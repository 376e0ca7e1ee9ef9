package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openclaw/admin-ui/pkg/logtail"
	"github.com/openclaw/admin-ui/pkg/session"
	"github.com/openclaw/admin-ui/pkg/utils"
)

func (s *Server) sessionMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.sessions.Messages(chi.URLParam(r, "id"), parseLimit(r, 50, 200))
	if errors.Is(err, utils.ErrInvalidName) {
		err = errBadSessionID
	}
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	if msgs == nil {
		msgs = []session.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) watchdogState(w http.ResponseWriter, r *http.Request) {
	state, err := s.watchdog.State()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) watchdogLogs(w http.ResponseWriter, r *http.Request) {
	lines := s.watchdog.Logs(parseLimit(r, 100, 0))
	if lines == nil {
		lines = []logtail.WatchdogLine{}
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) watchdogRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.watchdog.Runs(s.now(), parseLimit(r, 50, 0)))
}

func (s *Server) watchdogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.watchdog.Stats(s.now())
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
