package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openclaw/admin-ui/pkg/services"
)

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	list, err := s.tools.List()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getTool(w http.ResponseWriter, r *http.Request) {
	d, err := s.tools.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) writeTool(w http.ResponseWriter, r *http.Request) {
	content, err := contentBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.tools.Write(name, content); err != nil {
		writeErr(w, r, err, "")
		return
	}
	s.logger.Info("tool saved", "tool", name)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) runTool(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Args string `json:"args"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, r, err, "")
		return
	}
	res, err := s.exec.Execute(r.Context(), chi.URLParam(r, "name"), body.Args)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stdout": res.Stdout, "stderr": res.Stderr})
}

func (s *Server) readSettings(w http.ResponseWriter, r *http.Request) {
	doc, err := s.settings.Read()
	if err != nil {
		writeErr(w, r, err, "Settings file not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) writeSettings(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(raw) {
		writeErr(w, r, errBadBody, "")
		return
	}
	if err := s.settings.Write(raw); err != nil {
		writeErr(w, r, err, "")
		return
	}
	s.logger.Info("settings saved", "path", s.paths.OpenclawConfig)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	list, err := s.services.List(r.Context())
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) serviceAction(w http.ResponseWriter, r *http.Request) {
	res, err := s.services.Do(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "action"))
	if errors.Is(err, services.ErrUnknownService) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Unknown service", "known": s.cfg.Services})
		return
	}
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
