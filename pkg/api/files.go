package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openclaw/admin-ui/pkg/config"
	"github.com/openclaw/admin-ui/pkg/memory"
	"github.com/openclaw/admin-ui/pkg/skills"
	"github.com/openclaw/admin-ui/pkg/workspace"
)

const fileNotFound = "File not found"

type fileEntry struct {
	Filename string `json:"filename"`
	Lines    int    `json:"lines"`
	Size     int64  `json:"size"`
}

type written struct {
	Filename string `json:"filename,omitempty"`
	Name     string `json:"name,omitempty"`
	Slug     string `json:"slug,omitempty"`
	File     string `json:"file,omitempty"`
	Lines    int    `json:"lines"`
	OK       bool   `json:"ok"`
}

// agent resolves the directories of the ?agent= workspace.
func (s *Server) agent(r *http.Request) config.AgentPaths {
	return s.cfg.AgentPaths(r.URL.Query().Get("agent"))
}

func (s *Server) listWorkspace(w http.ResponseWriter, r *http.Request) {
	entries, err := workspace.MarkdownDir(s.agent(r).Workspace).List()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	out := make([]fileEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, fileEntry{Filename: e.Name, Lines: e.Lines, Size: e.Size})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) readWorkspace(w http.ResponseWriter, r *http.Request) {
	readDoc(w, r, workspace.MarkdownDir(s.agent(r).Workspace))
}

func (s *Server) writeWorkspace(w http.ResponseWriter, r *http.Request) {
	writeDoc(w, r, workspace.MarkdownDir(s.agent(r).Workspace))
}

func readDoc(w http.ResponseWriter, r *http.Request, dir workspace.Dir) {
	doc, err := dir.Read(chi.URLParam(r, "filename"))
	if err != nil {
		writeErr(w, r, err, fileNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeDoc(w http.ResponseWriter, r *http.Request, dir workspace.Dir) {
	name := chi.URLParam(r, "filename")
	content, err := contentBody(r)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	lines, err := dir.Write(name, content)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, written{Filename: name, Lines: lines, OK: true})
}

func (s *Server) friends(r *http.Request) workspace.Friends {
	return workspace.Friends{Dir: s.agent(r).Friends}
}

func (s *Server) listFriends(w http.ResponseWriter, r *http.Request) {
	list, err := s.friends(r).List()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) readFriend(w http.ResponseWriter, r *http.Request) {
	doc, err := s.friends(r).Read(chi.URLParam(r, "slug"), chi.URLParam(r, "file"))
	if err != nil {
		writeErr(w, r, err, fileNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) writeFriend(w http.ResponseWriter, r *http.Request) {
	content, err := contentBody(r)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	doc, err := s.friends(r).Write(chi.URLParam(r, "slug"), chi.URLParam(r, "file"), content)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, written{Slug: doc.Slug, File: doc.File, Lines: doc.Lines, OK: true})
}

func (s *Server) deleteFriend(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := s.friends(r).Delete(slug); err != nil {
		writeErr(w, r, err, "")
		return
	}
	s.logger.Info("friend deleted", "slug", slug)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) memory(r *http.Request) *memory.MemoryStore {
	return memory.NewMemoryStore(s.agent(r).Memory)
}

func (s *Server) listMemory(w http.ResponseWriter, r *http.Request) {
	files, err := s.memory(r).ListMemoryFiles()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) readMemory(w http.ResponseWriter, r *http.Request) {
	readDoc(w, r, s.memory(r).Days())
}

func (s *Server) writeMemory(w http.ResponseWriter, r *http.Request) {
	writeDoc(w, r, s.memory(r).Days())
}

func (s *Server) listStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.memory(r).ListStories()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, stories)
}

func (s *Server) readStory(w http.ResponseWriter, r *http.Request) {
	readDoc(w, r, s.memory(r).Stories())
}

func (s *Server) writeStory(w http.ResponseWriter, r *http.Request) {
	writeDoc(w, r, s.memory(r).Stories())
}

func (s *Server) skills(r *http.Request) *skills.Loader {
	return skills.NewLoader(s.agent(r).Skills)
}

func (s *Server) listSkills(w http.ResponseWriter, r *http.Request) {
	list, err := s.skills(r).ListSkills()
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) readSkill(w http.ResponseWriter, r *http.Request) {
	doc, err := s.skills(r).Read(chi.URLParam(r, "name"))
	if err != nil {
		writeErr(w, r, err, "Skill not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) writeSkill(w http.ResponseWriter, r *http.Request) {
	content, err := contentBody(r)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	doc, err := s.skills(r).Write(chi.URLParam(r, "name"), content)
	if err != nil {
		writeErr(w, r, err, "")
		return
	}
	s.logger.Info("skill saved", "skill", doc.Name)
	writeJSON(w, http.StatusOK, written{Name: doc.Name, Lines: doc.Lines, OK: true})
}
