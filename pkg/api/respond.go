package api

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/openclaw/admin-ui/pkg/blogwatcher"
	"github.com/openclaw/admin-ui/pkg/cron"
	"github.com/openclaw/admin-ui/pkg/memory"
	"github.com/openclaw/admin-ui/pkg/runner"
	"github.com/openclaw/admin-ui/pkg/services"
	"github.com/openclaw/admin-ui/pkg/session"
	"github.com/openclaw/admin-ui/pkg/settings"
	"github.com/openclaw/admin-ui/pkg/skills"
	"github.com/openclaw/admin-ui/pkg/tools"
	"github.com/openclaw/admin-ui/pkg/utils"
	"github.com/openclaw/admin-ui/pkg/workspace"
)

const maxBodyBytes = 5 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusMessage struct {
	status int
	msg    string
}

// knownErrors maps domain errors to the status and message the UI expects.
var knownErrors = []struct {
	err error
	statusMessage
}{
	{utils.ErrPathTraversal, statusMessage{http.StatusForbidden, "Path traversal not allowed"}},
	{cron.ErrNotFound, statusMessage{http.StatusNotFound, "Job not found"}},
	{cron.ErrMissingID, statusMessage{http.StatusBadRequest, "Job must have an id"}},
	{cron.ErrExists, statusMessage{http.StatusConflict, "Job with this id already exists"}},
	{cron.ErrNoText, statusMessage{http.StatusInternalServerError, "Agent returned no text to deliver"}},
	{workspace.ErrNotMarkdown, statusMessage{http.StatusBadRequest, "Only .md files are allowed"}},
	{workspace.ErrFriendNotFound, statusMessage{http.StatusNotFound, "Friend not found"}},
	{memory.ErrNotDaily, statusMessage{http.StatusBadRequest, "Only daily memory files (YYYY-MM-DD.md) are allowed"}},
	{skills.ErrInvalidName, statusMessage{http.StatusBadRequest, "Invalid skill name"}},
	{session.ErrTranscriptNotFound, statusMessage{http.StatusNotFound, "Session transcript not found"}},
	{tools.ErrInvalidName, statusMessage{http.StatusBadRequest, "Invalid tool name"}},
	{tools.ErrNotFound, statusMessage{http.StatusNotFound, "Tool not found"}},
	{tools.ErrNotEditable, statusMessage{http.StatusForbidden, "Only .sql files can be edited"}},
	{tools.ErrNotFile, statusMessage{http.StatusBadRequest, "Not a file"}},
	{tools.ErrNotExecutable, statusMessage{http.StatusBadRequest, "File is not executable"}},
	{settings.ErrNotObject, statusMessage{http.StatusBadRequest, "Body must be a JSON object"}},
	{services.ErrUnknownAction, statusMessage{http.StatusBadRequest, "Invalid action. Use: start, stop, restart"}},
	{blogwatcher.ErrDisabled, statusMessage{http.StatusBadRequest, "Blog watcher feature disabled"}},
	{blogwatcher.ErrArticleNotFound, statusMessage{http.StatusNotFound, "Article not found"}},
	{blogwatcher.ErrAlreadySent, statusMessage{http.StatusConflict, "Already sent to Kindle"}},
	{blogwatcher.ErrNoFeedWatcher, statusMessage{http.StatusBadRequest, "feed-watcher script not found"}},
	{blogwatcher.ErrDraftsDisabled, statusMessage{http.StatusNotFound, "LinkedIn drafts feature disabled"}},
	{blogwatcher.ErrNoDraft, statusMessage{http.StatusNotFound, "No draft for this article"}},
	{blogwatcher.ErrDraftMissing, statusMessage{http.StatusNotFound, "Draft file missing"}},
	{errBadSessionID, statusMessage{http.StatusBadRequest, "Invalid session id"}},
	{errContentNotString, statusMessage{http.StatusBadRequest, "content must be a string"}},
	{errBadBody, statusMessage{http.StatusBadRequest, "Invalid JSON body"}},
}

var (
	errBadSessionID     = errors.New("invalid session id")
	errContentNotString = errors.New("content must be a string")
	errBadBody          = errors.New("invalid JSON body")
)

// writeErr answers with the mapped status for known errors. notFound is the
// message used for a missing file; command failures carry their output.
func writeErr(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			writeError(w, k.status, k.msg)
			return
		}
	}
	if notFound != "" && errors.Is(err, fs.ErrNotExist) {
		writeError(w, http.StatusNotFound, notFound)
		return
	}

	var ce *runner.CommandError
	if errors.As(err, &ce) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  ce.Error(),
			"stdout": ce.Stdout,
			"stderr": ce.Stderr,
		})
		return
	}

	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return errBadBody
	}
	if len(data) == 0 {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errBadBody
	}
	return nil
}

// contentBody decodes {"content": "..."}.
func contentBody(r *http.Request) (string, error) {
	var body struct {
		Content json.RawMessage `json:"content"`
	}
	if err := decodeJSON(r, &body); err != nil {
		return "", errContentNotString
	}
	var content string
	if len(body.Content) == 0 || json.Unmarshal(body.Content, &content) != nil {
		return "", errContentNotString
	}
	return content, nil
}

// parseLimit reads ?limit=. Missing, non-numeric or non-positive values give
// def; larger values are capped at max (when max > 0).
func parseLimit(r *http.Request, def, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
