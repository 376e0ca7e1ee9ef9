// Package session reads the gateway's session indexes and transcripts.
package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openclaw/admin-ui/pkg/utils"
)

// DefaultContextTokens is assumed when an index entry has no window size.
const DefaultContextTokens = 200000

var ErrTranscriptNotFound = errors.New("session transcript not found")

// Session types derived from the key.
const (
	TypeCron     = "cron"
	TypeSubagent = "subagent"
	TypeGroup    = "group"
	TypeDirect   = "direct"
)

// Entry is the part of a sessions.json value the dashboard reads.
type Entry struct {
	SessionID       string `json:"sessionId"`
	UpdatedAt       int64  `json:"updatedAt"`
	TotalTokens     int64  `json:"totalTokens"`
	ContextTokens   int64  `json:"contextTokens"`
	Model           string `json:"model"`
	AbortedLastRun  bool   `json:"abortedLastRun"`
	LastTo          string `json:"lastTo"`
	DeliveryContext struct {
		To string `json:"to"`
	} `json:"deliveryContext"`
}

// Summary is one row of the sessions list.
type Summary struct {
	Key            string `json:"key"`
	SessionID      string `json:"sessionId"`
	Agent          string `json:"agent"`
	Type           string `json:"type"`
	TotalTokens    int64  `json:"totalTokens"`
	ContextTokens  int64  `json:"contextTokens"`
	PercentUsed    int64  `json:"percentUsed"`
	FriendlyName   string `json:"friendlyName"`
	UpdatedAt      int64  `json:"updatedAt"`
	Model          string `json:"model"`
	AbortedLastRun bool   `json:"abortedLastRun"`
}

// Message is one user or assistant turn of a transcript.
type Message struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Manager reads sessions from the agents' session directories. Later
// directories win when two indexes share a key.
type Manager struct {
	SessionsDirs []string
}

// NewManager creates a manager over dirs, in precedence order lowest first.
func NewManager(dirs ...string) *Manager {
	return &Manager{SessionsDirs: dirs}
}

func readIndex(dir string) map[string]json.RawMessage {
	idx := map[string]json.RawMessage{}
	data, err := os.ReadFile(filepath.Join(dir, "sessions.json"))
	if err != nil {
		return idx
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return map[string]json.RawMessage{}
	}
	return idx
}

// Index merges every sessions.json. Unreadable indexes count as empty and
// entries that fail to decode are skipped.
func (m *Manager) Index() map[string]Entry {
	merged := map[string]Entry{}
	for _, dir := range m.SessionsDirs {
		for key, raw := range readIndex(dir) {
			var e Entry
			if err := json.Unmarshal(raw, &e); err != nil {
				continue
			}
			merged[key] = e
		}
	}
	return merged
}

// TypeOf classifies a session key such as agent:main:cron:<job>:<run>.
func TypeOf(key string) string {
	switch {
	case strings.Contains(key, ":cron:"):
		return TypeCron
	case strings.Contains(key, ":subagent:"):
		return TypeSubagent
	case strings.Contains(key, ":group:"):
		return TypeGroup
	}
	return TypeDirect
}

// AgentOf returns the agent segment of a session key.
func AgentOf(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return "main"
}

// List summarises every session, most recently updated first. jobNames maps
// cron job ids to names for cron sessions.
func (m *Manager) List(jobNames map[string]string) []Summary {
	idx := m.Index()
	out := make([]Summary, 0, len(idx))
	for key, e := range idx {
		ctx := e.ContextTokens
		if ctx == 0 {
			ctx = DefaultContextTokens
		}
		typ := TypeOf(key)
		out = append(out, Summary{
			Key:            key,
			SessionID:      e.SessionID,
			Agent:          AgentOf(key),
			Type:           typ,
			TotalTokens:    e.TotalTokens,
			ContextTokens:  ctx,
			PercentUsed:    roundDiv(e.TotalTokens*100, ctx),
			FriendlyName:   friendlyName(key, typ, e, jobNames),
			UpdatedAt:      e.UpdatedAt,
			Model:          e.Model,
			AbortedLastRun: e.AbortedLastRun,
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].UpdatedAt != out[b].UpdatedAt {
			return out[a].UpdatedAt > out[b].UpdatedAt
		}
		return out[a].Key < out[b].Key
	})
	return out
}

func roundDiv(n, d int64) int64 {
	if d == 0 {
		return 0
	}
	return (2*n + d) / (2 * d)
}

func friendlyName(key, typ string, e Entry, jobNames map[string]string) string {
	to := e.DeliveryContext.To
	if to == "" {
		to = e.LastTo
	}
	to = strings.TrimPrefix(to, "imessage:")

	switch typ {
	case TypeCron:
		parts := strings.Split(key, ":")
		jobID := ""
		if len(parts) > 3 {
			jobID = parts[3]
		}
		if name := jobNames[jobID]; name != "" {
			return name
		}
		return prefix(jobID, 8)
	case TypeGroup:
		if to != "" {
			return to
		}
		return "Group"
	}
	if to != "" {
		return to
	}
	return prefix(e.SessionID, 8)
}

func prefix(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// TotalTokens sums tokens across the merged index and reports the first
// model seen.
func (m *Manager) TotalTokens() (sessions int, tokens int64, model string) {
	idx := m.Index()
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := idx[k]
		tokens += e.TotalTokens
		if model == "" {
			model = e.Model
		}
	}
	return len(idx), tokens, model
}

func (m *Manager) transcriptPath(sessionID string) (string, error) {
	if err := utils.PlainName(sessionID); err != nil {
		return "", err
	}
	for _, dir := range m.SessionsDirs {
		path, err := utils.SafeJoin(dir, sessionID+".jsonl")
		if err != nil {
			return "", err
		}
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", ErrTranscriptNotFound
}

type transcriptLine struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Message   *struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Messages returns up to limit user and assistant messages of a transcript,
// newest first. The first sessions directory holding <id>.jsonl wins.
func (m *Manager) Messages(sessionID string, limit int) ([]Message, error) {
	path, err := m.transcriptPath(sessionID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var msgs []Message
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var entry transcriptLine
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if entry.Type != "message" || entry.Message == nil {
			continue
		}
		role := entry.Message.Role
		if role != "user" && role != "assistant" {
			continue
		}
		text := contentText(entry.Message.Content)
		if text == "" || text == "NO_REPLY" {
			continue
		}
		msgs = append(msgs, Message{Role: role, Text: text, Timestamp: entry.Timestamp})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	out := make([]Message, 0, min(len(msgs), max(limit, 0)))
	for i := len(msgs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, msgs[i])
	}
	return out, nil
}

// contentText joins the text blocks of a message body; a plain string body
// is used as is.
func contentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}
