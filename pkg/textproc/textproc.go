// Package textproc serves the text processor's decision log and the list of
// chats it watches.
package textproc

import (
	"context"
	"errors"
	"io/fs"
	"strconv"
	"time"

	"github.com/openclaw/admin-ui/pkg/config"
	"github.com/openclaw/admin-ui/pkg/docstore"
)

// Decision is one logged classification. The processor owns the schema.
type Decision map[string]any

// Action is deepseek.action, or "none".
func (d Decision) Action() string {
	if ds, ok := d["deepseek"].(map[string]any); ok {
		if a, ok := ds["action"].(string); ok && a != "" {
			return a
		}
	}
	return "none"
}

// Stats aggregates the decision log.
type Stats struct {
	Total     int            `json:"total"`
	Flagged   int            `json:"flagged"`
	Escalated int            `json:"escalated"`
	Approved  int            `json:"approved"`
	Rejected  int            `json:"rejected"`
	ByAction  map[string]int `json:"byAction"`
}

var approvedOutcomes = map[string]bool{
	"memory_saved":  true,
	"reminder_sent": true,
	"calendar_sent": true,
}

// Processor reads the text processor's files.
type Processor struct {
	Enabled       bool
	ChatsEnabled  bool
	DecisionsFile string
	WatchedFile   string
	ConfigFile    string
	DMContext     string
	Groups        GroupNamer
}

// New builds a Processor from the configuration.
func New(cfg *config.Config) *Processor {
	p := cfg.Paths()
	return &Processor{
		Enabled:       cfg.Features.TextProcessor,
		ChatsEnabled:  cfg.Features.ActiveChats,
		DecisionsFile: p.DecisionsFile,
		WatchedFile:   p.WatchedChats,
		ConfigFile:    p.OpenclawConfig,
		DMContext:     cfg.DMContext,
		Groups:        GroupNamer{ChatDB: cfg.TextProcessor.ChatDB, ContactsFile: cfg.TextProcessor.ContactsFile},
	}
}

func readOptional(path string, v any) error {
	err := docstore.ReadJSON(path, v)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Decisions returns the decision log as stored.
func (p *Processor) Decisions() ([]Decision, error) {
	if !p.Enabled {
		return []Decision{}, nil
	}
	decisions := []Decision{}
	if err := readOptional(p.DecisionsFile, &decisions); err != nil {
		return nil, err
	}
	if decisions == nil {
		decisions = []Decision{}
	}
	return decisions, nil
}

// Stats counts decisions by outcome and action.
func (p *Processor) Stats() (Stats, error) {
	decisions, err := p.Decisions()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Total: len(decisions), ByAction: map[string]int{}}
	for _, d := range decisions {
		action := d.Action()
		st.ByAction[action]++
		if action != "none" {
			st.Flagged++
		}
		if esc, _ := d["escalated"].(bool); esc {
			st.Escalated++
		}
		outcome, _ := d["outcome"].(string)
		switch {
		case approvedOutcomes[outcome]:
			st.Approved++
		case outcome == "rejected":
			st.Rejected++
		}
	}
	return st, nil
}

// WatchedChat is one chat the processor listens to. Temporary chats carry
// whatever fields the processor stored.
type WatchedChat map[string]any

type binding struct {
	Match struct {
		Channel string `json:"channel"`
		Peer    struct {
			Kind string `json:"kind"`
			ID   any    `json:"id"`
		} `json:"peer"`
	} `json:"match"`
}

// jsTime is the layout of JavaScript's Date.toISOString, which the
// processor uses for expires_at.
const jsTime = "2006-01-02T15:04:05.000Z"

// WatchedChats lists the main DM and the iMessage groups bound in
// openclaw.json, then the temporary chats that have not expired.
func (p *Processor) WatchedChats(ctx context.Context, now time.Time) ([]WatchedChat, error) {
	out := []WatchedChat{}
	if !p.Enabled && !p.ChatsEnabled {
		return out, nil
	}

	var cfg struct {
		Bindings []binding `json:"bindings"`
	}
	if err := docstore.ReadJSON(p.ConfigFile, &cfg); err == nil {
		out = append(out, WatchedChat{"chat_id": "main", "context": p.DMContext, "permanent": true})
		for _, b := range cfg.Bindings {
			if b.Match.Channel != "imessage" || b.Match.Peer.Kind != "group" {
				continue
			}
			id := idString(b.Match.Peer.ID)
			out = append(out, WatchedChat{"chat_id": b.Match.Peer.ID, "context": p.Groups.Name(ctx, id), "permanent": true})
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var chats []WatchedChat
	if err := readOptional(p.WatchedFile, &chats); err != nil {
		return nil, err
	}
	cutoff := now.UTC().Format(jsTime)
	for _, c := range chats {
		if exp, _ := c["expires_at"].(string); exp > cutoff {
			e := make(WatchedChat, len(c)+1)
			for k, v := range c {
				e[k] = v
			}
			e["permanent"] = false
			out = append(out, e)
		}
	}
	return out, nil
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}

// Unwatch drops temporary chats whose numeric chat_id equals chatID. A
// non-numeric chatID matches nothing.
func (p *Processor) Unwatch(chatID string) error {
	id, err := strconv.ParseFloat(chatID, 64)
	numeric := err == nil
	return docstore.UpdateJSON(p.WatchedFile, func(chats *[]WatchedChat) error {
		kept := make([]WatchedChat, 0, len(*chats))
		for _, c := range *chats {
			if n, ok := c["chat_id"].(float64); ok && numeric && n == id {
				continue
			}
			kept = append(kept, c)
		}
		*chats = kept
		return nil
	})
}
