package textproc

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

const participantsQuery = `SELECT GROUP_CONCAT(h.id, '|')
FROM chat c
JOIN chat_handle_join chj ON c.ROWID = chj.chat_id
JOIN handle h ON chj.handle_id = h.ROWID
WHERE c.ROWID = ?`

// GroupNamer turns an iMessage group chat id into the first names of its
// participants, using the Messages database and a phone|name contacts file.
type GroupNamer struct {
	ChatDB       string
	ContactsFile string
}

// Name returns "Alice, Bob" style names, or "Group #<id>" when anything
// along the way fails.
func (g GroupNamer) Name(ctx context.Context, chatID string) string {
	fallback := "Group #" + chatID
	if g.ChatDB == "" {
		return fallback
	}
	if _, err := os.Stat(g.ChatDB); err != nil {
		return fallback
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fallback
	}
	handles, err := g.participants(ctx, id)
	if err != nil || len(handles) == 0 {
		return fallback
	}

	contacts := g.contacts()
	names := make([]string, 0, len(handles))
	for _, h := range handles {
		h = strings.TrimSpace(h)
		if name, ok := contacts[h]; ok {
			first, _, _ := strings.Cut(name, " ")
			names = append(names, first)
			continue
		}
		names = append(names, h)
	}
	return strings.Join(names, ", ")
}

func (g GroupNamer) participants(ctx context.Context, chatID int64) ([]string, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", g.ChatDB))
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var raw sql.NullString
	if err := db.QueryRowContext(ctx, participantsQuery, chatID).Scan(&raw); err != nil {
		return nil, err
	}
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil, nil
	}
	return strings.Split(strings.TrimSpace(raw.String), "|"), nil
}

// contacts reads phone|name lines.
func (g GroupNamer) contacts() map[string]string {
	m := map[string]string{}
	if g.ContactsFile == "" {
		return m
	}
	data, err := os.ReadFile(g.ContactsFile)
	if err != nil {
		return m
	}
	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		phone, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if phone != "" && name != "" {
			m[phone] = name
		}
	}
	return m
}
