package skills

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSkill(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, name)
	os.MkdirAll(dir, 0755)
	if err := os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name, content, title, desc string
	}{
		{"yaml", "---\nname: Weather\ndescription: Look up forecasts\n---\n# body", "Weather", "Look up forecasts"},
		{"yaml quoted", "---\nname: \"Calendar: sync\"\ndescription: 'Two words'\n---\n", "Calendar: sync", "Two words"},
		{"broken yaml", "---\nname: Notes: personal\ndescription: Keeps notes\n  - bad\n---\n", "Notes: personal", "Keeps notes"},
		{"unterminated", "---\nname: x\n", "unterminated", ""},
		{"heading", "# Shopping list\n\n## Usage\nAdd items with care.\n", "Shopping list", "Add items with care."},
		{"no prose", "# Title\n## A\n## B\n", "Title", ""},
		{"empty heading", "#\ntext", "empty heading", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, desc := describe(tt.name, tt.content)
			if title != tt.title || desc != tt.desc {
				t.Errorf("got (%q, %q), want (%q, %q)", title, desc, tt.title, tt.desc)
			}
		})
	}
}

func TestDescribeScansOnlyFirstLines(t *testing.T) {
	content := "# T\n" + strings.Repeat("#\n", 9) + "late prose\n"
	if _, desc := describe("x", content); desc != "" {
		t.Errorf("desc = %q, want none past line 10", desc)
	}
}

func TestListSkills(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "weather", "---\nname: Weather\ndescription: Forecasts\n---\n"+strings.Repeat("é", 500))
	os.MkdirAll(filepath.Join(root, "empty"), 0755)
	os.WriteFile(filepath.Join(root, "stray.md"), []byte("x"), 0644)

	l := NewLoader(root)
	list, err := l.ListSkills()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Name != "empty" || list[0].Title != "empty" || list[0].Preview != "" {
		t.Errorf("empty = %+v", list[0])
	}
	w := list[1]
	if w.Title != "Weather" || w.Description != "Forecasts" || len([]rune(w.Preview)) != previewChars {
		t.Errorf("weather = %+v (preview %d runes)", w.Title, len([]rune(w.Preview)))
	}

	if got, _ := NewLoader(filepath.Join(root, "missing")).ListSkills(); got == nil || len(got) != 0 {
		t.Errorf("missing dir = %v", got)
	}
}

func TestReadWrite(t *testing.T) {
	root := t.TempDir()
	l := NewLoader(root)

	doc, err := l.Write("new-skill", "# New\nbody")
	if err != nil || doc.Lines != 2 {
		t.Fatalf("Write = %+v, %v", doc, err)
	}
	doc, err = l.Read("new-skill")
	if err != nil || doc.Content != "# New\nbody" {
		t.Errorf("Read = %+v, %v", doc, err)
	}

	for _, bad := range []string{"a/b", "..", "x..y", ""} {
		if _, err := l.Read(bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Read(%q) err = %v", bad, err)
		}
		if _, err := l.Write(bad, "x"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Write(%q) err = %v", bad, err)
		}
	}
	if _, err := l.Read("absent"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("absent err = %v", err)
	}
}
