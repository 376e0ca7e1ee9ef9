package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeJoin(t *testing.T) {
	base := "/srv/clawd"
	tests := []struct {
		name    string
		elems   []string
		want    string
		wantErr bool
	}{
		{"plain file", []string{"SOUL.md"}, "/srv/clawd/SOUL.md", false},
		{"nested", []string{"bob", "index.md"}, "/srv/clawd/bob/index.md", false},
		{"base itself", []string{"."}, "/srv/clawd", false},
		{"parent escape", []string{"../etc/passwd"}, "", true},
		{"sibling prefix", []string{"../clawd-other/x.md"}, "", true},
		{"inner dotdot stays inside", []string{"a/../b.md"}, "/srv/clawd/b.md", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeJoin(base, tt.elems...)
			if tt.wantErr {
				if !errors.Is(err, ErrPathTraversal) {
					t.Fatalf("err = %v, want ErrPathTraversal", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlainName(t *testing.T) {
	for _, name := range []string{"", ".", "a/b", "..", "x..y", `a\b`} {
		if err := PlainName(name); err == nil {
			t.Errorf("PlainName(%q) accepted", name)
		}
	}
	for _, name := range []string{"backup.sh", "weather", "query.sql"} {
		if err := PlainName(name); err != nil {
			t.Errorf("PlainName(%q) = %v", name, err)
		}
	}
}

func TestCountLines(t *testing.T) {
	if n := CountLines(""); n != 1 {
		t.Errorf("empty = %d", n)
	}
	if n := CountLines("a\nb\n"); n != 3 {
		t.Errorf("trailing newline = %d", n)
	}
}

func TestRotatableLoggerRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adminui.log")
	l := NewRotatableLogger(path, 10, 2)
	defer l.Close()

	for i := 0; i < 3; i++ {
		if _, err := l.Write([]byte("0123456789\n")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Errorf("expected first backup: %v", err)
	}
	if _, err := os.Stat(path + ".2"); err != nil {
		t.Errorf("expected second backup: %v", err)
	}
}
