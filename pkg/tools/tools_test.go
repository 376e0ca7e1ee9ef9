package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/openclaw/admin-ui/pkg/runner"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		content, file, want string
	}{
		{"#!/bin/bash\necho", "x", "bash"},
		{"#!/usr/bin/env python3\n", "x.sh", "python"},
		{"#!/usr/bin/env node\n", "x", "javascript"},
		{"#!/usr/bin/env deno\n", "x.ts", "typescript"},
		{"select 1;", "q.SQL", "sql"},
		{"plain", "notes", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.file+"/"+tt.want, func(t *testing.T) {
			if got := DetectLanguage(tt.content, tt.file); got != tt.want {
				t.Errorf("DetectLanguage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractDescription(t *testing.T) {
	tests := []struct {
		name, content, lang, want string
	}{
		{"bash", "#!/bin/bash\n\n# Backs up the notes\n# nightly.\necho hi", "bash", "Backs up the notes nightly."},
		{"sql", "-- Daily totals\n--by agent\nselect 1;", "sql", "Daily totals by agent"},
		{"jsdoc", "/**\n * Sends a digest.\n * Runs hourly.\n */\nmain()", "javascript", "Sends a digest. Runs hourly."},
		{"one line block", "/* Short one */\nconst a = 1\n", "typescript", "Short one"},
		{"slashes", "// first\n// second\ncode", "swift", "first second"},
		{"js without comment", "const x = 1", "javascript", ""},
		{"hash in any language", "# heading\nbody", "markdown", "heading"},
		{"only shebang", "#!/bin/sh\n\n", "bash", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDescription(tt.content, tt.lang); got != tt.want {
				t.Errorf("ExtractDescription = %q, want %q", got, tt.want)
			}
		})
	}
}

func newBin(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "backup"), []byte("#!/bin/bash\n# Backup job\necho ok\n"), 0755)
	os.WriteFile(filepath.Join(dir, "report.sql"), []byte("-- Report\nselect 1;\n"), 0644)
	os.WriteFile(filepath.Join(dir, "blob"), []byte{'E', 'L', 'F', 0, 1}, 0755)
	os.WriteFile(filepath.Join(dir, "huge.txt"), []byte(strings.Repeat("x", previewMaxBytes)), 0644)
	os.Mkdir(filepath.Join(dir, "lib"), 0755)
	return dir
}

func TestList(t *testing.T) {
	r := NewRegistry(newBin(t))
	list, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]Tool{}
	for _, tool := range list {
		byName[tool.Name] = tool
	}
	if len(byName) != 5 {
		t.Fatalf("list = %+v", list)
	}
	if b := byName["backup"]; !b.IsExecutable || !b.IsFile || !strings.HasPrefix(b.Preview, "#!/bin/bash") {
		t.Errorf("backup = %+v", b)
	}
	if h := byName["huge.txt"]; h.Preview != "" || h.SizeHuman != "50 kB" {
		t.Errorf("huge = %+v", h)
	}
	if l := byName["lib"]; !l.IsDirectory || l.IsFile {
		t.Errorf("lib = %+v", l)
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry(newBin(t))

	d, err := r.Get("backup")
	if err != nil {
		t.Fatal(err)
	}
	if d.Language != "bash" || d.Description != "Backup job" || d.Editable || d.IsBinary {
		t.Errorf("backup = %+v", d)
	}

	d, _ = r.Get("blob")
	if !d.IsBinary || d.Language != "binary" || d.Content != "" {
		t.Errorf("blob = %+v", d)
	}

	d, _ = r.Get("report.sql")
	if !d.Editable || d.Language != "sql" || d.Description != "Report" {
		t.Errorf("report = %+v", d)
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
	if _, err := r.Get("../etc"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("traversal err = %v", err)
	}
}

func TestWrite(t *testing.T) {
	dir := newBin(t)
	r := NewRegistry(dir)
	if err := r.Write("report.sql", "select 2;"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "report.sql"))
	if string(data) != "select 2;" {
		t.Errorf("content = %q", data)
	}
	if err := r.Write("backup", "rm -rf /"); !errors.Is(err, ErrNotEditable) {
		t.Errorf("backup err = %v", err)
	}
}

func TestExecute(t *testing.T) {
	dir := newBin(t)
	fake := &runner.Fake{Respond: func(c runner.Call) (runner.Result, error) {
		return runner.Result{Stdout: "ok\n"}, nil
	}}
	ex := NewExecTool(NewRegistry(dir), fake, nil)

	res, err := ex.Execute(context.Background(), "backup", "  --dry-run   notes ")
	if err != nil || res.Stdout != "ok\n" {
		t.Fatalf("Execute = %+v, %v", res, err)
	}
	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %+v", calls)
	}
	if calls[0].Name != filepath.Join(dir, "backup") || !reflect.DeepEqual(calls[0].Args, []string{"--dry-run", "notes"}) {
		t.Errorf("call = %+v", calls[0])
	}
	if calls[0].Timeout != RunTimeout {
		t.Errorf("timeout = %v", calls[0].Timeout)
	}

	tests := []struct {
		name string
		err  error
	}{
		{"report.sql", ErrNotExecutable},
		{"lib", ErrNotFile},
		{"nope", ErrNotFound},
		{"a/b", ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ex.Execute(context.Background(), tt.name, ""); !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}
	if len(fake.Calls()) != 1 {
		t.Error("rejected tools must not run")
	}
}

func TestExecuteFailureKeepsOutput(t *testing.T) {
	fake := &runner.Fake{Respond: func(runner.Call) (runner.Result, error) {
		return runner.Result{Stdout: "half", Stderr: "disk full"}, errors.New("exit status 2")
	}}
	_, err := NewExecTool(NewRegistry(newBin(t)), fake, nil).Execute(context.Background(), "backup", "")
	var ce *runner.CommandError
	if !errors.As(err, &ce) || ce.Stdout != "half" || ce.Stderr != "disk full" {
		t.Errorf("err = %v", err)
	}
}
