package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/openclaw/admin-ui/pkg/utils"
)

func TestMarkdownDir(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "SOUL.md"), []byte("# Soul\nline two\n"), 0644)
	os.WriteFile(filepath.Join(root, "notes.txt"), []byte("skip"), 0644)
	os.Mkdir(filepath.Join(root, "dir.md"), 0755)
	d := MarkdownDir(root)

	list, err := d.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "SOUL.md" || list[0].Lines != 3 {
		t.Errorf("list = %+v", list)
	}

	doc, err := d.Read("SOUL.md")
	if err != nil || doc.Lines != 3 || doc.Content != "# Soul\nline two\n" {
		t.Errorf("Read = %+v, %v", doc, err)
	}

	tests := []struct {
		name string
		err  error
	}{
		{"notes.txt", ErrNotMarkdown},
		{"../outside.md", utils.ErrPathTraversal},
		{"missing.md", os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.Read(tt.name); !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}

	lines, err := d.Write("NEW.md", "a\nb")
	if err != nil || lines != 2 {
		t.Errorf("Write = %d, %v", lines, err)
	}
	if _, err := d.Write("../escape.md", "x"); !errors.Is(err, utils.ErrPathTraversal) {
		t.Errorf("escape err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escape.md")); err == nil {
		t.Error("file written outside the workspace")
	}
}

func TestMissingDirListsEmpty(t *testing.T) {
	list, err := MarkdownDir(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || list == nil || len(list) != 0 {
		t.Errorf("list = %v, %v", list, err)
	}
}

func TestFriends(t *testing.T) {
	root := t.TempDir()
	alex := filepath.Join(root, "alex")
	os.MkdirAll(alex, 0755)
	os.WriteFile(filepath.Join(alex, "index.md"), []byte("## Alex Smith\nfriend from school"), 0644)
	os.WriteFile(filepath.Join(alex, "gifts.md"), []byte("books"), 0644)
	os.WriteFile(filepath.Join(alex, "photo.jpg"), []byte{0}, 0644)
	os.MkdirAll(filepath.Join(root, "sam"), 0755)
	os.WriteFile(filepath.Join(root, "README.md"), []byte("not a friend"), 0644)

	f := Friends{Dir: root}
	list, err := f.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Slug != "alex" || list[0].Name != "Alex Smith" || list[0].FileCount != 2 {
		t.Errorf("alex = %+v", list[0])
	}
	if list[1].Name != "sam" || list[1].FileCount != 0 || list[1].Files == nil {
		t.Errorf("sam = %+v", list[1])
	}

	doc, err := f.Read("alex", "gifts.md")
	if err != nil || doc.Content != "books" || doc.Lines != 1 {
		t.Errorf("Read = %+v, %v", doc, err)
	}
	if _, err := f.Read("..", "etc.md"); !errors.Is(err, utils.ErrPathTraversal) {
		t.Errorf("traversal err = %v", err)
	}

	if _, err := f.Write("jo", "index.md", "# Jo\n"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "jo", "index.md")); err != nil {
		t.Errorf("new friend not created: %v", err)
	}

	if err := f.Delete("alex"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(alex); !errors.Is(err, os.ErrNotExist) {
		t.Error("alex still exists")
	}
	if err := f.Delete("alex"); !errors.Is(err, ErrFriendNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if err := f.Delete("."); !errors.Is(err, utils.ErrPathTraversal) {
		t.Errorf("deleting the root err = %v", err)
	}
}
