// Package skills lists and edits an agent's SKILL.md files.
package skills

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openclaw/admin-ui/pkg/utils"
)

const previewChars = 400

var ErrInvalidName = errors.New("invalid skill name")

// Metadata is the frontmatter of a SKILL.md.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Skill is one listed skill directory.
type Skill struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Preview     string `json:"preview"`
}

// Doc is a skill's SKILL.md.
type Doc struct {
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
	Lines   int    `json:"lines"`
}

// Loader reads skills under SkillsDir/<name>/SKILL.md.
type Loader struct {
	SkillsDir string
}

// NewLoader creates a loader for skillsDir.
func NewLoader(skillsDir string) *Loader {
	return &Loader{SkillsDir: skillsDir}
}

// ListSkills lists every skill directory. Directories without a SKILL.md
// are listed by name only.
func (l *Loader) ListSkills() ([]Skill, error) {
	entries, err := os.ReadDir(l.SkillsDir)
	if err != nil {
		return []Skill{}, nil
	}

	skills := make([]Skill, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		skill := Skill{Name: name, Title: name}
		if content, err := os.ReadFile(filepath.Join(l.SkillsDir, name, "SKILL.md")); err == nil {
			skill.Title, skill.Description = describe(name, string(content))
			skill.Preview = utils.Truncate(string(content), previewChars)
		}
		skills = append(skills, skill)
	}
	return skills, nil
}

func (l *Loader) skillPath(name string) (string, error) {
	if err := utils.PlainName(name); err != nil {
		return "", ErrInvalidName
	}
	return utils.SafeJoin(l.SkillsDir, name, "SKILL.md")
}

// Read returns the SKILL.md of name.
func (l *Loader) Read(name string) (Doc, error) {
	path, err := l.skillPath(name)
	if err != nil {
		return Doc{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Doc{}, err
	}
	content := string(data)
	return Doc{Name: name, Content: content, Lines: utils.CountLines(content)}, nil
}

// Write stores the SKILL.md of name, creating the skill directory.
func (l *Loader) Write(name, content string) (Doc, error) {
	path, err := l.skillPath(name)
	if err != nil {
		return Doc{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Doc{}, err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return Doc{}, err
	}
	return Doc{Name: name, Lines: utils.CountLines(content)}, nil
}

const maxScanLines = 10

var (
	headingRe   = regexp.MustCompile(`^#+\s*`)
	frontNameRe = regexp.MustCompile(`(?m)^name:\s*(.+)$`)
	frontDescRe = regexp.MustCompile(`(?m)^description:\s*(.+)$`)
)

// describe picks a title and description from frontmatter, or from the first
// heading and the first prose line after it.
func describe(name, content string) (title, description string) {
	title = name
	if strings.HasPrefix(content, "---") {
		end := strings.Index(content[3:], "---")
		if end == -1 {
			return title, ""
		}
		front := content[3 : 3+end]
		meta, err := parseFrontmatter(front)
		if err == nil {
			if meta.Name != "" {
				title = strings.TrimSpace(meta.Name)
			}
			return title, strings.TrimSpace(meta.Description)
		}
		// Frontmatter that is not valid YAML still often has plain key lines.
		if m := frontNameRe.FindStringSubmatch(front); m != nil {
			title = strings.TrimSpace(m[1])
		}
		if m := frontDescRe.FindStringSubmatch(front); m != nil {
			description = strings.TrimSpace(m[1])
		}
		return title, description
	}

	lines := strings.Split(content, "\n")
	if t := strings.TrimSpace(headingRe.ReplaceAllString(lines[0], "")); t != "" {
		title = t
	}
	for i := 1; i < len(lines) && i < maxScanLines; i++ {
		line := strings.TrimSpace(lines[i])
		if line != "" && !strings.HasPrefix(line, "#") {
			return title, line
		}
	}
	return title, ""
}

func parseFrontmatter(front string) (Metadata, error) {
	var meta Metadata
	err := yaml.Unmarshal([]byte(front), &meta)
	return meta, err
}
