package tools

import (
	"path/filepath"
	"regexp"
	"strings"
)

var shebangRe = regexp.MustCompile(`^#!\s*/.*/(env\s+)?(\w+)`)

var interpreters = map[string]string{
	"bash":    "bash",
	"sh":      "bash",
	"zsh":     "bash",
	"node":    "javascript",
	"python":  "python",
	"python3": "python",
	"ruby":    "ruby",
	"perl":    "perl",
}

var extensions = map[string]string{
	".sh":    "bash",
	".bash":  "bash",
	".zsh":   "bash",
	".js":    "javascript",
	".mjs":   "javascript",
	".ts":    "typescript",
	".py":    "python",
	".rb":    "ruby",
	".pl":    "perl",
	".swift": "swift",
	".sql":   "sql",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".md":    "markdown",
	".txt":   "text",
}

// DetectLanguage names the language of a script from its shebang, falling
// back to the file extension and then to "text".
func DetectLanguage(content, filename string) string {
	if m := shebangRe.FindStringSubmatch(content); m != nil {
		if lang, ok := interpreters[m[2]]; ok {
			return lang
		}
	}
	if lang, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return lang
	}
	return "text"
}

var (
	hashLeadRe   = regexp.MustCompile(`^#\s?`)
	dashLeadRe   = regexp.MustCompile(`^--\s?`)
	slashLeadRe  = regexp.MustCompile(`^//\s?`)
	blockOpenRe  = regexp.MustCompile(`^/\*\*?\s?`)
	blockCloseRe = regexp.MustCompile(`\*/\s*$`)
	blockTailRe  = regexp.MustCompile(`\*/.*$`)
	starLeadRe   = regexp.MustCompile(`^\*\s?`)
)

// ExtractDescription joins the leading comment block of a script into one
// line. The shebang and blank lines before the block are skipped.
func ExtractDescription(content, language string) string {
	lines := strings.Split(content, "\n")
	start := 0
	if strings.HasPrefix(lines[0], "#!") {
		start = 1
	}
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start >= len(lines) {
		return ""
	}

	switch {
	case hashComments(language) || strings.HasPrefix(lines[start], "#"):
		return lineComments(lines[start:], "#", hashLeadRe)
	case language == "sql":
		return lineComments(lines[start:], "--", dashLeadRe)
	case language == "javascript" || language == "typescript" || language == "swift":
		first := strings.TrimSpace(lines[start])
		if strings.HasPrefix(first, "/*") {
			return blockComment(lines[start:])
		}
		if strings.HasPrefix(first, "//") {
			return lineComments(lines[start:], "//", slashLeadRe)
		}
	}
	return ""
}

func hashComments(language string) bool {
	switch language {
	case "bash", "python", "ruby", "yaml", "text":
		return true
	}
	return false
}

func lineComments(lines []string, marker string, lead *regexp.Regexp) string {
	var out []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if !strings.HasPrefix(l, marker) {
			break
		}
		out = append(out, lead.ReplaceAllString(l, ""))
	}
	return strings.TrimSpace(strings.Join(out, " "))
}

func blockComment(lines []string) string {
	var out []string
	for i, l := range lines {
		l = strings.TrimSpace(l)
		switch {
		case i == 0:
			if c := strings.TrimSpace(blockCloseRe.ReplaceAllString(blockOpenRe.ReplaceAllString(l, ""), "")); c != "" {
				out = append(out, c)
			}
			if strings.Contains(l[2:], "*/") {
				return strings.Join(out, " ")
			}
		case strings.Contains(l, "*/"):
			if c := strings.TrimSpace(starLeadRe.ReplaceAllString(blockTailRe.ReplaceAllString(l, ""), "")); c != "" {
				out = append(out, c)
			}
			return strings.TrimSpace(strings.Join(out, " "))
		default:
			out = append(out, starLeadRe.ReplaceAllString(l, ""))
		}
	}
	return strings.TrimSpace(strings.Join(out, " "))
}
