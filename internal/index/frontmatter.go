package index

import (
	"strings"

	"github.com/google/uuid"
)

// EnsureNoteID returns content carrying a stable note id in its YAML
// frontmatter, the id itself, and whether content was modified. Notes
// without frontmatter get a minimal block prepended; notes with
// frontmatter but no id line get one appended inside the block. Existing
// ids are never rewritten, since summary back-links depend on them.
func EnsureNoteID(content string) (string, string, bool) {
	fmLines, body, ok := splitFrontmatterLines(content)
	if !ok {
		id := uuid.NewString()
		fm := []string{
			"---",
			"id: " + id,
			"---",
		}
		if body == "" {
			return strings.Join(fm, "\n") + "\n", id, true
		}
		return strings.Join(fm, "\n") + "\n" + body, id, true
	}

	if id := frontmatterValue(fmLines, "id"); id != "" {
		return content, id, false
	}

	id := uuid.NewString()
	fmLines = append(fmLines, "id: "+id)
	block := "---\n" + strings.Join(fmLines, "\n") + "\n---"
	if body == "" {
		return block + "\n", id, true
	}
	return block + "\n" + body, id, true
}

// NoteID extracts the frontmatter id from content, or "" when absent.
func NoteID(content string) string {
	fmLines, _, ok := splitFrontmatterLines(content)
	if !ok {
		return ""
	}
	return frontmatterValue(fmLines, "id")
}

func splitFrontmatterLines(input string) ([]string, string, bool) {
	lines := strings.Split(input, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, input, false
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, input, false
	}
	return lines[1:end], strings.Join(lines[end+1:], "\n"), true
}

func parseFrontmatterLine(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", ""
	}
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

func frontmatterValue(lines []string, key string) string {
	for _, line := range lines {
		k, v := parseFrontmatterLine(line)
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(strings.Trim(v, "\""))
		}
	}
	return ""
}
