package todo

import (
	"regexp"
	"strings"
)

var (
	itemRe     = regexp.MustCompile(`^\s*- \[( |x|X)\] (.+)$`)
	categoryRe = regexp.MustCompile(`(^|\s)@(\S+)`)
	tagRe      = regexp.MustCompile(`(^|\s)\+(\S+)`)
	dueRe      = regexp.MustCompile(`(^|\s)//(\d{4}-\d{2}-\d{2})(\s|$)`)
)

// Extract scans a note body for metalist-style inline TODOs:
//
//	- [ ] @work +urgent //2026-01-15 Send the report
//
// The first @word is the category, every +word is a tag, the first
// //YYYY-MM-DD is the due date, and the message is the line with all
// markers removed. Lines inside fenced code blocks are skipped. Lines
// that do not match the grammar are ignored, never an error.
func Extract(body, noteID, notebookID string) []Todo {
	var todos []Todo
	inFence := false
	for i, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		match := itemRe.FindStringSubmatch(line)
		if len(match) == 0 {
			continue
		}
		item := parseItem(match[2])
		item.Completed = strings.TrimSpace(match[1]) != ""
		item.NoteID = noteID
		item.NotebookID = notebookID
		item.LineNo = i + 1
		todos = append(todos, item)
	}
	return todos
}

func parseItem(rest string) Todo {
	var item Todo

	if m := categoryRe.FindStringSubmatchIndex(rest); m != nil {
		item.Category = rest[m[4]:m[5]]
		rest = rest[:m[2]] + rest[m[1]:]
	}
	if m := dueRe.FindStringSubmatchIndex(rest); m != nil {
		item.DueDate = rest[m[4]:m[5]]
		rest = rest[:m[2]] + rest[m[5]:]
	}
	for _, m := range tagRe.FindAllStringSubmatch(rest, -1) {
		item.Tags = append(item.Tags, m[2])
	}
	rest = tagRe.ReplaceAllString(rest, "$1")

	item.Message = strings.Join(strings.Fields(rest), " ")
	return item
}
