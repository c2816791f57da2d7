package query

import (
	"sort"
	"strings"

	"notesum/internal/todo"
)

// DefaultEntryFormat renders status, category, tags, date, message, and a
// back-link to the source note. Fields absent on a todo are elided along
// with their markers.
const DefaultEntryFormat = "- {{{STATUS}}} {{{CATEGORY}}} {{{TAGS}}} {{{DATE}}} {{{CONTENT}}} [origin](:/{{{NOTE_ID}}})"

// allDoneBanner replaces the body when nothing matches the query.
const allDoneBanner = "# All done!\n\n"

// Render produces the summary body: todos sorted per options, then either
// a flat list (groupLevel < 1 or no options) or a nested heading hierarchy
// where the first groupLevel criteria become headings. Grouping depth is
// capped at the number of criteria supplied.
func Render(todos []todo.Todo, options []SortOption, groupLevel int, entryFormat string) string {
	if len(todos) == 0 {
		return allDoneBanner
	}
	if entryFormat == "" {
		entryFormat = DefaultEntryFormat
	}

	sorted := Sort(todos, options)
	if groupLevel < 1 || len(options) == 0 {
		return renderFlat(sorted, entryFormat)
	}

	ordered := orderOptions(options)
	if groupLevel > len(ordered) {
		groupLevel = len(ordered)
	}
	return renderGroups(sorted, ordered, groupLevel, 1, entryFormat)
}

func renderFlat(todos []todo.Todo, entryFormat string) string {
	var b strings.Builder
	for _, t := range todos {
		b.WriteString(FormatEntry(t, entryFormat))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderGroups partitions todos by the sort key at the current depth,
// orders the group keys with that level's comparator, and emits one
// heading per group followed by the next level (or the flat list once the
// depth cap is reached). Each level returns a fresh string; nothing is
// accumulated across siblings.
func renderGroups(todos []todo.Todo, ordered []SortOption, groupLevel, depth int, entryFormat string) string {
	if depth > groupLevel {
		return renderFlat(todos, entryFormat)
	}

	opt := ordered[depth-1]
	groups := map[string][]todo.Todo{}
	var keys []string
	for _, t := range todos {
		key := sortKey(t, opt.By)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], t)
	}
	sortGroupKeys(keys, opt)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(strings.Repeat("#", depth))
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('\n')
		b.WriteString(renderGroups(groups[key], ordered, groupLevel, depth+1, entryFormat))
		b.WriteByte('\n')
	}
	return b.String()
}

// sortGroupKeys orders group keys with the same semantics the sort engine
// applies to items at that level, so grouping order tracks sort order.
func sortGroupKeys(keys []string, opt SortOption) {
	sort.SliceStable(keys, func(i, j int) bool {
		return compareKeys(keys[i], keys[j], opt) < 0
	})
}

func compareKeys(a, b string, opt SortOption) int {
	if opt.Order == OrderCustom {
		return customRank(a, opt.CustomOrder) - customRank(b, opt.CustomOrder)
	}
	var c int
	if opt.By == ByDate {
		c = compareInt64(dateKey(a), dateKey(b))
	} else {
		c = naturalCompare(a, b)
	}
	if opt.Order == OrderDescend {
		return -c
	}
	return c
}

// FormatEntry renders one todo line from the entry format template.
// Recognized placeholders: {{{STATUS}}}, {{{CATEGORY}}}, {{{TAGS}}},
// {{{DATE}}}, {{{CONTENT}}}, {{{NOTE_ID}}}. Absent fields substitute as
// empty and the leftover whitespace is collapsed so no stray markers
// remain.
func FormatEntry(t todo.Todo, format string) string {
	status := "[ ]"
	if t.Completed {
		status = "[x]"
	}
	category := ""
	if t.Category != "" {
		category = "@" + t.Category
	}
	var tags []string
	for _, tag := range t.Tags {
		tags = append(tags, "+"+tag)
	}
	date := ""
	if t.DueDate != "" {
		date = "//" + t.DueDate
	}

	replacer := strings.NewReplacer(
		"{{{STATUS}}}", status,
		"{{{CATEGORY}}}", category,
		"{{{TAGS}}}", strings.Join(tags, " "),
		"{{{DATE}}}", date,
		"{{{CONTENT}}}", t.Message,
		"{{{NOTE_ID}}}", t.NoteID,
	)
	return strings.Join(strings.Fields(replacer.Replace(format)), " ")
}
