package todo

// Status values for an inline TODO, following the XIT convention.
const (
	StatusOpen = "open"
	StatusDone = "done"
)

// Todo is one extracted inline TODO item. The engine never mutates a Todo;
// it only filters and reorders collections of them.
type Todo struct {
	Message    string
	Category   string
	Tags       []string
	NoteID     string
	NotebookID string
	Completed  bool
	DueDate    string // "YYYY-MM-DD", empty when the item has no due date
	LineNo     int
}

// Status maps the completion flag onto the status vocabulary used by
// queries and sort keys.
func (t Todo) Status() string {
	if t.Completed {
		return StatusDone
	}
	return StatusOpen
}
