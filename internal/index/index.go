// Package index maintains the sqlite-backed corpus of notes, notebooks,
// and inline todos beneath a notes directory. Notebooks are the
// directories themselves: a notebook id is the slash-relative directory
// path and its parent is the containing directory, so recursive notebook
// queries walk the parent chain recorded here.
package index

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	_ "modernc.org/sqlite"

	"notesum/internal/query"
	"notesum/internal/todo"
)

type Index struct {
	db        *sql.DB
	notesRoot string
}

// SummaryNote is a note carrying a query-summary block.
type SummaryNote struct {
	Path string
	UID  string
}

type noteRecord struct {
	ID        int
	Hash      string
	MTimeUnix int64
	Size      int64
}

func Open(dbPath, notesRoot string) (*Index, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	return &Index{db: db, notesRoot: notesRoot}, nil
}

func (i *Index) Close() error {
	if i.db == nil {
		return nil
	}
	return i.db.Close()
}

func (i *Index) NotesRoot() string {
	return i.notesRoot
}

func (i *Index) Init(ctx context.Context) error {
	if _, err := i.db.ExecContext(ctx, schemaSQL); err != nil {
		return err
	}
	version, err := i.loadSchemaVersion(ctx)
	if err != nil {
		return err
	}
	if version != schemaVersion {
		if err := i.setSchemaVersion(ctx, schemaVersion); err != nil {
			return err
		}
		return i.RebuildFromFS(ctx)
	}
	return i.RecheckFromFS(ctx)
}

func (i *Index) loadSchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := i.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (i *Index) setSchemaVersion(ctx context.Context, v int) error {
	_, err := i.db.ExecContext(ctx, "DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = i.db.ExecContext(ctx, "INSERT INTO schema_version(version) VALUES(?)", v)
	return err
}

func (i *Index) RebuildFromFS(ctx context.Context) error {
	clear := []string{
		"DELETE FROM todos",
		"DELETE FROM notebooks",
		"DELETE FROM notes",
	}
	for _, stmt := range clear {
		if _, err := i.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return filepath.WalkDir(i.notesRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(i.notesRoot, p)
		if err != nil {
			return err
		}
		return i.indexFile(ctx, filepath.ToSlash(rel), p)
	})
}

func (i *Index) RecheckFromFS(ctx context.Context) error {
	records, err := i.loadNoteRecords(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(records))
	err = filepath.WalkDir(i.notesRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(i.notesRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		seen[rel] = true

		info, err := d.Info()
		if err != nil {
			return err
		}
		rec, ok := records[rel]
		if !ok {
			return i.indexFile(ctx, rel, p)
		}
		if rec.MTimeUnix == info.ModTime().Unix() && rec.Size == info.Size() {
			return nil
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if ContentHash(content) == rec.Hash {
			_, err := i.db.ExecContext(ctx, "UPDATE notes SET mtime_unix=?, size=? WHERE id=?", info.ModTime().Unix(), info.Size(), rec.ID)
			return err
		}
		return i.indexFile(ctx, rel, p)
	})
	if err != nil {
		return err
	}

	return i.removeMissingRecords(ctx, records, seen)
}

// indexFile reads a note, stamps a frontmatter id when missing (written
// back atomically so a crash cannot truncate the note), and indexes the
// result.
func (i *Index) indexFile(ctx context.Context, rel, absPath string) error {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return err
	}
	updated, uid, changed := EnsureNoteID(string(content))
	if changed {
		if err := atomic.WriteFile(absPath, strings.NewReader(updated)); err != nil {
			return err
		}
		content = []byte(updated)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}
	return i.IndexNote(ctx, rel, uid, content, info.ModTime(), info.Size())
}

// IndexNote replaces the indexed state of one note inside a transaction:
// the note row, its notebook chain, and its extracted todos. Notes
// carrying a query-summary block are flagged and contribute no todos, so
// a summary's own rendered checkboxes never feed back into other
// summaries.
func (i *Index) IndexNote(ctx context.Context, notePath, uid string, content []byte, mtime time.Time, size int64) error {
	body := string(content)
	notebook := notebookOf(notePath)
	hasSummary := query.HasBlock(body)
	var todos []todo.Todo
	if !hasSummary {
		todos = todo.Extract(body, uid, notebook)
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	summaryFlag := 0
	if hasSummary {
		summaryFlag = 1
	}

	var existingID int
	err = tx.QueryRowContext(ctx, "SELECT id FROM notes WHERE path=?", notePath).Scan(&existingID)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notes(path, uid, notebook, hash, mtime_unix, size, has_summary)
			VALUES(?, ?, ?, ?, ?, ?, ?)
		`, notePath, uid, notebook, ContentHash(content), mtime.Unix(), size, summaryFlag)
		if err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, "SELECT id FROM notes WHERE path=?", notePath).Scan(&existingID); err != nil {
			return err
		}
	} else if err == nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE notes SET uid=?, notebook=?, hash=?, mtime_unix=?, size=?, has_summary=? WHERE id=?
		`, uid, notebook, ContentHash(content), mtime.Unix(), size, summaryFlag, existingID)
		if err != nil {
			return err
		}
	} else {
		return err
	}

	if err := registerNotebooks(ctx, tx, notebook); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM todos WHERE note_id=?", existingID); err != nil {
		return err
	}
	for _, t := range todos {
		completed := 0
		if t.Completed {
			completed = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO todos(note_id, line_no, message, category, tags, completed, due_date)
			VALUES(?, ?, ?, ?, ?, ?, ?)`,
			existingID,
			t.LineNo,
			t.Message,
			t.Category,
			strings.Join(t.Tags, " "),
			completed,
			nullIfEmpty(t.DueDate),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ReindexIfChanged refreshes one note's indexed state by path, using the
// mtime+size fast path before falling back to a content hash compare.
func (i *Index) ReindexIfChanged(ctx context.Context, notePath string) error {
	absPath := filepath.Join(i.notesRoot, filepath.FromSlash(notePath))
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}

	var rec noteRecord
	err = i.db.QueryRowContext(ctx, "SELECT id, hash, mtime_unix, size FROM notes WHERE path=?", notePath).
		Scan(&rec.ID, &rec.Hash, &rec.MTimeUnix, &rec.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return i.indexFile(ctx, notePath, absPath)
	}
	if err != nil {
		return err
	}
	if rec.MTimeUnix == info.ModTime().Unix() && rec.Size == info.Size() {
		return nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return err
	}
	if ContentHash(content) == rec.Hash {
		_, err := i.db.ExecContext(ctx, "UPDATE notes SET mtime_unix=?, size=? WHERE id=?", info.ModTime().Unix(), info.Size(), rec.ID)
		return err
	}
	return i.indexFile(ctx, notePath, absPath)
}

// AllTodos returns every extracted todo in path then line order. The
// slice order is the tie-break the stable sort engine preserves.
func (i *Index) AllTodos(ctx context.Context) ([]todo.Todo, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT notes.uid, notes.notebook, todos.line_no, todos.message, todos.category, todos.tags, todos.completed, todos.due_date
		FROM todos
		JOIN notes ON notes.id = todos.note_id
		ORDER BY notes.path, todos.line_no
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []todo.Todo
	for rows.Next() {
		var t todo.Todo
		var tags string
		var completed int
		var due sql.NullString
		if err := rows.Scan(&t.NoteID, &t.NotebookID, &t.LineNo, &t.Message, &t.Category, &tags, &completed, &due); err != nil {
			return nil, err
		}
		if tags != "" {
			t.Tags = strings.Fields(tags)
		}
		t.Completed = completed != 0
		if due.Valid {
			t.DueDate = due.String
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ResolveParentNotebook implements query.NotebookResolver. An unknown or
// top-level notebook resolves to no parent rather than an error.
func (i *Index) ResolveParentNotebook(ctx context.Context, notebookID string) (string, error) {
	var parent string
	err := i.db.QueryRowContext(ctx, "SELECT parent_id FROM notebooks WHERE id=?", notebookID).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return parent, nil
}

// SummaryNotes lists the notes flagged as query summaries, in path order.
func (i *Index) SummaryNotes(ctx context.Context) ([]SummaryNote, error) {
	rows, err := i.db.QueryContext(ctx, "SELECT path, uid FROM notes WHERE has_summary=1 ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []SummaryNote
	for rows.Next() {
		var n SummaryNote
		if err := rows.Scan(&n.Path, &n.UID); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (i *Index) NoteExists(ctx context.Context, notePath string) (bool, error) {
	var id int
	err := i.db.QueryRowContext(ctx, "SELECT id FROM notes WHERE path=?", notePath).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (i *Index) loadNoteRecords(ctx context.Context) (map[string]noteRecord, error) {
	rows, err := i.db.QueryContext(ctx, "SELECT id, path, hash, mtime_unix, size FROM notes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := map[string]noteRecord{}
	for rows.Next() {
		var p string
		var rec noteRecord
		if err := rows.Scan(&rec.ID, &p, &rec.Hash, &rec.MTimeUnix, &rec.Size); err != nil {
			return nil, err
		}
		records[p] = rec
	}
	return records, rows.Err()
}

func (i *Index) removeMissingRecords(ctx context.Context, records map[string]noteRecord, seen map[string]bool) error {
	var missing []int
	for p, rec := range records {
		if !seen[p] {
			missing = append(missing, rec.ID)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range missing {
		if _, err := tx.ExecContext(ctx, "DELETE FROM todos WHERE note_id=?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id=?", id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// notebookOf maps a slash-relative note path onto its notebook id. Notes
// at the root live in the "" notebook.
func notebookOf(notePath string) string {
	dir := path.Dir(notePath)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// registerNotebooks records the notebook and each of its ancestors, so
// the parent chain is resolvable even when some ancestor directory holds
// no notes of its own.
func registerNotebooks(ctx context.Context, tx *sql.Tx, notebook string) error {
	for notebook != "" {
		parent := notebookOf(notebook)
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO notebooks(id, parent_id) VALUES(?, ?)", notebook, parent); err != nil {
			return err
		}
		notebook = parent
	}
	return nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
