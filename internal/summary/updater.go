// Package summary orchestrates summary note refreshes: read the note,
// decode its embedded query, filter and render the corpus, and splice the
// result back above the block.
package summary

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"notesum/internal/query"
	"notesum/internal/syncer"
	"notesum/internal/todo"
)

// Store is the corpus an updater refreshes from. *index.Index implements
// it.
type Store interface {
	query.NotebookResolver
	AllTodos(ctx context.Context) ([]todo.Todo, error)
}

type Updater struct {
	store       Store
	notesRoot   string
	entryFormat string
	syncCmd     string
	dryRun      bool
}

func NewUpdater(store Store, notesRoot, entryFormat, syncCmd string) *Updater {
	return &Updater{
		store:       store,
		notesRoot:   notesRoot,
		entryFormat: entryFormat,
		syncCmd:     syncCmd,
	}
}

// SetDryRun makes Refresh report what would change without writing or
// syncing.
func (u *Updater) SetDryRun(v bool) {
	u.dryRun = v
}

// Refresh rewrites one summary note in place and reports whether the file
// changed. Notes without a query-summary block and notes whose block fails
// to decode are left untouched; only the latter is logged as a problem.
func (u *Updater) Refresh(ctx context.Context, notePath string) (bool, error) {
	absPath := filepath.Join(u.notesRoot, filepath.FromSlash(notePath))
	content, err := os.ReadFile(absPath)
	if err != nil {
		return false, err
	}
	body := string(content)

	cfg, err := query.ParseConfig(body)
	if errors.Is(err, query.ErrNoBlock) {
		slog.Debug("note has no query-summary block", "note", notePath)
		return false, nil
	}
	if err != nil {
		slog.Error("query-summary block rejected", "note", notePath, "error", err)
		return false, nil
	}

	todos, err := u.store.AllTodos(ctx)
	if err != nil {
		return false, err
	}
	matched, err := query.Filter(ctx, todos, cfg.Query, u.store)
	if err != nil {
		return false, err
	}

	format := cfg.EntryFormat
	if format == "" {
		format = u.entryFormat
	}
	rendered := query.Render(matched, cfg.SortOptions, cfg.GroupLevel, format)

	next, ok := query.Splice(body, rendered)
	if !ok {
		return false, nil
	}
	if next == body {
		slog.Debug("summary unchanged", "note", notePath)
		return false, nil
	}
	if u.dryRun {
		slog.Info("would refresh summary", "note", notePath, "todos", len(matched))
		return true, nil
	}

	if err := atomic.WriteFile(absPath, strings.NewReader(next)); err != nil {
		return false, err
	}
	slog.Info("summary refreshed", "note", notePath, "todos", len(matched))

	if r, ok := u.store.(reindexer); ok {
		if err := r.ReindexIfChanged(ctx, notePath); err != nil {
			slog.Warn("reindex after refresh failed", "note", notePath, "error", err)
		}
	}

	u.runSync(ctx)
	return true, nil
}

// reindexer is satisfied by stores that track file state, so a refreshed
// note does not look dirty on the next filesystem recheck.
type reindexer interface {
	ReindexIfChanged(ctx context.Context, notePath string) error
}

// RefreshAll refreshes every given summary note, continuing past per-note
// failures, and returns how many files changed.
func (u *Updater) RefreshAll(ctx context.Context, notePaths []string) int {
	changed := 0
	for _, p := range notePaths {
		if err := ctx.Err(); err != nil {
			return changed
		}
		wrote, err := u.Refresh(ctx, p)
		if err != nil {
			slog.Error("summary refresh failed", "note", p, "error", err)
			continue
		}
		if wrote {
			changed++
		}
	}
	return changed
}

// runSync fires the configured sync command after a write. Sync failures
// are logged and swallowed: the refreshed note on disk is already correct.
func (u *Updater) runSync(ctx context.Context) {
	if u.syncCmd == "" {
		return
	}
	output, err := syncer.Run(ctx, u.notesRoot, u.syncCmd)
	if err != nil {
		slog.Warn("sync command failed", "error", err, "output", output)
		return
	}
	slog.Debug("sync command done")
}
