// Command notesum-refresh runs one refresh pass over the summary notes in
// a notes directory and exits.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"notesum/internal/config"
	"notesum/internal/index"
	"notesum/internal/summary"
)

func main() {
	note := pflag.String("note", "", "refresh only this note (path relative to the notes directory)")
	dryRun := pflag.Bool("dry-run", false, "report pending changes without writing")
	pflag.Parse()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		slog.Error("create data dir", "path", cfg.DataPath, "err", err)
		os.Exit(1)
	}

	idx, err := index.Open(cfg.DBPath(), cfg.NotesPath)
	if err != nil {
		slog.Error("open index", "err", err)
		os.Exit(1)
	}
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := idx.Init(ctx); err != nil {
		slog.Error("init index", "err", err)
		os.Exit(1)
	}

	updater := summary.NewUpdater(idx, cfg.NotesPath, cfg.EntryFormat, cfg.SyncCmd)
	updater.SetDryRun(*dryRun)

	if *note != "" {
		changed, err := updater.Refresh(ctx, *note)
		if err != nil {
			slog.Error("refresh note", "note", *note, "err", err)
			os.Exit(1)
		}
		fmt.Printf("%s: changed=%v\n", *note, changed)
		return
	}

	summaries, err := idx.SummaryNotes(ctx)
	if err != nil {
		slog.Error("list summary notes", "err", err)
		os.Exit(1)
	}
	paths := make([]string, 0, len(summaries))
	for _, s := range summaries {
		paths = append(paths, s.Path)
	}
	changed := updater.RefreshAll(ctx, paths)
	fmt.Printf("refreshed %d of %d summary notes\n", changed, len(paths))
}

func setupLogging(level slog.Level) {
	var handler slog.Handler
	if isTerminalWriter(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func isTerminalWriter(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
