// Command notesum-watch keeps summary notes fresh: it rechecks the notes
// directory on a fixed period, maintains one refresh timer per summary
// note, and rebuilds the timer set whenever summary notes appear or
// disappear.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"notesum/internal/config"
	"notesum/internal/index"
	"notesum/internal/summary"
)

func main() {
	period := pflag.Duration("period", 0, "refresh period (overrides NOTESUM_RELOAD_PERIOD)")
	pflag.Parse()

	cfg := config.Load()
	if *period > 0 {
		cfg.ReloadPeriod = *period
	}
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := idx.Init(ctx); err != nil {
		slog.Error("init index", "err", err)
		os.Exit(1)
	}

	updater := summary.NewUpdater(idx, cfg.NotesPath, cfg.EntryFormat, cfg.SyncCmd)
	scheduler := summary.NewScheduler()
	defer scheduler.Stop()

	refresh := func(ctx context.Context, notePath string) {
		if _, err := updater.Refresh(ctx, notePath); err != nil {
			slog.Error("refresh note", "note", notePath, "err", err)
		}
	}

	slog.Info("watching", "notes", cfg.NotesPath, "period", cfg.ReloadPeriod)

	var scheduled []string
	reconcile := func() {
		if err := idx.RecheckFromFS(ctx); err != nil {
			slog.Error("recheck notes", "err", err)
			return
		}
		summaries, err := idx.SummaryNotes(ctx)
		if err != nil {
			slog.Error("list summary notes", "err", err)
			return
		}
		paths := make([]string, 0, len(summaries))
		for _, s := range summaries {
			paths = append(paths, s.Path)
		}
		sort.Strings(paths)
		if equalPaths(paths, scheduled) {
			return
		}
		slog.Info("summary set changed", "count", len(paths))
		scheduler.Reset(ctx, paths, cfg.ReloadPeriod, refresh)
		scheduled = paths
		updater.RefreshAll(ctx, paths)
	}

	reconcile()
	ticker := time.NewTicker(cfg.ReloadPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			return
		case <-ticker.C:
			reconcile()
		}
	}
}

func equalPaths(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
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
