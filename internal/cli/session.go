package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sadopc/biome/internal/app"
	"github.com/sadopc/biome/internal/config"
	"github.com/sadopc/biome/internal/store"
)

// session is an open database with the stores wired on top of it.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	app    *app.App
	log    io.Closer
}

func openSession(opts *options) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	logger, logFile, err := newLogger(cfg, opts.verbose)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := app.New(st, app.Options{
		Logger:           logger,
		SnapshotInterval: cfg.SnapshotInterval,
		AutoStartDelay:   cfg.AutoStartDelay,
	})
	return &session{cfg: cfg, logger: logger, store: st, app: a, log: logFile}, nil
}

func (s *session) Close() error {
	return errors.Join(s.store.Close(), s.log.Close())
}

// newLogger writes text logs to the configured file, since the terminal
// belongs to the UI.
func newLogger(cfg *config.Config, verbose bool) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, f, nil
}
