package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mcastorina/repost/internal/cli/config"
	"github.com/mcastorina/repost/internal/cli/output"
	"github.com/mcastorina/repost/internal/engine"
	"github.com/mcastorina/repost/internal/state"
	"github.com/mcastorina/repost/pkg/shell"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Store  *state.SQLiteStore
	Engine *engine.Engine
	Shell  *shell.Shell
	Styles *output.Styles
}

// NewCommandContext opens the store and wires the engine and shell.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	color := output.ColorEnabled(cfg.Color, cmd.OutOrStdout())
	eng, err := engine.New(engine.Config{
		Store:   store,
		Out:     cmd.OutOrStdout(),
		Timeout: cfg.HTTP.Timeout,
		Color:   color,
		Logger:  logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	sh := shell.New(shell.Config{Provider: store, Executor: eng})

	cleanup := func() {
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Store:  store,
		Engine: eng,
		Shell:  sh,
		Styles: output.NewStyles(cmd.ErrOrStderr(), output.ColorEnabled(cfg.Color, cmd.ErrOrStderr())),
	}, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext for commands that
// only parse or print, such as `repost parse`.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromContext(ctx)
	return &CommandContext{
		Cfg:    cfg,
		Logger: config.GetLogger(ctx),
		Shell:  shell.New(shell.Config{}),
		Styles: output.NewStyles(cmd.ErrOrStderr(), output.ColorEnabled(cfg.Color, cmd.ErrOrStderr())),
	}
}

// openStore opens and migrates the store, then applies the workspace and
// environment selected by configuration.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*state.SQLiteStore, error) {
	if cfg.DBPath != ":memory:" {
		if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore(logger)
	store.SetCompletionTimeout(cfg.Completion.Timeout)
	if err := store.Open(cfg.DBPath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}

	if cfg.Workspace != "" {
		if err := store.SetWorkspace(ctx, cfg.Workspace); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	if cfg.Environment != "" {
		if err := store.SetEnvironment(ctx, cfg.Environment); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return store, nil
}
