package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mcastorina/repost/internal/state"
	"github.com/spf13/cobra"
)

// REPL reads shell lines, dispatches them and reports errors without
// stopping.
type REPL struct {
	cmdCtx *CommandContext
	out    io.Writer
	errOut io.Writer
}

// NewREPL creates a REPL over an opened command context.
func NewREPL(cmdCtx *CommandContext, out, errOut io.Writer) *REPL {
	return &REPL{cmdCtx: cmdCtx, out: out, errOut: errOut}
}

// RunREPL starts the interactive shell.
func RunREPL(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	repl := NewREPL(cmdCtx, cmd.OutOrStdout(), cmd.ErrOrStderr())

	historyFile := cmdCtx.Cfg.HistoryFile
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o750); err != nil {
			cmdCtx.Logger.Warn("history disabled", "path", historyFile, "error", err)
			historyFile = ""
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            repl.Prompt(ctx),
		HistoryFile:       historyFile,
		AutoComplete:      &shellCompleter{complete: cmdCtx.Shell.Complete},
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(repl.out, "repost (store: %s)\n", cmdCtx.Store.Path())
	_, _ = fmt.Fprintln(repl.out, cmdCtx.Styles.Muted.Render("Type help for commands, exit to quit, tab to complete"))

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if quit := repl.HandleLine(ctx, line); quit {
			break
		}
		rl.SetPrompt(repl.Prompt(ctx))
	}
	return nil
}

// HandleLine runs one line. It reports whether the session should end.
func (r *REPL) HandleLine(ctx context.Context, line string) bool {
	switch strings.TrimSpace(line) {
	case "":
		return false
	case "exit", "quit":
		return true
	case "help", "?":
		_ = r.cmdCtx.Shell.WriteHelp(r.out)
		_, _ = fmt.Fprintln(r.out, "  exit|quit")
		return false
	}

	if err := r.cmdCtx.Shell.Dispatch(ctx, line); err != nil {
		r.printError(describeError(line, err))
	}
	return false
}

func (r *REPL) printError(err error) {
	styles := r.cmdCtx.Styles
	var lineErr *LineError
	if errors.As(err, &lineErr) {
		// Styled one line at a time; lipgloss pads multi-line blocks.
		for _, l := range strings.Split(lineErr.Marker(), "\n") {
			_, _ = fmt.Fprintln(r.errOut, styles.Muted.Render(l))
		}
	}
	_, _ = fmt.Fprintln(r.errOut, styles.Error.Render("error:")+" "+err.Error())
}

// Prompt shows the active workspace and environment.
func (r *REPL) Prompt(ctx context.Context) string {
	store := r.cmdCtx.Store
	ws, err := store.ActiveWorkspace(ctx)
	if err != nil {
		return "repost> "
	}
	env, err := store.ActiveEnvironment(ctx)
	if err != nil || env == "" {
		if ws == state.DefaultWorkspace {
			return "repost> "
		}
		return fmt.Sprintf("repost:%s> ", ws)
	}
	if ws == state.DefaultWorkspace {
		return fmt.Sprintf("repost(%s)> ", env)
	}
	return fmt.Sprintf("repost:%s(%s)> ", ws, env)
}
