// Package shell ties the tokenizer, command tree, builder and completion
// engine together behind the two calls a line editor makes: Complete on a
// keystroke and Dispatch on a submitted line.
package shell

import (
	"context"
	"errors"
	"strings"

	"github.com/mcastorina/repost/pkg/command"
	"github.com/mcastorina/repost/pkg/completion"
	"github.com/mcastorina/repost/pkg/grammar"
	"github.com/mcastorina/repost/pkg/parser"
)

// ErrEmptyLine is returned by Parse for a line with no tokens.
var ErrEmptyLine = errors.New("empty line")

// Executor runs finalized commands.
type Executor interface {
	Execute(ctx context.Context, cmd command.Command) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, cmd command.Command) error

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, cmd command.Command) error {
	return f(ctx, cmd)
}

// Shell parses, completes and dispatches lines.
type Shell struct {
	tree      *grammar.Tree
	completer *completion.Engine
	executor  Executor
}

// Config configures a Shell.
type Config struct {
	// Tree defaults to grammar.Default().
	Tree *grammar.Tree
	// Provider supplies completion values; may be nil.
	Provider completion.Provider
	// Executor runs dispatched commands; may be nil for parse-only use.
	Executor Executor
}

// New creates a Shell.
func New(cfg Config) *Shell {
	tree := cfg.Tree
	if tree == nil {
		tree = grammar.Default()
	}
	return &Shell{
		tree:      tree,
		completer: completion.NewEngine(tree, cfg.Provider),
		executor:  cfg.Executor,
	}
}

// Tree returns the command tree.
func (s *Shell) Tree() *grammar.Tree {
	return s.tree
}

// Parse turns a full line into a command. The error is one of
// *parser.LexError, *grammar.ResolutionError, *command.BuilderError,
// *command.ValidationError or ErrEmptyLine.
func (s *Shell) Parse(line string) (command.Command, error) {
	tokens, err := parser.Tokenize(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyLine
	}
	node, rest, err := s.tree.Resolve(tokens)
	if err != nil {
		return nil, err
	}
	return command.Build(node, rest)
}

// Dispatch parses a line and hands the command to the executor. Blank lines
// are ignored.
func (s *Shell) Dispatch(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	cmd, err := s.Parse(line)
	if err != nil {
		return err
	}
	if s.executor == nil {
		return errors.New("no executor configured")
	}
	return s.executor.Execute(ctx, cmd)
}

// Complete returns completion candidates for the word ending at cursor.
func (s *Shell) Complete(line string, cursor int) completion.Result {
	return s.completer.Complete(line, cursor)
}
