package commands

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/mcastorina/repost/pkg/command"
	"github.com/mcastorina/repost/pkg/grammar"
	"github.com/mcastorina/repost/pkg/parser"
)

// LineError is an input error together with the line it refers to.
type LineError struct {
	Line   string
	Offset int
	Err    error
}

func (e *LineError) Error() string {
	return e.Err.Error()
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Marker returns the line followed by a caret under the offending byte.
func (e *LineError) Marker() string {
	col := utf8.RuneCountInString(e.Line[:min(e.Offset, len(e.Line))])
	return e.Line + "\n" + strings.Repeat(" ", col) + "^"
}

// errorOffset returns the byte offset an input error refers to, or -1.
func errorOffset(err error) int {
	var lexErr *parser.LexError
	if errors.As(err, &lexErr) {
		return lexErr.Offset
	}
	var resErr *grammar.ResolutionError
	if errors.As(err, &resErr) {
		return resErr.Offset()
	}
	var buildErr *command.BuilderError
	if errors.As(err, &buildErr) {
		return buildErr.Offset()
	}
	return -1
}

// describeError attaches the line to errors that point into it.
func describeError(line string, err error) error {
	if err == nil {
		return nil
	}
	if offset := errorOffset(err); offset >= 0 {
		return &LineError{Line: line, Offset: offset, Err: err}
	}
	return err
}
