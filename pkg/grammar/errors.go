package grammar

import (
	"fmt"
	"strings"

	"github.com/mcastorina/repost/pkg/token"
)

// ResolutionReason classifies a failure to find a leaf command.
type ResolutionReason int

const (
	// UnknownCommand means the first word names no top-level command.
	UnknownCommand ResolutionReason = iota + 1
	// UnknownSubcommand means a command with subcommands was given a word
	// that names none of them, or no word at all.
	UnknownSubcommand
)

func (r ResolutionReason) String() string {
	switch r {
	case UnknownCommand:
		return "unknown command"
	case UnknownSubcommand:
		return "unknown subcommand"
	default:
		return fmt.Sprintf("ResolutionReason(%d)", int(r))
	}
}

// ResolutionError is returned when tokens do not address a leaf command.
type ResolutionError struct {
	Reason ResolutionReason
	// Token is the word that did not match; nil when the line ended first.
	Token *token.Token
	// Command is the path of the node where resolution stopped.
	Command string
	// Valid lists the spellings accepted at that node.
	Valid []string
}

func (e *ResolutionError) Error() string {
	switch {
	case e.Reason == UnknownCommand && e.Token != nil:
		return fmt.Sprintf("unknown command %q", e.Token.Value())
	case e.Reason == UnknownCommand:
		return "no command given"
	case e.Token != nil:
		return fmt.Sprintf("unknown subcommand %q for %q (valid: %s)",
			e.Token.Value(), e.Command, strings.Join(e.Valid, ", "))
	default:
		return fmt.Sprintf("%q requires a subcommand (valid: %s)",
			e.Command, strings.Join(e.Valid, ", "))
	}
}

// Offset returns the byte offset of the offending word, or -1.
func (e *ResolutionError) Offset() int {
	if e.Token == nil {
		return -1
	}
	return e.Token.Span.Start
}
