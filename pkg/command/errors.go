package command

import (
	"fmt"

	"github.com/mcastorina/repost/pkg/grammar"
	"github.com/mcastorina/repost/pkg/token"
)

// BuilderReason classifies a token the builder could not accept.
type BuilderReason int

const (
	// UnknownOption is a dash-prefixed word that names no flag.
	UnknownOption BuilderReason = iota + 1
	// MissingOptionValue is a flag that needs a value but the line ended.
	MissingOptionValue
	// TooManyValues is a second occurrence of a flag that is not repeatable.
	TooManyValues
	// UnexpectedArgument is a positional past every declared slot.
	UnexpectedArgument
)

func (r BuilderReason) String() string {
	switch r {
	case UnknownOption:
		return "unknown option"
	case MissingOptionValue:
		return "missing option value"
	case TooManyValues:
		return "too many values"
	case UnexpectedArgument:
		return "unexpected argument"
	default:
		return fmt.Sprintf("BuilderReason(%d)", int(r))
	}
}

// BuilderError reports a token that violates a command's grammar.
type BuilderError struct {
	Reason BuilderReason
	// Command is the command path, e.g. "create request"
	Command string
	// Token is the offending word. For MissingOptionValue it is the flag.
	Token token.Token
	// Option is set for MissingOptionValue and TooManyValues.
	Option grammar.OptKey
}

func (e *BuilderError) Error() string {
	switch e.Reason {
	case UnknownOption:
		return fmt.Sprintf("unknown option %q for %q", e.Token.Text, e.Command)
	case MissingOptionValue:
		return fmt.Sprintf("option %q requires a value", e.Token.Text)
	case TooManyValues:
		return fmt.Sprintf("option %q may only be given once", e.Token.Text)
	case UnexpectedArgument:
		return fmt.Sprintf("unexpected argument %q for %q", e.Token.Value(), e.Command)
	default:
		return fmt.Sprintf("%s at offset %d", e.Reason, e.Token.Span.Start)
	}
}

// Offset returns the byte offset of the offending token.
func (e *BuilderError) Offset() int {
	return e.Token.Span.Start
}

// ValidationReason classifies an incomplete or invalid command.
type ValidationReason int

const (
	// MissingRequiredArg is a required positional with no value.
	MissingRequiredArg ValidationReason = iota + 1
	// MissingRequiredOption is a required flag that was never given.
	MissingRequiredOption
	// InvalidValue is a value outside what the field accepts.
	InvalidValue
)

func (r ValidationReason) String() string {
	switch r {
	case MissingRequiredArg:
		return "missing required argument"
	case MissingRequiredOption:
		return "missing required option"
	case InvalidValue:
		return "invalid value"
	default:
		return fmt.Sprintf("ValidationReason(%d)", int(r))
	}
}

// ValidationError is returned by Finish when the accumulated values do not
// form a valid command.
type ValidationError struct {
	Reason  ValidationReason
	Command string
	Field   grammar.FieldKey
	// Name is how the field is shown to the user, e.g. "url" or "--to-var".
	Name string
	// Value is the rejected value for InvalidValue.
	Value string
	// Detail explains an InvalidValue.
	Detail string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case MissingRequiredArg:
		return fmt.Sprintf("%q requires argument <%s>", e.Command, e.Name)
	case MissingRequiredOption:
		return fmt.Sprintf("%q requires option %s", e.Command, e.Name)
	case InvalidValue:
		if e.Detail != "" {
			return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Name, e.Detail)
		}
		return fmt.Sprintf("invalid value %q for %s", e.Value, e.Name)
	default:
		return fmt.Sprintf("%s: %s", e.Reason, e.Name)
	}
}
