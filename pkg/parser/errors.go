package parser

import "fmt"

// LexReason classifies a tokenizer failure.
type LexReason int

const (
	// UnterminatedQuote means a quoted word reached end of input unclosed.
	UnterminatedQuote LexReason = iota + 1
	// TrailingCharacters means a closing quote was followed by a non-space.
	TrailingCharacters
)

func (r LexReason) String() string {
	switch r {
	case UnterminatedQuote:
		return "unterminated quote"
	case TrailingCharacters:
		return "trailing characters"
	default:
		return fmt.Sprintf("LexReason(%d)", int(r))
	}
}

// LexError represents a lexical analysis error at a byte offset of the line.
type LexError struct {
	Reason LexReason
	// Offset is the opening quote for UnterminatedQuote and the first
	// offending byte for TrailingCharacters.
	Offset int
}

func (e *LexError) Error() string {
	switch e.Reason {
	case UnterminatedQuote:
		return fmt.Sprintf(ErrUnterminatedQuote, e.Offset)
	case TrailingCharacters:
		return fmt.Sprintf(ErrTrailingCharacters, e.Offset)
	default:
		return fmt.Sprintf("lexer error at offset %d: %s", e.Offset, e.Reason)
	}
}

// Common error messages
const (
	ErrUnterminatedQuote  = "unterminated quote starting at offset %d"
	ErrTrailingCharacters = "unexpected character after closing quote at offset %d"
)
