// Package parser splits shell input lines into tokens.
//
// Two entry points share one scanner: Tokenize parses a submitted line and
// fails on malformed quoting, TokenizePrefix parses whatever has been typed so
// far and never fails, handing back the word under the cursor separately.
package parser

import (
	"github.com/mcastorina/repost/pkg/token"
)

// Lexer tokenizes one input line.
type Lexer struct {
	input  string
	pos    int  // current position in input
	prefix bool // prefix mode: the line may stop mid-token

	tokens  []token.Token
	partial *token.Partial
}

// NewLexer creates a new Lexer for a complete line.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NewPrefixLexer creates a Lexer for a line prefix being typed.
func NewPrefixLexer(input string) *Lexer {
	return &Lexer{input: input, prefix: true}
}

// Tokenize splits a full line into tokens.
func Tokenize(line string) ([]token.Token, error) {
	l := NewLexer(line)
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

// TokenizePrefix splits a line prefix into complete tokens and the trailing
// partial token, if the prefix does not end in whitespace.
func TokenizePrefix(line string) ([]token.Token, *token.Partial) {
	l := NewPrefixLexer(line)
	// Prefix mode cannot fail.
	_ = l.run()
	return l.tokens, l.partial
}

func (l *Lexer) run() error {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			return nil
		}
		var err error
		switch l.input[l.pos] {
		case '\'':
			err = l.readQuoted(token.SingleQuoted)
		case '"':
			err = l.readQuoted(token.DoubleQuoted)
		default:
			l.readBare()
		}
		if err != nil {
			return err
		}
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && token.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

// readBare reads a word up to the next unescaped whitespace.
func (l *Lexer) readBare() {
	start := l.pos
	end := start
	for end < len(l.input) {
		c := l.input[end]
		if c == '\\' && end+1 < len(l.input) && (token.IsSpace(l.input[end+1]) || l.input[end+1] == '\\') {
			end += 2
			continue
		}
		if token.IsSpace(c) {
			break
		}
		end++
	}
	l.pos = end

	text := l.input[start:end]
	if l.prefix && end == len(l.input) {
		l.partial = &token.Partial{Text: text, Start: start, Kind: token.Bare}
		return
	}

	kind := token.Bare
	if text == token.BreakMarker {
		kind = token.OptionBreak
	}
	l.emit(text, start, end, kind)
}

// readQuoted reads a quoted word. A backslash skips the following byte when
// looking for the closing quote but is kept in the lexeme.
func (l *Lexer) readQuoted(kind token.Kind) error {
	start := l.pos
	quote := kind.QuoteChar()

	i := start + 1
	closed := false
	for i < len(l.input) {
		c := l.input[i]
		if c == '\\' && i+1 < len(l.input) {
			i += 2
			continue
		}
		if c == quote {
			closed = true
			break
		}
		i++
	}

	if !closed {
		if !l.prefix {
			return &LexError{Reason: UnterminatedQuote, Offset: start}
		}
		l.pos = len(l.input)
		l.partial = &token.Partial{Text: l.input[start+1:], Start: start, Kind: kind}
		return nil
	}

	text := l.input[start+1 : i]
	end := i + 1
	if end < len(l.input) && !token.IsSpace(l.input[end]) {
		if !l.prefix {
			return &LexError{Reason: TrailingCharacters, Offset: end}
		}
		// Keep going while typing; the trailing run joins the word.
		tail := end
		for tail < len(l.input) && !token.IsSpace(l.input[tail]) {
			tail++
		}
		text += l.input[end:tail]
		end = tail
	}
	l.pos = end

	if l.prefix && end == len(l.input) {
		l.partial = &token.Partial{Text: text, Start: start, Kind: kind, Closed: true}
		return nil
	}
	l.emit(text, start, end, kind)
	return nil
}

func (l *Lexer) emit(text string, start, end int, kind token.Kind) {
	l.tokens = append(l.tokens, token.Token{
		Text: text,
		Span: token.Span{Start: start, End: end},
		Kind: kind,
	})
}
