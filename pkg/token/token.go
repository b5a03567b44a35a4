// Package token defines the tokens produced by the shell line tokenizer.
//
// A token carries its lexeme, its byte span in the source line and the
// lexical form it was written in. Quoted lexemes are the text between the
// quotes, kept literally (an escaped quote keeps its backslash). Bare lexemes
// are the raw source slice, escapes included; Value removes them.
package token

import (
	"fmt"
	"strings"
)

// Kind is the lexical form of a token.
type Kind int

const (
	// Bare is an unquoted word.
	Bare Kind = iota
	// SingleQuoted is a word written between single quotes.
	SingleQuoted
	// DoubleQuoted is a word written between double quotes.
	DoubleQuoted
	// OptionBreak is the bare "--" marker.
	OptionBreak
)

// BreakMarker is the literal spelling of the option break.
const BreakMarker = "--"

var kindNames = [...]string{
	Bare:         "bare",
	SingleQuoted: "single-quoted",
	DoubleQuoted: "double-quoted",
	OptionBreak:  "option-break",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Quoted reports whether the kind is one of the quoted forms.
func (k Kind) Quoted() bool {
	return k == SingleQuoted || k == DoubleQuoted
}

// QuoteChar returns the opening quote byte for quoted kinds, 0 otherwise.
func (k Kind) QuoteChar() byte {
	switch k {
	case SingleQuoted:
		return '\''
	case DoubleQuoted:
		return '"'
	}
	return 0
}

// Token is a single lexeme with its source span.
type Token struct {
	Text string
	Span Span
	Kind Kind
}

// Value returns the semantic value of the token. Bare words have their
// escaping backslashes removed; quoted words are returned as written.
func (t Token) Value() string {
	if t.Kind == Bare {
		return Unescape(t.Text)
	}
	return t.Text
}

// IsBreak reports whether the token is the option break marker.
func (t Token) IsBreak() bool {
	return t.Kind == OptionBreak
}

// IsDashed reports whether the token looks like an option name.
// Quoted words never do.
func (t Token) IsDashed() bool {
	return t.Kind == Bare && strings.HasPrefix(t.Text, "-") && t.Text != "-"
}

// Source renders the token the way it would appear in a line.
func (t Token) Source() string {
	if q := t.Kind.QuoteChar(); q != 0 {
		return string(q) + t.Text + string(q)
	}
	return t.Text
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Span)
}

// Partial is the last, possibly incomplete, token of a line prefix.
type Partial struct {
	// Text is the lexeme typed so far (without the opening quote).
	Text string
	// Start is the byte offset where the token begins (the quote, if any).
	Start int
	Kind  Kind
	// Closed is true when a quoted partial already has its closing quote.
	Closed bool
}

// Value returns the partial's semantic value, as Token.Value does.
func (p *Partial) Value() string {
	if p == nil {
		return ""
	}
	if p.Kind == Bare {
		return Unescape(p.Text)
	}
	return p.Text
}

// Unescape removes bare-word escapes: a backslash followed by whitespace or a
// backslash yields that character. Other backslashes are literal.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && (isSpace(s[i+1]) || s[i+1] == '\\') {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Escape is the inverse of Unescape for bare words.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Quote renders value so that tokenizing the result yields a single token
// whose Value is value. Plain words are left bare.
//
// Values that start with one quote character and also contain the other one
// cannot be written in any form; they are returned escaped as a bare word.
func Quote(value string) string {
	if value == "" {
		return "''"
	}
	startsQuoted := value[0] == '\'' || value[0] == '"'
	if value == BreakMarker || startsQuoted || hasSpace(value) {
		if q, ok := wrap(value); ok {
			return q
		}
	}
	return Escape(value)
}

// wrap quotes value with whichever quote character it does not contain.
func wrap(value string) (string, bool) {
	if strings.HasSuffix(value, `\`) {
		return "", false
	}
	if !strings.ContainsRune(value, '\'') {
		return "'" + value + "'", true
	}
	if !strings.ContainsRune(value, '"') {
		return `"` + value + `"`, true
	}
	return "", false
}

// Join reconstructs a line from tokens, re-quoting each as it was written.
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Source()
	}
	return strings.Join(parts, " ")
}

func hasSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) {
			return true
		}
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// IsSpace reports whether c separates tokens.
func IsSpace(c byte) bool {
	return isSpace(c)
}
