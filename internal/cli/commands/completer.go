package commands

import (
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"github.com/mcastorina/repost/pkg/completion"
)

// completeFunc computes completions for a line and byte cursor.
type completeFunc func(line string, cursor int) completion.Result

// shellCompleter adapts the completion engine to readline, which works in
// runes and expects the text to insert after the cursor.
type shellCompleter struct {
	complete completeFunc
}

var _ readline.AutoCompleter = (*shellCompleter)(nil)

// Do returns, for each candidate, the suffix that extends what was typed,
// and the rune length of the text being replaced.
func (c *shellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	if pos < 0 || pos > len(line) {
		pos = len(line)
	}
	text := string(line[:pos])
	res := c.complete(text, len(text))
	if len(res.Candidates) == 0 || res.Start > res.End || res.End > len(text) {
		return nil, 0
	}

	typed := text[res.Start:res.End]
	var out [][]rune
	for _, cand := range res.Candidates {
		// Readline can only append; candidates that rewrite what was typed
		// are skipped.
		if !strings.HasPrefix(cand.Replacement, typed) {
			continue
		}
		out = append(out, []rune(cand.Replacement[len(typed):]))
	}
	return out, utf8.RuneCountInString(typed)
}
