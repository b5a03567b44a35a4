// Package completion computes tab-completion candidates for a line prefix.
//
// The engine replays the same tokenizer, tree walk and builder used for
// dispatch, asking the builder what it expects next instead of committing a
// finished command. It never fails: anything it cannot make sense of yields
// no candidates.
package completion

import (
	"strings"

	"github.com/mcastorina/repost/pkg/command"
	"github.com/mcastorina/repost/pkg/grammar"
	"github.com/mcastorina/repost/pkg/parser"
	"github.com/mcastorina/repost/pkg/token"
)

// Provider supplies values that depend on stored data, such as request
// names. Implementations bound their own latency.
type Provider interface {
	Candidates(kind grammar.CommandKind, field grammar.FieldKey, snap command.Snapshot) ([]string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(kind grammar.CommandKind, field grammar.FieldKey, snap command.Snapshot) ([]string, error)

// Candidates calls f.
func (f ProviderFunc) Candidates(kind grammar.CommandKind, field grammar.FieldKey, snap command.Snapshot) ([]string, error) {
	return f(kind, field, snap)
}

// Candidate is one completion choice.
type Candidate struct {
	// Display is shown in the candidate list.
	Display string `json:"display"`
	// Replacement is the text that replaces the range, separator included.
	Replacement string `json:"replacement"`
	// Description is optional help text.
	Description string `json:"description,omitempty"`
}

// Result is the outcome of a completion request. Candidates replace the
// bytes [Start, End) of the line.
type Result struct {
	Start      int         `json:"start"`
	End        int         `json:"end"`
	Candidates []Candidate `json:"candidates"`
}

// NameStems are offered for a new request's name when nothing is stored yet.
var NameStems = []string{"create-", "update-", "get-", "delete-"}

// Engine computes completions against a command tree.
type Engine struct {
	tree     *grammar.Tree
	provider Provider
}

// NewEngine creates an engine. provider may be nil.
func NewEngine(tree *grammar.Tree, provider Provider) *Engine {
	return &Engine{tree: tree, provider: provider}
}

// Complete returns the candidates for the word ending at cursor.
func (e *Engine) Complete(line string, cursor int) Result {
	cursor = max(0, min(cursor, len(line)))

	tokens, partial := parser.TokenizePrefix(line[:cursor])
	res := Result{Start: cursor, End: cursor}
	if partial != nil {
		res.Start = partial.Start
	}

	node, consumed := e.tree.Walk(tokens)
	if !node.IsLeaf() {
		if consumed < len(tokens) {
			return res
		}
		res.Candidates = commandCandidates(node, partial)
		return res
	}

	b := command.NewBuilder(node)
	if err := b.PushAll(tokens[consumed:]); err != nil {
		return res
	}
	res.Candidates = e.slotCandidates(b, partial)
	return res
}

func commandCandidates(node *grammar.Node, partial *token.Partial) []Candidate {
	prefix := partial.Value()
	var out []Candidate
	for _, child := range node.Children {
		for _, name := range child.Spec.Names() {
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			out = append(out, Candidate{
				Display:     name,
				Replacement: render(name, partial) + " ",
				Description: child.Spec.Help,
			})
		}
	}
	return out
}

func (e *Engine) slotCandidates(b *command.Builder, partial *token.Partial) []Candidate {
	exp := b.Expect()

	switch exp.Slot {
	case command.SlotOptionName:
		return optionCandidates(exp.Options, partial)

	case command.SlotOptionValue:
		values := exp.Option.Suggest
		if len(values) == 0 {
			values = e.lookup(b, grammar.OptField(exp.Option.Key))
		}
		return valueCandidates(values, partial, true)

	case command.SlotPositional:
		if partial != nil && partial.Kind == token.Bare && strings.HasPrefix(partial.Text, "-") && len(exp.Options) > 0 {
			return optionCandidates(exp.Options, partial)
		}
		if exp.ArgSpec != nil && len(exp.ArgSpec.Choices) > 0 {
			return valueCandidates(exp.ArgSpec.Choices, partial, true)
		}
		values := e.lookup(b, grammar.ArgField(exp.Arg))
		if len(values) == 0 && b.Kind() == grammar.CreateRequest && exp.Arg == grammar.ArgName {
			return valueCandidates(NameStems, partial, false)
		}
		return valueCandidates(values, partial, true)
	}
	return nil
}

// lookup asks the provider for values. Errors and panics mean no values.
func (e *Engine) lookup(b *command.Builder, field grammar.FieldKey) (values []string) {
	if e.provider == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			values = nil
		}
	}()
	values, err := e.provider.Candidates(b.Kind(), field, b.Snapshot())
	if err != nil {
		return nil
	}
	return values
}

func optionCandidates(options []*grammar.OptSpec, partial *token.Partial) []Candidate {
	prefix := ""
	if partial != nil {
		if partial.Kind != token.Bare {
			return nil
		}
		prefix = partial.Text
	}

	var out []Candidate
	for _, opt := range options {
		sep := " "
		if opt.RequiresValue {
			sep = ""
		}
		for _, spelling := range opt.Spellings() {
			if !strings.HasPrefix(spelling, prefix) {
				continue
			}
			out = append(out, Candidate{
				Display:     spelling,
				Replacement: spelling + sep,
				Description: opt.Help,
			})
		}
	}
	return out
}

// valueCandidates filters values by the partial word and renders them the
// way the word was started. complete adds the trailing separator, except
// after a "key=" stem which still needs its value.
func valueCandidates(values []string, partial *token.Partial, complete bool) []Candidate {
	prefix := partial.Value()
	seen := make(map[string]bool, len(values))
	var out []Candidate
	for _, v := range values {
		if seen[v] || !strings.HasPrefix(v, prefix) {
			continue
		}
		seen[v] = true
		replacement := render(v, partial)
		if complete && !strings.HasSuffix(v, "=") {
			replacement += " "
		}
		out = append(out, Candidate{Display: v, Replacement: replacement})
	}
	return out
}

// render writes value so that it continues the partial word as typed: inside
// the same quotes if the word was opened with one, escaped if it was bare.
func render(value string, partial *token.Partial) string {
	if partial == nil {
		return token.Quote(value)
	}
	if q := partial.Kind.QuoteChar(); q != 0 {
		if !strings.ContainsRune(value, rune(q)) && !strings.HasSuffix(value, `\`) {
			return string(q) + value + string(q)
		}
		return token.Quote(value)
	}
	if value == "" || value == token.BreakMarker || value[0] == '\'' || value[0] == '"' {
		return token.Quote(value)
	}
	return token.Escape(value)
}

// Texts returns the displayed text of every candidate.
func (r Result) Texts() []string {
	out := make([]string, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = c.Display
	}
	return out
}
