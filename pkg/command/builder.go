package command

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mcastorina/repost/pkg/grammar"
	"github.com/mcastorina/repost/pkg/token"
)

// Builder accumulates the tokens of one leaf command.
type Builder struct {
	node *grammar.Node
	spec *grammar.CommandSpec

	args   map[grammar.ArgKey]string
	rest   []string
	opts   map[grammar.OptKey][]string
	cursor int  // next index into spec.Args
	sealed bool // "--" seen; everything after is positional

	pending    *grammar.OptSpec
	pendingTok token.Token
}

// NewBuilder returns an empty builder for a leaf command.
func NewBuilder(node *grammar.Node) *Builder {
	return &Builder{
		node: node,
		spec: node.Spec,
		args: make(map[grammar.ArgKey]string),
		opts: make(map[grammar.OptKey][]string),
	}
}

// Kind returns the kind of command being built.
func (b *Builder) Kind() grammar.CommandKind {
	return b.spec.Kind
}

// Push commits one token.
func (b *Builder) Push(tok token.Token) error {
	if b.pending != nil {
		opt := b.pending
		b.pending = nil
		b.opts[opt.Key] = append(b.opts[opt.Key], tok.Value())
		return nil
	}

	if !b.sealed {
		if tok.IsBreak() {
			b.sealed = true
			return nil
		}
		if tok.IsDashed() {
			opt, ok := b.spec.Option(tok.Text)
			if ok {
				return b.pushOption(opt, tok)
			}
			if !b.spec.UnknownDashIsLiteral {
				return &BuilderError{Reason: UnknownOption, Command: b.node.Path(), Token: tok}
			}
		}
	}

	return b.pushPositional(tok)
}

// PushAll commits tokens in order and stops at the first error.
func (b *Builder) PushAll(tokens []token.Token) error {
	for _, tok := range tokens {
		if err := b.Push(tok); err != nil {
			return err
		}
	}
	return nil
}

// Build pushes every token into a fresh builder and finishes it.
func Build(node *grammar.Node, tokens []token.Token) (Command, error) {
	b := NewBuilder(node)
	if err := b.PushAll(tokens); err != nil {
		return nil, err
	}
	return b.Finish()
}

func (b *Builder) pushOption(opt *grammar.OptSpec, tok token.Token) error {
	if !opt.Repeatable && b.seen(opt.Key) {
		return &BuilderError{Reason: TooManyValues, Command: b.node.Path(), Token: tok, Option: opt.Key}
	}
	if !opt.RequiresValue {
		// Presence flags record an empty value so they count as seen.
		b.opts[opt.Key] = append(b.opts[opt.Key], "")
		return nil
	}
	b.pending = opt
	b.pendingTok = tok
	return nil
}

func (b *Builder) pushPositional(tok token.Token) error {
	if b.cursor < len(b.spec.Args) {
		b.args[b.spec.Args[b.cursor].Key] = tok.Value()
		b.cursor++
		return nil
	}
	if b.spec.Rest != nil {
		b.rest = append(b.rest, tok.Value())
		return nil
	}
	return &BuilderError{Reason: UnexpectedArgument, Command: b.node.Path(), Token: tok}
}

func (b *Builder) seen(key grammar.OptKey) bool {
	return len(b.opts[key]) > 0
}

// Slot is what the builder expects from the next token.
type Slot int

const (
	// SlotNone means the command accepts no further tokens.
	SlotNone Slot = iota
	// SlotPositional means a positional value is expected next. Options may
	// still lists flags that would also be accepted.
	SlotPositional
	// SlotOptionName means only flag names are accepted.
	SlotOptionName
	// SlotOptionValue means the value of Option is expected.
	SlotOptionValue
)

func (s Slot) String() string {
	switch s {
	case SlotNone:
		return "nothing"
	case SlotPositional:
		return "positional"
	case SlotOptionName:
		return "option name"
	case SlotOptionValue:
		return "option value"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// Expectation describes the next token a builder can accept.
type Expectation struct {
	Slot Slot
	// Arg is the positional slot for SlotPositional, ArgUnknown for the
	// catch-all.
	Arg grammar.ArgKey
	// ArgSpec is the declared slot; nil for the catch-all.
	ArgSpec *grammar.ArgSpec
	// Option is the flag awaiting its value for SlotOptionValue.
	Option *grammar.OptSpec
	// Options are the flags that may still be given.
	Options []*grammar.OptSpec
}

// Field returns the field the expected value fills, if any.
func (e Expectation) Field() (grammar.FieldKey, bool) {
	switch e.Slot {
	case SlotPositional:
		return grammar.ArgField(e.Arg), true
	case SlotOptionValue:
		return grammar.OptField(e.Option.Key), true
	default:
		return grammar.FieldKey{}, false
	}
}

// Expect reports what the next token would fill without committing anything.
func (b *Builder) Expect() Expectation {
	if b.pending != nil {
		return Expectation{Slot: SlotOptionValue, Option: b.pending}
	}

	var options []*grammar.OptSpec
	if !b.sealed {
		for i := range b.spec.Opts {
			opt := &b.spec.Opts[i]
			if opt.Repeatable || !b.seen(opt.Key) {
				options = append(options, opt)
			}
		}
	}

	switch {
	case b.cursor < len(b.spec.Args):
		arg := &b.spec.Args[b.cursor]
		return Expectation{Slot: SlotPositional, Arg: arg.Key, ArgSpec: arg, Options: options}
	case b.spec.Rest != nil:
		return Expectation{Slot: SlotPositional, Arg: grammar.ArgUnknown, Options: options}
	case len(options) > 0:
		return Expectation{Slot: SlotOptionName, Options: options}
	default:
		return Expectation{Slot: SlotNone}
	}
}

// Snapshot is a copy of the values accumulated so far, handed to candidate
// providers.
type Snapshot struct {
	Kind grammar.CommandKind
	Args map[grammar.ArgKey]string
	Rest []string
	Opts map[grammar.OptKey][]string
}

// Arg returns the value of a positional, or "".
func (s Snapshot) Arg(key grammar.ArgKey) string {
	return s.Args[key]
}

// Opt returns every value given for a flag.
func (s Snapshot) Opt(key grammar.OptKey) []string {
	return s.Opts[key]
}

// Snapshot copies the builder state.
func (b *Builder) Snapshot() Snapshot {
	s := Snapshot{
		Kind: b.spec.Kind,
		Args: make(map[grammar.ArgKey]string, len(b.args)),
		Rest: slices.Clone(b.rest),
		Opts: make(map[grammar.OptKey][]string, len(b.opts)),
	}
	for k, v := range b.args {
		s.Args[k] = v
	}
	for k, v := range b.opts {
		s.Opts[k] = slices.Clone(v)
	}
	return s
}

// Finish validates the accumulated values and returns the typed command.
func (b *Builder) Finish() (Command, error) {
	if b.pending != nil {
		return nil, &BuilderError{
			Reason:  MissingOptionValue,
			Command: b.node.Path(),
			Token:   b.pendingTok,
			Option:  b.pending.Key,
		}
	}

	for i := range b.spec.Args {
		arg := &b.spec.Args[i]
		value, ok := b.args[arg.Key]
		if !ok {
			if arg.Required {
				return nil, b.invalid(MissingRequiredArg, grammar.ArgField(arg.Key), string(arg.Key), "", "")
			}
			continue
		}
		if len(arg.Choices) > 0 && !slices.Contains(arg.Choices, value) {
			return nil, b.invalid(InvalidValue, grammar.ArgField(arg.Key), string(arg.Key), value,
				"expected one of "+strings.Join(arg.Choices, ", "))
		}
	}
	if rest := b.spec.Rest; rest != nil && len(b.rest) < rest.Min {
		return nil, b.invalid(MissingRequiredArg, grammar.ArgField(grammar.ArgUnknown), rest.Name, "", "")
	}
	for i := range b.spec.Opts {
		opt := &b.spec.Opts[i]
		if opt.Required && !b.seen(opt.Key) {
			return nil, b.invalid(MissingRequiredOption, grammar.OptField(opt.Key), "--"+opt.Long, "", "")
		}
	}

	return b.build()
}

func (b *Builder) invalid(reason ValidationReason, field grammar.FieldKey, name, value, detail string) *ValidationError {
	return &ValidationError{
		Reason:  reason,
		Command: b.node.Path(),
		Field:   field,
		Name:    name,
		Value:   value,
		Detail:  detail,
	}
}

// last returns the final value given for a flag.
func (b *Builder) last(key grammar.OptKey) string {
	values := b.opts[key]
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

func (b *Builder) build() (Command, error) {
	switch b.spec.Kind {
	case grammar.PrintRequests:
		return PrintRequests{}, nil
	case grammar.PrintVariables:
		return PrintVariables{}, nil
	case grammar.PrintEnvironments:
		return PrintEnvironments{}, nil
	case grammar.PrintWorkspaces:
		return PrintWorkspaces{}, nil
	case grammar.CreateRequest:
		return CreateRequest{
			Name:    b.args[grammar.ArgName],
			URL:     b.args[grammar.ArgURL],
			Method:  b.last(grammar.OptMethod),
			Headers: slices.Clone(b.opts[grammar.OptHeader]),
			Body:    b.last(grammar.OptBody),
		}, nil
	case grammar.CreateVariable:
		values := make([]EnvValue, 0, len(b.rest))
		for _, pair := range b.rest {
			env, value, ok := strings.Cut(pair, "=")
			if !ok || env == "" {
				return nil, b.invalid(InvalidValue, grammar.ArgField(grammar.ArgUnknown), b.spec.Rest.Name, pair,
					"expected env=value")
			}
			values = append(values, EnvValue{Environment: env, Value: value})
		}
		return CreateVariable{Name: b.args[grammar.ArgName], Values: values}, nil
	case grammar.DeleteRequests:
		return DeleteRequests{Names: slices.Clone(b.rest)}, nil
	case grammar.DeleteVariables:
		return DeleteVariables{Names: slices.Clone(b.rest)}, nil
	case grammar.DeleteOptions:
		return DeleteOptions{Names: slices.Clone(b.rest)}, nil
	case grammar.SetEnvironment:
		return SetEnvironment{Name: b.args[grammar.ArgEnvironment]}, nil
	case grammar.SetWorkspace:
		return SetWorkspace{Name: b.args[grammar.ArgWorkspace]}, nil
	case grammar.Run:
		return Run{Request: b.args[grammar.ArgRequest]}, nil
	case grammar.Extract:
		return Extract{
			Source:   b.args[grammar.ArgSource],
			Key:      b.args[grammar.ArgLookup],
			Variable: b.last(grammar.OptToVar),
		}, nil
	case grammar.Info:
		return Info{}, nil
	default:
		return nil, fmt.Errorf("no command type for %s", b.spec.Kind)
	}
}
