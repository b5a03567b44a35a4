package grammar

import (
	"slices"
	"strings"
)

// CommandSpec describes one command: how it is spelled, which positionals and
// flags it accepts and, for inner commands, its subcommands.
type CommandSpec struct {
	// Name is the primary spelling (e.g., "create")
	Name string

	// Aliases are alternative spellings (e.g., "new", "add", "c")
	Aliases []string

	// Help is a one-line description shown by help
	Help string

	// Kind is set on leaf commands only
	Kind CommandKind

	// Args are the positional slots, filled in order
	Args []ArgSpec

	// Rest is the catch-all collecting positionals past Args. Nil means extra
	// positionals are an error.
	Rest *RestSpec

	// Opts are the flags
	Opts []OptSpec

	// Children are the subcommands of an inner command
	Children []CommandSpec

	// UnknownDashIsLiteral treats a dash-prefixed word that matches no flag
	// as a positional instead of an error.
	UnknownDashIsLiteral bool
}

// ArgSpec describes a positional slot.
type ArgSpec struct {
	Key      ArgKey
	Required bool
	// Choices restricts the slot to a fixed set of values.
	Choices []string
	Help    string
}

// RestSpec describes the catch-all positional.
type RestSpec struct {
	// Name is how the values are shown in usage (e.g., "name")
	Name string
	// Min is the number of values required at finish
	Min  int
	Help string
}

// OptSpec describes a flag.
type OptSpec struct {
	Key   OptKey
	Long  string // without dashes
	Short string // without dash, may be empty

	RequiresValue bool
	Repeatable    bool
	Required      bool

	// Placeholder names the value in usage (e.g., "METHOD")
	Placeholder string
	// Suggest lists common values offered during completion. They do not
	// restrict what is accepted.
	Suggest []string
	Help    string
}

// Names returns the primary name followed by the aliases.
func (c *CommandSpec) Names() []string {
	names := make([]string, 0, 1+len(c.Aliases))
	names = append(names, c.Name)
	return append(names, c.Aliases...)
}

// Matches reports whether word is one of the command's spellings.
func (c *CommandSpec) Matches(word string) bool {
	return word == c.Name || slices.Contains(c.Aliases, word)
}

// IsLeaf reports whether the command has no subcommands.
func (c *CommandSpec) IsLeaf() bool {
	return len(c.Children) == 0
}

// Option finds the flag spelled by word ("--method" or "-m").
func (c *CommandSpec) Option(word string) (*OptSpec, bool) {
	for i := range c.Opts {
		if c.Opts[i].Matches(word) {
			return &c.Opts[i], true
		}
	}
	return nil, false
}

// Arg returns the positional slot declared for key.
func (c *CommandSpec) Arg(key ArgKey) (*ArgSpec, bool) {
	for i := range c.Args {
		if c.Args[i].Key == key {
			return &c.Args[i], true
		}
	}
	return nil, false
}

// Matches reports whether word spells this flag.
func (o *OptSpec) Matches(word string) bool {
	if word == "--"+o.Long {
		return true
	}
	return o.Short != "" && word == "-"+o.Short
}

// Spellings returns the dash-prefixed spellings, long form first.
func (o *OptSpec) Spellings() []string {
	out := []string{"--" + o.Long}
	if o.Short != "" {
		out = append(out, "-"+o.Short)
	}
	return out
}

// Usage renders the flag for help output, e.g. "[-m|--method METHOD]".
func (o *OptSpec) Usage() string {
	var b strings.Builder
	if o.Short != "" {
		b.WriteString("-" + o.Short + "|")
	}
	b.WriteString("--" + o.Long)
	if o.RequiresValue {
		placeholder := o.Placeholder
		if placeholder == "" {
			placeholder = strings.ToUpper(o.Long)
		}
		b.WriteString(" " + placeholder)
	}
	s := b.String()
	if !o.Required {
		s = "[" + s + "]"
	}
	if o.Repeatable {
		s += "..."
	}
	return s
}

// Usage renders the argument part of a leaf command's synopsis.
func (c *CommandSpec) Usage() string {
	var parts []string
	for _, a := range c.Args {
		name := string(a.Key)
		if len(a.Choices) > 0 {
			name = strings.Join(a.Choices, "|")
			if a.Required {
				parts = append(parts, "{"+name+"}")
			} else {
				parts = append(parts, "["+name+"]")
			}
			continue
		}
		if a.Required {
			parts = append(parts, "<"+name+">")
		} else {
			parts = append(parts, "["+name+"]")
		}
	}
	if c.Rest != nil {
		if c.Rest.Min > 0 {
			parts = append(parts, "<"+c.Rest.Name+">...")
		} else {
			parts = append(parts, "["+c.Rest.Name+"]...")
		}
	}
	for i := range c.Opts {
		parts = append(parts, c.Opts[i].Usage())
	}
	return strings.Join(parts, " ")
}
