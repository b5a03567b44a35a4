package grammar

import (
	"fmt"
	"strings"

	"github.com/mcastorina/repost/pkg/token"
)

// Node is a command in the tree.
type Node struct {
	Spec     *CommandSpec
	Parent   *Node
	Children []*Node

	byName map[string]*Node
}

// Tree is the immutable command tree. It is safe for concurrent use.
type Tree struct {
	root   *Node
	leaves map[CommandKind]*Node
}

// NewTree builds and validates a tree from the top-level commands.
func NewTree(commands []CommandSpec) (*Tree, error) {
	root := &CommandSpec{Children: commands}
	t := &Tree{leaves: make(map[CommandKind]*Node)}
	t.root = t.build(root, nil)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) build(spec *CommandSpec, parent *Node) *Node {
	n := &Node{
		Spec:   spec,
		Parent: parent,
		byName: make(map[string]*Node),
	}
	for i := range spec.Children {
		child := t.build(&spec.Children[i], n)
		n.Children = append(n.Children, child)
		for _, name := range child.Spec.Names() {
			// First spelling wins; Validate reports the clash.
			if _, ok := n.byName[name]; !ok {
				n.byName[name] = child
			}
		}
	}
	if spec.IsLeaf() && parent != nil {
		if _, ok := t.leaves[spec.Kind]; !ok {
			t.leaves[spec.Kind] = n
		}
	}
	return n
}

// Root returns the root node. It has no spelling of its own.
func (t *Tree) Root() *Node {
	return t.root
}

// Leaf returns the node of a leaf command kind.
func (t *Tree) Leaf(kind CommandKind) (*Node, bool) {
	n, ok := t.leaves[kind]
	return n, ok
}

// Child returns the child spelled by word.
func (n *Node) Child(word string) (*Node, bool) {
	c, ok := n.byName[word]
	return c, ok
}

// IsRoot reports whether n is the tree root.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// IsLeaf reports whether n is a leaf command.
func (n *Node) IsLeaf() bool {
	return !n.IsRoot() && n.Spec.IsLeaf()
}

// ChildNames returns the spellings of every child, each primary name followed
// by its aliases, in declaration order.
func (n *Node) ChildNames() []string {
	var names []string
	for _, c := range n.Children {
		names = append(names, c.Spec.Names()...)
	}
	return names
}

// Path returns the primary names from the root down to n, e.g.
// "create request".
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil && !cur.IsRoot(); cur = cur.Parent {
		parts = append(parts, cur.Spec.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " ")
}

// Walk descends from the root as far as the tokens spell subcommands and
// returns the node reached with the number of tokens consumed. It never
// fails; callers inspect the node to decide what comes next.
func (t *Tree) Walk(tokens []token.Token) (*Node, int) {
	node := t.root
	consumed := 0
	for consumed < len(tokens) && !node.IsLeaf() {
		child, ok := node.Child(tokens[consumed].Value())
		if !ok {
			break
		}
		node = child
		consumed++
	}
	return node, consumed
}

// Resolve finds the leaf command the tokens address and returns it with the
// tokens left for its builder.
func (t *Tree) Resolve(tokens []token.Token) (*Node, []token.Token, error) {
	node, consumed := t.Walk(tokens)
	if node.IsLeaf() {
		return node, tokens[consumed:], nil
	}

	err := &ResolutionError{
		Reason:  UnknownSubcommand,
		Command: node.Path(),
		Valid:   node.ChildNames(),
	}
	if node.IsRoot() {
		err.Reason = UnknownCommand
	}
	if consumed < len(tokens) {
		tok := tokens[consumed]
		err.Token = &tok
	}
	return nil, nil, err
}

// Leaves returns every leaf command in declaration order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		if n.IsLeaf() {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(t.root)
	return out
}

// Validate checks that the tree is well formed: spellings are disjoint among
// siblings, leaves carry a distinct kind, flag spellings are disjoint within
// a command and required positionals come first.
func (t *Tree) Validate() error {
	seen := make(map[CommandKind]string)
	var check func(n *Node) error
	check = func(n *Node) error {
		names := make(map[string]string)
		for _, c := range n.Children {
			if c.Spec.Name == "" {
				return fmt.Errorf("command under %q has no name", n.Path())
			}
			for _, name := range c.Spec.Names() {
				if other, ok := names[name]; ok {
					return fmt.Errorf("%q is spelled by both %q and %q", name, other, c.Path())
				}
				names[name] = c.Path()
			}
		}

		if n.IsRoot() {
			if len(n.Children) == 0 {
				return fmt.Errorf("command tree is empty")
			}
		} else if n.IsLeaf() {
			if err := checkLeaf(n); err != nil {
				return err
			}
			if other, ok := seen[n.Spec.Kind]; ok {
				return fmt.Errorf("%q and %q share kind %s", other, n.Path(), n.Spec.Kind)
			}
			seen[n.Spec.Kind] = n.Path()
		} else if len(n.Spec.Args) > 0 || len(n.Spec.Opts) > 0 || n.Spec.Rest != nil {
			return fmt.Errorf("%q has subcommands and cannot take arguments", n.Path())
		}

		for _, c := range n.Children {
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	return check(t.root)
}

func checkLeaf(n *Node) error {
	spec := n.Spec
	if spec.Kind == KindNone {
		return fmt.Errorf("leaf %q has no kind", n.Path())
	}

	optional := false
	args := make(map[ArgKey]bool)
	for _, a := range spec.Args {
		if a.Key == ArgUnknown {
			return fmt.Errorf("%q declares the catch-all as a positional", n.Path())
		}
		if args[a.Key] {
			return fmt.Errorf("%q declares positional %q twice", n.Path(), a.Key)
		}
		args[a.Key] = true
		if !a.Required {
			optional = true
		} else if optional {
			return fmt.Errorf("%q: required positional %q follows an optional one", n.Path(), a.Key)
		}
	}
	if spec.Rest != nil {
		if spec.Rest.Min < 0 {
			return fmt.Errorf("%q: negative catch-all minimum", n.Path())
		}
		if optional && spec.Rest.Min > 0 {
			return fmt.Errorf("%q: required catch-all follows an optional positional", n.Path())
		}
	}

	spellings := make(map[string]OptKey)
	for i := range spec.Opts {
		o := &spec.Opts[i]
		if o.Long == "" {
			return fmt.Errorf("%q: flag %q has no long spelling", n.Path(), o.Key)
		}
		for _, s := range o.Spellings() {
			if other, ok := spellings[s]; ok {
				return fmt.Errorf("%q: %s is spelled by both %q and %q", n.Path(), s, other, o.Key)
			}
			spellings[s] = o.Key
		}
		if o.Repeatable && !o.RequiresValue {
			return fmt.Errorf("%q: repeatable flag %q must take a value", n.Path(), o.Key)
		}
	}
	return nil
}
