package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/mcastorina/repost/pkg/grammar"
)

// WriteHelp prints one synopsis line per leaf command.
func (s *Shell) WriteHelp(w io.Writer) error {
	for _, leaf := range s.tree.Leaves() {
		synopsis := spelling(leaf)
		if usage := leaf.Spec.Usage(); usage != "" {
			synopsis += " " + usage
		}
		if _, err := fmt.Fprintf(w, "  %-60s %s\n", synopsis, leaf.Spec.Help); err != nil {
			return err
		}
	}
	return nil
}

// spelling renders the path with aliases, e.g. "create|new|add|c request|req|r".
func spelling(n *grammar.Node) string {
	var parts []string
	for cur := n; !cur.IsRoot(); cur = cur.Parent {
		parts = append([]string{strings.Join(cur.Spec.Names(), "|")}, parts...)
	}
	return strings.Join(parts, " ")
}
