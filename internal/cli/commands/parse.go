package commands

import (
	"encoding/json"

	"github.com/mcastorina/repost/pkg/command"
	"github.com/spf13/cobra"
)

// parsedCommand is the JSON form printed by `repost parse`.
type parsedCommand struct {
	Kind    string          `json:"kind"`
	Command command.Command `json:"command"`
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <line>",
		Short: "Parse a shell line and print the typed command as JSON",
		Long: `Parse a repost shell line without executing it.

The command kind and its fields are printed as JSON. Parse errors are
reported with the byte offset they refer to.`,
		Example: `  repost parse 'create req get-user http://x -H "Accept: */*"'`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutStore(cmd)

			line := lineFromArgs(args)
			parsed, err := cmdCtx.Shell.Parse(line)
			if err != nil {
				return describeError(line, err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(parsedCommand{Kind: parsed.Kind().String(), Command: parsed})
		},
	}
}
