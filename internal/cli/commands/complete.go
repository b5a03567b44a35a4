package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewCompleteCommand creates the complete command.
func NewCompleteCommand() *cobra.Command {
	var cursor int

	cmd := &cobra.Command{
		Use:   "complete <line>",
		Short: "Print completion candidates for a shell line as JSON",
		Long: `Compute the completions the REPL would offer for a line.

The cursor defaults to the end of the line. The result holds the byte range
to replace and the candidates, with stored names looked up in the state
database.`,
		Example: `  repost complete 'run get'
  repost complete 'create req ' --cursor 11`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := args[0]
			if !cmd.Flags().Changed("cursor") {
				cursor = len(line)
			}
			if cursor < 0 || cursor > len(line) {
				return fmt.Errorf("cursor %d is outside the line (0..%d)", cursor, len(line))
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			res := cmdCtx.Shell.Complete(line, cursor)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().IntVar(&cursor, "cursor", 0, "Byte offset of the cursor (default: end of line)")
	return cmd
}
