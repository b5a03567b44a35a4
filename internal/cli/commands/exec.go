package commands

import (
	"strings"

	"github.com/mcastorina/repost/pkg/token"
	"github.com/spf13/cobra"
)

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <line>",
		Short: "Execute one shell line and exit",
		Long: `Execute a single repost shell line without starting the REPL.

A single argument is taken as the whole line. Several arguments are quoted
and joined, so words your shell already split stay intact.`,
		Example: `  repost exec 'create request get-user http://localhost/users/{{id}}'
  repost exec run get-user
  repost exec create var id default=42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			line := lineFromArgs(args)
			return describeError(line, cmdCtx.Shell.Dispatch(cmd.Context(), line))
		},
	}
}

// lineFromArgs rebuilds a shell line from command-line arguments.
func lineFromArgs(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	quoted := make([]string, len(args))
	for i, arg := range args {
		if arg == token.BreakMarker {
			quoted[i] = arg
			continue
		}
		quoted[i] = token.Quote(arg)
	}
	return strings.Join(quoted, " ")
}
