package commands

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary. The cli package fills it from
// variables set with -ldflags "-X ...".
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// resolve fills an unset commit from the VCS stamp Go embeds in module builds.
func (b BuildInfo) resolve() BuildInfo {
	if b.Commit != "" && b.Commit != "unknown" {
		return b
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Commit = s.Value
		case "vcs.time":
			if b.Date == "" || b.Date == "unknown" {
				b.Date = s.Value
			}
		}
	}
	return b
}

// NewVersionCommand creates the version command.
func NewVersionCommand(build BuildInfo) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the repost version, the commit it was built from and the Go toolchain.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(out, build.Version)
				return
			}
			b := build.resolve()
			if b.Commit == "" {
				b.Commit = "unknown"
			}
			if b.Date == "" {
				b.Date = "unknown"
			}
			_, _ = fmt.Fprintf(out, "repost v%s\n", b.Version)
			_, _ = fmt.Fprintf(out, "commit:  %s\n", b.Commit)
			_, _ = fmt.Fprintf(out, "built:   %s\n", b.Date)
			_, _ = fmt.Fprintf(out, "go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
