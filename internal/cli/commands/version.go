package commands

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display QueryCanvas version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "QueryCanvas v%s\n", version)
			if rev := vcsRevision(); rev != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", rev)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Read-only SQL canvases with display directives")
		},
	}
}

// vcsRevision returns the short VCS revision from build info, if the
// binary was built from a checkout.
func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}
