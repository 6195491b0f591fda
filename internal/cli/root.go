package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "reseau",
	Short: "Reseau - build and edit a personal relationship network",
	Long: `Reseau keeps a small graph of the people you know and how you know them.

Add people, relate them with friendly, professional, familial, romantic or
acquaintance relationships, and undo any relationship from the history of
everything you added. Deleting a person removes their relationships and
their history entries after you confirm.

Use 'reseau tui' for the interactive editor, 'reseau script' to replay a
file of commands, or 'reseau mcp serve' to let an assistant drive a session.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reseau %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
