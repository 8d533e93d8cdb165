package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time: -ldflags "-X github.com/spigell/recruitdesk/cmd.version=v1.0.0".
var (
	version = "unknown"
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionLine())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionLine() string {
	if commit == "" {
		return fmt.Sprintf("%s version: %s", app, version)
	}
	return fmt.Sprintf("%s version: %s (%s)", app, version, commit)
}

// userAgent identifies this build to the backend.
func userAgent() string {
	return app + "/" + version
}
