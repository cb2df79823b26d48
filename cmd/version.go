package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/weatheria/weather-backend/internal/config"
)

// Set at build time with -ldflags "-X github.com/weatheria/weather-backend/cmd.commit=...".
var (
	version = ""
	commit  = "none"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// No config or API key is needed to print the version.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v := version
			if v == "" {
				v = config.NewDefaultConfig().Version
			}
			fmt.Fprintf(cmd.OutOrStdout(), "weather %s (commit %s)\n", v, commit)
		},
	}
}
