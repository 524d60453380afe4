package arg

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:     "pause",
	Aliases: []string{"p"},
	Short:   "Pause activity tracking",
	Run: func(cmd *cobra.Command, args []string) {
		if err := callDaemon("Pause", nil); err != nil {
			fatal(fmt.Errorf("daemon not reachable: %w", err))
		}
		fmt.Println("Tracking paused")
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
}
