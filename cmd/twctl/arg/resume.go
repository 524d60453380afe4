package arg

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:     "resume",
	Aliases: []string{"r"},
	Short:   "Resume activity tracking",
	Run: func(cmd *cobra.Command, args []string) {
		if err := callDaemon("Resume", nil); err != nil {
			fatal(fmt.Errorf("daemon not reachable: %w", err))
		}
		fmt.Println("Tracking resumed")
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
