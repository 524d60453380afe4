package arg

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check whether the daemon is running",
	Run: func(cmd *cobra.Command, args []string) {
		var reply string
		if err := callDaemon("Ping", &reply); err != nil {
			fatal(fmt.Errorf("daemon not reachable: %w", err))
		}
		fmt.Println(reply)
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
