package arg

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change daemon settings",
	Long: `Settings live in the database and take effect on the daemon's next
poll; no restart is needed.`,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all settings",
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		settings, err := st.AllSettings(cmdContext(cmd))
		if err != nil {
			fatal(err)
		}

		keys := make([]string, 0, len(settings))
		for k := range settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, settings[k]})
		}
		printTable([]string{"KEY", "VALUE"}, rows)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		settings, err := st.AllSettings(cmdContext(cmd))
		if err != nil {
			fatal(err)
		}
		value, ok := settings[args[0]]
		if !ok {
			fatal(fmt.Errorf("unknown setting %q", args[0]))
		}
		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		ctx := cmdContext(cmd)
		// All known keys are seeded at schema creation, so an absent row
		// means a typo rather than an unset value.
		settings, err := st.AllSettings(ctx)
		if err != nil {
			fatal(err)
		}
		if _, ok := settings[args[0]]; !ok {
			fatal(fmt.Errorf("unknown setting %q", args[0]))
		}
		if err := st.SetSetting(ctx, args[0], args[1]); err != nil {
			fatal(err)
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
