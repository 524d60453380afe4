package arg

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/timewarden/timewarden/internal/model"
	"github.com/timewarden/timewarden/internal/rules"
)

var (
	ruleGroup int64

	testApp    string
	testBundle string
	testTitle  string
	testPath   string
	testURL    string
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage matching rules",
}

var ruleAddCmd = &cobra.Command{
	Use:   "add <project> <type> <value>",
	Short: "Add a rule to a project",
	Long: `Add a rule to a project. Rules in group 0 match on their own; rules
sharing a non-zero group only match when every rule in the group does.

Types: app, app_contains, window_contains, window_regex, path_prefix,
path_contains, url_contains, url_regex`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		ctx := cmdContext(cmd)
		p, err := st.ProjectByName(ctx, args[0])
		if err != nil {
			fatal(err)
		}
		if p == nil {
			fatal(fmt.Errorf("project %q not found", args[0]))
		}

		id, err := st.AddRule(ctx, p.ID, args[1], args[2], ruleGroup)
		if err != nil {
			fatal(err)
		}
		notifyReload()
		fmt.Printf("Added rule %d to %q\n", id, p.Name)
	},
}

var ruleListCmd = &cobra.Command{
	Use:   "list [project]",
	Short: "List rules, optionally for one project",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		ctx := cmdContext(cmd)
		var projectID int64
		if len(args) == 1 {
			p, err := st.ProjectByName(ctx, args[0])
			if err != nil {
				fatal(err)
			}
			if p == nil {
				fatal(fmt.Errorf("project %q not found", args[0]))
			}
			projectID = p.ID
		}

		ruleRows, err := st.ListRules(ctx, projectID)
		if err != nil {
			fatal(err)
		}
		if len(ruleRows) == 0 {
			fmt.Println("No rules")
			return
		}

		rows := make([][]string, 0, len(ruleRows))
		for _, r := range ruleRows {
			group := ""
			if r.Group != 0 {
				group = strconv.FormatInt(r.Group, 10)
			}
			status := ""
			if !r.Enabled {
				status = "disabled"
			}
			rows = append(rows, []string{
				strconv.FormatInt(r.ID, 10),
				strconv.FormatInt(r.ProjectID, 10),
				r.Type, r.Value, group, status,
			})
		}
		printTable([]string{"ID", "PROJECT", "TYPE", "VALUE", "GROUP", "STATUS"}, rows)
	},
}

var ruleEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a rule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		toggleRule(cmd, args[0], true)
	},
}

var ruleDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a rule without deleting it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		toggleRule(cmd, args[0], false)
	},
}

var ruleRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a rule",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fatal(fmt.Errorf("bad rule id %q", args[0]))
		}
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		if err := st.DeleteRule(cmdContext(cmd), id); err != nil {
			fatal(err)
		}
		notifyReload()
		fmt.Printf("Deleted rule %d\n", id)
	},
}

var ruleTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Run a synthetic activity sample through the current rules",
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		ctx := cmdContext(cmd)
		engine, err := rules.NewEngine(ctx, st)
		if err != nil {
			fatal(err)
		}

		a := model.Activity{Timestamp: time.Now()}
		if testApp != "" {
			a.AppName = model.Str(testApp)
		}
		if testBundle != "" {
			a.BundleID = model.Str(testBundle)
		}
		if testTitle != "" {
			a.WindowTitle = model.Str(testTitle)
		}
		if testPath != "" {
			a.FilePath = model.Str(testPath)
		}
		if testURL != "" {
			a.URL = model.Str(testURL)
		}

		match := engine.Match(a)
		if match == nil {
			fmt.Println("No project matches this activity")
			return
		}
		fmt.Printf("Matches %s (matched by %s)\n",
			projectName(cmd, match.ProjectID), match.TriggeredBy)
	},
}

func toggleRule(cmd *cobra.Command, arg string, enabled bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fatal(fmt.Errorf("bad rule id %q", arg))
	}
	st, err := openStore()
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	if err := st.SetRuleEnabled(cmdContext(cmd), id, enabled); err != nil {
		fatal(err)
	}
	notifyReload()
	if enabled {
		fmt.Printf("Enabled rule %d\n", id)
	} else {
		fmt.Printf("Disabled rule %d\n", id)
	}
}

func init() {
	ruleAddCmd.Flags().Int64Var(&ruleGroup, "group", 0, "AND-group id (0 means the rule matches on its own)")

	ruleTestCmd.Flags().StringVar(&testApp, "app", "", "app name")
	ruleTestCmd.Flags().StringVar(&testBundle, "bundle", "", "bundle or desktop id")
	ruleTestCmd.Flags().StringVar(&testTitle, "title", "", "window title")
	ruleTestCmd.Flags().StringVar(&testPath, "path", "", "file path")
	ruleTestCmd.Flags().StringVar(&testURL, "url", "", "url")

	ruleCmd.AddCommand(ruleAddCmd, ruleListCmd, ruleEnableCmd, ruleDisableCmd, ruleRmCmd, ruleTestCmd)
	rootCmd.AddCommand(ruleCmd)
}
