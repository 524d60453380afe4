package arg

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	projectColor   string
	projectShowAll bool
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"proj"},
	Short:   "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		id, err := st.CreateProject(cmdContext(cmd), args[0], projectColor)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Created project %q (id %d)\n", args[0], id)
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		projects, err := st.ListProjects(cmdContext(cmd), projectShowAll)
		if err != nil {
			fatal(err)
		}
		if len(projects) == 0 {
			fmt.Println("No projects")
			return
		}

		rows := make([][]string, 0, len(projects))
		for _, p := range projects {
			status := ""
			if p.Archived {
				status = "archived"
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", p.ID), p.Name, p.Color, status,
			})
		}
		printTable([]string{"ID", "NAME", "COLOR", "STATUS"}, rows)
	},
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive <name>",
	Short: "Archive a project so its rules stop matching",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setArchived(cmd, args[0], true)
		fmt.Printf("Archived project %q\n", args[0])
	},
}

var projectUnarchiveCmd = &cobra.Command{
	Use:   "unarchive <name>",
	Short: "Restore an archived project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setArchived(cmd, args[0], false)
		fmt.Printf("Restored project %q\n", args[0])
	},
}

func setArchived(cmd *cobra.Command, name string, archived bool) {
	st, err := openStore()
	if err != nil {
		fatal(err)
	}
	defer st.Close()

	ctx := cmdContext(cmd)
	p, err := st.ProjectByName(ctx, name)
	if err != nil {
		fatal(err)
	}
	if p == nil {
		fatal(fmt.Errorf("project %q not found", name))
	}
	if err := st.SetProjectArchived(ctx, p.ID, archived); err != nil {
		fatal(err)
	}
	notifyReload()
}

func init() {
	projectAddCmd.Flags().StringVar(&projectColor, "color", "", "display color, e.g. #4287f5")
	projectListCmd.Flags().BoolVar(&projectShowAll, "all", false, "include archived projects")

	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectArchiveCmd, projectUnarchiveCmd)
	rootCmd.AddCommand(projectCmd)
}
