package arg

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timewarden/timewarden/internal/ipc"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the daemon is tracking right now",
	Run: func(cmd *cobra.Command, args []string) {
		var raw string
		if err := callDaemon("GetStatus", &raw); err != nil {
			fatal(fmt.Errorf("daemon not reachable: %w", err))
		}
		if statusJSON {
			fmt.Println(raw)
			return
		}

		var payload ipc.StatusPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			fatal(fmt.Errorf("bad status payload: %w", err))
		}

		if payload.TrackingPaused {
			fmt.Println("Tracking: paused")
		} else {
			fmt.Println("Tracking: active")
		}

		if a := payload.LastActivity; a != nil {
			state := "active"
			if a.Idle {
				state = "idle"
			}
			fmt.Printf("Last activity: %s (%s) [%s]\n",
				orDash(a.AppName), orDash(a.WindowTitle), state)
		}

		if s := payload.Session; s != nil {
			name := projectName(cmd, s.ProjectID)
			fmt.Printf("Session: %s  %s  (matched by %s)\n",
				name, humanDuration(s.Duration), s.TriggeredBy)
			if s.GraceRemaining != nil {
				fmt.Printf("Idle grace remaining: %ds\n", *s.GraceRemaining)
			}
		} else {
			fmt.Println("Session: none")
		}
	},
}

// projectName resolves a project id for display, falling back to the id
// when the database is unavailable.
func projectName(cmd *cobra.Command, id int64) string {
	st, err := openStore()
	if err != nil {
		return fmt.Sprintf("project %d", id)
	}
	defer st.Close()
	projects, err := st.ListProjects(cmdContext(cmd), true)
	if err != nil {
		return fmt.Sprintf("project %d", id)
	}
	for _, p := range projects {
		if p.ID == id {
			return p.Name
		}
	}
	return fmt.Sprintf("project %d", id)
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the raw status payload")
	rootCmd.AddCommand(statusCmd)
}
