package arg

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/timewarden/timewarden/internal/store"
)

var (
	reportFrom   string
	reportTo     string
	reportWeek   bool
	reportDetail bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize tracked time per project",
	Long: `Summarize tracked time per project for a local date range. With no
flags the report covers today.`,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		ctx := cmdContext(cmd)
		cfg, err := st.LoadSettings(ctx)
		if err != nil {
			fatal(err)
		}

		from, to, err := reportRange(time.Now(), cfg.WeekStart)
		if err != nil {
			fatal(err)
		}

		sessions, err := st.SessionsInRange(ctx, from.UTC(), to.UTC())
		if err != nil {
			fatal(err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions in range")
			return
		}

		if reportDetail {
			printSessions(sessions)
			return
		}
		printSummary(sessions)
	},
}

// reportRange resolves the flags into local [from, to) bounds.
func reportRange(now time.Time, weekStart string) (time.Time, time.Time, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	switch {
	case reportFrom != "" || reportTo != "":
		from, to := day, day.AddDate(0, 0, 1)
		if reportFrom != "" {
			parsed, err := time.ParseInLocation("2006-01-02", reportFrom, time.Local)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("bad --from date %q", reportFrom)
			}
			from = parsed
		}
		if reportTo != "" {
			parsed, err := time.ParseInLocation("2006-01-02", reportTo, time.Local)
			if err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("bad --to date %q", reportTo)
			}
			to = parsed.AddDate(0, 0, 1)
		}
		return from, to, nil

	case reportWeek:
		start := time.Monday
		if weekStart == "sunday" {
			start = time.Sunday
		}
		back := (int(day.Weekday()) - int(start) + 7) % 7
		from := day.AddDate(0, 0, -back)
		return from, from.AddDate(0, 0, 7), nil

	default:
		return day, day.AddDate(0, 0, 1), nil
	}
}

func printSummary(sessions []store.SessionRow) {
	totals := make(map[string]int)
	counts := make(map[string]int)
	for _, s := range sessions {
		totals[s.ProjectName] += s.Duration
		counts[s.ProjectName]++
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})

	var total int
	rows := make([][]string, 0, len(names)+1)
	for _, name := range names {
		total += totals[name]
		rows = append(rows, []string{
			name, humanDuration(totals[name]), fmt.Sprintf("%d", counts[name]),
		})
	}
	rows = append(rows, []string{"TOTAL", humanDuration(total), fmt.Sprintf("%d", len(sessions))})
	printTable([]string{"PROJECT", "TIME", "SESSIONS"}, rows)
}

func printSessions(sessions []store.SessionRow) {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.StartTime.Local().Format("2006-01-02 15:04"),
			s.EndTime.Local().Format("15:04"),
			humanDuration(s.Duration),
			s.ProjectName,
			s.TriggeredBy,
		})
	}
	printTable([]string{"START", "END", "TIME", "PROJECT", "MATCHED BY"}, rows)
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "start date (YYYY-MM-DD, local)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "end date inclusive (YYYY-MM-DD, local)")
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "report the current week")
	reportCmd.Flags().BoolVar(&reportDetail, "detail", false, "list individual sessions")

	rootCmd.AddCommand(reportCmd)
}
