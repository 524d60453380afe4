package arg

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/timewarden/timewarden/internal/store"
)

var (
	exportFormat string
	exportFrom   string
	exportTo     string
	exportOut    string
)

type exportedSession struct {
	ID          int64  `json:"id"`
	Project     string `json:"project"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Duration    int    `json:"duration"`
	TriggeredBy string `json:"triggered_by"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions as CSV or JSON",
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			fatal(err)
		}
		defer st.Close()

		from := time.Time{}
		to := time.Now().AddDate(1, 0, 0)
		if exportFrom != "" {
			from, err = time.ParseInLocation("2006-01-02", exportFrom, time.Local)
			if err != nil {
				fatal(fmt.Errorf("bad --from date %q", exportFrom))
			}
		}
		if exportTo != "" {
			parsed, err := time.ParseInLocation("2006-01-02", exportTo, time.Local)
			if err != nil {
				fatal(fmt.Errorf("bad --to date %q", exportTo))
			}
			to = parsed.AddDate(0, 0, 1)
		}

		sessions, err := st.SessionsInRange(cmdContext(cmd), from.UTC(), to.UTC())
		if err != nil {
			fatal(err)
		}

		var w io.Writer = os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				fatal(err)
			}
			defer f.Close()
			w = f
		}

		switch exportFormat {
		case "csv":
			err = writeCSV(w, sessions)
		case "json":
			err = writeJSON(w, sessions)
		default:
			err = fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
		}
		if err != nil {
			fatal(err)
		}
	},
}

func writeCSV(w io.Writer, sessions []store.SessionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "project", "start_time", "end_time", "duration", "triggered_by"}); err != nil {
		return err
	}
	for _, s := range sessions {
		record := []string{
			strconv.FormatInt(s.ID, 10),
			s.ProjectName,
			store.FormatTime(s.StartTime),
			store.FormatTime(s.EndTime),
			strconv.Itoa(s.Duration),
			s.TriggeredBy,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, sessions []store.SessionRow) error {
	out := make([]exportedSession, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, exportedSession{
			ID:          s.ID,
			Project:     s.ProjectName,
			StartTime:   store.FormatTime(s.StartTime),
			EndTime:     store.FormatTime(s.EndTime),
			Duration:    s.Duration,
			TriggeredBy: s.TriggeredBy,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format, csv or json")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "start date (YYYY-MM-DD, local)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "end date inclusive (YYYY-MM-DD, local)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to a file instead of stdout")

	rootCmd.AddCommand(exportCmd)
}
