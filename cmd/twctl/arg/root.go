package arg

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timewarden/timewarden/internal/config"
	"github.com/timewarden/timewarden/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "twctl",
	Short: "twctl is the command line tool for TimeWarden",
	Long: `twctl manages TimeWarden projects, rules, and settings, and talks to
the running daemon over D-Bus for live status and control.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to the TOML config file")
}

// openStore opens the database the daemon writes to. Commands that edit
// projects, rules, or settings work on the database directly; the daemon
// picks up setting changes on its next poll.
func openStore() (*store.Store, error) {
	file, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return store.Open(file.DBPath())
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
