package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/timewarden/timewarden/internal/config"
	"github.com/timewarden/timewarden/internal/daemon"
	"github.com/timewarden/timewarden/internal/ipc"
	"github.com/timewarden/timewarden/internal/sampler"
	"github.com/timewarden/timewarden/internal/store"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to the TOML config file")
	foreground := flag.Bool("foreground", false, "also log to stdout")
	flag.Parse()

	file, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	log, closeLog, err := openLogger(file, *foreground)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to open log file:", err)
		os.Exit(1)
	}
	defer closeLog()

	st, err := store.Open(file.DBPath())
	if err != nil {
		log.Error("failed to open database", "path", file.DBPath(), "error", err)
		os.Exit(1)
	}
	defer st.Close()

	smp, err := sampler.NewDBus()
	if err != nil {
		log.Error("failed to connect to session bus", "error", err)
		os.Exit(1)
	}
	defer smp.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutdown signal received")
		cancel()
	}()

	d, err := daemon.New(ctx, file, st, smp, log)
	if err != nil {
		log.Error("failed to initialize daemon", "error", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("exporting D-Bus service", "name", ipc.ServiceName)
		if err := ipc.Serve(ctx, d); err != nil {
			log.Error("ipc service error", "error", err)
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.Run(ctx); err != nil {
			log.Error("daemon error", "error", err)
			cancel()
		}
	}()

	wg.Wait()
	log.Info("shutdown complete")
}

// openLogger writes structured logs to the configured log file, and to
// stdout as well when running in the foreground.
func openLogger(file config.File, foreground bool) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(file.LogFile), 0o700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(file.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = f
	if foreground {
		w = io.MultiWriter(f, os.Stdout)
	}
	log := slog.New(slog.NewTextHandler(w, nil))
	return log, func() { f.Close() }, nil
}
