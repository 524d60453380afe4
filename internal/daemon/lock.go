package daemon

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// flockGuard holds an exclusive advisory lock so only one daemon instance
// runs per data directory.
type flockGuard struct {
	file *os.File
}

func acquireLock(path string) (*flockGuard, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("another daemon instance is already running")
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	return &flockGuard{file: f}, nil
}

func (g *flockGuard) release() {
	if g.file == nil {
		return
	}
	unix.Flock(int(g.file.Fd()), unix.LOCK_UN)
	g.file.Close()
	g.file = nil
}
