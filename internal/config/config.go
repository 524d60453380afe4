package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// File holds the static daemon configuration read from the optional TOML
// config file. Everything tunable at runtime lives in the settings table
// instead (see Settings).
type File struct {
	DataDir string `toml:"data_dir"`
	LogFile string `toml:"log_file"`
}

// DefaultPath is the config file location checked when none is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "timewarden.toml"
	}
	return filepath.Join(home, ".timewarden", "config.toml")
}

// LoadFile reads a TOML config file. A missing file is not an error and
// yields the defaults.
func LoadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.SetDefault()
			return f, nil
		}
		return f, err
	}
	if err := toml.Unmarshal(data, &f); err != nil {
		return f, err
	}
	f.SetDefault()
	return f, nil
}

// SetDefault fills unset fields with their default values.
func (f *File) SetDefault() {
	if f.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			f.DataDir = ".timewarden"
		} else {
			f.DataDir = filepath.Join(home, ".timewarden")
		}
	}
	if f.LogFile == "" {
		f.LogFile = filepath.Join(f.DataDir, "timewarden.log")
	}
}

func (f File) DBPath() string {
	return filepath.Join(f.DataDir, "timewarden.db")
}

func (f File) LockPath() string {
	return filepath.Join(f.DataDir, "timewarden.lock")
}

func (f File) BackupDir() string {
	return filepath.Join(f.DataDir, "backups")
}
