package config

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the default ~/.ptyhost directory.
const HomeEnv = "PTYHOST_HOME"

// Paths holds all the file system paths used by the application
type Paths struct {
	Home       string // ~/.ptyhost
	ConfigPath string // ~/.ptyhost/config.json
	LogDir     string // ~/.ptyhost/logs
}

// DefaultPaths returns the default paths configuration
func DefaultPaths() (*Paths, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return PathsAt(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return PathsAt(filepath.Join(home, ".ptyhost")), nil
}

// PathsAt lays out the standard files under home.
func PathsAt(home string) *Paths {
	return &Paths{
		Home:       home,
		ConfigPath: filepath.Join(home, "config.json"),
		LogDir:     filepath.Join(home, "logs"),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Home, p.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
