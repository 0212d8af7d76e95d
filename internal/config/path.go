package config

import (
	"os"
	"path/filepath"
)

const appDir = "partysearch"

// DefaultDataDir returns the default Pebble directory for the host OS.
// Order: $XDG_DATA_HOME, /var/lib, macOS Application Support, Windows
// AppData, then ~/.partysearch. Without a home directory it is ./data.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data"
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir)
	}
	candidates := []struct{ parent, dir string }{
		{"/var/lib", filepath.Join("/var/lib", appDir)},
		{filepath.Join(home, "Library"), filepath.Join(home, "Library", "Application Support", "PartySearch")},
		{filepath.Join(home, "AppData"), filepath.Join(home, "AppData", "Local", "PartySearch")},
	}
	for _, c := range candidates {
		if isDir(c.parent) {
			return c.dir
		}
	}
	return filepath.Join(home, "."+appDir)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
