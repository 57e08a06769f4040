package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath is usable before any config is parsed, e.g. to locate
// the .env file.
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("SHANNON_RUNTIME_PATH"))
}

// Relative paths are anchored at the user's home directory.
func resolveRuntimePath(path string) string {
	if path == "" {
		path = ".shannon"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
