package workspace

import (
	"path/filepath"

	"github.com/tacticalyash/IDEStudio/internal/config"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
)

func findFileUp(fs filesystem.FileSystem, startDir, filename string) (string, bool) {
	dir := filepath.Clean(startDir)

	for {
		candidate := filepath.Join(dir, filename)
		if fs.Exists(candidate) {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ConfigDir returns the closest directory at or above startDir holding an
// idestudio.toml file, or startDir itself when there is none.
func ConfigDir(fs filesystem.FileSystem, startDir string) string {
	path, found := findFileUp(fs, startDir, config.FileName)
	if !found {
		return filepath.Clean(startDir)
	}
	return filepath.Dir(path)
}
