// Package paths resolves the on-disk locations nomen uses when the CLI
// isn't told otherwise: the state database, the settings document, and
// the UCS taxonomy workbook cache.
package paths

import (
	"os"
	"path/filepath"
)

const appDirName = "nomen"

// DataDir returns the directory nomen's own files live under, creating it
// if necessary. It honors $NOMEN_DATA_DIR, falling back to the OS's
// per-user config directory.
func DataDir() (string, error) {
	if dir := os.Getenv("NOMEN_DATA_DIR"); dir != "" {
		return ensureDir(dir)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(base, appDirName))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// DBPath returns the default path to the state database.
func DBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nomen.db"), nil
}

// SettingsPath returns the default path to the settings document.
func SettingsPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// EventLogDir returns the directory session event logs are written under.
func EventLogDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(dir, "logs"))
}

// UCSWorkbookPath returns the path to the UCS taxonomy workbook. It honors
// $NOMEN_UCS_PATH, falling back to a well-known name under the data
// directory; the caller decides what to do if nothing exists there.
func UCSWorkbookPath() (string, error) {
	if p := os.Getenv("NOMEN_UCS_PATH"); p != "" {
		return p, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "UCS v8.2.1 Full List.xlsx"), nil
}
