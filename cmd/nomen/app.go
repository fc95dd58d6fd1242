package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/nomenaudio/core/internal/paths"
	"github.com/nomenaudio/core/internal/report"
	"github.com/nomenaudio/core/internal/settings"
	"github.com/nomenaudio/core/internal/store"
	"github.com/nomenaudio/core/internal/ucs"
	"github.com/nomenaudio/core/internal/util"
)

// resolvedDBPath returns the --db flag value, or the default under the OS
// config directory.
func resolvedDBPath() (string, error) {
	if p := viper.GetString("db"); p != "" {
		return p, nil
	}
	return paths.DBPath()
}

func resolvedSettingsPath() (string, error) {
	if p := viper.GetString("settings"); p != "" {
		return p, nil
	}
	return paths.SettingsPath()
}

// openRepository opens the state database and wraps it in a Repository
// against the real filesystem. Callers must close the returned Store.
func openRepository() (*store.Repository, *store.Store, error) {
	dbPath, err := resolvedDBPath()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	util.DebugLog("Opening database: %s", dbPath)

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	repo := store.NewRepository(st, store.OSFilesystem{})

	if engine, err := loadEngine(); err != nil {
		util.WarnLog("failed to load UCS workbook, cat_id validation disabled: %v", err)
	} else if engine != nil {
		repo.SetTaxonomy(engine)
	}

	return repo, st, nil
}

func openSettings() (*settings.Store, error) {
	path, err := resolvedSettingsPath()
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}
	return settings.Load(path)
}

// loadEngine loads the UCS taxonomy workbook if one is configured and
// present. A missing workbook is not an error at the CLI layer — commands
// that need suggestions degrade to showing raw record fields only.
func loadEngine() (*ucs.Engine, error) {
	path, err := paths.UCSWorkbookPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, nil
	}
	engine := ucs.New()
	if err := engine.Load(path); err != nil {
		return nil, fmt.Errorf("load UCS workbook %s: %w", path, err)
	}
	return engine, nil
}

func newEventLogger() *report.EventLogger {
	dir, err := paths.EventLogDir()
	if err != nil {
		util.WarnLog("failed to resolve event log directory: %v", err)
		return report.NullLogger()
	}

	level := report.LevelInfo
	if viper.GetBool("quiet") {
		level = report.LevelWarning
	} else if viper.GetBool("verbose") {
		level = report.LevelDebug
	}

	logger, err := report.NewEventLogger(dir, level)
	if err != nil {
		util.WarnLog("failed to create event logger: %v", err)
		return report.NullLogger()
	}
	if logger.Path() != "" {
		util.DebugLog("Event log: %s", logger.Path())
	}
	return logger
}
