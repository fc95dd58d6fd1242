// Package scan drives the File Repository's import with a terminal
// progress display. The worker pool and write serialization live in
// internal/store; this package only observes it.
package scan

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/nomenaudio/core/internal/report"
	"github.com/nomenaudio/core/internal/store"
	"github.com/nomenaudio/core/internal/util"
)

// Importer wraps a Repository import with progress reporting and event
// logging, gated on whether stdout is a terminal.
type Importer struct {
	repo   *store.Repository
	logger *report.EventLogger
}

// New builds an Importer. logger may be report.NullLogger().
func New(repo *store.Repository, logger *report.EventLogger) *Importer {
	return &Importer{repo: repo, logger: logger}
}

// Import runs repo.ImportWithProgress, showing an indeterminate progress
// bar while it runs (when attached to a terminal), then logs one event per
// imported, skipped, and pruned path.
func (im *Importer) Import(ctx context.Context, directory string, recursive bool) (*store.ImportResult, error) {
	util.InfoLog("Starting import of: %s", directory)

	var progress store.ImportProgress
	done := make(chan struct{})

	if util.IsTerminal(os.Stdout.Fd()) {
		go im.displayProgress(&progress, done)
	}

	result, err := im.repo.ImportWithProgress(ctx, directory, recursive, &progress)
	close(done)

	im.logResult(result)
	return result, err
}

func (im *Importer) displayProgress(progress *store.ImportProgress, done <-chan struct{}) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Importing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			found := progress.Found.Load()
			processed := progress.Processed.Load()
			imported := progress.Imported.Load()
			skipped := progress.Skipped.Load()
			if found > 0 {
				bar.Describe(fmt.Sprintf("Importing | %d found | %d imported | %d skipped", found, imported, skipped))
				bar.Set64(processed)
			}
		}
	}
}

func (im *Importer) logResult(result *store.ImportResult) {
	if result == nil {
		return
	}
	for _, rec := range result.Imported {
		im.logger.LogImport(rec.ID, rec.Path, rec.Technical.ByteSize)
	}
	for _, skipped := range result.Skipped {
		im.logger.LogSkip(skipped.Path, skipped.Reason)
		util.WarnLog("skipped %s: %s", skipped.Path, skipped.Reason)
	}
	for _, path := range result.Removed {
		im.logger.LogRemoveMissing("", path)
	}
	util.SuccessLog("imported %d, skipped %d, removed %d", len(result.Imported), len(result.Skipped), len(result.Removed))
}
