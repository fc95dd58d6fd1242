package main

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/nomenaudio/core/internal/scan"
	"github.com/nomenaudio/core/internal/util"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Watch a directory and auto-import new or changed WAV files",
	Long: `Watches directory for filesystem events and re-runs an import whenever
a .wav file is created or written, coalescing bursts of events (e.g. a
multi-file copy) into a single import with a debounce window.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before an import runs")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	directory := args[0]

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	}); err != nil {
		return err
	}

	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	logger := newEventLogger()
	defer logger.Close()

	importer := scan.New(repo, logger)

	util.InfoLog("Watching %s for changes", directory)

	var timer *time.Timer
	trigger := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevantEvent(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			util.WarnLog("watch error: %v", err)

		case <-trigger:
			if _, err := importer.Import(context.Background(), directory, true); err != nil {
				util.WarnLog("auto-import failed: %v", err)
			}
		}
	}
}

func isRelevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), ".wav")
}
