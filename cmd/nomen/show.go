package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomenaudio/core/internal/store"
	"github.com/nomenaudio/core/internal/suggest"
	"github.com/nomenaudio/core/internal/util"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one file's full record",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := repo.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:           %s\n", rec.ID)
	fmt.Printf("Path:         %s\n", rec.Path)
	fmt.Printf("Status:       %s\n", rec.Status)
	fmt.Printf("Flagged:      %v\n", rec.Flagged)
	fmt.Printf("Technical:    %d Hz, %d-bit, %d ch, %.2fs\n",
		rec.Technical.SampleRate, rec.Technical.BitDepth, rec.Technical.Channels, rec.Technical.DurationSecs)
	fmt.Println("Metadata:")
	for _, name := range []string{
		"category", "subcategory", "cat_id", "category_full", "fx_name",
		"description", "keywords", "creator_id", "source_id",
	} {
		if v := rec.Field(name); v != "" {
			changed := ""
			if rec.ChangedFields[name] {
				changed = " (modified)"
			}
			fmt.Printf("  %-14s %s%s\n", name+":", v, changed)
		}
	}
	if rec.SuggestedFilename != "" {
		fmt.Printf("Suggested filename: %s\n", rec.SuggestedFilename)
	}

	printSuggestions(repo, rec)
	return nil
}

// printSuggestions recomputes suggestions from any cached analysis and the
// UCS workbook, if both are available, and prints them with their
// provenance. Suggestions are never persisted, so this is the only place
// they're shown; it prints nothing if there's no cached analysis yet or no
// workbook configured.
func printSuggestions(repo *store.Repository, rec *store.FileRecord) {
	analysis, err := repo.GetAnalysis(rec.FileHash)
	if err != nil {
		util.WarnLog("failed to load cached analysis: %v", err)
		return
	}
	if analysis == nil {
		return
	}

	engine, err := loadEngine()
	if err != nil {
		util.WarnLog("failed to load UCS workbook: %v", err)
		return
	}
	if engine == nil {
		return
	}

	cfg, err := openSettings()
	if err != nil {
		util.WarnLog("failed to load settings: %v", err)
		return
	}

	result := suggest.Recompute(rec.Filename, analysis, cfg.Get(), engine)
	if result == nil {
		return
	}

	fmt.Println("Suggestions:")
	printField("category", result.Category)
	printField("subcategory", result.Subcategory)
	printField("cat_id", result.CatID)
	printField("category_full", result.CategoryFull)
	printField("keywords", result.Keywords)
	printField("description", result.Description)
	printField("fx_name", result.FXName)
	printField("filename", result.SuggestedFilename)
}

func printField(name string, f suggest.Field) {
	if f.Value == "" {
		return
	}
	if f.Confidence != nil {
		fmt.Printf("  %-14s %s  (%s, %.0f%%)\n", name+":", f.Value, f.Source, *f.Confidence*100)
		return
	}
	fmt.Printf("  %-14s %s  (%s)\n", name+":", f.Value, f.Source)
}
