package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nomenaudio/core/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or change the settings document",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current settings document",
	Args:  cobra.NoArgs,
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key>=<value> [key=value...]",
	Short: "Update one or more settings fields",
	Long: `Accepts creator_id, source_id, library_name, library_template, and
rename_on_save_default. Custom fields aren't settable this way since each
needs both a tag and a label; edit the settings file directly for those.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	store, err := openSettings()
	if err != nil {
		return err
	}
	cfg := store.Get()

	fmt.Printf("creator_id:             %s\n", cfg.CreatorID)
	fmt.Printf("source_id:              %s\n", cfg.SourceID)
	fmt.Printf("library_name:           %s\n", cfg.LibraryName)
	fmt.Printf("library_template:       %s\n", cfg.LibraryTemplate)
	fmt.Printf("rename_on_save_default: %v\n", cfg.RenameOnSaveDefault)
	for _, f := range cfg.CustomFields {
		fmt.Printf("custom field:           %s (%s)\n", f.Tag, f.Label)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	store, err := openSettings()
	if err != nil {
		return err
	}

	updates := make(map[string]string, len(args))
	for _, pair := range args {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid key=value pair: %q", pair)
		}
		updates[key] = value
	}

	err = store.Update(func(s *settings.AppSettings) {
		for key, value := range updates {
			switch key {
			case "creator_id":
				s.CreatorID = value
			case "source_id":
				s.SourceID = value
			case "library_name":
				s.LibraryName = value
			case "library_template":
				s.LibraryTemplate = value
			case "rename_on_save_default":
				if b, parseErr := strconv.ParseBool(value); parseErr == nil {
					s.RenameOnSaveDefault = b
				}
			}
		}
	})
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	fmt.Printf("Updated %d field(s)\n", len(updates))
	return nil
}
