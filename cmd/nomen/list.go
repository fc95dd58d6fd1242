package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nomenaudio/core/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked files",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("status", "", "filter by status: unmodified, modified, saved")
	listCmd.Flags().String("category", "", "filter by UCS category")
	listCmd.Flags().String("search", "", "case-insensitive text search across filename/fx_name/description/keywords/category/subcategory")
}

func runList(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("status")
	category, _ := cmd.Flags().GetString("category")
	search, _ := cmd.Flags().GetString("search")

	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := repo.List(store.ListFilters{
		Status:   store.Status(status),
		Category: category,
		Text:     search,
	})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No files tracked.")
		return nil
	}

	for _, rec := range records {
		flag := " "
		if rec.Flagged {
			flag = "!"
		}
		fmt.Printf("%s %-8s %-10s %-8s %s\n", flag, shortID(rec.ID), rec.Status, humanize.Bytes(uint64(rec.Technical.ByteSize)), rec.Path)
	}
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
