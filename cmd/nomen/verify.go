package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomenaudio/core/internal/store"
	"github.com/nomenaudio/core/internal/wav"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <id>",
	Short: "Re-read a saved file and report any field mismatches",
	Long: `Re-reads the file backing record id and compares every non-empty
mutable field and every custom field against what's currently on the record,
the same read-back check the atomic rewrite protocol performs as its own
final step.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := repo.Get(args[0])
	if err != nil {
		return err
	}

	patch := wav.Patch{Fields: map[string]string{}, CustomFields: rec.CustomFields}
	for _, name := range store.MutableFieldNames() {
		if v := rec.Field(name); v != "" {
			patch.Fields[name] = v
		}
	}

	result, err := wav.DetailedVerify(store.OSFilesystem{}, rec.Path, patch)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	if result.OK {
		fmt.Printf("%s: OK\n", rec.Path)
		return nil
	}

	fmt.Printf("%s: %d mismatch(es)\n", rec.Path, len(result.Mismatches))
	for _, m := range result.Mismatches {
		fmt.Printf("  %s: expected %q, got %q\n", m.Field, m.Expected, m.Actual)
	}
	return nil
}
