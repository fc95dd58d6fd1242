package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nomenaudio/core/internal/classifier"
	"github.com/nomenaudio/core/internal/store"
	"github.com/nomenaudio/core/internal/util"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <id>",
	Short: "Run the classifier on a file and cache its hits",
	Long: `Invokes the configured Classifier against the file backing record id and
caches the result by content hash. No classifier is wired into this build —
pass one in by editing cmd/nomen/analyze.go's classifier construction, or use
'nomen show' on a record already carrying a cached analysis to see the
recomputed suggestions.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

// defaultClassifier is the Classifier nomen analyze drives. It starts out
// not ready; wiring a real model means replacing this with a concrete
// implementation and calling SetReady once it has loaded.
var defaultClassifier = classifier.NewReadinessGate(classifier.NullClassifier{})

func runAnalyze(cmd *cobra.Command, args []string) error {
	repo, st, err := openRepository()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := repo.Get(args[0])
	if err != nil {
		return err
	}

	logger := newEventLogger()
	defer logger.Close()

	start := time.Now()
	result, err := defaultClassifier.Analyze(context.Background(), rec.Path, classifier.AnalyzeOptions{TopK: 5})
	duration := time.Since(start)
	if err != nil {
		logger.LogAnalyze(rec.ID, "", duration, err)
		return fmt.Errorf("analyze: %w", err)
	}

	hits := make([]store.AnalysisHit, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = store.AnalysisHit{CatID: h.CatID, Confidence: h.Confidence}
	}
	analysis := store.AnalysisRecord{
		FileHash:     rec.FileHash,
		Hits:         hits,
		Caption:      result.Caption,
		ModelVersion: result.ModelVersion,
		AnalyzedAt:   time.Now(),
	}
	if err := repo.SaveAnalysis(analysis); err != nil {
		return fmt.Errorf("cache analysis: %w", err)
	}
	if err := repo.ApplyAutoFlag(rec.ID, hits); err != nil {
		util.WarnLog("failed to update review flag for %s: %v", rec.ID, err)
	}

	topID := ""
	if len(hits) > 0 {
		topID = hits[0].CatID
	}
	logger.LogAnalyze(rec.ID, topID, duration, nil)

	fmt.Printf("Cached %d hit(s) for %s. Run 'nomen show %s' to see recomputed suggestions.\n", len(hits), rec.Path, rec.ID)
	return nil
}
