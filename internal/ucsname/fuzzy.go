package ucsname

import (
	"sort"

	"github.com/nomenaudio/core/internal/ucs"
)

// FuzzyCandidate is one ranked guess at a filename's CatID.
type FuzzyCandidate struct {
	CatID string
	Score int
}

// TaxonomyLookup is the subset of ucs.Engine the codec depends on, kept as
// an interface so the codec is independently testable with a fake
// taxonomy. The codec imports internal/ucs only for the CatInfo type.
type TaxonomyLookup interface {
	SynonymHits(token string) map[string]struct{}
	CategoryPrefixHits(token string) map[string]struct{}
	SubcategoryPrefixHits(token string) map[string]struct{}
	GetCatIDInfo(catID string) (ucs.CatInfo, bool)
}

// Fuzzy tokenizes filename and scores every CatID that any token hits,
// returning the top N candidates ordered by score descending, ties broken
// lexicographically by CatID.
func Fuzzy(engine TaxonomyLookup, filename string, topN int) []FuzzyCandidate {
	tokens := Tokenize(stemOf(filename))
	if len(tokens) == 0 {
		return nil
	}

	hitCount := make(map[string]int)   // distinct tokens that hit this CatID
	categoryBonus := make(map[string]int) // +1 per token that hit via category-prefix

	for _, token := range tokens {
		hitters := make(map[string]bool)
		for id := range engine.SynonymHits(token) {
			hitters[id] = true
		}
		for id := range engine.CategoryPrefixHits(token) {
			hitters[id] = true
			categoryBonus[id]++
		}
		for id := range engine.SubcategoryPrefixHits(token) {
			hitters[id] = true
		}
		for id := range hitters {
			hitCount[id]++
		}
	}

	candidates := make([]FuzzyCandidate, 0, len(hitCount))
	for id, base := range hitCount {
		candidates = append(candidates, FuzzyCandidate{CatID: id, Score: base + categoryBonus[id]})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].CatID < candidates[j].CatID
	})

	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}
