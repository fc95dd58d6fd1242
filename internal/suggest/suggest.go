// Package suggest recomputes per-file suggestion structs on every read. A
// Result is a pure function of a cached AnalysisRecord, the current
// settings, and the UCS Engine — it is never persisted.
package suggest

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/nomenaudio/core/internal/settings"
	"github.com/nomenaudio/core/internal/store"
	"github.com/nomenaudio/core/internal/ucsname"
)

const (
	blendAlpha   = 10.0
	blendEpsilon = 1e-9
)

// Source tags where a suggested field's value came from.
type Source string

const (
	SourceClap      Source = "clap"
	SourceClapCap   Source = "clapcap"
	SourceDerived   Source = "derived"
	SourceGenerated Source = "generated"
)

// Field is one suggested value plus its provenance.
type Field struct {
	Value      string
	Source     Source
	Confidence *float64
}

// Result is the full set of suggestions recomputed for one file.
type Result struct {
	Category          Field
	Subcategory       Field
	CatID             Field
	CategoryFull      Field
	Keywords          Field
	SuggestedFilename Field
	Description       Field
	FXName            Field
}

// TaxonomyLookup is the subset of the UCS Engine the recomputer needs;
// identical in shape to ucsname.TaxonomyLookup so the same Engine value
// satisfies both without an adapter.
type TaxonomyLookup = ucsname.TaxonomyLookup

// Recompute blends cached classifier hits with a filename-derived fuzzy
// score, picks the top-ranked cat_id, and assembles a Result from its UCS
// record, current settings, and (if present) the cached caption. Returns
// nil if analysis has no hits to rank.
func Recompute(filename string, analysis *store.AnalysisRecord, cfg settings.AppSettings, engine TaxonomyLookup) *Result {
	if analysis == nil || len(analysis.Hits) == 0 {
		return nil
	}

	confidence := make(map[string]float64, len(analysis.Hits))
	for _, h := range analysis.Hits {
		confidence[h.CatID] = h.Confidence
	}

	fuzzy := normalizedFuzzyScores(engine, filename)

	candidates := make(map[string]struct{}, len(confidence)+len(fuzzy))
	for id := range confidence {
		candidates[id] = struct{}{}
	}
	for id := range fuzzy {
		candidates[id] = struct{}{}
	}
	if len(candidates) == 0 {
		return nil
	}

	topID, probs := rank(candidates, confidence, fuzzy)
	info, ok := engine.GetCatIDInfo(topID)
	if !ok {
		return nil
	}
	topConfidence := probs[topID]

	result := &Result{
		Category:     Field{Value: info.Category, Source: SourceClap, Confidence: &topConfidence},
		Subcategory:  Field{Value: info.Subcategory, Source: SourceClap, Confidence: &topConfidence},
		CatID:        Field{Value: info.CatID, Source: SourceClap, Confidence: &topConfidence},
		CategoryFull: Field{Value: info.CategoryFull(), Source: SourceClap, Confidence: &topConfidence},
		Keywords:     keywordsField(info.Synonyms),
	}

	fxName := ""
	result.SuggestedFilename = filenameField(info.CatID, fxName, cfg)

	if analysis.Caption != "" {
		result.Description = Field{Value: cleanCaption(analysis.Caption), Source: SourceClapCap}
		fxName = extractFXName(analysis.Caption)
		result.FXName = Field{Value: fxName, Source: SourceClapCap}
		result.SuggestedFilename = filenameField(info.CatID, fxName, cfg)
	}

	return result
}

// rank combines classifier confidence and fuzzy score per candidate cat_id
// into s_i = softmax(log(c_i+ε) + α·k_i), returning the top-ranked id
// (ties broken lexicographically) and the full softmax distribution.
func rank(candidates map[string]struct{}, confidence, fuzzy map[string]float64) (string, map[string]float64) {
	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	raw := make(map[string]float64, len(ids))
	for _, id := range ids {
		raw[id] = math.Log(confidence[id]+blendEpsilon) + blendAlpha*fuzzy[id]
	}

	maxRaw := raw[ids[0]]
	topID := ids[0]
	for _, id := range ids[1:] {
		if raw[id] > maxRaw {
			maxRaw = raw[id]
			topID = id
		}
	}

	var sum float64
	exp := make(map[string]float64, len(ids))
	for _, id := range ids {
		e := math.Exp(raw[id] - maxRaw)
		exp[id] = e
		sum += e
	}
	probs := make(map[string]float64, len(ids))
	for _, id := range ids {
		probs[id] = exp[id] / sum
	}
	return topID, probs
}

// normalizedFuzzyScores runs the §4.2 filename fuzzy matcher and scales
// its integer scores into [0,1] by the top score, giving the k_i term.
func normalizedFuzzyScores(engine TaxonomyLookup, filename string) map[string]float64 {
	candidates := ucsname.Fuzzy(engine, filename, 0)
	if len(candidates) == 0 {
		return nil
	}
	top := candidates[0].Score
	if top <= 0 {
		return nil
	}
	out := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		out[c.CatID] = float64(c.Score) / float64(top)
	}
	return out
}

func keywordsField(synonyms []string) Field {
	n := len(synonyms)
	if n > 10 {
		n = 10
	}
	return Field{Value: strings.Join(synonyms[:n], ", "), Source: SourceDerived}
}

func filenameField(catID, fxName string, cfg settings.AppSettings) Field {
	name := ucsname.Generate(
		ucsname.GenerateFields{CatID: catID, FXName: fxName},
		ucsname.Defaults{CreatorID: cfg.CreatorID, SourceID: cfg.SourceID},
	)
	return Field{Value: name, Source: SourceGenerated}
}

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// captionArticles are stripped before fx_name extraction.
var captionArticles = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true,
	"on": true, "at": true, "to": true, "is": true, "and": true,
}

const maxFXNameLen = 25

// extractFXName pulls a short noun-like phrase out of a caption: article-
// stripped, capitalized words, up to six of them, never exceeding 25
// characters — whichever limit is hit first wins.
func extractFXName(caption string) string {
	words := wordPattern.FindAllString(caption, -1)
	var selected []string
	for _, w := range words {
		if len(selected) >= 6 {
			break
		}
		if captionArticles[strings.ToLower(w)] {
			continue
		}
		candidate := append(append([]string{}, selected...), capitalize(w))
		if len(strings.Join(candidate, " ")) > maxFXNameLen {
			break
		}
		selected = candidate
	}
	return strings.Join(selected, " ")
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

// cleanCaption capitalizes the first letter, strips a trailing period, and
// collapses internal whitespace.
func cleanCaption(caption string) string {
	s := strings.Join(strings.Fields(caption), " ")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
