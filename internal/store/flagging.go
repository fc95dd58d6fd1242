package store

// flaggedThreshold is the top classification confidence below which an
// analyzed file is flagged for manual review.
const flaggedThreshold = 0.3

// shouldFlag reports whether a file with these classifier hits and this
// category should be flagged for review: it has been analyzed but either
// carries no category, or its top hit's confidence falls below
// flaggedThreshold. hits is expected top-ranked first.
func shouldFlag(hits []AnalysisHit, category string) bool {
	if len(hits) == 0 {
		return false
	}
	if category == "" {
		return true
	}
	return hits[0].Confidence < flaggedThreshold
}

// ApplyAutoFlag recomputes record id's review flag from freshly analyzed
// hits and its current category, setting or clearing Flagged to match.
func (r *Repository) ApplyAutoFlag(id string, hits []AnalysisHit) error {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	rec, err := r.Get(id)
	if err != nil {
		return err
	}
	flagged := shouldFlag(hits, rec.Category)
	if flagged == rec.Flagged {
		return nil
	}
	return r.setFlag([]string{id}, flagged)
}
