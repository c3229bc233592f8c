package domain

// RetrievalFilter constrains search results by entity and period.
// An empty dimension means no constraint on that dimension.
type RetrievalFilter struct {
	Entities []string `json:"entities"`
	Periods  []string `json:"periods"`
}

// IsEmpty returns true if the filter constrains nothing.
func (f RetrievalFilter) IsEmpty() bool {
	return len(f.Entities) == 0 && len(f.Periods) == 0
}

// Matches returns true if the chunk satisfies every non-empty dimension.
func (f RetrievalFilter) Matches(c Chunk) bool {
	if len(f.Entities) > 0 && !contains(f.Entities, c.Entity) {
		return false
	}
	if len(f.Periods) > 0 && !contains(f.Periods, c.Period) {
		return false
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
