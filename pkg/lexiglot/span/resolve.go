package span

import "sort"

// Resolve merges candidate spans from all matchers into one
// non-overlapping, start-ordered sequence.
//
// Candidates are sorted by (start ascending, length descending, confidence
// descending, template before lexeme) and accepted greedily: a span is kept
// when it starts at or after the end of the last accepted span. This is a
// deliberate greedy heuristic, not an optimal weighted interval schedule: a
// longer, lower-priority span starting slightly later can lose to an
// earlier shorter one.
//
// The input slice is not modified.
func Resolve(candidates []Span) []Span {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]Span, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Source == SourceTemplate && b.Source != SourceTemplate
	})

	accepted := make([]Span, 0, len(sorted))
	lastEnd := 0
	for _, s := range sorted {
		if len(accepted) == 0 || s.Start >= lastEnd {
			accepted = append(accepted, s)
			lastEnd = s.End
		}
	}

	// The greedy walk already emits start order; keep the guarantee
	// independent of the walk.
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}

// CoveredSet returns per-rune coverage flags for a text of n runes.
// Offsets outside [0, n) are ignored.
func CoveredSet(spans []Span, n int) []bool {
	covered := make([]bool, n)
	for _, s := range spans {
		for i := s.Start; i < s.End && i < n; i++ {
			if i >= 0 {
				covered[i] = true
			}
		}
	}
	return covered
}
