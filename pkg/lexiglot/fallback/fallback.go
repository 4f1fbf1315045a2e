// Package fallback performs the secondary matching pass: text regions
// left uncovered by overlap resolution are tokenized, normalized, and
// looked up in an index of normalized lexicon variants. Fallback hits are
// weaker evidence than direct automaton hits and carry a confidence
// penalty plus provenance metadata.
package fallback

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/normalize"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/span"
)

// confidencePenalty discounts fallback matches relative to automaton hits.
const confidencePenalty = 0.95

// tokenRE captures words, #hashtags, and emoji in a single pass.
var tokenRE = regexp.MustCompile(`#[\p{L}\p{N}_]+|[\p{L}\p{N}_']+|[\x{1F300}-\x{1FAFF}\x{2600}-\x{27BF}\x{2B00}-\x{2BFF}]`)

type candidate struct {
	entry      int32
	variant    string
	confidence float64
}

// VariantIndex maps normalized variant forms to lexicon candidates, best
// confidence first. It is derived once from a snapshot and read-only
// afterward.
type VariantIndex struct {
	byNorm map[string][]candidate
	snap   *lexicon.Snapshot
}

// BuildIndex normalizes every (entry, variant) pair in the snapshot and
// indexes it for fallback lookup.
func BuildIndex(snap *lexicon.Snapshot) *VariantIndex {
	idx := &VariantIndex{
		byNorm: make(map[string][]candidate),
		snap:   snap,
	}
	for i, e := range snap.Entries() {
		for _, v := range e.Variants {
			n := normalize.Normalize(v)
			if n == "" {
				continue
			}
			idx.byNorm[n] = append(idx.byNorm[n], candidate{
				entry:      int32(i),
				variant:    v,
				confidence: e.Confidence,
			})
		}
	}
	for _, cands := range idx.byNorm {
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].confidence > cands[j].confidence
		})
	}
	return idx
}

// Len returns the number of distinct normalized forms.
func (idx *VariantIndex) Len() int { return len(idx.byNorm) }

// FillGaps emits low-confidence spans for uncovered tokens whose
// normalized form is known to the lexicon. Age filtering applies exactly
// as at automaton build time: skip drops the candidate, annotate masks it.
func (idx *VariantIndex) FillGaps(text string, accepted []span.Span, ceiling lexicon.AgeRating, mode lexicon.FilterMode) []span.Span {
	if text == "" {
		return nil
	}
	if ceiling == 0 {
		ceiling = lexicon.Mature18
	}

	orig := []rune(text)
	covered := span.CoveredSet(accepted, len(orig))
	byteToRune := offsetTable(text)

	var spans []span.Span
	for _, m := range tokenRE.FindAllStringIndex(text, -1) {
		start, end := byteToRune[m[0]], byteToRune[m[1]]
		if anyCovered(covered, start, end) {
			continue
		}

		token := text[m[0]:m[1]]
		norm, via := normalizeToken(token)
		cands, ok := idx.byNorm[norm]
		if !ok || len(cands) == 0 {
			continue
		}

		best := cands[0]
		e := idx.snap.Entry(int(best.entry))
		filtered := !e.Age.Allowed(ceiling)
		if filtered && mode == lexicon.FilterSkip {
			continue
		}

		s := span.Span{
			Start:      start,
			End:        end,
			Surface:    token,
			Source:     span.SourceLexeme,
			Canonical:  e.Term,
			Confidence: e.Confidence * confidencePenalty,
			Meta: span.Meta{
				AgeRating:    e.Age,
				ContentFlags: e.ContentFlags,
				MatchedVia:   via,
			},
		}

		if filtered {
			s.Gloss = lexicon.FilteredGloss
			s.Meta.Filtered = true
		} else if gloss, ok := e.DefaultGloss(); ok {
			s.Gloss = gloss
		} else if senses := e.SenseList(); len(senses) > 0 {
			s.Meta.Senses = senses
		} else {
			s.Meta.NeedsSense = true
		}

		spans = append(spans, s)
	}
	return spans
}

// normalizeToken picks the normalization route and its provenance tag:
// hashtags expand first, plain tokens record whether normalization
// actually changed anything.
func normalizeToken(token string) (norm, via string) {
	if strings.HasPrefix(token, "#") {
		return normalize.Normalize(normalize.SplitHashtag(token)), "hashtag"
	}
	norm = normalize.Normalize(token)
	if norm == strings.ToLower(token) {
		return norm, "norm_same"
	}
	return norm, "norm"
}

func anyCovered(covered []bool, start, end int) bool {
	for i := start; i < end && i < len(covered); i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

func offsetTable(s string) []int {
	table := make([]int, len(s)+1)
	ri := 0
	for bi := range s {
		table[bi] = ri
		ri++
	}
	table[len(s)] = ri
	return table
}
