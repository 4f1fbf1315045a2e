// Package span defines the detection output type and the overlap
// resolution algorithm that turns raw candidate matches into a single
// non-overlapping, start-ordered sequence.
package span

import "github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"

// Source identifies which matcher produced a span.
type Source string

const (
	// SourceLexeme marks spans produced by the automaton or the variant
	// fallback matcher (fallback provenance lives in Meta.MatchedVia).
	SourceLexeme Source = "lexeme"

	// SourceTemplate marks spans produced by a compositional regex
	// template.
	SourceTemplate Source = "template"
)

// Meta carries span metadata for the downstream translation consumer.
type Meta struct {
	// NeedsSense is set when the matched entry has neither a gloss nor
	// senses; interpretation is deferred to the consumer.
	NeedsSense bool `json:"needs_sense,omitempty"`

	// Senses is the sense list of a polysemous entry. When non-empty the
	// span's Gloss is empty.
	Senses []lexicon.Sense `json:"senses,omitempty"`

	AgeRating    lexicon.AgeRating `json:"age_rating,omitempty"`
	ContentFlags []string          `json:"content_flags,omitempty"`

	// Filtered is set on age-filtered spans surfaced in annotate mode;
	// their Gloss is always the masked placeholder.
	Filtered bool `json:"filtered,omitempty"`

	// Base is the captured base group of a template match.
	Base string `json:"base,omitempty"`

	// MatchedVia records fallback provenance: "hashtag", "norm", or
	// "norm_same".
	MatchedVia string `json:"matched_via,omitempty"`
}

// Span is one detected slang occurrence. Start and End are rune offsets
// into the original text, half-open, with 0 <= Start < End <= rune length.
// Spans are never mutated after creation.
type Span struct {
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Surface    string  `json:"surface"`
	Source     Source  `json:"source"`
	Canonical  string  `json:"canonical"`
	Gloss      string  `json:"gloss,omitempty"`
	Confidence float64 `json:"confidence"`
	Meta       Meta    `json:"meta"`
}

// Len returns the span length in runes.
func (s Span) Len() int { return s.End - s.Start }

// Overlaps reports whether two spans share at least one offset.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// InBounds reports whether the span satisfies the bounds invariant for a
// text of n runes. A violation is a programming defect, asserted in tests
// rather than handled at runtime.
func (s Span) InBounds(n int) bool {
	return 0 <= s.Start && s.Start < s.End && s.End <= n
}
