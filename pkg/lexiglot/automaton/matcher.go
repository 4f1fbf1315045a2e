package automaton

import (
	"unicode"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/normalize"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/span"
)

// Match scans text through the automaton and returns raw lexeme spans.
// Offsets are rune offsets into the original text; surfaces keep their
// original case. The text is lowercased rune-by-rune once, so offsets in
// the scanned form line up with the original.
func (a *Automaton) Match(text string) []span.Span {
	if text == "" || len(a.states) <= 1 {
		return nil
	}

	orig := []rune(text)
	var spans []span.Span

	cur := int32(0)
	for i, r := range orig {
		lr := unicode.ToLower(r)

		for cur != 0 {
			if _, ok := a.states[cur].next[lr]; ok {
				break
			}
			cur = a.states[cur].fail
		}
		if t, ok := a.states[cur].next[lr]; ok {
			cur = t
		}

		for _, out := range a.states[cur].out {
			end := i + 1
			start := end - out.patLen

			// Word-boundary rule for single-word variants: the characters
			// flanking the match must be non-word, so "cap" never matches
			// inside "capture".
			if out.single && !boundaryOK(orig, start, end) {
				continue
			}

			spans = append(spans, a.spanFor(orig, start, end, out))
		}
	}

	return spans
}

func boundaryOK(text []rune, start, end int) bool {
	if start > 0 && normalize.IsWord(text[start-1]) {
		return false
	}
	if end < len(text) && normalize.IsWord(text[end]) {
		return false
	}
	return true
}

func (a *Automaton) spanFor(orig []rune, start, end int, out output) span.Span {
	e := a.snap.Entry(int(out.entry))

	s := span.Span{
		Start:      start,
		End:        end,
		Surface:    string(orig[start:end]),
		Source:     span.SourceLexeme,
		Canonical:  e.Term,
		Confidence: e.Confidence,
		Meta: span.Meta{
			AgeRating:    e.Age,
			ContentFlags: e.ContentFlags,
		},
	}

	if out.filtered {
		s.Gloss = lexicon.FilteredGloss
		s.Meta.Filtered = true
		return s
	}

	if gloss, ok := e.DefaultGloss(); ok {
		s.Gloss = gloss
	} else if senses := e.SenseList(); len(senses) > 0 {
		s.Meta.Senses = senses
	} else {
		s.Meta.NeedsSense = true
	}
	return s
}
