package automaton

import (
	"reflect"
	"testing"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/span"
)

func snapshot(entries ...lexicon.Entry) *lexicon.Snapshot {
	return lexicon.NewSnapshot(entries)
}

func TestBuildEmpty(t *testing.T) {
	a := Build(snapshot(), lexicon.Mature18, lexicon.FilterSkip)
	if got := a.Match("anything at all"); got != nil {
		t.Errorf("empty automaton matched %v", got)
	}
}

func TestMatchBasic(t *testing.T) {
	snap := snapshot(lexicon.Entry{
		Term:       "bussin",
		Gloss:      lexicon.Simple("really good"),
		Confidence: 0.9,
	})
	a := Build(snap, lexicon.Mature18, lexicon.FilterSkip)

	text := "this food is bussin fr"
	got := a.Match(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 span, got %d: %+v", len(got), got)
	}

	s := got[0]
	if s.Surface != "bussin" {
		t.Errorf("surface = %q, want %q", s.Surface, "bussin")
	}
	if string([]rune(text)[s.Start:s.End]) != s.Surface {
		t.Errorf("offsets [%d:%d) do not address the surface", s.Start, s.End)
	}
	if s.Source != span.SourceLexeme {
		t.Errorf("source = %v, want lexeme", s.Source)
	}
	if s.Canonical != "bussin" || s.Gloss != "really good" || s.Confidence != 0.9 {
		t.Errorf("payload mismatch: %+v", s)
	}
}

func TestMatchPreservesOriginalCase(t *testing.T) {
	snap := snapshot(lexicon.Entry{Term: "bussin", Gloss: lexicon.Simple("really good"), Confidence: 0.9})
	a := Build(snap, lexicon.Mature18, lexicon.FilterSkip)

	got := a.Match("BUSSIN fr")
	if len(got) != 1 || got[0].Surface != "BUSSIN" {
		t.Errorf("expected original-case surface BUSSIN, got %+v", got)
	}
}

func TestWordBoundaryRule(t *testing.T) {
	snap := snapshot(lexicon.Entry{Term: "cap", Gloss: lexicon.Simple("a lie"), Confidence: 0.8})
	a := Build(snap, lexicon.Mature18, lexicon.FilterSkip)

	if got := a.Match("He went on a trip by capture"); len(got) != 0 {
		t.Errorf("cap must not match inside capture, got %+v", got)
	}

	got := a.Match("no cap")
	if len(got) != 1 {
		t.Fatalf("cap should match standalone, got %+v", got)
	}
	if got[0].Start != 3 || got[0].End != 6 {
		t.Errorf("cap span = [%d:%d), want [3:6)", got[0].Start, got[0].End)
	}

	if got := a.Match("cap."); len(got) != 1 {
		t.Errorf("punctuation should count as a boundary, got %+v", got)
	}
}

func TestMultiWordVariant(t *testing.T) {
	snap := snapshot(lexicon.Entry{
		Term:       "no cap",
		Gloss:      lexicon.Simple("no lie"),
		Confidence: 0.85,
	})
	a := Build(snap, lexicon.Mature18, lexicon.FilterSkip)

	got := a.Match("fr no cap bro")
	if len(got) != 1 {
		t.Fatalf("expected 1 span, got %+v", got)
	}
	if got[0].Start != 3 || got[0].End != 9 || got[0].Surface != "no cap" {
		t.Errorf("no cap span = %+v", got[0])
	}
}

func TestOverlappingPatterns(t *testing.T) {
	// Raw matching emits every candidate; overlap resolution is a later
	// stage.
	snap := snapshot(
		lexicon.Entry{Term: "no cap", Gloss: lexicon.Simple("no lie"), Confidence: 0.85},
		lexicon.Entry{Term: "cap", Gloss: lexicon.Simple("a lie"), Confidence: 0.8},
	)
	a := Build(snap, lexicon.Mature18, lexicon.FilterSkip)

	got := a.Match("no cap")
	if len(got) != 2 {
		t.Fatalf("expected both raw candidates, got %+v", got)
	}
}

func TestAgeFilterSkip(t *testing.T) {
	snap := snapshot(lexicon.Entry{
		Term:       "sussy",
		Gloss:      lexicon.Simple("suspicious"),
		Confidence: 0.7,
		Age:        lexicon.Mature18,
	})
	a := Build(snap, lexicon.Teen13, lexicon.FilterSkip)

	if got := a.Match("that is sussy"); len(got) != 0 {
		t.Errorf("skip mode should drop filtered entries, got %+v", got)
	}
}

func TestAgeFilterAnnotate(t *testing.T) {
	snap := snapshot(lexicon.Entry{
		Term:       "sussy",
		Gloss:      lexicon.Simple("suspicious"),
		Confidence: 0.7,
		Age:        lexicon.Mature18,
	})
	a := Build(snap, lexicon.Teen13, lexicon.FilterAnnotate)

	got := a.Match("that is sussy")
	if len(got) != 1 {
		t.Fatalf("annotate mode should surface the span, got %+v", got)
	}
	s := got[0]
	if s.Gloss != lexicon.FilteredGloss {
		t.Errorf("gloss = %q, want masked placeholder", s.Gloss)
	}
	if !s.Meta.Filtered {
		t.Error("Meta.Filtered should be set")
	}
	if len(s.Meta.Senses) != 0 {
		t.Error("masked span must not carry senses")
	}
}

func TestNeedsSense(t *testing.T) {
	snap := snapshot(lexicon.Entry{Term: "mid", Confidence: 0.6})
	a := Build(snap, lexicon.Mature18, lexicon.FilterSkip)

	got := a.Match("that movie was mid")
	if len(got) != 1 {
		t.Fatalf("expected 1 span, got %+v", got)
	}
	if !got[0].Meta.NeedsSense || got[0].Gloss != "" {
		t.Errorf("entry without gloss should defer to consumer: %+v", got[0])
	}
}

func TestPolysemousSenses(t *testing.T) {
	snap := snapshot(lexicon.Entry{
		Term:       "slaps",
		Confidence: 0.8,
		Gloss: lexicon.Senses{
			{ID: "music", Gloss: "is excellent (of music)", Confidence: 0.8},
			{ID: "food", Gloss: "tastes great", Confidence: 0.6},
		},
	})
	a := Build(snap, lexicon.Mature18, lexicon.FilterSkip)

	got := a.Match("this track slaps")
	if len(got) != 1 {
		t.Fatalf("expected 1 span, got %+v", got)
	}
	if got[0].Gloss != "" {
		t.Errorf("polysemous span should carry no literal gloss, got %q", got[0].Gloss)
	}
	if len(got[0].Meta.Senses) != 2 {
		t.Errorf("senses = %v", got[0].Meta.Senses)
	}
}

func TestBuildIdempotent(t *testing.T) {
	snap := snapshot(
		lexicon.Entry{Term: "bussin", Gloss: lexicon.Simple("really good"), Confidence: 0.9},
		lexicon.Entry{Term: "no cap", Gloss: lexicon.Simple("no lie"), Confidence: 0.85},
	)

	a := Build(snap, lexicon.Mature18, lexicon.FilterSkip)
	b := Build(snap, lexicon.Mature18, lexicon.FilterSkip)
	if a.Len() != b.Len() {
		t.Fatalf("state counts differ: %d vs %d", a.Len(), b.Len())
	}

	text := "no cap this is bussin"
	if !reflect.DeepEqual(a.Match(text), b.Match(text)) {
		t.Error("identical builds should match identically")
	}
}

func TestFailureLinkMatches(t *testing.T) {
	// "she sheesh" forces the scanner into the "she" prefix twice; the
	// failure links must recover and still find the full pattern.
	snap := snapshot(lexicon.Entry{Term: "sheesh", Gloss: lexicon.Simple("wow"), Confidence: 0.7})
	a := Build(snap, lexicon.Mature18, lexicon.FilterSkip)

	got := a.Match("she sheesh")
	if len(got) != 1 || got[0].Start != 4 || got[0].End != 10 {
		t.Errorf("expected sheesh at [4:10), got %+v", got)
	}

	// Embedded in a longer word, the boundary rule rejects it.
	if got := a.Match("shesheesher"); len(got) != 0 {
		t.Errorf("boundary rule should reject embedded match, got %+v", got)
	}
}
