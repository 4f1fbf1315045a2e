// Package lexiglot is the slang detection and normalization engine: it
// scans free-form text against a curated lexicon and emits a single
// non-overlapping, ordered span sequence of detected slang, ready for a
// downstream translation stage to ground its output on.
package lexiglot

import (
	"sort"
	"sync/atomic"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/automaton"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/fallback"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/span"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/templates"
)

// Options configures an Engine.
type Options struct {
	// Snapshot is the initial lexicon. May be nil; SetSnapshot installs
	// one later.
	Snapshot *lexicon.Snapshot

	// Templates overrides the built-in compositional patterns. Nil means
	// templates.Builtin().
	Templates []templates.Template

	// MaxRating is the age ceiling. The zero value means Mature18
	// (unrestricted).
	MaxRating lexicon.AgeRating

	// FilterMode selects drop-vs-mask handling for entries above the
	// ceiling. The zero value is skip.
	FilterMode lexicon.FilterMode

	// LowConfidenceThreshold is exposed to consumers via the engine
	// accessor; the engine itself does not interpret it.
	LowConfidenceThreshold float64
}

// bundle is everything derived from one snapshot. It is immutable; a
// lexicon change builds a fresh bundle and swaps the pointer, so in-flight
// detections keep a consistent view.
type bundle struct {
	snap  *lexicon.Snapshot
	auto  *automaton.Automaton
	index *fallback.VariantIndex
}

// Engine runs the detection pipeline: lexeme and template matching,
// overlap resolution, then variant fallback over uncovered regions.
// Detect is synchronous, performs no I/O, and is safe for concurrent use.
type Engine struct {
	tmpls     []templates.Template
	ceiling   lexicon.AgeRating
	mode      lexicon.FilterMode
	threshold float64

	bundle atomic.Pointer[bundle]
}

// New creates an engine and, when a snapshot is given, builds its matcher
// state.
func New(opts Options) *Engine {
	tmpls := opts.Templates
	if tmpls == nil {
		tmpls = templates.Builtin()
	}
	ceiling := opts.MaxRating
	if ceiling == 0 {
		ceiling = lexicon.Mature18
	}

	e := &Engine{
		tmpls:     tmpls,
		ceiling:   ceiling,
		mode:      opts.FilterMode,
		threshold: opts.LowConfidenceThreshold,
	}
	if opts.Snapshot != nil {
		e.SetSnapshot(opts.Snapshot)
	}
	return e
}

// SetSnapshot rebuilds the automaton and variant index from a new snapshot
// and swaps them in atomically. Detections already running keep the old
// bundle.
func (e *Engine) SetSnapshot(snap *lexicon.Snapshot) {
	if snap == nil {
		return
	}
	e.bundle.Store(&bundle{
		snap:  snap,
		auto:  automaton.Build(snap, e.ceiling, e.mode),
		index: fallback.BuildIndex(snap),
	})
}

// Snapshot returns the currently installed lexicon, or nil.
func (e *Engine) Snapshot() *lexicon.Snapshot {
	if b := e.bundle.Load(); b != nil {
		return b.snap
	}
	return nil
}

// LowConfidenceThreshold returns the pass-through threshold for the
// downstream consumer.
func (e *Engine) LowConfidenceThreshold() float64 { return e.threshold }

// Detect scans text and returns the final non-overlapping span sequence,
// sorted by start offset. Empty text, or text with no matches, yields an
// empty result; neither is an error.
func (e *Engine) Detect(text string) []span.Span {
	b := e.bundle.Load()
	if b == nil || text == "" {
		return nil
	}

	candidates := b.auto.Match(text)
	candidates = append(candidates, templates.Match(text, e.tmpls)...)

	resolved := span.Resolve(candidates)

	gaps := b.index.FillGaps(text, resolved, e.ceiling, e.mode)
	if len(gaps) > 0 {
		resolved = append(resolved, gaps...)
		sort.SliceStable(resolved, func(i, j int) bool {
			return resolved[i].Start < resolved[j].Start
		})
	}

	return resolved
}
