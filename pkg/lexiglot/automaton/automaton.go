// Package automaton implements the Aho-Corasick multi-pattern matcher
// over lexicon variants: trie construction, breadth-first failure-link
// propagation, output-set closure, and linear-time scanning with the
// word-boundary rule.
package automaton

import (
	"strings"
	"unicode/utf8"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
)

// output is one pattern terminating (directly or via failure closure) at a
// state.
type output struct {
	entry    int32 // index into the snapshot
	variant  string
	patLen   int // rune length of the inserted pattern
	single   bool
	filtered bool
}

// state is one arena slot: forward transitions, a backward failure link,
// and the closed output set. Integer ids keep failure links (backward) and
// transitions (forward) free of ownership cycles.
type state struct {
	next map[rune]int32
	fail int32
	out  []output
}

// Automaton is the built matcher. It is immutable after Build and safe for
// concurrent use: scanning keeps all per-call state on the caller's stack.
// A lexicon change requires a full rebuild and an atomic reference swap,
// never an in-place patch.
type Automaton struct {
	states []state
	snap   *lexicon.Snapshot
}

// Build constructs an automaton from a snapshot under the given age
// ceiling and filter mode. Every (entry, variant) pair is lowercased and
// inserted; entries above the ceiling are dropped entirely in skip mode,
// or inserted with a masked payload in annotate mode so a match can signal
// suppressed content without leaking its gloss.
//
// Build is idempotent for equal inputs and runs in O(total variant length).
func Build(snap *lexicon.Snapshot, ceiling lexicon.AgeRating, mode lexicon.FilterMode) *Automaton {
	if ceiling == 0 {
		ceiling = lexicon.Mature18
	}

	a := &Automaton{
		states: []state{{next: make(map[rune]int32)}},
		snap:   snap,
	}

	for i, e := range snap.Entries() {
		filtered := !e.Age.Allowed(ceiling)
		if filtered && mode == lexicon.FilterSkip {
			continue
		}
		for _, v := range e.Variants {
			v = strings.ToLower(v)
			if v == "" {
				continue
			}
			a.insert(v, output{
				entry:    int32(i),
				variant:  v,
				patLen:   utf8.RuneCountInString(v),
				single:   !strings.Contains(v, " "),
				filtered: filtered,
			})
		}
	}

	a.link()
	return a
}

// Snapshot returns the lexicon this automaton was built from.
func (a *Automaton) Snapshot() *lexicon.Snapshot { return a.snap }

// Len returns the number of states.
func (a *Automaton) Len() int { return len(a.states) }

func (a *Automaton) insert(pattern string, out output) {
	cur := int32(0)
	for _, r := range pattern {
		next, ok := a.states[cur].next[r]
		if !ok {
			next = int32(len(a.states))
			a.states = append(a.states, state{next: make(map[rune]int32)})
			a.states[cur].next[r] = next
		}
		cur = next
	}
	a.states[cur].out = append(a.states[cur].out, out)
}

// link assigns failure links breadth-first from depth 1 and closes output
// sets by unioning each state's outputs with its failure target's.
func (a *Automaton) link() {
	queue := make([]int32, 0, len(a.states))

	for _, child := range a.states[0].next {
		a.states[child].fail = 0
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for r, v := range a.states[u].next {
			f := a.states[u].fail
			for f != 0 {
				if t, ok := a.states[f].next[r]; ok {
					f = t
					break
				}
				f = a.states[f].fail
			}
			if f == 0 {
				if t, ok := a.states[0].next[r]; ok && t != v {
					f = t
				}
			}
			a.states[v].fail = f
			a.states[v].out = append(a.states[v].out, a.states[f].out...)
			queue = append(queue, v)
		}
	}
}
