// Package lexicon defines the immutable slang lexicon consumed by the
// detection engine: term entries with surface variants, single- or
// multi-sense glosses, confidence scores, and age ratings.
package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FilteredGloss replaces the real gloss of an age-filtered entry when the
// engine runs in annotate mode. It signals "content exists but suppressed"
// without leaking the meaning.
const FilteredGloss = "[filtered by age]"

// AgeRating is the content-maturity level of an entry. Levels are totally
// ordered: Everyone < Teen13 < Teen16 < Mature18. The zero value is
// "unspecified"; NewSnapshot resolves it to Everyone for entries, and the
// engine resolves it to Mature18 (unrestricted) for the configured ceiling.
type AgeRating uint8

const (
	Everyone AgeRating = 1 + iota
	Teen13
	Teen16
	Mature18
)

// Allowed reports whether content with this rating may surface under the
// given ceiling.
func (a AgeRating) Allowed(ceiling AgeRating) bool {
	return a <= ceiling
}

func (a AgeRating) String() string {
	switch a {
	case Everyone:
		return "everyone"
	case Teen13:
		return "teen_13"
	case Teen16:
		return "teen_16"
	case Mature18:
		return "mature_18"
	}
	return "unspecified"
}

// ParseAgeRating converts a config string into an AgeRating.
func ParseAgeRating(s string) (AgeRating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "everyone":
		return Everyone, nil
	case "teen_13", "teen13":
		return Teen13, nil
	case "teen_16", "teen16":
		return Teen16, nil
	case "mature_18", "mature18":
		return Mature18, nil
	}
	return 0, fmt.Errorf("unknown age rating %q", s)
}

// UnmarshalYAML accepts the string form used in lexicon files. An absent or
// empty value stays at the zero rating and is resolved by NewSnapshot.
func (a *AgeRating) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*a = 0
		return nil
	}
	parsed, err := ParseAgeRating(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// FilterMode selects how entries above the age ceiling are treated:
// dropped before they can become spans (skip) or surfaced with a masked
// gloss (annotate).
type FilterMode int

const (
	FilterSkip FilterMode = iota
	FilterAnnotate
)

func (m FilterMode) String() string {
	if m == FilterAnnotate {
		return "annotate"
	}
	return "skip"
}

// ParseFilterMode converts a config string into a FilterMode.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return FilterSkip, nil
	case "annotate":
		return FilterAnnotate, nil
	}
	return 0, fmt.Errorf("unknown filter mode %q", s)
}

// Sense is one meaning of a polysemous term.
type Sense struct {
	ID         string   `yaml:"id" json:"id"`
	Gloss      string   `yaml:"gloss" json:"gloss"`
	Confidence float64  `yaml:"confidence" json:"confidence"`
	Examples   []string `yaml:"examples,omitempty" json:"examples,omitempty"`
}

// Gloss is the meaning attached to an entry: either a single default
// meaning (Simple) or a list of senses (Senses). A nil Gloss marks an entry
// that is matchable but needs downstream sense resolution. Consumers
// type-switch on the two concrete forms.
type Gloss interface {
	isGloss()
}

// Simple is a single-sense gloss.
type Simple string

func (Simple) isGloss() {}

// Senses is the gloss of a polysemous term. When non-empty it takes the
// place of any single gloss.
type Senses []Sense

func (Senses) isGloss() {}

// Entry is one slang term with its surface variants and metadata.
// Entries are immutable for the lifetime of a built automaton.
type Entry struct {
	Term         string
	Variants     []string
	Gloss        Gloss
	Confidence   float64
	Age          AgeRating
	ContentFlags []string
	Tags         []string
}

// DefaultGloss returns the single-sense meaning, if the entry has one.
func (e Entry) DefaultGloss() (string, bool) {
	if g, ok := e.Gloss.(Simple); ok && g != "" {
		return string(g), true
	}
	return "", false
}

// SenseList returns the sense list of a polysemous entry, or nil.
func (e Entry) SenseList() []Sense {
	if s, ok := e.Gloss.(Senses); ok && len(s) > 0 {
		return s
	}
	return nil
}

// Snapshot is an immutable, ordered collection of entries. It is the only
// input the detection engine consumes; loading and refreshing entries is
// the lexicon-storage collaborator's job.
type Snapshot struct {
	entries []Entry
}

// NewSnapshot normalizes and freezes a list of entries:
// terms and variants are lowercased, the canonical term is guaranteed to be
// the first variant, duplicate variants are dropped, and an unspecified
// age rating resolves to Everyone.
func NewSnapshot(entries []Entry) *Snapshot {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		e.Term = strings.ToLower(strings.TrimSpace(e.Term))
		if e.Term == "" {
			continue
		}
		if e.Age == 0 {
			e.Age = Everyone
		}

		variants := make([]string, 0, len(e.Variants)+1)
		seen := map[string]bool{e.Term: true}
		variants = append(variants, e.Term)
		for _, v := range e.Variants {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			variants = append(variants, v)
		}
		e.Variants = variants

		out = append(out, e)
	}
	return &Snapshot{entries: out}
}

// Len returns the number of entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Entry returns the entry at index i.
func (s *Snapshot) Entry(i int) Entry { return s.entries[i] }

// Entries returns the ordered entry list. Callers must not mutate it.
func (s *Snapshot) Entries() []Entry { return s.entries }

// yamlEntry is the on-disk shape of an entry.
type yamlEntry struct {
	Term         string    `yaml:"term"`
	Variants     []string  `yaml:"variants"`
	Gloss        string    `yaml:"gloss"`
	Senses       []Sense   `yaml:"senses"`
	Confidence   float64   `yaml:"confidence"`
	Age          AgeRating `yaml:"age_rating"`
	ContentFlags []string  `yaml:"content_flags"`
	Tags         []string  `yaml:"tags"`
}

// LoadFromYAML loads a snapshot from a YAML lexicon file.
//
// Expected format:
//
//	terms:
//	  - term: bussin
//	    variants: [bussin, bussing]
//	    gloss: really good
//	    confidence: 0.9
//	    age_rating: everyone
//	  - term: slaps
//	    senses:
//	      - {id: music, gloss: "is excellent (of music)", confidence: 0.8}
//	      - {id: food, gloss: "tastes great", confidence: 0.6}
//
// When senses are present they take precedence over gloss.
func LoadFromYAML(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Terms []yamlEntry `yaml:"terms"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(file.Terms))
	for _, t := range file.Terms {
		entries = append(entries, Entry{
			Term:         t.Term,
			Variants:     t.Variants,
			Gloss:        glossFromYAML(t.Gloss, t.Senses),
			Confidence:   t.Confidence,
			Age:          t.Age,
			ContentFlags: t.ContentFlags,
			Tags:         t.Tags,
		})
	}
	return NewSnapshot(entries), nil
}

func glossFromYAML(gloss string, senses []Sense) Gloss {
	if len(senses) > 0 {
		return Senses(senses)
	}
	if gloss != "" {
		return Simple(gloss)
	}
	return nil
}
