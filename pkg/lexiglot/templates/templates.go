// Package templates matches compositional slang patterns that cannot be
// enumerated as fixed lexicon strings, such as "X-core" aesthetics or
// "<adj> af" intensifiers. Templates run independently of the automaton,
// in a fixed order, and a failure inside one render never aborts the rest.
package templates

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/span"
)

// Template is one compiled compositional pattern. Render turns the
// submatch groups (groups[0] is the whole match) into a gloss; returning
// an error rejects that single match.
type Template struct {
	ID         string
	Pattern    *regexp.Regexp
	Render     func(groups []string) (string, error)
	Confidence float64
}

// coreStoplist lists fixed English words that end in "core" and must never
// be read as the productive "-core" aesthetic suffix.
var coreStoplist = map[string]bool{
	"hardcore": true,
	"softcore": true,
	"encore":   true,
	"score":    true,
}

// Builtin returns the built-in templates in their fixed matching order.
func Builtin() []Template {
	return []Template{
		{
			ID:         "tpl_af",
			Pattern:    regexp.MustCompile(`\b([a-z][a-z0-9']*) af\b`),
			Confidence: 0.8,
			Render: func(groups []string) (string, error) {
				return "very " + groups[1], nil
			},
		},
		{
			ID:         "tpl_core",
			Pattern:    regexp.MustCompile(`\b([a-z][a-z0-9]+)-?core\b`),
			Confidence: 0.75,
			Render: func(groups []string) (string, error) {
				if coreStoplist[groups[0]] {
					return "", fmt.Errorf("fixed word %q, not a -core form", groups[0])
				}
				return groups[1] + " aesthetic", nil
			},
		},
		{
			ID:         "tpl_pilled",
			Pattern:    regexp.MustCompile(`\b([a-z][a-z0-9]+)-?pilled\b`),
			Confidence: 0.7,
			Render: func(groups []string) (string, error) {
				return "strongly influenced by " + groups[1], nil
			},
		},
		{
			ID:         "tpl_maxxing",
			Pattern:    regexp.MustCompile(`\b([a-z][a-z0-9]+)maxx(?:ing|ed)?\b`),
			Confidence: 0.7,
			Render: func(groups []string) (string, error) {
				return "maximizing " + groups[1], nil
			},
		},
		{
			ID:         "tpl_era",
			Pattern:    regexp.MustCompile(`\bin (?:my|your|his|her|their|our) ([a-z][a-z0-9]+(?: [a-z][a-z0-9]+)?) era\b`),
			Confidence: 0.7,
			Render: func(groups []string) (string, error) {
				return "going through a " + groups[1] + " phase", nil
			},
		},
	}
}

// Match runs every template over the lowercased text and returns raw
// template spans with rune offsets into the original text.
func Match(text string, tmpls []Template) []span.Span {
	if text == "" || len(tmpls) == 0 {
		return nil
	}

	orig := []rune(text)
	lower := make([]rune, len(orig))
	for i, r := range orig {
		lower[i] = unicode.ToLower(r)
	}
	lowerStr := string(lower)
	byteToRune := offsetTable(lowerStr)

	var spans []span.Span
	for _, t := range tmpls {
		for _, m := range t.Pattern.FindAllStringSubmatchIndex(lowerStr, -1) {
			groups := submatches(lowerStr, m)
			gloss, err := renderSafe(t, groups)
			if err != nil {
				continue
			}

			start, end := byteToRune[m[0]], byteToRune[m[1]]
			s := span.Span{
				Start:      start,
				End:        end,
				Surface:    string(orig[start:end]),
				Source:     span.SourceTemplate,
				Canonical:  t.ID,
				Gloss:      gloss,
				Confidence: t.Confidence,
			}
			if len(groups) > 1 {
				s.Meta.Base = groups[1]
			}
			spans = append(spans, s)
		}
	}
	return spans
}

// renderSafe isolates a panicking render to the single match it was
// handling.
func renderSafe(t Template, groups []string) (gloss string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("template %s: render panic: %v", t.ID, r)
		}
	}()
	return t.Render(groups)
}

func submatches(s string, m []int) []string {
	groups := make([]string, len(m)/2)
	for i := range groups {
		lo, hi := m[2*i], m[2*i+1]
		if lo >= 0 {
			groups[i] = s[lo:hi]
		}
	}
	return groups
}

// offsetTable maps every byte offset of s (inclusive of len(s)) to its
// rune offset, so regexp byte indices can address the original rune slice.
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
