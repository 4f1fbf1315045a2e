// Package normalize provides the pure text-normalization pipeline used
// when building the fallback variant index and when matching uncovered
// tokens: unicode folding, leet-speak substitution, repeated-character
// collapsing, camelCase/hashtag splitting, and emoji aliasing.
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// foldPool hands out fresh transformer chains; transformers are stateful
// and cannot be shared across goroutines.
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Cf)), // strip ZWJ/ZWNJ/FEFF
			width.Fold,                         // fullwidth forms to ASCII
		)
	},
}

// leet maps the fixed leet-speak alphabet back to letters.
var leet = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'$': 's',
	'@': 'a',
	'!': 'i',
}

// emojiAliases maps emoji tokens to their lexicon alias forms.
var emojiAliases = map[string]string{
	"\U0001F480": "skull emoji",         // 💀
	"\U0001F525": "fire emoji",          // 🔥
	"\U0001F9E2": "cap emoji",           // 🧢
	"\U0001F62D": "loudly crying emoji", // 😭
	"\U0001F485": "nail polish emoji",   // 💅
	"\U0001F410": "goat emoji",          // 🐐
	"✨":     "sparkles emoji",      // ✨
	"\U0001F440": "eyes emoji",          // 👀
	"\U0001F5FF": "moai emoji",          // 🗿
	"\U0001F9CA": "ice emoji",           // 🧊
}

// Fold lowercases and canonicalizes a string: NFKC, unicode case folding,
// format-character stripping, and width folding.
func Fold(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	tr := foldPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	foldPool.Put(tr)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// LeetFold substitutes the fixed leet alphabet (0->o, 1->i, 3->e, 4->a,
// 5->s, 7->t, 8->b, $->s, @->a, !->i).
func LeetFold(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if sub, ok := leet[r]; ok {
			b.WriteRune(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CollapseRepeats shrinks runs of three or more identical consecutive
// runes down to two, so "coooool" and "cool" normalize alike while
// legitimate doubles ("soon") survive.
func CollapseRepeats(s string) string {
	if len(s) < 3 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run <= 2 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SplitHashtag strips a leading '#', splits on camelCase boundaries and
// '_'/'-' separators, lowercases, and joins with single spaces.
// "#NoCapFrFr" becomes "no cap fr fr".
func SplitHashtag(tag string) string {
	tag = strings.TrimPrefix(tag, "#")
	if tag == "" {
		return ""
	}

	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}

	var prev rune
	for i, r := range tag {
		switch {
		case r == '_' || r == '-':
			flush()
			continue
		case i > 0 && unicode.IsUpper(r) && !unicode.IsUpper(prev):
			flush()
		}
		cur.WriteRune(unicode.ToLower(r))
		prev = r
	}
	flush()

	return strings.Join(words, " ")
}

// EmojiAlias looks up the alias form of an emoji token.
func EmojiAlias(token string) (string, bool) {
	alias, ok := emojiAliases[token]
	return alias, ok
}

// IsWord reports whether r is a word character (letter, digit, or
// underscore) for the purpose of the word-boundary rule.
func IsWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Normalize maps a raw token to its canonical lookup form. Emoji aliases
// take precedence; everything else is folded, leet-substituted, then
// repeat-collapsed. The order matters: aliasing must win so that an emoji
// never goes through leet folding.
func Normalize(token string) string {
	if alias, ok := EmojiAlias(token); ok {
		return alias
	}
	return CollapseRepeats(LeetFold(Fold(token)))
}
