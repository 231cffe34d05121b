package canon

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const nbsp = "\u00A0"

var zeroWidth = map[rune]struct{}{
	'\u200B': {}, // zero-width space
	'\u200C': {}, // zero-width non-joiner
	'\u200D': {}, // zero-width joiner
	'\u2060': {}, // word joiner
	'\uFEFF': {}, // zero-width no-break space / BOM
}

var nbspToSpace = strings.NewReplacer(
	"\u00A0", " ",
	"\u2007", " ",
	"\u202F", " ",
)

// Normalize returns the canonical form of a single display label: NFC, no
// zero-width characters, no raw non-breaking spaces, single-space separated
// words and no surrounding whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(label string) string {
	s := norm.NFC.String(label)
	s = strings.Map(func(r rune) rune {
		if _, ok := zeroWidth[r]; ok {
			return -1
		}
		return r
	}, s)
	s = nbspToSpace.Replace(s)
	s = collapseSpaces(s)
	// Removing a zero-width char can leave a base letter next to a combining
	// mark, so recompose once more.
	return norm.NFC.String(s)
}

// NormalizeAll normalizes labels in order.
func NormalizeAll(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = Normalize(l)
	}
	return out
}

func collapseSpaces(s string) string {
	s = strings.TrimFunc(s, unicode.IsSpace)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
