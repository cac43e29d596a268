package cleaner

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize collapses whitespace runs into single spaces, trims the result and
// capitalizes every standalone "i" token
func Normalize(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	return FixStandaloneI(collapsed)
}

// FixStandaloneI replaces each lowercase "i" that forms a whole word with "I".
// Neighbouring letters and digits in any script, and underscores, make it part of a word.
func FixStandaloneI(text string) string {
	if !strings.Contains(text, "i") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for offset := 0; ; {
		idx := strings.IndexByte(text[offset:], 'i')
		if idx < 0 {
			break
		}
		pos := offset + idx
		offset = pos + 1

		before, _ := utf8.DecodeLastRuneInString(text[:pos])
		after, _ := utf8.DecodeRuneInString(text[pos+1:])
		if isWordRune(before) || isWordRune(after) {
			continue
		}

		b.WriteString(text[last:pos])
		b.WriteByte('I')
		last = pos + 1
	}
	b.WriteString(text[last:])

	return b.String()
}

// isWordRune reports whether r continues a word. utf8.RuneError marks the text boundary.
func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}
