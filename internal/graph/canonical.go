package graph

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// canonicalString produces a canonical JSON string literal: the text is
// NFC normalized and only control characters, backslash, and quote are
// escaped. HTML characters (< > &) and U+2028/U+2029 pass through
// verbatim, unlike encoding/json's defaults.
func canonicalString(s string) string {
	normalized := norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(normalized) + 2)
	b.WriteByte('"')
	for _, r := range normalized {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				const hex = "0123456789abcdef"
				b.WriteString(`\u00`)
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xf])
			} else if r == utf8.RuneError {
				// Invalid UTF-8 byte; keep the replacement rune.
				b.WriteRune(r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// CompareCanonical compares strings by UTF-16 code units, the ordering
// canonical JSON requires for object keys. Go's native string comparison
// is UTF-8 byte order, which differs for characters outside the BMP.
func CompareCanonical(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := len(a16)
	if len(b16) < minLen {
		minLen = len(b16)
	}
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}
