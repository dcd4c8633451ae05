package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareCanonical_BasicOrdering(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"a", "ab", -1},
		{"", "a", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareCanonical(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestCompareCanonical_UTF16NotRuneOrder(t *testing.T) {
	// U+10000 encodes as a surrogate pair (0xD800 0xDC00) and sorts
	// before U+FFFD in UTF-16 code unit order, the opposite of rune
	// (and UTF-8 byte) order.
	assert.Equal(t, -1, CompareCanonical("\U00010000", "�"))
	assert.Equal(t, 1, CompareCanonical("�", "\U00010000"))
	assert.Less(t, "�", "\U00010000") // confirms native order differs
}
