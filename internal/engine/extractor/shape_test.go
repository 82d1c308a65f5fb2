package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapePredicate_IsAcronym(t *testing.T) {
	pred := NewShapePredicate(2, 8, []string{"OK", "VS", "JAN"})

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"plain acronym", "NASA", true},
		{"two letters", "UN", true},
		{"internal digit", "B2B", true},
		{"internal hyphen", "R-D", true},
		{"eight letters", "ABCDEFGH", true},

		{"single letter", "A", false},
		{"nine letters", "ABCDEFGHI", false},
		{"lowercase", "nasa", false},
		{"mixed case", "NaSa", false},
		{"pure number", "2023", false},
		{"hyphenated number", "20-23", false},
		{"leading digit", "3PL", false},
		{"trailing digit", "G20", false},
		{"two char trailing digit", "B2", false},
		{"leading hyphen", "-AB", false},
		{"trailing hyphen", "AB-", false},
		{"punctuation", "U.S.", false},
		{"excluded word", "OK", false},
		{"excluded month", "JAN", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pred.IsAcronym(tt.token), "token %q", tt.token)
		})
	}
}

func TestShapePredicate_ExclusionsAreCaseSensitive(t *testing.T) {
	pred := NewShapePredicate(2, 8, []string{"US"})
	assert.False(t, pred.IsAcronym("US"))
	// lowercase fails the shape test anyway, but an exclusion for "US"
	// must not suppress a differently cased surface like "USA"
	assert.True(t, pred.IsAcronym("USA"))
}
