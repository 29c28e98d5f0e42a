package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Lowercases", "Science", "science"},
		{"Trims", "  Science  ", "science"},
		{"Case Fold Unicode", "STRASSE", "strasse"},
		{"NFC Composition", "Café", "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalName(tt.in))
		})
	}
}

func TestArticleKey(t *testing.T) {
	assert.Equal(t, "en.wikipedia.org#Ada_Lovelace", ArticleKey("en.wikipedia.org", "Ada Lovelace"))
	assert.Equal(t, "en.wikipedia.org#Ada_Lovelace", ArticleKey(" EN.Wikipedia.org ", "Ada Lovelace "))

	// Composed and decomposed forms of the same title hash to the same key.
	assert.Equal(t, ArticleKey("de.wikipedia.org", "Café"), ArticleKey("de.wikipedia.org", "Café"))
}
