package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizePositions(t *testing.T) {
	text := "Hola, mundo!\r\n\nEl perro y el gato. Hola?"
	got := Tokenize(text, DefaultOptions())
	want := []Token{
		{"hola", 1, 1},
		{"mundo", 1, 2},
		{"el", 3, 1},
		{"perro", 3, 2},
		{"y", 3, 3},
		{"el", 3, 4},
		{"gato", 3, 5},
		{"hola", 3, 6},
	}
	assert.Equal(t, want, got)
}

func TestTokenizeFirstLine(t *testing.T) {
	got := Tokenize("uno\ndos", Options{FirstLine: 10})
	assert.Equal(t, []Token{{"uno", 10, 1}, {"dos", 11, 1}}, got)
}

func TestTokenizeFiltersKeepColumnsDense(t *testing.T) {
	got := Tokenize("el perro x de la casa", Options{StopWords: true, MinLength: 2})
	assert.Equal(t, []Token{{"perro", 1, 1}, {"casa", 1, 2}}, got)

	got = Tokenize("the quick a fox", Options{Language: English, StopWords: true, MinLength: 2})
	assert.Equal(t, []Token{{"quick", 1, 1}, {"fox", 1, 2}}, got)
}

func TestTokenizeStem(t *testing.T) {
	got := Tokenize("indexing searches", Options{Language: English, Stem: true})
	assert.Equal(t, []Token{{"index", 1, 1}, {"search", 1, 2}}, got)

	got = Tokenize("casas árboles canciones rápidamente mes", Options{Stem: true})
	assert.Equal(t, []Token{
		{"casa", 1, 1}, {"árbol", 1, 2}, {"cancion", 1, 3}, {"rápida", 1, 4}, {"mes", 1, 5},
	}, got)
}

func TestTokenizeSplitsOnPunctuationInsideWords(t *testing.T) {
	got := Tokenize("don't stop", DefaultOptions())
	assert.Equal(t, []Token{{"don", 1, 1}, {"t", 1, 2}, {"stop", 1, 3}}, got)
}

func TestParseLanguage(t *testing.T) {
	l, err := ParseLanguage("")
	assert.NoError(t, err)
	assert.Equal(t, Spanish, l)
	l, err = ParseLanguage(" EN ")
	assert.NoError(t, err)
	assert.Equal(t, English, l)
	_, err = ParseLanguage("fr")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		opts Options
		want string
		ok   bool
	}{
		{"Casa", DefaultOptions(), "casa", true},
		{"  perro. ", DefaultOptions(), "perro", true},
		{"two words", DefaultOptions(), "", false},
		{"the", Options{Language: English, StopWords: true}, "", false},
		{"the", Options{StopWords: true}, "the", true},
		{"los", Options{StopWords: true}, "", false},
		{"!!", DefaultOptions(), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Normalize(tt.in, tt.opts)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 1, CountLines(""))
	assert.Equal(t, 3, CountLines("a\nb\nc"))
	assert.Equal(t, 2, CountLines("a\n"))
}
