// Package tokenizer splits text into positioned words for the word index.
// It lower-cases input, splits on non-alphanumeric boundaries and numbers
// every word by line and by column within the line. Stop-word removal and a
// light suffix stemmer, Spanish by default or English, are available as
// options.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"
)

// Language selects the stop-word list and stemmer.
type Language string

const (
	Spanish Language = "es"
	English Language = "en"
)

// ParseLanguage accepts "es" or "en" in any case; "" means Spanish.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case "", Spanish:
		return Spanish, nil
	case English:
		return English, nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}

var stopWords = map[Language]map[string]struct{}{
	Spanish: set(
		"a", "al", "como", "con", "de", "del", "e", "el", "en", "entre",
		"es", "la", "las", "le", "les", "lo", "los", "me", "mi", "muy",
		"no", "nos", "o", "para", "pero", "por", "que", "se", "sin",
		"sobre", "su", "sus", "te", "tu", "u", "un", "una", "unas",
		"unos", "y", "ya",
	),
	English: set(
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "can",
		"do", "each", "for", "from", "had", "has", "have", "he", "if",
		"in", "is", "it", "its", "no", "not", "of", "on", "or", "so",
		"that", "the", "their", "they", "this", "to", "was", "were",
		"what", "when", "where", "which", "who", "will", "with",
	),
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Token is a normalised word and its 1-based position in the original text.
type Token struct {
	Word   string
	Line   int
	Column int
}

// Options controls normalisation. The zero value keeps every word as-is
// apart from lower-casing and numbers lines from 1.
type Options struct {
	// Language picks the stop words and stemmer; "" means Spanish.
	Language  Language
	StopWords bool
	Stem      bool
	MinLength int
	// FirstLine is the number given to the first line of text; values below
	// 1 are treated as 1.
	FirstLine int
}

// DefaultOptions keeps every word. Unlike a plain whitespace split, any
// character that is not a letter or digit separates words, so "don't"
// yields "don" and "t".
func DefaultOptions() Options {
	return Options{FirstLine: 1}
}

// Tokenize breaks text into lines and words. Columns count the words kept
// on a line, so filtered words do not leave gaps.
func Tokenize(text string, opts Options) []Token {
	first := opts.FirstLine
	if first < 1 {
		first = 1
	}
	lines := strings.Split(text, "\n")
	tokens := make([]Token, 0, len(text)/6)
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		col := 0
		for _, word := range splitWords(line) {
			word, ok := normalize(word, opts)
			if !ok {
				continue
			}
			col++
			tokens = append(tokens, Token{
				Word:   word,
				Line:   first + i,
				Column: col,
			})
		}
	}
	return tokens
}

// Normalize applies the same normalisation as Tokenize to a single query
// word. It returns false when the word would have been dropped.
func Normalize(word string, opts Options) (string, bool) {
	words := splitWords(word)
	if len(words) != 1 {
		return "", false
	}
	return normalize(words[0], opts)
}

// CountLines returns the number of lines Tokenize numbers for text.
func CountLines(text string) int {
	return strings.Count(text, "\n") + 1
}

func splitWords(line string) []string {
	return strings.FieldsFunc(strings.ToLower(line), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(word string, opts Options) (string, bool) {
	if len([]rune(word)) < opts.MinLength {
		return "", false
	}
	lang := opts.Language
	if lang == "" {
		lang = Spanish
	}
	if opts.StopWords {
		if _, isStop := stopWords[lang][word]; isStop {
			return "", false
		}
	}
	if opts.Stem {
		if lang == English {
			word = stem(word)
		} else {
			word = stemSpanish(word)
		}
	}
	return word, word != ""
}

// stemSpanish strips adverb and plural endings: "rápidamente" -> "rápida",
// "canciones" -> "cancion", "árboles" -> "árbol", "casas" -> "casa".
func stemSpanish(word string) string {
	r := []rune(word)
	n := len(r)
	switch {
	case n > 7 && strings.HasSuffix(word, "mente"):
		return string(r[:n-5])
	case n > 6 && strings.HasSuffix(word, "ciones"):
		return string(r[:n-6]) + "cion"
	case n > 4 && strings.HasSuffix(word, "es") && !isVowel(r[n-3]):
		return string(r[:n-2])
	case n > 3 && r[n-1] == 's' && isVowel(r[n-2]):
		return string(r[:n-1])
	}
	return word
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiouáéíóú", r)
}

// stem is the English suffix-stripping stemmer.
func stem(word string) string {
	suffixes := []struct {
		suffix      string
		replacement string
		minLen      int
	}{
		{"ational", "ate", 2},
		{"tional", "tion", 2},
		{"encies", "ence", 2},
		{"ances", "ance", 2},
		{"ments", "ment", 2},
		{"izing", "ize", 2},
		{"ating", "ate", 2},
		{"iness", "y", 2},
		{"ously", "ous", 2},
		{"ively", "ive", 2},
		{"eness", "ene", 2},
		{"tion", "t", 3},
		{"sion", "s", 3},
		{"ying", "y", 2},
		{"ling", "l", 3},
		{"ies", "y", 2},
		{"ing", "", 3},
		{"ers", "er", 2},
		{"est", "", 3},
		{"ful", "", 3},
		{"ous", "", 3},
		{"ess", "", 3},
		{"ble", "", 3},
		{"ed", "", 3},
		{"er", "", 3},
		{"ly", "", 3},
		{"es", "", 3},
		{"ss", "ss", 2},
		{"s", "", 3},
	}
	for _, rule := range suffixes {
		if strings.HasSuffix(word, rule.suffix) {
			newWord := word[:len(word)-len(rule.suffix)] + rule.replacement
			if len(newWord) >= rule.minLen {
				return newWord
			}
		}
	}
	return word
}
