package index

import (
	"fmt"
	"testing"
)

func sortedWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%06d", i)
	}
	return words
}

func scatteredWords(n int) []string {
	words := sortedWords(n)
	// A fixed stride permutation keeps runs reproducible.
	out := make([]string, n)
	for i := range out {
		out[i] = words[(i*7919)%n]
	}
	return out
}

func newIndex(kind string) WordIndex {
	if kind == "avl" {
		return NewAVL()
	}
	return NewBST()
}

// BenchmarkInsert compares the trees on sorted input, where the unbalanced
// tree degenerates into a list, and on scattered input.
func BenchmarkInsert(b *testing.B) {
	inputs := map[string][]string{
		"sorted":    sortedWords(2000),
		"scattered": scatteredWords(2000),
	}
	for _, kind := range []string{"bst", "avl"} {
		for name, words := range inputs {
			b.Run(kind+"/"+name, func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					idx := newIndex(kind)
					for col, w := range words {
						idx.Insert(w, 1, col+1)
					}
				}
			})
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	words := sortedWords(5000)
	for _, kind := range []string{"bst", "avl"} {
		idx := newIndex(kind)
		for col, w := range words {
			idx.Insert(w, 1, col+1)
		}
		b.Run(kind, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, ok := idx.Search(words[(i*31)%len(words)]); !ok {
					b.Fatal("indexed word not found")
				}
			}
		})
	}
}
