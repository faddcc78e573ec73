package indexer

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/metrics"
)

func newTestEngine(t *testing.T, variant string) *Engine {
	t.Helper()
	e, err := NewEngine(config.IndexerConfig{Variant: variant, Verify: true}, nil)
	require.NoError(t, err)
	return e
}

func TestEngineIndexAndSearch(t *testing.T) {
	e := newTestEngine(t, "both")

	stats, err := e.IndexText("Casa arbol\nperro, CASA!\n")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Tokens)
	assert.Equal(t, 2, stats.Lines)
	assert.Equal(t, 1, stats.FirstLine)
	assert.Equal(t, 3, stats.DistinctWords[VariantBST])
	assert.Equal(t, 3, stats.DistinctWords[VariantAVL])
	assert.Contains(t, stats.Durations, VariantBST)
	assert.Contains(t, stats.Durations, VariantAVL)

	for _, v := range []Variant{VariantBST, VariantAVL} {
		occ, ok, _, err := e.Search(v, "  Casa ")
		require.NoError(t, err)
		require.True(t, ok, v)
		assert.Equal(t, []index.Occurrence{{Line: 1, Column: 1}, {Line: 2, Column: 2}}, occ)

		_, ok, _, err = e.Search(v, "gato")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestEngineContinuesLineNumbers(t *testing.T) {
	e := newTestEngine(t, "avl")

	_, err := e.IndexText("uno\ndos\n")
	require.NoError(t, err)
	stats, err := e.IndexText("tres uno")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FirstLine)

	occ, ok, _, err := e.Search(VariantAVL, "uno")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []index.Occurrence{{Line: 1, Column: 1}, {Line: 3, Column: 2}}, occ)
	assert.Equal(t, 3, e.Stats().Lines)
}

func TestEngineVariantErrors(t *testing.T) {
	_, err := NewEngine(config.IndexerConfig{Variant: "trie"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	e := newTestEngine(t, "bst")
	_, _, _, err = e.Search(VariantAVL, "casa")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, 400, apperrors.HTTPStatusCode(err))

	_, err = e.Inorder(Variant("heap"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, _, err = e.Search(VariantBST, "   ")
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)

	_, err = e.IndexText("")
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
}

// brokenTree inserts normally but always fails verification.
type brokenTree struct {
	index.WordIndex
}

func (brokenTree) Validate() error {
	return fmt.Errorf("%w: forced", apperrors.ErrInvariantViolation)
}

func TestEngineVerifyFailureKeepsLineNumbers(t *testing.T) {
	e := newTestEngine(t, "both")
	e.trees[VariantBST] = brokenTree{WordIndex: index.NewBST()}

	_, err := e.IndexText("uno dos\ntres\n")
	require.ErrorIs(t, err, apperrors.ErrInvariantViolation)
	assert.Equal(t, 2, e.Stats().Lines)

	stats, err := e.IndexText("cuatro")
	require.Error(t, err)
	assert.Equal(t, 3, stats.FirstLine)

	occ, ok, _, err := e.Search(VariantAVL, "cuatro")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []index.Occurrence{{Line: 3, Column: 1}}, occ)
}

func TestEngineLanguage(t *testing.T) {
	e, err := NewEngine(config.IndexerConfig{Variant: "avl", Language: "es", StopWords: true, Stem: true}, nil)
	require.NoError(t, err)
	_, err = e.IndexText("los perros y las casas")
	require.NoError(t, err)

	occ, ok, _, err := e.Search(VariantAVL, "Perros")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []index.Occurrence{{Line: 1, Column: 1}}, occ)
	_, ok, _, err = e.Search(VariantAVL, "los")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewEngine(config.IndexerConfig{Variant: "avl", Language: "fr"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant(" AVL ")
	require.NoError(t, err)
	assert.Equal(t, VariantAVL, v)

	vs, err := Variants("both")
	require.NoError(t, err)
	assert.Equal(t, []Variant{VariantBST, VariantAVL}, vs)

	_, err = ParseVariant("both")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestEngineDeleteAndInorder(t *testing.T) {
	e := newTestEngine(t, "both")
	_, err := e.IndexText("delta alfa charlie bravo\necho alfa")
	require.NoError(t, err)

	removed, err := e.Delete("Charlie")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = e.Delete("charlie")
	require.NoError(t, err)
	assert.False(t, removed)

	for _, v := range e.Variants() {
		entries, err := e.Inorder(v)
		require.NoError(t, err)
		words := make([]string, len(entries))
		for i, en := range entries {
			words[i] = en.Word
		}
		assert.Equal(t, []string{"alfa", "bravo", "delta", "echo"}, words, v)
		assert.Len(t, entries[0].Occurrences, 2)
	}
	require.NoError(t, e.Validate())
}

func TestEngineNormalisedQueries(t *testing.T) {
	e, err := NewEngine(config.IndexerConfig{Variant: "bst", Language: "en", StopWords: true, Stem: true}, nil)
	require.NoError(t, err)
	_, err = e.IndexText("the runners are running")
	require.NoError(t, err)

	_, ok, _, err := e.Search(VariantBST, "the")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := e.Delete("the")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestEngineReset(t *testing.T) {
	e := newTestEngine(t, "both")
	_, err := e.IndexText("a b c\nd")
	require.NoError(t, err)

	e.Reset()
	s := e.Stats()
	assert.Zero(t, s.Lines)
	assert.Zero(t, s.Tokens)
	for _, ts := range s.Trees {
		assert.Zero(t, ts.Words)
		assert.Zero(t, ts.Height)
		assert.Empty(t, ts.Root)
	}

	stats, err := e.IndexText("z")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FirstLine)
}

func TestEngineMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	e, err := NewEngine(config.IndexerConfig{Variant: "both"}, m)
	require.NoError(t, err)

	_, err = e.IndexText("a b c d e f g")
	require.NoError(t, err)
	_, _, _, err = e.Search(VariantAVL, "d")
	require.NoError(t, err)
	_, _, _, err = e.Search(VariantAVL, "zz")
	require.NoError(t, err)

	assert.Equal(t, 7.0, testutil.ToFloat64(m.WordsIndexedTotal.WithLabelValues("bst")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.IndexHeight.WithLabelValues("bst")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.IndexHeight.WithLabelValues("avl")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexOperationsTotal.WithLabelValues("avl", "search", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexOperationsTotal.WithLabelValues("avl", "search", "miss")))
	assert.Positive(t, testutil.ToFloat64(m.AVLRotationsTotal.WithLabelValues(string(index.RotationRR))))
}

func TestEngineConcurrentAccess(t *testing.T) {
	e := newTestEngine(t, "both")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := e.IndexText("uno dos tres cuatro")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, _, _, err := e.Search(VariantAVL, "dos")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	occ, ok, _, err := e.Search(VariantBST, "tres")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, occ, 8)
	require.NoError(t, e.Validate())
}

func BenchmarkEngineSearchParallel(b *testing.B) {
	e, err := NewEngine(config.IndexerConfig{Variant: "both"}, nil)
	if err != nil {
		b.Fatal(err)
	}
	words := []string{"arbol", "casa", "perro", "gato", "luna", "sol", "mar", "rio"}
	for i := 0; i < 1000; i++ {
		if _, err := e.IndexText(words[i%len(words)] + " " + words[(i+3)%len(words)]); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, _, _, err := e.Search(VariantAVL, words[i%len(words)]); err != nil {
				b.Error(err)
				return
			}
			i++
		}
	})
}
