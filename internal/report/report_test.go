package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/tracing"
)

const sample = `En un lugar de la Mancha, de cuyo nombre no quiero acordarme,
no ha mucho tiempo que vivia un hidalgo de los de lanza en astillero,
adarga antigua, rocin flaco y galgo corredor.
`

func sampleText() []byte {
	return []byte(strings.Repeat(sample, 20))
}

func TestRunWithSampleWords(t *testing.T) {
	r, err := Run(context.Background(), "quijote.txt", sampleText(), Options{
		Repetitions: 3,
		SampleWords: []string{"hidalgo", "dulcinea"},
	})
	require.NoError(t, err)

	assert.Equal(t, "quijote.txt", r.Source)
	assert.Equal(t, 60, r.Lines)
	require.Len(t, r.Trees, 2)
	assert.Equal(t, indexer.VariantBST, r.Trees[0].Variant)
	assert.Equal(t, indexer.VariantAVL, r.Trees[1].Variant)
	assert.Equal(t, r.Trees[0].Words, r.Trees[1].Words)
	assert.LessOrEqual(t, r.Trees[1].Height, r.Trees[0].Height)

	require.Len(t, r.Searches, 2)
	assert.True(t, r.Searches[0].Found)
	assert.Equal(t, 20, r.Searches[0].Occurrences)
	assert.False(t, r.Searches[1].Found)
	assert.Contains(t, r.Searches[0].Average, indexer.VariantAVL)

	require.Len(t, r.Compression, 3)
	assert.Equal(t, CodecHuffman, r.Compression[0].Codec)
	assert.Equal(t, CodecZstd, r.Compression[1].Codec)
	assert.Equal(t, CodecLZ4, r.Compression[2].Codec)
	for _, c := range r.Compression {
		assert.Less(t, c.Bytes, r.Bytes, c.Codec)
	}
	assert.Equal(t, uint64(r.Bytes), r.Huffman.OriginalBytes)
}

func TestRunDefaultSampleWords(t *testing.T) {
	r, err := Run(context.Background(), "s", []byte("beta alfa gamma"), Options{})
	require.NoError(t, err)

	words := make([]string, len(r.Searches))
	for i, s := range r.Searches {
		words[i] = s.Word
	}
	assert.Equal(t, []string{"alfa", "beta", "gamma", "gammaz"}, words)
	assert.False(t, r.Searches[3].Found)
	assert.Equal(t, 1, r.Repetitions)
}

func TestRunEmpty(t *testing.T) {
	_, err := Run(context.Background(), "empty", nil, Options{})
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, "s", sampleText(), Options{Repetitions: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLZ4StoredWhenIncompressible(t *testing.T) {
	res, err := measureLZ4([]byte("xy"))
	require.NoError(t, err)
	assert.True(t, res.Stored)
	assert.Equal(t, 2, res.Bytes)
}

func TestWriters(t *testing.T) {
	r, err := Run(context.Background(), "quijote.txt", sampleText(), Options{
		Repetitions: 1,
		SampleWords: []string{"hidalgo"},
	})
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, r.WriteText(&text))
	out := text.String()
	assert.Contains(t, out, "quijote.txt")
	assert.Contains(t, out, "== build ==")
	assert.Contains(t, out, "AVL")
	assert.Contains(t, out, "hidalgo")
	assert.Contains(t, out, "zstd")

	var js bytes.Buffer
	require.NoError(t, r.WriteJSON(&js))
	back, err := decodeReport(js.Bytes())
	require.NoError(t, err)
	assert.Equal(t, r.Tokens, back.Tokens)
	assert.Equal(t, r.Searches[0].Average, back.Searches[0].Average)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &raw))
	assert.Contains(t, raw, "compression")
}

func TestDecodeReportRejectsGarbage(t *testing.T) {
	_, err := decodeReport([]byte("{"))
	assert.Error(t, err)
}

func TestRunRecordsPhasesUnderParentSpan(t *testing.T) {
	ctx, root := tracing.StartSpan(context.Background(), "http", "req-1")
	r, err := Run(ctx, "s", []byte("uno dos\ntres"), Options{Repetitions: 1})
	require.NoError(t, err)

	names := make([]string, len(r.Phases))
	for i, p := range r.Phases {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"index", "search", "compress"}, names)

	require.Len(t, root.Children, 1)
	reportSpan := root.Children[0]
	assert.Equal(t, "report", reportSpan.Name)
	assert.Equal(t, "req-1", reportSpan.TraceID)
	assert.Len(t, reportSpan.Children, 3)
}
