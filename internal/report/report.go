// Package report measures the word index and the Huffman codec on one text:
// build and search times for both trees, tree shapes, and the compressed
// size next to zstd and lz4 baselines.
package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/codec/huffman"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/tracing"
)

// Codec names used in CodecResult.
const (
	CodecHuffman = "huffman"
	CodecZstd    = "zstd"
	CodecLZ4     = "lz4"
)

type Options struct {
	// Repetitions is how many times each sample search runs per tree.
	Repetitions int
	// SampleWords are looked up in both trees. When empty the first, middle
	// and last indexed words are used plus one word known to be absent.
	SampleWords []string
	Indexer     config.IndexerConfig
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Repetitions: cfg.Report.Repetitions,
		SampleWords: cfg.Report.SampleWords,
		Indexer:     cfg.Indexer,
	}
}

type Report struct {
	Source      string         `json:"source"`
	CapturedAt  time.Time      `json:"capturedAt"`
	Bytes       int            `json:"bytes"`
	Lines       int            `json:"lines"`
	Tokens      int            `json:"tokens"`
	Repetitions int            `json:"repetitions"`
	Trees       []TreeResult   `json:"trees"`
	Searches    []SearchResult `json:"searches"`
	Compression []CodecResult  `json:"compression"`
	Huffman     huffman.Stats  `json:"huffman"`
	Phases      []Phase        `json:"phases"`
}

// Phase is the wall time of one step of Run.
type Phase struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"durationNanos"`
}

type TreeResult struct {
	Variant indexer.Variant `json:"variant"`
	Words   int             `json:"words"`
	Height  int             `json:"height"`
	Root    string          `json:"root"`
	Build   time.Duration   `json:"buildNanos"`
}

type SearchResult struct {
	Word        string                            `json:"word"`
	Found       bool                              `json:"found"`
	Occurrences int                               `json:"occurrences"`
	Average     map[indexer.Variant]time.Duration `json:"averageNanos"`
}

type CodecResult struct {
	Codec          string        `json:"codec"`
	Bytes          int           `json:"bytes"`
	Ratio          float64       `json:"ratio"`
	SavingsPercent float64       `json:"savingsPercent"`
	Duration       time.Duration `json:"durationNanos"`
	// Stored is set when the codec could not shrink the input and the
	// size is that of the raw input.
	Stored bool `json:"stored,omitempty"`
}

// Run builds the report for text. source is a label such as a file name.
// Each step runs in a tracing span under the one carried by ctx.
func Run(ctx context.Context, source string, text []byte, opts Options) (*Report, error) {
	if len(text) == 0 {
		return nil, fmt.Errorf("building report: %w", apperrors.ErrEmptyInput)
	}
	if opts.Repetitions < 1 {
		opts.Repetitions = 1
	}
	log := logger.Component(ctx, "report").With("source", source)

	ctx, span := tracing.StartChildSpan(ctx, "report")
	span.SetAttr("source", source)
	defer func() {
		span.End()
		if span.IsRoot() {
			span.Log(log)
		}
	}()

	r := &Report{
		Source:      source,
		CapturedAt:  time.Now().UTC(),
		Bytes:       len(text),
		Repetitions: opts.Repetitions,
	}

	var engine *indexer.Engine
	err := r.phase(ctx, "index", func() error {
		idxCfg := opts.Indexer
		idxCfg.Variant = "both"
		var err error
		if engine, err = indexer.NewEngine(idxCfg, nil); err != nil {
			return err
		}
		build, err := engine.IndexText(string(text))
		if err != nil {
			return fmt.Errorf("indexing %s: %w", source, err)
		}
		r.Lines = build.Lines
		r.Tokens = build.Tokens
		for _, ts := range engine.Stats().Trees {
			r.Trees = append(r.Trees, TreeResult{
				Variant: ts.Variant,
				Words:   ts.Words,
				Height:  ts.Height,
				Root:    ts.Root,
				Build:   build.Durations[ts.Variant],
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.phase(ctx, "search", func() error {
		words := opts.SampleWords
		if len(words) == 0 {
			var err error
			if words, err = defaultSampleWords(engine); err != nil {
				return err
			}
		}
		for _, w := range words {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := timeSearch(engine, w, opts.Repetitions)
			if err != nil {
				return fmt.Errorf("timing search for %q: %w", w, err)
			}
			r.Searches = append(r.Searches, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.phase(ctx, "compress", func() error {
		huff, stats, err := measureHuffman(text)
		if err != nil {
			return err
		}
		r.Huffman = stats
		zs, err := measureZstd(text)
		if err != nil {
			return err
		}
		lz, err := measureLZ4(text)
		if err != nil {
			return err
		}
		r.Compression = append(r.Compression, huff, zs, lz)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("report built",
		"bytes", r.Bytes,
		"tokens", r.Tokens,
		"huffman_bytes", r.Compression[0].Bytes,
	)
	return r, nil
}

// phase runs fn in a child span after checking ctx and records its duration.
func (r *Report) phase(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, span := tracing.StartChildSpan(ctx, name)
	err := fn()
	span.End()
	if err != nil {
		span.SetAttr("error", err.Error())
		return err
	}
	r.Phases = append(r.Phases, Phase{Name: name, Duration: span.Duration})
	return nil
}

func defaultSampleWords(engine *indexer.Engine) ([]string, error) {
	entries, err := engine.Inorder(indexer.VariantAVL)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []string{"missing"}, nil
	}
	last := entries[len(entries)-1].Word
	words := []string{entries[0].Word}
	if mid := entries[len(entries)/2].Word; mid != words[0] {
		words = append(words, mid)
	}
	if last != words[len(words)-1] {
		words = append(words, last)
	}
	// Sorts after every indexed word, so it cannot be present.
	return append(words, last+"z"), nil
}

func timeSearch(engine *indexer.Engine, word string, reps int) (SearchResult, error) {
	res := SearchResult{
		Word:    word,
		Average: make(map[indexer.Variant]time.Duration, 2),
	}
	for _, v := range engine.Variants() {
		var total time.Duration
		for i := 0; i < reps; i++ {
			occ, ok, elapsed, err := engine.Search(v, word)
			if err != nil {
				return res, err
			}
			total += elapsed
			res.Found = ok
			res.Occurrences = len(occ)
		}
		res.Average[v] = total / time.Duration(reps)
	}
	return res, nil
}

func newCodecResult(name string, in, out int, d time.Duration) CodecResult {
	return CodecResult{
		Codec:          name,
		Bytes:          out,
		Ratio:          float64(out) / float64(in),
		SavingsPercent: (1 - float64(out)/float64(in)) * 100,
		Duration:       d,
	}
}

func measureHuffman(text []byte) (CodecResult, huffman.Stats, error) {
	start := time.Now()
	c, err := huffman.Encode(text)
	if err != nil {
		return CodecResult{}, huffman.Stats{}, fmt.Errorf("huffman encode: %w", err)
	}
	out, err := c.MarshalBinary()
	if err != nil {
		return CodecResult{}, huffman.Stats{}, fmt.Errorf("huffman marshal: %w", err)
	}
	elapsed := time.Since(start)

	back, err := huffman.Decompress(out)
	if err != nil {
		return CodecResult{}, huffman.Stats{}, fmt.Errorf("huffman round trip: %w", err)
	}
	if !bytes.Equal(back, text) {
		return CodecResult{}, huffman.Stats{}, roundTripError(CodecHuffman)
	}
	return newCodecResult(CodecHuffman, len(text), len(out), elapsed), c.Stats(), nil
}

func measureZstd(text []byte) (CodecResult, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return CodecResult{}, fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer enc.Close()
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return CodecResult{}, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	start := time.Now()
	out := enc.EncodeAll(text, nil)
	elapsed := time.Since(start)

	back, err := dec.DecodeAll(out, nil)
	if err != nil {
		return CodecResult{}, fmt.Errorf("zstd round trip: %w", err)
	}
	if !bytes.Equal(back, text) {
		return CodecResult{}, roundTripError(CodecZstd)
	}
	return newCodecResult(CodecZstd, len(text), len(out), elapsed), nil
}

func measureLZ4(text []byte) (CodecResult, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(text)))

	start := time.Now()
	n, err := lz4.CompressBlock(text, buf, nil)
	elapsed := time.Since(start)
	if err != nil {
		return CodecResult{}, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 || n >= len(text) {
		res := newCodecResult(CodecLZ4, len(text), len(text), elapsed)
		res.Stored = true
		return res, nil
	}

	back := make([]byte, len(text))
	m, err := lz4.UncompressBlock(buf[:n], back)
	if err != nil {
		return CodecResult{}, fmt.Errorf("lz4 round trip: %w", err)
	}
	if !bytes.Equal(back[:m], text) {
		return CodecResult{}, roundTripError(CodecLZ4)
	}
	return newCodecResult(CodecLZ4, len(text), n, elapsed), nil
}

func roundTripError(codec string) error {
	return fmt.Errorf("%s round trip changed the data: %w", codec, apperrors.ErrInternal)
}
