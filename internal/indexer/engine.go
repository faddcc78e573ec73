package indexer

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/metrics"
)

// Variant names one of the tree implementations.
type Variant string

const (
	VariantBST Variant = "bst"
	VariantAVL Variant = "avl"
)

// ParseVariant accepts "bst" or "avl" in any case.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantBST:
		return VariantBST, nil
	case VariantAVL:
		return VariantAVL, nil
	default:
		return "", apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "unknown index variant %q", s)
	}
}

// Variants expands a configured variant setting ("bst", "avl" or "both")
// into the trees to build, in a fixed order.
func Variants(setting string) ([]Variant, error) {
	if strings.EqualFold(strings.TrimSpace(setting), "both") {
		return []Variant{VariantBST, VariantAVL}, nil
	}
	v, err := ParseVariant(setting)
	if err != nil {
		return nil, err
	}
	return []Variant{v}, nil
}

// BuildStats describes one IndexText call.
type BuildStats struct {
	Tokens        int                       `json:"tokens"`
	Lines         int                       `json:"lines"`
	FirstLine     int                       `json:"firstLine"`
	DistinctWords map[Variant]int           `json:"distinctWords"`
	Durations     map[Variant]time.Duration `json:"durations"`
	Heights       map[Variant]int           `json:"heights"`
}

// TreeStats is a snapshot of one tree.
type TreeStats struct {
	Variant Variant `json:"variant"`
	Words   int     `json:"words"`
	Height  int     `json:"height"`
	Root    string  `json:"root,omitempty"`
}

// Stats is a snapshot of the whole engine.
type Stats struct {
	Lines  int         `json:"lines"`
	Tokens int64       `json:"tokens"`
	Trees  []TreeStats `json:"trees"`
}

// Engine keeps one tree per enabled variant, all fed with the same tokens.
// It is safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	variants []Variant
	trees    map[Variant]index.WordIndex
	opts     tokenizer.Options
	verify   bool
	metrics  *metrics.Metrics
	logger   *slog.Logger
	lines    int
	tokens   int64
}

// NewEngine builds an empty engine. m may be nil.
func NewEngine(cfg config.IndexerConfig, m *metrics.Metrics) (*Engine, error) {
	variants, err := Variants(cfg.Variant)
	if err != nil {
		return nil, fmt.Errorf("configuring indexer: %w", err)
	}
	lang, err := tokenizer.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "configuring indexer: %v", err)
	}
	e := &Engine{
		variants: variants,
		opts: tokenizer.Options{
			Language:  lang,
			StopWords: cfg.StopWords,
			Stem:      cfg.Stem,
			MinLength: cfg.MinWordLength,
		},
		verify:  cfg.Verify,
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
	e.trees = e.newTrees()
	return e, nil
}

func (e *Engine) newTrees() map[Variant]index.WordIndex {
	trees := make(map[Variant]index.WordIndex, len(e.variants))
	for _, v := range e.variants {
		switch v {
		case VariantBST:
			trees[v] = index.NewBST()
		case VariantAVL:
			trees[v] = index.NewAVL(index.WithRotationObserver(e.observeRotation))
		}
	}
	return trees
}

func (e *Engine) observeRotation(r index.Rotation) {
	if e.metrics != nil {
		e.metrics.AVLRotationsTotal.WithLabelValues(string(r)).Inc()
	}
}

// Variants returns the enabled tree variants.
func (e *Engine) Variants() []Variant {
	out := make([]Variant, len(e.variants))
	copy(out, e.variants)
	return out
}

// IndexText tokenizes text and inserts every word into each tree. Line
// numbers continue after the text indexed by earlier calls. A verification
// error is reported after the insert is complete; the text stays indexed.
func (e *Engine) IndexText(text string) (BuildStats, error) {
	if text == "" {
		return BuildStats{}, apperrors.ErrEmptyInput
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	opts := e.opts
	opts.FirstLine = e.lines + 1
	tokens := tokenizer.Tokenize(text, opts)
	lines := tokenizer.CountLines(strings.TrimSuffix(text, "\n"))

	stats := BuildStats{
		Tokens:        len(tokens),
		Lines:         lines,
		FirstLine:     opts.FirstLine,
		DistinctWords: make(map[Variant]int, len(e.variants)),
		Durations:     make(map[Variant]time.Duration, len(e.variants)),
		Heights:       make(map[Variant]int, len(e.variants)),
	}

	for _, v := range e.variants {
		tree := e.trees[v]
		start := time.Now()
		for _, tok := range tokens {
			tree.Insert(tok.Word, tok.Line, tok.Column)
		}
		elapsed := time.Since(start)

		stats.Durations[v] = elapsed
		stats.Heights[v] = tree.Height()
		stats.DistinctWords[v] = tree.Len()
		e.observeTree(v, tree)
		if e.metrics != nil {
			e.metrics.WordsIndexedTotal.WithLabelValues(string(v)).Add(float64(len(tokens)))
			e.metrics.IndexBuildDuration.WithLabelValues(string(v)).Observe(elapsed.Seconds())
		}
	}

	// The words are in every tree at this point, so the counters move even
	// when verification fails and later calls never reuse these lines.
	e.lines += lines
	e.tokens += int64(len(tokens))

	if e.verify {
		for _, v := range e.variants {
			if err := e.trees[v].Validate(); err != nil {
				return stats, fmt.Errorf("verifying %s after insert: %w", v, err)
			}
		}
	}

	e.logger.Debug("text indexed",
		"tokens", len(tokens),
		"first_line", opts.FirstLine,
		"lines", lines,
		"heights", stats.Heights,
	)
	return stats, nil
}

// Search looks word up in one tree. The query is normalised the same way as
// indexed text; a word the normaliser drops is reported as not found.
func (e *Engine) Search(v Variant, word string) ([]index.Occurrence, bool, time.Duration, error) {
	key, err := e.queryKey(word)
	if err != nil {
		return nil, false, 0, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	tree, err := e.tree(v)
	if err != nil {
		return nil, false, 0, err
	}
	if key == "" {
		e.countOp(v, "search", "miss")
		return nil, false, 0, nil
	}

	start := time.Now()
	occ, ok := tree.Search(key)
	elapsed := time.Since(start)

	if ok {
		e.countOp(v, "search", "hit")
	} else {
		e.countOp(v, "search", "miss")
	}
	return occ, ok, elapsed, nil
}

// Delete removes word from every tree and reports whether any tree held it.
func (e *Engine) Delete(word string) (bool, error) {
	key, err := e.queryKey(word)
	if err != nil {
		return false, err
	}
	if key == "" {
		return false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	removed := false
	for _, v := range e.variants {
		tree := e.trees[v]
		if tree.Delete(key) {
			removed = true
			e.countOp(v, "delete", "hit")
		} else {
			e.countOp(v, "delete", "miss")
		}
		if e.verify {
			if err := tree.Validate(); err != nil {
				return removed, fmt.Errorf("verifying %s after delete: %w", v, err)
			}
		}
		e.observeTree(v, tree)
	}
	if removed {
		e.logger.Debug("word deleted", "word", key)
	}
	return removed, nil
}

// Inorder returns the alphabetical listing of one tree.
func (e *Engine) Inorder(v Variant) ([]index.Entry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tree, err := e.tree(v)
	if err != nil {
		return nil, err
	}
	return tree.Inorder(), nil
}

// Validate checks the structural invariants of every tree.
func (e *Engine) Validate() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, v := range e.variants {
		if err := e.trees[v].Validate(); err != nil {
			return fmt.Errorf("%s: %w", v, err)
		}
	}
	return nil
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Stats{
		Lines:  e.lines,
		Tokens: e.tokens,
		Trees:  make([]TreeStats, 0, len(e.variants)),
	}
	for _, v := range e.variants {
		tree := e.trees[v]
		root, _ := tree.Root()
		s.Trees = append(s.Trees, TreeStats{
			Variant: v,
			Words:   tree.Len(),
			Height:  tree.Height(),
			Root:    root,
		})
	}
	return s
}

// Reset drops every indexed word and restarts line numbering at 1.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.trees = e.newTrees()
	e.lines = 0
	e.tokens = 0
	for _, v := range e.variants {
		e.observeTree(v, e.trees[v])
	}
	e.logger.Info("index reset")
}

func (e *Engine) tree(v Variant) (index.WordIndex, error) {
	tree, ok := e.trees[v]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "index variant %q is not enabled", v)
	}
	return tree, nil
}

// queryKey returns "" for a word that normalisation drops.
func (e *Engine) queryKey(word string) (string, error) {
	if strings.TrimSpace(word) == "" {
		return "", apperrors.ErrEmptyInput
	}
	key, ok := tokenizer.Normalize(word, e.opts)
	if !ok {
		return "", nil
	}
	return key, nil
}

func (e *Engine) countOp(v Variant, op, result string) {
	if e.metrics != nil {
		e.metrics.IndexOperationsTotal.WithLabelValues(string(v), op, result).Inc()
	}
}

func (e *Engine) observeTree(v Variant, tree index.WordIndex) {
	if e.metrics == nil {
		return
	}
	e.metrics.IndexHeight.WithLabelValues(string(v)).Set(float64(tree.Height()))
	e.metrics.IndexWords.WithLabelValues(string(v)).Set(float64(tree.Len()))
}
