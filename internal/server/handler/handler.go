// Package handler exposes the word index and the Huffman codec over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/codec/cache"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/codec/huffman"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/report"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/tracing"
)

// Engine is the part of indexer.Engine the handler serves.
type Engine interface {
	IndexText(text string) (indexer.BuildStats, error)
	Search(v indexer.Variant, word string) ([]index.Occurrence, bool, time.Duration, error)
	Delete(word string) (bool, error)
	Inorder(v indexer.Variant) ([]index.Entry, error)
	Stats() indexer.Stats
	Variants() []indexer.Variant
}

var _ Engine = (*indexer.Engine)(nil)

type Handler struct {
	engine     Engine
	cache      *cache.ContainerCache
	metrics    *metrics.Metrics
	reportOpts report.Options
	maxBody    int64
	logger     *slog.Logger
}

type Option func(*Handler)

// WithCache serves compression through the Redis container cache.
func WithCache(c *cache.ContainerCache) Option {
	return func(h *Handler) { h.cache = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithMaxBodyBytes limits request bodies; larger ones get 413.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) { h.maxBody = n }
}

func WithReportOptions(opts report.Options) Option {
	return func(h *Handler) { h.reportOpts = opts }
}

func New(engine Engine, opts ...Option) *Handler {
	h := &Handler{
		engine:  engine,
		maxBody: 16 << 20,
		logger:  slog.Default().With("component", "http-handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/index", h.Index)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/words", h.Words)
	mux.HandleFunc("DELETE /api/v1/words/{word}", h.DeleteWord)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("POST /api/v1/compress", h.Compress)
	mux.HandleFunc("POST /api/v1/decompress", h.Decompress)
	mux.HandleFunc("POST /api/v1/report", h.Report)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	stats, err := h.engine.IndexText(string(body))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("text indexed",
		"bytes", len(body),
		"tokens", stats.Tokens,
		"first_line", stats.FirstLine,
	)
	h.writeJSON(w, http.StatusCreated, stats)
}

type searchResponse struct {
	Word         string             `json:"word"`
	Variant      indexer.Variant    `json:"variant"`
	Found        bool               `json:"found"`
	Occurrences  []index.Occurrence `json:"occurrences"`
	ElapsedNanos int64              `json:"elapsedNanos"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		h.writeError(w, r, apperrors.New(apperrors.ErrEmptyInput, http.StatusBadRequest, "query parameter 'word' is required"))
		return
	}
	v, err := h.variant(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	occ, found, elapsed, err := h.engine.Search(v, word)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if occ == nil {
		occ = []index.Occurrence{}
	}
	status := http.StatusOK
	if !found {
		status = http.StatusNotFound
	}
	h.writeJSON(w, status, searchResponse{
		Word:         word,
		Variant:      v,
		Found:        found,
		Occurrences:  occ,
		ElapsedNanos: elapsed.Nanoseconds(),
	})
}

func (h *Handler) Words(w http.ResponseWriter, r *http.Request) {
	v, err := h.variant(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := h.engine.Inorder(v)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []index.Entry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"variant": v,
		"count":   len(entries),
		"words":   entries,
	})
}

func (h *Handler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")
	removed, err := h.engine.Delete(word)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !removed {
		h.writeError(w, r, fmt.Errorf("%q: %w", word, apperrors.ErrWordNotFound))
		return
	}
	logger.FromContext(r.Context()).Info("word deleted", "word", word)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"index": h.engine.Stats()}
	if h.cache != nil {
		hits, misses := h.cache.Stats()
		resp["cache"] = map[string]int64{"hits": hits, "misses": misses}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Compress(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var (
		out []byte
		hit bool
		err error
	)
	if h.cache != nil {
		out, hit, err = h.cache.Compress(r.Context(), body)
	} else {
		out, err = huffman.Compress(body)
	}
	h.metrics.ObserveCodec("compress", len(body), len(out), err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	cacheState := "miss"
	if hit {
		cacheState = "hit"
	}
	w.Header().Set("X-Cache", cacheState)
	w.Header().Set("X-Original-Bytes", strconv.Itoa(len(body)))
	h.writeBinary(w, out)
}

func (h *Handler) Decompress(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	out, err := huffman.Decompress(body)
	h.metrics.ObserveCodec("decompress", len(body), len(out), err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeBinary(w, out)
}

// Report measures the posted text without touching the served index.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "request"
	}
	ctx, span := tracing.StartSpan(r.Context(), "POST /api/v1/report", middleware.GetRequestID(r.Context()))
	rep, err := report.Run(ctx, source, body, h.reportOpts)
	span.End()
	span.Log(logger.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "caching is disabled"})
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// variant reads ?variant=, defaulting to the first enabled tree.
func (h *Handler) variant(r *http.Request) (indexer.Variant, error) {
	raw := r.URL.Query().Get("variant")
	if raw == "" {
		return h.engine.Variants()[0], nil
	}
	return indexer.ParseVariant(raw)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			})
			return nil, false
		}
		h.writeError(w, r, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "reading body: %v", err))
		return nil, false
	}
	return body, true
}

func (h *Handler) writeBinary(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError maps err to a status code. Server-side failures are logged
// and reported without detail.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		message = http.StatusText(status)
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
