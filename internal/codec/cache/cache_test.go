package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/codec/huffman"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/resilience"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.data[key]
	if !ok {
		return nil, goredis.Nil
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sets++
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k := range s.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

func TestCompressCachesContainer(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	ctx := context.Background()
	input := []byte("AAAABBBCCD")

	first, hit, err := c.Compress(ctx, input)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := c.Compress(ctx, input)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)

	out, err := huffman.Decompress(second)
	require.NoError(t, err)
	assert.Equal(t, input, out)

	hits, misses := c.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)
	assert.Equal(t, 1, store.sets)
}

func TestCompressEmptyInput(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, nil)
	_, _, err := c.Compress(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, nil)
	input := []byte("hola mundo")
	store.data[Key(input)] = []byte{9, 0, 0}

	out, hit, err := c.Compress(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, hit)
	got, err := huffman.Decompress(out)
	require.NoError(t, err)
	assert.Equal(t, input, got)
}

func TestStoreErrorsFallBackToCompression(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	c := New(store, time.Minute, nil)

	out, hit, err := c.Compress(context.Background(), []byte("abc"))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotEmpty(t, out)
}

func TestInvalidate(t *testing.T) {
	store := newMemoryStore()
	store.data["other:key"] = []byte("x")
	c := New(store, time.Minute, nil)
	ctx := context.Background()

	_, _, err := c.Compress(ctx, []byte("uno"))
	require.NoError(t, err)
	_, _, err = c.Compress(ctx, []byte("dos"))
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx))
	assert.Len(t, store.data, 1)
	assert.Contains(t, store.data, "other:key")
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, Key([]byte("a")), Key([]byte("a")))
	assert.NotEqual(t, Key([]byte("a")), Key([]byte("b")))
	assert.Len(t, Key(nil), len(keyPrefix)+64)
}

func TestFailingStoreTripsBreaker(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	m := metrics.New(prometheus.NewRegistry())
	c := New(store, time.Minute, m)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := c.Compress(ctx, []byte{byte('a' + i)})
		require.NoError(t, err)
	}
	store.err = nil
	_, hit, err := c.Compress(ctx, []byte("z"))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, store.sets)
	assert.Equal(t, float64(resilience.StateOpen), testutil.ToFloat64(m.CodecCacheBreaker))
}
