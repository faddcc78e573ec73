package redis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestIsNilError(t *testing.T) {
	assert.True(t, IsNilError(redis.Nil))
	assert.True(t, IsNilError(fmt.Errorf("get: %w", redis.Nil)))
	assert.False(t, IsNilError(errors.New("connection refused")))
	assert.False(t, IsNilError(nil))
}

func TestChunkKeys(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, chunkKeys(keys, 2))
	assert.Equal(t, [][]string{{"a", "b", "c", "d", "e"}}, chunkKeys(keys, 50))
	assert.Empty(t, chunkKeys(nil, 2))
}
