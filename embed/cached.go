// Content-addressed embedding cache.
//
// Re-running an unchanged repository produces chunk content identical to the
// previous generation, so embedding it again is wasted provider spend. The
// cache keys on a content hash and delegates misses to the wrapped embedder.

package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the embedding cache when no size is configured.
const DefaultCacheSize = 1024

// CachedEmbedder wraps another Embedder with an LRU keyed by content hash.
// Safe for concurrent use; the underlying LRU is internally locked.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps an embedder with an LRU of the given size.
func NewCachedEmbedder(inner Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// Name returns the wrapped provider name.
func (e *CachedEmbedder) Name() string {
	return e.inner.Name()
}

// Embed returns the cached vector for previously seen content, otherwise
// delegates and caches the result. Failed embeddings are not cached.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := contentHash(text)
	if vec, ok := e.cache.Get(key); ok {
		return cloneVector(vec), nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, cloneVector(vec))
	return vec, nil
}

// Len reports how many embeddings are currently cached.
func (e *CachedEmbedder) Len() int {
	return e.cache.Len()
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// cloneVector keeps cached vectors isolated from caller mutation.
func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}

var _ Embedder = (*CachedEmbedder)(nil)
