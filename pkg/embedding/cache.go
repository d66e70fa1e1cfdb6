package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUCache memoizes embeddings in process. Retrying a failed upload of the same
// document or repeating a question does not hit the remote provider again.
type LRUCache struct {
	next  EmbeddingProvider
	cache *expirable.LRU[string, []float32]
}

// WrapLRUCache returns next unchanged when caching is disabled.
func WrapLRUCache(next EmbeddingProvider, size int, ttl time.Duration) EmbeddingProvider {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &LRUCache{
		next:  next,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

func (c *LRUCache) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	key := cacheKey(c.next.ModelName(), taskType, text)
	if cached, ok := c.cache.Get(key); ok {
		return cloneVector(cached), nil
	}

	vec, err := c.next.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cloneVector(vec))
	return vec, nil
}

func (c *LRUCache) ModelName() string {
	return c.next.ModelName()
}

func cacheKey(model, taskType, text string) string {
	model = strings.TrimSpace(model)
	if model == "" {
		model = "unknown"
	}
	hash := sha256.Sum256([]byte(text))
	return "embed:" + model + ":" + taskType + ":" + hex.EncodeToString(hash[:])
}

func cloneVector(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
