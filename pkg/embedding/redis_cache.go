package embedding

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares embeddings between server instances. Cache failures are
// never fatal: a read error falls through to the provider and a write error is dropped.
type RedisCache struct {
	next   EmbeddingProvider
	client redis.Cmdable
	ttl    time.Duration
}

func WrapRedisCache(next EmbeddingProvider, client redis.Cmdable, ttl time.Duration) EmbeddingProvider {
	if next == nil || client == nil {
		return next
	}
	return &RedisCache{next: next, client: client, ttl: ttl}
}

func (c *RedisCache) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	key := cacheKey(c.next.ModelName(), taskType, text)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if vec, decodeErr := decodeVector(raw); decodeErr == nil {
			return vec, nil
		}
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	vec, err := c.next.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	_ = c.client.Set(ctx, key, encodeVector(vec), c.ttl).Err()
	return vec, nil
}

func (c *RedisCache) ModelName() string {
	return c.next.ModelName()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, fmt.Errorf("invalid cached embedding of %d bytes", len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}
