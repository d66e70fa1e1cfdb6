package embedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

const defaultHashDimension = 384

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// HashProvider is an offline, deterministic bag-of-words embedder. Each lower-cased token is
// hashed into one of Dimension buckets and the resulting counts are normalized to unit length.
// Texts sharing vocabulary land close together, which is enough for local runs and tests.
type HashProvider struct {
	Dimension int
}

func NewHashProvider(dimension int) *HashProvider {
	if dimension <= 0 {
		dimension = defaultHashDimension
	}
	return &HashProvider{Dimension: dimension}
}

func (p *HashProvider) Generate(_ context.Context, text string, _ string) ([]float32, error) {
	vec := make([]float64, p.Dimension)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[h.Sum32()%uint32(p.Dimension)]++
	}
	return unitLength(vec), nil
}

func (p *HashProvider) ModelName() string {
	return "hash"
}
