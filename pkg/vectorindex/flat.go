package vectorindex

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrInvalidDimension  = errors.New("invalid vector dimension")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrNonSequentialID   = errors.New("ids must be added sequentially")
)

// Hit is one search result. Distance is the squared euclidean distance.
type Hit struct {
	ID       int
	Distance float32
}

// Index is the vector index collaborator used by the indexer and retriever.
type Index interface {
	Add(id int, vector []float32) error
	Search(vector []float32, k int) ([]Hit, error)
	Len() int
	Dimension() int
}

// FlatIndex is an exact brute-force L2 index. Ids are dense positions starting at zero,
// so the id of a stored vector is also its slot.
type FlatIndex struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

var _ Index = (*FlatIndex)(nil)

func NewFlatIndex(dimension int) (*FlatIndex, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dimension)
	}
	return &FlatIndex{dimension: dimension}, nil
}

func (f *FlatIndex) Add(id int, vector []float32) error {
	if len(vector) != f.dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), f.dimension)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if id != len(f.vectors) {
		return fmt.Errorf("%w: got %d, want %d", ErrNonSequentialID, id, len(f.vectors))
	}

	stored := make([]float32, len(vector))
	copy(stored, vector)
	f.vectors = append(f.vectors, stored)
	return nil
}

// Search returns up to k hits ordered by ascending distance. Ties keep insertion order.
func (f *FlatIndex) Search(vector []float32, k int) ([]Hit, error) {
	if len(vector) != f.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), f.dimension)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if k > len(f.vectors) {
		k = len(f.vectors)
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{ID: i, Distance: squaredL2(v, vector)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	return hits[:k], nil
}

func (f *FlatIndex) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

func (f *FlatIndex) Dimension() int {
	return f.dimension
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
