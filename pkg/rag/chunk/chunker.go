package chunk

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDocument = errors.New("document contains no text")
	ErrInvalidSize   = errors.New("chunk size must be positive and larger than overlap")
)

// Chunk is a contiguous slice of the source text. SourceOffset is measured in runes.
type Chunk struct {
	Text         string `json:"text"`
	SourceOffset int    `json:"source_offset"`
}

// Split cuts text into windows of size characters advancing by size-overlap.
// Characters are Unicode code points, so multi-byte text is never split mid-rune.
// The final window may be shorter than size.
func Split(text string, size int, overlap int) ([]Chunk, error) {
	if text == "" {
		return nil, ErrEmptyDocument
	}
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidSize, size, overlap)
	}

	runes := []rune(text)
	total := len(runes)
	step := size - overlap

	chunks := make([]Chunk, 0, (total+step-1)/step)
	for i := 0; i < total; i += step {
		end := i + size
		if end > total {
			end = total
		}
		chunks = append(chunks, Chunk{
			Text:         string(runes[i:end]),
			SourceOffset: i,
		})
	}

	return chunks, nil
}

// Reassemble rebuilds the original text from chunks produced by Split,
// keeping only the part of each chunk that was not covered by its predecessor.
func Reassemble(chunks []Chunk) string {
	var out []rune
	for i, c := range chunks {
		r := []rune(c.Text)
		if i > 0 {
			skip := len(out) - c.SourceOffset
			if skip < 0 {
				skip = 0
			}
			if skip > len(r) {
				skip = len(r)
			}
			r = r[skip:]
		}
		out = append(out, r...)
	}
	return string(out)
}
