package chunker

import (
	"errors"
	"fmt"

	"rag-prep/internal/tokenizer"
)

// ErrInvalidParameter marks a chunk size / overlap combination the sliding
// window cannot terminate on.
var ErrInvalidParameter = errors.New("invalid chunk parameters")

// Options controls how text is chunked.
type Options struct {
	// ChunkSize is the maximum tokens per chunk. Must be positive.
	ChunkSize int
	// Overlap is the number of tokens shared between consecutive chunks.
	// Must satisfy 0 <= Overlap < ChunkSize.
	Overlap int
}

// Validate reports whether the options describe a terminating window.
// Overlap >= ChunkSize would make the step non-positive and the loop would
// never advance, so it is rejected up front.
func (o Options) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidParameter, o.ChunkSize)
	}
	if o.Overlap < 0 {
		return fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidParameter, o.Overlap)
	}
	if o.Overlap >= o.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be less than chunk size %d", ErrInvalidParameter, o.Overlap, o.ChunkSize)
	}
	return nil
}

// Chunk is a decoded window of the document's token sequence.
type Chunk struct {
	Index      int
	Text       string
	StartToken int
	TokenCount int
}

// Split encodes text with the given tokenizer and slides a fixed-size window
// over the token sequence, decoding each window back to text. Windows start
// every ChunkSize-Overlap tokens; the last window is truncated at the end of
// the sequence and may be shorter than ChunkSize. Empty text yields no chunks.
func Split(tok tokenizer.Tokenizer, text string, opts Options) ([]Chunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	ids, err := tok.Encode(text)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	step := opts.ChunkSize - opts.Overlap
	for start := 0; start < len(ids); start += step {
		end := start + opts.ChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		decoded, err := tok.Decode(ids[start:end])
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Text:       decoded,
			StartToken: start,
			TokenCount: end - start,
		})
	}
	return chunks, nil
}
