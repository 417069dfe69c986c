package tokenizer

import "errors"

// ErrTokenization marks failures to resolve or apply a model's encoding.
var ErrTokenization = errors.New("tokenization failed")

// Tokenizer converts text to ordered token ids and back. The ids are opaque
// to callers; their meaning is fixed by the model's vocabulary.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}
