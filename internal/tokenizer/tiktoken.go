package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// defaultEncoding is used when a model has no known mapping.
const defaultEncoding = "cl100k_base"

// Tiktoken wraps a tiktoken-go encoding behind the Tokenizer interface.
type Tiktoken struct {
	model string
	tke   *tiktoken.Tiktoken
}

// ForModel resolves the encoding for a model name. Unknown names are tried
// as encoding names before falling back to cl100k_base, so both
// "gpt-3.5-turbo" and "cl100k_base" are accepted.
func ForModel(model string) (*Tiktoken, error) {
	if model == "" {
		model = defaultEncoding
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding(model)
	}
	if err != nil {
		tke, err = tiktoken.GetEncoding(defaultEncoding)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: no encoding for model %q: %v", ErrTokenization, model, err)
	}
	return &Tiktoken{model: model, tke: tke}, nil
}

// Model returns the model (or encoding) name this tokenizer was built for.
func (t *Tiktoken) Model() string {
	return t.model
}

func (t *Tiktoken) Encode(text string) ([]int, error) {
	if t == nil || t.tke == nil {
		return nil, fmt.Errorf("%w: tokenizer not initialized", ErrTokenization)
	}
	return t.tke.Encode(text, nil, nil), nil
}

func (t *Tiktoken) Decode(ids []int) (string, error) {
	if t == nil || t.tke == nil {
		return "", fmt.Errorf("%w: tokenizer not initialized", ErrTokenization)
	}
	return t.tke.Decode(ids), nil
}
