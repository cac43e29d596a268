package cleaner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// ErrTokenization is returned when sentence boundary detection is unavailable or fails
var ErrTokenization = errors.New("sentence tokenization failed")

// SentenceSplitter breaks a span of text into natural-language sentences
type SentenceSplitter interface {
	Split(text string) ([]string, error)
}

// PunktSplitter splits sentences with the English Punkt model
type PunktSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunktSplitter loads the bundled English Punkt training data
func NewPunktSplitter() (*PunktSplitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load punkt model: %v", ErrTokenization, err)
	}
	return &PunktSplitter{tokenizer: tokenizer}, nil
}

// Split returns the trimmed, non-empty sentences of text in order
func (ps *PunktSplitter) Split(text string) (result []string, err error) {
	if ps == nil || ps.tokenizer == nil {
		return nil, fmt.Errorf("%w: tokenizer not initialized", ErrTokenization)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrTokenization, r)
		}
	}()

	for _, sentence := range ps.tokenizer.Tokenize(text) {
		if trimmed := strings.TrimSpace(sentence.Text); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result, nil
}
