// Package tokenizer estimates token counts for dump documents.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// NewCounter returns a Counter for the requested model, falling back to the
// default encoding when the model is unknown to tiktoken. The returned string
// is the effective model or encoding name.
func NewCounter(model string) (Counter, string, error) {
	effectiveModel := strings.ToLower(strings.TrimSpace(model))
	if effectiveModel == "" {
		effectiveModel = defaultModel
	}

	encoding, encodingError := tiktoken.EncodingForModel(effectiveModel)
	if encodingError == nil && encoding != nil {
		return openAICounter{encoding: encoding, name: effectiveModel}, effectiveModel, nil
	}

	fallbackEncoding, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackError)
	}
	return openAICounter{encoding: fallbackEncoding, name: defaultEncodingName}, defaultEncodingName, nil
}

type openAICounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter openAICounter) Name() string {
	return counter.name
}

func (counter openAICounter) CountString(input string) (int, error) {
	tokenIDs := counter.encoding.Encode(input, nil, nil)
	return len(tokenIDs), nil
}
