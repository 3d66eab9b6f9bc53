// Package tokens estimates prompt cost for history budgeting.
package tokens

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// encodingFor maps model names to their tiktoken encoding.
var encodingFor = map[string]string{
	"gpt-4o":                "o200k_base",
	"gpt-4o-mini":           "o200k_base",
	"gpt-4o-search-preview": "o200k_base",
	"gpt-4-turbo":           "cl100k_base",
	"gpt-4":                 "cl100k_base",
	"gpt-3.5-turbo":         "cl100k_base",
}

// Counter counts tokens with tiktoken. Encodings initialize lazily
// (the first use may load encoding data) and are cached per encoding
// name. When tiktoken cannot initialize, the counter degrades to a
// bytes/4 heuristic rather than failing the request.
type Counter struct {
	mu       sync.Mutex
	encoders map[string]*tiktoken.Tiktoken
}

// NewCounter builds an empty counter.
func NewCounter() *Counter {
	return &Counter{encoders: map[string]*tiktoken.Tiktoken{}}
}

func encodingName(model string) string {
	if enc, ok := encodingFor[model]; ok {
		return enc
	}
	for prefix, enc := range encodingFor {
		if len(model) >= len(prefix) && model[:len(prefix)] == prefix {
			return enc
		}
	}
	return "cl100k_base"
}

func (c *Counter) encoder(model string) *tiktoken.Tiktoken {
	name := encodingName(model)

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encoders[name]; ok {
		return enc
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		// Cache the failure as nil so we don't retry per call.
		c.encoders[name] = nil
		return nil
	}
	c.encoders[name] = enc
	return enc
}

// Count returns the token count of text for the model.
func (c *Counter) Count(model, text string) int {
	if enc := c.encoder(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	// Rough heuristic: about four bytes per token.
	return (len(text) + 3) / 4
}
