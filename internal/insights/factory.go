package insights

import (
	"fmt"
	"strings"
)

// NewSummarizer creates a Summarizer based on the provided configuration.
// An empty provider selects the static summarizer.
func NewSummarizer(cfg Config) (Summarizer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "static":
		return staticSummarizer{}, nil
	case "openai":
		c, err := newOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "anthropic":
		c, err := newAnthropicClient(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported insights provider: %s", cfg.Provider)
	}
}
