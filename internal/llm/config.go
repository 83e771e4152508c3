package llm

import "os"

// defaultModel is used when GEMINI_MODEL is not set. Classification is a
// simple batched task, so the lite tier is sufficient.
const defaultModel = "gemini-2.5-flash-lite"

// defaultMaxOutputTokens caps the reply budget; the reply is a compact JSON
// array of id/impact pairs and never needs more.
const defaultMaxOutputTokens = 500

// Config holds the model configuration for the reasoning service.
type Config struct {
	Model           string
	MaxOutputTokens int32
}

// DefaultConfig returns the default configuration, honoring the GEMINI_MODEL
// environment variable when set.
func DefaultConfig() *Config {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &Config{
		Model:           model,
		MaxOutputTokens: defaultMaxOutputTokens,
	}
}
