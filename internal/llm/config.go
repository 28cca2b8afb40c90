// Package llm provides the capability interfaces for generative text and
// embeddings, plus the Gemini-backed implementation and a no-op stand-in
// used when no provider is configured.
package llm

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider (future)
	ProviderOpenAI Provider = "openai"
)

// Config holds the model configuration for the application
type Config struct {
	Provider        Provider
	GenerationModel string
	EmbeddingModel  string
	// Temperature for text generation; kept low for consistent reports.
	Temperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderGemini,
		GenerationModel: "gemini-2.5-flash",
		EmbeddingModel:  "text-embedding-004",
		Temperature:     0.2,
	}
}

// WithGenerationModel returns a copy of the config with the generation
// model replaced when the override is non-empty.
func (c *Config) WithGenerationModel(model string) *Config {
	out := *c
	if model != "" {
		out.GenerationModel = model
	}
	return &out
}

// WithEmbeddingModel returns a copy of the config with the embedding
// model replaced when the override is non-empty.
func (c *Config) WithEmbeddingModel(model string) *Config {
	out := *c
	if model != "" {
		out.EmbeddingModel = model
	}
	return &out
}
