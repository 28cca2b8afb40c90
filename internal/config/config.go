// Package config resolves the analytics pipeline configuration: defaults
// computed from provider availability, environment overrides, and
// per-request flag overrides, merged once per call into an immutable
// value. Deeper components never read ambient state.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces all pipeline tunables, e.g. REPORT_EMBEDDING_MODEL.
const envPrefix = "REPORT_"

// DefaultSimilarityThreshold is the cosine similarity cutoff for the
// embedding coverage strategy.
const DefaultSimilarityThreshold = 0.74

// DefaultRubricDir is where role-specific rubric definitions live.
const DefaultRubricDir = "rubrics"

// Analytics is the environment-resolved configuration of the report
// pipeline. Boolean feature defaults follow provider availability: the
// generator defaults on when an API key is present, embeddings default
// on when an embedding model is named.
type Analytics struct {
	GeminiAPIKey        string
	GenerationModel     string
	EmbeddingModel      string
	SimilarityThreshold float64
	RubricDir           string
	UseGenerator        bool
	UseEmbeddings       bool
}

// Flags carries per-request overrides. Nil means "not specified"; the
// environment (or computed default) applies.
type Flags struct {
	Generator  *bool `json:"generator,omitempty"`
	Embeddings *bool `json:"embeddings,omitempty"`
}

// Resolved is the effective, immutable per-call configuration after
// merging request overrides over environment values over computed
// defaults.
type Resolved struct {
	Generator           bool
	Embeddings          bool
	GenerationModel     string
	EmbeddingModel      string
	SimilarityThreshold float64
}

// Load reads the analytics configuration from the environment.
// Recognized variables: GEMINI_API_KEY plus the REPORT_-prefixed
// GENERATION_MODEL, EMBEDDING_MODEL, SIMILARITY_THRESHOLD, RUBRIC_DIR,
// USE_GENERATOR, and USE_EMBEDDINGS.
func Load() (*Analytics, error) {
	k := koanf.New(".")
	provider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	cfg := &Analytics{
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GenerationModel:     k.String("generation_model"),
		EmbeddingModel:      k.String("embedding_model"),
		SimilarityThreshold: DefaultSimilarityThreshold,
		RubricDir:           DefaultRubricDir,
	}
	if s := k.String("similarity_threshold"); s != "" {
		cfg.SimilarityThreshold = k.Float64("similarity_threshold")
	}
	if s := k.String("rubric_dir"); s != "" {
		cfg.RubricDir = s
	}

	// Provider-availability defaults, overridable by explicit env flags.
	cfg.UseGenerator = cfg.GeminiAPIKey != ""
	cfg.UseEmbeddings = cfg.EmbeddingModel != ""
	if v, ok := ParseBool(k.String("use_generator")); ok {
		cfg.UseGenerator = v
	}
	if v, ok := ParseBool(k.String("use_embeddings")); ok {
		cfg.UseEmbeddings = v
	}

	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("similarity threshold must be in (0, 1], got %v", cfg.SimilarityThreshold)
	}
	return cfg, nil
}

// Resolve merges per-request flags over the environment-derived values.
// Precedence: request override > environment > computed default.
func (a *Analytics) Resolve(f Flags) Resolved {
	r := Resolved{
		Generator:           a.UseGenerator,
		Embeddings:          a.UseEmbeddings,
		GenerationModel:     a.GenerationModel,
		EmbeddingModel:      a.EmbeddingModel,
		SimilarityThreshold: a.SimilarityThreshold,
	}
	if f.Generator != nil {
		r.Generator = *f.Generator
	}
	if f.Embeddings != nil {
		r.Embeddings = *f.Embeddings
	}
	return r
}

// ParseBool interprets a flag string the way the report API accepts it:
// 1/true/on/yes/y (any case) are true, any other non-empty value is
// false. The second return reports whether a value was present at all.
func ParseBool(s string) (bool, bool) {
	if s == "" {
		return false, false
	}
	switch strings.ToLower(s) {
	case "1", "true", "on", "yes", "y":
		return true, true
	default:
		return false, true
	}
}
