package rubric

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/minjae/interview-report/internal/observability"
)

// Coverage strategy identifiers.
const (
	MethodKeyword   = "keyword"
	MethodEmbedding = "embedding"
)

// Coverage is the result of evaluating aggregate answer text against a
// rubric.
type Coverage struct {
	CoveragePct      int      `json:"coveragePct"`
	Matched          []string `json:"matched"`
	Missing          []string `json:"missing"`
	SuggestedPhrases []string `json:"suggestedPhrases"`
	Method           string   `json:"method"`
}

// Embedder is the minimal embedding capability the semantic strategy
// needs. A nil Embedder is treated as an unavailable provider.
type Embedder interface {
	EmbedContent(ctx context.Context, text string) ([]float32, error)
}

// KeywordCoverage marks a rubric item matched when any of its keywords
// appears, case-insensitively, anywhere in the text. The percentage is
// round(matched/total*100). Deterministic and idempotent.
func KeywordCoverage(text string, r *Rubric) Coverage {
	cov := Coverage{
		Matched: []string{},
		Missing: []string{},
		Method:  MethodKeyword,
	}
	if r == nil || len(r.Items) == 0 {
		cov.SuggestedPhrases = []string{}
		return cov
	}
	cov.SuggestedPhrases = r.Suggestions

	lower := strings.ToLower(text)
	for _, item := range r.Items {
		if anyKeywordIn(lower, item.Keywords) {
			cov.Matched = append(cov.Matched, item.Label)
		} else {
			cov.Missing = append(cov.Missing, item.Label)
		}
	}
	cov.CoveragePct = int(math.Round(float64(len(cov.Matched)) / float64(len(r.Items)) * 100))
	return cov
}

// EmbeddingCoverage compares the document embedding against a
// representative phrase per rubric item and marks items whose cosine
// similarity meets the threshold. Any failure (missing provider,
// provider error, malformed vectors) silently falls back to the keyword
// strategy so that coverage is always computable.
func EmbeddingCoverage(ctx context.Context, emb Embedder, text string, r *Rubric, threshold float64) Coverage {
	cov, err := embeddingCoverage(ctx, emb, text, r, threshold)
	if err != nil {
		observability.CoverageFallbacks.Inc()
		return KeywordCoverage(text, r)
	}
	return cov
}

func embeddingCoverage(ctx context.Context, emb Embedder, text string, r *Rubric, threshold float64) (Coverage, error) {
	if emb == nil {
		return Coverage{}, fmt.Errorf("no embedder configured")
	}
	if r == nil || len(r.Items) == 0 {
		return Coverage{}, fmt.Errorf("empty rubric")
	}

	docVec, err := emb.EmbedContent(ctx, text)
	if err != nil {
		return Coverage{}, err
	}

	cov := Coverage{
		Matched:          []string{},
		Missing:          []string{},
		SuggestedPhrases: r.Suggestions,
		Method:           MethodEmbedding,
	}
	for _, item := range r.Items {
		itemVec, err := emb.EmbedContent(ctx, representative(item))
		if err != nil {
			return Coverage{}, err
		}
		sim, err := cosine(docVec, itemVec)
		if err != nil {
			return Coverage{}, err
		}
		if sim >= threshold {
			cov.Matched = append(cov.Matched, item.Label)
		} else {
			cov.Missing = append(cov.Missing, item.Label)
		}
	}
	cov.CoveragePct = int(math.Round(float64(len(cov.Matched)) / float64(len(r.Items)) * 100))
	return cov, nil
}

// representative picks the phrase embedded for a rubric item: the first
// worked example if provided, else the keyword list joined, else the label.
func representative(item Item) string {
	if len(item.Examples) > 0 && item.Examples[0] != "" {
		return item.Examples[0]
	}
	if len(item.Keywords) > 0 {
		return strings.Join(item.Keywords, " ")
	}
	return item.Label
}

func anyKeywordIn(lowerText string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowerText, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// cosine computes cosine similarity, rejecting malformed vectors.
func cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("vector dimensions mismatch: %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero-magnitude vector")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
