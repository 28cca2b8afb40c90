// Package augment layers optional generative-text enrichment on top of
// the deterministic report pipeline: a session-level summary and
// per-round model answers. Both operations are best-effort; any provider
// failure degrades to "no augmentation" and never blocks synthesis.
package augment

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/minjae/interview-report/internal/llm"
	"github.com/minjae/interview-report/internal/observability"
	"github.com/minjae/interview-report/internal/prompts"
)

// answerExcerptLimit bounds how much of each round answer is quoted in
// the summary prompt.
const answerExcerptLimit = 220

// maxSummaryAnswers bounds how many round answers the summary prompt sees.
const maxSummaryAnswers = 5

// SummaryInput is the deterministic context handed to the summary prompt.
type SummaryInput struct {
	TotalScore  int
	CoveragePct int
	Missing     []string
	Answers     []string
}

// RoundLite is the minimal round shape the model-answer prompt needs.
type RoundLite struct {
	Question string `json:"question"`
	Type     string `json:"type,omitempty"`
}

// Summary generates a prose session summary. It returns "" when the
// provider is off, unavailable, or errors; callers substitute their
// deterministic fallback string.
func Summary(ctx context.Context, gen llm.Generator, in SummaryInput) string {
	bullets := make([]string, 0, maxSummaryAnswers)
	for i, answer := range in.Answers {
		if i == maxSummaryAnswers {
			break
		}
		bullets = append(bullets, strconv.Itoa(i+1)+") "+excerpt(answer, answerExcerptLimit))
	}

	prompt := prompts.Format(prompts.MustGet("report.json", "summary"), map[string]string{
		"TotalScore":  strconv.Itoa(in.TotalScore),
		"CoveragePct": strconv.Itoa(in.CoveragePct),
		"Missing":     strings.Join(in.Missing, ", "),
		"Answers":     strings.Join(bullets, "\n"),
	})

	out, err := gen.GenerateContent(ctx, prompt)
	if err != nil {
		observability.AugmentFailures.WithLabelValues("summary").Inc()
		logrus.WithError(err).Debug("summary augmentation unavailable")
		return ""
	}
	return strings.TrimSpace(out)
}

// ModelAnswer generates a model answer for one round. Returns "" on any
// failure.
func ModelAnswer(ctx context.Context, gen llm.Generator, round RoundLite) string {
	prompt := prompts.Format(prompts.MustGet("report.json", "model_answer"), map[string]string{
		"Question": round.Question,
		"Type":     round.Type,
	})

	out, err := gen.GenerateContent(ctx, prompt)
	if err != nil {
		observability.AugmentFailures.WithLabelValues("model_answer").Inc()
		logrus.WithError(err).Debug("model answer augmentation unavailable")
		return ""
	}
	return strings.TrimSpace(out)
}

// excerpt truncates on rune boundaries.
func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
