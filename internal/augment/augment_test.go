package augment

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjae/interview-report/internal/llm"
)

// stubGenerator records the prompt and returns a canned response.
type stubGenerator struct {
	prompt string
	out    string
	err    error
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func TestSummary_UsesPromptContext(t *testing.T) {
	gen := &stubGenerator{out: " 요약 결과 "}
	in := SummaryInput{
		TotalScore:  72,
		CoveragePct: 60,
		Missing:     []string{"협업/소통", "논리 구조"},
		Answers:     []string{"첫 답변", "둘째 답변"},
	}

	out := Summary(context.Background(), gen, in)
	assert.Equal(t, "요약 결과", out)
	assert.Contains(t, gen.prompt, "세션 점수=72")
	assert.Contains(t, gen.prompt, "60%")
	assert.Contains(t, gen.prompt, "협업/소통, 논리 구조")
	assert.Contains(t, gen.prompt, "1) 첫 답변")
	assert.Contains(t, gen.prompt, "2) 둘째 답변")
}

func TestSummary_BoundsAnswerContext(t *testing.T) {
	gen := &stubGenerator{out: "ok"}
	long := strings.Repeat("가", 500)
	answers := make([]string, 8)
	for i := range answers {
		answers[i] = long
	}

	Summary(context.Background(), gen, SummaryInput{Answers: answers})
	assert.NotContains(t, gen.prompt, "6) ", "at most five answers quoted")
	assert.Contains(t, gen.prompt, "5) ")
	// Each excerpt is bounded to 220 runes.
	require.NotContains(t, gen.prompt, strings.Repeat("가", 221))
}

func TestSummary_ProviderFailureReturnsEmpty(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("quota exceeded")}
	assert.Equal(t, "", Summary(context.Background(), gen, SummaryInput{TotalScore: 10}))
}

func TestSummary_NoopProviderReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", Summary(context.Background(), llm.Noop{}, SummaryInput{}))
}

func TestModelAnswer_FormatsRound(t *testing.T) {
	gen := &stubGenerator{out: "모범답안입니다"}
	out := ModelAnswer(context.Background(), gen, RoundLite{Question: "갈등 해결 경험은?", Type: "behavioral"})

	assert.Equal(t, "모범답안입니다", out)
	assert.Contains(t, gen.prompt, "질문: 갈등 해결 경험은?")
	assert.Contains(t, gen.prompt, "의도: behavioral")
}

func TestModelAnswer_FailureReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", ModelAnswer(context.Background(), llm.Noop{}, RoundLite{Question: "q"}))
}
