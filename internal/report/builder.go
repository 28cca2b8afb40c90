package report

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/minjae/interview-report/internal/analytics"
	"github.com/minjae/interview-report/internal/augment"
	"github.com/minjae/interview-report/internal/config"
	"github.com/minjae/interview-report/internal/llm"
	"github.com/minjae/interview-report/internal/observability"
	"github.com/minjae/interview-report/internal/rubric"
	"github.com/minjae/interview-report/internal/transcript"
)

// keywordTopN is the size of the report keyword profile.
const keywordTopN = 12

// Deterministic fallback strings used when augmentation is off or fails.
const (
	fallbackOneLiner        = "강점은 의사소통/태도, 사례 구체화 보완 필요"
	fallbackModelAnswerDiff = "모범답안은 사례 기반·정량 성과 제시, 실제 답변은 원론적 설명 위주"
	fallbackRisk            = "답변 일부 모호"
	fallbackName            = "지원자"
)

// Trend chart clamp bounds; a display contract, not a scoring claim.
const (
	trendFloor = 40
	trendCeil  = 95
)

// learningMax caps the learning suggestions carried into the report.
const learningMax = 3

// Builder orchestrates report synthesis over the injected stores and
// providers. Concurrent builds for the same session identity are
// collapsed to a single in-flight build.
type Builder struct {
	sessions SessionStore
	events   EventStore
	reports  ReportStore
	cfg      *config.Analytics
	gen      llm.Generator
	emb      llm.Embedder
	log      *logrus.Logger
	group    singleflight.Group
}

// NewBuilder wires a Builder. A nil generator or embedder is replaced by
// the no-op provider, so deeper code never branches on configuration.
func NewBuilder(sessions SessionStore, events EventStore, reports ReportStore,
	cfg *config.Analytics, gen llm.Generator, emb llm.Embedder, log *logrus.Logger) *Builder {
	if gen == nil {
		gen = llm.Noop{}
	}
	if emb == nil {
		emb = llm.Noop{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Builder{
		sessions: sessions,
		events:   events,
		reports:  reports,
		cfg:      cfg,
		gen:      gen,
		emb:      emb,
		log:      log,
	}
}

// BuildReport materializes and persists a fresh report for the session.
// It fails only when the session identity cannot be resolved or storage
// breaks; all analytics-internal failures are absorbed by fallbacks.
func (b *Builder) BuildReport(ctx context.Context, sessionID uuid.UUID, flags config.Flags) (*Report, error) {
	v, err, _ := b.group.Do(sessionID.String(), func() (any, error) {
		return b.build(ctx, sessionID, flags)
	})
	if err != nil {
		observability.ReportBuilds.WithLabelValues("error").Inc()
		return nil, err
	}
	observability.ReportBuilds.WithLabelValues("ok").Inc()
	return v.(*Report), nil
}

// GetReport serves the persisted report, transparently rebuilding when
// the stored one is missing or degenerate.
func (b *Builder) GetReport(ctx context.Context, sessionID uuid.UUID, flags config.Flags) (*Report, error) {
	rpt, err := b.reports.GetReport(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	if IsStale(rpt) {
		observability.RebuildTriggers.Inc()
		b.log.WithField("session_id", sessionID).Info("stale report, rebuilding")
		return b.BuildReport(ctx, sessionID, flags)
	}
	return rpt, nil
}

// DeleteReport drops the stored report for a session, forcing the next
// read to rebuild from the transcript.
func (b *Builder) DeleteReport(ctx context.Context, sessionID uuid.UUID) error {
	if err := b.reports.DeleteReport(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	b.log.WithField("session_id", sessionID).Info("report deleted")
	return nil
}

// ModelAnswerForRound produces a best-effort model answer for one round,
// or "" when augmentation is off or unavailable.
func (b *Builder) ModelAnswerForRound(ctx context.Context, round augment.RoundLite, flags config.Flags) string {
	resolved := b.cfg.Resolve(flags)
	return augment.ModelAnswer(ctx, b.generator(resolved), round)
}

func (b *Builder) build(ctx context.Context, sessionID uuid.UUID, flags config.Flags) (*Report, error) {
	sess, err := b.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return nil, &SessionNotFoundError{SessionID: sessionID}
	}

	resolved := b.cfg.Resolve(flags)

	var events []transcript.Event
	if len(sess.Rounds) == 0 {
		events, err = b.events.ListEvents(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transcript: %w", err)
		}
	}
	rounds := transcript.BuildRounds(sess.Rounds, events)

	stars := make([]analytics.STAR, len(rounds))
	signals := make([]analytics.RoundSignal, len(rounds))
	timings := make([]analytics.RoundTiming, len(rounds))
	for i, r := range rounds {
		stars[i] = analytics.ScoreSTAR(r.Answer)
		signals[i] = analytics.RoundSignal{StarScore: stars[i].Score, AnswerText: r.Answer}
		timings[i] = analytics.RoundTiming{
			AnswerText:    r.Answer,
			AnswerSec:     r.AnswerSec,
			MaxSilenceSec: r.MaxSilenceSec,
		}
		b.log.WithFields(logrus.Fields{
			"round":          r.Index,
			"star":           stars[i].Score,
			"wpm":            analytics.WordsPerMinute(r.Answer, r.AnswerSec),
			"filler_per_min": analytics.FillerPerMinute(r.Answer, r.AnswerSec/60),
		}).Debug("round delivery")
	}

	allText := transcript.JoinAnswers(rounds)
	rb := rubric.Load(b.cfg.RubricDir, sess.JobRole)

	// Coverage, skills, keywords, and speech stats are mutually
	// independent and share no mutable state.
	var (
		coverage rubric.Coverage
		skills   []analytics.SkillScore
		keywords []analytics.Keyword
		speech   analytics.SpeechStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if resolved.Embeddings {
			coverage = rubric.EmbeddingCoverage(gctx, b.emb, allText, rb, resolved.SimilarityThreshold)
		} else {
			coverage = rubric.KeywordCoverage(allText, rb)
		}
		return nil
	})
	g.Go(func() error { skills = analytics.SkillsFromRounds(signals); return nil })
	g.Go(func() error { keywords = analytics.TopKeywords(allText, keywordTopN); return nil })
	g.Go(func() error { speech = analytics.ComputeSpeechStats(timings); return nil })
	_ = g.Wait()

	totalScore := overallScore(skills)
	passBand := PassBandFor(totalScore)

	answers := make([]string, len(rounds))
	for i, r := range rounds {
		answers[i] = r.Answer
	}
	oneLiner := augment.Summary(ctx, b.generator(resolved), augment.SummaryInput{
		TotalScore:  totalScore,
		CoveragePct: coverage.CoveragePct,
		Missing:     coverage.Missing,
		Answers:     answers,
	})
	if oneLiner == "" {
		oneLiner = fallbackOneLiner
	}

	doc := &Report{
		SessionID: sessionID,
		Basic: Basic{
			Name:          candidateName(sess),
			JobRole:       sess.JobRole,
			InterviewedAt: interviewedAt(sess),
			Interviewers:  notNil(sess.Interviewers),
			Rounds:        len(rounds),
		},
		Summary: Summary{
			TotalScore: totalScore,
			PassBand:   passBand,
			OneLiner:   oneLiner,
		},
		Rounds: reportRounds(rounds),
		Skills: skills,
		Viz: Viz{
			Radar:    skills,
			Trend:    trendPoints(rounds, stars),
			Keywords: keywords,
		},
		Extra: Extra{
			ModelAnswerDiff: fallbackModelAnswerDiff,
			Risks:           risksFrom(coverage),
			Learning:        learningFrom(coverage),
		},
	}

	if err := b.reports.UpsertReport(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	b.log.WithFields(logrus.Fields{
		"session_id":      sessionID,
		"rounds":          len(rounds),
		"total_score":     totalScore,
		"pass_band":       passBand,
		"coverage_method": coverage.Method,
		"coverage_pct":    coverage.CoveragePct,
		"avg_wpm":         speech.AvgWPM,
	}).Info("report built")

	return doc, nil
}

// generator applies the generation feature flag: when off, the no-op
// provider stands in and augmentation degrades to its fallbacks.
func (b *Builder) generator(resolved config.Resolved) llm.Generator {
	if !resolved.Generator {
		return llm.Noop{}
	}
	return b.gen
}

// overallScore is round(mean(five skill scores) * 20) on the 0–100 scale.
func overallScore(skills []analytics.SkillScore) int {
	if len(skills) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range skills {
		sum += s.Score
	}
	return int(math.Round(sum / float64(len(skills)) * 20))
}

func reportRounds(rounds []transcript.Round) []Round {
	out := make([]Round, len(rounds))
	for i, r := range rounds {
		out[i] = Round{
			Round:    r.Index,
			Question: r.Question,
			Answer:   r.Answer,
			Pros:     []string{},
			Cons:     []string{},
			Score:    r.Score,
		}
	}
	return out
}

// trendPoints clamps each round's STAR score into the trend display band.
func trendPoints(rounds []transcript.Round, stars []analytics.STAR) []TrendPoint {
	out := make([]TrendPoint, len(rounds))
	for i, r := range rounds {
		score := stars[i].Score
		if score < trendFloor {
			score = trendFloor
		}
		if score > trendCeil {
			score = trendCeil
		}
		out[i] = TrendPoint{Round: r.Index, Score: score}
	}
	return out
}

func risksFrom(cov rubric.Coverage) []string {
	if len(cov.Missing) > 0 {
		return []string{"누락된 루브릭: " + strings.Join(cov.Missing, ", ")}
	}
	return []string{fallbackRisk}
}

func learningFrom(cov rubric.Coverage) []string {
	learning := cov.SuggestedPhrases
	if len(learning) > learningMax {
		learning = learning[:learningMax]
	}
	return notNil(learning)
}

func candidateName(sess *Session) string {
	if sess.UserName != "" {
		return sess.UserName
	}
	if sess.UserID != "" {
		return sess.UserID
	}
	return fallbackName
}

// interviewedAt prefers the session end time, then creation, then start.
func interviewedAt(sess *Session) time.Time {
	if !sess.EndedAt.IsZero() {
		return sess.EndedAt
	}
	if !sess.CreatedAt.IsZero() {
		return sess.CreatedAt
	}
	return sess.StartedAt
}

func notNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
