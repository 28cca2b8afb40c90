package report

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjae/interview-report/internal/analytics"
	"github.com/minjae/interview-report/internal/augment"
	"github.com/minjae/interview-report/internal/config"
	"github.com/minjae/interview-report/internal/transcript"
)

// fakeStores is an in-memory SessionStore, EventStore, and ReportStore.
type fakeStores struct {
	session *Session
	events  []transcript.Event
	saved   *Report
	upserts int
	deletes int

	sessionErr error
	reportErr  error
}

func (f *fakeStores) GetSession(_ context.Context, _ uuid.UUID) (*Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeStores) ListEvents(_ context.Context, _ uuid.UUID) ([]transcript.Event, error) {
	return f.events, nil
}

func (f *fakeStores) UpsertReport(_ context.Context, r *Report) error {
	f.saved = r
	f.upserts++
	return nil
}

func (f *fakeStores) GetReport(_ context.Context, _ uuid.UUID) (*Report, error) {
	return f.saved, f.reportErr
}

func (f *fakeStores) DeleteReport(_ context.Context, _ uuid.UUID) error {
	f.saved = nil
	f.deletes++
	return nil
}

// blockingStores parks every session lookup until release is closed,
// letting tests pile up concurrent builds behind one in-flight call.
type blockingStores struct {
	fakeStores
	release chan struct{}
	lookups int32
}

func (f *blockingStores) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	atomic.AddInt32(&f.lookups, 1)
	<-f.release
	return f.fakeStores.GetSession(ctx, id)
}

type stubGenerator struct {
	reply string
	err   error
}

func (s stubGenerator) GenerateContent(_ context.Context, _ string) (string, error) {
	return s.reply, s.err
}

func testConfig(t *testing.T) *config.Analytics {
	t.Helper()
	return &config.Analytics{
		SimilarityThreshold: config.DefaultSimilarityThreshold,
		RubricDir:           t.TempDir(),
	}
}

func newTestBuilder(t *testing.T, stores *fakeStores) *Builder {
	t.Helper()
	return NewBuilder(stores, stores, stores, testConfig(t), nil, nil, nil)
}

func singleRoundSession(id uuid.UUID) *Session {
	return &Session{
		ID:       id,
		UserName: "김민재",
		JobRole:  "backend",
		EndedAt:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func singleRoundEvents() []transcript.Event {
	return []transcript.Event{
		{"role": "interviewer", "text": "어려웠던 프로젝트 경험을 말씀해주세요"},
		{"role": "candidate", "text": "상황은 어려웠지만 결과를 30% 개선했습니다"},
	}
}

func TestBuildReport_SingleRoundEndToEnd(t *testing.T) {
	id := uuid.New()
	stores := &fakeStores{session: singleRoundSession(id), events: singleRoundEvents()}
	b := newTestBuilder(t, stores)

	rpt, err := b.BuildReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	require.NotNil(t, rpt)

	assert.Equal(t, id, rpt.SessionID)
	assert.Equal(t, "김민재", rpt.Basic.Name)
	assert.Equal(t, "backend", rpt.Basic.JobRole)
	assert.Equal(t, 1, rpt.Basic.Rounds)

	// 상황 + 결과(30%) hits S and R, so the STAR score is 50; the
	// weighted five-dimension scores average to 2.1, rescaled to 42.
	assert.Equal(t, 42, rpt.Summary.TotalScore)
	assert.Equal(t, Below, rpt.Summary.PassBand)
	assert.Equal(t, fallbackOneLiner, rpt.Summary.OneLiner)

	require.Len(t, rpt.Skills, 5)
	byKey := map[string]float64{}
	for _, s := range rpt.Skills {
		byKey[s.Key] = s.Score
	}
	assert.InDelta(t, 2.2, byKey["communication"], 1e-9)
	assert.InDelta(t, 2.0, byKey["logic"], 1e-9)
	assert.InDelta(t, 2.1, byKey["expertise"], 1e-9)
	assert.InDelta(t, 2.0, byKey["problemSolving"], 1e-9)
	assert.InDelta(t, 2.2, byKey["attitude"], 1e-9)

	require.Len(t, rpt.Rounds, 1)
	assert.Equal(t, "어려웠던 프로젝트 경험을 말씀해주세요", rpt.Rounds[0].Question)
	assert.Equal(t, "상황은 어려웠지만 결과를 30% 개선했습니다", rpt.Rounds[0].Answer)
	assert.NotNil(t, rpt.Rounds[0].Pros)
	assert.NotNil(t, rpt.Rounds[0].Cons)

	require.Len(t, rpt.Viz.Trend, 1)
	assert.Equal(t, 50, rpt.Viz.Trend[0].Score)
	assert.NotEmpty(t, rpt.Viz.Keywords)
	assert.NotEmpty(t, rpt.Extra.Risks)

	assert.Equal(t, 1, stores.upserts)
	assert.Same(t, rpt, stores.saved)
}

func TestBuildReport_StructuredRoundsSkipEvents(t *testing.T) {
	id := uuid.New()
	sess := singleRoundSession(id)
	sess.Rounds = []map[string]any{
		{
			"idx":      float64(1),
			"question": "자기소개 부탁드립니다",
			"answer":   map[string]any{"text": "상황과 과제를 분석해 행동했고 결과가 좋았습니다"},
		},
	}
	// Events deliberately contradict the structured rounds; they must
	// not be consulted.
	stores := &fakeStores{session: sess, events: singleRoundEvents()}
	b := newTestBuilder(t, stores)

	rpt, err := b.BuildReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	require.Len(t, rpt.Rounds, 1)
	assert.Equal(t, "자기소개 부탁드립니다", rpt.Rounds[0].Question)
}

func TestBuildReport_NoRounds(t *testing.T) {
	id := uuid.New()
	stores := &fakeStores{session: singleRoundSession(id)}
	b := newTestBuilder(t, stores)

	rpt, err := b.BuildReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)

	assert.Equal(t, 0, rpt.Basic.Rounds)
	assert.Equal(t, 0, rpt.Summary.TotalScore)
	assert.Equal(t, Below, rpt.Summary.PassBand)
	assert.NotNil(t, rpt.Rounds)
	assert.Empty(t, rpt.Rounds)
	assert.NotNil(t, rpt.Viz.Keywords)
	assert.Empty(t, rpt.Viz.Keywords)
	assert.Empty(t, rpt.Viz.Trend)
	// An empty report is still persisted; staleness detection handles it.
	assert.Equal(t, 1, stores.upserts)
}

func TestBuildReport_Deterministic(t *testing.T) {
	id := uuid.New()
	stores := &fakeStores{session: singleRoundSession(id), events: singleRoundEvents()}
	b := newTestBuilder(t, stores)

	first, err := b.BuildReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	second, err := b.BuildReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, stores.upserts)
}

func TestBuildReport_SessionNotFound(t *testing.T) {
	stores := &fakeStores{}
	b := newTestBuilder(t, stores)

	_, err := b.BuildReport(context.Background(), uuid.New(), config.Flags{})
	var notFound *SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Zero(t, stores.upserts)
}

func TestBuildReport_SessionStoreError(t *testing.T) {
	stores := &fakeStores{sessionErr: errors.New("connection refused")}
	b := newTestBuilder(t, stores)

	_, err := b.BuildReport(context.Background(), uuid.New(), config.Flags{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load session")
}

func TestBuildReport_GeneratorSummaryUsed(t *testing.T) {
	id := uuid.New()
	stores := &fakeStores{session: singleRoundSession(id), events: singleRoundEvents()}
	cfg := testConfig(t)
	cfg.UseGenerator = true
	b := NewBuilder(stores, stores, stores, cfg, stubGenerator{reply: "간결한 총평입니다"}, nil, nil)

	rpt, err := b.BuildReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	assert.Equal(t, "간결한 총평입니다", rpt.Summary.OneLiner)
}

func TestBuildReport_GeneratorFailureFallsBack(t *testing.T) {
	id := uuid.New()
	stores := &fakeStores{session: singleRoundSession(id), events: singleRoundEvents()}
	cfg := testConfig(t)
	cfg.UseGenerator = true
	b := NewBuilder(stores, stores, stores, cfg, stubGenerator{err: errors.New("quota exceeded")}, nil, nil)

	rpt, err := b.BuildReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	assert.Equal(t, fallbackOneLiner, rpt.Summary.OneLiner)
}

func TestBuildReport_GeneratorFlagOffIgnoresProvider(t *testing.T) {
	id := uuid.New()
	stores := &fakeStores{session: singleRoundSession(id), events: singleRoundEvents()}
	// Generator present but disabled; its output must not leak in.
	b := NewBuilder(stores, stores, stores, testConfig(t), stubGenerator{reply: "무시되어야 함"}, nil, nil)

	rpt, err := b.BuildReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	assert.Equal(t, fallbackOneLiner, rpt.Summary.OneLiner)
}

func TestGetReport_ReturnsStoredWhenFresh(t *testing.T) {
	id := uuid.New()
	stored := &Report{
		SessionID: id,
		Rounds:    []Round{{Round: 1}},
		Summary:   Summary{TotalScore: 77},
	}
	stores := &fakeStores{saved: stored}
	b := newTestBuilder(t, stores)

	rpt, err := b.GetReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	assert.Same(t, stored, rpt)
	assert.Zero(t, stores.upserts)
}

func TestGetReport_RebuildsWhenMissing(t *testing.T) {
	id := uuid.New()
	stores := &fakeStores{session: singleRoundSession(id), events: singleRoundEvents()}
	b := newTestBuilder(t, stores)

	rpt, err := b.GetReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	assert.Equal(t, 42, rpt.Summary.TotalScore)
	assert.Equal(t, 1, stores.upserts)
}

func TestGetReport_RebuildsDegenerateReport(t *testing.T) {
	id := uuid.New()
	stores := &fakeStores{
		session: singleRoundSession(id),
		events:  singleRoundEvents(),
		saved:   &Report{SessionID: id, Rounds: []Round{{Round: 1}}, Summary: Summary{TotalScore: 0}},
	}
	b := newTestBuilder(t, stores)

	rpt, err := b.GetReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	assert.Equal(t, 42, rpt.Summary.TotalScore)
	assert.Equal(t, 1, stores.upserts)
}

func TestGetReport_StorageError(t *testing.T) {
	stores := &fakeStores{reportErr: errors.New("relation does not exist")}
	b := newTestBuilder(t, stores)

	_, err := b.GetReport(context.Background(), uuid.New(), config.Flags{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read report")
}

func TestModelAnswerForRound_OffByDefault(t *testing.T) {
	stores := &fakeStores{}
	b := NewBuilder(stores, stores, stores, testConfig(t), stubGenerator{reply: "모범답안"}, nil, nil)

	got := b.ModelAnswerForRound(context.Background(), augment.RoundLite{Question: "질문"}, config.Flags{})
	assert.Equal(t, "", got)
}

func TestModelAnswerForRound_FlagOn(t *testing.T) {
	stores := &fakeStores{}
	b := NewBuilder(stores, stores, stores, testConfig(t), stubGenerator{reply: "모범답안"}, nil, nil)

	on := true
	got := b.ModelAnswerForRound(context.Background(), augment.RoundLite{Question: "질문"}, config.Flags{Generator: &on})
	assert.Equal(t, "모범답안", got)
}

func TestBuildReport_ConcurrentBuildsCollapse(t *testing.T) {
	id := uuid.New()
	stores := &blockingStores{
		fakeStores: fakeStores{session: singleRoundSession(id), events: singleRoundEvents()},
		release:    make(chan struct{}),
	}
	b := NewBuilder(stores, stores, stores, testConfig(t), nil, nil, nil)

	const callers = 10
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		results [callers]*Report
		errs    [callers]error
	)
	started.Add(callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			started.Done()
			results[i], errs[i] = b.BuildReport(context.Background(), id, config.Flags{})
		}(i)
	}
	started.Wait()
	// Give every caller time to join the in-flight build before it runs.
	time.Sleep(50 * time.Millisecond)
	close(stores.release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&stores.lookups))
	assert.Equal(t, 1, stores.upserts)
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestDeleteReport_ForcesRebuildOnNextRead(t *testing.T) {
	id := uuid.New()
	stores := &fakeStores{session: singleRoundSession(id), events: singleRoundEvents()}
	b := newTestBuilder(t, stores)

	_, err := b.BuildReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	require.NotNil(t, stores.saved)

	require.NoError(t, b.DeleteReport(context.Background(), id))
	assert.Equal(t, 1, stores.deletes)
	assert.Nil(t, stores.saved)

	rpt, err := b.GetReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)
	assert.Equal(t, 42, rpt.Summary.TotalScore)
	assert.Equal(t, 2, stores.upserts)
}

func TestBuildReport_LogsPerRoundDelivery(t *testing.T) {
	id := uuid.New()
	sess := singleRoundSession(id)
	sess.Rounds = []map[string]any{
		{
			"idx":      float64(1),
			"question": "어려웠던 경험은?",
			"answer": map[string]any{
				"text":        "음 결과를 30% 개선했습니다",
				"durationSec": float64(30),
			},
		},
	}
	stores := &fakeStores{session: sess}
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	b := NewBuilder(stores, stores, stores, testConfig(t), nil, nil, log)

	_, err := b.BuildReport(context.Background(), id, config.Flags{})
	require.NoError(t, err)

	var entry *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "round delivery" {
			entry = e
			break
		}
	}
	require.NotNil(t, entry)
	assert.Equal(t, 1, entry.Data["round"])
	// 4 words over 30s is 8 WPM; one filler over half a minute is 2.0/min.
	assert.Equal(t, 8, entry.Data["wpm"])
	assert.Equal(t, 2.0, entry.Data["filler_per_min"])
}

func TestInterviewedAt_Preference(t *testing.T) {
	ended := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	started := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, ended, interviewedAt(&Session{StartedAt: started, CreatedAt: created, EndedAt: ended}))
	assert.Equal(t, created, interviewedAt(&Session{StartedAt: started, CreatedAt: created}))
	assert.Equal(t, started, interviewedAt(&Session{StartedAt: started}))
}

func TestCandidateName_Fallbacks(t *testing.T) {
	assert.Equal(t, "홍길동", candidateName(&Session{UserName: "홍길동", UserID: "u-1"}))
	assert.Equal(t, "u-1", candidateName(&Session{UserID: "u-1"}))
	assert.Equal(t, fallbackName, candidateName(&Session{}))
}

func TestTrendPoints_Clamped(t *testing.T) {
	rounds := []transcript.Round{{Index: 1}, {Index: 2}, {Index: 3}}
	stars := []analytics.STAR{{Score: 0}, {Score: 75}, {Score: 100}}

	pts := trendPoints(rounds, stars)
	require.Len(t, pts, 3)
	assert.Equal(t, trendFloor, pts[0].Score)
	assert.Equal(t, 75, pts[1].Score)
	assert.Equal(t, trendCeil, pts[2].Score)
}
