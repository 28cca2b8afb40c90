// Package report synthesizes the structured interview evaluation report:
// it orchestrates transcript segmentation, the deterministic analytics,
// rubric coverage, optional narrative augmentation, and the idempotent
// upsert against session identity.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/minjae/interview-report/internal/analytics"
	"github.com/minjae/interview-report/internal/transcript"
)

// PassBand is the coarse three-tier classification of the overall score.
type PassBand string

// Pass band values. The 80/65 thresholds in PassBandFor are a fixed
// contract with the report consumers.
const (
	PassLikely PassBand = "pass-likely"
	Border     PassBand = "border"
	Below      PassBand = "below"
)

// PassBandFor classifies an overall score.
func PassBandFor(totalScore int) PassBand {
	switch {
	case totalScore >= 80:
		return PassLikely
	case totalScore >= 65:
		return Border
	default:
		return Below
	}
}

// Session is the session record handed over by the session store.
type Session struct {
	ID           uuid.UUID
	UserID       string
	UserName     string
	JobRole      string
	Interviewers []string
	StartedAt    time.Time
	EndedAt      time.Time
	CreatedAt    time.Time
	// Rounds carries pre-structured question/answer objects when the
	// producer recorded them; it is authoritative over the event stream.
	Rounds []map[string]any
}

// Basic is the report header block.
type Basic struct {
	Name          string    `json:"name"`
	JobRole       string    `json:"jobRole"`
	InterviewedAt time.Time `json:"interviewedAt"`
	Interviewers  []string  `json:"interviewers"`
	Rounds        int       `json:"rounds"`
}

// Summary is the report verdict block.
type Summary struct {
	TotalScore int      `json:"totalScore"`
	PassBand   PassBand `json:"passBand"`
	OneLiner   string   `json:"oneLiner"`
}

// Round is one question/answer exchange as persisted in the report.
type Round struct {
	Round    int      `json:"round"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Pros     []string `json:"pros"`
	Cons     []string `json:"cons"`
	Score    *float64 `json:"score"`
}

// TrendPoint is one per-round score sample for the trend chart.
type TrendPoint struct {
	Round int `json:"round"`
	Score int `json:"score"`
}

// Viz groups the chart-ready derivations.
type Viz struct {
	Radar    []analytics.SkillScore `json:"radar"`
	Trend    []TrendPoint           `json:"trend"`
	Keywords []analytics.Keyword    `json:"keywords"`
}

// Extra carries the advisory tail of the report.
type Extra struct {
	ModelAnswerDiff string   `json:"modelAnswerDiff"`
	Risks           []string `json:"risks"`
	Learning        []string `json:"learning"`
}

// Report is the terminal aggregate, keyed uniquely by session identity.
// It is created or replaced wholesale on each (re)build, never patched
// field by field.
type Report struct {
	SessionID uuid.UUID              `json:"sessionId"`
	Basic     Basic                  `json:"basic"`
	Summary   Summary                `json:"summary"`
	Rounds    []Round                `json:"rounds"`
	Skills    []analytics.SkillScore `json:"skills"`
	Viz       Viz                    `json:"viz"`
	Extra     Extra                  `json:"extra"`
}

// SessionStore resolves session identity. A nil session with nil error
// means "not found".
type SessionStore interface {
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
}

// EventStore lists the ordered raw event stream of a session.
type EventStore interface {
	ListEvents(ctx context.Context, sessionID uuid.UUID) ([]transcript.Event, error)
}

// ReportStore persists reports with insert-or-replace-whole-document
// semantics keyed by session id. GetReport returns (nil, nil) when no
// report exists. DeleteReport is a no-op for absent reports.
type ReportStore interface {
	UpsertReport(ctx context.Context, r *Report) error
	GetReport(ctx context.Context, sessionID uuid.UUID) (*Report, error)
	DeleteReport(ctx context.Context, sessionID uuid.UUID) error
}
