package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minjae/interview-report/internal/report"
)

// GetSession fetches a session record by ID. Returns (nil, nil) when the
// session does not exist.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*report.Session, error) {
	var (
		s                report.Session
		userID           *string
		userName         *string
		jobRole          *string
		interviewersJSON []byte
		roundsJSON       []byte
		startedAt        *time.Time
		endedAt          *time.Time
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, user_name, job_role, interviewers, rounds,
		        started_at, ended_at, created_at
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &userID, &userName, &jobRole, &interviewersJSON, &roundsJSON,
		&startedAt, &endedAt, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if userID != nil {
		s.UserID = *userID
	}
	if userName != nil {
		s.UserName = *userName
	}
	if jobRole != nil {
		s.JobRole = *jobRole
	}
	if startedAt != nil {
		s.StartedAt = *startedAt
	}
	if endedAt != nil {
		s.EndedAt = *endedAt
	}
	if len(interviewersJSON) > 0 {
		if err := json.Unmarshal(interviewersJSON, &s.Interviewers); err != nil {
			return nil, fmt.Errorf("failed to decode interviewers: %w", err)
		}
	}
	if len(roundsJSON) > 0 {
		if err := json.Unmarshal(roundsJSON, &s.Rounds); err != nil {
			return nil, fmt.Errorf("failed to decode session rounds: %w", err)
		}
	}
	return &s, nil
}
