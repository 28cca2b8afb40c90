package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minjae/interview-report/internal/report"
)

// UpsertReport inserts or wholesale-replaces the report document for its
// session. The whole JSON document is swapped; there is no field-level
// patching.
func (db *DB) UpsertReport(ctx context.Context, r *report.Report) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO reports (session_id, doc)
		 VALUES ($1, $2)
		 ON CONFLICT (session_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		r.SessionID, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}
	return nil
}

// GetReport fetches the report document for a session. Returns (nil, nil)
// when no report has been built yet.
func (db *DB) GetReport(ctx context.Context, sessionID uuid.UUID) (*report.Report, error) {
	var doc []byte
	err := db.pool.QueryRow(ctx,
		`SELECT doc FROM reports WHERE session_id = $1`,
		sessionID,
	).Scan(&doc)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var r report.Report
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

// DeleteReport removes a session's report document, forcing the next read
// to rebuild it.
func (db *DB) DeleteReport(ctx context.Context, sessionID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM reports WHERE session_id = $1`,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}
