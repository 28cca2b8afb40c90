package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/minjae/interview-report/internal/transcript"
)

// ListEvents returns a session's raw message stream in arrival order.
// Each row's JSONB payload is decoded into an event, and the typed
// role/interviewer/round columns override any payload fields of the
// same name.
func (db *DB) ListEvents(ctx context.Context, sessionID uuid.UUID) ([]transcript.Event, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT role, interviewer, round, payload
		 FROM messages
		 WHERE session_id = $1
		 ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	events := []transcript.Event{}
	for rows.Next() {
		var (
			role        *string
			interviewer *string
			round       *int
			payload     []byte
		)
		if err := rows.Scan(&role, &interviewer, &round, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		events = append(events, mergeEvent(payload, role, interviewer, round))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return events, nil
}

// mergeEvent decodes the payload and layers the typed columns on top.
// An undecodable payload is dropped rather than failing the whole list;
// the typed columns still make the event usable.
func mergeEvent(payload []byte, role, interviewer *string, round *int) transcript.Event {
	ev := transcript.Event{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &ev); err != nil || ev == nil {
			ev = transcript.Event{}
		}
	}
	if role != nil && *role != "" {
		ev["role"] = *role
	}
	if interviewer != nil && *interviewer != "" {
		ev["interviewer"] = *interviewer
	}
	if round != nil {
		ev["round"] = *round
	}
	return ev
}
