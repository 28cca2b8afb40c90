package report

import (
	"fmt"

	"github.com/google/uuid"
)

// SessionNotFoundError indicates the session identity could not be
// resolved. It is the only analytics-pipeline error surfaced to callers;
// everything else degrades to documented fallbacks.
type SessionNotFoundError struct {
	SessionID uuid.UUID
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}
