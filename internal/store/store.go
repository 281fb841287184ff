// Package store defines the persistence contract for interview sessions.
package store

import (
	"context"
	"fmt"

	"github.com/msvee3/Interview-prep/internal/apperr"
	"github.com/msvee3/Interview-prep/internal/models"
)

// ErrInterviewNotFound is returned when no session has the requested id.
var ErrInterviewNotFound = fmt.Errorf("interview %w", apperr.ErrNotFound)

// ErrInterviewClosed is returned when a turn is appended to a session that
// is no longer in progress.
var ErrInterviewClosed = fmt.Errorf("interview already completed: %w", apperr.ErrConflict)

// Document field names accepted by Update.
const (
	FieldStatus       = "status"
	FieldEndedAt      = "endedAt"
	FieldOverallScore = "overallScore"
	FieldMetrics      = "metrics"
)

// Fields is a shallow partial update keyed by document field name. Nested
// values replace the stored value wholesale.
type Fields map[string]any

// InterviewStore is the single source of truth for interview sessions.
// Every method is a single-document operation.
type InterviewStore interface {
	// Create stores a new session, assigning an id when it has none.
	Create(ctx context.Context, interview *models.Interview) (*models.Interview, error)
	Get(ctx context.Context, id string) (*models.Interview, error)
	Update(ctx context.Context, id string, fields Fields) error
	// AppendTurn atomically appends one turn and one transcript block to an
	// in-progress session and returns the turn count after the append. It
	// fails with ErrInterviewClosed when the session is already completed.
	AppendTurn(ctx context.Context, id string, turn models.QuestionAnswer, transcriptBlock string) (int, error)
	// ListByOwner returns the owner's sessions, most recently started first.
	ListByOwner(ctx context.Context, ownerID string, limit int64) ([]models.Interview, error)
	Ping(ctx context.Context) error
}
