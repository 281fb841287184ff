// Package interview runs the lifecycle of a mock interview session:
// start, answer turns, finish, and read access for owners and admins.
package interview

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/msvee3/Interview-prep/internal/apperr"
	"github.com/msvee3/Interview-prep/internal/auth"
	"github.com/msvee3/Interview-prep/internal/metrics"
	"github.com/msvee3/Interview-prep/internal/models"
	"github.com/msvee3/Interview-prep/internal/oracle"
	"github.com/msvee3/Interview-prep/internal/store"
)

const (
	// MaxTurns ends an interview regardless of what the oracle says.
	MaxTurns = 10
	// ListLimit caps session listings.
	ListLimit = 10
)

// Oracle is the question generator and answer evaluator.
type Oracle interface {
	GenerateOpeningQuestion(ctx context.Context, cfg models.InterviewConfig, profile *models.User) (string, error)
	EvaluateAndGenerateNext(ctx context.Context, cfg models.InterviewConfig, history []models.QuestionAnswer, answer string) (*oracle.Evaluation, error)
}

type Service struct {
	store  store.InterviewStore
	oracle Oracle
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides how turn ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(st store.InterviewStore, o Oracle, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		oracle: o,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnswerResult is the outcome of one answered turn. NextQuestion is nil
// once the interview is complete.
type AnswerResult struct {
	NextQuestion *string
	Evaluation   *oracle.Evaluation
	Completed    bool
	TurnCount    int
}

type FinishResult struct {
	InterviewID  string
	OverallScore float64
	Metrics      models.InterviewMetrics
}

// Start asks the oracle for an opening question and stores a new session
// owned by the caller. Nothing is stored when the oracle fails.
func (s *Service) Start(ctx context.Context, id *auth.Identity, cfg models.InterviewConfig) (*models.Interview, error) {
	if id == nil {
		return nil, apperr.ErrUnauthenticated
	}

	first, err := s.oracle.GenerateOpeningQuestion(ctx, cfg, id.Profile)
	if err != nil {
		return nil, fmt.Errorf("generate opening question: %w", err)
	}

	created, err := s.store.Create(ctx, &models.Interview{
		UserID:        id.UserID,
		Config:        cfg,
		StartedAt:     s.now().UTC(),
		Status:        models.StatusInProgress,
		Transcript:    "",
		QA:            []models.QuestionAnswer{},
		FirstQuestion: first,
	})
	if err != nil {
		return nil, fmt.Errorf("create interview: %w", err)
	}

	metrics.InterviewStarted(cfg.Type)
	s.logger.Info("Interview started",
		zap.String("interview_id", created.ID),
		zap.String("user_id", id.UserID),
		zap.String("type", cfg.Type),
		zap.String("difficulty", cfg.Difficulty))
	return created, nil
}

// SubmitAnswer records an answer to the current question and returns the
// evaluation plus the next question. Only the owner may answer, and only
// while the session is in progress. Reaching MaxTurns or receiving the
// completion sentinel reports Completed but leaves the status unchanged;
// Finish does that.
func (s *Service) SubmitAnswer(ctx context.Context, id *auth.Identity, interviewID, answer string, elapsedMs int64) (*AnswerResult, error) {
	if id == nil {
		return nil, apperr.ErrUnauthenticated
	}

	interview, err := s.store.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview.UserID != id.UserID {
		return nil, fmt.Errorf("%w: not authorized to answer this interview", apperr.ErrForbidden)
	}
	if interview.Status == models.StatusCompleted {
		return nil, fmt.Errorf("%w: interview already completed", apperr.ErrConflict)
	}

	current := interview.CurrentQuestion()
	eval, err := s.oracle.EvaluateAndGenerateNext(ctx, interview.Config, interview.QA, answer)
	if err != nil {
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}

	if elapsedMs < 0 {
		elapsedMs = 0
	}
	endTs := s.now().UnixMilli()
	turn := models.QuestionAnswer{
		QuestionID:   s.newID(),
		QuestionText: current,
		AnswerText:   answer,
		StartTs:      endTs - elapsedMs,
		EndTs:        endTs,
		AIScore:      eval.Score(),
		AIFeedback:   eval.Feedback(),
		ModelAnswer:  eval.ModelAnswer(),
	}

	count, err := s.store.AppendTurn(ctx, interviewID, turn, TranscriptBlock(current, answer))
	if err != nil {
		return nil, fmt.Errorf("append turn: %w", err)
	}

	result := &AnswerResult{Evaluation: eval, TurnCount: count}
	if eval.Complete() || count >= MaxTurns {
		result.Completed = true
	} else {
		next := eval.NextQuestion()
		result.NextQuestion = &next
	}

	metrics.AnswerEvaluated(result.Completed)
	s.logger.Info("Answer recorded",
		zap.String("interview_id", interviewID),
		zap.Int("turn", count),
		zap.Bool("completed", result.Completed))
	return result, nil
}

// Finish computes the overall score and response metrics and marks the
// session completed. A session that is missing and one owned by someone
// else are both reported as not found. Finishing again recomputes.
func (s *Service) Finish(ctx context.Context, id *auth.Identity, interviewID string) (*FinishResult, error) {
	if id == nil {
		return nil, apperr.ErrUnauthenticated
	}

	interview, err := s.store.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview.UserID != id.UserID {
		return nil, store.ErrInterviewNotFound
	}

	score := OverallScore(interview.QA)
	m := models.InterviewMetrics{AvgResponseTime: AvgResponseTime(interview.QA)}
	endedAt := s.now().UTC()

	err = s.store.Update(ctx, interviewID, store.Fields{
		store.FieldStatus:       models.StatusCompleted,
		store.FieldEndedAt:      &endedAt,
		store.FieldOverallScore: &score,
		store.FieldMetrics:      &m,
	})
	if err != nil {
		return nil, fmt.Errorf("finish interview: %w", err)
	}

	metrics.InterviewFinished(interview.Config.Type, score)
	s.logger.Info("Interview finished",
		zap.String("interview_id", interviewID),
		zap.Int("turns", len(interview.QA)),
		zap.Float64("overall_score", score))
	return &FinishResult{InterviewID: interviewID, OverallScore: score, Metrics: m}, nil
}

// Get returns the full session to its owner or an administrator.
func (s *Service) Get(ctx context.Context, id *auth.Identity, interviewID string) (*models.Interview, error) {
	interview, err := s.store.Get(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrAdmin(interview, id); err != nil {
		return nil, err
	}
	return interview, nil
}

// List returns the caller's most recent sessions.
func (s *Service) List(ctx context.Context, id *auth.Identity) ([]models.Interview, error) {
	if id == nil {
		return nil, apperr.ErrUnauthenticated
	}
	return s.store.ListByOwner(ctx, id.UserID, ListLimit)
}

// ListForUser returns another user's most recent sessions to an administrator.
func (s *Service) ListForUser(ctx context.Context, id *auth.Identity, userID string) ([]models.Interview, error) {
	if err := auth.RequireAdmin(id); err != nil {
		return nil, err
	}
	return s.store.ListByOwner(ctx, userID, ListLimit)
}

func TranscriptBlock(question, answer string) string {
	return fmt.Sprintf("\nQ: %s\nA: %s\n", question, answer)
}

// OverallScore averages the turns that have a non-zero score, rounded to one
// decimal. Unscored turns do not count; with none scored the result is 0.
func OverallScore(qa []models.QuestionAnswer) float64 {
	var sum float64
	var n int
	for _, turn := range qa {
		if turn.AIScore == nil || *turn.AIScore == 0 {
			continue
		}
		sum += *turn.AIScore
		n++
	}
	if n == 0 {
		return 0
	}
	return round(sum/float64(n), 1)
}

// AvgResponseTime is the mean turn duration in seconds over all turns,
// rounded to two decimals.
func AvgResponseTime(qa []models.QuestionAnswer) float64 {
	if len(qa) == 0 {
		return 0
	}
	var total float64
	for _, turn := range qa {
		total += float64(turn.EndTs-turn.StartTs) / 1000
	}
	return round(total/float64(len(qa)), 2)
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
