package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/msvee3/Interview-prep/internal/apperr"
	"github.com/msvee3/Interview-prep/internal/auth"
	"github.com/msvee3/Interview-prep/internal/models"
	"github.com/msvee3/Interview-prep/internal/oracle"
	"github.com/msvee3/Interview-prep/internal/store"
	"github.com/msvee3/Interview-prep/internal/store/memory"
)

type fakeOracle struct {
	mu         sync.Mutex
	openingFn  func(ctx context.Context, cfg models.InterviewConfig, profile *models.User) (string, error)
	evaluateFn func(ctx context.Context, cfg models.InterviewConfig, history []models.QuestionAnswer, answer string) (*oracle.Evaluation, error)
	histories  [][]models.QuestionAnswer
}

func (f *fakeOracle) GenerateOpeningQuestion(ctx context.Context, cfg models.InterviewConfig, profile *models.User) (string, error) {
	if f.openingFn != nil {
		return f.openingFn(ctx, cfg, profile)
	}
	return "Tell me about yourself.", nil
}

func (f *fakeOracle) EvaluateAndGenerateNext(ctx context.Context, cfg models.InterviewConfig, history []models.QuestionAnswer, answer string) (*oracle.Evaluation, error) {
	f.mu.Lock()
	f.histories = append(f.histories, history)
	n := len(f.histories)
	f.mu.Unlock()
	if f.evaluateFn != nil {
		return f.evaluateFn(ctx, cfg, history, answer)
	}
	return oracle.ParseEvaluation(fmt.Sprintf(`{"score": 80, "feedback": "ok", "nextQuestion": "Question %d"}`, n+1)), nil
}

var (
	alice = &auth.Identity{UserID: "alice", Role: models.RoleUser, Profile: &models.User{UID: "alice", TargetRole: "Backend"}}
	bob   = &auth.Identity{UserID: "bob", Role: models.RoleUser}
	admin = &auth.Identity{UserID: "root", Role: models.RoleAdmin}

	behavioral = models.InterviewConfig{Type: "behavioral", Industry: "retail", Role: "PM", Difficulty: "mid", DurationMinutes: 30}
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T, o Oracle) (*Service, *memory.Store, *clock) {
	t.Helper()
	st := memory.New()
	clk := &clock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	ids := 0
	var idMu sync.Mutex
	svc := NewService(st, o, zap.NewNop(),
		WithClock(clk.Now),
		WithIDGenerator(func() string {
			idMu.Lock()
			defer idMu.Unlock()
			ids++
			return fmt.Sprintf("turn-%d", ids)
		}))
	return svc, st, clk
}

func TestStartStoresSession(t *testing.T) {
	var gotProfile *models.User
	o := &fakeOracle{openingFn: func(_ context.Context, cfg models.InterviewConfig, profile *models.User) (string, error) {
		gotProfile = profile
		return "Describe a conflict with a stakeholder.", nil
	}}
	svc, _, clk := newTestService(t, o)

	created, err := svc.Start(context.Background(), alice, behavioral)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if created.ID == "" || created.UserID != "alice" {
		t.Fatalf("unexpected session %+v", created)
	}
	if created.Status != models.StatusInProgress || created.Transcript != "" || len(created.QA) != 0 {
		t.Fatalf("unexpected initial state %+v", created)
	}
	if created.FirstQuestion != "Describe a conflict with a stakeholder." || !created.StartedAt.Equal(clk.Now()) {
		t.Fatalf("unexpected first question or start time %+v", created)
	}
	if gotProfile == nil || gotProfile.TargetRole != "Backend" {
		t.Fatalf("expected caller profile to reach the oracle, got %+v", gotProfile)
	}
}

func TestStartOracleFailureWritesNothing(t *testing.T) {
	o := &fakeOracle{openingFn: func(context.Context, models.InterviewConfig, *models.User) (string, error) {
		return "", fmt.Errorf("%w: model unavailable", apperr.ErrUpstream)
	}}
	svc, st, _ := newTestService(t, o)

	_, err := svc.Start(context.Background(), alice, behavioral)
	if !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	list, _ := st.ListByOwner(context.Background(), "alice", 10)
	if len(list) != 0 {
		t.Fatalf("expected no stored session, got %d", len(list))
	}
}

func TestRoundTrip(t *testing.T) {
	o := &fakeOracle{}
	svc, st, clk := newTestService(t, o)
	ctx := context.Background()

	created, err := svc.Start(ctx, alice, behavioral)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	const n = 4
	for i := 1; i <= n; i++ {
		clk.Advance(time.Minute)
		res, err := svc.SubmitAnswer(ctx, alice, created.ID, fmt.Sprintf("answer %d", i), 3000)
		if err != nil {
			t.Fatalf("SubmitAnswer %d returned error: %v", i, err)
		}
		if res.Completed || res.NextQuestion == nil || *res.NextQuestion != fmt.Sprintf("Question %d", i+1) {
			t.Fatalf("turn %d: unexpected result %+v", i, res)
		}
		if res.TurnCount != i {
			t.Fatalf("turn %d: expected count %d, got %d", i, i, res.TurnCount)
		}

		mid, _ := st.Get(ctx, created.ID)
		if mid.Status != models.StatusInProgress {
			t.Fatal("status must stay in progress until finish")
		}
	}

	got, _ := st.Get(ctx, created.ID)
	if len(got.QA) != n {
		t.Fatalf("expected %d turns, got %d", n, len(got.QA))
	}
	// The current question is the most recent turn's question text, so it
	// stays on the opening question.
	for i, turn := range got.QA {
		if turn.QuestionText != "Tell me about yourself." || turn.AnswerText != fmt.Sprintf("answer %d", i+1) {
			t.Fatalf("unexpected turn %d: %+v", i, turn)
		}
	}
	wantTranscript := "\nQ: Tell me about yourself.\nA: answer 1\n" +
		"\nQ: Tell me about yourself.\nA: answer 2\n" +
		"\nQ: Tell me about yourself.\nA: answer 3\n" +
		"\nQ: Tell me about yourself.\nA: answer 4\n"
	if got.Transcript != wantTranscript {
		t.Fatalf("unexpected transcript:\n%q", got.Transcript)
	}
	last := got.QA[n-1]
	if last.QuestionID != "turn-4" || last.EndTs != clk.Now().UnixMilli() || last.EndTs-last.StartTs != 3000 {
		t.Fatalf("unexpected turn timing %+v", last)
	}
	if last.AIScore == nil || *last.AIScore != 80 || last.AIFeedback != "ok" {
		t.Fatalf("unexpected turn evaluation %+v", last)
	}

	clk.Advance(time.Minute)
	res, err := svc.Finish(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("Finish returned error: %v", err)
	}
	if res.InterviewID != created.ID || res.OverallScore != 80 || res.Metrics.AvgResponseTime != 3 {
		t.Fatalf("unexpected finish result %+v", res)
	}

	done, _ := st.Get(ctx, created.ID)
	if done.Status != models.StatusCompleted || done.EndedAt == nil || !done.EndedAt.Equal(clk.Now()) {
		t.Fatalf("unexpected finished session %+v", done)
	}
	if done.OverallScore == nil || *done.OverallScore != 80 {
		t.Fatalf("unexpected stored score %v", done.OverallScore)
	}
	if done.Metrics == nil || done.Metrics.FillerCount != 0 || done.Metrics.WordCount != 0 || done.Metrics.ConfidenceScore != 0 {
		t.Fatalf("unexpected stored metrics %+v", done.Metrics)
	}
}

func TestOracleSeesFullHistory(t *testing.T) {
	o := &fakeOracle{}
	svc, _, _ := newTestService(t, o)
	ctx := context.Background()
	created, _ := svc.Start(ctx, alice, behavioral)

	for i := 0; i < 5; i++ {
		if _, err := svc.SubmitAnswer(ctx, alice, created.ID, "a", 0); err != nil {
			t.Fatalf("SubmitAnswer returned error: %v", err)
		}
	}
	for i, h := range o.histories {
		if len(h) != i {
			t.Fatalf("call %d: expected %d prior turns, got %d", i, i, len(h))
		}
	}
}

func TestTerminationByCount(t *testing.T) {
	o := &fakeOracle{evaluateFn: func(context.Context, models.InterviewConfig, []models.QuestionAnswer, string) (*oracle.Evaluation, error) {
		return oracle.ParseEvaluation(`{"score": 60, "nextQuestion": "Keep going"}`), nil
	}}
	svc, _, _ := newTestService(t, o)
	ctx := context.Background()
	created, _ := svc.Start(ctx, alice, behavioral)

	for i := 1; i <= MaxTurns; i++ {
		res, err := svc.SubmitAnswer(ctx, alice, created.ID, "a", 1000)
		if err != nil {
			t.Fatalf("SubmitAnswer %d returned error: %v", i, err)
		}
		if i < MaxTurns && res.Completed {
			t.Fatalf("turn %d reported completion early", i)
		}
		if i == MaxTurns {
			if !res.Completed || res.NextQuestion != nil {
				t.Fatalf("turn %d must complete with no next question, got %+v", i, res)
			}
			if res.Evaluation.NextQuestion() != "Keep going" {
				t.Fatal("evaluation must be returned as produced")
			}
		}
	}
}

func TestTerminationBySentinel(t *testing.T) {
	o := &fakeOracle{evaluateFn: func(context.Context, models.InterviewConfig, []models.QuestionAnswer, string) (*oracle.Evaluation, error) {
		return oracle.ParseEvaluation(`{"score": 90, "nextQuestion": "INTERVIEW_COMPLETE"}`), nil
	}}
	svc, st, _ := newTestService(t, o)
	ctx := context.Background()
	created, _ := svc.Start(ctx, alice, behavioral)

	res, err := svc.SubmitAnswer(ctx, alice, created.ID, "a", 1000)
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	if !res.Completed || res.NextQuestion != nil || res.TurnCount != 1 {
		t.Fatalf("expected completion after one turn, got %+v", res)
	}
	got, _ := st.Get(ctx, created.ID)
	if got.Status != models.StatusInProgress || len(got.QA) != 1 {
		t.Fatalf("turn must be stored and status left for finish, got %+v", got)
	}
}

func TestAnswerGuards(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeOracle{})
	ctx := context.Background()
	created, _ := svc.Start(ctx, alice, behavioral)

	if _, err := svc.SubmitAnswer(ctx, alice, "missing", "a", 0); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, bob, created.ID, "a", 0); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, admin, created.ID, "a", 0); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("admins may read but not answer, got %v", err)
	}

	if _, err := svc.Finish(ctx, alice, created.ID); err != nil {
		t.Fatalf("Finish returned error: %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, alice, created.ID, "a", 0); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict after finish, got %v", err)
	}
}

func TestAnswerRacingFinishIsRejected(t *testing.T) {
	o := &fakeOracle{}
	svc, st, _ := newTestService(t, o)
	ctx := context.Background()
	created, _ := svc.Start(ctx, alice, behavioral)

	// the session is finished while the answer is being evaluated
	o.evaluateFn = func(context.Context, models.InterviewConfig, []models.QuestionAnswer, string) (*oracle.Evaluation, error) {
		if _, err := svc.Finish(ctx, alice, created.ID); err != nil {
			t.Errorf("Finish returned error: %v", err)
		}
		return oracle.ParseEvaluation(`{"score": 90, "nextQuestion": "Next?"}`), nil
	}

	if _, err := svc.SubmitAnswer(ctx, alice, created.ID, "late answer", 0); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got, _ := st.Get(ctx, created.ID)
	if got.Status != models.StatusCompleted || len(got.QA) != 0 || got.Transcript != "" {
		t.Fatalf("completed session must not gain turns, got %+v", got)
	}
}

func TestAnswerClampsNegativeElapsed(t *testing.T) {
	svc, st, _ := newTestService(t, &fakeOracle{})
	ctx := context.Background()
	created, _ := svc.Start(ctx, alice, behavioral)

	if _, err := svc.SubmitAnswer(ctx, alice, created.ID, "a", -5000); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	got, _ := st.Get(ctx, created.ID)
	if turn := got.QA[0]; turn.StartTs != turn.EndTs {
		t.Fatalf("expected zero duration, got %+v", turn)
	}
}

func TestAnswerOracleFailureAppendsNothing(t *testing.T) {
	o := &fakeOracle{evaluateFn: func(context.Context, models.InterviewConfig, []models.QuestionAnswer, string) (*oracle.Evaluation, error) {
		return nil, fmt.Errorf("%w: timeout", apperr.ErrUpstream)
	}}
	svc, st, _ := newTestService(t, o)
	ctx := context.Background()
	created, _ := svc.Start(ctx, alice, behavioral)

	if _, err := svc.SubmitAnswer(ctx, alice, created.ID, "a", 0); !errors.Is(err, apperr.ErrUpstream) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	got, _ := st.Get(ctx, created.ID)
	if len(got.QA) != 0 || got.Transcript != "" {
		t.Fatalf("failed answer must not be stored, got %+v", got)
	}
}

func TestConcurrentAnswersAreAllRecorded(t *testing.T) {
	svc, st, _ := newTestService(t, &fakeOracle{})
	ctx := context.Background()
	created, _ := svc.Start(ctx, alice, behavioral)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.SubmitAnswer(ctx, alice, created.ID, fmt.Sprintf("answer %d", i), 100); err != nil {
				t.Errorf("SubmitAnswer returned error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := st.Get(ctx, created.ID)
	if len(got.QA) != n {
		t.Fatalf("expected %d turns, got %d", n, len(got.QA))
	}
	if c := strings.Count(got.Transcript, "\nQ: "); c != n {
		t.Fatalf("expected %d transcript blocks, got %d", n, c)
	}
}

func TestFinishOwnershipConflatedWithNotFound(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeOracle{})
	ctx := context.Background()
	created, _ := svc.Start(ctx, alice, behavioral)

	for _, tc := range []struct {
		name string
		id   *auth.Identity
		sid  string
	}{
		{name: "missing", id: alice, sid: "missing"},
		{name: "not owner", id: bob, sid: created.ID},
		{name: "admin is not owner", id: admin, sid: created.ID},
	} {
		if _, err := svc.Finish(ctx, tc.id, tc.sid); !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("%s: expected not found, got %v", tc.name, err)
		}
	}
}

func TestFinishTwiceRecomputes(t *testing.T) {
	svc, st, clk := newTestService(t, &fakeOracle{})
	ctx := context.Background()
	created, _ := svc.Start(ctx, alice, behavioral)

	if _, err := svc.Finish(ctx, alice, created.ID); err != nil {
		t.Fatalf("Finish returned error: %v", err)
	}
	first, _ := st.Get(ctx, created.ID)

	clk.Advance(time.Hour)
	res, err := svc.Finish(ctx, alice, created.ID)
	if err != nil {
		t.Fatalf("second Finish returned error: %v", err)
	}
	if res.OverallScore != 0 || res.Metrics.AvgResponseTime != 0 {
		t.Fatalf("empty session must score 0, got %+v", res)
	}
	second, _ := st.Get(ctx, created.ID)
	if !second.EndedAt.After(*first.EndedAt) {
		t.Fatalf("expected endedAt to be overwritten, got %v then %v", first.EndedAt, second.EndedAt)
	}
}

func TestGetAndList(t *testing.T) {
	svc, _, clk := newTestService(t, &fakeOracle{})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 12; i++ {
		clk.Advance(time.Minute)
		created, err := svc.Start(ctx, alice, behavioral)
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		ids = append(ids, created.ID)
	}
	bobs, _ := svc.Start(ctx, bob, behavioral)

	if _, err := svc.Get(ctx, alice, ids[0]); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if _, err := svc.Get(ctx, admin, ids[0]); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
	if _, err := svc.Get(ctx, bob, ids[0]); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, alice, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	list, err := svc.List(ctx, alice)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != ListLimit || list[0].ID != ids[11] || list[9].ID != ids[2] {
		t.Fatalf("expected newest %d sessions first, got %d", ListLimit, len(list))
	}
	for _, s := range list {
		if s.ID == bobs.ID {
			t.Fatal("listing leaked another user's session")
		}
	}

	if _, err := svc.ListForUser(ctx, alice, "bob"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	adminView, err := svc.ListForUser(ctx, admin, "bob")
	if err != nil || len(adminView) != 1 || adminView[0].ID != bobs.ID {
		t.Fatalf("unexpected admin listing %v, %v", adminView, err)
	}
}

func TestOverallScore(t *testing.T) {
	score := func(v float64) *float64 { return &v }
	tests := []struct {
		name string
		qa   []models.QuestionAnswer
		want float64
	}{
		{name: "skips unscored", qa: []models.QuestionAnswer{{AIScore: score(80)}, {}, {AIScore: score(60)}}, want: 70},
		{name: "skips zero", qa: []models.QuestionAnswer{{AIScore: score(0)}, {AIScore: score(90)}}, want: 90},
		{name: "rounds to one decimal", qa: []models.QuestionAnswer{{AIScore: score(70)}, {AIScore: score(75)}, {AIScore: score(71)}}, want: 72},
		{name: "rounds half up", qa: []models.QuestionAnswer{{AIScore: score(70.25)}, {AIScore: score(70.25)}}, want: 70.3},
		{name: "none", qa: nil, want: 0},
		{name: "all unscored", qa: []models.QuestionAnswer{{}, {}}, want: 0},
	}
	for _, tt := range tests {
		if got := OverallScore(tt.qa); got != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestAvgResponseTime(t *testing.T) {
	qa := []models.QuestionAnswer{
		{StartTs: 0, EndTs: 1000},
		{StartTs: 0, EndTs: 2000},
		{StartTs: 5000, EndTs: 5333},
	}
	if got := AvgResponseTime(qa); got != 1.11 {
		t.Fatalf("expected 1.11, got %v", got)
	}
	if got := AvgResponseTime(nil); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

var _ store.InterviewStore = (*memory.Store)(nil)
