package routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/msvee3/Interview-prep/internal/auth"
	"github.com/msvee3/Interview-prep/internal/catalog"
	"github.com/msvee3/Interview-prep/internal/handlers"
	"github.com/msvee3/Interview-prep/internal/interview"
	"github.com/msvee3/Interview-prep/internal/metrics"
	"github.com/msvee3/Interview-prep/internal/models"
	"github.com/msvee3/Interview-prep/internal/oracle"
	"github.com/msvee3/Interview-prep/internal/store/memory"
	"github.com/msvee3/Interview-prep/internal/users"
)

const secret = "route-secret"

type stubOracle struct{}

func (stubOracle) GenerateOpeningQuestion(context.Context, models.InterviewConfig, *models.User) (string, error) {
	return "Why this company?", nil
}

func (stubOracle) EvaluateAndGenerateNext(context.Context, models.InterviewConfig, []models.QuestionAnswer, string) (*oracle.Evaluation, error) {
	return oracle.ParseEvaluation(`{"score": 50, "nextQuestion": "Next"}`), nil
}

type stubUsers map[string]*models.User

func (s stubUsers) GetUserByID(_ context.Context, uid string) (*models.User, error) {
	if u, ok := s[uid]; ok {
		return u, nil
	}
	return nil, users.ErrUserNotFound
}

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()
	c, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load returned error: %v", err)
	}
	guard := auth.NewGuard(auth.NewJWTVerifier(secret), stubUsers{
		"u1":   {UID: "u1", Role: models.RoleUser},
		"boss": {UID: "boss", Role: models.RoleAdmin},
	}, nil, zap.NewNop())
	svc := interview.NewService(memory.New(), stubOracle{}, zap.NewNop())

	router := chi.NewRouter()
	HealthRoutes(router, handlers.NewHealthHandler(nil, nil, nil), metrics.Handler())
	QuestionRoutes(router, handlers.NewQuestionHandler(c))
	InterviewRoutes(router, guard, handlers.NewInterviewHandler(svc, zap.NewNop()))
	AdminRoutes(router, guard, handlers.NewInterviewHandler(svc, zap.NewNop()))
	return router
}

func bearer(t *testing.T, uid string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uid,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + signed
}

func TestRoutesRegistersEndpoints(t *testing.T) {
	router := newRouter(t)

	paths := map[string]bool{}
	if err := chi.Walk(router, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		paths[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("failed walking routes: %v", err)
	}

	expected := []string{
		"GET /",
		"GET /health",
		"GET /healthz",
		"GET /readyz",
		"GET /api/questions",
		"POST /api/interviews/start",
		"POST /api/interviews/{interviewId}/answer",
		"POST /api/interviews/{interviewId}/finish",
		"GET /api/interviews/{interviewId}",
		"GET /api/interviews/",
		"GET /api/admin/users/{userId}/interviews",
	}
	for _, route := range expected {
		if !paths[route] {
			t.Fatalf("expected route %s to be registered, have %v", route, paths)
		}
	}
}

func TestRoutesAuthentication(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		wantStatus int
	}{
		{name: "catalog is public", method: http.MethodGet, path: "/api/questions?category=hr", wantStatus: http.StatusOK},
		{name: "metrics are public", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "list needs token", method: http.MethodGet, path: "/api/interviews", wantStatus: http.StatusUnauthorized},
		{name: "list with token", method: http.MethodGet, path: "/api/interviews", auth: bearer(t, "u1"), wantStatus: http.StatusOK},
		{name: "unknown user", method: http.MethodGet, path: "/api/interviews", auth: bearer(t, "ghost"), wantStatus: http.StatusUnauthorized},
		{name: "admin route as user", method: http.MethodGet, path: "/api/admin/users/u1/interviews", auth: bearer(t, "u1"), wantStatus: http.StatusForbidden},
		{name: "admin route as admin", method: http.MethodGet, path: "/api/admin/users/u1/interviews", auth: bearer(t, "boss"), wantStatus: http.StatusOK},
		{name: "admin route without token", method: http.MethodGet, path: "/api/admin/users/u1/interviews", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}
