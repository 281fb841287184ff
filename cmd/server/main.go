package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/msvee3/Interview-prep/internal/auth"
	"github.com/msvee3/Interview-prep/internal/catalog"
	"github.com/msvee3/Interview-prep/internal/config"
	"github.com/msvee3/Interview-prep/internal/handlers"
	"github.com/msvee3/Interview-prep/internal/interview"
	"github.com/msvee3/Interview-prep/internal/llm"
	_ "github.com/msvee3/Interview-prep/internal/llm/gemini"
	"github.com/msvee3/Interview-prep/internal/metrics"
	"github.com/msvee3/Interview-prep/internal/oracle"
	"github.com/msvee3/Interview-prep/internal/prompts"
	"github.com/msvee3/Interview-prep/internal/routers"
	"github.com/msvee3/Interview-prep/internal/store"
	"github.com/msvee3/Interview-prep/internal/store/memory"
	mongostore "github.com/msvee3/Interview-prep/internal/store/mongo"
	"github.com/msvee3/Interview-prep/internal/users"
)

const serviceName = "interview-prep"

// request timeout covers an evaluation with retries
const requestTimeout = 120 * time.Second

// seams for tests
var (
	newProvider      = llm.NewProvider
	connectUsersDB   = users.ConnectWithRetry
	migrateUsers     = users.Migrate
	dbConnectTimeout = 30 * time.Second
)

type app struct {
	router  *chi.Mux
	closers []func(context.Context) error
}

func (a *app) close(ctx context.Context, logger *zap.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("Error while releasing resource", zap.Error(err))
		}
	}
}

// buildApp wires every collaborator. On failure it releases whatever it had
// already opened.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close(ctx, logger)
		}
	}()

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("initialize prompt manager: %w", err)
	}

	provider, err := newProvider(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("initialize AI provider: %w", err)
	}

	questions, err := catalog.Load()
	if err != nil {
		return nil, err
	}

	var sessions store.InterviewStore
	if cfg.MemoryStore() {
		logger.Warn("MONGO_URI not set, interview sessions are kept in memory")
		sessions = memory.New()
	} else {
		client, err := mongostore.NewClient(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		a.closers = append(a.closers, client.Disconnect)
		repo, err := mongostore.NewInterviewRepo(ctx, client, cfg.InterviewsCollection)
		if err != nil {
			return nil, err
		}
		sessions = repo
	}

	db, err := connectUsersDB(cfg.Postgres.DSN(), dbConnectTimeout, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	if err := migrateUsers(db); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	userRepo := &users.UserRepository{DB: db}

	var cache auth.IdentityCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, identity cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			cache = auth.NewProfileCache(rdb, cfg.IdentityCacheTTL)
		}
	}

	guard := auth.NewGuard(auth.NewJWTVerifier(cfg.JWTSecret), userRepo, cache, logger)
	oracleClient := oracle.NewClient(provider, promptManager, oracle.Options{
		Timeout:    cfg.OracleTimeout,
		MaxRetries: cfg.OracleMaxRetries,
		Backoff:    cfg.OracleBackoff,
	}, logger)
	service := interview.NewService(sessions, oracleClient, logger)

	interviewHandler := handlers.NewInterviewHandler(service, logger)
	questionHandler := handlers.NewQuestionHandler(questions)
	healthHandler := handlers.NewHealthHandler(provider, promptManager, map[string]handlers.Pinger{
		"session_store": sessions,
		"user_store":    userRepo,
	})

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(requestTimeout))
	router.Use(metrics.Middleware(serviceName))

	routers.HealthRoutes(router, healthHandler, metrics.Handler())
	routers.QuestionRoutes(router, questionHandler)
	routers.InterviewRoutes(router, guard, interviewHandler)
	routers.AdminRoutes(router, guard, interviewHandler)

	a.router = router
	return a, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Bool("memory_store", cfg.MemoryStore()),
		zap.Bool("identity_cache", cfg.RedisAddr != ""))

	a, err := buildApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize service", zap.Error(err))
	}

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      a.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	a.close(ctx, logger)

	logger.Info("Interview service exited")
}
