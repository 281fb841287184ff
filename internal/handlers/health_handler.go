package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/msvee3/Interview-prep/internal/llm"
	"github.com/msvee3/Interview-prep/internal/prompts"
	"github.com/msvee3/Interview-prep/internal/utils"
)

const (
	serviceName  = "interview-prep"
	version      = "1.0.0"
	pingTimeout  = 2 * time.Second
	statusOK     = "ok"
	statusFailed = "failed"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

// Pinger is a dependency whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	dependencies  map[string]Pinger
}

// NewHealthHandler builds the health endpoints. dependencies are pinged by
// name on every readiness probe.
func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		dependencies:  dependencies,
	}
}

func (handler *HealthHandler) RootHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"message": "Interview Prep Simulator API",
		"version": version,
		"status":  "running",
	})
}

// HealthHandler answers the plain /health probe existing clients poll.
func (handler *HealthHandler) HealthHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{"status": "healthy"})
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": version,
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	fail := func(name, message string) {
		checks[name] = ReadinessCheck{Status: statusFailed, Message: message}
		allChecksPass = false
	}

	if handler.provider == nil {
		fail("provider", "AI provider not initialized")
	} else {
		checks["provider"] = ReadinessCheck{Status: statusOK}
	}

	if handler.promptManager == nil {
		fail("prompt_manager", "Prompt manager not initialized")
	} else if len(handler.promptManager.GetTemplates()) == 0 {
		fail("prompt_manager", "No prompt templates loaded")
	} else {
		checks["prompt_manager"] = ReadinessCheck{Status: statusOK}
	}

	for name, dep := range handler.dependencies {
		ctx, cancel := context.WithTimeout(request.Context(), pingTimeout)
		err := dep.Ping(ctx)
		cancel()
		if err != nil {
			fail(name, err.Error())
			continue
		}
		checks[name] = ReadinessCheck{Status: statusOK}
	}

	response := ReadinessResponse{
		Service: serviceName,
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
