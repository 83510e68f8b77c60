// Copyright (c) 2026 GenrA. All rights reserved.

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/genra-app/genra/internal/platform/respond"
)

// readinessTimeout bounds each dependency check.
const readinessTimeout = 2 * time.Second

// Check pings one dependency.
type Check func(context context.Context) error

// HealthDependencies holds the named dependency checks for the /ready endpoint.
type HealthDependencies map[string]Check

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type healthHandler struct {
	dependencies HealthDependencies
	order        []string
	logger       *slog.Logger
}

// NewHealthHandlers creates the /health and /ready handlers. Checks run in
// the order given by names; unknown names are ignored.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger, names ...string) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	for _, name := range names {
		if _, ok := deps[name]; ok {
			handler.order = append(handler.order, name)
		}
	}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health.
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness handles GET /ready.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, len(handler.order))
	ready := true

	for _, name := range handler.order {
		ctx, cancel := context.WithTimeout(request.Context(), readinessTimeout)
		err := handler.dependencies[name](ctx)
		cancel()

		result := checkResult{Name: name, IsOK: err == nil}
		if err != nil {
			ready = false
			result.Error = err.Error()
			handler.logger.Error("readiness_check_failed", slog.String("dependency", name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	body := map[string]any{"status": "ready", "checks": results}
	if !ready {
		body["status"] = "degraded"
		respond.JSON(writer, http.StatusServiceUnavailable, respond.SuccessEnvelope{Data: body})
		return
	}
	respond.OK(writer, body)
}
