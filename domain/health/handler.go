package health

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/worldloom/worldloom/internal/config"
	"github.com/worldloom/worldloom/internal/version"
)

// Handler handles health check requests
type Handler struct {
	cfg     *config.Config
	startAt time.Time
}

// NewHandler creates a new health handler
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		cfg:     cfg,
		startAt: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string              `json:"status"`
	Timestamp string              `json:"timestamp"`
	Uptime    string              `json:"uptime"`
	Version   version.VersionInfo `json:"version"`
	Checks    map[string]Check    `json:"checks"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health returns the overall service health. The external store and the
// model provider are optional capabilities, so an absent credential reports
// as "disabled" rather than unhealthy.
func (h *Handler) Health(c echo.Context) error {
	checks := map[string]Check{
		"graph_store": configuredCheck(h.cfg.Zep.IsEnabled()),
		"llm":         configuredCheck(h.cfg.LLM.IsEnabled()),
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startAt).String(),
		Version:   version.Info(),
		Checks:    checks,
	}

	return c.JSON(http.StatusOK, response)
}

func configuredCheck(enabled bool) Check {
	if enabled {
		return Check{Status: "configured"}
	}
	return Check{Status: "disabled", Message: "credential not configured"}
}

// Healthz is a minimal liveness probe
func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready is a readiness probe. The service carries no local state, so it is
// ready as soon as it serves HTTP.
func (h *Handler) Ready(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
