package ingest

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers ingestion routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/ingest", h.Ingest)
}
