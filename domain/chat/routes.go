package chat

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers chat and thread routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/chat", h.Complete)

	e.GET("/api/threads", h.ListThreads)
	e.POST("/api/threads", h.CreateThread)
	e.GET("/api/threads/:id", h.GetThread)
	e.DELETE("/api/threads/:id", h.DeleteThread)
}
