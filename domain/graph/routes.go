package graph

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers graph routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/api/graph/triplets", h.Triplets)
	e.GET("/api/graph/episodes", h.Episodes)
	e.DELETE("/api/graph/episodes/:uuid", h.DeleteEpisode)

	e.GET("/api/graphs", h.ListGraphs)
	e.POST("/api/graphs", h.CreateGraph)
	e.DELETE("/api/graphs/:id", h.DeleteGraph)
}
