package graph

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/worldloom/worldloom/pkg/apperror"
	"github.com/worldloom/worldloom/pkg/zep"
)

// Handler handles HTTP requests for the graph domain
type Handler struct {
	svc *Service
}

// NewHandler creates a new graph handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func targetFromQuery(c echo.Context) zep.Target {
	return zep.Target{
		UserID:  c.QueryParam("userId"),
		GraphID: c.QueryParam("graphId"),
	}
}

// Triplets returns the full graph of a scope as renderable triplets
// GET /api/graph/triplets
// Query params: graphId or userId (at least one required)
func (h *Handler) Triplets(c echo.Context) error {
	triplets, err := h.svc.Triplets(c.Request().Context(), targetFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, triplets)
}

// Episodes returns the most recent episodes of a scope
// GET /api/graph/episodes
func (h *Handler) Episodes(c echo.Context) error {
	episodes, err := h.svc.Episodes(c.Request().Context(), targetFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, episodes)
}

// DeleteEpisode removes one episode
// DELETE /api/graph/episodes/:uuid
func (h *Handler) DeleteEpisode(c echo.Context) error {
	uuid := c.Param("uuid")
	if uuid == "" {
		return apperror.NewBadRequest("episode uuid is required")
	}
	if err := h.svc.DeleteEpisode(c.Request().Context(), uuid); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListGraphs returns all shared graphs
// GET /api/graphs
func (h *Handler) ListGraphs(c echo.Context) error {
	graphs, err := h.svc.ListGraphs(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, graphs)
}

// CreateGraph creates a shared graph with its ontology
// POST /api/graphs
func (h *Handler) CreateGraph(c echo.Context) error {
	var req CreateGraphRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	info, err := h.svc.CreateGraph(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, info)
}

// DeleteGraph removes a shared graph
// DELETE /api/graphs/:id
func (h *Handler) DeleteGraph(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return apperror.NewBadRequest("graph id is required")
	}
	if err := h.svc.DeleteGraph(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
