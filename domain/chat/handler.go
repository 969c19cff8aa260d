package chat

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/worldloom/worldloom/pkg/apperror"
)

// Handler handles HTTP requests for chat and threads
type Handler struct {
	svc *Service
}

// NewHandler creates a new chat handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Complete runs one chat turn
// POST /api/chat
func (h *Handler) Complete(c echo.Context) error {
	var req CompleteRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	resp, err := h.svc.Complete(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// ListThreads returns a page of threads
// GET /api/threads
// Query params: page (default 1), pageSize (1-200, default 50)
func (h *Handler) ListThreads(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page = parsed
		}
	}
	pageSize := DefaultPageSize
	if v := c.QueryParam("pageSize"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			pageSize = parsed
		}
	}

	result, err := h.svc.ListThreads(c.Request().Context(), page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// GetThread returns a thread with its messages
// GET /api/threads/:id
func (h *Handler) GetThread(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return apperror.NewBadRequest("thread id is required")
	}

	thread, err := h.svc.GetThread(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, thread)
}

// CreateThread creates a new thread
// POST /api/threads
func (h *Handler) CreateThread(c echo.Context) error {
	var req CreateThreadRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	thread, err := h.svc.CreateThread(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, thread)
}

// DeleteThread removes a thread
// DELETE /api/threads/:id
func (h *Handler) DeleteThread(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return apperror.NewBadRequest("thread id is required")
	}

	if err := h.svc.DeleteThread(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
