package ingest

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/worldloom/worldloom/pkg/apperror"
	"github.com/worldloom/worldloom/pkg/zep"
)

// Handler handles document upload requests
type Handler struct {
	svc *Service
}

// NewHandler creates a new ingest handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Ingest accepts a multipart upload and feeds it into the graph
// POST /api/ingest
// Form fields: files (repeated) or file, userId, graphId, chunkSize
func (h *Handler) Ingest(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperror.NewBadRequest("expected multipart form data")
	}

	headers := form.File["files"]
	// single-file field kept for older clients
	headers = append(headers, form.File["file"]...)
	if len(headers) == 0 {
		return apperror.NewBadRequest("missing file upload")
	}

	target := zep.Target{
		UserID:  c.FormValue("userId"),
		GraphID: c.FormValue("graphId"),
	}
	if target.UserID == "" {
		target.UserID = h.svc.cfg.Zep.UserID
	}
	if target.GraphID == "" {
		target.GraphID = h.svc.cfg.Zep.GraphID
	}

	chunkSize := 0
	if v := c.FormValue("chunkSize"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			chunkSize = parsed
		}
	}

	docs := make([]Document, 0, len(headers))
	for _, header := range headers {
		if header.Size > h.svc.cfg.Ingest.MaxFileBytes {
			return apperror.NewBadRequest("file too large: " + header.Filename)
		}
		text, err := readFile(header)
		if err != nil {
			return apperror.NewInternal("failed to read upload", err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, Document{Name: header.Filename, Text: text})
	}

	result, err := h.svc.Ingest(c.Request().Context(), docs, target, chunkSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func readFile(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
