package apperror

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestContext(method string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("response missing error object: %v", body)
	}
	return errObj
}

func TestHTTPErrorHandler_AppError(t *testing.T) {
	handler := HTTPErrorHandler(slog.Default())
	c, rec := newTestContext(http.MethodGet)

	handler(ErrThreadNotFound, c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	errObj := decodeError(t, rec)
	if errObj["code"] != "thread_not_found" {
		t.Errorf("code = %v", errObj["code"])
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	handler := HTTPErrorHandler(slog.Default())
	c, rec := newTestContext(http.MethodGet)

	handler(echo.NewHTTPError(http.StatusBadRequest, "malformed body"), c)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	errObj := decodeError(t, rec)
	if errObj["code"] != "bad_request" {
		t.Errorf("code = %v", errObj["code"])
	}
	if errObj["message"] != "malformed body" {
		t.Errorf("message = %v", errObj["message"])
	}
}

func TestHTTPErrorHandler_UnknownError(t *testing.T) {
	handler := HTTPErrorHandler(slog.Default())
	c, rec := newTestContext(http.MethodGet)

	handler(errors.New("kaboom"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	errObj := decodeError(t, rec)
	if errObj["code"] != "internal_error" {
		t.Errorf("code = %v", errObj["code"])
	}
	// Internal details must not leak to the client
	if errObj["message"] == "kaboom" {
		t.Error("unknown error message leaked to response")
	}
}

func TestHTTPErrorHandler_HeadRequest(t *testing.T) {
	handler := HTTPErrorHandler(slog.Default())
	c, rec := newTestContext(http.MethodHead)

	handler(ErrNotFound, c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD response must have no body, got %q", rec.Body.String())
	}
}
