package zep

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error represents an error response from the graph/thread store API.
type Error struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("zep: [%d] %s", e.StatusCode, e.Message)
}

// IsAlreadyExists reports whether err is the store's "target already exists"
// rejection. The API signals it as either 400 or 409 depending on the
// resource; the ensure-style calls treat both as success.
func IsAlreadyExists(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusConflict
	}
	return false
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// parseErrorResponse turns an HTTP error response into an *Error.
func parseErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to read error response: %v", err),
		}
	}

	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		if msg != "" {
			return &Error{StatusCode: resp.StatusCode, Message: msg}
		}
	}

	return &Error{StatusCode: resp.StatusCode, Message: string(body)}
}
