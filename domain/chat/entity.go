package chat

import (
	"github.com/worldloom/worldloom/pkg/apperror"
	"github.com/worldloom/worldloom/pkg/zep"
)

// MessageRole constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxMessageLength bounds a single chat message
const MaxMessageLength = 100000

// CompleteRequest is the request body for a chat turn
type CompleteRequest struct {
	ThreadID string `json:"threadId,omitempty"`
	Message  string `json:"message"`

	// Optional write-scope overrides; config defaults apply when empty
	UserID  string `json:"userId,omitempty"`
	GraphID string `json:"graphId,omitempty"`
}

// Validate checks the request invariants
func (r *CompleteRequest) Validate() error {
	if r.Message == "" {
		return apperror.ErrValidation.WithMessage("message is required")
	}
	if len(r.Message) > MaxMessageLength {
		return apperror.ErrValidation.WithMessage("message too long")
	}
	return nil
}

// CompleteResponse is the response for a chat turn
type CompleteResponse struct {
	ThreadID            string `json:"threadId"`
	Reply               string `json:"reply"`
	WorldUpdatesApplied bool   `json:"worldUpdatesApplied"`
}

// ThreadInfo describes a thread in listings
type ThreadInfo struct {
	ThreadID  string `json:"threadId"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ThreadDetail is a thread with its stored messages
type ThreadDetail struct {
	ThreadInfo
	Messages []zep.Message `json:"messages"`
}

// ListThreadsResult is the paginated thread listing
type ListThreadsResult struct {
	Threads    []ThreadInfo `json:"threads"`
	TotalCount int          `json:"totalCount"`
}

// CreateThreadRequest is the request body for creating a thread
type CreateThreadRequest struct {
	ThreadID string `json:"threadId,omitempty"`
	UserID   string `json:"userId,omitempty"`
}
