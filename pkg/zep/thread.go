package zep

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// User is an account in the graph/thread store
type User struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Thread is a conversation owned by a user
type Thread struct {
	ThreadID  string `json:"thread_id"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Message is one turn of a thread
type Message struct {
	Role     string         `json:"role"`
	Content  string         `json:"content"`
	Name     string         `json:"name,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// CreateUser registers a user
func (c *Client) CreateUser(ctx context.Context, userID string) error {
	body := struct {
		UserID string `json:"user_id"`
	}{UserID: userID}
	return c.postJSON(ctx, "/users", body, nil)
}

// EnsureUser registers the user, treating "already exists" as success
func (c *Client) EnsureUser(ctx context.Context, userID string) error {
	err := c.CreateUser(ctx, userID)
	if err != nil && IsAlreadyExists(err) {
		c.log.Debug("user already exists", slog.String("user_id", userID))
		return nil
	}
	return err
}

// CreateThread creates a thread for the given user
func (c *Client) CreateThread(ctx context.Context, threadID, userID string) error {
	body := struct {
		ThreadID string `json:"thread_id"`
		UserID   string `json:"user_id"`
	}{ThreadID: threadID, UserID: userID}
	return c.postJSON(ctx, "/threads", body, nil)
}

// EnsureThread creates the thread, treating "already exists" as success
func (c *Client) EnsureThread(ctx context.Context, threadID, userID string) error {
	err := c.CreateThread(ctx, threadID, userID)
	if err != nil && IsAlreadyExists(err) {
		c.log.Debug("thread already exists", slog.String("thread_id", threadID))
		return nil
	}
	return err
}

// GetThread returns the thread with its messages
func (c *Client) GetThread(ctx context.Context, threadID string) (*ThreadWithMessages, error) {
	var thread ThreadWithMessages
	if err := c.getJSON(ctx, "/threads/"+url.PathEscape(threadID), &thread); err != nil {
		return nil, err
	}
	return &thread, nil
}

// ThreadWithMessages is a thread plus its stored messages
type ThreadWithMessages struct {
	Thread
	Messages []Message `json:"messages"`
}

// ThreadPage is one page of the thread listing
type ThreadPage struct {
	Threads    []Thread `json:"threads"`
	TotalCount int      `json:"total_count"`
	RowCount   int      `json:"row_count"`
}

// ListThreads returns a page of threads ordered by the given field
func (c *Client) ListThreads(ctx context.Context, pageNumber, pageSize int, orderBy string, asc bool) (*ThreadPage, error) {
	q := url.Values{}
	q.Set("page_number", fmt.Sprint(pageNumber))
	q.Set("page_size", fmt.Sprint(pageSize))
	if orderBy != "" {
		q.Set("order_by", orderBy)
		q.Set("asc", fmt.Sprint(asc))
	}

	var page ThreadPage
	if err := c.getJSON(ctx, "/threads?"+q.Encode(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DeleteThread removes a thread and its messages
func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	return c.doDelete(ctx, "/threads/"+url.PathEscape(threadID))
}

// AddMessagesOptions tunes how stored messages feed the graph
type AddMessagesOptions struct {
	// ReturnContext asks the store to compute and return an updated
	// context block in the same call
	ReturnContext bool

	// IgnoreRoles lists roles excluded from graph extraction
	IgnoreRoles []string
}

// AddThreadMessages appends messages to a thread. The store ingests them
// into the owning user's graph unless their role is ignored.
func (c *Client) AddThreadMessages(ctx context.Context, threadID string, messages []Message, opts *AddMessagesOptions) (string, error) {
	body := struct {
		Messages      []Message `json:"messages"`
		ReturnContext bool      `json:"return_context,omitempty"`
		IgnoreRoles   []string  `json:"ignore_roles,omitempty"`
	}{Messages: messages}
	if opts != nil {
		body.ReturnContext = opts.ReturnContext
		body.IgnoreRoles = opts.IgnoreRoles
	}

	var resp struct {
		Context string `json:"context"`
	}
	if err := c.postJSON(ctx, "/threads/"+url.PathEscape(threadID)+"/messages", body, &resp); err != nil {
		return "", err
	}
	return resp.Context, nil
}

// ContextOptions tunes the user context block returned for a thread
type ContextOptions struct {
	// TemplateID selects a server-side context template
	TemplateID string

	// Mode selects between the full "summary" block and the cheaper
	// "basic" fact listing
	Mode string

	// MinRating filters out facts rated below the threshold
	MinRating float64
}

// GetUserContext returns the memory context block the store maintains for
// the thread's owning user.
func (c *Client) GetUserContext(ctx context.Context, threadID string, opts *ContextOptions) (string, error) {
	q := url.Values{}
	if opts != nil {
		if opts.TemplateID != "" {
			q.Set("template_id", opts.TemplateID)
		}
		if opts.Mode != "" {
			q.Set("mode", opts.Mode)
		}
		if opts.MinRating > 0 {
			q.Set("min_rating", fmt.Sprint(opts.MinRating))
		}
	}

	path := "/threads/" + url.PathEscape(threadID) + "/context"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Context string `json:"context"`
	}
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return "", err
	}
	return resp.Context, nil
}
