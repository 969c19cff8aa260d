package zep

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// EntityNode is a node in the knowledge graph
type EntityNode struct {
	UUID       string         `json:"uuid"`
	Name       string         `json:"name"`
	Summary    string         `json:"summary,omitempty"`
	Labels     []string       `json:"labels,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	CreatedAt  string         `json:"created_at,omitempty"`
}

// EntityEdge is a fact edge between two graph nodes
type EntityEdge struct {
	UUID           string   `json:"uuid"`
	SourceNodeUUID string   `json:"source_node_uuid"`
	TargetNodeUUID string   `json:"target_node_uuid"`
	Type           string   `json:"type,omitempty"`
	Name           string   `json:"name,omitempty"`
	Fact           string   `json:"fact,omitempty"`
	Episodes       []string `json:"episodes,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"`
	ValidAt        string   `json:"valid_at,omitempty"`
	InvalidAt      string   `json:"invalid_at,omitempty"`
	ExpiredAt      string   `json:"expired_at,omitempty"`
}

// Episode is a unit of raw data submitted to the graph for extraction
type Episode struct {
	UUID              string `json:"uuid"`
	Content           string `json:"content"`
	Source            string `json:"source,omitempty"`
	SourceDescription string `json:"source_description,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
	Processed         bool   `json:"processed,omitempty"`
}

// Graph is a named shared graph
type Graph struct {
	GraphID     string `json:"graph_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// AddDataRequest is a single raw-data write
type AddDataRequest struct {
	Data              string
	Type              string // "text", "json" or "message"
	SourceDescription string
	CreatedAt         time.Time
}

type addDataBody struct {
	UserID            string `json:"user_id,omitempty"`
	GraphID           string `json:"graph_id,omitempty"`
	Data              string `json:"data"`
	Type              string `json:"type"`
	SourceDescription string `json:"source_description,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
}

func (c *Client) addDataBody(target Target, req AddDataRequest) addDataBody {
	body := addDataBody{
		Data:              req.Data,
		Type:              req.Type,
		SourceDescription: req.SourceDescription,
	}
	if body.Type == "" {
		body.Type = "json"
	}
	if !req.CreatedAt.IsZero() {
		body.CreatedAt = req.CreatedAt.UTC().Format(time.RFC3339)
	}
	if target.GraphID != "" {
		body.GraphID = target.GraphID
	} else {
		body.UserID = target.UserID
	}
	return body
}

// AddData submits one raw episode to the graph. The store extracts entities
// and facts from it asynchronously.
func (c *Client) AddData(ctx context.Context, target Target, req AddDataRequest) error {
	if err := target.validate(); err != nil {
		return err
	}
	return c.postJSON(ctx, "/graph", c.addDataBody(target, req), nil)
}

// AddDataBatch submits multiple episodes in a single call
func (c *Client) AddDataBatch(ctx context.Context, target Target, reqs []AddDataRequest) error {
	if err := target.validate(); err != nil {
		return err
	}
	if len(reqs) == 0 {
		return nil
	}

	episodes := make([]addDataBody, 0, len(reqs))
	for _, req := range reqs {
		body := c.addDataBody(target, req)
		// scope is carried at the top level of the batch request
		body.UserID = ""
		body.GraphID = ""
		episodes = append(episodes, body)
	}

	body := struct {
		UserID   string        `json:"user_id,omitempty"`
		GraphID  string        `json:"graph_id,omitempty"`
		Episodes []addDataBody `json:"episodes"`
	}{Episodes: episodes}
	if target.GraphID != "" {
		body.GraphID = target.GraphID
	} else {
		body.UserID = target.UserID
	}

	return c.postJSON(ctx, "/graph/add-batch", body, nil)
}

// FactTriple is an explicit source-fact-target assertion
type FactTriple struct {
	Fact           string
	FactName       string
	SourceNodeName string
	TargetNodeName string
	CreatedAt      time.Time
}

// AddFactTriple writes a fact edge between two named nodes, creating the
// nodes if the store does not know them yet.
func (c *Client) AddFactTriple(ctx context.Context, target Target, triple FactTriple) error {
	if err := target.validate(); err != nil {
		return err
	}

	body := struct {
		UserID         string `json:"user_id,omitempty"`
		GraphID        string `json:"graph_id,omitempty"`
		Fact           string `json:"fact"`
		FactName       string `json:"fact_name"`
		SourceNodeName string `json:"source_node_name"`
		TargetNodeName string `json:"target_node_name"`
		CreatedAt      string `json:"created_at,omitempty"`
	}{
		Fact:           triple.Fact,
		FactName:       triple.FactName,
		SourceNodeName: triple.SourceNodeName,
		TargetNodeName: triple.TargetNodeName,
	}
	if !triple.CreatedAt.IsZero() {
		body.CreatedAt = triple.CreatedAt.UTC().Format(time.RFC3339)
	}
	if target.GraphID != "" {
		body.GraphID = target.GraphID
	} else {
		body.UserID = target.UserID
	}

	return c.postJSON(ctx, "/graph/add-fact-triple", body, nil)
}

// SearchResults holds the edges and nodes matched by a graph search
type SearchResults struct {
	Edges []EntityEdge `json:"edges"`
	Nodes []EntityNode `json:"nodes"`
}

// SearchOptions tunes a graph search
type SearchOptions struct {
	Scope         string // "edges", "nodes" or empty for both
	Limit         int
	MinFactRating float64
}

// Search runs a semantic search over the graph for the given scope
func (c *Client) Search(ctx context.Context, target Target, query string, opts SearchOptions) (*SearchResults, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}

	body := struct {
		UserID        string  `json:"user_id,omitempty"`
		GraphID       string  `json:"graph_id,omitempty"`
		Query         string  `json:"query"`
		Scope         string  `json:"scope,omitempty"`
		Limit         int     `json:"limit,omitempty"`
		MinFactRating float64 `json:"min_fact_rating,omitempty"`
	}{Query: query, Scope: opts.Scope, Limit: opts.Limit, MinFactRating: opts.MinFactRating}
	if target.GraphID != "" {
		body.GraphID = target.GraphID
	} else {
		body.UserID = target.UserID
	}

	var results SearchResults
	if err := c.postJSON(ctx, "/graph/search", body, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// CreateGraph creates a named shared graph
func (c *Client) CreateGraph(ctx context.Context, graphID, name string) error {
	body := struct {
		GraphID string `json:"graph_id"`
		Name    string `json:"name,omitempty"`
	}{GraphID: graphID, Name: name}
	return c.postJSON(ctx, "/graph/create", body, nil)
}

// EnsureGraph creates the graph, treating "already exists" as success
func (c *Client) EnsureGraph(ctx context.Context, graphID, name string) error {
	err := c.CreateGraph(ctx, graphID, name)
	if err != nil && IsAlreadyExists(err) {
		c.log.Debug("graph already exists", slog.String("graph_id", graphID))
		return nil
	}
	return err
}

// ListGraphs returns all shared graphs
func (c *Client) ListGraphs(ctx context.Context) ([]Graph, error) {
	var resp struct {
		Graphs []Graph `json:"graphs"`
	}
	if err := c.getJSON(ctx, "/graph/list-all", &resp); err != nil {
		return nil, err
	}
	return resp.Graphs, nil
}

// DeleteGraph removes a shared graph and all of its data
func (c *Client) DeleteGraph(ctx context.Context, graphID string) error {
	return c.doDelete(ctx, "/graph/"+url.PathEscape(graphID))
}

func (t Target) scopePath(kind string) string {
	if t.GraphID != "" {
		return fmt.Sprintf("/graph/%s/graph/%s", kind, url.PathEscape(t.GraphID))
	}
	return fmt.Sprintf("/graph/%s/user/%s", kind, url.PathEscape(t.UserID))
}

// GetNodes returns one page of graph nodes. An empty cursor starts from the
// beginning; pass the UUID of the last node to continue.
func (c *Client) GetNodes(ctx context.Context, target Target, limit int, cursor string) ([]EntityNode, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}

	body := struct {
		Limit      int    `json:"limit"`
		UUIDCursor string `json:"uuid_cursor,omitempty"`
	}{Limit: limit, UUIDCursor: cursor}

	var nodes []EntityNode
	if err := c.postJSON(ctx, target.scopePath("node"), body, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// GetEdges returns one page of graph edges, cursor semantics as GetNodes
func (c *Client) GetEdges(ctx context.Context, target Target, limit int, cursor string) ([]EntityEdge, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}

	body := struct {
		Limit      int    `json:"limit"`
		UUIDCursor string `json:"uuid_cursor,omitempty"`
	}{Limit: limit, UUIDCursor: cursor}

	var edges []EntityEdge
	if err := c.postJSON(ctx, target.scopePath("edge"), body, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}

// AllNodes pages through every node in the target scope. A page shorter
// than PageSize terminates the walk.
func (c *Client) AllNodes(ctx context.Context, target Target) ([]EntityNode, error) {
	var all []EntityNode
	cursor := ""
	for {
		page, err := c.GetNodes(ctx, target, PageSize, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < PageSize {
			return all, nil
		}
		cursor = page[len(page)-1].UUID
	}
}

// AllEdges pages through every edge in the target scope
func (c *Client) AllEdges(ctx context.Context, target Target) ([]EntityEdge, error) {
	var all []EntityEdge
	cursor := ""
	for {
		page, err := c.GetEdges(ctx, target, PageSize, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < PageSize {
			return all, nil
		}
		cursor = page[len(page)-1].UUID
	}
}

// GetEpisodes returns the most recent episodes in the target scope
func (c *Client) GetEpisodes(ctx context.Context, target Target, lastN int) ([]Episode, error) {
	if err := target.validate(); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("%s?lastn=%d", target.scopePath("episodes"), lastN)
	var resp struct {
		Episodes []Episode `json:"episodes"`
	}
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Episodes, nil
}

// DeleteEpisode removes a single episode by UUID
func (c *Client) DeleteEpisode(ctx context.Context, episodeUUID string) error {
	c.log.Debug("deleting episode", slog.String("uuid", episodeUUID))
	return c.doDelete(ctx, "/graph/episodes/"+url.PathEscape(episodeUUID))
}
