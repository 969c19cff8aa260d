package zep

import (
	"context"
	"log/slog"
	"sync"
)

// Field describes one typed attribute of a custom entity or edge type
type Field struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// TextField returns a text-typed ontology field
func TextField(description string) Field {
	return Field{Type: "text", Description: description}
}

// IntField returns an integer-typed ontology field
func IntField(description string) Field {
	return Field{Type: "int", Description: description}
}

// EntityType describes a custom node classification
type EntityType struct {
	Description string           `json:"description"`
	Fields      map[string]Field `json:"fields,omitempty"`
}

// SourceTarget constrains which entity types an edge may connect
type SourceTarget struct {
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// EdgeType describes a custom relationship classification
type EdgeType struct {
	Description   string           `json:"description"`
	Fields        map[string]Field `json:"fields,omitempty"`
	SourceTargets []SourceTarget   `json:"source_targets,omitempty"`
}

// Ontology is a full set of custom entity and edge types
type Ontology struct {
	EntityTypes map[string]EntityType
	EdgeTypes   map[string]EdgeType
}

// SetOntology installs the custom types on a target scope. Repeat calls with
// the same definition are accepted by the store.
func (c *Client) SetOntology(ctx context.Context, target Target, ont Ontology) error {
	if err := target.validate(); err != nil {
		return err
	}

	body := struct {
		UserIDs     []string              `json:"user_ids,omitempty"`
		GraphIDs    []string              `json:"graph_ids,omitempty"`
		EntityTypes map[string]EntityType `json:"entity_types"`
		EdgeTypes   map[string]EdgeType   `json:"edge_types,omitempty"`
	}{EntityTypes: ont.EntityTypes, EdgeTypes: ont.EdgeTypes}
	if target.GraphID != "" {
		body.GraphIDs = []string{target.GraphID}
	} else {
		body.UserIDs = []string{target.UserID}
	}

	return c.postJSON(ctx, "/graph/set-entity-types", body, nil)
}

// OntologyRegistrar installs an ontology on each target scope at most once
// per process. Registration is idempotent on the store side; the cache only
// avoids redundant calls on the hot path.
type OntologyRegistrar struct {
	client *Client
	ont    Ontology
	log    *slog.Logger

	mu         sync.Mutex
	registered map[string]struct{}
}

// NewOntologyRegistrar creates a registrar for the given ontology
func NewOntologyRegistrar(client *Client, ont Ontology, log *slog.Logger) *OntologyRegistrar {
	return &OntologyRegistrar{
		client:     client,
		ont:        ont,
		log:        log,
		registered: make(map[string]struct{}),
	}
}

// Ensure installs the ontology on the target if this process has not done so
// yet. A failed installation is not cached and will be retried on the next
// call.
func (r *OntologyRegistrar) Ensure(ctx context.Context, target Target) error {
	if err := target.validate(); err != nil {
		return err
	}

	key := target.CacheKey()

	r.mu.Lock()
	_, done := r.registered[key]
	r.mu.Unlock()
	if done {
		return nil
	}

	if err := r.client.SetOntology(ctx, target, r.ont); err != nil {
		return err
	}

	r.mu.Lock()
	r.registered[key] = struct{}{}
	r.mu.Unlock()

	r.log.Debug("ontology registered", slog.String("target", key))
	return nil
}
