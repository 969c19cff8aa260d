package graph

import (
	"github.com/worldloom/worldloom/pkg/zep"
)

// IsolatedNodeEdgeType marks the synthetic self-loop edge attached to nodes
// that appear in no real edge, so visualization clients still receive them.
const IsolatedNodeEdgeType = "_isolated_node_"

// Triplet is one renderable unit of the graph: an edge with both endpoint
// nodes resolved.
type Triplet struct {
	SourceNode zep.EntityNode `json:"sourceNode"`
	Edge       zep.EntityEdge `json:"edge"`
	TargetNode zep.EntityNode `json:"targetNode"`
}

// GraphInfo describes a shared graph in listings
type GraphInfo struct {
	GraphID string `json:"graphId"`
	Name    string `json:"name"`
}

// CreateGraphRequest is the request body for creating a shared graph
type CreateGraphRequest struct {
	GraphID string `json:"graphId"`
	Name    string `json:"name,omitempty"`
}
