// Package graph exposes read and admin operations over the knowledge graph:
// full triplet dumps for visualization, episode inspection, and shared-graph
// lifecycle.
package graph

import (
	"context"
	"log/slog"

	"github.com/worldloom/worldloom/internal/config"
	"github.com/worldloom/worldloom/pkg/apperror"
	"github.com/worldloom/worldloom/pkg/logger"
	"github.com/worldloom/worldloom/pkg/zep"
)

// EpisodeBatchSize is how many recent episodes a listing returns
const EpisodeBatchSize = 100

// Service handles graph read and admin operations
type Service struct {
	store     *zep.Client
	registrar *zep.OntologyRegistrar
	cfg       *config.Config
	log       *slog.Logger
}

// NewService creates a new graph service
func NewService(store *zep.Client, registrar *zep.OntologyRegistrar, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		store:     store,
		registrar: registrar,
		cfg:       cfg,
		log:       log.With(logger.Scope("graph.svc")),
	}
}

func (s *Service) requireStore() error {
	if s.store == nil {
		return apperror.ErrGraphNotConfigured
	}
	return nil
}

// Triplets returns every edge of the target scope with its endpoint nodes
// resolved, plus a synthetic self-loop for each node no edge references.
func (s *Service) Triplets(ctx context.Context, target zep.Target) ([]Triplet, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if target.IsZero() {
		return nil, apperror.ErrBadRequest.WithMessage("either graphId or userId is required")
	}

	nodes, err := s.store.AllNodes(ctx, target)
	if err != nil {
		return nil, apperror.NewUpstream("failed to read graph nodes", err)
	}
	edges, err := s.store.AllEdges(ctx, target)
	if err != nil {
		return nil, apperror.NewUpstream("failed to read graph edges", err)
	}

	return buildTriplets(edges, nodes), nil
}

// buildTriplets joins edges to nodes in edge order, dropping edges whose
// endpoints are unknown, then appends isolated-node self-loops in node
// order.
func buildTriplets(edges []zep.EntityEdge, nodes []zep.EntityNode) []Triplet {
	nodesByUUID := make(map[string]zep.EntityNode, len(nodes))
	for _, n := range nodes {
		nodesByUUID[n.UUID] = n
	}

	connected := make(map[string]struct{})
	triplets := make([]Triplet, 0, len(edges))
	for _, edge := range edges {
		source, okSource := nodesByUUID[edge.SourceNodeUUID]
		target, okTarget := nodesByUUID[edge.TargetNodeUUID]
		if !okSource || !okTarget {
			continue
		}
		connected[source.UUID] = struct{}{}
		connected[target.UUID] = struct{}{}
		triplets = append(triplets, Triplet{SourceNode: source, Edge: edge, TargetNode: target})
	}

	for _, node := range nodes {
		if _, ok := connected[node.UUID]; ok {
			continue
		}
		triplets = append(triplets, Triplet{
			SourceNode: node,
			Edge: zep.EntityEdge{
				UUID:           "isolated-node-" + node.UUID,
				SourceNodeUUID: node.UUID,
				TargetNodeUUID: node.UUID,
				Type:           IsolatedNodeEdgeType,
				CreatedAt:      node.CreatedAt,
			},
			TargetNode: node,
		})
	}

	return triplets
}

// Episodes returns the most recent episodes of the target scope
func (s *Service) Episodes(ctx context.Context, target zep.Target) ([]zep.Episode, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if target.IsZero() {
		return nil, apperror.ErrBadRequest.WithMessage("either graphId or userId is required")
	}

	episodes, err := s.store.GetEpisodes(ctx, target, EpisodeBatchSize)
	if err != nil {
		return nil, apperror.NewUpstream("failed to list episodes", err)
	}
	if episodes == nil {
		episodes = []zep.Episode{}
	}
	return episodes, nil
}

// DeleteEpisode removes one episode by UUID
func (s *Service) DeleteEpisode(ctx context.Context, episodeUUID string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	if err := s.store.DeleteEpisode(ctx, episodeUUID); err != nil {
		if zep.IsNotFound(err) {
			return apperror.NewNotFound("episode", episodeUUID)
		}
		return apperror.NewUpstream("failed to delete episode", err)
	}
	return nil
}

// ListGraphs returns all shared graphs
func (s *Service) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	graphs, err := s.store.ListGraphs(ctx)
	if err != nil {
		return nil, apperror.NewUpstream("failed to list graphs", err)
	}

	infos := make([]GraphInfo, 0, len(graphs))
	for _, g := range graphs {
		name := g.Name
		if name == "" {
			name = g.GraphID
		}
		infos = append(infos, GraphInfo{GraphID: g.GraphID, Name: name})
	}
	return infos, nil
}

// CreateGraph sets up a shared graph: the default user, the graph itself and
// its ontology. All steps are idempotent.
func (s *Service) CreateGraph(ctx context.Context, req *CreateGraphRequest) (*GraphInfo, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	if req.GraphID == "" {
		return nil, apperror.ErrValidation.WithMessage("graphId is required")
	}

	if err := s.store.EnsureUser(ctx, s.cfg.Zep.UserID); err != nil {
		return nil, apperror.NewUpstream("failed to ensure user", err)
	}
	if err := s.store.EnsureGraph(ctx, req.GraphID, req.GraphID); err != nil {
		return nil, apperror.NewUpstream("failed to ensure graph", err)
	}
	if err := s.registrar.Ensure(ctx, zep.Target{GraphID: req.GraphID}); err != nil {
		return nil, apperror.NewUpstream("failed to register ontology", err)
	}

	name := req.Name
	if name == "" {
		name = req.GraphID
	}
	s.log.Info("graph created", slog.String("graph_id", req.GraphID))
	return &GraphInfo{GraphID: req.GraphID, Name: name}, nil
}

// DeleteGraph removes a shared graph and all of its data
func (s *Service) DeleteGraph(ctx context.Context, graphID string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	if err := s.store.DeleteGraph(ctx, graphID); err != nil {
		if zep.IsNotFound(err) {
			return apperror.NewNotFound("graph", graphID)
		}
		return apperror.NewUpstream("failed to delete graph", err)
	}
	s.log.Info("graph deleted", slog.String("graph_id", graphID))
	return nil
}
