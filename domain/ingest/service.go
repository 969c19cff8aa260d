// Package ingest feeds uploaded documents into the knowledge graph as
// chunked text episodes.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/worldloom/worldloom/internal/config"
	"github.com/worldloom/worldloom/pkg/apperror"
	"github.com/worldloom/worldloom/pkg/logger"
	"github.com/worldloom/worldloom/pkg/textsplitter"
	"github.com/worldloom/worldloom/pkg/zep"
)

// Document is one uploaded file's extracted text
type Document struct {
	Name string
	Text string
}

// Result summarizes an ingestion run
type Result struct {
	OK     bool `json:"ok"`
	Files  int  `json:"files"`
	Chunks int  `json:"chunks"`
}

// Service chunks documents and writes them to the graph store
type Service struct {
	store     *zep.Client
	registrar *zep.OntologyRegistrar
	cfg       *config.Config
	log       *slog.Logger
}

// NewService creates a new ingest service
func NewService(store *zep.Client, registrar *zep.OntologyRegistrar, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		store:     store,
		registrar: registrar,
		cfg:       cfg,
		log:       log.With(logger.Scope("ingest.svc")),
	}
}

// Ingest chunks each document and submits all chunks as one batch. The
// target scope is created on demand; files with no usable text are skipped.
func (s *Service) Ingest(ctx context.Context, docs []Document, target zep.Target, chunkSize int) (*Result, error) {
	if s.store == nil {
		return nil, apperror.ErrGraphNotConfigured
	}
	if len(docs) == 0 {
		return nil, apperror.ErrBadRequest.WithMessage("missing file upload")
	}
	if chunkSize <= 0 {
		chunkSize = s.cfg.Ingest.ChunkSize
	}

	if err := s.ensureScope(ctx, target); err != nil {
		return nil, apperror.NewUpstream("graph store unavailable", err)
	}

	createdAt := time.Now()
	var episodes []zep.AddDataRequest
	for _, doc := range docs {
		chunks := textsplitter.ChunkText(doc.Text, chunkSize)
		for i, chunk := range chunks {
			episodes = append(episodes, zep.AddDataRequest{
				Data:              chunk,
				Type:              "text",
				SourceDescription: fmt.Sprintf("%s (chunk %d/%d)", doc.Name, i+1, len(chunks)),
				CreatedAt:         createdAt,
			})
		}
	}

	if len(episodes) == 0 {
		return nil, apperror.ErrBadRequest.WithMessage("no valid text extracted from files")
	}

	if err := s.store.AddDataBatch(ctx, target, episodes); err != nil {
		return nil, apperror.NewUpstream("failed to ingest documents", err)
	}

	s.log.Info("documents ingested",
		slog.Int("files", len(docs)),
		slog.Int("chunks", len(episodes)),
	)
	return &Result{OK: true, Files: len(docs), Chunks: len(episodes)}, nil
}

func (s *Service) ensureScope(ctx context.Context, target zep.Target) error {
	if err := s.store.EnsureUser(ctx, target.UserID); err != nil {
		return err
	}
	if target.GraphID != "" {
		if err := s.store.EnsureGraph(ctx, target.GraphID, target.GraphID); err != nil {
			return err
		}
	}
	return s.registrar.Ensure(ctx, target)
}
