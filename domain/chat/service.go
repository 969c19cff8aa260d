package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/worldloom/worldloom/domain/worldupdate"
	"github.com/worldloom/worldloom/internal/config"
	"github.com/worldloom/worldloom/pkg/apperror"
	"github.com/worldloom/worldloom/pkg/llm/gemini"
	"github.com/worldloom/worldloom/pkg/logger"
	"github.com/worldloom/worldloom/pkg/zep"
)

const (
	// DefaultPageSize is the default thread-listing page size
	DefaultPageSize = 50

	// MaxPageSize bounds the thread-listing page size
	MaxPageSize = 200
)

// systemPrompt instructs the model to answer in the world-update payload
// format. Plain-text replies remain valid and are passed through untouched.
const systemPrompt = `You are the narrator and world-keeper of a persistent fictional world.
Answer the user in character, and track how the world changes as the story advances.

Respond with a single JSON object of this shape:
{
  "assistant_reply": "<your conversational reply>",
  "world_updates": {
    "new_entities": [], "updated_entities": [],
    "new_relationships": [], "updated_relationships": [],
    "new_events": [], "world_facts": []
  }
}

Entity types: Character, Faction, Location, Item, Event, Concept, WorldFact.
Relationship types: REL_CHARACTER_CHARACTER, REL_CHARACTER_FACTION, REL_CHARACTER_LOCATION,
REL_FACTION_FACTION, REL_ITEM_CHARACTER, REL_ITEM_LOCATION, REL_EVENT_PARTICIPANT,
REL_EVENT_LOCATION, REL_EVENT_EVENT, REL_CONCEPT_RELATED_TO.
New entities may carry a "temp_id" that relationships and events in the same
response can reference. Leave every list empty when nothing changed.

Context about the world and the conversation so far:

`

// Completer is the slice of the LLM client the service needs
type Completer interface {
	Generate(ctx context.Context, system string, messages []gemini.Message) (string, error)
}

// Service orchestrates a chat turn: context retrieval, completion, message
// persistence and world-update application.
type Service struct {
	store     *zep.Client
	registrar *zep.OntologyRegistrar
	applier   *worldupdate.Applier
	llm       Completer
	cfg       *config.Config
	log       *slog.Logger
}

// NewService creates a new chat service. store and llm may be nil when the
// corresponding credential is absent; the service degrades accordingly.
func NewService(store *zep.Client, registrar *zep.OntologyRegistrar, llm Completer, cfg *config.Config, log *slog.Logger) *Service {
	s := &Service{
		store:     store,
		registrar: registrar,
		llm:       llm,
		cfg:       cfg,
		log:       log.With(logger.Scope("chat.svc")),
	}
	if store != nil {
		s.applier = worldupdate.NewApplier(store, log)
	}
	return s
}

// target resolves the write scope for a request, falling back to the
// configured defaults.
func (s *Service) target(req *CompleteRequest) zep.Target {
	t := zep.Target{UserID: req.UserID, GraphID: req.GraphID}
	if t.UserID == "" {
		t.UserID = s.cfg.Zep.UserID
	}
	if t.GraphID == "" {
		t.GraphID = s.cfg.Zep.GraphID
	}
	return t
}

// Complete runs one chat turn. Without a graph store the turn is model-only:
// no context, no persistence. Graph-write failures after the completion are
// logged and never fail the turn.
func (s *Service) Complete(ctx context.Context, req *CompleteRequest) (*CompleteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.llm == nil {
		return nil, apperror.ErrLLMNotConfigured
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}
	target := s.target(req)

	contextBlock := EmptyContextPlaceholder
	if s.store != nil {
		block, err := s.buildContext(ctx, threadID, target, req.Message)
		if err != nil {
			return nil, err
		}
		contextBlock = block
	}

	reply, err := s.llm.Generate(ctx, systemPrompt+contextBlock, []gemini.Message{
		{Role: RoleUser, Content: req.Message},
	})
	if err != nil {
		return nil, apperror.NewUpstream("chat completion failed", err)
	}

	assistantText := reply
	payload, structured := worldupdate.Parse(reply)
	if structured {
		assistantText = payload.AssistantReply
	}

	applied := false
	if s.store != nil {
		// both turns are persisted together once the completion is in
		// hand; the raw reply is stored verbatim even when structured
		_, err := s.store.AddThreadMessages(ctx, threadID, []zep.Message{
			{Role: RoleUser, Content: req.Message},
			{Role: RoleAssistant, Content: reply},
		}, nil)
		if err != nil {
			s.log.Error("failed to persist thread messages",
				slog.String("thread_id", threadID),
				logger.Error(err),
			)
		}

		if structured && payload.HasChanges() {
			if err := s.applier.Apply(ctx, payload, target, time.Now()); err != nil {
				s.log.Error("failed to apply world updates",
					slog.String("thread_id", threadID),
					logger.Error(err),
				)
			} else {
				applied = true
			}
		}
	}

	return &CompleteResponse{
		ThreadID:            threadID,
		Reply:               assistantText,
		WorldUpdatesApplied: applied,
	}, nil
}

// buildContext makes sure the scope exists, then combines graph search
// results with the thread store's memory block.
func (s *Service) buildContext(ctx context.Context, threadID string, target zep.Target, query string) (string, error) {
	if err := s.ensureScope(ctx, threadID, target); err != nil {
		return "", apperror.NewUpstream("graph store unavailable", err)
	}

	results, err := s.store.Search(ctx, target, query, zep.SearchOptions{Limit: s.cfg.Zep.SearchLimit})
	if err != nil {
		s.log.Warn("graph search failed", logger.Error(err))
		results = nil
	}

	memory, err := s.store.GetUserContext(ctx, threadID, &zep.ContextOptions{Mode: "summary"})
	if err != nil {
		s.log.Warn("memory context fetch failed", logger.Error(err))
		memory = ""
	}

	return BuildContext(FormatGraphContext(results), memory), nil
}

func (s *Service) ensureScope(ctx context.Context, threadID string, target zep.Target) error {
	if err := s.store.EnsureUser(ctx, target.UserID); err != nil {
		return err
	}
	if err := s.store.EnsureThread(ctx, threadID, target.UserID); err != nil {
		return err
	}
	if target.GraphID != "" {
		if err := s.store.EnsureGraph(ctx, target.GraphID, target.GraphID); err != nil {
			return err
		}
	}
	return s.registrar.Ensure(ctx, target)
}

// ListThreads returns a page of threads, newest first
func (s *Service) ListThreads(ctx context.Context, pageNumber, pageSize int) (*ListThreadsResult, error) {
	if s.store == nil {
		return nil, apperror.ErrGraphNotConfigured
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	page, err := s.store.ListThreads(ctx, pageNumber, pageSize, "created_at", false)
	if err != nil {
		return nil, apperror.NewUpstream("failed to list threads", err)
	}

	threads := make([]ThreadInfo, 0, len(page.Threads))
	for _, t := range page.Threads {
		threads = append(threads, ThreadInfo{
			ThreadID:  t.ThreadID,
			UserID:    t.UserID,
			CreatedAt: t.CreatedAt,
		})
	}
	return &ListThreadsResult{Threads: threads, TotalCount: page.TotalCount}, nil
}

// GetThread returns a thread with its messages
func (s *Service) GetThread(ctx context.Context, threadID string) (*ThreadDetail, error) {
	if s.store == nil {
		return nil, apperror.ErrGraphNotConfigured
	}

	thread, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		if zep.IsNotFound(err) {
			return nil, apperror.ErrThreadNotFound
		}
		return nil, apperror.NewUpstream("failed to fetch thread", err)
	}

	return &ThreadDetail{
		ThreadInfo: ThreadInfo{
			ThreadID:  thread.ThreadID,
			UserID:    thread.UserID,
			CreatedAt: thread.CreatedAt,
		},
		Messages: thread.Messages,
	}, nil
}

// CreateThread creates a thread, generating an ID when none is given
func (s *Service) CreateThread(ctx context.Context, req *CreateThreadRequest) (*ThreadInfo, error) {
	if s.store == nil {
		return nil, apperror.ErrGraphNotConfigured
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}
	userID := req.UserID
	if userID == "" {
		userID = s.cfg.Zep.UserID
	}

	if err := s.store.EnsureUser(ctx, userID); err != nil {
		return nil, apperror.NewUpstream("failed to ensure user", err)
	}
	if err := s.store.CreateThread(ctx, threadID, userID); err != nil {
		if zep.IsAlreadyExists(err) {
			return nil, apperror.ErrConflict.WithMessage("thread already exists")
		}
		return nil, apperror.NewUpstream("failed to create thread", err)
	}

	return &ThreadInfo{ThreadID: threadID, UserID: userID}, nil
}

// DeleteThread removes a thread and its messages
func (s *Service) DeleteThread(ctx context.Context, threadID string) error {
	if s.store == nil {
		return apperror.ErrGraphNotConfigured
	}
	if err := s.store.DeleteThread(ctx, threadID); err != nil {
		if zep.IsNotFound(err) {
			return apperror.ErrThreadNotFound
		}
		return apperror.NewUpstream("failed to delete thread", err)
	}
	return nil
}
