package worldupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/worldloom/worldloom/pkg/logger"
	"github.com/worldloom/worldloom/pkg/zep"
)

// Source-description tags distinguishing payload-driven episodes from
// document ingestion in the store's episode log.
const (
	sourceNewEntity     = "world_update:new_entity"
	sourceUpdatedEntity = "world_update:updated_entity"
	sourceNewEvent      = "world_update:new_event"
	sourceWorldFact     = "world_update:world_fact"
	sourceRelationship  = "world_update:relationship"
)

const (
	defaultParticipantFact = "participant"
	eventLocationFact      = "OCCURRED_AT"
	defaultRelationFact    = "RELATED"
)

// GraphWriter is the slice of the store client the applier needs
type GraphWriter interface {
	AddData(ctx context.Context, target zep.Target, req zep.AddDataRequest) error
	AddFactTriple(ctx context.Context, target zep.Target, triple zep.FactTriple) error
}

// Applier turns a validated payload into an ordered sequence of store
// writes. Writes are independent network calls with no rollback: the first
// failure aborts the pass and prior writes stay applied. Replays rely on the
// store's own dedup behavior for idempotence.
type Applier struct {
	writer GraphWriter
	log    *slog.Logger
}

// NewApplier creates an applier writing through the given client
func NewApplier(writer GraphWriter, log *slog.Logger) *Applier {
	return &Applier{
		writer: writer,
		log:    log.With(logger.Scope("worldupdate.applier")),
	}
}

// Apply executes the payload's mutations against the target scope, in
// order: new entities, updated entities, events, world facts, then the
// flattened relationship lists.
func (a *Applier) Apply(ctx context.Context, p *Payload, target zep.Target, createdAt time.Time) error {
	if target.IsZero() {
		return fmt.Errorf("apply world updates: %w", errMissingTarget)
	}

	w := p.WorldUpdates
	tempIDs := buildTempIDMap(w.NewEntities)

	for _, entity := range w.NewEntities {
		data := taggedJSON("entity_type", string(entity.Type), normalizeAttrs(entity.Attrs))
		if err := a.addData(ctx, target, data, sourceNewEntity, createdAt); err != nil {
			return err
		}
	}

	for _, update := range w.UpdatedEntities {
		data := taggedJSON("entity_type", string(update.Type), normalizeAttrs(update.Attrs))
		if err := a.addData(ctx, target, data, sourceUpdatedEntity, createdAt); err != nil {
			return err
		}
	}

	for _, event := range w.NewEvents {
		if err := a.applyEvent(ctx, target, event, tempIDs, createdAt); err != nil {
			return err
		}
	}

	for _, fact := range w.WorldFacts {
		data := taggedJSON("entity_type", string(EntityWorldFact), fact.Attrs)
		if err := a.addData(ctx, target, data, sourceWorldFact, createdAt); err != nil {
			return err
		}
	}

	relationships := make([]Relationship, 0, len(w.NewRelationships)+len(w.UpdatedRelationships))
	relationships = append(relationships, w.NewRelationships...)
	relationships = append(relationships, w.UpdatedRelationships...)
	for _, rel := range relationships {
		if err := a.applyRelationship(ctx, target, rel, tempIDs, createdAt); err != nil {
			return err
		}
	}

	return nil
}

func (a *Applier) applyEvent(ctx context.Context, target zep.Target, event Event, tempIDs tempIDMap, createdAt time.Time) error {
	data := taggedJSON("entity_type", string(EntityEvent), normalizeAttrs(event.Attrs))
	if err := a.addData(ctx, target, data, sourceNewEvent, createdAt); err != nil {
		return err
	}

	for _, participant := range event.Participants {
		name := tempIDs.resolve(participant.EntityName, participant.EntityID)
		if name == "" {
			// unresolvable participants are skipped, not fatal
			a.log.Warn("skipping unresolvable event participant",
				slog.String("event", event.Name),
				slog.String("entity_id", participant.EntityID),
			)
			continue
		}
		fact := participant.Role
		if fact == "" {
			fact = defaultParticipantFact
		}
		err := a.writer.AddFactTriple(ctx, target, zep.FactTriple{
			Fact:           fact,
			FactName:       string(RelEventParticipant),
			SourceNodeName: name,
			TargetNodeName: event.Name,
			CreatedAt:      createdAt,
		})
		if err != nil {
			return fmt.Errorf("event participant triple: %w", err)
		}
	}

	if location := tempIDs.resolve(event.LocationName, event.LocationID); location != "" {
		err := a.writer.AddFactTriple(ctx, target, zep.FactTriple{
			Fact:           eventLocationFact,
			FactName:       string(RelEventLocation),
			SourceNodeName: event.Name,
			TargetNodeName: location,
			CreatedAt:      createdAt,
		})
		if err != nil {
			return fmt.Errorf("event location triple: %w", err)
		}
	}

	return nil
}

func (a *Applier) applyRelationship(ctx context.Context, target zep.Target, rel Relationship, tempIDs tempIDMap, createdAt time.Time) error {
	source := tempIDs.resolve(rel.FromEntityName, rel.FromEntityID)
	dest := tempIDs.resolve(rel.ToEntityName, rel.ToEntityID)

	if source != "" && dest != "" {
		err := a.writer.AddFactTriple(ctx, target, zep.FactTriple{
			Fact:           relationshipFact(rel),
			FactName:       string(rel.Type),
			SourceNodeName: source,
			TargetNodeName: dest,
			CreatedAt:      createdAt,
		})
		if err != nil {
			return fmt.Errorf("relationship triple: %w", err)
		}
		return nil
	}

	// degrade rather than drop: an unresolvable relationship is still
	// persisted as a raw record for later inspection
	a.log.Warn("relationship endpoint unresolvable, writing raw record",
		slog.String("type", string(rel.Type)),
		slog.String("from_entity_id", rel.FromEntityID),
		slog.String("to_entity_id", rel.ToEntityID),
	)
	data := taggedJSON("relationship_type", string(rel.Type), rel.Attrs)
	return a.addData(ctx, target, data, sourceRelationship, createdAt)
}

// relationshipFact picks the fact text: relation, role, notes, first
// non-empty wins.
func relationshipFact(rel Relationship) string {
	switch {
	case rel.Relation != "":
		return rel.Relation
	case rel.Role != "":
		return rel.Role
	case rel.Notes != "":
		return rel.Notes
	default:
		return defaultRelationFact
	}
}

func (a *Applier) addData(ctx context.Context, target zep.Target, data, source string, createdAt time.Time) error {
	err := a.writer.AddData(ctx, target, zep.AddDataRequest{
		Data:              data,
		Type:              "json",
		SourceDescription: source,
		CreatedAt:         createdAt,
	})
	if err != nil {
		return fmt.Errorf("%s write: %w", source, err)
	}
	return nil
}

// taggedJSON serializes attrs with the tag key prepended. A raw attribute
// with the same key wins, matching passthrough semantics. Empty tag values
// are omitted.
func taggedJSON(tagKey, tagValue string, attrs map[string]any) string {
	out := make(map[string]any, len(attrs)+1)
	if tagValue != "" {
		out[tagKey] = tagValue
	}
	for k, v := range attrs {
		out[k] = v
	}
	data, err := json.Marshal(out)
	if err != nil {
		// attrs come from json.Unmarshal and always re-serialize
		panic(err)
	}
	return string(data)
}
