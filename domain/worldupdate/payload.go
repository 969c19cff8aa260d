// Package worldupdate parses the structured world-update payload a model
// turn may carry and applies the described graph mutations to the external
// store.
package worldupdate

import (
	"encoding/json"
	"math"
	"strings"
)

// EntityType classifies a graph node. The set is closed; values outside it
// fail validation.
type EntityType string

const (
	EntityCharacter EntityType = "Character"
	EntityFaction   EntityType = "Faction"
	EntityLocation  EntityType = "Location"
	EntityItem      EntityType = "Item"
	EntityEvent     EntityType = "Event"
	EntityConcept   EntityType = "Concept"
	EntityWorldFact EntityType = "WorldFact"
)

var entityTypes = map[EntityType]struct{}{
	EntityCharacter: {},
	EntityFaction:   {},
	EntityLocation:  {},
	EntityItem:      {},
	EntityEvent:     {},
	EntityConcept:   {},
	EntityWorldFact: {},
}

// Valid reports whether t is a member of the closed entity-type set
func (t EntityType) Valid() bool {
	_, ok := entityTypes[t]
	return ok
}

// RelationshipType classifies a directed edge. Closed set, as EntityType.
type RelationshipType string

const (
	RelCharacterCharacter RelationshipType = "REL_CHARACTER_CHARACTER"
	RelCharacterFaction   RelationshipType = "REL_CHARACTER_FACTION"
	RelCharacterLocation  RelationshipType = "REL_CHARACTER_LOCATION"
	RelFactionFaction     RelationshipType = "REL_FACTION_FACTION"
	RelItemCharacter      RelationshipType = "REL_ITEM_CHARACTER"
	RelItemLocation       RelationshipType = "REL_ITEM_LOCATION"
	RelEventParticipant   RelationshipType = "REL_EVENT_PARTICIPANT"
	RelEventLocation      RelationshipType = "REL_EVENT_LOCATION"
	RelEventEvent         RelationshipType = "REL_EVENT_EVENT"
	RelConceptRelatedTo   RelationshipType = "REL_CONCEPT_RELATED_TO"
)

var relationshipTypes = map[RelationshipType]struct{}{
	RelCharacterCharacter: {},
	RelCharacterFaction:   {},
	RelCharacterLocation:  {},
	RelFactionFaction:     {},
	RelItemCharacter:      {},
	RelItemLocation:       {},
	RelEventParticipant:   {},
	RelEventLocation:      {},
	RelEventEvent:         {},
	RelConceptRelatedTo:   {},
}

// Valid reports whether t is a member of the closed relationship-type set
func (t RelationshipType) Valid() bool {
	_, ok := relationshipTypes[t]
	return ok
}

// Entity is a node the model wants created. Unknown keys are kept in Attrs
// and written through to the store untouched.
type Entity struct {
	Type   EntityType
	Name   string
	TempID string
	ID     string
	Attrs  map[string]any
}

// UnmarshalJSON validates the typed fields and keeps the full raw object
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	typ, ok := requiredString(raw, "type")
	if !ok || !EntityType(typ).Valid() {
		return errInvalidPayload
	}
	name, ok := optionalString(raw, "name")
	if !ok {
		return errInvalidPayload
	}
	tempID, ok := optionalString(raw, "temp_id")
	if !ok {
		return errInvalidPayload
	}
	id, ok := optionalString(raw, "id")
	if !ok {
		return errInvalidPayload
	}

	*e = Entity{Type: EntityType(typ), Name: name, TempID: tempID, ID: id, Attrs: raw}
	return nil
}

// EntityUpdate is a delta against an existing node. Set overwrites fields,
// Append carries fields whose existing data is extended.
type EntityUpdate struct {
	ID     string
	Name   string
	Type   EntityType
	Set    map[string]any
	Append map[string]any
	Attrs  map[string]any
}

func (u *EntityUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, ok := optionalString(raw, "id")
	if !ok {
		return errInvalidPayload
	}
	name, ok := optionalString(raw, "name")
	if !ok {
		return errInvalidPayload
	}
	typ, ok := optionalString(raw, "type")
	if !ok || (typ != "" && !EntityType(typ).Valid()) {
		return errInvalidPayload
	}
	set, ok := optionalMap(raw, "set")
	if !ok {
		return errInvalidPayload
	}
	app, ok := optionalMap(raw, "append")
	if !ok {
		return errInvalidPayload
	}

	*u = EntityUpdate{ID: id, Name: name, Type: EntityType(typ), Set: set, Append: app, Attrs: raw}
	return nil
}

// Relationship is a directed edge between two entities, each endpoint given
// as a direct name or a payload-scoped temp id.
type Relationship struct {
	Type           RelationshipType
	FromEntityID   string
	ToEntityID     string
	FromEntityName string
	ToEntityName   string
	Relation       string
	Role           string
	Notes          string
	Attrs          map[string]any
}

func (r *Relationship) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	typ, ok := requiredString(raw, "type")
	if !ok || !RelationshipType(typ).Valid() {
		return errInvalidPayload
	}

	rel := Relationship{Type: RelationshipType(typ), Attrs: raw}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"from_entity_id", &rel.FromEntityID},
		{"to_entity_id", &rel.ToEntityID},
		{"from_entity_name", &rel.FromEntityName},
		{"to_entity_name", &rel.ToEntityName},
		{"relation", &rel.Relation},
		{"role", &rel.Role},
		{"notes", &rel.Notes},
	} {
		v, ok := optionalString(raw, f.key)
		if !ok {
			return errInvalidPayload
		}
		*f.dst = v
	}

	*r = rel
	return nil
}

// Participant ties an entity to an event with an optional role
type Participant struct {
	EntityID   string `json:"entity_id,omitempty"`
	EntityName string `json:"entity_name,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Event is a named occurrence. Applying it produces one entity write plus
// participant and location fact triples.
type Event struct {
	Name         string
	Summary      string
	Time         string
	Importance   int
	Status       string
	Notes        string
	Participants []Participant
	LocationID   string
	LocationName string
	Attrs        map[string]any
}

func (ev *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	name, ok := requiredString(raw, "name")
	if !ok {
		return errInvalidPayload
	}

	out := Event{Name: name, Attrs: raw}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"summary", &out.Summary},
		{"time", &out.Time},
		{"status", &out.Status},
		{"notes", &out.Notes},
		{"location_id", &out.LocationID},
		{"location_name", &out.LocationName},
	} {
		v, ok := optionalString(raw, f.key)
		if !ok {
			return errInvalidPayload
		}
		*f.dst = v
	}

	if v, present := raw["importance"]; present {
		f, isNum := v.(float64)
		if !isNum || f != math.Trunc(f) {
			return errInvalidPayload
		}
		out.Importance = int(f)
	}

	if v, present := raw["participants"]; present {
		items, isList := v.([]any)
		if !isList {
			return errInvalidPayload
		}
		for _, item := range items {
			m, isMap := item.(map[string]any)
			if !isMap {
				return errInvalidPayload
			}
			var p Participant
			for _, f := range []struct {
				key string
				dst *string
			}{
				{"entity_id", &p.EntityID},
				{"entity_name", &p.EntityName},
				{"role", &p.Role},
			} {
				s, ok := optionalString(m, f.key)
				if !ok {
					return errInvalidPayload
				}
				*f.dst = s
			}
			out.Participants = append(out.Participants, p)
		}
	}

	*ev = out
	return nil
}

// WorldFact is a flat key/value record
type WorldFact struct {
	Key   string
	Value string
	Notes string
	Attrs map[string]any
}

func (f *WorldFact) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	key, ok := requiredString(raw, "key")
	if !ok {
		return errInvalidPayload
	}
	value, ok := requiredString(raw, "value")
	if !ok {
		return errInvalidPayload
	}
	notes, ok := optionalString(raw, "notes")
	if !ok {
		return errInvalidPayload
	}

	*f = WorldFact{Key: key, Value: value, Notes: notes, Attrs: raw}
	return nil
}

// WorldUpdates holds the six mutation lists. Every list is non-nil after a
// successful parse; "no changes" is an empty list, never a missing one.
type WorldUpdates struct {
	NewEntities          []Entity       `json:"new_entities"`
	UpdatedEntities      []EntityUpdate `json:"updated_entities"`
	NewRelationships     []Relationship `json:"new_relationships"`
	UpdatedRelationships []Relationship `json:"updated_relationships"`
	NewEvents            []Event        `json:"new_events"`
	WorldFacts           []WorldFact    `json:"world_facts"`
}

// Payload is the top-level structure the model emits
type Payload struct {
	AssistantReply string       `json:"assistant_reply"`
	WorldUpdates   WorldUpdates `json:"world_updates"`
}

// HasChanges reports whether any mutation list is non-empty
func (p *Payload) HasChanges() bool {
	w := p.WorldUpdates
	return len(w.NewEntities) > 0 ||
		len(w.UpdatedEntities) > 0 ||
		len(w.NewRelationships) > 0 ||
		len(w.UpdatedRelationships) > 0 ||
		len(w.NewEvents) > 0 ||
		len(w.WorldFacts) > 0
}

// Parse attempts to read raw as a world-update payload. Plain-text replies
// are the common case, so any parse or validation failure returns (nil,
// false) rather than an error. Markdown code fences around the JSON are
// tolerated.
func Parse(raw string) (*Payload, bool) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return nil, false
	}

	var top struct {
		AssistantReply *string         `json:"assistant_reply"`
		WorldUpdates   json.RawMessage `json:"world_updates"`
	}
	if err := json.Unmarshal([]byte(cleaned), &top); err != nil {
		return nil, false
	}
	if top.AssistantReply == nil || len(top.WorldUpdates) == 0 || string(top.WorldUpdates) == "null" {
		return nil, false
	}

	var updates WorldUpdates
	if err := json.Unmarshal(top.WorldUpdates, &updates); err != nil {
		return nil, false
	}

	if updates.NewEntities == nil {
		updates.NewEntities = []Entity{}
	}
	if updates.UpdatedEntities == nil {
		updates.UpdatedEntities = []EntityUpdate{}
	}
	if updates.NewRelationships == nil {
		updates.NewRelationships = []Relationship{}
	}
	if updates.UpdatedRelationships == nil {
		updates.UpdatedRelationships = []Relationship{}
	}
	if updates.NewEvents == nil {
		updates.NewEvents = []Event{}
	}
	if updates.WorldFacts == nil {
		updates.WorldFacts = []WorldFact{}
	}

	return &Payload{AssistantReply: *top.AssistantReply, WorldUpdates: updates}, true
}

// stripCodeFences removes a surrounding markdown code fence, if present
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
