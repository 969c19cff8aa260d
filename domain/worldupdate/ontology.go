package worldupdate

import "github.com/worldloom/worldloom/pkg/zep"

// WorldOntology returns the custom entity and edge types registered on every
// graph scope the application writes to. The store uses these to classify
// what it extracts from episodes.
func WorldOntology() zep.Ontology {
	return zep.Ontology{
		EntityTypes: map[string]zep.EntityType{
			string(EntityCharacter): {
				Description: "Characters such as people or creatures.",
				Fields: map[string]zep.Field{
					"aliases":          zep.TextField("Aliases or alternative names"),
					"kind":             zep.TextField("Species or type"),
					"role":             zep.TextField("Role or occupation"),
					"factions":         zep.TextField("Faction identifiers or names"),
					"personality_tags": zep.TextField("Personality tags"),
					"goals":            zep.TextField("Goals or motivations"),
					"secrets":          zep.TextField("Hidden information"),
					"status":           zep.TextField("Status such as alive/dead/missing"),
					"location_id":      zep.TextField("Current location identifier"),
					"notes":            zep.TextField("Additional notes"),
				},
			},
			string(EntityFaction): {
				Description: "Organizations, groups, or factions.",
				Fields: map[string]zep.Field{
					"kind":     zep.TextField("Faction type"),
					"ideology": zep.TextField("Ideology or belief"),
					"goals":    zep.TextField("Goals"),
					"strength": zep.TextField("Strength estimate"),
					"notes":    zep.TextField("Additional notes"),
				},
			},
			string(EntityLocation): {
				Description: "Places in the world.",
				Fields: map[string]zep.Field{
					"kind":               zep.TextField("Location type"),
					"parent_location_id": zep.TextField("Parent location identifier"),
					"description":        zep.TextField("Description"),
					"tags":               zep.TextField("Tags"),
				},
			},
			string(EntityItem): {
				Description: "Items, artifacts, devices, or relics.",
				Fields: map[string]zep.Field{
					"kind":             zep.TextField("Item type"),
					"properties":       zep.TextField("Properties or traits"),
					"current_owner_id": zep.TextField("Current owner identifier"),
					"location_id":      zep.TextField("Location identifier if not owned"),
					"notes":            zep.TextField("Additional notes"),
				},
			},
			string(EntityEvent): {
				Description: "Important events.",
				Fields: map[string]zep.Field{
					"summary_text": zep.TextField("Event summary"),
					"time":         zep.TextField("World time"),
					"importance":   zep.IntField("Importance 1-5"),
					"status":       zep.TextField("Event status"),
					"notes":        zep.TextField("Additional notes"),
				},
			},
			string(EntityConcept): {
				Description: "Abstract concepts, rules, or myths.",
				Fields: map[string]zep.Field{
					"kind":         zep.TextField("Concept type"),
					"summary_text": zep.TextField("Summary"),
					"notes":        zep.TextField("Additional notes"),
				},
			},
			string(EntityWorldFact): {
				Description: "Key-value style world facts.",
				Fields: map[string]zep.Field{
					"key":   zep.TextField("Fact key"),
					"value": zep.TextField("Fact value"),
					"notes": zep.TextField("Additional notes"),
				},
			},
		},
		EdgeTypes: map[string]zep.EdgeType{
			string(RelCharacterCharacter): relationEdge(
				"Relations between characters.",
				zep.SourceTarget{Source: string(EntityCharacter), Target: string(EntityCharacter)},
			),
			string(RelCharacterFaction): relationEdge(
				"Relations between characters and factions.",
				zep.SourceTarget{Source: string(EntityCharacter), Target: string(EntityFaction)},
			),
			string(RelCharacterLocation): relationEdge(
				"Relations between characters and locations.",
				zep.SourceTarget{Source: string(EntityCharacter), Target: string(EntityLocation)},
			),
			string(RelFactionFaction): relationEdge(
				"Relations between factions.",
				zep.SourceTarget{Source: string(EntityFaction), Target: string(EntityFaction)},
			),
			string(RelItemCharacter): relationEdge(
				"Relations between items and characters.",
				zep.SourceTarget{Source: string(EntityItem), Target: string(EntityCharacter)},
			),
			string(RelItemLocation): relationEdge(
				"Relations between items and locations.",
				zep.SourceTarget{Source: string(EntityItem), Target: string(EntityLocation)},
			),
			string(RelEventParticipant): {
				Description: "Event participants and their roles.",
				Fields: map[string]zep.Field{
					"role":  zep.TextField("Role in event"),
					"notes": zep.TextField("Notes"),
				},
				SourceTargets: []zep.SourceTarget{
					{Source: string(EntityCharacter), Target: string(EntityEvent)},
					{Source: string(EntityFaction), Target: string(EntityEvent)},
				},
			},
			string(RelEventLocation): relationEdge(
				"Event location relation.",
				zep.SourceTarget{Source: string(EntityEvent), Target: string(EntityLocation)},
			),
			string(RelEventEvent): relationEdge(
				"Causal relations between events.",
				zep.SourceTarget{Source: string(EntityEvent), Target: string(EntityEvent)},
			),
			string(RelConceptRelatedTo): relationEdge(
				"Relations involving concepts.",
				zep.SourceTarget{Source: string(EntityConcept), Target: string(EntityCharacter)},
				zep.SourceTarget{Source: string(EntityConcept), Target: string(EntityFaction)},
				zep.SourceTarget{Source: string(EntityConcept), Target: string(EntityEvent)},
				zep.SourceTarget{Source: string(EntityConcept), Target: string(EntityConcept)},
			),
		},
	}
}

func relationEdge(description string, sourceTargets ...zep.SourceTarget) zep.EdgeType {
	return zep.EdgeType{
		Description: description,
		Fields: map[string]zep.Field{
			"relation": zep.TextField("Relation type"),
			"notes":    zep.TextField("Notes"),
		},
		SourceTargets: sourceTargets,
	}
}
