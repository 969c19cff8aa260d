package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worldloom/worldloom/pkg/zep"
)

func TestFormatGraphContext(t *testing.T) {
	results := &zep.SearchResults{
		Nodes: []zep.EntityNode{
			{
				Name:   "Aria",
				Labels: []string{"Entity", "Character"},
				Attributes: map[string]any{
					"role":    "ranger",
					"status":  "alive",
					"secrets": "",
					"notes":   nil,
				},
			},
			{Name: "Oakvale"},
		},
		Edges: []zep.EntityEdge{
			{Fact: "Aria lives in Oakvale"},
			{Fact: "Oakvale is ruled by the Crown"},
		},
	}

	out := FormatGraphContext(results)

	assert.Contains(t, out, "## Relevant Entities")
	assert.Contains(t, out, "- **Aria** [Entity, Character] — role: ranger; status: alive")
	assert.NotContains(t, out, "secrets", "empty attribute values are omitted")
	assert.Contains(t, out, "- **Oakvale** [Unknown]")
	assert.Contains(t, out, "## Relevant Facts and Relationships")
	assert.Contains(t, out, "- Aria lives in Oakvale")
}

func TestFormatGraphContext_EmptySubsectionsOmitted(t *testing.T) {
	onlyEdges := FormatGraphContext(&zep.SearchResults{
		Edges: []zep.EntityEdge{{Fact: "a knows b"}},
	})
	assert.NotContains(t, onlyEdges, "Relevant Entities")
	assert.Contains(t, onlyEdges, "Relevant Facts and Relationships")

	assert.Empty(t, FormatGraphContext(&zep.SearchResults{}))
	assert.Empty(t, FormatGraphContext(nil))
}

func TestBuildContext(t *testing.T) {
	tests := []struct {
		name   string
		graph  string
		memory string
		want   string
	}{
		{
			name: "both empty yields placeholder",
			want: EmptyContextPlaceholder,
		},
		{
			name:  "graph only",
			graph: "## Relevant Entities\n- **Aria** [Character]",
			want:  "## Relevant Entities\n- **Aria** [Character]",
		},
		{
			name:   "memory only",
			memory: "FACTS: Aria lives in Oakvale",
			want:   "## Conversation Memory\nFACTS: Aria lives in Oakvale",
		},
		{
			name:   "whitespace counts as empty",
			graph:  "  \n ",
			memory: "\t",
			want:   EmptyContextPlaceholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildContext(tt.graph, tt.memory))
		})
	}
}

func TestBuildContext_SectionOrder(t *testing.T) {
	out := BuildContext("GRAPH", "MEMORY")
	assert.Equal(t, "GRAPH\n\n## Conversation Memory\nMEMORY", out)
}
