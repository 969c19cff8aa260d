package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/worldloom/worldloom/pkg/zep"
)

// EmptyContextPlaceholder is rendered when neither the graph nor the thread
// memory contributed anything, so the prompt never carries a bare section
// header.
const EmptyContextPlaceholder = "(empty)"

// FormatGraphContext renders graph search results as a markdown block for
// the system prompt: one bullet per node with its labels and non-empty
// attributes, then one bullet per edge fact.
func FormatGraphContext(results *zep.SearchResults) string {
	if results == nil {
		return ""
	}

	var lines []string

	if len(results.Nodes) > 0 {
		lines = append(lines, "## Relevant Entities")
		for _, node := range results.Nodes {
			labels := "Unknown"
			if len(node.Labels) > 0 {
				labels = strings.Join(node.Labels, ", ")
			}
			line := fmt.Sprintf("- **%s** [%s]", node.Name, labels)
			if attrs := formatAttributes(node.Attributes); attrs != "" {
				line += " — " + attrs
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	if len(results.Edges) > 0 {
		lines = append(lines, "## Relevant Facts and Relationships")
		for _, edge := range results.Edges {
			lines = append(lines, "- "+edge.Fact)
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// formatAttributes renders non-empty attribute pairs as "k: v; k: v" in key
// order.
func formatAttributes(attrs map[string]any) string {
	if len(attrs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		v := attrs[k]
		if v == nil || v == "" {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%s: %v", k, v))
	}
	return strings.Join(pairs, "; ")
}

// BuildContext combines the graph section and the thread-memory section into
// the single context block embedded in the system prompt.
func BuildContext(graphContext, memoryContext string) string {
	var sections []string
	if strings.TrimSpace(graphContext) != "" {
		sections = append(sections, strings.TrimSpace(graphContext))
	}
	if strings.TrimSpace(memoryContext) != "" {
		sections = append(sections, "## Conversation Memory\n"+strings.TrimSpace(memoryContext))
	}
	if len(sections) == 0 {
		return EmptyContextPlaceholder
	}
	return strings.Join(sections, "\n\n")
}
