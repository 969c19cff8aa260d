package worldupdate

// The external store reserves "summary" for its own extraction output, so
// payload attributes use "summary_text" instead. The rename applies at the
// top level and inside the set/append sub-objects of an update.

func normalizeAttrs(attrs map[string]any) map[string]any {
	out := renameSummaryKey(attrs)
	if set, ok := out["set"].(map[string]any); ok {
		out["set"] = renameSummaryKey(set)
	}
	if app, ok := out["append"].(map[string]any); ok {
		out["append"] = renameSummaryKey(app)
	}
	return out
}

func renameSummaryKey(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	if v, present := out["summary"]; present {
		out["summary_text"] = v
		delete(out, "summary")
	}
	return out
}
