package worldupdate

// tempIDMap maps payload-scoped temporary identifiers to entity names. It is
// built once per payload, before any relationship or event is processed, and
// discarded afterwards.
type tempIDMap map[string]string

// buildTempIDMap scans new entities only. Entities missing a temp id or a
// name contribute nothing; an entity with only a temp id cannot be referenced
// by name downstream and that is a caller error.
func buildTempIDMap(entities []Entity) tempIDMap {
	m := make(tempIDMap)
	for _, e := range entities {
		if e.TempID != "" && e.Name != "" {
			m[e.TempID] = e.Name
		}
	}
	return m
}

// resolve returns the endpoint name for a reference. A direct name always
// wins; the temp-id lookup is the fallback. Empty means unresolvable.
func (m tempIDMap) resolve(name, tempID string) string {
	if name != "" {
		return name
	}
	if tempID != "" {
		return m[tempID]
	}
	return ""
}
