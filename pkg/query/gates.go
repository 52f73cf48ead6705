package query

// Gates are the derived flags that decide which fields are editable.
type Gates struct {
	ContextSearch   bool `json:"context_search"`
	NotOpenSearch   bool `json:"not_open_search"`
	ContextWeighted bool `json:"context_weighted"`
	AnyWeighted     bool `json:"any_weighted"`
}

// ResolveGates computes the gates from the current query.
func ResolveGates(q *NetworkSearchQuery) Gates {
	g := Gates{
		ContextSearch: len(q.MeshIDs) > 0,
		NotOpenSearch: q.Source != "" && q.Target != "",
	}
	g.ContextWeighted = g.ContextSearch && !q.StrictMeshIDFiltering
	g.AnyWeighted = g.ContextWeighted || q.Weighted == WeightedBelief || q.Weighted == WeightedZScore
	return g
}

// Disabled reports whether field is disabled under g. A disabled field keeps
// its stored value and is still validated.
func (g Gates) Disabled(field string, q *NetworkSearchQuery) bool {
	switch field {
	case FieldPathLength:
		return g.AnyWeighted
	case FieldTerminalNS:
		return g.ContextSearch || g.NotOpenSearch
	case FieldMaxPerNode, FieldDepthLimit:
		return g.NotOpenSearch || g.ContextSearch || g.AnyWeighted
	case FieldConstC, FieldConstTk:
		return !g.ContextWeighted || q.StrictMeshIDFiltering
	}
	return false
}

// DisabledFields lists every disabled field in declaration order.
func (g Gates) DisabledFields(q *NetworkSearchQuery) []string {
	var out []string
	for _, f := range q.Fields() {
		if g.Disabled(f.Name, q) {
			out = append(out, f.Name)
		}
	}
	return out
}
