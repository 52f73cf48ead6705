package query

import (
	"slices"
	"strconv"
	"strings"
)

// Weighting modes.
const (
	WeightedUnweighted = "unweighted"
	WeightedBelief     = "belief"
	WeightedZScore     = "z_score"
	WeightedContext    = "context"
)

// WeightedOptions is the option set of the weighted select.
var WeightedOptions = []string{WeightedUnweighted, WeightedBelief, WeightedZScore, WeightedContext}

// SignOptions is the option set of the sign select: "0" for positive, "1" for negative.
var SignOptions = []string{"0", "1"}

// StmtTypeOptions lists the statement types the service can filter on,
// lowercased the way the service compares them.
var StmtTypeOptions = []string{
	"activation",
	"inhibition",
	"increaseamount",
	"decreaseamount",
	"complex",
	"acetylation",
	"farnesylation",
	"geranylgeranylation",
	"glycosylation",
	"hydroxylation",
	"methylation",
	"myristoylation",
	"palmitoylation",
	"phosphorylation",
	"ribosylation",
	"sumoylation",
	"ubiquitination",
	"autophosphorylation",
	"transphosphorylation",
	"deacetylation",
	"defarnesylation",
	"degeranylgeranylation",
	"deglycosylation",
	"dehydroxylation",
	"demethylation",
	"demyristoylation",
	"depalmitoylation",
	"dephosphorylation",
	"deribosylation",
	"desumoylation",
	"deubiquitination",
}

// NamespaceOptions lists the node namespaces in the search graph.
var NamespaceOptions = []string{
	"fplx",
	"hgnc",
	"up",
	"chebi",
	"go",
	"mesh",
	"mirbase",
	"doid",
	"hp",
	"efo",
}

// weightAttributes maps a weighting mode to the edge attribute the service
// weighs paths by. Unweighted maps to no attribute.
var weightAttributes = map[string]string{
	WeightedBelief:  "weight",
	WeightedContext: "context_weight",
	WeightedZScore:  "corr_weight",
}

// WeightAttribute returns the edge attribute used for q's weighting, or ""
// when the search is unweighted.
func (q *NetworkSearchQuery) WeightAttribute() string {
	if q.IsContextWeighted() {
		return weightAttributes[WeightedContext]
	}
	return weightAttributes[q.Weighted]
}

// IsContextWeighted reports whether mesh ids are given without strict filtering.
func (q *NetworkSearchQuery) IsContextWeighted() bool {
	return len(q.MeshIDs) > 0 && !q.StrictMeshIDFiltering
}

// IsOverallWeighted reports whether any weighting applies to the search.
func (q *NetworkSearchQuery) IsOverallWeighted() bool {
	return q.Weighted == WeightedBelief || q.Weighted == WeightedZScore || q.IsContextWeighted()
}

// IntSign normalizes sign tokens: 0 or "+" is positive (0), 1 or "-" is
// negative (1). Anything else is unsigned.
func IntSign(token string) *int {
	switch strings.TrimSpace(token) {
	case "0", "+", "plus":
		return IntPtr(0)
	case "1", "-", "minus":
		return IntPtr(1)
	}
	return nil
}

// SignLabel renders a sign as "+" or "-", or "" when unsigned.
func SignLabel(sign *int) string {
	if sign == nil {
		return ""
	}
	if *sign == 0 {
		return "+"
	}
	return "-"
}

// FilterOptions summarizes the filters a query applies to statements and nodes.
type FilterOptions struct {
	ExcludeStmts        []string `json:"exclude_stmts,omitempty"`
	AllowedNS           []string `json:"allowed_ns,omitempty"`
	NodeBlacklist       []string `json:"node_blacklist,omitempty"`
	PathLength          *int     `json:"path_length,omitempty"`
	BeliefCutoff        float64  `json:"belief_cutoff"`
	CuratedDBOnly       bool     `json:"curated_db_only"`
	KShortest           int      `json:"k_shortest"`
	CullBestNode        *int     `json:"cull_best_node,omitempty"`
	OverallWeighted     bool     `json:"overall_weighted"`
	WeightAttribute     string   `json:"weight_attribute,omitempty"`
	ContextWeighted     bool     `json:"context_weighted"`
	StrictMeshFiltering bool     `json:"strict_mesh_filtering"`
}

// FilterOptions derives the filter summary of q. ExcludeStmts is the
// complement of stmt_filter within StmtTypeOptions.
func (q *NetworkSearchQuery) FilterOptions() FilterOptions {
	var exclude []string
	if len(q.StmtFilter) > 0 {
		for _, st := range StmtTypeOptions {
			if !slices.Contains(q.StmtFilter, st) {
				exclude = append(exclude, st)
			}
		}
	}
	return FilterOptions{
		ExcludeStmts:        exclude,
		AllowedNS:           q.AllowedNS,
		NodeBlacklist:       q.NodeBlacklist,
		PathLength:          q.PathLength,
		BeliefCutoff:        q.BeliefCutoff,
		CuratedDBOnly:       q.CuratedDBOnly,
		KShortest:           q.KShortest,
		CullBestNode:        q.CullBestNode,
		OverallWeighted:     q.IsOverallWeighted(),
		WeightAttribute:     q.WeightAttribute(),
		ContextWeighted:     q.IsContextWeighted(),
		StrictMeshFiltering: q.StrictMeshIDFiltering,
	}
}

// NoStmtFilters reports whether no statement-level filter is applied.
func (f FilterOptions) NoStmtFilters() bool {
	return len(f.ExcludeStmts) == 0 && f.BeliefCutoff == 0 && !f.CuratedDBOnly
}

// NoNodeFilters reports whether no node-level filter is applied.
func (f FilterOptions) NoNodeFilters() bool {
	return len(f.AllowedNS) == 0 && len(f.NodeBlacklist) == 0
}

// NoFilters reports whether the search runs unfiltered.
func (f FilterOptions) NoFilters() bool {
	return f.NoStmtFilters() && f.NoNodeFilters() && f.PathLength == nil &&
		f.CullBestNode == nil && !f.OverallWeighted
}

// String renders the active filters on one line, for logs.
func (f FilterOptions) String() string {
	if f.NoFilters() {
		return "no filters"
	}
	var parts []string
	if len(f.ExcludeStmts) > 0 {
		parts = append(parts, "excluded statement types: "+strconv.Itoa(len(f.ExcludeStmts)))
	}
	if f.BeliefCutoff > 0 {
		parts = append(parts, "belief cutoff: "+strconv.FormatFloat(f.BeliefCutoff, 'f', -1, 64))
	}
	if f.CuratedDBOnly {
		parts = append(parts, "curated only")
	}
	if len(f.AllowedNS) > 0 {
		parts = append(parts, "namespaces: "+strings.Join(f.AllowedNS, ","))
	}
	if len(f.NodeBlacklist) > 0 {
		parts = append(parts, "excluded nodes: "+strings.Join(f.NodeBlacklist, ","))
	}
	if f.PathLength != nil {
		parts = append(parts, "path length: "+strconv.Itoa(*f.PathLength))
	}
	if f.CullBestNode != nil {
		parts = append(parts, "cull best node: "+strconv.Itoa(*f.CullBestNode))
	}
	if f.OverallWeighted {
		parts = append(parts, "weighted by "+f.WeightAttribute)
	}
	return strings.Join(parts, "; ")
}
