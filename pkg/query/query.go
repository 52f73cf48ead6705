// Package query holds the canonical network-search query together with its
// defaults registry, the inter-field gates and the per-field validator.
package query

import (
	"strings"
)

// Field names, in declaration order. The same order drives share-link
// encoding and the query hash.
const (
	FieldSource                = "source"
	FieldTarget                = "target"
	FieldStmtFilter            = "stmt_filter"
	FieldAllowedNS             = "allowed_ns"
	FieldTerminalNS            = "terminal_ns"
	FieldNodeBlacklist         = "node_blacklist"
	FieldMeshIDs               = "mesh_ids"
	FieldPathLength            = "path_length"
	FieldDepthLimit            = "depth_limit"
	FieldMaxPerNode            = "max_per_node"
	FieldKShortest             = "k_shortest"
	FieldCullBestNode          = "cull_best_node"
	FieldConstC                = "const_c"
	FieldConstTk               = "const_tk"
	FieldUserTimeout           = "user_timeout"
	FieldSign                  = "sign"
	FieldWeighted              = "weighted"
	FieldBeliefCutoff          = "belief_cutoff"
	FieldCuratedDBOnly         = "curated_db_only"
	FieldFplxExpand            = "fplx_expand"
	FieldFplxEdges             = "fplx_edges"
	FieldTwoWay                = "two_way"
	FieldSharedRegulators      = "shared_regulators"
	FieldStrictMeshIDFiltering = "strict_mesh_id_filtering"
	FieldFormat                = "format"
)

// FormatJSON is the only result format the client ever requests.
const FormatJSON = "json"

// NetworkSearchQuery is the canonical query sent to the search service.
type NetworkSearchQuery struct {
	Source                string   `json:"source"`
	Target                string   `json:"target"`
	StmtFilter            []string `json:"stmt_filter"`
	AllowedNS             []string `json:"allowed_ns"`
	TerminalNS            []string `json:"terminal_ns"`
	NodeBlacklist         []string `json:"node_blacklist"`
	MeshIDs               []string `json:"mesh_ids"`
	PathLength            *int     `json:"path_length"`
	DepthLimit            int      `json:"depth_limit"`
	MaxPerNode            int      `json:"max_per_node"`
	KShortest             int      `json:"k_shortest"`
	CullBestNode          *int     `json:"cull_best_node"`
	ConstC                int      `json:"const_c"`
	ConstTk               int      `json:"const_tk"`
	UserTimeout           int      `json:"user_timeout"`
	Sign                  *int     `json:"sign"`
	Weighted              string   `json:"weighted"`
	BeliefCutoff          float64  `json:"belief_cutoff"`
	CuratedDBOnly         bool     `json:"curated_db_only"`
	FplxExpand            bool     `json:"fplx_expand"`
	FplxEdges             bool     `json:"fplx_edges"`
	TwoWay                bool     `json:"two_way"`
	SharedRegulators      bool     `json:"shared_regulators"`
	StrictMeshIDFiltering bool     `json:"strict_mesh_id_filtering"`
	Format                string   `json:"format"`
}

// Field is one (name, value) pair of a query.
type Field struct {
	Name  string
	Value any
}

// New returns the all-default query.
func New() NetworkSearchQuery {
	return NetworkSearchQuery{
		StmtFilter:    []string{},
		AllowedNS:     []string{},
		TerminalNS:    []string{},
		NodeBlacklist: []string{},
		MeshIDs:       []string{},
		DepthLimit:    defaultDepthLimit,
		MaxPerNode:    defaultMaxPerNode,
		KShortest:     defaultKShortest,
		ConstC:        defaultConstC,
		ConstTk:       defaultConstTk,
		UserTimeout:   defaultUserTimeout,
		Weighted:      WeightedUnweighted,
		Format:        FormatJSON,
	}
}

// Fields returns every field of q in declaration order.
func (q *NetworkSearchQuery) Fields() []Field {
	return []Field{
		{FieldSource, q.Source},
		{FieldTarget, q.Target},
		{FieldStmtFilter, q.StmtFilter},
		{FieldAllowedNS, q.AllowedNS},
		{FieldTerminalNS, q.TerminalNS},
		{FieldNodeBlacklist, q.NodeBlacklist},
		{FieldMeshIDs, q.MeshIDs},
		{FieldPathLength, q.PathLength},
		{FieldDepthLimit, q.DepthLimit},
		{FieldMaxPerNode, q.MaxPerNode},
		{FieldKShortest, q.KShortest},
		{FieldCullBestNode, q.CullBestNode},
		{FieldConstC, q.ConstC},
		{FieldConstTk, q.ConstTk},
		{FieldUserTimeout, q.UserTimeout},
		{FieldSign, q.Sign},
		{FieldWeighted, q.Weighted},
		{FieldBeliefCutoff, q.BeliefCutoff},
		{FieldCuratedDBOnly, q.CuratedDBOnly},
		{FieldFplxExpand, q.FplxExpand},
		{FieldFplxEdges, q.FplxEdges},
		{FieldTwoWay, q.TwoWay},
		{FieldSharedRegulators, q.SharedRegulators},
		{FieldStrictMeshIDFiltering, q.StrictMeshIDFiltering},
		{FieldFormat, q.Format},
	}
}

// Clone returns a deep copy of q.
func (q NetworkSearchQuery) Clone() NetworkSearchQuery {
	c := q
	c.StmtFilter = cloneStrings(q.StmtFilter)
	c.AllowedNS = cloneStrings(q.AllowedNS)
	c.TerminalNS = cloneStrings(q.TerminalNS)
	c.NodeBlacklist = cloneStrings(q.NodeBlacklist)
	c.MeshIDs = cloneStrings(q.MeshIDs)
	c.PathLength = cloneInt(q.PathLength)
	c.CullBestNode = cloneInt(q.CullBestNode)
	c.Sign = cloneInt(q.Sign)
	return c
}

// Submission returns the copy of q that is posted to the search service:
// endpoints trimmed, collections never null, format pinned to JSON.
func (q NetworkSearchQuery) Submission() NetworkSearchQuery {
	s := q.Clone()
	s.Source = strings.TrimSpace(s.Source)
	s.Target = strings.TrimSpace(s.Target)
	for _, l := range []*[]string{&s.StmtFilter, &s.AllowedNS, &s.TerminalNS, &s.NodeBlacklist, &s.MeshIDs} {
		if *l == nil {
			*l = []string{}
		}
	}
	s.Format = FormatJSON
	return s
}

// Reverse returns a copy of q with source and target swapped.
func (q NetworkSearchQuery) Reverse() NetworkSearchQuery {
	r := q.Clone()
	r.Source, r.Target = q.Target, q.Source
	return r
}

// SplitText derives a list from free text: comma-split, trimmed, empties dropped.
func SplitText(text string) []string {
	out := []string{}
	for _, part := range strings.Split(text, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinText renders a list back into its editable text form.
func JoinText(items []string) string {
	return strings.Join(items, ", ")
}

// SetNodeBlacklistText replaces node_blacklist from its free-text form.
func (q *NetworkSearchQuery) SetNodeBlacklistText(text string) {
	q.NodeBlacklist = SplitText(text)
}

// SetMeshIDsText replaces mesh_ids from its free-text form.
func (q *NetworkSearchQuery) SetMeshIDsText(text string) {
	q.MeshIDs = SplitText(text)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// IntPtr is a convenience for filling the optional integer fields.
func IntPtr(v int) *int { return &v }
