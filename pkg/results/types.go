// Package results models the search service's result payload and validates
// untrusted payload fragments before they are displayed.
package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Node is a graph node as returned by the service.
type Node struct {
	Name       string `json:"name,omitempty"`
	Namespace  string `json:"namespace"`
	Identifier string `json:"identifier"`
	Sign       *int   `json:"sign,omitempty"`
	Lookup     string `json:"lookup,omitempty"`
}

// DisplayName is the node's name, or namespace:identifier when unnamed.
func (n Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.Namespace + ":" + n.Identifier
}

// Unsigned returns a copy of n without its sign.
func (n Node) Unsigned() Node {
	n.Sign = nil
	return n
}

// SignedTuple returns the (name, sign) pair the service uses as a signed
// graph key. The second value is false when n is unsigned.
func (n Node) SignedTuple() (string, int, bool) {
	if n.Sign == nil {
		return n.Name, 0, false
	}
	return n.Name, *n.Sign, true
}

// Number is a float that also decodes from a numeric string.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("numeric string expected, got %q", s)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// NotApplicable is the context weight of an edge the service could not
// weigh by context.
const NotApplicable = "N/A"

// ContextWeight is either a number or "N/A".
type ContextWeight struct {
	Value float64
	NA    bool
}

func (c ContextWeight) MarshalJSON() ([]byte, error) {
	if c.NA {
		return json.Marshal(NotApplicable)
	}
	return json.Marshal(c.Value)
}

func (c *ContextWeight) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != NotApplicable {
			return fmt.Errorf("context_weight: unexpected %q", s)
		}
		*c = ContextWeight{NA: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("context_weight: %w", err)
	}
	*c = ContextWeight{Value: f}
	return nil
}

func (c ContextWeight) String() string {
	if c.NA {
		return NotApplicable
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// StmtData is one supporting statement of an edge.
type StmtData struct {
	StmtType      string       `json:"stmt_type"`
	EvidenceCount int          `json:"evidence_count"`
	StmtHash      string       `json:"stmt_hash"`
	SourceCounts  SourceCounts `json:"source_counts"`
	Belief        float64      `json:"belief"`
	Curated       bool         `json:"curated"`
	English       string       `json:"english"`
	Weight        *Number      `json:"weight,omitempty"`
	Residue       string       `json:"residue,omitempty"`
	Position      string       `json:"position,omitempty"`
	InitialSign   *int         `json:"initial_sign,omitempty"`
	DBURLHash     string       `json:"db_url_hash"`
}

// StmtTypeSupport groups an edge's statements of one type.
type StmtTypeSupport struct {
	StmtType     string       `json:"stmt_type"`
	SourceCounts SourceCounts `json:"source_counts"`
	Statements   []StmtData   `json:"statements"`
}

// EdgeData is the support for one edge of a path.
type EdgeData struct {
	Edge          []Node                     `json:"edge"`
	Statements    map[string]StmtTypeSupport `json:"statements"`
	Belief        Number                     `json:"belief"`
	Weight        Number                     `json:"weight"`
	ContextWeight ContextWeight              `json:"context_weight"`
	ZScore        *Number                    `json:"z_score,omitempty"`
	CorrWeight    *Number                    `json:"corr_weight,omitempty"`
	Sign          *int                       `json:"sign,omitempty"`
	DBURLEdge     string                     `json:"db_url_edge"`
	SourceCounts  SourceCounts               `json:"source_counts"`
}

// Path is one path through the graph with the support for each of its edges.
type Path struct {
	Nodes    []Node     `json:"path"`
	EdgeData []EdgeData `json:"edge_data"`
}

// Source is the first node of the path, or nil.
func (p Path) Source() *Node {
	if len(p.Nodes) == 0 {
		return nil
	}
	return &p.Nodes[0]
}

// Target is the last node of the path, or nil.
func (p Path) Target() *Node {
	if len(p.Nodes) == 0 {
		return nil
	}
	return &p.Nodes[len(p.Nodes)-1]
}

// PathResultData holds paths grouped by node count.
type PathResultData struct {
	Source *Node          `json:"source,omitempty"`
	Target *Node          `json:"target,omitempty"`
	Paths  map[int][]Path `json:"paths"`
}

// IsEmpty reports whether no path was found.
func (r *PathResultData) IsEmpty() bool {
	return r == nil || len(r.Paths) == 0
}

// Displayable reports whether a path can be labelled: at least one of its
// own endpoints or the shared endpoints of r must be known.
func (r *PathResultData) Displayable(p Path) bool {
	return p.Source() != nil || p.Target() != nil || r.Source != nil || r.Target != nil
}

// OntologyResults lists the ontological parents shared by source and target.
type OntologyResults struct {
	Source  Node   `json:"source"`
	Target  Node   `json:"target"`
	Parents []Node `json:"parents"`
}

// IsEmpty reports whether no shared parent was found.
func (r *OntologyResults) IsEmpty() bool {
	return r == nil || len(r.Parents) == 0
}

// SharedInteractorsResults lists shared targets or shared regulators.
type SharedInteractorsResults struct {
	SourceData []EdgeData `json:"source_data"`
	TargetData []EdgeData `json:"target_data"`
	Downstream bool       `json:"downstream"`
}

// IsEmpty is judged on the leading collection, source_data.
func (r *SharedInteractorsResults) IsEmpty() bool {
	return r == nil || len(r.SourceData) == 0
}

// Payload is the full response to a submitted query.
type Payload struct {
	QueryHash               string                    `json:"query_hash,omitempty"`
	TimeLimit               float64                   `json:"time_limit,omitempty"`
	TimedOut                bool                      `json:"timed_out"`
	Hashes                  []string                  `json:"hashes,omitempty"`
	PathResults             *PathResultData           `json:"path_results,omitempty"`
	ReversePathResults      *PathResultData           `json:"reverse_path_results,omitempty"`
	OntologyResults         *OntologyResults          `json:"ontology_results,omitempty"`
	SharedTargetResults     *SharedInteractorsResults `json:"shared_target_results,omitempty"`
	SharedRegulatorsResults *SharedInteractorsResults `json:"shared_regulators_results,omitempty"`
}

// Empty returns the canonical empty payload.
func Empty() *Payload { return &Payload{} }

// IsEmpty reports whether all five sub-results are empty.
func (p *Payload) IsEmpty() bool {
	return p == nil || (p.PathResults.IsEmpty() &&
		p.ReversePathResults.IsEmpty() &&
		p.OntologyResults.IsEmpty() &&
		p.SharedTargetResults.IsEmpty() &&
		p.SharedRegulatorsResults.IsEmpty())
}

// Xref is a cross-reference of a node into an external database.
type Xref struct {
	Namespace  string `json:"namespace"`
	Identifier string `json:"identifier"`
	URL        string `json:"url"`
}

// UnmarshalJSON reads the service's [namespace, identifier, url] triple.
func (x *Xref) UnmarshalJSON(b []byte) error {
	var triple []string
	if err := json.Unmarshal(b, &triple); err != nil {
		return fmt.Errorf("xref: %w", err)
	}
	if len(triple) != 3 {
		return fmt.Errorf("xref: expected 3 elements, got %d", len(triple))
	}
	*x = Xref{Namespace: triple[0], Identifier: triple[1], URL: triple[2]}
	return nil
}
