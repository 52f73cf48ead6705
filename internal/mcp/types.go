package mcp

import (
	"github.com/sanonone/netsearch/pkg/query"
	"github.com/sanonone/netsearch/pkg/results"
)

// --- Tool Arguments ---

type EncodeLinkArgs struct {
	Fields map[string]string `json:"fields" jsonschema:"Query field values keyed by share-link parameter name (e.g. source, target, weighted, stmt_filter). List fields take comma-separated items."`
}

type EncodeLinkResult struct {
	Link        string            `json:"link"`
	Params      string            `json:"params"`
	QueryHash   string            `json:"query_hash"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

type DecodeLinkArgs struct {
	Link string `json:"link" jsonschema:"A share link or bare parameter string (e.g. '?source=MEK&target=ERK')"`
}

type DecodeLinkResult struct {
	Query        query.NetworkSearchQuery `json:"query"`
	Applied      []string                 `json:"applied,omitempty"`
	DecodeErrors map[string]string        `json:"decode_errors,omitempty"`
	FieldErrors  map[string]string        `json:"field_errors,omitempty"`
	AutoSubmit   bool                     `json:"auto_submit"`
	Filters      string                   `json:"filters"`
	Link         string                   `json:"link"`
}

type SearchArgs struct {
	Link     string `json:"link" jsonschema:"A share link describing the search. execute=false in the link is ignored here."`
	MaxPaths int    `json:"max_paths,omitempty" jsonschema:"Max paths listed per bucket (default 10)"`
}

// BucketSummary is one path bucket flattened for a language model.
type BucketSummary struct {
	Title      string   `json:"title"`
	Count      int      `json:"count"`
	MeanBelief float64  `json:"mean_belief"`
	Paths      []string `json:"paths"`
}

type SearchResult struct {
	QueryHash        string          `json:"query_hash"`
	ShareLink        string          `json:"share_link"`
	Filters          string          `json:"filters"`
	TimedOut         bool            `json:"timed_out"`
	Empty            bool            `json:"empty"`
	Paths            []BucketSummary `json:"paths,omitempty"`
	ReversePaths     []BucketSummary `json:"reverse_paths,omitempty"`
	SharedParents    []string        `json:"shared_parents,omitempty"`
	SharedTargets    int             `json:"shared_targets"`
	SharedRegulators int             `json:"shared_regulators"`
}

type XrefsArgs struct {
	Name       string `json:"name,omitempty" jsonschema:"Display name of the node"`
	Namespace  string `json:"namespace" jsonschema:"Node namespace (e.g. HGNC, FPLX)"`
	Identifier string `json:"identifier" jsonschema:"Node identifier within the namespace"`
}

type XrefsResult struct {
	Name  string         `json:"name"`
	Xrefs []results.Xref `json:"xrefs"`
}
