package server

import (
	"github.com/sanonone/netsearch/pkg/query"
	"github.com/sanonone/netsearch/pkg/results"
	"github.com/sanonone/netsearch/pkg/sharelink"
)

// OpenSessionRequest optionally seeds a new session from a share link.
type OpenSessionRequest struct {
	Link string `json:"link,omitempty"`
}

// CompleteResponse lists node-name candidates for an endpoint field.
type CompleteResponse struct {
	Field      string         `json:"field"`
	Prefix     string         `json:"prefix"`
	Candidates []results.Node `json:"candidates"`
}

// XrefsResponse lists the cross-references of one node.
type XrefsResponse struct {
	Name  string         `json:"name"`
	Xrefs []results.Xref `json:"xrefs"`
}

// ToggleResponse is the expansion state of a bucket after a toggle.
type ToggleResponse struct {
	BucketID string `json:"bucket_id"`
	Expanded bool   `json:"expanded"`
}

// EncodeLinkResponse is a query rendered as a share link.
type EncodeLinkResponse struct {
	Link      string `json:"link"`
	Params    string `json:"params"`
	QueryHash string `json:"query_hash"`
}

// DecodeLinkResponse is a share link applied to the default query.
type DecodeLinkResponse struct {
	Query       query.NetworkSearchQuery `json:"query"`
	Decode      sharelink.DecodeResult   `json:"decode"`
	FieldErrors map[string]string        `json:"field_errors,omitempty"`
	Gates       query.Gates              `json:"gates"`
	Link        string                   `json:"link"`
}
