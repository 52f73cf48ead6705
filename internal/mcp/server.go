// Package mcp exposes share links and network searches as Model Context
// Protocol tools.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/netsearch/pkg/session"
	"github.com/sanonone/netsearch/pkg/sharelink"
	"go.uber.org/zap"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

func NewMCPServer(backend session.Backend, codec sharelink.Codec, logger *zap.Logger) *mcp.Server {
	service := NewService(backend, codec, logger)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "netsearch",
		Version: Version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "encode_share_link",
		Description: "Build a shareable network-search link from query field values. Only non-default fields appear in the link.",
	}, service.EncodeLink)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "decode_share_link",
		Description: "Decode a network-search share link into the full query, reporting fields that failed to decode or validate.",
	}, service.DecodeLink)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "network_search",
		Description: "Run the search described by a share link and summarize the causal paths found, grouped by path length.",
	}, service.Search)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "lookup_xrefs",
		Description: "List cross-references of a graph node into external databases.",
	}, service.LookupXrefs)

	return s
}
