package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sanonone/netsearch/pkg/ids"
	"github.com/sanonone/netsearch/pkg/presenter"
	"github.com/sanonone/netsearch/pkg/query"
	"github.com/sanonone/netsearch/pkg/results"
	"github.com/sanonone/netsearch/pkg/session"
	"github.com/sanonone/netsearch/pkg/sharelink"
	"go.uber.org/zap"
)

const defaultMaxPaths = 10

// Service backs the MCP tools. Every search runs in its own short-lived
// session; cross-references share one cache for the life of the server.
type Service struct {
	backend session.Backend
	codec   sharelink.Codec
	logger  *zap.Logger
	xrefs   *session.XrefCache
}

func NewService(backend session.Backend, codec sharelink.Codec, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend: backend,
		codec:   codec,
		logger:  logger.Named("mcp"),
		xrefs:   session.NewXrefCache(),
	}
}

// --- Tool Handlers ---

func (s *Service) EncodeLink(ctx context.Context, req *mcp.CallToolRequest, args EncodeLinkArgs) (*mcp.CallToolResult, EncodeLinkResult, error) {
	params, err := sharelink.BuildParams(args.Fields)
	if err != nil {
		return nil, EncodeLinkResult{}, err
	}

	q := query.New()
	res := sharelink.Decode(params, &q)
	if res.DecodeError() {
		return nil, EncodeLinkResult{}, fmt.Errorf("invalid field values: %v", res.Errors)
	}

	return nil, EncodeLinkResult{
		Link:        s.codec.Link(&q),
		Params:      sharelink.Encode(&q),
		QueryHash:   query.HashString(&q),
		FieldErrors: query.Validate(&q).ByField(),
	}, nil
}

func (s *Service) DecodeLink(ctx context.Context, req *mcp.CallToolRequest, args DecodeLinkArgs) (*mcp.CallToolResult, DecodeLinkResult, error) {
	q := query.New()
	res := sharelink.Decode(args.Link, &q)

	return nil, DecodeLinkResult{
		Query:        q,
		Applied:      res.Applied,
		DecodeErrors: res.Errors,
		FieldErrors:  query.Validate(&q).ByField(),
		AutoSubmit:   res.AutoSubmit,
		Filters:      q.FilterOptions().String(),
		Link:         s.codec.Link(&q),
	}, nil
}

func (s *Service) Search(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, SearchResult, error) {
	sess := session.New(ids.Next("mcp"), s.backend, s.codec, s.logger)
	defer sess.Close()

	res, err := sess.ApplyLink(ctx, args.Link)
	if err != nil {
		return nil, SearchResult{}, err
	}
	if res.DecodeError() {
		return nil, SearchResult{}, fmt.Errorf("share link has invalid fields: %v", res.Errors)
	}

	st := sess.State()
	if st.Result == nil {
		// The link asked not to execute, or auto-submit is still waiting.
		if err := sess.Submit(ctx); err != nil {
			if errors.Is(err, session.ErrCannotSubmit) {
				return nil, SearchResult{}, fmt.Errorf("%w (field errors: %v)", err, st.FieldErrors)
			}
			return nil, SearchResult{}, err
		}
		st = sess.State()
	}

	limit := args.MaxPaths
	if limit <= 0 {
		limit = defaultMaxPaths
	}
	return nil, summarize(st, limit), nil
}

func (s *Service) LookupXrefs(ctx context.Context, req *mcp.CallToolRequest, args XrefsArgs) (*mcp.CallToolResult, XrefsResult, error) {
	if args.Namespace == "" || args.Identifier == "" {
		return nil, XrefsResult{}, errors.New("namespace and identifier are required")
	}
	node := results.Node{Name: args.Name, Namespace: args.Namespace, Identifier: args.Identifier}

	xrefs, err := s.xrefs.Load(ctx, node, s.backend)
	if err != nil {
		return nil, XrefsResult{}, err
	}
	return nil, XrefsResult{Name: node.DisplayName(), Xrefs: xrefs}, nil
}

// summarize flattens a session snapshot into the tool output.
func summarize(st session.State, limit int) SearchResult {
	out := SearchResult{
		QueryHash:    st.QueryHash,
		ShareLink:    st.ShareLink,
		Filters:      st.Filters.String(),
		Empty:        st.EmptyResult,
		Paths:        summarizeRows(st.Paths, limit),
		ReversePaths: summarizeRows(st.ReversePaths, limit),
	}
	p := st.Result
	if p == nil {
		return out
	}
	out.TimedOut = p.TimedOut
	if !p.OntologyResults.IsEmpty() {
		for _, n := range p.OntologyResults.Parents {
			out.SharedParents = append(out.SharedParents, n.DisplayName())
		}
	}
	if !p.SharedTargetResults.IsEmpty() {
		out.SharedTargets = len(p.SharedTargetResults.SourceData)
	}
	if !p.SharedRegulatorsResults.IsEmpty() {
		out.SharedRegulators = len(p.SharedRegulatorsResults.SourceData)
	}
	return out
}

func summarizeRows(rows []presenter.Row, limit int) []BucketSummary {
	var out []BucketSummary
	for _, row := range rows {
		b := BucketSummary{
			Title:      row.Title,
			Count:      row.Count,
			MeanBelief: row.Belief.Mean,
			Paths:      make([]string, 0, min(limit, len(row.Paths))),
		}
		for i, p := range row.Paths {
			if i == limit {
				break
			}
			b.Paths = append(b.Paths, presenter.PathTitle(p))
		}
		out = append(out, b)
	}
	return out
}
