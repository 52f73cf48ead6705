// Package session holds the explicit per-user context of the interactive
// client: the query being edited, endpoint resolution, lookup results, the
// cross-reference cache and the last search result.
//
// Edits, validation and link encoding run synchronously under the session
// lock. Node lookups, cross-reference lookups and submission are the only
// calls that leave the process; they take a context and never hold the lock
// while waiting on the service.
package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sanonone/netsearch/pkg/metrics"
	"github.com/sanonone/netsearch/pkg/presenter"
	"github.com/sanonone/netsearch/pkg/query"
	"github.com/sanonone/netsearch/pkg/results"
	"github.com/sanonone/netsearch/pkg/sharelink"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBusy         = errors.New("a search is already in flight")
	ErrCannotSubmit = errors.New("query cannot be submitted")
	ErrClosed       = errors.New("session closed")
	ErrNotEndpoint  = errors.New("field is not a search endpoint")
)

// Searcher submits queries.
type Searcher interface {
	Submit(ctx context.Context, q query.NetworkSearchQuery) (*results.Payload, error)
}

// NodeLookup completes and resolves node names.
type NodeLookup interface {
	Autocomplete(ctx context.Context, prefix string) ([]results.Node, error)
	NodeInGraph(ctx context.Context, name string) (*results.Node, error)
}

// XrefLookup fetches cross-references of a node.
type XrefLookup interface {
	Xrefs(ctx context.Context, namespace, identifier string) ([]results.Xref, error)
}

// Backend is everything a session needs from the search service.
type Backend interface {
	Searcher
	NodeLookup
	XrefLookup
}

// resolution is the outcome of resolving an endpoint text. It only counts
// while the field still holds the same text.
type resolution struct {
	text string
	node *results.Node
}

// Session is one user's client context. It is safe for concurrent use.
type Session struct {
	id      string
	backend Backend
	codec   sharelink.Codec
	logger  *zap.Logger
	xrefs   *XrefCache
	busy    atomic.Bool

	mu          sync.Mutex
	q           query.NetworkSearchQuery
	resolved    map[string]resolution
	candidates  map[string][]results.Node
	pending     bool
	decode      *sharelink.DecodeResult
	result      *results.Payload
	view        *presenter.View
	reverseView *presenter.View
	banner      string
	closed      bool
}

// New creates a session holding the all-default query.
func New(id string, backend Backend, codec sharelink.Codec, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		id:         id,
		backend:    backend,
		codec:      codec,
		logger:     logger.With(zap.String("session", id)),
		xrefs:      NewXrefCache(),
		q:          query.New(),
		resolved:   make(map[string]resolution),
		candidates: make(map[string][]results.Node),
	}
}

func (s *Session) ID() string { return s.id }

// Query returns a copy of the current query.
func (s *Session) Query() query.NetworkSearchQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Clone()
}

// Edit mutates the query in place. Format cannot be changed.
func (s *Session) Edit(fn func(q *query.NetworkSearchQuery)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.q)
	s.q.Format = query.FormatJSON
}

// Replace swaps in a whole new query and reports which endpoints changed
// text and need resolving again.
func (s *Session) Replace(q query.NetworkSearchQuery) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed []string
	if q.Source != s.q.Source && strings.TrimSpace(q.Source) != "" {
		changed = append(changed, query.FieldSource)
	}
	if q.Target != s.q.Target && strings.TrimSpace(q.Target) != "" {
		changed = append(changed, query.FieldTarget)
	}
	s.q = q.Clone()
	s.q.Format = query.FormatJSON
	return changed
}

// ApplyLink decodes a share link onto the query, resolves the endpoints it
// set and auto-submits when the link allows it and the query is submittable.
func (s *Session) ApplyLink(ctx context.Context, link string) (sharelink.DecodeResult, error) {
	s.mu.Lock()
	res := sharelink.Decode(link, &s.q)
	s.decode = &res
	s.pending = res.AutoSubmit
	s.mu.Unlock()

	for field := range res.Errors {
		metrics.LinkDecodeErrorsTotal.WithLabelValues(field).Inc()
	}
	if res.DecodeError() {
		s.logger.Info("share link decoded with errors", zap.Any("errors", res.Errors))
	}

	if err := s.ResolveEndpoints(ctx, res.Lookups...); err != nil {
		s.logger.Warn("endpoint lookup failed", zap.Error(err))
	}
	if _, err := s.MaybeAutoSubmit(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// ResolveEndpoints resolves the named endpoint fields concurrently. A
// lookup is never cancelled by another; each result is written when it
// arrives.
func (s *Session) ResolveEndpoints(ctx context.Context, fields ...string) error {
	var g errgroup.Group
	for _, field := range fields {
		g.Go(func() error { return s.resolve(ctx, field) })
	}
	return g.Wait()
}

func (s *Session) resolve(ctx context.Context, field string) error {
	s.mu.Lock()
	text, err := s.endpointText(field)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	node, err := s.backend.NodeInGraph(ctx, strings.TrimSpace(text))
	if err != nil {
		return fmt.Errorf("resolving %s: %w", field, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved[field] = resolution{text: text, node: node}
	return nil
}

// Complete looks up node-name candidates for an endpoint field. The latest
// response to arrive wins, whichever request it answers.
func (s *Session) Complete(ctx context.Context, field, prefix string) ([]results.Node, error) {
	if field != query.FieldSource && field != query.FieldTarget {
		return nil, ErrNotEndpoint
	}
	nodes, err := s.backend.Autocomplete(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("completing %s: %w", field, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[field] = nodes
	return nodes, nil
}

func (s *Session) endpointText(field string) (string, error) {
	switch field {
	case query.FieldSource:
		return s.q.Source, nil
	case query.FieldTarget:
		return s.q.Target, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotEndpoint, field)
}

func (s *Session) resolutionLocked() query.Resolution {
	ok := func(field, text string) bool {
		r, found := s.resolved[field]
		return found && r.node != nil && r.text == text
	}
	return query.Resolution{
		Source: ok(query.FieldSource, s.q.Source),
		Target: ok(query.FieldTarget, s.q.Target),
	}
}

// Submit sends the current query. Only one submission may be in flight;
// a second call returns ErrBusy. A result arriving after Close is dropped.
func (s *Session) Submit(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		metrics.SubmissionsTotal.WithLabelValues("busy").Inc()
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err := query.SubmitBlocker(&s.q, s.resolutionLocked()); err != nil {
		s.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("blocked").Inc()
		return fmt.Errorf("%w: %w", ErrCannotSubmit, err)
	}
	if rep := query.Validate(&s.q); !rep.OK() {
		s.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("blocked").Inc()
		return fmt.Errorf("%w: %s", ErrCannotSubmit, rep.Failures[0].Error())
	}
	q := s.q.Clone()
	s.pending = false
	s.mu.Unlock()

	s.logger.Info("submitting query",
		zap.String("query_hash", query.HashString(&q)),
		zap.Stringer("filters", q.FilterOptions()))
	payload, err := s.backend.Submit(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Debug("dropping result of closed session")
		return ErrClosed
	}
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		s.result = results.Empty()
		s.view, s.reverseView = nil, nil
		s.banner = err.Error()
		return err
	}
	metrics.SubmissionsTotal.WithLabelValues("ok").Inc()
	s.result = payload
	s.view = presenter.NewView(payload.PathResults)
	s.reverseView = presenter.NewView(payload.ReversePathResults)
	s.banner = ""
	return nil
}

// MaybeAutoSubmit submits once if a share link asked for it and the query
// has become submittable. It reports whether a submission was made.
func (s *Session) MaybeAutoSubmit(ctx context.Context) (bool, error) {
	s.mu.Lock()
	ready := s.pending && !s.closed && query.Submittable(&s.q, s.resolutionLocked())
	s.mu.Unlock()
	if !ready {
		return false, nil
	}
	return true, s.Submit(ctx)
}

// Xrefs returns the cross-references of node through the session cache.
func (s *Session) Xrefs(ctx context.Context, node results.Node) ([]results.Xref, error) {
	return s.xrefs.Load(ctx, node, s.backend)
}

// ToggleBucket flips the expansion state of a path bucket.
func (s *Session) ToggleBucket(id string) (bool, error) {
	s.mu.Lock()
	views := []*presenter.View{s.view, s.reverseView}
	s.mu.Unlock()
	for _, v := range views {
		if v == nil {
			continue
		}
		if state, err := v.Toggle(id); err == nil {
			return state, nil
		}
	}
	return false, presenter.ErrUnknownBucket
}

// Close tears the session down. An in-flight submission still completes
// but its result is discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.result = nil
	s.view, s.reverseView = nil, nil
}

// State is a snapshot of everything a client view renders.
type State struct {
	ID                string                    `json:"id"`
	Query             query.NetworkSearchQuery  `json:"query"`
	QueryHash         string                    `json:"query_hash"`
	Gates             query.Gates               `json:"gates"`
	DisabledFields    []string                  `json:"disabled_fields"`
	FieldErrors       map[string]string         `json:"field_errors,omitempty"`
	CannotSubmit      bool                      `json:"cannot_submit"`
	SubmitBlocker     string                    `json:"submit_blocker,omitempty"`
	Submittable       bool                      `json:"submittable"`
	Busy              bool                      `json:"busy"`
	PendingAutoSubmit bool                      `json:"pending_auto_submit"`
	Decode            *sharelink.DecodeResult   `json:"decode,omitempty"`
	ShareLink         string                    `json:"share_link"`
	Resolved          map[string]*results.Node  `json:"resolved,omitempty"`
	Candidates        map[string][]results.Node `json:"candidates,omitempty"`
	Filters           query.FilterOptions       `json:"filters"`
	Banner            string                    `json:"banner,omitempty"`
	Result            *results.Payload          `json:"result,omitempty"`
	EmptyResult       bool                      `json:"empty_result"`
	Paths             []presenter.Row           `json:"paths,omitempty"`
	ReversePaths      []presenter.Row           `json:"reverse_paths,omitempty"`
	CachedXrefs       int                       `json:"cached_xrefs"`
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.q.Clone()
	res := s.resolutionLocked()
	gates := query.ResolveGates(&q)
	st := State{
		ID:                s.id,
		Query:             q,
		QueryHash:         query.HashString(&q),
		Gates:             gates,
		DisabledFields:    gates.DisabledFields(&q),
		FieldErrors:       query.Validate(&q).ByField(),
		CannotSubmit:      query.CannotSubmit(&q, res),
		Submittable:       query.Submittable(&q, res),
		Busy:              s.busy.Load(),
		PendingAutoSubmit: s.pending,
		Decode:            s.decode,
		ShareLink:         s.codec.Link(&q),
		Resolved:          make(map[string]*results.Node),
		Candidates:        maps.Clone(s.candidates),
		Filters:           q.FilterOptions(),
		Banner:            s.banner,
		Result:            s.result,
		EmptyResult:       s.result.IsEmpty(),
		Paths:             s.view.Rows(),
		ReversePaths:      s.reverseView.Rows(),
		CachedXrefs:       s.xrefs.Len(),
	}
	if err := query.SubmitBlocker(&q, res); err != nil {
		st.SubmitBlocker = err.Error()
	}
	if res.Source {
		st.Resolved[query.FieldSource] = s.resolved[query.FieldSource].node
	}
	if res.Target {
		st.Resolved[query.FieldTarget] = s.resolved[query.FieldTarget].node
	}
	return st
}
