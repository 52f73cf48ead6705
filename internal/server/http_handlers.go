package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sanonone/netsearch/pkg/presenter"
	"github.com/sanonone/netsearch/pkg/query"
	"github.com/sanonone/netsearch/pkg/results"
	"github.com/sanonone/netsearch/pkg/session"
	"github.com/sanonone/netsearch/pkg/sharelink"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// decodeBody reads an optional JSON body into dst. An empty body leaves dst
// untouched.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// session looks up the {sessionID} route parameter, answering 404 itself
// when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, found := s.sessions.Get(id)
	if !found {
		s.writeHTTPError(w, http.StatusNotFound, "session not found: "+id)
	}
	return sess, found
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	sess := s.sessions.Open()
	if req.Link != "" {
		ctx, cancel := s.detach(r)
		defer cancel()
		// A failed auto-submit is reported through the state banner.
		if _, err := sess.ApplyLink(ctx, req.Link); err != nil {
			s.logger.Info("auto-submit failed", zap.String("session", sess.ID()), zap.Error(err))
		}
	}
	s.writeHTTPResponse(w, http.StatusCreated, sess.State())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, sess.State())
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Close(chi.URLParam(r, "sessionID")) {
		s.writeHTTPError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplaceQuery(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	q := query.New()
	if err := decodeBody(r, &q); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}

	ctx, cancel := s.detach(r)
	defer cancel()

	changed := sess.Replace(q)
	if err := sess.ResolveEndpoints(ctx, changed...); err != nil {
		s.logger.Warn("endpoint lookup failed", zap.String("session", sess.ID()), zap.Error(err))
	}
	// A link that asked to execute submits as soon as the query allows it.
	if _, err := sess.MaybeAutoSubmit(ctx); err != nil {
		s.logger.Info("auto-submit failed", zap.String("session", sess.ID()), zap.Error(err))
	}
	s.writeHTTPResponse(w, http.StatusOK, sess.State())
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	field := r.URL.Query().Get("field")
	prefix := r.URL.Query().Get("prefix")

	nodes, err := sess.Complete(r.Context(), field, prefix)
	switch {
	case errors.Is(err, session.ErrNotEndpoint):
		s.writeHTTPError(w, http.StatusBadRequest, "field must be source or target")
		return
	case err != nil:
		s.writeHTTPError(w, http.StatusBadGateway, err.Error())
		return
	}
	if nodes == nil {
		nodes = []results.Node{}
	}
	s.writeHTTPResponse(w, http.StatusOK, CompleteResponse{Field: field, Prefix: prefix, Candidates: nodes})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.detach(r)
	defer cancel()

	err := sess.Submit(ctx)
	switch {
	case err == nil:
		s.writeHTTPResponse(w, http.StatusOK, sess.State())
	case errors.Is(err, session.ErrBusy):
		s.writeHTTPError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrCannotSubmit):
		s.writeHTTPError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, session.ErrClosed):
		s.writeHTTPError(w, http.StatusGone, err.Error())
	default:
		// The session now carries the banner and an empty result.
		s.writeHTTPResponse(w, http.StatusBadGateway, sess.State())
	}
}

func (s *Server) handleXrefs(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	params := r.URL.Query()
	node := results.Node{
		Name:       params.Get("name"),
		Namespace:  params.Get("ns"),
		Identifier: params.Get("id"),
	}
	if node.Namespace == "" || node.Identifier == "" {
		s.writeHTTPError(w, http.StatusBadRequest, "ns and id are required")
		return
	}

	xrefs, err := sess.Xrefs(r.Context(), node)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, XrefsResponse{Name: node.DisplayName(), Xrefs: xrefs})
}

func (s *Server) handleToggleBucket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "bucketID")
	expanded, err := sess.ToggleBucket(id)
	if errors.Is(err, presenter.ErrUnknownBucket) {
		s.writeHTTPError(w, http.StatusNotFound, "bucket not found: "+id)
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, ToggleResponse{BucketID: id, Expanded: expanded})
}

func (s *Server) handleEncodeLink(w http.ResponseWriter, r *http.Request) {
	q := query.New()
	if err := decodeBody(r, &q); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}
	s.writeHTTPResponse(w, http.StatusOK, EncodeLinkResponse{
		Link:      s.codec.Link(&q),
		Params:    sharelink.Encode(&q),
		QueryHash: query.HashString(&q),
	})
}

// handleDecodeLink applies the request's own query string as a share link.
func (s *Server) handleDecodeLink(w http.ResponseWriter, r *http.Request) {
	q := query.New()
	res := sharelink.Decode(r.URL.RawQuery, &q)
	s.writeHTTPResponse(w, http.StatusOK, DecodeLinkResponse{
		Query:       q,
		Decode:      res,
		FieldErrors: query.Validate(&q).ByField(),
		Gates:       query.ResolveGates(&q),
		Link:        s.codec.Link(&q),
	})
}
