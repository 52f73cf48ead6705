// Package client talks to the network-search service.
//
// It covers the four endpoints the interactive client needs:
//   - query submission (POST /query),
//   - cross-references of a node (GET /xrefs),
//   - node-name completion (GET /autocomplete),
//   - node resolution (GET /node-name-in-graph).
//
// Every call goes through a circuit breaker. Lookups are additionally
// throttled so a user typing into a field cannot flood the service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sanonone/netsearch/pkg/metrics"
	"github.com/sanonone/netsearch/pkg/query"
	"github.com/sanonone/netsearch/pkg/results"
	"github.com/sony/gobreaker"
	"github.com/yosida95/uritemplate/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// --- Custom Errors ---

// APIError represents an error returned by the search service (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("search service unavailable")

// --- Endpoints ---

const (
	endpointQuery        = "query"
	endpointXrefs        = "xrefs"
	endpointAutocomplete = "autocomplete"
	endpointNodeInGraph  = "node-name-in-graph"
)

var (
	queryTemplate        = uritemplate.MustNew("{+base}/query")
	xrefsTemplate        = uritemplate.MustNew("{+base}/xrefs{?ns,id}")
	autocompleteTemplate = uritemplate.MustNew("{+base}/autocomplete{?prefix}")
	nodeInGraphTemplate  = uritemplate.MustNew("{+base}/node-name-in-graph{?node_name}")
)

// --- Client ---

// Options tune a Client. Zero fields take the value from DefaultOptions.
type Options struct {
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	LookupRate      float64
	LookupBurst     int
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

// DefaultOptions returns the options used for zero fields.
func DefaultOptions() Options {
	return Options{
		Timeout:         150 * time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
		LookupRate:      10,
		LookupBurst:     5,
	}
}

// Client is the search service client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("service url is required")
	}
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = def.BreakerFailures
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = def.BreakerTimeout
	}
	if opts.LookupRate <= 0 {
		opts.LookupRate = def.LookupRate
	}
	if opts.LookupBurst <= 0 {
		opts.LookupBurst = def.LookupBurst
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.LookupRate), opts.LookupBurst),
		logger:     opts.Logger.Named("client"),
	}
	failures := opts.BreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "search-service",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c, nil
}

// Submit posts q to the service and returns the validated result payload.
// Malformed fragments are dropped and counted, never returned as an error.
func (c *Client) Submit(ctx context.Context, q query.NetworkSearchQuery) (*results.Payload, error) {
	u, err := c.expand(queryTemplate, nil)
	if err != nil {
		return nil, err
	}
	body := q.Submission()
	raw, err := c.call(ctx, endpointQuery, http.MethodPost, u, body)
	if err != nil {
		return nil, err
	}
	payload, rej, err := results.Parse(raw)
	if err != nil {
		return nil, err
	}
	if rej.Total() > 0 {
		metrics.RejectedFragmentsTotal.WithLabelValues("path").Add(float64(rej.Paths))
		metrics.RejectedFragmentsTotal.WithLabelValues("edge").Add(float64(rej.Edges))
		metrics.RejectedFragmentsTotal.WithLabelValues("node").Add(float64(rej.Nodes))
		metrics.RejectedFragmentsTotal.WithLabelValues("result").Add(float64(rej.Results))
		c.logger.Info("dropped malformed result fragments",
			zap.String("query_hash", query.HashString(&body)),
			zap.Int("count", rej.Total()),
			zap.Strings("reasons", rej.Reasons))
	}
	return payload, nil
}

// Xrefs returns the cross-references of a node. An empty list is valid.
func (c *Client) Xrefs(ctx context.Context, namespace, identifier string) ([]results.Xref, error) {
	vals := uritemplate.Values{}
	vals.Set("ns", uritemplate.String(namespace))
	vals.Set("id", uritemplate.String(identifier))
	var out []results.Xref
	if err := c.lookup(ctx, endpointXrefs, xrefsTemplate, vals, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []results.Xref{}
	}
	return out, nil
}

// completion is the service's [name, namespace, identifier] triple.
type completion [3]string

// Autocomplete returns the graph nodes whose name starts with prefix.
func (c *Client) Autocomplete(ctx context.Context, prefix string) ([]results.Node, error) {
	vals := uritemplate.Values{}
	vals.Set("prefix", uritemplate.String(prefix))
	var triples []completion
	if err := c.lookup(ctx, endpointAutocomplete, autocompleteTemplate, vals, &triples); err != nil {
		return nil, err
	}
	nodes := make([]results.Node, 0, len(triples))
	for _, t := range triples {
		nodes = append(nodes, results.Node{Name: t[0], Namespace: t[1], Identifier: t[2]})
	}
	return nodes, nil
}

// NodeInGraph resolves a node name. A nil node with a nil error means the
// name is not in the graph.
func (c *Client) NodeInGraph(ctx context.Context, name string) (*results.Node, error) {
	vals := uritemplate.Values{}
	vals.Set("node_name", uritemplate.String(name))
	var raw json.RawMessage
	if err := c.lookup(ctx, endpointNodeInGraph, nodeInGraphTemplate, vals, &raw); err != nil {
		return nil, err
	}
	var doc any
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil || doc == nil {
		return nil, nil
	}
	if !results.IsNode(doc) {
		return nil, nil
	}
	var n results.Node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("decoding node: %w", err)
	}
	return &n, nil
}

func (c *Client) lookup(ctx context.Context, endpoint string, tmpl *uritemplate.Template, vals uritemplate.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s lookup: %w", endpoint, err)
	}
	u, err := c.expand(tmpl, vals)
	if err != nil {
		return err
	}
	raw, err := c.call(ctx, endpoint, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) expand(tmpl *uritemplate.Template, vals uritemplate.Values) (string, error) {
	if vals == nil {
		vals = uritemplate.Values{}
	}
	vals.Set("base", uritemplate.String(c.baseURL))
	u, err := tmpl.Expand(vals)
	if err != nil {
		return "", fmt.Errorf("expanding endpoint url: %w", err)
	}
	return u, nil
}

// call runs one request through the breaker. Client errors (4xx) are
// returned to the caller without counting as breaker failures.
func (c *Client) call(ctx context.Context, endpoint, method, url string, payload any) ([]byte, error) {
	start := time.Now()
	var clientErr *APIError
	out, err := c.breaker.Execute(func() (interface{}, error) {
		body, err := c.jsonRequest(ctx, method, url, payload)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			clientErr = apiErr
			return nil, nil
		}
		return body, err
	})
	metrics.ServiceCallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.ServiceCallsTotal.WithLabelValues(endpoint, "open").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	case err != nil:
		metrics.ServiceCallsTotal.WithLabelValues(endpoint, "error").Inc()
		c.logger.Warn("search service call failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	case clientErr != nil:
		metrics.ServiceCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, clientErr
	}
	metrics.ServiceCallsTotal.WithLabelValues(endpoint, "ok").Inc()
	body, _ := out.([]byte)
	return body, nil
}

// jsonRequest executes one request. It handles JSON serialization, the HTTP
// call and error decoding.
func (c *Client) jsonRequest(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON payload: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	return respBody, nil
}

// errorMessage extracts "error" or "detail" from a JSON error body, falling
// back to the raw text.
func errorMessage(body []byte) string {
	var errResp map[string]any
	if json.Unmarshal(body, &errResp) == nil {
		for _, key := range []string{"error", "detail"} {
			if msg, ok := errResp[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return strings.TrimSpace(string(body))
}
