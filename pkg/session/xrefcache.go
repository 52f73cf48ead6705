package session

import (
	"context"
	"sync"

	"github.com/sanonone/netsearch/pkg/metrics"
	"github.com/sanonone/netsearch/pkg/results"
	"golang.org/x/sync/singleflight"
)

// XrefCache is an append-only, session-scoped cache of cross-references,
// keyed by node display name. Entries are never replaced or evicted.
// Concurrent loads of the same name share one lookup.
type XrefCache struct {
	mu    sync.RWMutex
	data  map[string][]results.Xref
	group singleflight.Group
}

// NewXrefCache creates an empty cache.
func NewXrefCache() *XrefCache {
	return &XrefCache{
		data: make(map[string][]results.Xref),
	}
}

// Get returns the cached cross-references for name.
func (c *XrefCache) Get(name string) ([]results.Xref, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	xrefs, found := c.data[name]
	return xrefs, found
}

// Len is the number of cached names.
func (c *XrefCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// add stores xrefs unless name is already present.
func (c *XrefCache) add(name string, xrefs []results.Xref) []results.Xref {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, found := c.data[name]; found {
		return existing
	}
	c.data[name] = xrefs
	return xrefs
}

// Load returns the cross-references of node, asking lookup on a miss.
// Failed lookups are not cached.
func (c *XrefCache) Load(ctx context.Context, node results.Node, lookup XrefLookup) ([]results.Xref, error) {
	name := node.DisplayName()
	if xrefs, found := c.Get(name); found {
		metrics.XrefLookupsTotal.WithLabelValues("hit").Inc()
		return xrefs, nil
	}
	metrics.XrefLookupsTotal.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(name, func() (any, error) {
		xrefs, err := lookup.Xrefs(ctx, node.Namespace, node.Identifier)
		if err != nil {
			return nil, err
		}
		return c.add(name, xrefs), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]results.Xref), nil
}
