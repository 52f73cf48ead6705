// Package presenter turns path results into display buckets, one per path
// length, and tracks which buckets are expanded.
package presenter

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/sanonone/netsearch/pkg/ids"
	"github.com/sanonone/netsearch/pkg/results"
	"github.com/tidwall/btree"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Separator joins the nodes of a header.
const Separator = " → "

// Placeholders shown for endpoints the search did not fix.
const (
	SourcePlaceholder = "source"
	TargetPlaceholder = "target"
)

var ErrUnknownBucket = errors.New("unknown bucket")

// BeliefSummary describes the edge beliefs of a bucket.
type BeliefSummary struct {
	Edges int     `json:"edges"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Bucket is every path of one node count.
type Bucket struct {
	ID        string         `json:"id"`
	NodeCount int            `json:"node_count"`
	EdgeCount int            `json:"edge_count"`
	Header    []string       `json:"header"`
	Title     string         `json:"title"`
	Count     int            `json:"count"`
	Paths     []results.Path `json:"paths"`
	Belief    BeliefSummary  `json:"belief"`
}

// Header labels a path of n nodes: source, n-2 numbered intermediates,
// target.
func Header(n int, source, target string) []string {
	h := []string{source}
	for i := 1; i <= n-2; i++ {
		h = append(h, "X"+strconv.Itoa(i))
	}
	return append(h, target)
}

// PathTitle joins the display names of a path's nodes.
func PathTitle(p results.Path) string {
	names := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		names[i] = n.DisplayName()
	}
	return strings.Join(names, Separator)
}

// Present builds the buckets of r ordered by node count. Paths keep the
// order the service sent them in.
func Present(r *results.PathResultData) []Bucket {
	if r.IsEmpty() {
		return nil
	}
	source, target := SourcePlaceholder, TargetPlaceholder
	if r.Source != nil {
		source = r.Source.DisplayName()
	}
	if r.Target != nil {
		target = r.Target.DisplayName()
	}

	tree := btree.NewBTreeG(func(a, b Bucket) bool { return a.NodeCount < b.NodeCount })
	for n, paths := range r.Paths {
		var kept []results.Path
		for _, p := range paths {
			if r.Displayable(p) {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			continue
		}
		header := Header(n, source, target)
		tree.Set(Bucket{
			ID:        ids.Next("bucket"),
			NodeCount: n,
			EdgeCount: n - 1,
			Header:    header,
			Title:     strings.Join(header, Separator),
			Count:     len(kept),
			Paths:     kept,
			Belief:    summarize(kept),
		})
	}

	out := make([]Bucket, 0, tree.Len())
	tree.Scan(func(b Bucket) bool {
		out = append(out, b)
		return true
	})
	return out
}

func summarize(paths []results.Path) BeliefSummary {
	var beliefs []float64
	for _, p := range paths {
		for _, e := range p.EdgeData {
			beliefs = append(beliefs, float64(e.Belief))
		}
	}
	if len(beliefs) == 0 {
		return BeliefSummary{}
	}
	return BeliefSummary{
		Edges: len(beliefs),
		Mean:  stat.Mean(beliefs, nil),
		Min:   floats.Min(beliefs),
		Max:   floats.Max(beliefs),
	}
}

// Row is a bucket with its current expansion state.
type Row struct {
	Bucket
	Expanded bool `json:"expanded"`
}

// View holds the buckets of one result and their expand/collapse state.
// Every bucket starts expanded.
type View struct {
	mu       sync.Mutex
	buckets  []Bucket
	expanded map[string]bool
}

func NewView(r *results.PathResultData) *View {
	v := &View{buckets: Present(r), expanded: make(map[string]bool)}
	for _, b := range v.buckets {
		v.expanded[b.ID] = true
	}
	return v
}

// Toggle flips one bucket and returns its new state.
func (v *View) Toggle(id string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	state, ok := v.expanded[id]
	if !ok {
		return false, ErrUnknownBucket
	}
	v.expanded[id] = !state
	return !state, nil
}

// Expanded reports whether the bucket is expanded.
func (v *View) Expanded(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.expanded[id]
}

// Rows returns the buckets in order with their state.
func (v *View) Rows() []Row {
	if v == nil {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	rows := make([]Row, len(v.buckets))
	for i, b := range v.buckets {
		rows[i] = Row{Bucket: b, Expanded: v.expanded[b.ID]}
	}
	return rows
}
