package presenter

import (
	"testing"

	"github.com/sanonone/netsearch/pkg/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name string) results.Node {
	return results.Node{Name: name, Namespace: "HGNC", Identifier: name}
}

func path(belief float64, names ...string) results.Path {
	p := results.Path{}
	for i, n := range names {
		p.Nodes = append(p.Nodes, node(n))
		if i > 0 {
			p.EdgeData = append(p.EdgeData, results.EdgeData{Belief: results.Number(belief)})
		}
	}
	return p
}

func TestHeader(t *testing.T) {
	assert.Equal(t, []string{"MEK", "ERK"}, Header(2, "MEK", "ERK"))
	assert.Equal(t, []string{"MEK", "X1", "X2", "ERK"}, Header(4, "MEK", "ERK"))
}

func TestPresent(t *testing.T) {
	mek := node("MEK")
	r := &results.PathResultData{
		Source: &mek,
		Paths: map[int][]results.Path{
			4: {path(0.5, "MEK", "A", "B", "ERK")},
			2: {path(0.9, "MEK", "ERK")},
			3: {
				path(0.2, "MEK", "RAF", "JNK"),
				path(0.6, "MEK", "BRAF", "ERK"),
				path(0.4, "MEK", "CRAF", "p38"),
			},
		},
	}

	buckets := Present(r)
	require.Len(t, buckets, 3)

	assert.Equal(t, []int{2, 3, 4}, []int{buckets[0].NodeCount, buckets[1].NodeCount, buckets[2].NodeCount})

	b := buckets[1]
	assert.Equal(t, 2, b.EdgeCount)
	assert.Equal(t, 3, b.Count)
	assert.Equal(t, "MEK → X1 → target", b.Title)
	// Order within a bucket is preserved exactly.
	assert.Equal(t, "MEK → RAF → JNK", PathTitle(b.Paths[0]))
	assert.Equal(t, "MEK → BRAF → ERK", PathTitle(b.Paths[1]))
	assert.Equal(t, "MEK → CRAF → p38", PathTitle(b.Paths[2]))

	assert.Equal(t, 6, b.Belief.Edges)
	assert.InDelta(t, 0.4, b.Belief.Mean, 1e-9)
	assert.Equal(t, 0.2, b.Belief.Min)
	assert.Equal(t, 0.6, b.Belief.Max)

	assert.NotEqual(t, buckets[0].ID, buckets[1].ID)
}

func TestPresentEmpty(t *testing.T) {
	assert.Nil(t, Present(nil))
	assert.Nil(t, Present(&results.PathResultData{Paths: map[int][]results.Path{}}))
}

func TestViewToggle(t *testing.T) {
	r := &results.PathResultData{Paths: map[int][]results.Path{
		2: {path(0.9, "MEK", "ERK")},
		3: {path(0.5, "MEK", "RAF", "ERK")},
	}}
	v := NewView(r)
	rows := v.Rows()
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.True(t, row.Expanded, "buckets start expanded")
	}

	state, err := v.Toggle(rows[0].ID)
	require.NoError(t, err)
	assert.False(t, state)
	assert.False(t, v.Expanded(rows[0].ID))
	assert.True(t, v.Expanded(rows[1].ID), "buckets toggle independently")

	_, err = v.Toggle("bucket-missing")
	assert.ErrorIs(t, err, ErrUnknownBucket)
}
