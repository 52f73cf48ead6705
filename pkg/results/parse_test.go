package results

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPath = `{"path": [{"name": "MEK", "namespace": "FPLX", "identifier": "MEK"},
		{"name": "ERK", "namespace": "FPLX", "identifier": "ERK"}],
	"edge_data": [` + validEdge + `]}`

const brokenPath = `{"path": [{"name": "MEK", "namespace": "FPLX", "identifier": "MEK"},
		{"name": "ERK", "namespace": "FPLX", "identifier": "ERK"}],
	"edge_data": [{"edge": [], "statements": {}, "belief": 1, "weight": 1,
		"context_weight": "N/A", "db_url_edge": "x", "source_counts": {"a": 1}}]}`

func TestParseFiltersMalformedFragments(t *testing.T) {
	body := `{
		"query_hash": 1234567,
		"time_limit": 30.0,
		"timed_out": false,
		"hashes": [111, "222"],
		"path_results": {
			"source": {"name": "MEK", "namespace": "FPLX", "identifier": "MEK"},
			"target": {"name": "ERK", "namespace": "FPLX", "identifier": "ERK"},
			"paths": {"2": [` + validPath + `, ` + brokenPath + `, ` + validPath + `], "3": [` + brokenPath + `]}
		},
		"reverse_path_results": null,
		"ontology_results": {
			"source": {"name": "MEK", "namespace": "FPLX", "identifier": "MEK"},
			"target": {"name": "ERK", "namespace": "FPLX", "identifier": "ERK"},
			"parents": [{"name": "MAPK", "namespace": "FPLX", "identifier": "MAPK"}, {"name": "bad"}]
		},
		"shared_target_results": {
			"source_data": [` + validEdge + `, {"edge": "nope"}],
			"target_data": [` + validEdge + `],
			"downstream": true
		}
	}`

	p, rej, err := Parse([]byte(body))
	require.NoError(t, err)

	assert.Equal(t, "1234567", p.QueryHash)
	assert.Equal(t, 30.0, p.TimeLimit)
	assert.Equal(t, []string{"111", "222"}, p.Hashes)

	require.NotNil(t, p.PathResults)
	assert.Equal(t, "MEK", p.PathResults.Source.Name)
	require.Len(t, p.PathResults.Paths[2], 2, "the broken sibling is dropped")
	assert.NotContains(t, p.PathResults.Paths, 3, "a bucket left empty is dropped")
	assert.Nil(t, p.ReversePathResults)

	path := p.PathResults.Paths[2][0]
	assert.Equal(t, "MEK", path.Source().Name)
	assert.Equal(t, "ERK", path.Target().Name)
	edge := path.EdgeData[0]
	assert.Equal(t, Number(0.15), edge.Weight)
	assert.True(t, edge.ContextWeight.NA)
	assert.Equal(t, SourceCounts{"sparser": 2, "reach": 1}, edge.SourceCounts)
	assert.Equal(t, 3, edge.Statements["Activation"].Statements[0].EvidenceCount)

	require.NotNil(t, p.OntologyResults)
	assert.Len(t, p.OntologyResults.Parents, 1)

	require.NotNil(t, p.SharedTargetResults)
	assert.Len(t, p.SharedTargetResults.SourceData, 1)
	assert.Len(t, p.SharedTargetResults.TargetData, 1)
	assert.True(t, p.SharedTargetResults.Downstream)

	assert.Equal(t, 2, rej.Paths)
	assert.Equal(t, 1, rej.Edges)
	assert.Equal(t, 1, rej.Nodes)
	assert.Equal(t, 4, rej.Total())
	assert.NotEmpty(t, rej.Reasons)
	assert.False(t, p.IsEmpty())
}

func TestParseSharedInteractorsDropsRowsAsPairs(t *testing.T) {
	edge := func(from, to string) string {
		return `{"edge": [{"name": "` + from + `", "namespace": "HGNC", "identifier": "` + from + `"},
				{"name": "` + to + `", "namespace": "HGNC", "identifier": "` + to + `"}],
			"statements": {}, "belief": 0.5, "weight": 1, "context_weight": "N/A",
			"db_url_edge": "https://db.example.org/edge", "source_counts": {"reach": 1}}`
	}
	body := `{"shared_target_results": {
		"source_data": [{"edge": "broken"}, ` + edge("SRC_B", "X") + `, ` + edge("SRC_C", "Y") + `],
		"target_data": [` + edge("TGT_A", "X") + `, ` + edge("TGT_B", "X") + `],
		"downstream": true
	}}`

	p, rej, err := Parse([]byte(body))
	require.NoError(t, err)

	shared := p.SharedTargetResults
	require.Len(t, shared.SourceData, 1)
	require.Len(t, shared.TargetData, 1)
	assert.Equal(t, "SRC_B", shared.SourceData[0].Edge[0].Name)
	assert.Equal(t, "TGT_B", shared.TargetData[0].Edge[0].Name)
	assert.Equal(t, 2, rej.Edges, "the broken row and the row without a target are dropped")
}

func TestParseIntegralFloatCounts(t *testing.T) {
	stmt := `{"stmt_type": "Activation", "evidence_count": 3.0, "stmt_hash": "-1234",
		"source_counts": {"reach": 5.0, "isi": 2e0}, "belief": 1.0, "curated": true,
		"english": "MEK activates ERK.", "db_url_hash": "https://db.example.org/stmt/-1234"}`
	body := `{"path_results": {"paths": {"2": [{"path": [
			{"name": "MEK", "namespace": "FPLX", "identifier": "MEK", "sign": 1.0},
			{"name": "ERK", "namespace": "FPLX", "identifier": "ERK"}],
		"edge_data": [{"edge": [{"name": "MEK", "namespace": "FPLX", "identifier": "MEK"},
				{"name": "ERK", "namespace": "FPLX", "identifier": "ERK"}],
			"statements": {"Activation": {"stmt_type": "Activation",
				"source_counts": {"reach": 5.0, "isi": 2.0}, "statements": [` + stmt + `]}},
			"belief": 1.0, "weight": 1, "context_weight": "N/A",
			"db_url_edge": "https://db.example.org/edge", "source_counts": {"reach": 5.0, "isi": 2.0}}]}]}}}`

	p, rej, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Zero(t, rej.Total(), rej.Reasons)
	require.Len(t, p.PathResults.Paths[2], 1)

	path := p.PathResults.Paths[2][0]
	require.NotNil(t, path.Nodes[0].Sign)
	assert.Equal(t, 1, *path.Nodes[0].Sign)
	st := path.EdgeData[0].Statements["Activation"].Statements[0]
	assert.Equal(t, 3, st.EvidenceCount)
	assert.Equal(t, SourceCounts{"reach": 5, "isi": 2}, st.SourceCounts)
}

func TestParseBucketKeyMustMatchNodeCount(t *testing.T) {
	body := `{"path_results": {"paths": {"3": [` + validPath + `], "x": []}}}`
	p, rej, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.True(t, p.PathResults.IsEmpty())
	assert.Equal(t, 2, rej.Paths)
}

func TestParseNotAnObject(t *testing.T) {
	_, _, err := Parse([]byte(`[1, 2]`))
	assert.Error(t, err)

	p, rej, err := Parse([]byte(`null`))
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	assert.Zero(t, rej.Total())
}

func TestEmptiness(t *testing.T) {
	assert.True(t, Empty().IsEmpty())
	assert.True(t, (*Payload)(nil).IsEmpty())

	p := &Payload{SharedRegulatorsResults: &SharedInteractorsResults{
		TargetData: []EdgeData{{}},
	}}
	assert.True(t, p.IsEmpty(), "shared interactors are judged on source_data only")

	p.OntologyResults = &OntologyResults{Parents: []Node{{Namespace: "FPLX", Identifier: "MAPK"}}}
	assert.False(t, p.IsEmpty())
}

func TestContextWeightJSON(t *testing.T) {
	b, err := json.Marshal(ContextWeight{NA: true})
	require.NoError(t, err)
	assert.JSONEq(t, `"N/A"`, string(b))

	var cw ContextWeight
	require.NoError(t, json.Unmarshal([]byte(`0.25`), &cw))
	assert.Equal(t, "0.25", cw.String())
	assert.Error(t, json.Unmarshal([]byte(`"heavy"`), &cw))
}

func TestXrefTriple(t *testing.T) {
	var xs []Xref
	require.NoError(t, json.Unmarshal([]byte(`[["HGNC", "6840", "https://identifiers.org/hgnc:6840"]]`), &xs))
	assert.Equal(t, []Xref{{Namespace: "HGNC", Identifier: "6840", URL: "https://identifiers.org/hgnc:6840"}}, xs)

	var x Xref
	assert.Error(t, json.Unmarshal([]byte(`["HGNC", "6840"]`), &x))
}

func TestNodeHelpers(t *testing.T) {
	sign := 1
	n := Node{Name: "MEK", Namespace: "FPLX", Identifier: "MEK", Sign: &sign}
	name, s, signed := n.SignedTuple()
	assert.Equal(t, "MEK", name)
	assert.Equal(t, 1, s)
	assert.True(t, signed)

	u := n.Unsigned()
	assert.Nil(t, u.Sign)
	assert.NotNil(t, n.Sign)
	assert.Equal(t, "HGNC:6840", Node{Namespace: "HGNC", Identifier: "6840"}.DisplayName())
}
