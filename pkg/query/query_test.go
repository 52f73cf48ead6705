package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDefault(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  bool
	}{
		{"fixed default equal", FieldDepthLimit, 2, true},
		{"fixed default differs", FieldDepthLimit, 3, false},
		{"fixed zero is not default", FieldKShortest, 0, false},
		{"weighted default", FieldWeighted, "unweighted", true},
		{"weighted belief", FieldWeighted, "belief", false},
		{"empty string", FieldSource, "", true},
		{"whitespace string", FieldSource, " ", false},
		{"empty slice", FieldStmtFilter, []string{}, true},
		{"nil slice", FieldStmtFilter, []string(nil), true},
		{"non-empty slice", FieldStmtFilter, []string{"activation"}, false},
		{"empty map", "extra", map[string]int{}, true},
		{"non-empty map", "extra", map[string]int{"a": 1}, false},
		{"nil pointer", FieldPathLength, (*int)(nil), true},
		{"pointer to zero", FieldSign, IntPtr(0), true},
		{"pointer to one", FieldSign, IntPtr(1), false},
		{"false", FieldTwoWay, false, true},
		{"true", FieldTwoWay, true, false},
		{"zero float", FieldBeliefCutoff, 0.0, true},
		{"float", FieldBeliefCutoff, 0.5, false},
		{"nil", "unknown", nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDefault(tc.key, tc.value))
		})
	}
}

func TestNewQueryIsAllDefault(t *testing.T) {
	q := New()
	for _, f := range q.Fields() {
		if f.Name == FieldFormat {
			assert.Equal(t, FormatJSON, f.Value)
			continue
		}
		assert.True(t, IsDefault(f.Name, f.Value), "field %s should start at its default", f.Name)
	}
}

func TestFieldsOrder(t *testing.T) {
	q := New()
	fields := q.Fields()
	require.Len(t, fields, 25)
	assert.Equal(t, FieldSource, fields[0].Name)
	assert.Equal(t, FieldTarget, fields[1].Name)
	assert.Equal(t, FieldStrictMeshIDFiltering, fields[23].Name)
	assert.Equal(t, FieldFormat, fields[24].Name)
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, SplitText(" A , ,B,"))
	assert.Equal(t, []string{}, SplitText(""))
	assert.Equal(t, "A, B", JoinText(SplitText("A,B")))
}

func TestSubmissionTrimsEndpoints(t *testing.T) {
	q := New()
	q.Source = "  MEK "
	q.Target = "ERK\t"
	q.StmtFilter = nil
	q.Format = ""

	s := q.Submission()
	assert.Equal(t, "MEK", s.Source)
	assert.Equal(t, "ERK", s.Target)
	assert.NotNil(t, s.StmtFilter)
	assert.Equal(t, FormatJSON, s.Format)
	// The stored query is untouched.
	assert.Equal(t, "  MEK ", q.Source)
}

func TestReverse(t *testing.T) {
	q := New()
	q.Source = "MEK"
	q.Target = "ERK"
	q.PathLength = IntPtr(3)

	r := q.Reverse()
	assert.Equal(t, "ERK", r.Source)
	assert.Equal(t, "MEK", r.Target)
	*r.PathLength = 4
	assert.Equal(t, 3, *q.PathLength)
}

func TestWeighting(t *testing.T) {
	q := New()
	assert.False(t, q.IsOverallWeighted())
	assert.Equal(t, "", q.WeightAttribute())

	q.Weighted = WeightedBelief
	assert.True(t, q.IsOverallWeighted())
	assert.Equal(t, "weight", q.WeightAttribute())

	q.Weighted = WeightedZScore
	assert.Equal(t, "corr_weight", q.WeightAttribute())

	q.Weighted = WeightedUnweighted
	q.MeshIDs = []string{"D000001"}
	assert.True(t, q.IsContextWeighted())
	assert.Equal(t, "context_weight", q.WeightAttribute())

	q.StrictMeshIDFiltering = true
	assert.False(t, q.IsContextWeighted())
	assert.False(t, q.IsOverallWeighted())
}

func TestIntSign(t *testing.T) {
	assert.Equal(t, 0, *IntSign("+"))
	assert.Equal(t, 0, *IntSign("0"))
	assert.Equal(t, 1, *IntSign("-"))
	assert.Equal(t, 1, *IntSign("1"))
	assert.Nil(t, IntSign("2"))
	assert.Equal(t, "+", SignLabel(IntPtr(0)))
	assert.Equal(t, "", SignLabel(nil))
}

func TestFilterOptions(t *testing.T) {
	q := New()
	fo := q.FilterOptions()
	assert.True(t, fo.NoFilters())
	assert.Equal(t, "no filters", fo.String())

	q.StmtFilter = []string{"activation"}
	fo = q.FilterOptions()
	assert.False(t, fo.NoStmtFilters())
	assert.True(t, fo.NoNodeFilters())
	assert.Len(t, fo.ExcludeStmts, len(StmtTypeOptions)-1)
	assert.NotContains(t, fo.ExcludeStmts, "activation")

	q = New()
	q.AllowedNS = []string{"hgnc"}
	fo = q.FilterOptions()
	assert.True(t, fo.NoStmtFilters())
	assert.False(t, fo.NoNodeFilters())
	assert.Contains(t, fo.String(), "namespaces: hgnc")
}

func TestHash(t *testing.T) {
	a := New()
	a.Source = "MEK"
	a.Target = "ERK"
	a.StmtFilter = []string{"inhibition", "activation"}

	b := a.Clone()
	b.StmtFilter = []string{"activation", "inhibition"}
	b.Format = "html"
	assert.Equal(t, Hash(&a), Hash(&b), "set order and format do not change the hash")

	d := a.Clone()
	d.Source = "  MEK "
	assert.Equal(t, Hash(&a), Hash(&d), "endpoints are hashed as submitted")

	c := a.Clone()
	c.Target = "JNK"
	assert.NotEqual(t, Hash(&a), Hash(&c))
	assert.NotEmpty(t, HashString(&a))
}

func TestSortedString(t *testing.T) {
	assert.Equal(t, "0.0", sortedString(0.0))
	assert.Equal(t, "0.5", sortedString(0.5))
	assert.Equal(t, "1e-05", sortedString(0.00001))
	assert.Equal(t, "0.0001", sortedString(0.0001))
	assert.Equal(t, "1e+16", sortedString(1e16))
	assert.Equal(t, "null", sortedString((*int)(nil)))
	assert.Equal(t, "True", sortedString(true))
	assert.Equal(t, "[a,b]", sortedString([]string{"b", "a"}))
	assert.Equal(t, "[]", sortedString([]string{}))
}

func TestHashKnownValues(t *testing.T) {
	q := New()
	q.Source = "MEK"
	q.Target = "ERK"
	q.StmtFilter = []string{"inhibition", "activation"}

	assert.Equal(t, "{allowed_ns[],belief_cutoff0.0,const_c1,const_tk10,cull_best_nodenull,"+
		"curated_db_onlyFalse,depth_limit2,fplx_edgesFalse,fplx_expandFalse,k_shortest50,"+
		"max_per_node5,mesh_ids[],node_blacklist[],path_lengthnull,shared_regulatorsFalse,"+
		"signnull,sourceMEK,stmt_filter[activation,inhibition],strict_mesh_id_filteringFalse,"+
		"targetERK,terminal_ns[],two_wayFalse,user_timeout30,weightedunweighted}", SortedString(&q))
	assert.Equal(t, uint32(2724520484), Hash(&q))

	pl, sign := 3, 1
	q.PathLength = &pl
	q.Sign = &sign
	q.BeliefCutoff = 0.00001
	assert.Equal(t, "1943030608", HashString(&q))
}
