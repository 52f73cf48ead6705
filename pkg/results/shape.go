package results

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type conjunct struct {
	desc string
	test func(v any) bool
}

// Shape is an ordered list of conditions a decoded JSON value must meet.
// Check stops at the first failing condition; Diagnose evaluates all of them.
type Shape struct {
	Name      string
	conjuncts []conjunct
}

// Check reports whether v satisfies every condition, left to right.
func (s Shape) Check(v any) bool {
	for _, c := range s.conjuncts {
		if !c.test(v) {
			return false
		}
	}
	return true
}

// Diagnose returns the description of every failing condition.
func (s Shape) Diagnose(v any) []string {
	var out []string
	for _, c := range s.conjuncts {
		if !c.test(v) {
			out = append(out, s.Name+": "+c.desc)
		}
	}
	return out
}

var (
	SourceCountShape = Shape{Name: "source_counts", conjuncts: []conjunct{
		{"is an object", func(v any) bool { _, ok := countsOf(v); return ok }},
		{"is non-empty", func(v any) bool { m, _ := countsOf(v); return len(m) > 0 }},
		{"has non-empty keys", func(v any) bool {
			m, ok := countsOf(v)
			for k := range m {
				if k == "" {
					return false
				}
			}
			return ok
		}},
		{"has non-negative integer values", func(v any) bool {
			m, ok := countsOf(v)
			for _, n := range m {
				if i, isInt := asInt(n); !isInt || i < 0 {
					return false
				}
			}
			return ok
		}},
	}}

	NodeShape = Shape{Name: "node", conjuncts: []conjunct{
		{"is an object", isObject},
		{"has a namespace", hasTruthyString("namespace")},
		{"has an identifier", hasTruthyString("identifier")},
		{"name is a string", optional("name", isString)},
		{"lookup is a string", optional("lookup", isString)},
		{"sign is null or an integer", optional("sign", func(v any) bool {
			if v == nil {
				return true
			}
			_, ok := asInt(v)
			return ok
		})},
	}}

	StmtDataShape = Shape{Name: "statement", conjuncts: []conjunct{
		{"is an object", isObject},
		{"has a stmt_type", hasTruthyString("stmt_type")},
		{"has a stmt_hash", hasTruthyString("stmt_hash")},
		{"has an english sentence", hasTruthyString("english")},
		{"has a db_url_hash", hasTruthyString("db_url_hash")},
		{"evidence_count is a positive integer", func(v any) bool {
			n, ok := asInt(get(v, "evidence_count"))
			return ok && n > 0
		}},
		{"has valid source_counts", func(v any) bool { return IsSourceCount(get(v, "source_counts")) }},
		{"belief is numeric", func(v any) bool { return isNumeric(get(v, "belief")) }},
		{"curated is a boolean", func(v any) bool { _, ok := get(v, "curated").(bool); return ok }},
	}}

	StmtTypeSupportShape = Shape{Name: "statement group", conjuncts: []conjunct{
		{"is an object", isObject},
		{"has a stmt_type", hasTruthyString("stmt_type")},
		{"has valid source_counts", func(v any) bool { return IsSourceCount(get(v, "source_counts")) }},
		{"has statements", func(v any) bool { l, ok := get(v, "statements").([]any); return ok && len(l) > 0 }},
		{"has only valid statements", func(v any) bool { return every(get(v, "statements"), IsStmtData) }},
	}}

	EdgeDataShape = Shape{Name: "edge", conjuncts: []conjunct{
		{"is an object", isObject},
		{"edge has at least two nodes", func(v any) bool { l, ok := get(v, "edge").([]any); return ok && len(l) >= 2 }},
		{"edge nodes are valid", func(v any) bool { return every(get(v, "edge"), IsNode) }},
		{"statements are valid groups", func(v any) bool {
			m, ok := get(v, "statements").(map[string]any)
			if !ok {
				return false
			}
			for _, sts := range m {
				if !IsStmtTypeSupport(sts) {
					return false
				}
			}
			return true
		}},
		{"belief is numeric", func(v any) bool { return isNumericLike(get(v, "belief")) }},
		{"weight is numeric", func(v any) bool { return isNumericLike(get(v, "weight")) }},
		{"context_weight is N/A or numeric", func(v any) bool {
			cw := get(v, "context_weight")
			return cw == NotApplicable || isNumeric(cw)
		}},
		{"has a db_url_edge", hasTruthyString("db_url_edge")},
		{"has valid source_counts", func(v any) bool { return IsSourceCount(get(v, "source_counts")) }},
	}}

	PathShape = Shape{Name: "path", conjuncts: []conjunct{
		{"is an object", isObject},
		{"has at least two nodes", func(v any) bool { l, ok := get(v, "path").([]any); return ok && len(l) >= 2 }},
		{"nodes are valid", func(v any) bool { return every(get(v, "path"), IsNode) }},
		{"edge data matches the nodes", func(v any) bool {
			nodes, _ := get(v, "path").([]any)
			edges, ok := get(v, "edge_data").([]any)
			return ok && len(edges) == len(nodes)-1
		}},
		{"edge data is valid", func(v any) bool { return every(get(v, "edge_data"), IsEdgeData) }},
	}}
)

// IsSourceCount reports whether v is a non-empty mapping of non-empty source
// names to non-negative integer counts.
func IsSourceCount(v any) bool { return SourceCountShape.Check(v) }

// IsNode reports whether v is a resolved node.
func IsNode(v any) bool { return NodeShape.Check(v) }

// IsStmtData reports whether v is a displayable statement.
func IsStmtData(v any) bool { return StmtDataShape.Check(v) }

// IsStmtTypeSupport reports whether v is a non-empty group of valid statements.
func IsStmtTypeSupport(v any) bool { return StmtTypeSupportShape.Check(v) }

// IsEdgeData reports whether v is displayable edge support.
func IsEdgeData(v any) bool { return EdgeDataShape.Check(v) }

// IsPath reports whether v is a displayable path.
func IsPath(v any) bool { return PathShape.Check(v) }

func countsOf(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case SourceCounts:
		out := make(map[string]any, len(m))
		for k, n := range m {
			out[k] = n
		}
		return out, true
	case map[string]int:
		return countsOf(SourceCounts(m))
	}
	return nil, false
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func get(v any, key string) any {
	m, _ := v.(map[string]any)
	return m[key]
}

func hasTruthyString(key string) func(any) bool {
	return func(v any) bool {
		s, ok := get(v, key).(string)
		return ok && s != ""
	}
}

func optional(key string, test func(any) bool) func(any) bool {
	return func(v any) bool {
		m, _ := v.(map[string]any)
		val, present := m[key]
		return !present || test(val)
	}
}

func every(v any, test func(any) bool) bool {
	l, ok := v.([]any)
	if !ok {
		return false
	}
	for _, el := range l {
		if !test(el) {
			return false
		}
	}
	return true
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		// Integral floats such as 5.0 or 1e0 still count.
		f, err := n.Float64()
		if err != nil || !isIntegral(f) {
			return 0, false
		}
		return int64(f), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if !isIntegral(n) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < 1<<63
}

func isNumeric(v any) bool {
	switch n := v.(type) {
	case json.Number:
		_, err := n.Float64()
		return err == nil
	case int, int64:
		return true
	case float64:
		return !math.IsNaN(n)
	}
	return false
}

func isNumericLike(v any) bool {
	if s, ok := v.(string); ok {
		_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return err == nil
	}
	return isNumeric(v)
}
