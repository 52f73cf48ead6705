package query

import (
	"hash/fnv"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Hash returns the FNV-1a 32-bit hash of the query's sorted string form,
// ignoring format. It is the algorithm the search service applies to the
// query document it receives, so a client hash equals the service's for the
// same submitted fields.
func Hash(q *NetworkSearchQuery) uint32 {
	h := fnv.New32a()
	h.Write([]byte(SortedString(q)))
	return h.Sum32()
}

// HashString is Hash in decimal.
func HashString(q *NetworkSearchQuery) string {
	return strconv.FormatUint(uint64(Hash(q)), 10)
}

// SortedString renders every field of the submitted form of q but format as
// "{name<value>,...}" with items and collection elements sorted.
func SortedString(q *NetworkSearchQuery) string {
	sub := q.Submission()
	var items []string
	for _, f := range sub.Fields() {
		if f.Name == FieldFormat {
			continue
		}
		items = append(items, f.Name+sortedString(f.Value))
	}
	slices.Sort(items)
	return "{" + strings.Join(items, ",") + "}"
}

func sortedString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		s := slices.Clone(t)
		slices.Sort(s)
		return "[" + strings.Join(s, ",") + "]"
	case *int:
		if t == nil {
			return "null"
		}
		return strconv.Itoa(*t)
	case int:
		return strconv.Itoa(t)
	case bool:
		if t {
			return "True"
		}
		return "False"
	case float64:
		return floatString(t)
	}
	return "null"
}

// floatString prints f the way the service prints floats: the shortest
// round-tripping digits, fixed notation with at least one decimal for
// exponents in [-4, 16), otherwise scientific with a two-digit exponent.
func floatString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if f != 0 && (exp < -4 || exp >= 16) {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
