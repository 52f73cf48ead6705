package query

import (
	"fmt"
	"strings"
)

// Rule checks a single field. Rules never look at each other's outcome.
type Rule struct {
	Field string
	Check func(q *NetworkSearchQuery) error
}

// Rules is the ordered per-field rule list.
var Rules = []Rule{
	{FieldSource, requiredUnless(func(q *NetworkSearchQuery) (string, string) { return q.Source, q.Target }, FieldTarget)},
	{FieldTarget, requiredUnless(func(q *NetworkSearchQuery) (string, string) { return q.Target, q.Source }, FieldSource)},
	{FieldKShortest, intBetween(func(q *NetworkSearchQuery) int { return q.KShortest }, 1, 50)},
	{FieldPathLength, optionalAtLeast(func(q *NetworkSearchQuery) *int { return q.PathLength }, 1, "")},
	{FieldBeliefCutoff, checkBeliefCutoff},
	{FieldCullBestNode, optionalAtLeast(func(q *NetworkSearchQuery) *int { return q.CullBestNode }, 1,
		"cull_best_node must be a positive integer (at least 1)")},
	{FieldConstC, intAtLeast(func(q *NetworkSearchQuery) int { return q.ConstC }, 1)},
	{FieldConstTk, intAtLeast(func(q *NetworkSearchQuery) int { return q.ConstTk }, 1)},
	{FieldMaxPerNode, intAtLeast(func(q *NetworkSearchQuery) int { return q.MaxPerNode }, 1)},
	{FieldDepthLimit, intAtLeast(func(q *NetworkSearchQuery) int { return q.DepthLimit }, 1)},
	{FieldUserTimeout, intBetween(func(q *NetworkSearchQuery) int { return q.UserTimeout }, 2, 120)},
}

func requiredUnless(get func(q *NetworkSearchQuery) (own, other string), otherName string) func(*NetworkSearchQuery) error {
	return func(q *NetworkSearchQuery) error {
		own, other := get(q)
		if own == "" && other == "" {
			return fmt.Errorf("required unless %s is set", otherName)
		}
		return nil
	}
}

func intBetween(get func(q *NetworkSearchQuery) int, lo, hi int) func(*NetworkSearchQuery) error {
	return func(q *NetworkSearchQuery) error {
		if v := get(q); v < lo || v > hi {
			return fmt.Errorf("must be between %d and %d, got %d", lo, hi, v)
		}
		return nil
	}
}

func intAtLeast(get func(q *NetworkSearchQuery) int, lo int) func(*NetworkSearchQuery) error {
	return func(q *NetworkSearchQuery) error {
		if v := get(q); v < lo {
			return fmt.Errorf("must be at least %d, got %d", lo, v)
		}
		return nil
	}
}

func optionalAtLeast(get func(q *NetworkSearchQuery) *int, lo int, msg string) func(*NetworkSearchQuery) error {
	return func(q *NetworkSearchQuery) error {
		v := get(q)
		if v == nil || *v >= lo {
			return nil
		}
		if msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("must be at least %d, got %d", lo, *v)
	}
}

func checkBeliefCutoff(q *NetworkSearchQuery) error {
	if q.BeliefCutoff < 0 || q.BeliefCutoff > 1 {
		return fmt.Errorf("must be between 0 and 1, got %g", q.BeliefCutoff)
	}
	return nil
}

func isBlank(s string) bool {
	return s != "" && strings.TrimSpace(s) == ""
}
