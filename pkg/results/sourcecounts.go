package results

import (
	"cmp"
	"maps"
	"slices"
)

// SourceCounts maps a knowledge source to the number of pieces of evidence
// it contributes.
type SourceCounts map[string]int

// Total is the sum of all counts.
func (c SourceCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Sources returns the source names sorted by descending count, then name.
func (c SourceCounts) Sources() []string {
	names := slices.Collect(maps.Keys(c))
	slices.SortFunc(names, func(a, b string) int {
		if c[a] != c[b] {
			return cmp.Compare(c[b], c[a])
		}
		return cmp.Compare(a, b)
	})
	return names
}

// MergeSourceCounts adds the counts of every mapping per source. The result
// does not depend on the order of counts.
func MergeSourceCounts(counts []SourceCounts) SourceCounts {
	out := SourceCounts{}
	for _, c := range counts {
		for source, n := range c {
			out[source] += n
		}
	}
	return out
}

// GetSourceCounts merges the source counts of a list of statements.
func GetSourceCounts(stmts []StmtData) SourceCounts {
	counts := make([]SourceCounts, len(stmts))
	for i, s := range stmts {
		counts[i] = s.SourceCounts
	}
	return MergeSourceCounts(counts)
}

// EdgeSourceCounts merges the source counts of every statement type of an edge.
func EdgeSourceCounts(stmts map[string]StmtTypeSupport) SourceCounts {
	counts := make([]SourceCounts, 0, len(stmts))
	for _, sts := range stmts {
		counts = append(counts, GetSourceCounts(sts.Statements))
	}
	return MergeSourceCounts(counts)
}

// Aggregate recomputes the source counts of every statement-type group and
// edge in p from their statements.
func (p *Payload) Aggregate() {
	if p == nil {
		return
	}
	for _, r := range []*PathResultData{p.PathResults, p.ReversePathResults} {
		if r == nil {
			continue
		}
		for _, paths := range r.Paths {
			for i := range paths {
				aggregateEdges(paths[i].EdgeData)
			}
		}
	}
	for _, r := range []*SharedInteractorsResults{p.SharedTargetResults, p.SharedRegulatorsResults} {
		if r == nil {
			continue
		}
		aggregateEdges(r.SourceData)
		aggregateEdges(r.TargetData)
	}
}

func aggregateEdges(edges []EdgeData) {
	for i := range edges {
		for k, sts := range edges[i].Statements {
			sts.SourceCounts = GetSourceCounts(sts.Statements)
			edges[i].Statements[k] = sts
		}
		edges[i].SourceCounts = EdgeSourceCounts(edges[i].Statements)
	}
}
