package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sanonone/netsearch/pkg/presenter"
	"github.com/sanonone/netsearch/pkg/results"
	"github.com/sanonone/netsearch/pkg/session"
)

// renderState prints a session's search result as plain text.
func renderState(w io.Writer, st session.State) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Query %s  %s\n", st.QueryHash, st.Filters)
	fmt.Fprintf(&b, "Link  %s\n", st.ShareLink)

	if st.Banner != "" {
		fmt.Fprintf(&b, "\nError: %s\n", st.Banner)
	}
	if st.Result != nil && st.Result.TimedOut {
		fmt.Fprintf(&b, "\nThe search timed out; results may be incomplete.\n")
	}
	if st.EmptyResult {
		b.WriteString("\nNo results.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	renderRows(&b, "Paths", st.Paths)
	renderRows(&b, "Reverse paths", st.ReversePaths)

	if p := st.Result; p != nil {
		if !p.OntologyResults.IsEmpty() {
			names := make([]string, len(p.OntologyResults.Parents))
			for i, n := range p.OntologyResults.Parents {
				names[i] = n.DisplayName()
			}
			fmt.Fprintf(&b, "\nShared ontological parents: %s\n", strings.Join(names, ", "))
		}
		renderShared(&b, "Shared targets", p.SharedTargetResults)
		renderShared(&b, "Shared regulators", p.SharedRegulatorsResults)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderRows(b *strings.Builder, title string, rows []presenter.Row) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for _, row := range rows {
		fmt.Fprintf(b, "  %s  (%d paths, mean belief %.2f)\n", row.Title, row.Count, row.Belief.Mean)
		if !row.Expanded {
			continue
		}
		for _, p := range row.Paths {
			fmt.Fprintf(b, "    %s\n", presenter.PathTitle(p))
		}
	}
}

func renderShared(b *strings.Builder, title string, r *results.SharedInteractorsResults) {
	if r.IsEmpty() {
		return
	}
	fmt.Fprintf(b, "\n%s (%d)\n", title, len(r.SourceData))
	for i, e := range r.SourceData {
		if i >= len(r.TargetData) {
			break
		}
		fmt.Fprintf(b, "  %s  |  %s\n", edgeTitle(e), edgeTitle(r.TargetData[i]))
	}
}

func edgeTitle(e results.EdgeData) string {
	names := make([]string, len(e.Edge))
	for i, n := range e.Edge {
		names[i] = n.DisplayName()
	}
	return strings.Join(names, presenter.Separator)
}
