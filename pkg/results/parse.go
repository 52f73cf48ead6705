package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

const maxReasons = 32

// Rejections counts the fragments Parse dropped.
type Rejections struct {
	Paths   int      `json:"paths"`
	Edges   int      `json:"edges"`
	Nodes   int      `json:"nodes"`
	Results int      `json:"results"`
	Reasons []string `json:"reasons,omitempty"`
}

// Total is the number of dropped fragments.
func (r *Rejections) Total() int {
	return r.Paths + r.Edges + r.Nodes + r.Results
}

func (r *Rejections) note(where string, reasons ...string) {
	for _, reason := range reasons {
		if len(r.Reasons) >= maxReasons {
			return
		}
		r.Reasons = append(r.Reasons, where+": "+reason)
	}
}

// Parse decodes a result payload, dropping every fragment that fails its
// shape check. A dropped fragment never affects its siblings. The only error
// is a body that is not a JSON object at all.
func Parse(raw []byte) (*Payload, *Rejections, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decoding result payload: %w", err)
	}

	rej := &Rejections{}
	p := Empty()
	if doc == nil {
		return p, rej, nil
	}

	p.QueryHash = scalarString(doc["query_hash"])
	if tl, ok := doc["time_limit"].(json.Number); ok {
		p.TimeLimit, _ = tl.Float64()
	}
	p.TimedOut, _ = doc["timed_out"].(bool)
	if hs, ok := doc["hashes"].([]any); ok {
		for _, h := range hs {
			if s := scalarString(h); s != "" {
				p.Hashes = append(p.Hashes, s)
			}
		}
	}

	p.PathResults = parsePathResults("path_results", doc["path_results"], rej)
	p.ReversePathResults = parsePathResults("reverse_path_results", doc["reverse_path_results"], rej)
	p.OntologyResults = parseOntology(doc["ontology_results"], rej)
	p.SharedTargetResults = parseShared("shared_target_results", doc["shared_target_results"], rej)
	p.SharedRegulatorsResults = parseShared("shared_regulators_results", doc["shared_regulators_results"], rej)

	p.Aggregate()
	return p, rej, nil
}

func parsePathResults(where string, v any, rej *Rejections) *PathResultData {
	if v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		rej.Results++
		rej.note(where, "is not an object")
		return nil
	}
	out := &PathResultData{Paths: map[int][]Path{}}
	out.Source = parseEndpoint(where+".source", m["source"], rej)
	out.Target = parseEndpoint(where+".target", m["target"], rej)

	buckets, ok := m["paths"].(map[string]any)
	if !ok {
		if m["paths"] != nil {
			rej.Results++
			rej.note(where, "paths is not an object")
		}
		return out
	}
	for key, list := range buckets {
		n, err := strconv.Atoi(key)
		items, isList := list.([]any)
		if err != nil || n <= 0 || !isList {
			rej.Paths++
			rej.note(where, fmt.Sprintf("bucket %q is malformed", key))
			continue
		}
		var kept []Path
		for _, item := range items {
			if !IsPath(item) {
				rej.Paths++
				rej.note(where, PathShape.Diagnose(item)...)
				continue
			}
			nodes, _ := get(item, "path").([]any)
			if len(nodes) != n {
				rej.Paths++
				rej.note(where, fmt.Sprintf("path of %d nodes in bucket %d", len(nodes), n))
				continue
			}
			var path Path
			if err := convert(item, &path); err != nil {
				rej.Paths++
				rej.note(where, err.Error())
				continue
			}
			kept = append(kept, path)
		}
		if len(kept) > 0 {
			out.Paths[n] = kept
		}
	}
	return out
}

func parseEndpoint(where string, v any, rej *Rejections) *Node {
	if v == nil {
		return nil
	}
	if !IsNode(v) {
		rej.Nodes++
		rej.note(where, NodeShape.Diagnose(v)...)
		return nil
	}
	var n Node
	if err := convert(v, &n); err != nil {
		rej.Nodes++
		rej.note(where, err.Error())
		return nil
	}
	return &n
}

func parseOntology(v any, rej *Rejections) *OntologyResults {
	const where = "ontology_results"
	if v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok || !IsNode(m["source"]) || !IsNode(m["target"]) {
		rej.Results++
		rej.note(where, "missing a valid source or target")
		return nil
	}
	out := &OntologyResults{}
	if err := convert(m["source"], &out.Source); err != nil {
		rej.Results++
		return nil
	}
	if err := convert(m["target"], &out.Target); err != nil {
		rej.Results++
		return nil
	}
	parents, _ := m["parents"].([]any)
	for _, pv := range parents {
		if n := parseEndpoint(where+".parents", pv, rej); n != nil {
			out.Parents = append(out.Parents, *n)
		}
	}
	return out
}

func parseShared(where string, v any, rej *Rejections) *SharedInteractorsResults {
	if v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		rej.Results++
		rej.note(where, "is not an object")
		return nil
	}
	out := &SharedInteractorsResults{}
	out.Downstream, _ = m["downstream"].(bool)

	// source_data[i] and target_data[i] describe the same interactor, so a
	// row is kept or dropped as a pair.
	src, _ := m["source_data"].([]any)
	tgt, _ := m["target_data"].([]any)
	for i := range max(len(src), len(tgt)) {
		if i >= len(src) || i >= len(tgt) {
			rej.Edges++
			rej.note(fmt.Sprintf("%s[%d]", where, i), "has no counterpart")
			continue
		}
		s, err := parseEdge(fmt.Sprintf("%s.source_data[%d]", where, i), src[i], rej)
		if err != nil {
			rej.Edges++
			continue
		}
		t, err := parseEdge(fmt.Sprintf("%s.target_data[%d]", where, i), tgt[i], rej)
		if err != nil {
			rej.Edges++
			continue
		}
		out.SourceData = append(out.SourceData, s)
		out.TargetData = append(out.TargetData, t)
	}
	return out
}

var errMalformed = errors.New("malformed fragment")

// parseEdge validates and converts one edge, noting why it was refused.
func parseEdge(where string, v any, rej *Rejections) (EdgeData, error) {
	var ed EdgeData
	if !IsEdgeData(v) {
		rej.note(where, EdgeDataShape.Diagnose(v)...)
		return ed, errMalformed
	}
	if err := convert(v, &ed); err != nil {
		rej.note(where, err.Error())
		return ed, err
	}
	return ed, nil
}

// convert moves a validated fragment into its typed form.
func convert(v any, dst any) error {
	b, err := json.Marshal(integral(v))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// integral copies v with every integral number in integer form, so that a
// count sent as 5.0 decodes into an int field.
func integral(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, el := range t {
			out[k] = integral(el)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = integral(el)
		}
		return out
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return t
		}
		if i, ok := asInt(t); ok {
			return json.Number(strconv.FormatInt(i, 10))
		}
	}
	return v
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}
