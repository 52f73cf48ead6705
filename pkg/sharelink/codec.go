// Package sharelink encodes a query into a minimal shareable link and decodes
// such a link back onto a query.
package sharelink

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/sanonone/netsearch/pkg/query"
)

// ExecuteParam is the reserved parameter that suppresses auto-submit when
// set to "false".
const ExecuteParam = "execute"

// DecodeResult reports what Decode did to the query.
type DecodeResult struct {
	Applied    []string          `json:"applied,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Lookups    []string          `json:"lookups,omitempty"`
	AutoSubmit bool              `json:"auto_submit"`
}

// DecodeError reports whether any field failed to decode.
func (r *DecodeResult) DecodeError() bool { return len(r.Errors) > 0 }

func (r *DecodeResult) fail(field string, err error) {
	if r.Errors == nil {
		r.Errors = make(map[string]string)
	}
	r.Errors[field] = err.Error()
}

func (r *DecodeResult) applied(field string) {
	r.Applied = append(r.Applied, field)
}

// Encode returns the parameter string carrying every non-default field of q
// in declaration order. An all-default query encodes to "".
func Encode(q *query.NetworkSearchQuery) string {
	var parts []string
	for _, f := range q.Fields() {
		if f.Name == query.FieldFormat || query.IsDefault(f.Name, f.Value) {
			continue
		}
		parts = append(parts, f.Name+"="+stringify(f.Value))
	}
	return strings.Join(parts, "&")
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return url.QueryEscape(t)
	case []string:
		escaped := make([]string, len(t))
		for i, s := range t {
			escaped[i] = url.QueryEscape(s)
		}
		return strings.Join(escaped, ",")
	case int:
		return strconv.Itoa(t)
	case *int:
		return strconv.Itoa(*t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// Decode applies a parameter string (or a full link) onto q. Fields absent
// from the link keep their current value. Decode never fails as a whole: a
// malformed parameter string is reported as a decode error on every field.
func Decode(raw string, q *query.NetworkSearchQuery) DecodeResult {
	var res DecodeResult
	p, err := ParseParams(raw)
	if err != nil {
		res.fail("params", err)
		return res
	}
	for _, f := range fieldsFor(q) {
		if p.Has(f.Name()) {
			f.decode(q, p, &res)
		}
	}
	execute, _ := p.Scalar(ExecuteParam)
	res.AutoSubmit = !res.DecodeError() && execute != "false"
	return res
}

// Codec renders full links for one deployment of the web client.
type Codec struct {
	BaseURL     string
	Path        string
	HashRouting bool
}

// Link returns the shareable address for q. The '?' is left out when q is
// all-default.
func (c Codec) Link(q *query.NetworkSearchQuery) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(c.BaseURL, "/"))
	if c.Path != "" {
		if !strings.HasPrefix(c.Path, "/") {
			b.WriteByte('/')
		}
		b.WriteString(c.Path)
	}
	if c.HashRouting {
		b.WriteString("#/")
	}
	if params := Encode(q); params != "" {
		b.WriteByte('?')
		b.WriteString(params)
	}
	return b.String()
}

// BuildParams renders plain-text field values as a parameter string that
// Decode accepts. List fields take comma-separated items. Keys that are not
// share-link fields are rejected.
func BuildParams(values map[string]string) (string, error) {
	kinds := Kinds()
	var unknown []string
	var parts []string
	q := query.New()
	for _, f := range q.Fields() {
		v, ok := values[f.Name]
		if !ok || f.Name == query.FieldFormat {
			continue
		}
		switch kinds[f.Name] {
		case InputJoin, MultiSelect:
			items := query.SplitText(v)
			for i, it := range items {
				items[i] = url.QueryEscape(it)
			}
			parts = append(parts, f.Name+"="+strings.Join(items, ","))
		default:
			parts = append(parts, f.Name+"="+url.QueryEscape(v))
		}
	}
	for name := range values {
		if _, ok := kinds[name]; !ok && name != ExecuteParam {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return "", fmt.Errorf("unknown share-link fields: %s", strings.Join(unknown, ", "))
	}
	if v, ok := values[ExecuteParam]; ok {
		parts = append(parts, ExecuteParam+"="+url.QueryEscape(v))
	}
	return strings.Join(parts, "&"), nil
}
