package sharelink

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/sanonone/netsearch/pkg/query"
)

// FieldKind is the shape a share-link parameter is decoded with.
type FieldKind uint8

const (
	Input FieldKind = iota + 1
	InputJoin
	Select
	Checkbox
	MultiSelect
)

func (k FieldKind) String() string {
	switch k {
	case Input:
		return "input"
	case InputJoin:
		return "input-join"
	case Select:
		return "select"
	case Checkbox:
		return "checkbox"
	case MultiSelect:
		return "multi-select"
	}
	return "unknown"
}

// field is implemented only by the five kinds below; decode is unexported so
// the set stays closed.
type field interface {
	Name() string
	Kind() FieldKind
	decode(q *query.NetworkSearchQuery, p *Params, res *DecodeResult)
}

type inputField struct {
	name   string
	lookup bool
	set    func(q *query.NetworkSearchQuery, text string) error
}

type inputJoinField struct {
	name string
	set  func(q *query.NetworkSearchQuery, text string)
}

type selectField struct {
	name    string
	options []string
	set     func(q *query.NetworkSearchQuery, v string)
}

type checkboxField struct {
	name string
	set  func(q *query.NetworkSearchQuery, v bool)
}

type multiSelectField struct {
	name    string
	options []string
	set     func(q *query.NetworkSearchQuery, v []string)
}

func (f inputField) Name() string       { return f.name }
func (f inputJoinField) Name() string   { return f.name }
func (f selectField) Name() string      { return f.name }
func (f checkboxField) Name() string    { return f.name }
func (f multiSelectField) Name() string { return f.name }

func (inputField) Kind() FieldKind       { return Input }
func (inputJoinField) Kind() FieldKind   { return InputJoin }
func (selectField) Kind() FieldKind      { return Select }
func (checkboxField) Kind() FieldKind    { return Checkbox }
func (multiSelectField) Kind() FieldKind { return MultiSelect }

func (f inputField) decode(q *query.NetworkSearchQuery, p *Params, res *DecodeResult) {
	text, err := p.Scalar(f.name)
	if err == nil {
		err = f.set(q, text)
	}
	if err != nil {
		res.fail(f.name, err)
		return
	}
	res.applied(f.name)
	if f.lookup && strings.TrimSpace(text) != "" {
		res.Lookups = append(res.Lookups, f.name)
	}
}

func (f inputJoinField) decode(q *query.NetworkSearchQuery, p *Params, res *DecodeResult) {
	items, err := p.List(f.name)
	if err != nil {
		res.fail(f.name, err)
		return
	}
	f.set(q, query.JoinText(items))
	res.applied(f.name)
}

func (f selectField) decode(q *query.NetworkSearchQuery, p *Params, _ *DecodeResult) {
	v, err := p.Scalar(f.name)
	if err != nil || !slices.Contains(f.options, v) {
		return
	}
	f.set(q, v)
}

func (f checkboxField) decode(q *query.NetworkSearchQuery, p *Params, res *DecodeResult) {
	v, err := p.Scalar(f.name)
	if err != nil {
		res.fail(f.name, err)
		return
	}
	switch v {
	case "true":
		f.set(q, true)
	case "false":
		f.set(q, false)
	default:
		res.fail(f.name, fmt.Errorf("expected true or false, got %q", v))
		return
	}
	res.applied(f.name)
}

func (f multiSelectField) decode(q *query.NetworkSearchQuery, p *Params, res *DecodeResult) {
	items, err := p.List(f.name)
	if err != nil {
		res.fail(f.name, err)
		return
	}
	valid := []string{}
	var invalid []string
	for _, it := range items {
		if slices.Contains(f.options, it) {
			valid = append(valid, it)
		} else {
			invalid = append(invalid, it)
		}
	}
	f.set(q, valid)
	res.applied(f.name)
	if len(invalid) > 0 {
		res.fail(f.name, fmt.Errorf("unknown options: %s", strings.Join(invalid, ", ")))
	}
}

func setInt(dst *int) func(*query.NetworkSearchQuery, string) error {
	return func(_ *query.NetworkSearchQuery, text string) error {
		v, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return fmt.Errorf("not an integer: %q", text)
		}
		*dst = v
		return nil
	}
}

func setOptionalInt(dst **int) func(*query.NetworkSearchQuery, string) error {
	return func(_ *query.NetworkSearchQuery, text string) error {
		text = strings.TrimSpace(text)
		if text == "" {
			*dst = nil
			return nil
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("not an integer: %q", text)
		}
		*dst = &v
		return nil
	}
}

// fieldsFor binds the decoding table to q. Order matches the query's
// declaration order.
func fieldsFor(q *query.NetworkSearchQuery) []field {
	return []field{
		inputField{name: query.FieldSource, lookup: true, set: func(q *query.NetworkSearchQuery, s string) error {
			q.Source = s
			return nil
		}},
		inputField{name: query.FieldTarget, lookup: true, set: func(q *query.NetworkSearchQuery, s string) error {
			q.Target = s
			return nil
		}},
		multiSelectField{name: query.FieldStmtFilter, options: query.StmtTypeOptions, set: func(q *query.NetworkSearchQuery, v []string) {
			q.StmtFilter = v
		}},
		multiSelectField{name: query.FieldAllowedNS, options: query.NamespaceOptions, set: func(q *query.NetworkSearchQuery, v []string) {
			q.AllowedNS = v
		}},
		multiSelectField{name: query.FieldTerminalNS, options: query.NamespaceOptions, set: func(q *query.NetworkSearchQuery, v []string) {
			q.TerminalNS = v
		}},
		inputJoinField{name: query.FieldNodeBlacklist, set: (*query.NetworkSearchQuery).SetNodeBlacklistText},
		inputJoinField{name: query.FieldMeshIDs, set: (*query.NetworkSearchQuery).SetMeshIDsText},
		inputField{name: query.FieldPathLength, set: setOptionalInt(&q.PathLength)},
		inputField{name: query.FieldDepthLimit, set: setInt(&q.DepthLimit)},
		inputField{name: query.FieldMaxPerNode, set: setInt(&q.MaxPerNode)},
		inputField{name: query.FieldKShortest, set: setInt(&q.KShortest)},
		inputField{name: query.FieldCullBestNode, set: setOptionalInt(&q.CullBestNode)},
		inputField{name: query.FieldConstC, set: setInt(&q.ConstC)},
		inputField{name: query.FieldConstTk, set: setInt(&q.ConstTk)},
		inputField{name: query.FieldUserTimeout, set: setInt(&q.UserTimeout)},
		selectField{name: query.FieldSign, options: query.SignOptions, set: func(q *query.NetworkSearchQuery, v string) {
			q.Sign = query.IntSign(v)
		}},
		selectField{name: query.FieldWeighted, options: query.WeightedOptions, set: func(q *query.NetworkSearchQuery, v string) {
			q.Weighted = v
		}},
		inputField{name: query.FieldBeliefCutoff, set: func(q *query.NetworkSearchQuery, s string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return fmt.Errorf("not a number: %q", s)
			}
			q.BeliefCutoff = v
			return nil
		}},
		checkboxField{name: query.FieldCuratedDBOnly, set: func(q *query.NetworkSearchQuery, v bool) { q.CuratedDBOnly = v }},
		checkboxField{name: query.FieldFplxExpand, set: func(q *query.NetworkSearchQuery, v bool) { q.FplxExpand = v }},
		checkboxField{name: query.FieldFplxEdges, set: func(q *query.NetworkSearchQuery, v bool) { q.FplxEdges = v }},
		checkboxField{name: query.FieldTwoWay, set: func(q *query.NetworkSearchQuery, v bool) { q.TwoWay = v }},
		checkboxField{name: query.FieldSharedRegulators, set: func(q *query.NetworkSearchQuery, v bool) { q.SharedRegulators = v }},
		checkboxField{name: query.FieldStrictMeshIDFiltering, set: func(q *query.NetworkSearchQuery, v bool) { q.StrictMeshIDFiltering = v }},
	}
}

// Kinds maps every link-carried field to its decode shape.
func Kinds() map[string]FieldKind {
	var q query.NetworkSearchQuery
	out := make(map[string]FieldKind)
	for _, f := range fieldsFor(&q) {
		out[f.Name()] = f.Kind()
	}
	return out
}
