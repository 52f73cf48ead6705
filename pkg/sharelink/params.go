package sharelink

import (
	"fmt"
	"net/url"
	"strings"
)

// Params holds the raw, still-escaped values of a parameter string in the
// order they appeared. Values stay escaped so that list fields can split on
// the literal comma before unescaping each element.
type Params struct {
	keys   []string
	values map[string][]string
}

// ParseParams splits a parameter string into raw values. A full link is
// accepted: everything up to the first '?' is dropped, and so is any
// trailing fragment.
func ParseParams(raw string) (*Params, error) {
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}
	p := &Params{values: make(map[string][]string)}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter name %q: %w", key, err)
		}
		if _, seen := p.values[name]; !seen {
			p.keys = append(p.keys, name)
		}
		p.values[name] = append(p.values[name], value)
	}
	return p, nil
}

// Has reports whether name appeared in the parameter string.
func (p *Params) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Keys returns the parameter names in first-seen order.
func (p *Params) Keys() []string { return p.keys }

// Scalar returns the first value of name, unescaped.
func (p *Params) Scalar(name string) (string, error) {
	vs := p.values[name]
	if len(vs) == 0 {
		return "", nil
	}
	return url.QueryUnescape(vs[0])
}

// List returns every element of name: each occurrence is split on the
// literal comma and each piece unescaped. Empty pieces are dropped, so a
// scalar and a one-element collection read the same.
func (p *Params) List(name string) ([]string, error) {
	out := []string{}
	for _, v := range p.values[name] {
		for _, piece := range strings.Split(v, ",") {
			if piece == "" {
				continue
			}
			s, err := url.QueryUnescape(piece)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}
