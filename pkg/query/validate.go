package query

import "errors"

// Blocking reasons returned by SubmitBlocker.
var (
	ErrNoEndpoints      = errors.New("source or target is required")
	ErrBlankSource      = errors.New("source is only whitespace")
	ErrBlankTarget      = errors.New("target is only whitespace")
	ErrUnresolvedSource = errors.New("source does not resolve to a node in the graph")
	ErrUnresolvedTarget = errors.New("target does not resolve to a node in the graph")
)

// FieldError is a rule failure attached to one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// Report is the exhaustive outcome of running every rule.
type Report struct {
	Failures []FieldError `json:"failures,omitempty"`
}

// OK reports whether no rule failed.
func (r Report) OK() bool { return len(r.Failures) == 0 }

// ByField returns the failure message per field.
func (r Report) ByField() map[string]string {
	out := make(map[string]string, len(r.Failures))
	for _, f := range r.Failures {
		out[f.Field] = f.Message
	}
	return out
}

// Valid runs the rules in order and stops at the first failure.
func Valid(q *NetworkSearchQuery) bool {
	for _, r := range Rules {
		if r.Check(q) != nil {
			return false
		}
	}
	return true
}

// Validate runs every rule and collects all failures.
func Validate(q *NetworkSearchQuery) Report {
	var rep Report
	for _, r := range Rules {
		if err := r.Check(q); err != nil {
			rep.Failures = append(rep.Failures, FieldError{Field: r.Field, Message: err.Error()})
		}
	}
	return rep
}

// Resolution records whether each endpoint text was confirmed as a node in
// the search graph by the external lookup.
type Resolution struct {
	Source bool
	Target bool
}

// SubmitBlocker returns the first cross-field reason the query cannot be
// submitted, or nil.
func SubmitBlocker(q *NetworkSearchQuery, res Resolution) error {
	switch {
	case q.Source == "" && q.Target == "":
		return ErrNoEndpoints
	case isBlank(q.Source):
		return ErrBlankSource
	case isBlank(q.Target):
		return ErrBlankTarget
	case q.Source != "" && !res.Source:
		return ErrUnresolvedSource
	case q.Target != "" && !res.Target:
		return ErrUnresolvedTarget
	}
	return nil
}

// CannotSubmit reports whether a cross-field condition blocks submission.
func CannotSubmit(q *NetworkSearchQuery, res Resolution) bool {
	return SubmitBlocker(q, res) != nil
}

// Submittable reports whether q may be submitted now.
func Submittable(q *NetworkSearchQuery, res Resolution) bool {
	return !CannotSubmit(q, res) && Valid(q)
}
