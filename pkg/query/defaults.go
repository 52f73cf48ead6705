package query

import (
	"math"
	"reflect"
)

const (
	defaultDepthLimit  = 2
	defaultKShortest   = 50
	defaultMaxPerNode  = 5
	defaultConstC      = 1
	defaultConstTk     = 10
	defaultUserTimeout = 30
)

// Defaults maps every field with a non-falsy fixed default to that default.
// Fields missing from this map default to their falsy value.
var Defaults = map[string]any{
	FieldDepthLimit:  defaultDepthLimit,
	FieldKShortest:   defaultKShortest,
	FieldMaxPerNode:  defaultMaxPerNode,
	FieldConstC:      defaultConstC,
	FieldConstTk:     defaultConstTk,
	FieldUserTimeout: defaultUserTimeout,
	FieldWeighted:    WeightedUnweighted,
}

// IsDefault reports whether value is the default for key. Keys with a fixed
// default compare by equality; every other key is default iff value is falsy.
// This predicate alone decides which fields a share link carries.
func IsDefault(key string, value any) bool {
	if def, ok := Defaults[key]; ok {
		return equalDefault(def, value)
	}
	return Falsy(value)
}

// Falsy reports whether v is an empty string, slice or map, a zero number,
// false, a nil pointer, or a pointer to a falsy value.
func Falsy(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return Falsy(rv.Elem().Interface())
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	}
	return false
}

func equalDefault(def, value any) bool {
	if p, ok := value.(*int); ok {
		if p == nil {
			return false
		}
		value = *p
	}
	return def == value
}
