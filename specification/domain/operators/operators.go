package operators

import (
	"fmt"
	"reflect"
)

// Operator identifies a predicate comparison in the catalog. The catalog is
// closed: backends compile only what the registry knows about, and unknown
// identifiers surface as OperatorNotFoundError at construction time.
type Operator string

const (
	// Standard comparison

	OperatorEq    Operator = "="
	OperatorNe    Operator = "!="
	OperatorGt    Operator = ">"
	OperatorGte   Operator = ">="
	OperatorLt    Operator = "<"
	OperatorLte   Operator = "<="
	OperatorIn    Operator = "in"
	OperatorNotIn Operator = "not_in"

	// String

	OperatorContains    Operator = "contains"
	OperatorIContains   Operator = "icontains"
	OperatorStartsWith  Operator = "startswith"
	OperatorIStartsWith Operator = "istartswith"
	OperatorEndsWith    Operator = "endswith"
	OperatorIEndsWith   Operator = "iendswith"
	OperatorLike        Operator = "like"
	OperatorILike       Operator = "ilike"
	OperatorRegex       Operator = "regex"
	OperatorIRegex      Operator = "iregex"
	OperatorNotLike     Operator = "not_like"

	// Set

	OperatorAll Operator = "all"

	// Null / empty

	OperatorIsNull     Operator = "is_null"
	OperatorIsNotNull  Operator = "is_not_null"
	OperatorIsEmpty    Operator = "is_empty"
	OperatorIsNotEmpty Operator = "is_not_empty"

	// Range

	OperatorBetween    Operator = "between"
	OperatorNotBetween Operator = "not_between"

	// JSON

	OperatorJSONHasKey     Operator = "json_has_key"
	OperatorJSONHasAny     Operator = "json_has_any"
	OperatorJSONHasAll     Operator = "json_has_all"
	OperatorJSONContains   Operator = "json_contains"
	OperatorJSONPathExists Operator = "json_path_exists"
)

// OperandKind classifies what shape of operand an operator accepts. The
// check runs once, at leaf construction, never during evaluation.
type OperandKind int

const (
	// KindScalar accepts any single value; lists are rejected.
	KindScalar OperandKind = iota
	// KindList accepts a list; a single scalar is normalized to a
	// one-element list.
	KindList
	// KindRange accepts exactly a two-element [low, high] list.
	KindRange
	// KindNone ignores the operand entirely.
	KindNone
	// KindAny accepts both scalars and lists; the backend branches on the
	// shape at compile time.
	KindAny
)

// missing is the sentinel for an attribute path that did not resolve.
type missing struct{}

func (missing) String() string { return "<missing>" }

// Missing marks an absent attribute during in-memory evaluation. Null and
// empty checks treat it as absent; comparison operators evaluate to false.
var Missing any = missing{}

// IsMissing reports whether v is the absent-attribute sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missing)
	return ok
}

// CheckOperand validates and normalizes an operand against the operand kind.
// For KindList a scalar is wrapped into a single-element list so that set
// and json operators behave uniformly.
func CheckOperand(kind OperandKind, operand any) (any, error) {
	switch kind {
	case KindNone:
		return nil, nil
	case KindList:
		if list, ok := toList(operand); ok {
			return list, nil
		}
		return []any{operand}, nil
	case KindRange:
		list, ok := toList(operand)
		if !ok || len(list) != 2 {
			return nil, fmt.Errorf("requires a [low, high] operand, got %v", operand)
		}
		return list, nil
	case KindScalar:
		if _, ok := toList(operand); ok {
			return nil, fmt.Errorf("requires a scalar operand, got a list")
		}
		return operand, nil
	case KindAny:
		if list, ok := toList(operand); ok {
			return list, nil
		}
		return operand, nil
	}
	return nil, fmt.Errorf("unknown operand kind %d", kind)
}

// toList converts slice and array operands to []any. Strings and byte
// slices count as scalars.
func toList(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if list, ok := v.([]any); ok {
		return list, true
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
