package specification

import (
	"fmt"
)

// QueryOptions is the immutable per-request query metadata handed to a
// store collaborator alongside a compiled predicate: pagination, ordering,
// distinct, grouping and field selection. Construct once, combine with
// Merge; never mutated in place.
type QueryOptions struct {
	spec         Specification
	limit        *int
	offset       *int
	orderBy      []string
	distinct     bool
	groupBy      []string
	selectFields []string
}

type QueryOption func(*QueryOptions)

func NewQueryOptions(opts ...QueryOption) QueryOptions {
	var q QueryOptions
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// WithFilter sets the root specification.
func WithFilter(spec Specification) QueryOption {
	return func(q *QueryOptions) { q.spec = spec }
}

func WithLimit(n int) QueryOption {
	return func(q *QueryOptions) { q.limit = &n }
}

func WithOffset(n int) QueryOption {
	return func(q *QueryOptions) { q.offset = &n }
}

// WithOrderBy sets ordering tokens: "field" ascending, "-field" descending.
func WithOrderBy(tokens ...string) QueryOption {
	return func(q *QueryOptions) { q.orderBy = tokens }
}

func WithDistinct() QueryOption {
	return func(q *QueryOptions) { q.distinct = true }
}

func WithGroupBy(fields ...string) QueryOption {
	return func(q *QueryOptions) { q.groupBy = fields }
}

func WithSelectFields(fields ...string) QueryOption {
	return func(q *QueryOptions) { q.selectFields = fields }
}

// Filter returns the root specification, nil when unset.
func (q QueryOptions) Filter() Specification { return q.spec }

func (q QueryOptions) Limit() (int, bool) {
	if q.limit == nil {
		return 0, false
	}
	return *q.limit, true
}

func (q QueryOptions) Offset() (int, bool) {
	if q.offset == nil {
		return 0, false
	}
	return *q.offset, true
}

func (q QueryOptions) OrderBy() []string      { return copyStrings(q.orderBy) }
func (q QueryOptions) Distinct() bool         { return q.distinct }
func (q QueryOptions) GroupBy() []string      { return copyStrings(q.groupBy) }
func (q QueryOptions) SelectFields() []string { return copyStrings(q.selectFields) }

// Merge combines two option sets into a new value. Specifications combine
// with AND; limit, offset and distinct are taken from the right operand
// when set there; list fields are replaced when the right operand sets
// them.
func (q QueryOptions) Merge(other QueryOptions) QueryOptions {
	merged := q
	switch {
	case q.spec != nil && other.spec != nil:
		merged.spec = q.spec.And(other.spec)
	case other.spec != nil:
		merged.spec = other.spec
	}
	if other.limit != nil {
		merged.limit = other.limit
	}
	if other.offset != nil {
		merged.offset = other.offset
	}
	if len(other.orderBy) > 0 {
		merged.orderBy = other.orderBy
	}
	if other.distinct {
		merged.distinct = true
	}
	if len(other.groupBy) > 0 {
		merged.groupBy = other.groupBy
	}
	if len(other.selectFields) > 0 {
		merged.selectFields = other.selectFields
	}
	return merged
}

// ToMap serializes to the wire shape, emitting only the fields that are
// set.
func (q QueryOptions) ToMap() map[string]any {
	m := make(map[string]any)
	if q.spec != nil {
		m["filter"] = q.spec.ToMap()
	}
	if q.limit != nil {
		m["limit"] = *q.limit
	}
	if q.offset != nil {
		m["offset"] = *q.offset
	}
	if len(q.orderBy) > 0 {
		m["order_by"] = toAnyList(q.orderBy)
	}
	if q.distinct {
		m["distinct"] = true
	}
	if len(q.groupBy) > 0 {
		m["group_by"] = toAnyList(q.groupBy)
	}
	if len(q.selectFields) > 0 {
		m["select_fields"] = toAnyList(q.selectFields)
	}
	return m
}

// QueryOptionsFromMap parses the wire shape produced by ToMap.
func QueryOptionsFromMap(data map[string]any, opts ...Option) (QueryOptions, error) {
	var q QueryOptions
	if raw, ok := data["filter"]; ok {
		m, ok := raw.(map[string]any)
		if !ok {
			return QueryOptions{}, &ValidationError{Message: fmt.Sprintf(`key "filter" must be an object, got %T`, raw)}
		}
		spec, err := FromMap(m, opts...)
		if err != nil {
			return QueryOptions{}, err
		}
		q.spec = spec
	}
	if raw, ok := data["limit"]; ok {
		n, err := intValue("limit", raw)
		if err != nil {
			return QueryOptions{}, err
		}
		q.limit = &n
	}
	if raw, ok := data["offset"]; ok {
		n, err := intValue("offset", raw)
		if err != nil {
			return QueryOptions{}, err
		}
		q.offset = &n
	}
	var err error
	if q.orderBy, err = stringList("order_by", data); err != nil {
		return QueryOptions{}, err
	}
	if q.groupBy, err = stringList("group_by", data); err != nil {
		return QueryOptions{}, err
	}
	if q.selectFields, err = stringList("select_fields", data); err != nil {
		return QueryOptions{}, err
	}
	if raw, ok := data["distinct"]; ok {
		b, ok := raw.(bool)
		if !ok {
			return QueryOptions{}, &ValidationError{Message: fmt.Sprintf(`key "distinct" must be a bool, got %T`, raw)}
		}
		q.distinct = b
	}
	return q, nil
}

func intValue(key string, raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	}
	return 0, &ValidationError{Message: fmt.Sprintf("key %q must be a number, got %T", key, raw)}
}

func stringList(key string, data map[string]any) ([]string, error) {
	raw, ok := data[key]
	if !ok {
		return nil, nil
	}
	items, ok := asAnyList(raw)
	if !ok {
		if list, ok := raw.([]string); ok {
			return list, nil
		}
		return nil, &ValidationError{Message: fmt.Sprintf("key %q must be a list, got %T", key, raw)}
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &ValidationError{Message: fmt.Sprintf("key %q must hold strings, got %T", key, item)}
		}
		out[i] = s
	}
	return out, nil
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func toAnyList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
