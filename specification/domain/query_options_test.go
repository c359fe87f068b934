package specification

import (
	"reflect"
	"testing"

	"github.com/krew-solutions/predicate-go/specification/domain/operators"
)

func TestQueryOptionsAccessors(t *testing.T) {
	q := NewQueryOptions()
	if _, ok := q.Limit(); ok {
		t.Error("zero options must report limit as unset")
	}
	if q.Filter() != nil {
		t.Error("zero options must have no filter")
	}

	q = NewQueryOptions(
		WithLimit(0),
		WithOffset(20),
		WithOrderBy("-created_at", "name"),
		WithDistinct(),
	)
	if n, ok := q.Limit(); !ok || n != 0 {
		t.Errorf("an explicit zero limit is still set: %v %v", n, ok)
	}
	if n, _ := q.Offset(); n != 20 {
		t.Errorf("Offset = %d, want 20", n)
	}
	if !q.Distinct() {
		t.Error("expected distinct")
	}

	order := q.OrderBy()
	order[0] = "mutated"
	if q.OrderBy()[0] != "-created_at" {
		t.Error("OrderBy must return a copy")
	}
}

func TestQueryOptionsMerge(t *testing.T) {
	active := MustAttr("status", operators.OperatorEq, "active")
	adult := MustAttr("age", operators.OperatorGte, 18)

	left := NewQueryOptions(WithFilter(active), WithLimit(10), WithOrderBy("name"))
	right := NewQueryOptions(WithFilter(adult), WithLimit(25), WithDistinct())

	merged := left.Merge(right)

	if _, ok := merged.Filter().(AndNode); !ok {
		t.Errorf("merged filters must combine with AND, got %T", merged.Filter())
	}
	if n, _ := merged.Limit(); n != 25 {
		t.Errorf("right operand limit must win, got %d", n)
	}
	if !reflect.DeepEqual(merged.OrderBy(), []string{"name"}) {
		t.Errorf("unset right ordering must keep the left one, got %v", merged.OrderBy())
	}
	if !merged.Distinct() {
		t.Error("distinct must survive a merge")
	}

	// Merge never mutates its operands.
	if _, ok := left.Filter().(AttributeNode); !ok {
		t.Errorf("left operand mutated: %T", left.Filter())
	}
	if n, _ := left.Limit(); n != 10 {
		t.Errorf("left operand mutated: limit %d", n)
	}
}

func TestQueryOptionsMergeOneSidedFilter(t *testing.T) {
	adult := MustAttr("age", operators.OperatorGte, 18)
	merged := NewQueryOptions().Merge(NewQueryOptions(WithFilter(adult)))
	if _, ok := merged.Filter().(AttributeNode); !ok {
		t.Errorf("single filter must pass through unwrapped, got %T", merged.Filter())
	}
}

func TestQueryOptionsMapRoundTrip(t *testing.T) {
	q := NewQueryOptions(
		WithFilter(MustAttr("status", operators.OperatorEq, "active")),
		WithLimit(50),
		WithOffset(100),
		WithOrderBy("-created_at"),
		WithDistinct(),
		WithGroupBy("tenant"),
		WithSelectFields("id", "name"),
	)

	rebuilt, err := QueryOptionsFromMap(q.ToMap())
	if err != nil {
		t.Fatalf("QueryOptionsFromMap failed: %v", err)
	}
	if !reflect.DeepEqual(rebuilt.ToMap(), q.ToMap()) {
		t.Errorf("round trip changed the options:\n got %v\nwant %v", rebuilt.ToMap(), q.ToMap())
	}
}

func TestQueryOptionsToMapOmitsUnset(t *testing.T) {
	m := NewQueryOptions(WithLimit(5)).ToMap()
	if !reflect.DeepEqual(m, map[string]any{"limit": 5}) {
		t.Errorf("only set fields belong on the wire, got %v", m)
	}
}

func TestQueryOptionsFromMapErrors(t *testing.T) {
	cases := []map[string]any{
		{"filter": "not an object"},
		{"limit": "ten"},
		{"order_by": "name"},
		{"order_by": []any{1}},
		{"distinct": "yes"},
		{"filter": map[string]any{"op": "zzz", "attr": "a", "val": 1}},
	}
	for _, data := range cases {
		if _, err := QueryOptionsFromMap(data); err == nil {
			t.Errorf("expected error for %v", data)
		}
	}
}
