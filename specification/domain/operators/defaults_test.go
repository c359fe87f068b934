package operators

import (
	"testing"
)

func eval(t *testing.T, op Operator, value, operand any) bool {
	t.Helper()
	entry, ok := Default().Entry(op)
	if !ok {
		t.Fatalf("operator %q not registered", op)
	}
	normalized, err := CheckOperand(entry.Kind, operand)
	if err != nil {
		t.Fatalf("operand rejected: %v", err)
	}
	result, err := entry.Evaluate(value, normalized)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	return result
}

func TestStandardComparisons(t *testing.T) {
	cases := []struct {
		op      Operator
		value   any
		operand any
		want    bool
	}{
		{OperatorEq, "active", "active", true},
		{OperatorEq, "active", "archived", false},
		{OperatorEq, 20, 20.0, true},
		{OperatorNe, 1, 2, true},
		{OperatorGt, 21, 18, true},
		{OperatorGt, 18, 18, false},
		{OperatorGte, 18, 18, true},
		{OperatorLt, 17.5, 18, true},
		{OperatorLte, "alice", "bob", true},
		{OperatorGt, "x", 5, false}, // incomparable types evaluate to false
	}
	for _, tc := range cases {
		if got := eval(t, tc.op, tc.value, tc.operand); got != tc.want {
			t.Errorf("%v %s %v = %v, want %v", tc.value, tc.op, tc.operand, got, tc.want)
		}
	}
}

func TestComparisonsOnMissingValue(t *testing.T) {
	for _, op := range []Operator{OperatorEq, OperatorNe, OperatorGt, OperatorLte, OperatorContains} {
		if eval(t, op, Missing, "anything") {
			t.Errorf("operator %q should be false on a missing attribute", op)
		}
	}
}

func TestMembership(t *testing.T) {
	if !eval(t, OperatorIn, "b", []any{"a", "b"}) {
		t.Error("expected b in [a b]")
	}
	if eval(t, OperatorIn, "c", []any{"a", "b"}) {
		t.Error("expected c not in [a b]")
	}
	if !eval(t, OperatorNotIn, "c", []any{"a", "b"}) {
		t.Error("expected not_in to hold for c")
	}
	// Scalar operand is normalized to a single-element list.
	if !eval(t, OperatorIn, "solo", "solo") {
		t.Error("expected scalar operand normalization for in")
	}
}

func TestAllSubset(t *testing.T) {
	if !eval(t, OperatorAll, []any{"go", "sql", "tests"}, []any{"go", "sql"}) {
		t.Error("expected [go sql] to be a subset of the value")
	}
	if eval(t, OperatorAll, []any{"go"}, []any{"go", "sql"}) {
		t.Error("expected missing element to fail all")
	}
	// Scalar value matches only an equal single-element operand.
	if !eval(t, OperatorAll, "tag", "tag") {
		t.Error("expected scalar-to-scalar all to hold")
	}
}

func TestStringOperators(t *testing.T) {
	cases := []struct {
		op      Operator
		value   string
		operand string
		want    bool
	}{
		{OperatorContains, "GoLang", "Lan", true},
		{OperatorContains, "GoLang", "lan", false},
		{OperatorIContains, "GoLang", "lan", true},
		{OperatorStartsWith, "predicate", "pre", true},
		{OperatorIStartsWith, "Predicate", "pre", true},
		{OperatorEndsWith, "query.sql", ".sql", true},
		{OperatorIEndsWith, "QUERY.SQL", ".sql", true},
		{OperatorLike, "hello world", "hello%", true},
		{OperatorLike, "hello world", "%wor%", true},
		{OperatorLike, "hello world", "world%", false},
		{OperatorILike, "Hello World", "hello%", true},
		{OperatorNotLike, "hello world", "bye%", true},
		{OperatorRegex, "user-42", `^user-\d+$`, true},
		{OperatorRegex, "User-42", `^user-\d+$`, false},
		{OperatorIRegex, "User-42", `^user-\d+$`, true},
	}
	for _, tc := range cases {
		if got := eval(t, tc.op, tc.value, tc.operand); got != tc.want {
			t.Errorf("%q %s %q = %v, want %v", tc.value, tc.op, tc.operand, got, tc.want)
		}
	}
}

func TestLikeEscapesRegexMetacharacters(t *testing.T) {
	if !eval(t, OperatorLike, "a.b", "a.b") {
		t.Error("expected literal dot to match itself")
	}
	if eval(t, OperatorLike, "axb", "a.b") {
		t.Error("expected dot to be literal, not any-character")
	}
}

func TestNullAndEmpty(t *testing.T) {
	if !eval(t, OperatorIsNull, Missing, nil) {
		t.Error("missing attribute should be null")
	}
	if !eval(t, OperatorIsNull, nil, nil) {
		t.Error("nil value should be null")
	}
	if eval(t, OperatorIsNull, "", nil) {
		t.Error("empty string is not null")
	}
	if !eval(t, OperatorIsNotNull, "", nil) {
		t.Error("empty string should be not-null")
	}
	if !eval(t, OperatorIsEmpty, "", nil) {
		t.Error("empty string should be empty")
	}
	if !eval(t, OperatorIsEmpty, []any{}, nil) {
		t.Error("empty slice should be empty")
	}
	if !eval(t, OperatorIsEmpty, Missing, nil) {
		t.Error("missing attribute should be empty")
	}
	if eval(t, OperatorIsEmpty, "x", nil) {
		t.Error("non-empty string should not be empty")
	}
	if !eval(t, OperatorIsNotEmpty, []any{1}, nil) {
		t.Error("non-empty slice should be not-empty")
	}
}

func TestBetweenIsInclusive(t *testing.T) {
	for _, v := range []any{18, 21, 65} {
		if !eval(t, OperatorBetween, v, []any{18, 65}) {
			t.Errorf("expected %v between [18, 65]", v)
		}
		if eval(t, OperatorNotBetween, v, []any{18, 65}) {
			t.Errorf("expected %v not satisfying not_between [18, 65]", v)
		}
	}
	for _, v := range []any{17, 66} {
		if eval(t, OperatorBetween, v, []any{18, 65}) {
			t.Errorf("expected %v outside [18, 65]", v)
		}
		if !eval(t, OperatorNotBetween, v, []any{18, 65}) {
			t.Errorf("expected %v satisfying not_between [18, 65]", v)
		}
	}
}

func TestJSONOperators(t *testing.T) {
	meta := map[string]any{"theme": "dark", "beta": nil}

	if !eval(t, OperatorJSONHasKey, meta, "theme") {
		t.Error("expected theme key to be present")
	}
	if eval(t, OperatorJSONHasKey, meta, "beta") {
		t.Error("null-valued key should not count for json_has_key")
	}
	if eval(t, OperatorJSONHasKey, meta, "missing") {
		t.Error("absent key should not count")
	}

	if !eval(t, OperatorJSONHasAny, meta, []any{"missing", "theme"}) {
		t.Error("expected any-match on keys")
	}
	if eval(t, OperatorJSONHasAll, meta, []any{"theme", "missing"}) {
		t.Error("expected all-match to fail on a missing key")
	}
	if !eval(t, OperatorJSONHasAll, meta, []any{"theme", "beta"}) {
		t.Error("expected all-match on present keys, null values included")
	}

	// Collection values test membership instead of keys; scalars normalize.
	tags := []any{"go", "db"}
	if !eval(t, OperatorJSONHasAny, tags, "go") {
		t.Error("expected scalar operand normalization against a collection")
	}

	if !eval(t, OperatorJSONContains, tags, []any{"go"}) {
		t.Error("expected list operand subset match")
	}
	if !eval(t, OperatorJSONContains, "dark", "dark") {
		t.Error("expected scalar operand equality match")
	}
	if eval(t, OperatorJSONContains, tags, []any{"go", "rust"}) {
		t.Error("expected missing element to fail json_contains")
	}

	if !eval(t, OperatorJSONPathExists, meta, nil) {
		t.Error("present mapping should satisfy json_path_exists")
	}
	if !eval(t, OperatorJSONPathExists, nil, nil) {
		t.Error("explicit null is still present for json_path_exists")
	}
	if eval(t, OperatorJSONPathExists, Missing, nil) {
		t.Error("missing attribute should fail json_path_exists")
	}
	if !eval(t, OperatorJSONPathExists, meta, "$.theme") {
		t.Error("expected nested path to exist")
	}
	if eval(t, OperatorJSONPathExists, meta, "$.nope") {
		t.Error("expected unknown nested path to fail")
	}
}

func TestDocumentEscaping(t *testing.T) {
	entry, _ := Default().Entry(OperatorContains)
	clause, err := entry.Document("name", "a.b")
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	inner := clause["name"].(map[string]any)
	if inner["$regex"] != `a\.b` {
		t.Errorf("expected escaped pattern, got %v", inner["$regex"])
	}

	entry, _ = Default().Entry(OperatorRegex)
	clause, err = entry.Document("name", "a.b")
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	inner = clause["name"].(map[string]any)
	if inner["$regex"] != "a.b" {
		t.Errorf("expected verbatim pattern for regex, got %v", inner["$regex"])
	}
}
