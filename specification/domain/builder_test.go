package specification

import (
	"errors"
	"reflect"
	"testing"

	"github.com/krew-solutions/predicate-go/specification/domain/operators"
)

func TestBuilderSingleConditionUnwrapped(t *testing.T) {
	spec, err := NewBuilder().
		Where("status", operators.OperatorEq, "active").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, ok := spec.(AttributeNode); !ok {
		t.Errorf("single condition must not be wrapped, got %T", spec)
	}
}

func TestBuilderRootWrapsInAnd(t *testing.T) {
	spec, err := NewBuilder().
		Where("status", operators.OperatorEq, "active").
		Where("age", operators.OperatorGte, 18).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	and, ok := spec.(AndNode)
	if !ok {
		t.Fatalf("expected AndNode root, got %T", spec)
	}
	if len(and.Children()) != 2 {
		t.Errorf("expected 2 children, got %d", len(and.Children()))
	}
}

func TestBuilderNestedGroups(t *testing.T) {
	spec, err := NewBuilder().
		Where("status", operators.OperatorEq, "active").
		OrGroup().
		Where("age", operators.OperatorLt, 18).
		Where("age", operators.OperatorGt, 65).
		EndGroup().
		NotGroup().
		Where("role", operators.OperatorEq, "banned").
		EndGroup().
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	and, ok := spec.(AndNode)
	if !ok {
		t.Fatalf("expected AndNode root, got %T", spec)
	}
	children := and.Children()
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	if _, ok := children[1].(OrNode); !ok {
		t.Errorf("expected OrNode, got %T", children[1])
	}
	not, ok := children[2].(NotNode)
	if !ok {
		t.Fatalf("expected NotNode, got %T", children[2])
	}
	if _, ok := not.Child().(AttributeNode); !ok {
		t.Errorf("single-child NOT group must negate the bare leaf, got %T", not.Child())
	}
}

func TestBuilderNotGroupWrapsMultipleInAnd(t *testing.T) {
	spec, err := NewBuilder().
		NotGroup().
		Where("a", operators.OperatorEq, 1).
		Where("b", operators.OperatorEq, 2).
		EndGroup().
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	not, ok := spec.(NotNode)
	if !ok {
		t.Fatalf("expected NotNode, got %T", spec)
	}
	if _, ok := not.Child().(AndNode); !ok {
		t.Errorf("multi-child NOT group must negate an AND, got %T", not.Child())
	}
}

func TestBuilderSingletonGroupUnwrapped(t *testing.T) {
	spec, err := NewBuilder().
		OrGroup().
		Where("a", operators.OperatorEq, 1).
		EndGroup().
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, ok := spec.(AttributeNode); !ok {
		t.Errorf("singleton group must fold to its child, got %T", spec)
	}
}

func TestBuilderAdd(t *testing.T) {
	pre := MustAttr("status", operators.OperatorEq, "active")
	spec, err := NewBuilder().Add(pre).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !reflect.DeepEqual(spec.ToMap(), pre.ToMap()) {
		t.Errorf("Add must pass the specification through unchanged")
	}
}

func TestBuilderErrors(t *testing.T) {
	if _, err := NewBuilder().Build(); !errors.Is(err, ErrNoConditions) {
		t.Errorf("empty build: got %v, want ErrNoConditions", err)
	}

	if _, err := NewBuilder().EndGroup().Build(); !errors.Is(err, ErrNoOpenGroup) {
		t.Errorf("end at root: got %v, want ErrNoOpenGroup", err)
	}

	_, err := NewBuilder().
		OrGroup().
		Where("a", operators.OperatorEq, 1).
		Build()
	if !errors.Is(err, ErrGroupStillOpen) {
		t.Errorf("unclosed group: got %v, want ErrGroupStillOpen", err)
	}

	_, err = NewBuilder().
		OrGroup().
		EndGroup().
		Build()
	if !errors.Is(err, ErrNoConditions) {
		t.Errorf("empty group: got %v, want wrapped ErrNoConditions", err)
	}
}

func TestBuilderFirstErrorSticks(t *testing.T) {
	b := NewBuilder().
		Where("status", "bogus", 1).
		Where("age", operators.OperatorGte, 18)
	_, err := b.Build()
	var opErr *OperatorNotFoundError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected the first error to stick, got %v", err)
	}
}

func TestBuilderReset(t *testing.T) {
	b := NewBuilder().Where("status", "bogus", 1)
	spec, err := b.Reset().
		Where("status", operators.OperatorEq, "active").
		Build()
	if err != nil {
		t.Fatalf("Build after Reset failed: %v", err)
	}
	if _, ok := spec.(AttributeNode); !ok {
		t.Errorf("unexpected root %T", spec)
	}
}

func TestBuilderCustomRegistry(t *testing.T) {
	reg := operators.NewRegistry()
	reg.Register("only_op", operators.Entry{Kind: operators.KindScalar})

	if _, err := NewBuilder(WithRegistry(reg)).
		Where("f", "only_op", 1).
		Build(); err != nil {
		t.Errorf("custom registry operator rejected: %v", err)
	}

	_, err := NewBuilder(WithRegistry(reg)).
		Where("f", operators.OperatorEq, 1).
		Build()
	var opErr *OperatorNotFoundError
	if !errors.As(err, &opErr) {
		t.Errorf("expected default operator to be unknown to the custom registry, got %v", err)
	}
}
