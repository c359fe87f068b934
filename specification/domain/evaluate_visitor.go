package specification

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/predicate-go/specification/domain/operators"
)

// ErrKeyNotFound is returned by Context implementations for unknown keys.
var ErrKeyNotFound = errors.New("key not found")

// Context resolves one attribute segment against a candidate object.
// Candidates that are not maps or structs can implement it directly.
type Context interface {
	Get(string) (any, error)
}

// EvaluateVisitor is the in-memory truth backend: it walks the tree and
// resolves attribute paths against a candidate.
type EvaluateVisitor struct {
	candidate any
	registry  *operators.Registry
	result    bool
}

func NewEvaluateVisitor(candidate any, registry *operators.Registry) *EvaluateVisitor {
	return &EvaluateVisitor{candidate: candidate, registry: registry}
}

func (v *EvaluateVisitor) VisitAttribute(n AttributeNode) error {
	entry, ok := v.registry.Entry(n.Operator())
	if !ok {
		return &OperatorNotFoundError{Operator: string(n.Operator())}
	}
	if entry.Evaluate == nil {
		return errors.Errorf("operator %q has no in-memory backend", n.Operator())
	}
	value := ResolvePath(v.candidate, n.Path())
	result, err := entry.Evaluate(value, n.Operand())
	if err != nil {
		return err
	}
	v.result = result
	return nil
}

func (v *EvaluateVisitor) VisitAnd(n AndNode) error {
	for _, child := range n.Children() {
		if err := child.Accept(v); err != nil {
			return err
		}
		if !v.result {
			return nil
		}
	}
	v.result = true
	return nil
}

func (v *EvaluateVisitor) VisitOr(n OrNode) error {
	for _, child := range n.Children() {
		if err := child.Accept(v); err != nil {
			return err
		}
		if v.result {
			return nil
		}
	}
	v.result = false
	return nil
}

func (v *EvaluateVisitor) VisitNot(n NotNode) error {
	if err := n.Child().Accept(v); err != nil {
		return err
	}
	v.result = !v.result
	return nil
}

func (v *EvaluateVisitor) Result() bool { return v.result }

// Evaluate reports whether the candidate satisfies the specification using
// the default registry.
func Evaluate(spec Specification, candidate any) (bool, error) {
	return EvaluateWith(spec, candidate, operators.Default())
}

// EvaluateWith reports whether the candidate satisfies the specification
// resolving operators from the given registry.
func EvaluateWith(spec Specification, candidate any, registry *operators.Registry) (bool, error) {
	v := NewEvaluateVisitor(candidate, registry)
	if err := spec.Accept(v); err != nil {
		return false, err
	}
	return v.Result(), nil
}

// ResolvePath follows a dotted attribute path through maps, structs and
// Context implementations. A path that does not resolve yields
// operators.Missing rather than an error.
func ResolvePath(candidate any, path string) any {
	cur := candidate
	for _, seg := range strings.Split(path, ".") {
		cur = resolveSegment(cur, seg)
		if operators.IsMissing(cur) {
			return operators.Missing
		}
	}
	return cur
}

func resolveSegment(v any, name string) any {
	switch c := v.(type) {
	case nil:
		return operators.Missing
	case Context:
		val, err := c.Get(name)
		if err != nil {
			return operators.Missing
		}
		return val
	case map[string]any:
		val, ok := c[name]
		if !ok {
			return operators.Missing
		}
		return val
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return operators.Missing
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return operators.Missing
		}
		mv := rv.MapIndex(reflect.ValueOf(name))
		if !mv.IsValid() {
			return operators.Missing
		}
		return mv.Interface()
	case reflect.Struct:
		return resolveStructField(rv, name)
	}
	return operators.Missing
}

// resolveStructField matches an exported field by exact name, json tag, or
// case-insensitive name, in that order.
func resolveStructField(rv reflect.Value, name string) any {
	t := rv.Type()
	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		return rv.FieldByIndex(f.Index).Interface()
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == name {
			return rv.Field(i).Interface()
		}
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, name) {
			return rv.Field(i).Interface()
		}
	}
	return operators.Missing
}
