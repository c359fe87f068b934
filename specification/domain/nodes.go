// Package specification implements a storage-agnostic predicate tree: an
// attribute-leaf AST with AND/OR/NOT composition, an operator registry of
// per-backend compile functions, an in-memory evaluator, a fluent builder
// and a dict/JSON factory. Compilers for relational and document stores live
// in the sibling infrastructure package.
package specification

import (
	"fmt"

	"github.com/krew-solutions/predicate-go/specification/domain/fuzzy"
	"github.com/krew-solutions/predicate-go/specification/domain/operators"
)

// Visitor walks a Specification tree. Compilers implement it per backend.
type Visitor interface {
	VisitAttribute(AttributeNode) error
	VisitAnd(AndNode) error
	VisitOr(OrNode) error
	VisitNot(NotNode) error
}

// Specification is a predicate tree node. Nodes are immutable once built;
// every composition operator returns a new node.
type Specification interface {
	Accept(Visitor) error
	ToMap() map[string]any
	And(Specification) Specification
	Or(Specification) Specification
	Not() Specification
	// Merge is And under a fluent name, kept distinct for chained calls.
	Merge(Specification) Specification
}

// Option configures leaf construction and the factory.
type Option func(*config)

type config struct {
	registry      *operators.Registry
	allowedFields []string
	valueType     string
}

func newConfig(opts []Option) config {
	cfg := config{registry: operators.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithRegistry supplies a custom operator registry. Leaves validate their
// operator against it, and compilers resolve backend functions from it.
func WithRegistry(reg *operators.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithAllowedFields whitelists the attribute paths the factory accepts.
func WithAllowedFields(fields ...string) Option {
	return func(c *config) { c.allowedFields = fields }
}

// WithValueType tags a leaf with the value_type used to coerce its raw
// operand at factory time.
func WithValueType(t string) Option {
	return func(c *config) { c.valueType = t }
}

// AttributeNode is a predicate leaf: a dotted attribute path compared to an
// operand. The operand is validated and normalized against the operator's
// operand class at construction.
type AttributeNode struct {
	path      string
	operator  operators.Operator
	operand   any
	valueType string
}

// Attr builds a leaf, validating the operator against the registry and the
// operand against the operator's arity class.
func Attr(path string, op operators.Operator, operand any, opts ...Option) (AttributeNode, error) {
	cfg := newConfig(opts)
	entry, ok := cfg.registry.Entry(op)
	if !ok {
		return AttributeNode{}, &OperatorNotFoundError{
			Operator:    string(op),
			Suggestions: fuzzy.Suggest(string(op), cfg.registry.Operators()),
		}
	}
	normalized, err := operators.CheckOperand(entry.Kind, operand)
	if err != nil {
		return AttributeNode{}, &ValidationError{
			Message: fmt.Sprintf("operator %q %v", op, err),
		}
	}
	return AttributeNode{
		path:      path,
		operator:  op,
		operand:   normalized,
		valueType: cfg.valueType,
	}, nil
}

// MustAttr is Attr for statically known inputs; it panics on invalid ones.
func MustAttr(path string, op operators.Operator, operand any, opts ...Option) AttributeNode {
	n, err := Attr(path, op, operand, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

func (n AttributeNode) Path() string                 { return n.path }
func (n AttributeNode) Operator() operators.Operator { return n.operator }
func (n AttributeNode) Operand() any                 { return n.operand }
func (n AttributeNode) ValueType() string            { return n.valueType }

func (n AttributeNode) Accept(v Visitor) error { return v.VisitAttribute(n) }

func (n AttributeNode) ToMap() map[string]any {
	m := map[string]any{
		"op":   string(n.operator),
		"attr": n.path,
		"val":  n.operand,
	}
	if n.valueType != "" {
		m["value_type"] = n.valueType
	}
	return m
}

func (n AttributeNode) And(other Specification) Specification   { return NewAnd(n, other) }
func (n AttributeNode) Or(other Specification) Specification    { return NewOr(n, other) }
func (n AttributeNode) Not() Specification                      { return NewNot(n) }
func (n AttributeNode) Merge(other Specification) Specification { return n.And(other) }

// AndNode is the conjunction of an ordered, non-empty child sequence.
type AndNode struct {
	children []Specification
}

func NewAnd(first Specification, rest ...Specification) AndNode {
	return AndNode{children: append([]Specification{first}, rest...)}
}

func (n AndNode) Children() []Specification {
	out := make([]Specification, len(n.children))
	copy(out, n.children)
	return out
}

func (n AndNode) Accept(v Visitor) error { return v.VisitAnd(n) }

func (n AndNode) ToMap() map[string]any {
	return map[string]any{"op": "and", "conditions": childMaps(n.children)}
}

func (n AndNode) And(other Specification) Specification   { return NewAnd(n, other) }
func (n AndNode) Or(other Specification) Specification    { return NewOr(n, other) }
func (n AndNode) Not() Specification                      { return NewNot(n) }
func (n AndNode) Merge(other Specification) Specification { return n.And(other) }

// OrNode is the disjunction of an ordered, non-empty child sequence.
type OrNode struct {
	children []Specification
}

func NewOr(first Specification, rest ...Specification) OrNode {
	return OrNode{children: append([]Specification{first}, rest...)}
}

func (n OrNode) Children() []Specification {
	out := make([]Specification, len(n.children))
	copy(out, n.children)
	return out
}

func (n OrNode) Accept(v Visitor) error { return v.VisitOr(n) }

func (n OrNode) ToMap() map[string]any {
	return map[string]any{"op": "or", "conditions": childMaps(n.children)}
}

func (n OrNode) And(other Specification) Specification   { return NewAnd(n, other) }
func (n OrNode) Or(other Specification) Specification    { return NewOr(n, other) }
func (n OrNode) Not() Specification                      { return NewNot(n) }
func (n OrNode) Merge(other Specification) Specification { return n.And(other) }

// NotNode negates exactly one child.
type NotNode struct {
	child Specification
}

func NewNot(child Specification) NotNode {
	return NotNode{child: child}
}

func (n NotNode) Child() Specification { return n.child }

func (n NotNode) Accept(v Visitor) error { return v.VisitNot(n) }

func (n NotNode) ToMap() map[string]any {
	return map[string]any{"op": "not", "conditions": []any{n.child.ToMap()}}
}

func (n NotNode) And(other Specification) Specification   { return NewAnd(n, other) }
func (n NotNode) Or(other Specification) Specification    { return NewOr(n, other) }
func (n NotNode) Not() Specification                      { return NewNot(n) }
func (n NotNode) Merge(other Specification) Specification { return n.And(other) }

func childMaps(children []Specification) []any {
	out := make([]any, len(children))
	for i, c := range children {
		out[i] = c.ToMap()
	}
	return out
}
