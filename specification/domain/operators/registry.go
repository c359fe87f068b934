package operators

import (
	"sort"
	"sync"

	"github.com/doug-martin/goqu/v9/exp"
)

// EvaluateFunc is the in-memory backend of an operator: it receives the
// resolved attribute value (Missing when the path did not resolve) and the
// normalized operand, and returns the truth value.
type EvaluateFunc func(value, operand any) (bool, error)

// SQLFunc is the relational backend: it receives the column identifier and
// the normalized operand, and returns a boolean goqu expression.
type SQLFunc func(col exp.IdentifierExpression, operand any) (exp.Expression, error)

// DocumentFunc is the document-store backend: it receives the attribute path
// and the normalized operand, and returns the nested match clause.
type DocumentFunc func(field string, operand any) (map[string]any, error)

// Entry holds the operand class and the per-backend compile functions of a
// single operator. A nil backend function means the operator is not
// supported on that backend.
type Entry struct {
	Kind     OperandKind
	Evaluate EvaluateFunc
	SQL      SQLFunc
	Document DocumentFunc
}

// Registry maps operators to their per-backend compile functions. It is
// read-only after construction: build a custom registry up front, then share
// it freely across goroutines.
type Registry struct {
	entries map[Operator]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[Operator]Entry)}
}

// Register adds or overrides an operator. Chainable.
func (r *Registry) Register(op Operator, e Entry) *Registry {
	r.entries[op] = e
	return r
}

// Entry returns the registered entry for op.
func (r *Registry) Entry(op Operator) (Entry, bool) {
	e, ok := r.entries[op]
	return e, ok
}

// Has reports whether op is registered.
func (r *Registry) Has(op Operator) bool {
	_, ok := r.entries[op]
	return ok
}

// Operators returns the sorted list of registered operator identifiers,
// used for fuzzy suggestions in error messages.
func (r *Registry) Operators() []string {
	out := make([]string, 0, len(r.entries))
	for op := range r.entries {
		out = append(out, string(op))
	}
	sort.Strings(out)
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry carrying the full catalog. Callers
// must not register into it; use NewDefaultRegistry for a private copy.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewDefaultRegistry()
	})
	return defaultRegistry
}
