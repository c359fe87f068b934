package specification

import (
	"strings"

	"github.com/pkg/errors"

	s "github.com/krew-solutions/predicate-go/specification/domain"
	"github.com/krew-solutions/predicate-go/specification/domain/operators"
)

// CompileDocument turns a specification tree into a nested match mapping
// for a document store. An operator without a document backend yields the
// absence marker — a nil mapping and no error — so the caller decides
// whether that is a no-op or a failure.
func CompileDocument(node s.Specification, opts ...DocumentVisitorOption) (map[string]any, error) {
	v := NewDocumentVisitor(opts...)
	if err := node.Accept(v); err != nil {
		return nil, err
	}
	return v.Result()
}

type DocumentVisitorOption func(*DocumentVisitor)

// DocumentOperators resolves backend functions from a custom registry.
func DocumentOperators(reg *operators.Registry) DocumentVisitorOption {
	return func(v *DocumentVisitor) { v.registry = reg }
}

// docClause is one compiled subtree; present is false for the absence
// marker.
type docClause struct {
	clause  map[string]any
	present bool
}

type DocumentVisitor struct {
	registry *operators.Registry
	stack    []docClause
}

func NewDocumentVisitor(opts ...DocumentVisitorOption) *DocumentVisitor {
	v := &DocumentVisitor{registry: operators.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *DocumentVisitor) push(c docClause) {
	v.stack = append(v.stack, c)
}

func (v *DocumentVisitor) pop() docClause {
	c := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return c
}

func (v *DocumentVisitor) VisitAttribute(n s.AttributeNode) error {
	entry, ok := v.registry.Entry(n.Operator())
	if !ok || entry.Document == nil {
		v.push(docClause{})
		return nil
	}
	clause, err := entry.Document(n.Path(), n.Operand())
	if err != nil {
		return errors.Wrapf(err, "operator %q on %q", n.Operator(), n.Path())
	}
	v.push(docClause{clause: clause, present: true})
	return nil
}

func (v *DocumentVisitor) VisitAnd(n s.AndNode) error {
	return v.visitComposite(n.Children(), "$and")
}

func (v *DocumentVisitor) VisitOr(n s.OrNode) error {
	return v.visitComposite(n.Children(), "$or")
}

// visitComposite combines child clauses under the boolean operator,
// dropping absent children; a composite of only absent children is itself
// absent.
func (v *DocumentVisitor) visitComposite(children []s.Specification, op string) error {
	clauses := make([]any, 0, len(children))
	for _, child := range children {
		if err := child.Accept(v); err != nil {
			return err
		}
		if c := v.pop(); c.present {
			clauses = append(clauses, c.clause)
		}
	}
	switch len(clauses) {
	case 0:
		v.push(docClause{})
	case 1:
		v.push(docClause{clause: clauses[0].(map[string]any), present: true})
	default:
		v.push(docClause{clause: map[string]any{op: clauses}, present: true})
	}
	return nil
}

func (v *DocumentVisitor) VisitNot(n s.NotNode) error {
	if err := n.Child().Accept(v); err != nil {
		return err
	}
	c := v.pop()
	if !c.present {
		v.push(docClause{})
		return nil
	}
	v.push(docClause{
		clause:  map[string]any{"$nor": []any{c.clause}},
		present: true,
	})
	return nil
}

func (v *DocumentVisitor) Result() (map[string]any, error) {
	if len(v.stack) != 1 {
		return nil, errors.Errorf("compilation left %d clauses on the stack", len(v.stack))
	}
	c := v.stack[0]
	if !c.present {
		return nil, nil
	}
	return c.clause, nil
}

// SortField is one compiled sort criterion: 1 ascending, -1 descending.
type SortField struct {
	Field     string
	Direction int
}

// SortFromTokens compiles ordering tokens ("field" ascending, "-field"
// descending) into sort tuples. Nil or empty input yields an empty list.
func SortFromTokens(tokens []string) []SortField {
	out := make([]SortField, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(tok, "-"); ok {
			out = append(out, SortField{Field: rest, Direction: -1})
			continue
		}
		out = append(out, SortField{Field: tok, Direction: 1})
	}
	return out
}

// SortFromPairs compiles ("field", "asc"|"desc") pairs into sort tuples.
func SortFromPairs(pairs [][2]string) []SortField {
	out := make([]SortField, 0, len(pairs))
	for _, p := range pairs {
		if p[0] == "" {
			continue
		}
		dir := 1
		if strings.EqualFold(p[1], "desc") {
			dir = -1
		}
		out = append(out, SortField{Field: p[0], Direction: dir})
	}
	return out
}
