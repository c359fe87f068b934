package specification

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jinzhu/inflection"
	"github.com/pkg/errors"

	s "github.com/krew-solutions/predicate-go/specification/domain"
	"github.com/krew-solutions/predicate-go/specification/domain/fuzzy"
	"github.com/krew-solutions/predicate-go/specification/domain/operators"
)

// CompileRelational turns a specification tree into a goqu boolean
// expression bound to the given model. The caller attaches the result to
// its dataset; nothing here executes SQL.
func CompileRelational(model *Model, node s.Specification, opts ...PostgresVisitorOption) (exp.Expression, error) {
	v := NewPostgresVisitor(model, opts...)
	if err := node.Accept(v); err != nil {
		return nil, err
	}
	return v.Result()
}

type PostgresVisitorOption func(*PostgresVisitor)

// PostgresOperators resolves backend functions from a custom registry.
func PostgresOperators(reg *operators.Registry) PostgresVisitorOption {
	return func(v *PostgresVisitor) { v.registry = reg }
}

// PostgresVisitor compiles the tree bottom-up onto an expression stack.
type PostgresVisitor struct {
	model    *Model
	registry *operators.Registry
	stack    []exp.Expression
	aliasSeq int
}

func NewPostgresVisitor(model *Model, opts ...PostgresVisitorOption) *PostgresVisitor {
	v := &PostgresVisitor{
		model:    model,
		registry: operators.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *PostgresVisitor) push(e exp.Expression) {
	v.stack = append(v.stack, e)
}

func (v *PostgresVisitor) pop() exp.Expression {
	e := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return e
}

func (v *PostgresVisitor) VisitAttribute(n s.AttributeNode) error {
	e, err := v.compileLeaf(v.model, v.model.Table(), n.Path(), n)
	if err != nil {
		return err
	}
	v.push(e)
	return nil
}

// compileLeaf resolves a dotted path against the model's relationship
// graph. A leading relationship segment becomes an EXISTS subquery over the
// related table; the final segment is a column comparison taken from the
// registry.
func (v *PostgresVisitor) compileLeaf(model *Model, qualifier, path string, n s.AttributeNode) (exp.Expression, error) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		return v.compileColumn(qualifier, path, n)
	}
	rel, ok := model.Relationship(head)
	if !ok {
		return nil, &s.RelationshipTraversalError{Path: n.Path(), Model: model.Table()}
	}
	alias := rel.Alias
	if alias == "" {
		alias = inflection.Singular(rel.Target.Table())
	}
	v.aliasSeq++
	alias = fmt.Sprintf("%s_%d", alias, v.aliasSeq)

	inner, err := v.compileLeaf(rel.Target, alias, rest, n)
	if err != nil {
		return nil, err
	}
	conds := make([]exp.Expression, 0, len(rel.ForeignKeys)+1)
	for _, fk := range rel.ForeignKeys {
		conds = append(conds, goqu.I(alias+"."+fk.ChildColumn).Eq(goqu.I(qualifier+"."+fk.ParentColumn)))
	}
	conds = append(conds, inner)
	sub := goqu.From(goqu.T(rel.Target.Table()).As(alias)).
		Select(goqu.L("1")).
		Where(goqu.And(conds...))
	return goqu.L("EXISTS ?", sub), nil
}

func (v *PostgresVisitor) compileColumn(qualifier, column string, n s.AttributeNode) (exp.Expression, error) {
	entry, ok := v.registry.Entry(n.Operator())
	if !ok {
		return nil, &s.OperatorNotFoundError{
			Operator:    string(n.Operator()),
			Suggestions: fuzzy.Suggest(string(n.Operator()), v.registry.Operators()),
		}
	}
	if entry.SQL == nil {
		return nil, errors.Errorf("operator %q has no relational backend", n.Operator())
	}
	e, err := entry.SQL(goqu.I(qualifier+"."+column), n.Operand())
	if err != nil {
		return nil, errors.Wrapf(err, "operator %q on %q", n.Operator(), n.Path())
	}
	return e, nil
}

func (v *PostgresVisitor) VisitAnd(n s.AndNode) error {
	children, err := v.visitChildren(n.Children())
	if err != nil {
		return err
	}
	v.push(goqu.And(children...))
	return nil
}

func (v *PostgresVisitor) VisitOr(n s.OrNode) error {
	children, err := v.visitChildren(n.Children())
	if err != nil {
		return err
	}
	v.push(goqu.Or(children...))
	return nil
}

func (v *PostgresVisitor) VisitNot(n s.NotNode) error {
	if err := n.Child().Accept(v); err != nil {
		return err
	}
	v.push(goqu.L("NOT ?", v.pop()))
	return nil
}

func (v *PostgresVisitor) visitChildren(children []s.Specification) ([]exp.Expression, error) {
	out := make([]exp.Expression, len(children))
	for i, child := range children {
		if err := child.Accept(v); err != nil {
			return nil, err
		}
		out[i] = v.pop()
	}
	return out, nil
}

func (v *PostgresVisitor) Result() (exp.Expression, error) {
	if len(v.stack) != 1 {
		return nil, errors.Errorf("compilation left %d expressions on the stack", len(v.stack))
	}
	return v.stack[0], nil
}
