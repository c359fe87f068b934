package specification

import (
	"github.com/pkg/errors"

	"github.com/krew-solutions/predicate-go/specification/domain/operators"
)

type groupKind int

const (
	groupAnd groupKind = iota
	groupOr
	groupNot
)

// group is one open frame on the builder stack: its kind plus the children
// accumulated so far.
type group struct {
	kind     groupKind
	children []Specification
}

// fold closes a group into a single node: empty groups are an error, a
// single child passes through unwrapped (negated for NOT groups), and
// multiple children wrap by kind.
func (g *group) fold() (Specification, error) {
	switch {
	case len(g.children) == 0:
		return nil, ErrNoConditions
	case len(g.children) == 1:
		if g.kind == groupNot {
			return NewNot(g.children[0]), nil
		}
		return g.children[0], nil
	}
	switch g.kind {
	case groupOr:
		return NewOr(g.children[0], g.children[1:]...), nil
	case groupNot:
		return NewNot(NewAnd(g.children[0], g.children[1:]...)), nil
	default:
		return NewAnd(g.children[0], g.children[1:]...), nil
	}
}

// Builder constructs nested predicate trees through a fluent API backed by
// an explicit stack of open groups; the root is an implicit AND. A Builder
// is single-writer: concurrent callers need their own instance. The first
// error sticks and is reported by Build.
type Builder struct {
	stack    []*group
	registry *operators.Registry
	err      error
}

func NewBuilder(opts ...Option) *Builder {
	cfg := newConfig(opts)
	return &Builder{
		stack:    []*group{{kind: groupAnd}},
		registry: cfg.registry,
	}
}

func (b *Builder) top() *group {
	return b.stack[len(b.stack)-1]
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Where appends a leaf condition to the group at the top of the stack.
func (b *Builder) Where(attr string, op operators.Operator, val any) *Builder {
	if b.err != nil {
		return b
	}
	node, err := Attr(attr, op, val, WithRegistry(b.registry))
	if err != nil {
		return b.fail(err)
	}
	b.top().children = append(b.top().children, node)
	return b
}

// Add appends a pre-built specification to the current group.
func (b *Builder) Add(spec Specification) *Builder {
	if b.err != nil {
		return b
	}
	b.top().children = append(b.top().children, spec)
	return b
}

// AndGroup opens a nested AND group.
func (b *Builder) AndGroup() *Builder { return b.push(groupAnd) }

// OrGroup opens a nested OR group.
func (b *Builder) OrGroup() *Builder { return b.push(groupOr) }

// NotGroup opens a nested negated group.
func (b *Builder) NotGroup() *Builder { return b.push(groupNot) }

func (b *Builder) push(kind groupKind) *Builder {
	if b.err != nil {
		return b
	}
	b.stack = append(b.stack, &group{kind: kind})
	return b
}

// EndGroup closes the innermost open group, folds it into a single node and
// appends that node to the enclosing group. Ending the implicit root is an
// error.
func (b *Builder) EndGroup() *Builder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 1 {
		return b.fail(ErrNoOpenGroup)
	}
	g := b.top()
	b.stack = b.stack[:len(b.stack)-1]
	node, err := g.fold()
	if err != nil {
		return b.fail(errors.Wrap(err, "cannot end group"))
	}
	b.top().children = append(b.top().children, node)
	return b
}

// Reset clears all builder state so the instance can be reused.
func (b *Builder) Reset() *Builder {
	b.stack = []*group{{kind: groupAnd}}
	b.err = nil
	return b
}

// Build finishes the tree: every opened group must be closed and the root
// must hold at least one condition. A single root child is returned
// unwrapped; multiple children wrap in AND.
func (b *Builder) Build() (Specification, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) > 1 {
		return nil, ErrGroupStillOpen
	}
	root := b.stack[0]
	if len(root.children) == 0 {
		return nil, ErrNoConditions
	}
	if len(root.children) == 1 {
		return root.children[0], nil
	}
	return NewAnd(root.children[0], root.children[1:]...), nil
}
