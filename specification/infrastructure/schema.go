package specification

// RelationshipKind tells the compiler whether a related attribute lives in
// a single row or in many.
type RelationshipKind int

const (
	ToOne RelationshipKind = iota
	ToMany
)

// ForeignKeyPair is a single FK column mapping between the child and the
// parent table; composite keys use several pairs.
type ForeignKeyPair struct {
	ChildColumn  string
	ParentColumn string
}

// Relationship describes how a dotted path segment traverses to a related
// model.
type Relationship struct {
	Kind        RelationshipKind
	Target      *Model
	ForeignKeys []ForeignKeyPair

	// Alias overrides the subquery alias; the default is the singular of
	// the target table name.
	Alias string
}

// Model maps a specification target onto a table and its relationship
// graph. Plain path segments compile to columns; registered segments
// compile to EXISTS subqueries against the related model.
type Model struct {
	table         string
	relationships map[string]Relationship
}

func NewModel(table string) *Model {
	return &Model{
		table:         table,
		relationships: make(map[string]Relationship),
	}
}

func (m *Model) Table() string { return m.table }

// RegisterToMany wires a collection field to a child table with a simple
// FK. Chainable.
func (m *Model) RegisterToMany(field string, target *Model, childColumn, parentColumn string) *Model {
	return m.Register(field, Relationship{
		Kind:        ToMany,
		Target:      target,
		ForeignKeys: []ForeignKeyPair{{ChildColumn: childColumn, ParentColumn: parentColumn}},
	})
}

// RegisterToOne wires a single-row field to a related table with a simple
// FK. Chainable.
func (m *Model) RegisterToOne(field string, target *Model, childColumn, parentColumn string) *Model {
	return m.Register(field, Relationship{
		Kind:        ToOne,
		Target:      target,
		ForeignKeys: []ForeignKeyPair{{ChildColumn: childColumn, ParentColumn: parentColumn}},
	})
}

// Register wires a field with a full relationship configuration, composite
// keys included. Chainable.
func (m *Model) Register(field string, rel Relationship) *Model {
	m.relationships[field] = rel
	return m
}

// Relationship returns the registered traversal for a field name.
func (m *Model) Relationship(field string) (Relationship, bool) {
	rel, ok := m.relationships[field]
	return rel, ok
}
