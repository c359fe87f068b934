package specification

import (
	"errors"
	"fmt"
	"strings"
)

// Builder state errors, matchable with errors.Is.
var (
	ErrNoOpenGroup    = errors.New("no open group to end")
	ErrGroupStillOpen = errors.New("group still open")
	ErrNoConditions   = errors.New("no conditions added")
)

// ValidationError reports a structural problem in serialized filter input.
// Path locates the offending node, e.g. "<root>.conditions[0]".
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// OperatorNotFoundError reports an operator missing from the registry,
// carrying a ranked shortlist of close catalog identifiers.
type OperatorNotFoundError struct {
	Operator    string
	Suggestions []string
}

func (e *OperatorNotFoundError) Error() string {
	msg := fmt.Sprintf("unknown operator %q", e.Operator)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(", did you mean %s?", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// FieldNotFoundError reports an attribute the target does not know about.
type FieldNotFoundError struct {
	Field       string
	Suggestions []string
}

func (e *FieldNotFoundError) Error() string {
	msg := fmt.Sprintf("unknown field %q", e.Field)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(", did you mean %s?", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// FieldNotQueryableError reports an attribute outside the allowed-fields
// whitelist.
type FieldNotQueryableError struct {
	Field       string
	Suggestions []string
}

func (e *FieldNotQueryableError) Error() string {
	msg := fmt.Sprintf("field %q is not queryable", e.Field)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(", did you mean %s?", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// RelationshipTraversalError reports a dotted attribute path whose head is
// not a relationship on the target model.
type RelationshipTraversalError struct {
	Path  string
	Model string
}

func (e *RelationshipTraversalError) Error() string {
	return fmt.Sprintf("cannot traverse %q: no such relationship on %q", e.Path, e.Model)
}
