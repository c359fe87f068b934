package operators

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonLiteral serializes an operand for JSONB containment comparisons.
func jsonLiteral(operand any) (string, error) {
	b, err := json.Marshal(operand)
	if err != nil {
		return "", fmt.Errorf("operand is not JSON-serializable: %w", err)
	}
	return string(b), nil
}

// escapeLike escapes LIKE metacharacters in a raw operand so contains and
// prefix/suffix operators match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func operandString(operand any) (string, error) {
	s, ok := operand.(string)
	if !ok {
		return "", fmt.Errorf("requires a string operand, got %T", operand)
	}
	return s, nil
}

func rangeOperand(operand any) (any, any, error) {
	bounds, ok := operand.([]any)
	if !ok || len(bounds) != 2 {
		return nil, nil, fmt.Errorf("requires a [low, high] operand, got %v", operand)
	}
	return bounds[0], bounds[1], nil
}

// lowered wraps an expression in LOWER() for case-insensitive comparisons.
func lowered(e any) exp.SQLFunctionExpression {
	return goqu.Func("LOWER", e)
}

func sqlEq(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	return col.Eq(operand), nil
}

func sqlNe(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	return col.Neq(operand), nil
}

func sqlGt(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	return col.Gt(operand), nil
}

func sqlGte(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	return col.Gte(operand), nil
}

func sqlLt(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	return col.Lt(operand), nil
}

func sqlLte(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	return col.Lte(operand), nil
}

func sqlIn(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	list, _ := operand.([]any)
	return col.In(list...), nil
}

func sqlNotIn(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	list, _ := operand.([]any)
	return col.NotIn(list...), nil
}

func sqlContains(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return col.Like("%" + escapeLike(s) + "%"), nil
}

func sqlIContains(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return lowered(col).Like(lowered(goqu.V("%" + escapeLike(s) + "%"))), nil
}

func sqlStartsWith(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return col.Like(escapeLike(s) + "%"), nil
}

func sqlIStartsWith(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return lowered(col).Like(lowered(goqu.V(escapeLike(s) + "%"))), nil
}

func sqlEndsWith(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return col.Like("%" + escapeLike(s)), nil
}

func sqlIEndsWith(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return lowered(col).Like(lowered(goqu.V("%" + escapeLike(s)))), nil
}

func sqlLike(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return col.Like(s), nil
}

func sqlILike(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return lowered(col).Like(lowered(goqu.V(s))), nil
}

func sqlNotLike(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return col.NotLike(s), nil
}

func sqlRegex(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return col.RegexpLike(s), nil
}

func sqlIRegex(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return col.RegexpILike(s), nil
}

// sqlAll emits JSONB containment: the column must contain every operand
// element.
func sqlAll(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	lit, err := jsonLiteral(operand)
	if err != nil {
		return nil, err
	}
	return goqu.L("? @> ?", col, lit), nil
}

func sqlIsNull(col exp.IdentifierExpression, _ any) (exp.Expression, error) {
	return col.IsNull(), nil
}

func sqlIsNotNull(col exp.IdentifierExpression, _ any) (exp.Expression, error) {
	return col.IsNotNull(), nil
}

func sqlIsEmpty(col exp.IdentifierExpression, _ any) (exp.Expression, error) {
	return goqu.Or(col.IsNull(), col.Eq("")), nil
}

func sqlIsNotEmpty(col exp.IdentifierExpression, _ any) (exp.Expression, error) {
	return goqu.And(col.IsNotNull(), col.Neq("")), nil
}

func sqlBetween(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	lo, hi, err := rangeOperand(operand)
	if err != nil {
		return nil, err
	}
	return col.Between(goqu.Range(lo, hi)), nil
}

func sqlNotBetween(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	lo, hi, err := rangeOperand(operand)
	if err != nil {
		return nil, err
	}
	return col.NotBetween(goqu.Range(lo, hi)), nil
}

func sqlJSONHasKey(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	s, err := operandString(operand)
	if err != nil {
		return nil, err
	}
	return goqu.L("jsonb_exists(?, ?)", col, s), nil
}

// textArray renders a list operand as an ARRAY[...] literal with one
// placeholder per element.
func textArray(fn string, col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	list, _ := operand.([]any)
	if len(list) == 0 {
		return nil, fmt.Errorf("%s requires a non-empty list operand", fn)
	}
	marks := make([]string, len(list))
	for i := range marks {
		marks[i] = "?"
	}
	args := append([]any{col}, list...)
	return goqu.L(fn+"(?, ARRAY["+strings.Join(marks, ", ")+"])", args...), nil
}

func sqlJSONHasAny(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	return textArray("jsonb_exists_any", col, operand)
}

func sqlJSONHasAll(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	return textArray("jsonb_exists_all", col, operand)
}

func sqlJSONContains(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	lit, err := jsonLiteral(operand)
	if err != nil {
		return nil, err
	}
	return goqu.L("? @> ?", col, lit), nil
}

func sqlJSONPathExists(col exp.IdentifierExpression, operand any) (exp.Expression, error) {
	if path, ok := operand.(string); ok && path != "" {
		return goqu.L("jsonb_path_exists(?, ?::jsonpath)", col, path), nil
	}
	return col.IsNotNull(), nil
}
