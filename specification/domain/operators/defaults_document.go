package operators

import (
	"regexp"
	"strings"
)

type regexShape int

const (
	regexBare regexShape = iota
	regexPrefix
	regexSuffix
)

func regexOptions(insensitive bool) string {
	if insensitive {
		return "i"
	}
	return ""
}

// docOp emits the plain {attr: {"$op": val}} shape.
func docOp(op string) DocumentFunc {
	return func(field string, operand any) (map[string]any, error) {
		return map[string]any{field: map[string]any{op: operand}}, nil
	}
}

// docList emits {attr: {"$op": [..]}} for the already-normalized list
// operand.
func docList(op string) DocumentFunc {
	return func(field string, operand any) (map[string]any, error) {
		list, _ := operand.([]any)
		return map[string]any{field: map[string]any{op: list}}, nil
	}
}

// docRegex emits an escaped $regex clause anchored per the operator shape.
func docRegex(shape regexShape, insensitive bool) DocumentFunc {
	return func(field string, operand any) (map[string]any, error) {
		s, err := operandString(operand)
		if err != nil {
			return nil, err
		}
		pattern := regexp.QuoteMeta(s)
		switch shape {
		case regexPrefix:
			pattern = "^" + pattern
		case regexSuffix:
			pattern = pattern + "$"
		}
		return map[string]any{field: map[string]any{
			"$regex":   pattern,
			"$options": regexOptions(insensitive),
		}}, nil
	}
}

// docRawRegex passes the operand through verbatim for the true regex
// operators.
func docRawRegex(insensitive bool) DocumentFunc {
	return func(field string, operand any) (map[string]any, error) {
		s, err := operandString(operand)
		if err != nil {
			return nil, err
		}
		return map[string]any{field: map[string]any{
			"$regex":   s,
			"$options": regexOptions(insensitive),
		}}, nil
	}
}

// docLikePattern translates % wildcards into an anchored, escaped pattern.
func docLikePattern(s string) string {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range s {
		if r == '%' {
			sb.WriteString(".*")
		} else {
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}

func docLike(insensitive, negate bool) DocumentFunc {
	return func(field string, operand any) (map[string]any, error) {
		s, err := operandString(operand)
		if err != nil {
			return nil, err
		}
		pattern := docLikePattern(s)
		if negate {
			return map[string]any{field: map[string]any{
				"$not": map[string]any{"$regex": pattern},
			}}, nil
		}
		return map[string]any{field: map[string]any{
			"$regex":   pattern,
			"$options": regexOptions(insensitive),
		}}, nil
	}
}

func docIsNull(field string, _ any) (map[string]any, error) {
	return map[string]any{"$or": []any{
		map[string]any{field: map[string]any{"$exists": false}},
		map[string]any{field: map[string]any{"$eq": nil}},
	}}, nil
}

func docIsNotNull(field string, _ any) (map[string]any, error) {
	return map[string]any{field: map[string]any{"$exists": true, "$ne": nil}}, nil
}

func docIsEmpty(field string, _ any) (map[string]any, error) {
	return map[string]any{"$or": []any{
		map[string]any{field: map[string]any{"$exists": false}},
		map[string]any{field: map[string]any{"$eq": nil}},
		map[string]any{field: map[string]any{"$eq": ""}},
		map[string]any{field: map[string]any{"$size": 0}},
	}}, nil
}

func docIsNotEmpty(field string, _ any) (map[string]any, error) {
	return map[string]any{"$and": []any{
		map[string]any{field: map[string]any{"$exists": true}},
		map[string]any{field: map[string]any{"$ne": nil}},
		map[string]any{field: map[string]any{"$ne": ""}},
	}}, nil
}

func docBetween(field string, operand any) (map[string]any, error) {
	lo, hi, err := rangeOperand(operand)
	if err != nil {
		return nil, err
	}
	return map[string]any{"$and": []any{
		map[string]any{field: map[string]any{"$gte": lo}},
		map[string]any{field: map[string]any{"$lte": hi}},
	}}, nil
}

func docNotBetween(field string, operand any) (map[string]any, error) {
	lo, hi, err := rangeOperand(operand)
	if err != nil {
		return nil, err
	}
	return map[string]any{"$or": []any{
		map[string]any{field: map[string]any{"$lt": lo}},
		map[string]any{field: map[string]any{"$gt": hi}},
	}}, nil
}

func docJSONHasKey(field string, _ any) (map[string]any, error) {
	return map[string]any{field: map[string]any{"$exists": true, "$ne": nil}}, nil
}

func docJSONContains(field string, operand any) (map[string]any, error) {
	if list, ok := operand.([]any); ok {
		return map[string]any{field: map[string]any{"$all": list}}, nil
	}
	return map[string]any{field: map[string]any{"$eq": operand}}, nil
}

func docJSONPathExists(field string, _ any) (map[string]any, error) {
	return map[string]any{field: map[string]any{"$exists": true}}, nil
}
