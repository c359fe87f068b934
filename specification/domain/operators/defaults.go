package operators

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
)

// NewDefaultRegistry builds a fresh registry holding the complete catalog
// with all three backends wired.
func NewDefaultRegistry() *Registry {
	reg := NewRegistry()

	reg.Register(OperatorEq, Entry{Kind: KindScalar, Evaluate: evalEq, SQL: sqlEq, Document: docOp("$eq")})
	reg.Register(OperatorNe, Entry{Kind: KindScalar, Evaluate: evalNe, SQL: sqlNe, Document: docOp("$ne")})
	reg.Register(OperatorGt, Entry{Kind: KindScalar, Evaluate: evalCmp(func(c int) bool { return c > 0 }), SQL: sqlGt, Document: docOp("$gt")})
	reg.Register(OperatorGte, Entry{Kind: KindScalar, Evaluate: evalCmp(func(c int) bool { return c >= 0 }), SQL: sqlGte, Document: docOp("$gte")})
	reg.Register(OperatorLt, Entry{Kind: KindScalar, Evaluate: evalCmp(func(c int) bool { return c < 0 }), SQL: sqlLt, Document: docOp("$lt")})
	reg.Register(OperatorLte, Entry{Kind: KindScalar, Evaluate: evalCmp(func(c int) bool { return c <= 0 }), SQL: sqlLte, Document: docOp("$lte")})
	reg.Register(OperatorIn, Entry{Kind: KindList, Evaluate: evalIn, SQL: sqlIn, Document: docList("$in")})
	reg.Register(OperatorNotIn, Entry{Kind: KindList, Evaluate: evalNotIn, SQL: sqlNotIn, Document: docList("$nin")})

	reg.Register(OperatorContains, Entry{Kind: KindScalar, Evaluate: evalString(strings.Contains, false), SQL: sqlContains, Document: docRegex(regexBare, false)})
	reg.Register(OperatorIContains, Entry{Kind: KindScalar, Evaluate: evalString(strings.Contains, true), SQL: sqlIContains, Document: docRegex(regexBare, true)})
	reg.Register(OperatorStartsWith, Entry{Kind: KindScalar, Evaluate: evalString(strings.HasPrefix, false), SQL: sqlStartsWith, Document: docRegex(regexPrefix, false)})
	reg.Register(OperatorIStartsWith, Entry{Kind: KindScalar, Evaluate: evalString(strings.HasPrefix, true), SQL: sqlIStartsWith, Document: docRegex(regexPrefix, true)})
	reg.Register(OperatorEndsWith, Entry{Kind: KindScalar, Evaluate: evalString(strings.HasSuffix, false), SQL: sqlEndsWith, Document: docRegex(regexSuffix, false)})
	reg.Register(OperatorIEndsWith, Entry{Kind: KindScalar, Evaluate: evalString(strings.HasSuffix, true), SQL: sqlIEndsWith, Document: docRegex(regexSuffix, true)})
	reg.Register(OperatorLike, Entry{Kind: KindScalar, Evaluate: evalLike(false, false), SQL: sqlLike, Document: docLike(false, false)})
	reg.Register(OperatorILike, Entry{Kind: KindScalar, Evaluate: evalLike(true, false), SQL: sqlILike, Document: docLike(true, false)})
	reg.Register(OperatorNotLike, Entry{Kind: KindScalar, Evaluate: evalLike(false, true), SQL: sqlNotLike, Document: docLike(false, true)})
	reg.Register(OperatorRegex, Entry{Kind: KindScalar, Evaluate: evalRegex(false), SQL: sqlRegex, Document: docRawRegex(false)})
	reg.Register(OperatorIRegex, Entry{Kind: KindScalar, Evaluate: evalRegex(true), SQL: sqlIRegex, Document: docRawRegex(true)})

	reg.Register(OperatorAll, Entry{Kind: KindList, Evaluate: evalAll, SQL: sqlAll, Document: docList("$all")})

	reg.Register(OperatorIsNull, Entry{Kind: KindNone, Evaluate: evalIsNull, SQL: sqlIsNull, Document: docIsNull})
	reg.Register(OperatorIsNotNull, Entry{Kind: KindNone, Evaluate: evalIsNotNull, SQL: sqlIsNotNull, Document: docIsNotNull})
	reg.Register(OperatorIsEmpty, Entry{Kind: KindNone, Evaluate: evalIsEmpty, SQL: sqlIsEmpty, Document: docIsEmpty})
	reg.Register(OperatorIsNotEmpty, Entry{Kind: KindNone, Evaluate: evalIsNotEmpty, SQL: sqlIsNotEmpty, Document: docIsNotEmpty})

	reg.Register(OperatorBetween, Entry{Kind: KindRange, Evaluate: evalBetween(false), SQL: sqlBetween, Document: docBetween})
	reg.Register(OperatorNotBetween, Entry{Kind: KindRange, Evaluate: evalBetween(true), SQL: sqlNotBetween, Document: docNotBetween})

	reg.Register(OperatorJSONHasKey, Entry{Kind: KindScalar, Evaluate: evalJSONHasKey, SQL: sqlJSONHasKey, Document: docJSONHasKey})
	reg.Register(OperatorJSONHasAny, Entry{Kind: KindList, Evaluate: evalJSONHas(false), SQL: sqlJSONHasAny, Document: docList("$in")})
	reg.Register(OperatorJSONHasAll, Entry{Kind: KindList, Evaluate: evalJSONHas(true), SQL: sqlJSONHasAll, Document: docList("$all")})
	reg.Register(OperatorJSONContains, Entry{Kind: KindAny, Evaluate: evalJSONContains, SQL: sqlJSONContains, Document: docJSONContains})
	reg.Register(OperatorJSONPathExists, Entry{Kind: KindScalar, Evaluate: evalJSONPathExists, SQL: sqlJSONPathExists, Document: docJSONPathExists})

	return reg
}

// --- comparison helpers ---

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func equalValues(a, b any) bool {
	if IsMissing(a) || IsMissing(b) {
		return false
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two values of compatible types. Numbers of any width
// compare as floats; strings and timestamps compare natively.
func compareValues(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs), true
		}
		return 0, false
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			switch {
			case at.Before(bt):
				return -1, true
			case at.After(bt):
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}

// --- standard comparison ---

func evalEq(value, operand any) (bool, error) {
	if IsMissing(value) {
		return false, nil
	}
	return equalValues(value, operand), nil
}

func evalNe(value, operand any) (bool, error) {
	if IsMissing(value) {
		return false, nil
	}
	return !equalValues(value, operand), nil
}

func evalCmp(pred func(int) bool) EvaluateFunc {
	return func(value, operand any) (bool, error) {
		if IsMissing(value) || value == nil {
			return false, nil
		}
		c, ok := compareValues(value, operand)
		if !ok {
			return false, nil
		}
		return pred(c), nil
	}
}

func evalIn(value, operand any) (bool, error) {
	if IsMissing(value) {
		return false, nil
	}
	list, _ := operand.([]any)
	for _, item := range list {
		if equalValues(value, item) {
			return true, nil
		}
	}
	return false, nil
}

func evalNotIn(value, operand any) (bool, error) {
	if IsMissing(value) {
		return false, nil
	}
	ok, err := evalIn(value, operand)
	return !ok, err
}

// --- string operators ---

func evalString(match func(s, sub string) bool, insensitive bool) EvaluateFunc {
	return func(value, operand any) (bool, error) {
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		sub, ok := operand.(string)
		if !ok {
			return false, nil
		}
		if insensitive {
			s = strings.ToLower(s)
			sub = strings.ToLower(sub)
		}
		return match(s, sub), nil
	}
}

// likePattern translates SQL-style % wildcards into an anchored regular
// expression, escaping every other metacharacter.
func likePattern(pattern string, insensitive bool) string {
	var sb strings.Builder
	if insensitive {
		sb.WriteString("(?i)")
	}
	sb.WriteString("^")
	for _, r := range pattern {
		if r == '%' {
			sb.WriteString(".*")
		} else {
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}

func evalLike(insensitive, negate bool) EvaluateFunc {
	return func(value, operand any) (bool, error) {
		s, ok := value.(string)
		if !ok {
			return negate, nil
		}
		pattern, ok := operand.(string)
		if !ok {
			return false, fmt.Errorf("like operand must be a string, got %T", operand)
		}
		re, err := regexp.Compile(likePattern(pattern, insensitive))
		if err != nil {
			return false, err
		}
		matched := re.MatchString(s)
		if negate {
			return !matched, nil
		}
		return matched, nil
	}
}

func evalRegex(insensitive bool) EvaluateFunc {
	return func(value, operand any) (bool, error) {
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		pattern, ok := operand.(string)
		if !ok {
			return false, fmt.Errorf("regex operand must be a string, got %T", operand)
		}
		if insensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(s), nil
	}
}

// --- set operators ---

// evalAll tests that every operand element is present in the resolved
// collection; a scalar resolved value matches only a single-element operand
// equal to it.
func evalAll(value, operand any) (bool, error) {
	if IsMissing(value) {
		return false, nil
	}
	want, _ := operand.([]any)
	have, ok := toList(value)
	if !ok {
		return len(want) == 1 && equalValues(value, want[0]), nil
	}
	for _, w := range want {
		found := false
		for _, h := range have {
			if equalValues(w, h) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

// --- null / empty ---

func evalIsNull(value, _ any) (bool, error) {
	return IsMissing(value) || value == nil, nil
}

func evalIsNotNull(value, operand any) (bool, error) {
	ok, err := evalIsNull(value, operand)
	return !ok, err
}

func evalIsEmpty(value, operand any) (bool, error) {
	if ok, _ := evalIsNull(value, operand); ok {
		return true, nil
	}
	if s, ok := value.(string); ok {
		return s == "", nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0, nil
	}
	return false, nil
}

func evalIsNotEmpty(value, operand any) (bool, error) {
	ok, err := evalIsEmpty(value, operand)
	return !ok, err
}

// --- range ---

func evalBetween(negate bool) EvaluateFunc {
	return func(value, operand any) (bool, error) {
		bounds, _ := operand.([]any)
		if len(bounds) != 2 {
			return false, fmt.Errorf("between operand must be [low, high], got %v", operand)
		}
		if IsMissing(value) || value == nil {
			return false, nil
		}
		lo, okLo := compareValues(value, bounds[0])
		hi, okHi := compareValues(value, bounds[1])
		if !okLo || !okHi {
			return false, nil
		}
		within := lo >= 0 && hi <= 0
		if negate {
			return !within, nil
		}
		return within, nil
	}
}

// --- json ---

func asStringMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func evalJSONHasKey(value, operand any) (bool, error) {
	m, ok := asStringMap(value)
	if !ok {
		return false, nil
	}
	key, ok := operand.(string)
	if !ok {
		return false, fmt.Errorf("json_has_key operand must be a string, got %T", operand)
	}
	v, present := m[key]
	return present && v != nil, nil
}

// evalJSONHas tests operand membership against a mapping's keys or against
// a collection value. all=false requires at least one hit, all=true
// requires every operand element to hit.
func evalJSONHas(all bool) EvaluateFunc {
	return func(value, operand any) (bool, error) {
		want, _ := operand.([]any)
		if len(want) == 0 {
			return false, nil
		}
		var contains func(item any) bool
		if m, ok := asStringMap(value); ok {
			contains = func(item any) bool {
				key, ok := item.(string)
				if !ok {
					return false
				}
				_, present := m[key]
				return present
			}
		} else if list, ok := toList(value); ok {
			contains = func(item any) bool {
				for _, h := range list {
					if equalValues(item, h) {
						return true
					}
				}
				return false
			}
		} else {
			return false, nil
		}
		for _, w := range want {
			hit := contains(w)
			if all && !hit {
				return false, nil
			}
			if !all && hit {
				return true, nil
			}
		}
		return all, nil
	}
}

// evalJSONContains does subset matching for list operands and exact
// equality for scalars.
func evalJSONContains(value, operand any) (bool, error) {
	if IsMissing(value) {
		return false, nil
	}
	if want, ok := operand.([]any); ok {
		return evalAll(value, want)
	}
	return equalValues(value, operand), nil
}

// evalJSONPathExists checks attribute presence only; an explicit null still
// counts as present. A string operand narrows the check to a dotted path
// inside the resolved mapping.
func evalJSONPathExists(value, operand any) (bool, error) {
	if IsMissing(value) {
		return false, nil
	}
	path, _ := operand.(string)
	path = strings.TrimPrefix(path, "$.")
	if path == "" || path == "$" {
		return true, nil
	}
	cur := value
	for _, seg := range strings.Split(path, ".") {
		m, ok := asStringMap(cur)
		if !ok {
			return false, nil
		}
		next, present := m[seg]
		if !present {
			return false, nil
		}
		cur = next
	}
	return true, nil
}
