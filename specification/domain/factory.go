package specification

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"

	"github.com/krew-solutions/predicate-go/specification/domain/fuzzy"
	"github.com/krew-solutions/predicate-go/specification/domain/operators"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const rootPath = "<root>"

// FromMap builds a Specification from the serialized dict shape, failing
// fast on the first structural error.
func FromMap(data map[string]any, opts ...Option) (Specification, error) {
	cfg := newConfig(opts)
	return fromMap(data, rootPath, cfg)
}

// FromJSON parses a JSON filter payload and delegates to FromMap.
func FromJSON(data []byte, opts ...Option) (Specification, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &ValidationError{Message: "filter payload must be a JSON object"}
	}
	return FromMap(m, opts...)
}

func fromMap(data map[string]any, path string, cfg config) (Specification, error) {
	op, err := opKey(data, path)
	if err != nil {
		return nil, err
	}
	switch op {
	case "and", "or":
		children, err := compositeChildren(data, path, cfg)
		if err != nil {
			return nil, err
		}
		if op == "and" {
			return NewAnd(children[0], children[1:]...), nil
		}
		return NewOr(children[0], children[1:]...), nil
	case "not":
		child, err := notChild(data, path, cfg)
		if err != nil {
			return nil, err
		}
		return NewNot(child), nil
	default:
		return leafFromMap(data, op, path, cfg)
	}
}

func opKey(data map[string]any, path string) (string, error) {
	raw, ok := data["op"]
	if !ok {
		return "", &ValidationError{Path: path, Message: `missing required key "op"`}
	}
	op, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Path: path, Message: fmt.Sprintf(`key "op" must be a string, got %T`, raw)}
	}
	return op, nil
}

func conditionList(data map[string]any, path string) ([]map[string]any, error) {
	raw, ok := data["conditions"]
	if !ok {
		return nil, &ValidationError{Path: path, Message: `missing required key "conditions"`}
	}
	items, ok := asAnyList(raw)
	if !ok {
		return nil, &ValidationError{Path: path, Message: `key "conditions" must be a list`}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Path: path, Message: `key "conditions" must not be empty`}
	}
	out := make([]map[string]any, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &ValidationError{
				Path:    fmt.Sprintf("%s.conditions[%d]", path, i),
				Message: fmt.Sprintf("condition must be an object, got %T", item),
			}
		}
		out[i] = m
	}
	return out, nil
}

func asAnyList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []map[string]any:
		out := make([]any, len(list))
		for i, m := range list {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

func compositeChildren(data map[string]any, path string, cfg config) ([]Specification, error) {
	conds, err := conditionList(data, path)
	if err != nil {
		return nil, err
	}
	children := make([]Specification, len(conds))
	for i, cond := range conds {
		child, err := fromMap(cond, fmt.Sprintf("%s.conditions[%d]", path, i), cfg)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return children, nil
}

// notChild accepts the "conditions" single-element list, or the legacy
// "condition" key on input only.
func notChild(data map[string]any, path string, cfg config) (Specification, error) {
	if legacy, ok := data["condition"]; ok {
		m, ok := legacy.(map[string]any)
		if !ok {
			return nil, &ValidationError{Path: path, Message: fmt.Sprintf(`key "condition" must be an object, got %T`, legacy)}
		}
		return fromMap(m, path+".condition", cfg)
	}
	conds, err := conditionList(data, path)
	if err != nil {
		return nil, err
	}
	if len(conds) != 1 {
		return nil, &ValidationError{Path: path, Message: fmt.Sprintf(`"not" requires exactly one condition, got %d`, len(conds))}
	}
	return fromMap(conds[0], path+".conditions[0]", cfg)
}

func leafFromMap(data map[string]any, op, path string, cfg config) (Specification, error) {
	attrRaw, ok := data["attr"]
	if !ok {
		return nil, &ValidationError{Path: path, Message: `missing required key "attr"`}
	}
	attr, ok := attrRaw.(string)
	if !ok {
		return nil, &ValidationError{Path: path, Message: fmt.Sprintf(`key "attr" must be a string, got %T`, attrRaw)}
	}
	if !cfg.registry.Has(operators.Operator(op)) {
		return nil, &OperatorNotFoundError{
			Operator:    op,
			Suggestions: fuzzy.Suggest(op, cfg.registry.Operators()),
		}
	}
	if len(cfg.allowedFields) > 0 && !containsString(cfg.allowedFields, attr) {
		return nil, &FieldNotQueryableError{
			Field:       attr,
			Suggestions: fuzzy.Suggest(attr, cfg.allowedFields),
		}
	}
	val := data["val"]
	valueType, _ := data["value_type"].(string)
	if valueType != "" {
		coerced, err := coerceValue(valueType, val)
		if err != nil {
			return nil, &ValidationError{Path: path, Message: err.Error()}
		}
		val = coerced
	}
	attrOpts := []Option{WithRegistry(cfg.registry)}
	if valueType != "" {
		attrOpts = append(attrOpts, WithValueType(valueType))
	}
	node, err := Attr(attr, operators.Operator(op), val, attrOpts...)
	if err != nil {
		if verr, ok := err.(*ValidationError); ok && verr.Path == "" {
			verr.Path = path
		}
		return nil, err
	}
	return node, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// coerceValue converts a raw operand per the value_type tag. It is
// idempotent so serialized trees survive repeated round-trips. List
// operands are coerced element-wise.
func coerceValue(valueType string, val any) (any, error) {
	if list, ok := asAnyList(val); ok {
		out := make([]any, len(list))
		for i, item := range list {
			coerced, err := coerceValue(valueType, item)
			if err != nil {
				return nil, err
			}
			out[i] = coerced
		}
		return out, nil
	}
	switch valueType {
	case "int":
		switch v := val.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to int", v)
			}
			return n, nil
		}
	case "float":
		switch v := val.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to float", v)
			}
			return f, nil
		}
	case "bool":
		switch v := val.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to bool", v)
			}
			return b, nil
		}
	case "str":
		if s, ok := val.(string); ok {
			return s, nil
		}
		return fmt.Sprintf("%v", val), nil
	case "uuid":
		switch v := val.(type) {
		case uuid.UUID:
			return v, nil
		case string:
			id, err := uuid.Parse(v)
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to uuid", v)
			}
			return id, nil
		}
	case "datetime":
		switch v := val.(type) {
		case time.Time:
			return v, nil
		case string:
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to datetime", v)
			}
			return t, nil
		}
	default:
		return nil, fmt.Errorf("unsupported value_type %q", valueType)
	}
	return nil, fmt.Errorf("cannot coerce %T to %s", val, valueType)
}

// Validate walks the serialized shape the way FromMap does but never fails
// fast: every discoverable structural error is collected depth-first. An
// empty result means the input is valid.
func Validate(data map[string]any, opts ...Option) []error {
	cfg := newConfig(opts)
	var merr *multierror.Error
	validateNode(data, rootPath, cfg, &merr)
	if merr == nil {
		return nil
	}
	return merr.Errors
}

func validateNode(data map[string]any, path string, cfg config, merr **multierror.Error) {
	op, err := opKey(data, path)
	if err != nil {
		*merr = multierror.Append(*merr, err)
		return
	}
	switch op {
	case "and", "or":
		validateComposite(data, path, cfg, merr)
	case "not":
		validateNot(data, path, cfg, merr)
	default:
		if _, err := leafFromMap(data, op, path, cfg); err != nil {
			*merr = multierror.Append(*merr, err)
		}
	}
}

func validateComposite(data map[string]any, path string, cfg config, merr **multierror.Error) {
	conds, err := conditionList(data, path)
	if err != nil {
		*merr = multierror.Append(*merr, err)
		// Descend into whatever children are still reachable.
		if items, ok := asAnyList(data["conditions"]); ok {
			for i, item := range items {
				if m, ok := item.(map[string]any); ok {
					validateNode(m, fmt.Sprintf("%s.conditions[%d]", path, i), cfg, merr)
				}
			}
		}
		return
	}
	for i, cond := range conds {
		validateNode(cond, fmt.Sprintf("%s.conditions[%d]", path, i), cfg, merr)
	}
}

func validateNot(data map[string]any, path string, cfg config, merr **multierror.Error) {
	if legacy, ok := data["condition"]; ok {
		if m, ok := legacy.(map[string]any); ok {
			validateNode(m, path+".condition", cfg, merr)
		} else {
			*merr = multierror.Append(*merr, &ValidationError{
				Path:    path,
				Message: fmt.Sprintf(`key "condition" must be an object, got %T`, legacy),
			})
		}
		return
	}
	conds, err := conditionList(data, path)
	if err != nil {
		*merr = multierror.Append(*merr, err)
		return
	}
	if len(conds) != 1 {
		*merr = multierror.Append(*merr, &ValidationError{
			Path:    path,
			Message: fmt.Sprintf(`"not" requires exactly one condition, got %d`, len(conds)),
		})
	}
	for i, cond := range conds {
		validateNode(cond, fmt.Sprintf("%s.conditions[%d]", path, i), cfg, merr)
	}
}
