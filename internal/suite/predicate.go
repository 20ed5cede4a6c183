package suite

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml/ast"
)

var (
	ErrInvalidPredicate = errors.New("invalid predicate")
	ErrUnsupportedOp    = errors.New("unsupported predicate operation")
)

// Operator names a comparison applied to an observed value.
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "not_equals"
	OpContains           Operator = "contains"
	OpNotContains        Operator = "not_contains"
	OpStartsWith         Operator = "starts_with"
	OpRegex              Operator = "regex"
	OpExists             Operator = "exists"
	OpLength             Operator = "length"
	OpGreaterThan        Operator = "greater_than"
	OpLessThan           Operator = "less_than"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal"
	OpLessThanOrEqual    Operator = "less_than_or_equal"
	OpIn                 Operator = "in"
)

type operationFunc func(actual, expected any) (bool, error)

var operations = map[Operator]operationFunc{
	OpEquals: func(actual, expected any) (bool, error) {
		return equalValues(actual, expected), nil
	},
	OpNotEquals: func(actual, expected any) (bool, error) {
		return !equalValues(actual, expected), nil
	},
	OpContains: func(actual, expected any) (bool, error) {
		return compareStrings(OpContains, actual, expected, strings.Contains)
	},
	OpNotContains: func(actual, expected any) (bool, error) {
		return compareStrings(OpNotContains, actual, expected, func(a, e string) bool { return !strings.Contains(a, e) })
	},
	OpStartsWith: func(actual, expected any) (bool, error) {
		return compareStrings(OpStartsWith, actual, expected, strings.HasPrefix)
	},
	OpRegex: evaluateRegex,
	OpExists: func(actual, _ any) (bool, error) {
		return exists(actual), nil
	},
	OpLength: evaluateLength,
	OpGreaterThan: func(actual, expected any) (bool, error) {
		return compareNumbers(OpGreaterThan, actual, expected, func(a, e float64) bool { return a > e })
	},
	OpLessThan: func(actual, expected any) (bool, error) {
		return compareNumbers(OpLessThan, actual, expected, func(a, e float64) bool { return a < e })
	},
	OpGreaterThanOrEqual: func(actual, expected any) (bool, error) {
		return compareNumbers(OpGreaterThanOrEqual, actual, expected, func(a, e float64) bool { return a >= e })
	},
	OpLessThanOrEqual: func(actual, expected any) (bool, error) {
		return compareNumbers(OpLessThanOrEqual, actual, expected, func(a, e float64) bool { return a <= e })
	},
	OpIn: evaluateIn,
}

// Predicate is an operation with an optional expected value.
//
//	op: <operator>
//	value: <any>   # omitted only for "exists"
type Predicate struct {
	Op       Operator
	Value    any
	HasValue bool
}

// UnmarshalYAML decodes a predicate mapping.
func (p *Predicate) UnmarshalYAML(node ast.Node) error {
	mapNode, ok := node.(*ast.MappingNode)
	if !ok {
		return errors.New("predicate must be a mapping")
	}
	return p.decode(mapNode.Values)
}

func (p *Predicate) decode(values []*ast.MappingValueNode) error {
	if len(values) == 0 {
		return errors.New("predicate mapping is empty")
	}

	for _, valNode := range values {
		key, ok := valNode.Key.(*ast.StringNode)
		if !ok {
			return errors.New("predicate key must be a string")
		}

		switch key.Value {
		case "op":
			opNode, ok := valNode.Value.(*ast.StringNode)
			if !ok {
				return errors.New("op value must be a string")
			}
			op := strings.TrimSpace(opNode.Value)
			if op == "" {
				return errors.New("op value must not be empty")
			}
			p.Op = Operator(op)
		case "value":
			value, err := nodeToValue(valNode.Value)
			if err != nil {
				return fmt.Errorf("failed to parse value: %w", err)
			}
			p.Value = value
			p.HasValue = true
		default:
			return fmt.Errorf("unsupported predicate key %q: use 'op' and optional 'value'", key.Value)
		}
	}

	if p.Op == "" {
		return errors.New("predicate must specify an op")
	}
	return nil
}

// Validate checks the operation exists and its value requirements.
func (p Predicate) Validate() error {
	if _, ok := operations[p.Op]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedOp, p.Op)
	}

	if p.Op == OpExists {
		if p.HasValue {
			return fmt.Errorf("%w: %q does not accept a value", ErrInvalidPredicate, p.Op)
		}
		return nil
	}

	if !p.HasValue {
		return fmt.Errorf("%w: %q requires a value", ErrInvalidPredicate, p.Op)
	}

	if p.Op == OpRegex {
		pattern, ok := p.Value.(string)
		if !ok {
			return fmt.Errorf("%w: %q requires a string pattern, got %T", ErrInvalidPredicate, p.Op, p.Value)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("%w: invalid regex %q: %v", ErrInvalidPredicate, pattern, err)
		}
	}
	return nil
}

// Evaluate applies the predicate to actual.
func (p Predicate) Evaluate(actual any) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	return operations[p.Op](actual, p.Value)
}

func (p Predicate) String() string {
	if !p.HasValue {
		return string(p.Op)
	}
	return fmt.Sprintf("%s %v", p.Op, p.Value)
}

// nodeToValue extracts values from AST nodes.
// integer node value is normalized to int64
// float node value is always float64
func nodeToValue(node ast.Node) (any, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		switch v := n.Value.(type) {
		case int64:
			return v, nil
		case uint64:
			return int64(v), nil
		case nil:
			return nil, errors.New("integer node has nil value")
		default:
			return nil, fmt.Errorf("unexpected integer node value type: %T", n.Value)
		}
	case *ast.FloatNode:
		return n.Value, nil
	case *ast.StringNode:
		return n.Value, nil
	case *ast.LiteralNode:
		return n.Value.Value, nil
	case *ast.BoolNode:
		return n.Value, nil
	case *ast.NullNode:
		return nil, nil
	case *ast.SequenceNode:
		var result []any
		for i, item := range n.Values {
			val, err := nodeToValue(item)
			if err != nil {
				return nil, fmt.Errorf("invalid value at index %d: %w", i, err)
			}
			result = append(result, val)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported node type: %T", node)
	}
}

func equalValues(actual, expected any) bool {
	if reflect.DeepEqual(actual, expected) {
		return true
	}

	a, aok := toFloat64(actual)
	e, eok := toFloat64(expected)
	return aok && eok && a == e
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func compareNumbers(op Operator, actual, expected any, compare func(a, e float64) bool) (bool, error) {
	a, aok := toFloat64(actual)
	e, eok := toFloat64(expected)
	if !aok || !eok {
		return false, fmt.Errorf("%w: %q requires numeric values, got %T and %T", ErrInvalidPredicate, op, actual, expected)
	}
	return compare(a, e), nil
}

func compareStrings(op Operator, actual, expected any, compare func(a, e string) bool) (bool, error) {
	a, ok := actual.(string)
	if !ok {
		return false, fmt.Errorf("%w: %q requires string actual value, got %T", ErrInvalidPredicate, op, actual)
	}
	e, ok := expected.(string)
	if !ok {
		return false, fmt.Errorf("%w: %q requires string expected value, got %T", ErrInvalidPredicate, op, expected)
	}
	return compare(a, e), nil
}

func evaluateRegex(actual, expected any) (bool, error) {
	return compareStrings(OpRegex, actual, expected, func(a, pattern string) bool {
		// pattern is checked by Validate
		return regexp.MustCompile(pattern).MatchString(a)
	})
}

func exists(actual any) bool {
	if actual == nil {
		return false
	}

	v := reflect.ValueOf(actual)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !v.IsNil()
	default:
		return true
	}
}

func evaluateLength(actual, expected any) (bool, error) {
	want, ok := toFloat64(expected)
	if !ok || want != float64(int(want)) {
		return false, fmt.Errorf("%w: %q requires integer expected value, got %v", ErrInvalidPredicate, OpLength, expected)
	}
	if actual == nil {
		return false, fmt.Errorf("%w: %q requires string/slice/map actual value, got nil", ErrInvalidPredicate, OpLength)
	}

	v := reflect.ValueOf(actual)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() == int(want), nil
	default:
		return false, fmt.Errorf("%w: %q requires string/slice/map actual value, got %T", ErrInvalidPredicate, OpLength, actual)
	}
}

func evaluateIn(actual, expected any) (bool, error) {
	list := reflect.ValueOf(expected)
	if list.Kind() != reflect.Slice && list.Kind() != reflect.Array {
		return false, fmt.Errorf("%w: %q requires a list expected value, got %T", ErrInvalidPredicate, OpIn, expected)
	}
	for i := range list.Len() {
		if equalValues(actual, list.Index(i).Interface()) {
			return true, nil
		}
	}
	return false, nil
}
