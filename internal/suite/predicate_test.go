package suite

import (
	"errors"
	"testing"

	yaml "github.com/goccy/go-yaml"
)

func TestPredicateUnmarshalYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		want    Predicate
		wantErr bool
	}{
		{"integer", "op: equals\nvalue: 3", Predicate{Op: OpEquals, Value: int64(3), HasValue: true}, false},
		{"float", "op: less_than\nvalue: 2.5", Predicate{Op: OpLessThan, Value: 2.5, HasValue: true}, false},
		{"string", "op: contains\nvalue: parse error", Predicate{Op: OpContains, Value: "parse error", HasValue: true}, false},
		{"exists", "op: exists", Predicate{Op: OpExists}, false},
		{"null_value", "op: equals\nvalue: null", Predicate{Op: OpEquals, HasValue: true}, false},
		{"unknown_key", "op: equals\nexpected: 3", Predicate{}, true},
		{"missing_op", "value: 3", Predicate{}, true},
		{"empty_op", "op: ''", Predicate{}, true},
		{"not_a_mapping", "- equals", Predicate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got Predicate
			err := yaml.Unmarshal([]byte(tt.yaml), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Op != tt.want.Op || got.HasValue != tt.want.HasValue || got.Value != tt.want.Value {
				t.Errorf("Unmarshal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPredicateUnmarshalSequence(t *testing.T) {
	t.Parallel()

	var got Predicate
	if err := yaml.Unmarshal([]byte("op: in\nvalue: [1, two]"), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	values, ok := got.Value.([]any)
	if !ok || len(values) != 2 || values[0] != int64(1) || values[1] != "two" {
		t.Errorf("Value = %#v", got.Value)
	}
}

func TestPredicateValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Predicate
		want error
	}{
		{"exists", Predicate{Op: OpExists}, nil},
		{"exists_with_value", Predicate{Op: OpExists, Value: true, HasValue: true}, ErrInvalidPredicate},
		{"equals_without_value", Predicate{Op: OpEquals}, ErrInvalidPredicate},
		{"unknown", Predicate{Op: "matches"}, ErrUnsupportedOp},
		{"regex_invalid", Predicate{Op: OpRegex, Value: "[", HasValue: true}, ErrInvalidPredicate},
		{"regex_not_string", Predicate{Op: OpRegex, Value: int64(1), HasValue: true}, ErrInvalidPredicate},
		{"regex", Predicate{Op: OpRegex, Value: "^li$", HasValue: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := tt.p.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPredicateEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		op      Operator
		actual  any
		value   any
		want    bool
		wantErr bool
	}{
		{"equals_int_int64", OpEquals, 3, int64(3), true, false},
		{"equals_float_json", OpEquals, float64(2), int64(2), true, false},
		{"equals_string", OpEquals, "li", "li", true, false},
		{"equals_mismatch", OpEquals, "li", "ul", false, false},
		{"not_equals", OpNotEquals, 1, int64(2), true, false},
		{"contains", OpContains, "locator: parse error", "parse", true, false},
		{"contains_non_string", OpContains, 3, "3", false, true},
		{"not_contains", OpNotContains, "apple", "pear", true, false},
		{"starts_with", OpStartsWith, "/html/body", "/html", true, false},
		{"regex", OpRegex, "li#apple", `^li#\w+$`, true, false},
		{"length_list", OpLength, []any{1, 2}, int64(2), true, false},
		{"length_string", OpLength, "abc", int64(4), false, false},
		{"length_nil", OpLength, nil, int64(0), false, true},
		{"greater_than", OpGreaterThan, 5, int64(2), true, false},
		{"less_than", OpLessThan, 5, int64(2), false, false},
		{"greater_than_or_equal", OpGreaterThanOrEqual, 2, 2.0, true, false},
		{"less_than_or_equal", OpLessThanOrEqual, 3, int64(2), false, false},
		{"numeric_non_number", OpGreaterThan, "5", int64(2), false, true},
		{"in", OpIn, "button", []any{"a", "button"}, true, false},
		{"in_not_list", OpIn, "button", "button", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := Predicate{Op: tt.op, Value: tt.value, HasValue: true}
			got, err := p.Evaluate(tt.actual)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Evaluate(%v) error = %v, wantErr %v", tt.actual, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.actual, got, tt.want)
			}
		})
	}
}

func TestPredicateExists(t *testing.T) {
	t.Parallel()

	p := Predicate{Op: OpExists}
	for _, tt := range []struct {
		actual any
		want   bool
	}{
		{nil, false},
		{"", false},
		{"x", true},
		{[]any{}, false},
		{0, true},
	} {
		got, err := p.Evaluate(tt.actual)
		if err != nil || got != tt.want {
			t.Errorf("exists(%#v) = %v, %v; want %v", tt.actual, got, err, tt.want)
		}
	}
}
