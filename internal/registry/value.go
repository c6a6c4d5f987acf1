package registry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is an expected configuration value: a scalar, an integer or a list
// of strings. The zero Value is an empty scalar.
type Value struct {
	scalar string
	list   []string
	isList bool
}

// String returns the scalar form; lists are joined with ", ".
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.list, ", ")
	}
	return v.scalar
}

// Strings returns the list form. A non-empty scalar becomes a one-element list.
func (v Value) Strings() []string {
	if v.isList {
		return append([]string(nil), v.list...)
	}
	if v.scalar == "" {
		return nil
	}
	return []string{v.scalar}
}

// Int parses the scalar form as an integer.
func (v Value) Int() (int, error) {
	if v.isList {
		return 0, fmt.Errorf("expected an integer, got a list [%s]", v.String())
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.scalar))
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %q", v.scalar)
	}
	return n, nil
}

// IsList reports whether the value was configured as a list.
func (v Value) IsList() bool {
	return v.isList
}

// newValue converts a decoded YAML/TOML value into a Value.
func newValue(raw interface{}) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return Value{scalar: x}, nil
	case bool:
		return Value{scalar: strconv.FormatBool(x)}, nil
	case int:
		return Value{scalar: strconv.Itoa(x)}, nil
	case int64:
		return Value{scalar: strconv.FormatInt(x, 10)}, nil
	case float64:
		if x != math.Trunc(x) {
			return Value{scalar: strconv.FormatFloat(x, 'f', -1, 64)}, nil
		}
		return Value{scalar: strconv.FormatInt(int64(x), 10)}, nil
	case []string:
		return Value{list: append([]string{}, x...), isList: true}, nil
	case []interface{}:
		items := make([]string, 0, len(x))
		for i, item := range x {
			elem, err := newValue(item)
			if err != nil || elem.isList {
				return Value{}, fmt.Errorf("list element %d: nested lists are not supported", i)
			}
			items = append(items, elem.scalar)
		}
		return Value{list: items, isList: true}, nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

// StringValue builds a scalar Value.
func StringValue(s string) Value {
	return Value{scalar: s}
}

// ListValue builds a list Value.
func ListValue(items ...string) Value {
	return Value{list: append([]string{}, items...), isList: true}
}
