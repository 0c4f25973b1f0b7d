package vm

import "fmt"

func is[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

// assertions checks a value against each Go type generated code asserts to.
var assertions = map[string]func(any) bool{
	"bool":               is[bool],
	"int":                is[int],
	"int64":              is[int64],
	"float64":            is[float64],
	"string":             is[string],
	"[]any":              is[[]any],
	"[]int":              is[[]int],
	"map[any]any":        is[map[any]any],
	"map[any][]any":      is[map[any][]any],
	"func(any)":          is[func(any)],
	"func(any) bool":     is[func(any) bool],
	"func(any) any":      is[func(any) any],
	"func(any) int":      is[func(any) int],
	"func(any) int64":    is[func(any) int64],
	"func(any) float64":  is[func(any) float64],
	"func(any) []any":    is[func(any) []any],
	"func(any, any) int": is[func(any, any) int],
	"func(any, any) any": is[func(any, any) any],
}

var zeros = map[string]any{
	"any":     nil,
	"bool":    false,
	"int":     0,
	"int64":   int64(0),
	"float64": float64(0),
	"[]any":   []any(nil),
}

func makeSlice(elem string, n int) (any, error) {
	switch elem {
	case "any":
		return make([]any, 0, n), nil
	case "int":
		return make([]int, 0, n), nil
	}
	return nil, fmt.Errorf("vm: cannot make a slice of %s", elem)
}

// makeMap returns a constructor for a map type.  Only keys of type any are
// ever generated.
func makeMap(key, value string) (func() any, error) {
	if key != "any" {
		return nil, fmt.Errorf("vm: cannot make a map keyed by %s", key)
	}
	switch value {
	case "any":
		return func() any { return make(map[any]any) }, nil
	case "bool":
		return func() any { return make(map[any]bool) }, nil
	case "[]any":
		return func() any { return make(map[any][]any) }, nil
	case "struct{}":
		return func() any { return make(map[any]struct{}) }, nil
	}
	return nil, fmt.Errorf("vm: cannot make a map of %s", value)
}

func convert(typ string, v any) any {
	switch typ {
	case "int":
		switch v := v.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	case "int64":
		switch v := v.(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	case "float64":
		switch v := v.(type) {
		case int:
			return float64(v)
		case int64:
			return float64(v)
		case float64:
			return v
		}
	case "any":
		return v
	}
	panic(fmt.Sprintf("vm: cannot convert %T to %s", v, typ))
}
