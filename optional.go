package zjit

import "fmt"

// Optional unpacks an optional result, which compiled and interpreted code
// both represent as an []any holding zero or one value.
func Optional(result any) (any, bool) {
	vals, ok := result.([]any)
	if !ok || len(vals) > 1 {
		panic(fmt.Sprintf("zjit: %T is not an optional result", result))
	}
	if len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}
