// Package builtin holds the small runtime helpers that compiled query code
// calls.  Every helper exists twice: as a native Go function used by the
// closure backend and the interpreter, and as Go source text that the source
// backend splices into the rendered unit.  The two forms must agree.
package builtin

import (
	"fmt"
	"sort"

	"github.com/brimdata/zjit"
)

func CompareNatural(a, b any) int {
	return zjit.Compare(a, b)
}

func SortNatural(xs []any) {
	sort.SliceStable(xs, func(i, j int) bool { return zjit.Compare(xs[i], xs[j]) < 0 })
}

func SortNaturalReverse(xs []any) {
	sort.SliceStable(xs, func(i, j int) bool { return zjit.Compare(xs[i], xs[j]) > 0 })
}

func SortBy(xs []any, cmp func(a, b any) int) {
	sort.SliceStable(xs, func(i, j int) bool { return cmp(xs[i], xs[j]) < 0 })
}

func ReverseSlice(xs []any) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

func CloneSlice(xs []any) []any {
	out := make([]any, len(xs))
	copy(out, xs)
	return out
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// A Helper describes one runtime helper in both of its forms.
type Helper struct {
	Name     string
	Native   any
	Source   string
	Imports  []string
	Requires []string
}

var helpers = map[string]*Helper{}

func register(h *Helper) {
	if _, ok := helpers[h.Name]; ok {
		panic(fmt.Sprintf("builtin: helper %q registered twice", h.Name))
	}
	helpers[h.Name] = h
}

func Lookup(name string) (*Helper, bool) {
	h, ok := helpers[name]
	return h, ok
}

// Closure returns the helpers named by names together with every helper they
// require, each exactly once, in dependency order.
func Closure(names []string) []*Helper {
	var out []*Helper
	seen := make(map[string]bool)
	var visit func(string)
	visit = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		h, ok := helpers[name]
		if !ok {
			panic(fmt.Sprintf("builtin: unknown helper %q", name))
		}
		for _, r := range h.Requires {
			visit(r)
		}
		out = append(out, h)
	}
	for _, name := range names {
		visit(name)
	}
	return out
}

// Imports returns the packages needed by the given helpers.
func Imports(hs []*Helper) []string {
	var out []string
	seen := make(map[string]bool)
	for _, h := range hs {
		for _, imp := range h.Imports {
			if !seen[imp] {
				seen[imp] = true
				out = append(out, imp)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Names returns the names of every registered helper in sorted order.
func Names() []string {
	names := make([]string, 0, len(helpers))
	for name := range helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
