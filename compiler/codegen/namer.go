package codegen

import "strconv"

// Namer hands out identifiers that are unique within one generated function.
type Namer struct {
	used map[string]bool
}

func NewNamer(reserved ...string) *Namer {
	n := &Namer{used: make(map[string]bool)}
	for _, name := range reserved {
		n.used[name] = true
	}
	return n
}

// Fresh returns prefix if it is unused and otherwise the first of prefix2,
// prefix3, ... that is.
func (n *Namer) Fresh(prefix string) string {
	name := prefix
	for k := 2; n.used[name]; k++ {
		name = prefix + strconv.Itoa(k)
	}
	n.used[name] = true
	return name
}

func (n *Namer) Reserve(name string) {
	n.used[name] = true
}

func (n *Namer) Used(name string) bool {
	return n.used[name]
}
