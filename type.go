// Package zjit implements a just-in-time query compiler for chains of lazy
// stream operations over in-memory slices, maps and multimaps.  Chains are
// compiled once per distinct shape, cached, and reused; shapes the compiler
// cannot handle run on an interpreter instead.
//
// This root package holds the closed type-descriptor enumeration shared by
// every stage of the compiler.  Types are resolved when a chain is built and
// never by inspecting values at code-generation time.
package zjit

import "fmt"

type Kind int

const (
	KindUnknown Kind = iota
	KindBool
	KindInt
	KindInt64
	KindFloat64
	KindBoxedBool
	KindBoxedInt
	KindBoxedInt64
	KindBoxedFloat64
	KindString
	KindEntry
	KindList
	KindMap
	KindMultimap
	KindSet
	KindObject
)

// NumKinds is the number of Kind values.
const NumKinds = int(KindObject) + 1

// A Type describes the static type of a stream element, map key or map value.
// Primitive types are never null.  Boxed and reference types are carried in
// an interface value and may be null.
type Type struct {
	kind Kind
	name string
	gen  string
}

var (
	TypeBool    = &Type{KindBool, "bool", "bool"}
	TypeInt     = &Type{KindInt, "int", "int"}
	TypeInt64   = &Type{KindInt64, "int64", "int64"}
	TypeFloat64 = &Type{KindFloat64, "float64", "float64"}

	TypeBoxedBool    = &Type{KindBoxedBool, "boxed(bool)", "any"}
	TypeBoxedInt     = &Type{KindBoxedInt, "boxed(int)", "any"}
	TypeBoxedInt64   = &Type{KindBoxedInt64, "boxed(int64)", "any"}
	TypeBoxedFloat64 = &Type{KindBoxedFloat64, "boxed(float64)", "any"}

	TypeString   = &Type{KindString, "string", "any"}
	TypeEntry    = &Type{KindEntry, "entry", "any"}
	TypeList     = &Type{KindList, "list", "[]any"}
	TypeMap      = &Type{KindMap, "map", "map[any]any"}
	TypeMultimap = &Type{KindMultimap, "multimap", "map[any][]any"}
	TypeSet      = &Type{KindSet, "set", "map[any]struct{}"}
	TypeObject   = &Type{KindObject, "object", "any"}
)

var boxing = map[Kind]*Type{
	KindBool:    TypeBoxedBool,
	KindInt:     TypeBoxedInt,
	KindInt64:   TypeBoxedInt64,
	KindFloat64: TypeBoxedFloat64,
}

var unboxing = map[Kind]*Type{
	KindBoxedBool:    TypeBool,
	KindBoxedInt:     TypeInt,
	KindBoxedInt64:   TypeInt64,
	KindBoxedFloat64: TypeFloat64,
}

func (t *Type) Kind() Kind {
	return t.kind
}

func (t *Type) String() string {
	return t.name
}

// GoType returns the spelling of the type in generated code.  Every boxed and
// reference type is carried as "any" except the container types, which are
// materialized with their concrete Go representation.
func (t *Type) GoType() string {
	return t.gen
}

func (t *Type) IsPrimitive() bool {
	return t.kind >= KindBool && t.kind <= KindFloat64
}

func (t *Type) IsBoxed() bool {
	return t.kind >= KindBoxedBool && t.kind <= KindBoxedFloat64
}

func (t *Type) IsReference() bool {
	return t.kind >= KindString
}

// IsNumeric is true for the primitive and boxed numeric kinds.
func (t *Type) IsNumeric() bool {
	switch t.kind {
	case KindInt, KindInt64, KindFloat64, KindBoxedInt, KindBoxedInt64, KindBoxedFloat64:
		return true
	}
	return false
}

// Boxed returns the boxed counterpart of a primitive type.  Boxed and
// reference types are returned unchanged.
func (t *Type) Boxed() *Type {
	if b, ok := boxing[t.kind]; ok {
		return b
	}
	return t
}

// Unboxed returns the primitive counterpart of a boxed type.  Primitive and
// reference types are returned unchanged.
func (t *Type) Unboxed() *Type {
	if u, ok := unboxing[t.kind]; ok {
		return u
	}
	return t
}

// Nullable reports whether values of this type can be null at all.
func (t *Type) Nullable() bool {
	return !t.IsPrimitive()
}

func LookupType(name string) (*Type, error) {
	for _, typ := range []*Type{
		TypeBool, TypeInt, TypeInt64, TypeFloat64,
		TypeBoxedBool, TypeBoxedInt, TypeBoxedInt64, TypeBoxedFloat64,
		TypeString, TypeEntry, TypeList, TypeMap, TypeMultimap, TypeSet, TypeObject,
	} {
		if typ.name == name {
			return typ, nil
		}
	}
	return nil, fmt.Errorf("no such type: %q", name)
}
