// Package composite describes how the data flowing between two operations
// can currently be reached by generated code.  It decouples what an
// operation logically does from the physical traversal it compiles to, which
// is what lets several logical steps fuse into one loop.
//
// Composites are immutable values.  Rebinding an accessor or bounds always
// returns a new value.
package composite

import (
	"fmt"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/compiler/codegen"
)

type Kind int

const (
	KindBounded Kind = iota
	KindElement
	KindPair
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindBounded:
		return "bounded"
	case KindElement:
		return "element"
	case KindPair:
		return "pair"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Streaming reports whether composites of this kind exist only inside a
// materialized loop.
func (k Kind) Streaming() bool {
	return k == KindElement || k == KindPair
}

type Composite interface {
	Kind() Kind
}

// A Sink receives the statements and helper uses a composite operation
// needs to emit.
type Sink interface {
	Fresh(prefix string) string
	Emit(stmts ...codegen.Stmt)
	Use(helper string)
}

// Bounded is a slice together with symbolic lower and upper bounds.  When
// Immutable is set the slice belongs to the caller and must be copied before
// any in-place write.
type Bounded struct {
	Array     codegen.Expr
	Lower     codegen.Expr
	Upper     codegen.Expr
	Elem      *zjit.Type
	List      string
	Immutable bool
}

// NewBounded covers the whole of array, a slice of Go element type list.
func NewBounded(array codegen.Expr, elem *zjit.Type, list string, immutable bool) Bounded {
	return Bounded{
		Array:     array,
		Lower:     codegen.Lit(0),
		Upper:     codegen.CallOf("len", array),
		Elem:      elem,
		List:      list,
		Immutable: immutable,
	}
}

func (Bounded) Kind() Kind { return KindBounded }

func (b Bounded) Size() codegen.Expr {
	return codegen.FoldExpr(codegen.Bin("-", b.Upper, b.Lower))
}

func (b Bounded) IsEmpty() codegen.Expr {
	return codegen.FoldExpr(codegen.Bin("==", b.Upper, b.Lower))
}

func (b Bounded) WithBounds(lower, upper codegen.Expr) Bounded {
	b.Lower = lower
	b.Upper = upper
	return b
}

func (b Bounded) WithAccessor(array codegen.Expr) Bounded {
	b.Array = array
	return b
}

// Range is the slice expression array[lower:upper].
func (b Bounded) Range() codegen.Expr {
	return codegen.FoldExpr(&codegen.Slice{X: b.Array, Lo: b.Lower, Hi: b.Upper})
}

// At reads element i.  A primitive element stored in an []any slice is
// asserted back to its static type.
func (b Bounded) At(i codegen.Expr) codegen.Expr {
	var e codegen.Expr = &codegen.Index{X: b.Array, Index: i}
	if b.List == "any" && b.Elem.IsPrimitive() {
		e = &codegen.Cast{X: e, Type: b.Elem.GoType(), Assert: true}
	}
	return e
}

// Mutable reports whether the slice may be written in place: it is ours
// and holds boxed values.
func (b Bounded) Mutable() bool {
	return !b.Immutable && b.List == "any"
}

// CloneIfImmutable returns b when it is mutable and otherwise emits a copy of
// its live range into a fresh []any and returns a composite over the copy.
func (b Bounded) CloneIfImmutable(sink Sink) Bounded {
	if b.Mutable() {
		return b
	}
	name := sink.Fresh("clone")
	if b.List == "any" {
		sink.Use("cloneSlice")
		sink.Emit(codegen.Decl(name, codegen.CallOf("cloneSlice", b.Range())))
	} else {
		i := sink.Fresh("i")
		sink.Emit(
			codegen.Decl(name, &codegen.MakeSlice{Elem: "any", Cap: b.Size()}),
			&codegen.For{
				Init: codegen.Decl(i, b.Lower),
				Cond: codegen.Bin("<", codegen.Id(i), b.Upper),
				Post: codegen.Inc(codegen.Id(i), codegen.Lit(1)),
				Body: &codegen.Block{Stmts: []codegen.Stmt{
					codegen.Set(codegen.Id(name), codegen.CallOf("append", codegen.Id(name), &codegen.Index{X: b.Array, Index: codegen.Id(i)})),
				}},
			},
		)
	}
	return NewBounded(codegen.Id(name), b.Elem, "any", false)
}

// Element is the current element inside an active loop.
type Element struct {
	Value codegen.Expr
	Type  *zjit.Type
}

func (Element) Kind() Kind { return KindElement }

func (e Element) WithAccessor(value codegen.Expr, typ *zjit.Type) Element {
	return Element{Value: value, Type: typ}
}

// Pair is the current key and value inside an active loop over a map.  For
// a multimap Value is the whole value list of the key.
type Pair struct {
	Key       codegen.Expr
	Value     codegen.Expr
	KeyType   *zjit.Type
	ValueType *zjit.Type
	Multi     bool
}

func (Pair) Kind() Kind { return KindPair }

func (p Pair) WithValue(value codegen.Expr, typ *zjit.Type) Pair {
	p.Value = value
	p.ValueType = typ
	return p
}

// Map is a whole Go map, before any loop has been opened over it.
type Map struct {
	Map       codegen.Expr
	KeyType   *zjit.Type
	ValueType *zjit.Type
	Multi     bool
}

func (Map) Kind() Kind { return KindMap }

func (m Map) WithAccessor(e codegen.Expr) Map {
	m.Map = e
	return m
}

// UniqueKeys reports that the keys of a map composite are physically
// distinct.  Go maps guarantee this; the rewrite dropping distinct after
// keys relies on it and on nothing else.
func (m Map) UniqueKeys() bool {
	return true
}

// Size is the number of keys.
func (m Map) Size() codegen.Expr {
	return codegen.CallOf("len", m.Map)
}
