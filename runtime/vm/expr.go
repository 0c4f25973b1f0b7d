package vm

import (
	"fmt"
	"reflect"
)

type Evaluator interface {
	Eval(*Frame) any
}

type Literal struct {
	value any
}

func (l *Literal) Eval(*Frame) any {
	return l.value
}

type Local struct {
	slot int
}

func (l *Local) Eval(f *Frame) any {
	return f.locals[l.slot]
}

// Params is the []any argument of the compiled function.
type Params struct{}

func (*Params) Eval(f *Frame) any {
	return f.params
}

type Not struct {
	expr Evaluator
}

func (n *Not) Eval(f *Frame) any {
	return !n.expr.Eval(f).(bool)
}

type Neg struct {
	expr Evaluator
}

func (n *Neg) Eval(f *Frame) any {
	switch v := n.expr.Eval(f).(type) {
	case int:
		return -v
	case int64:
		return -v
	case float64:
		return -v
	default:
		panic(fmt.Sprintf("vm: cannot negate %T", v))
	}
}

type And struct {
	lhs Evaluator
	rhs Evaluator
}

func (a *And) Eval(f *Frame) any {
	return a.lhs.Eval(f).(bool) && a.rhs.Eval(f).(bool)
}

type Or struct {
	lhs Evaluator
	rhs Evaluator
}

func (o *Or) Eval(f *Frame) any {
	return o.lhs.Eval(f).(bool) || o.rhs.Eval(f).(bool)
}

type IsNil struct {
	expr   Evaluator
	negate bool
}

func (n *IsNil) Eval(f *Frame) any {
	return (n.expr.Eval(f) == nil) != n.negate
}

type Equal struct {
	lhs    Evaluator
	rhs    Evaluator
	negate bool
}

func (e *Equal) Eval(f *Frame) any {
	return (e.lhs.Eval(f) == e.rhs.Eval(f)) != e.negate
}

// Compare is an ordered comparison.  Both sides always have the same
// dynamic type in generated code.
type Compare struct {
	op  string
	lhs Evaluator
	rhs Evaluator
}

func (c *Compare) Eval(f *Frame) any {
	cmp := compare(c.lhs.Eval(f), c.rhs.Eval(f))
	switch c.op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	default:
		return cmp >= 0
	}
}

func compare(a, b any) int {
	switch a := a.(type) {
	case int:
		return order(a, b.(int))
	case int64:
		return order(a, b.(int64))
	case float64:
		return order(a, b.(float64))
	case string:
		return order(a, b.(string))
	}
	panic(fmt.Sprintf("vm: cannot order %T and %T", a, b))
}

func order[T int | int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type Arith struct {
	op  string
	lhs Evaluator
	rhs Evaluator
}

func (a *Arith) Eval(f *Frame) any {
	return arith(a.op, a.lhs.Eval(f), a.rhs.Eval(f))
}

func arith(op string, a, b any) any {
	switch a := a.(type) {
	case int:
		return apply(op, a, b.(int))
	case int64:
		return apply(op, a, b.(int64))
	case float64:
		return apply(op, a, b.(float64))
	}
	panic(fmt.Sprintf("vm: no arithmetic on %T", a))
}

func apply[T int | int64 | float64](op string, a, b T) T {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	}
	panic(fmt.Sprintf("vm: unknown operator %q", op))
}

type Index struct {
	container Evaluator
	index     Evaluator
}

func (i *Index) Eval(f *Frame) any {
	key := i.index.Eval(f)
	switch c := i.container.Eval(f).(type) {
	case []any:
		return c[key.(int)]
	case []int:
		return c[key.(int)]
	case [2]any:
		return c[key.(int)]
	case map[any]any:
		return c[key]
	case map[any]bool:
		return c[key]
	case map[any][]any:
		return c[key]
	case map[any]struct{}:
		return c[key]
	case nil:
		panic("vm: index of nil")
	default:
		v := reflect.ValueOf(c)
		if v.Kind() == reflect.Map {
			val := v.MapIndex(reflect.ValueOf(key))
			if !val.IsValid() {
				return reflect.Zero(v.Type().Elem()).Interface()
			}
			return val.Interface()
		}
		return v.Index(key.(int)).Interface()
	}
}

// store writes v at c[key].
func store(c, key, v any) {
	switch c := c.(type) {
	case []any:
		c[key.(int)] = v
	case []int:
		c[key.(int)] = v.(int)
	case map[any]any:
		c[key] = v
	case map[any]bool:
		c[key] = v.(bool)
	case map[any][]any:
		c[key] = v.([]any)
	case map[any]struct{}:
		c[key] = struct{}{}
	default:
		rv := reflect.ValueOf(c)
		if rv.Kind() != reflect.Map {
			panic(fmt.Sprintf("vm: cannot store into %T", c))
		}
		rv.SetMapIndex(reflect.ValueOf(key), reflect.ValueOf(v))
	}
}

type SliceExpr struct {
	x  Evaluator
	lo Evaluator
	hi Evaluator
}

func (s *SliceExpr) Eval(f *Frame) any {
	x := s.x.Eval(f)
	lo := 0
	if s.lo != nil {
		lo = s.lo.Eval(f).(int)
	}
	switch x := x.(type) {
	case []any:
		hi := len(x)
		if s.hi != nil {
			hi = s.hi.Eval(f).(int)
		}
		return x[lo:hi]
	case []int:
		hi := len(x)
		if s.hi != nil {
			hi = s.hi.Eval(f).(int)
		}
		return x[lo:hi]
	}
	panic(fmt.Sprintf("vm: cannot slice %T", x))
}

type Len struct {
	expr Evaluator
}

func (l *Len) Eval(f *Frame) any {
	switch v := l.expr.Eval(f).(type) {
	case []any:
		return len(v)
	case []int:
		return len(v)
	case map[any]any:
		return len(v)
	case map[any][]any:
		return len(v)
	case map[any]bool:
		return len(v)
	case map[any]struct{}:
		return len(v)
	case string:
		return len(v)
	case nil:
		return 0
	default:
		return reflect.ValueOf(v).Len()
	}
}

type Append struct {
	slice Evaluator
	elems []Evaluator
}

func (a *Append) Eval(f *Frame) any {
	switch s := a.slice.Eval(f).(type) {
	case []any:
		for _, e := range a.elems {
			s = append(s, e.Eval(f))
		}
		return s
	case []int:
		for _, e := range a.elems {
			s = append(s, e.Eval(f).(int))
		}
		return s
	case nil:
		var out []any
		for _, e := range a.elems {
			out = append(out, e.Eval(f))
		}
		return out
	default:
		panic(fmt.Sprintf("vm: cannot append to %T", s))
	}
}

// Call invokes a function value.  The signatures generated code uses are
// called directly; anything else goes through reflection.
type Call struct {
	fn   Evaluator
	args []Evaluator
}

func (c *Call) Eval(f *Frame) any {
	fn := c.fn.Eval(f)
	args := make([]any, len(c.args))
	for k, a := range c.args {
		args[k] = a.Eval(f)
	}
	return call(fn, args)
}

func call(fn any, args []any) any {
	switch fn := fn.(type) {
	case func(any) bool:
		return fn(args[0])
	case func(any) any:
		return fn(args[0])
	case func(any) int:
		return fn(args[0])
	case func(any) int64:
		return fn(args[0])
	case func(any) float64:
		return fn(args[0])
	case func(any) []any:
		return fn(args[0])
	case func(any):
		fn(args[0])
		return nil
	case func(any, any) int:
		return fn(args[0], args[1])
	case func(any, any) any:
		return fn(args[0], args[1])
	case func([]any):
		fn(args[0].([]any))
		return nil
	case func([]any) []any:
		return fn(args[0].([]any))
	case func([]any, func(any, any) int):
		fn(args[0].([]any), args[1].(func(any, any) int))
		return nil
	case func(int, int) int:
		return fn(args[0].(int), args[1].(int))
	case nil:
		panic("vm: call of nil function")
	}
	return callReflect(fn, args)
}

func callReflect(fn any, args []any) any {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("vm: cannot call %T", fn))
	}
	typ := v.Type()
	in := make([]reflect.Value, len(args))
	for k, a := range args {
		if a == nil {
			in[k] = reflect.Zero(typ.In(k))
		} else {
			in[k] = reflect.ValueOf(a)
		}
	}
	out := v.Call(in)
	if len(out) == 0 {
		return nil
	}
	return out[0].Interface()
}

type Assert struct {
	expr  Evaluator
	typ   string
	check func(any) bool
}

func (a *Assert) Eval(f *Frame) any {
	v := a.expr.Eval(f)
	if !a.check(v) {
		panic(fmt.Sprintf("interface conversion: interface {} is %T, not %s", v, a.typ))
	}
	return v
}

type Convert struct {
	expr Evaluator
	typ  string
}

func (c *Convert) Eval(f *Frame) any {
	return convert(c.typ, c.expr.Eval(f))
}

type MakeSlice struct {
	elem string
	cap  Evaluator
}

func (m *MakeSlice) Eval(f *Frame) any {
	n := 0
	if m.cap != nil {
		n = m.cap.Eval(f).(int)
	}
	s, err := makeSlice(m.elem, n)
	if err != nil {
		panic(err)
	}
	return s
}

type MakeMap struct {
	make func() any
}

func (m *MakeMap) Eval(*Frame) any {
	return m.make()
}

type SliceLit struct {
	elems []Evaluator
}

func (s *SliceLit) Eval(f *Frame) any {
	out := make([]any, len(s.elems))
	for k, e := range s.elems {
		out[k] = e.Eval(f)
	}
	return out
}

type PairLit struct {
	key   Evaluator
	value Evaluator
}

func (p *PairLit) Eval(f *Frame) any {
	return [2]any{p.key.Eval(f), p.value.Eval(f)}
}
