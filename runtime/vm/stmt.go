package vm

import (
	"fmt"
	"reflect"
)

// flow says how control leaves a statement.
type flow int

const (
	next flow = iota
	breaking
	continuing
	returning
)

type Stmt interface {
	Exec(*Frame) (flow, string)
}

type Declare struct {
	slot int
	expr Evaluator
}

func (d *Declare) Exec(f *Frame) (flow, string) {
	f.locals[d.slot] = d.expr.Eval(f)
	return next, ""
}

// Store is an assignment to a local.  Op is "=", "+=" or "-=".
type Store struct {
	slot int
	op   string
	expr Evaluator
}

func (s *Store) Exec(f *Frame) (flow, string) {
	v := s.expr.Eval(f)
	if s.op != "=" {
		v = arith(s.op[:1], f.locals[s.slot], v)
	}
	f.locals[s.slot] = v
	return next, ""
}

type IndexStore struct {
	container Evaluator
	index     Evaluator
	op        string
	expr      Evaluator
}

func (s *IndexStore) Exec(f *Frame) (flow, string) {
	c := s.container.Eval(f)
	key := s.index.Eval(f)
	v := s.expr.Eval(f)
	if s.op != "=" {
		v = arith(s.op[:1], (&Index{&Literal{c}, &Literal{key}}).Eval(f), v)
	}
	store(c, key, v)
	return next, ""
}

type Expr struct {
	expr Evaluator
}

func (e *Expr) Exec(f *Frame) (flow, string) {
	e.expr.Eval(f)
	return next, ""
}

type Block struct {
	stmts []Stmt
}

func (b *Block) Exec(f *Frame) (flow, string) {
	for _, s := range b.stmts {
		if fl, label := s.Exec(f); fl != next {
			return fl, label
		}
	}
	return next, ""
}

type If struct {
	cond Evaluator
	then *Block
	els  *Block
}

func (i *If) Exec(f *Frame) (flow, string) {
	if i.cond.Eval(f).(bool) {
		return i.then.Exec(f)
	}
	if i.els != nil {
		return i.els.Exec(f)
	}
	return next, ""
}

type Return struct {
	expr Evaluator
}

func (r *Return) Exec(f *Frame) (flow, string) {
	if r.expr != nil {
		f.result = r.expr.Eval(f)
	}
	return returning, ""
}

type Branch struct {
	flow  flow
	label string
}

func (b *Branch) Exec(*Frame) (flow, string) {
	return b.flow, b.label
}

// label is the label of a loop, possibly empty.
type label string

// exit resolves a flow out of one iteration of the loop.  It reports whether
// the loop must stop and, if so, the flow to propagate.
func (l label) exit(fl flow, target string) (bool, flow, string) {
	mine := target == "" || target == string(l)
	switch fl {
	case breaking:
		if mine {
			return true, next, ""
		}
		return true, fl, target
	case continuing:
		if mine {
			return false, next, ""
		}
		return true, fl, target
	case returning:
		return true, fl, ""
	}
	return false, next, ""
}

type For struct {
	label string
	init  Stmt
	cond  Evaluator
	post  Stmt
	body  *Block
}

func (l *For) Exec(f *Frame) (flow, string) {
	if l.init != nil {
		l.init.Exec(f)
	}
	for l.cond == nil || l.cond.Eval(f).(bool) {
		if stop, fl, target := label(l.label).exit(l.body.Exec(f)); stop {
			return fl, target
		}
		if l.post != nil {
			l.post.Exec(f)
		}
	}
	return next, ""
}

// Range iterates a slice or a map.  A slot of -1 discards that variable.
type Range struct {
	label string
	key   int
	value int
	x     Evaluator
	body  *Block
}

func (r *Range) bind(f *Frame, k, v any) {
	if r.key >= 0 {
		f.locals[r.key] = k
	}
	if r.value >= 0 {
		f.locals[r.value] = v
	}
}

func (r *Range) Exec(f *Frame) (flow, string) {
	switch x := r.x.Eval(f).(type) {
	case []any:
		for k, v := range x {
			r.bind(f, k, v)
			if stop, fl, target := label(r.label).exit(r.body.Exec(f)); stop {
				return fl, target
			}
		}
	case []int:
		for k, v := range x {
			r.bind(f, k, v)
			if stop, fl, target := label(r.label).exit(r.body.Exec(f)); stop {
				return fl, target
			}
		}
	case map[any]any:
		for k, v := range x {
			r.bind(f, k, v)
			if stop, fl, target := label(r.label).exit(r.body.Exec(f)); stop {
				return fl, target
			}
		}
	case map[any][]any:
		for k, v := range x {
			r.bind(f, k, v)
			if stop, fl, target := label(r.label).exit(r.body.Exec(f)); stop {
				return fl, target
			}
		}
	case nil:
	default:
		rv := reflect.ValueOf(x)
		if rv.Kind() != reflect.Map {
			panic(fmt.Sprintf("vm: cannot range over %T", x))
		}
		it := rv.MapRange()
		for it.Next() {
			r.bind(f, it.Key().Interface(), it.Value().Interface())
			if stop, fl, target := label(r.label).exit(r.body.Exec(f)); stop {
				return fl, target
			}
		}
	}
	return next, ""
}
