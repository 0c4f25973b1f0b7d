// Package interp evaluates query chains directly, one element at a time,
// without compiling them.  It runs every shape the compiler gives up on and
// serves as the reference the compiled code is tested against, so it
// evaluates the chain exactly as built, with no rewriting.
package interp

import (
	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/compiler/semantic"
	zqe "github.com/brimdata/zjit/errors"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/runtime/builtin"
	"github.com/brimdata/zjit/tag"
	"go.uber.org/zap"
)

type Interpreter struct {
	catalog  *tag.Catalog
	analyzer *semantic.Analyzer
	logger   *zap.Logger
}

var _ query.Processor = (*Interpreter)(nil)

func New(c *tag.Catalog, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{
		catalog:  c,
		analyzer: semantic.Standard(c),
		logger:   logger,
	}
}

// Process evaluates t.  A chain the interpreter cannot make sense of is a
// caller bug and panics.
func (i *Interpreter) Process(t *query.Terminal) any {
	ops := t.Operations()
	c := i.catalog
	src := ops[0]
	if !src.Is(c.Source) {
		panic(zqe.E(zqe.Invalid, "chain starts with %s", src.Tag()))
	}
	multi := src.Is(c.MultimapSource)
	var (
		down     sink
		downPair pairSink
		result   func() any
	)
	if pt, ok := i.pairTerminal(&t.Node, multi); ok {
		downPair, result = pt, pt.result
	} else {
		term := i.terminal(t)
		down, result = term, term.result
	}
	for k := len(ops) - 2; k > 0; k-- {
		n := ops[k]
		switch {
		case n.Is(c.Keys) || n.Is(c.Values) || n.Is(c.Entries):
			downPair = i.view(n, down, multi)
			down = nil
		case downPair != nil:
			downPair = i.pairStage(n, downPair, multi)
		default:
			down = i.stage(n, down)
		}
		if down == nil && downPair == nil {
			panic(zqe.E(zqe.Invalid, "%s cannot follow %s", ops[k+1].Tag(), n.Tag()))
		}
	}
	i.logger.Debug("interpreting", zap.String("chain", tag.Format(t.Tags())))
	switch data := src.Param(0).(type) {
	case []any:
		drive(data, down)
	case []int:
		if down == nil {
			panic(zqe.E(zqe.Invalid, "%s over %s", t.Tag(), src.Tag()))
		}
		for _, v := range data {
			if !down.push(v) {
				break
			}
		}
		down.end()
	case map[any]any:
		drivePairs(data, downPair)
	case map[any][]any:
		if downPair == nil {
			panic(zqe.E(zqe.Invalid, "%s over %s", t.Tag(), src.Tag()))
		}
		for k, vs := range data {
			if !downPair.pushPair(k, vs) {
				break
			}
		}
		downPair.end()
	default:
		panic(zqe.E(zqe.Invalid, "%s source holds %T", src.Tag(), data))
	}
	return result()
}

func drive(data []any, s sink) {
	if s == nil {
		panic(zqe.E(zqe.Invalid, "slice source feeding a map view"))
	}
	for _, v := range data {
		if !s.push(v) {
			break
		}
	}
	s.end()
}

func drivePairs(data map[any]any, s pairSink) {
	if s == nil {
		panic(zqe.E(zqe.Invalid, "map source feeding a collection view"))
	}
	for k, v := range data {
		if !s.pushPair(k, v) {
			break
		}
	}
	s.end()
}

func (i *Interpreter) terminal(t *query.Terminal) terminal {
	c := i.catalog
	switch t.Tag() {
	case c.Count:
		return counter()
	case c.ToList:
		return toList()
	case c.ToSet:
		return toSet()
	case c.Sum:
		return sum(i.sumType(t))
	case c.Min:
		return best(-1)
	case c.Max:
		return best(1)
	case c.AnyMatch:
		return match(t.Param(0).(func(any) bool), false, true)
	case c.AllMatch:
		return match(t.Param(0).(func(any) bool), true, false)
	case c.NoneMatch:
		return match(t.Param(0).(func(any) bool), false, false)
	case c.FindFirst:
		return findFirst()
	case c.Reduce:
		return reduce(t.Param(0).(func(any, any) any))
	case c.ForEach:
		return forEach(t.Param(0).(func(any)))
	case c.GroupBy:
		return groupBy(t.Param(0).(func(any) any))
	case c.ToMap:
		return toMap(t.Param(0).(func(any) any), t.Param(1).(func(any) any))
	}
	panic(zqe.E(zqe.Invalid, "%s is not a collection terminal", t.Tag()))
}

func (i *Interpreter) pairTerminal(n *query.Node, multi bool) (pairTerminal, bool) {
	switch n.Tag() {
	case i.catalog.Size:
		return &pairCounter{}, true
	case i.catalog.MultimapValueCount:
		return &pairCounter{multi: multi}, true
	}
	return nil, false
}

// sumType runs the analyzer over the unrewritten chain so an interpreted sum
// has the type a compiled one would.
func (i *Interpreter) sumType(t *query.Terminal) *zjit.Type {
	p := plan.New(i.catalog, t)
	i.analyzer.Analyze(p)
	if typ := p.Terminal().Props.Result; typ != nil {
		return typ
	}
	return zjit.TypeFloat64
}

func (i *Interpreter) stage(n *query.Node, next sink) sink {
	if next == nil {
		return nil
	}
	c := i.catalog
	switch n.Tag() {
	case c.Filter, c.FilterNulls:
		pred := isNotNil
		if n.Is(c.Filter) {
			pred = n.Param(0).(func(any) bool)
		}
		return &filter{next: next, pred: pred}
	case c.Map:
		return &mapper{next: next, fn: n.Param(0).(func(any) any)}
	case c.MapToInt:
		fn := n.Param(0).(func(any) int)
		return &mapper{next: next, fn: func(v any) any { return fn(v) }}
	case c.MapToLong:
		fn := n.Param(0).(func(any) int64)
		return &mapper{next: next, fn: func(v any) any { return fn(v) }}
	case c.MapToDouble:
		fn := n.Param(0).(func(any) float64)
		return &mapper{next: next, fn: func(v any) any { return fn(v) }}
	case c.Boxed:
		return &mapper{next: next, fn: func(v any) any { return v }}
	case c.FlatMap:
		return &flatMapper{next: next, fn: n.Param(0).(func(any) []any)}
	case c.Distinct:
		return &distinct{next: next, seen: make(map[any]struct{})}
	case c.SortedNatural:
		return &buffer{next: next, reorder: builtin.SortNatural}
	case c.SortedNaturalReverse:
		return &buffer{next: next, reorder: builtin.SortNaturalReverse}
	case c.SortedBy:
		return &buffer{next: next, reorder: sortBy(n.Param(0).(func(any, any) int))}
	case c.Reverse:
		return &buffer{next: next, reorder: builtin.ReverseSlice}
	case c.Limit:
		return &limit{next: next, n: n.Param(0).(int)}
	case c.Skip:
		return &skip{next: next, n: n.Param(0).(int)}
	case c.TakeWhile:
		return &takeWhile{next: next, pred: n.Param(0).(func(any) bool)}
	case c.Peek:
		return &peek{next: next, fn: n.Param(0).(func(any))}
	}
	return nil
}

func (i *Interpreter) view(n *query.Node, next sink, multi bool) pairSink {
	if next == nil {
		return nil
	}
	switch {
	case n.Is(i.catalog.Keys):
		return &keys{next: next}
	case n.Is(i.catalog.Values):
		return &values{next: next, multi: multi}
	default:
		return &entries{next: next, multi: multi}
	}
}

func (i *Interpreter) pairStage(n *query.Node, next pairSink, multi bool) pairSink {
	c := i.catalog
	switch n.Tag() {
	case c.FilterKeys:
		return &filterKeys{next: next, pred: n.Param(0).(func(any) bool)}
	case c.FilterValues:
		return &filterValues{next: next, pred: n.Param(0).(func(any) bool), multi: multi}
	case c.MapEachValue:
		return &mapEachValue{next: next, fn: n.Param(0).(func(any) any), multi: multi}
	}
	return nil
}

func isNotNil(v any) bool {
	return v != nil
}
