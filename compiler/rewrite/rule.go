// Package rewrite implements local pattern rules over a plan chain and the
// driver that applies them to a fixed point.  Every rule is a refactoring:
// it must leave the result of every chain it applies to unchanged.
package rewrite

import (
	"fmt"

	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/tag"
	"golang.org/x/exp/slices"
)

// A Rule tries to apply at node n and reports whether it changed the plan.
type Rule interface {
	Apply(p *plan.Plan, n *plan.Node) bool
	String() string
}

// A Predicate tests the context of a candidate node.
type Predicate func(n *plan.Node) bool

type eliminate struct {
	op   *tag.Tag
	pred Predicate
}

// Eliminate deletes a node that Is op whenever pred holds for it.
func Eliminate(op *tag.Tag, pred Predicate) Rule {
	return &eliminate{op: op, pred: pred}
}

func (r *eliminate) Apply(p *plan.Plan, n *plan.Node) bool {
	if !n.Is(r.op) || !r.pred(n) {
		return false
	}
	n.Remove()
	return true
}

func (r *eliminate) String() string {
	return fmt.Sprintf("eliminate(%s)", r.op)
}

type eliminate2 struct {
	a, b *tag.Tag
}

// Eliminate2 deletes an adjacent pair a, b that cancels out.
func Eliminate2(a, b *tag.Tag) Rule {
	return &eliminate2{a: a, b: b}
}

func (r *eliminate2) Apply(p *plan.Plan, n *plan.Node) bool {
	next, ok := pair(n, r.a, r.b)
	if !ok {
		return false
	}
	n.Remove()
	next.Remove()
	return true
}

func (r *eliminate2) String() string {
	return fmt.Sprintf("eliminate2(%s, %s)", r.a, r.b)
}

type replace2With1 struct {
	a, b, with *tag.Tag
}

// Replace2With1 collapses an adjacent pair a, b into one node carrying the
// parameters of a followed by those of b.
func Replace2With1(a, b, with *tag.Tag) Rule {
	return &replace2With1{a: a, b: b, with: with}
}

func (r *replace2With1) Apply(p *plan.Plan, n *plan.Node) bool {
	next, ok := pair(n, r.a, r.b)
	if !ok {
		return false
	}
	params := append(slices.Clone(n.Params), next.Params...)
	x := plan.NewNode(r.with, params, origins(n, next))
	n.InsertBefore(x)
	n.Remove()
	next.Remove()
	return true
}

func (r *replace2With1) String() string {
	return fmt.Sprintf("replace2With1(%s, %s -> %s)", r.a, r.b, r.with)
}

type replace2With2 struct {
	a, b, r1, r2 *tag.Tag
	swap         bool
}

// Replace2With2 replaces an adjacent pair a, b by r1, r2 where r1 takes the
// parameters of a and r2 those of b.
func Replace2With2(a, b, r1, r2 *tag.Tag) Rule {
	return &replace2With2{a: a, b: b, r1: r1, r2: r2}
}

// Replace2With2AndSwapParameters is Replace2With2 with r1 taking the
// parameters of b and r2 those of a.  It commutes a pair of operations.
func Replace2With2AndSwapParameters(a, b, r1, r2 *tag.Tag) Rule {
	return &replace2With2{a: a, b: b, r1: r1, r2: r2, swap: true}
}

func (r *replace2With2) Apply(p *plan.Plan, n *plan.Node) bool {
	next, ok := pair(n, r.a, r.b)
	if !ok {
		return false
	}
	first, second := n, next
	if r.swap {
		first, second = next, n
	}
	x1 := plan.NewNode(r.r1, slices.Clone(first.Params), slices.Clone(first.Origins))
	x2 := plan.NewNode(r.r2, slices.Clone(second.Params), slices.Clone(second.Origins))
	n.InsertBefore(x1)
	n.InsertBefore(x2)
	n.Remove()
	next.Remove()
	return true
}

func (r *replace2With2) String() string {
	name := "replace2With2"
	if r.swap {
		name = "replace2With2AndSwapParameters"
	}
	return fmt.Sprintf("%s(%s, %s -> %s, %s)", name, r.a, r.b, r.r1, r.r2)
}

// pair returns the successor of n when n Is a and the successor Is b.
func pair(n *plan.Node, a, b *tag.Tag) (*plan.Node, bool) {
	next := n.Next()
	if next == nil || !n.Is(a) || !next.Is(b) {
		return nil, false
	}
	return next, true
}

func origins(a, b *plan.Node) []int {
	return append(slices.Clone(a.Origins), b.Origins...)
}
