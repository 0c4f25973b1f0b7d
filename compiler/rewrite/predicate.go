package rewrite

import (
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/tag"
)

func Always(*plan.Node) bool {
	return true
}

func NextIsOneOf(tags ...*tag.Tag) Predicate {
	return func(n *plan.Node) bool {
		next := n.Next()
		return next != nil && next.IsAnyOf(tags...)
	}
}

func PreviousIsOneOf(tags ...*tag.Tag) Predicate {
	return func(n *plan.Node) bool {
		prev := n.Previous()
		return prev != nil && prev.IsAnyOf(tags...)
	}
}

// PreviousIs tests the element properties produced by the predecessor.
// Unknown properties never satisfy it.
func PreviousIs(pred func(plan.Properties) bool) Predicate {
	return func(n *plan.Node) bool {
		prev := n.Previous()
		if prev == nil || !prev.Props.Element.Known() {
			return false
		}
		return pred(prev.Props.Element)
	}
}

func Not(pred Predicate) Predicate {
	return func(n *plan.Node) bool {
		return !pred(n)
	}
}

func And(preds ...Predicate) Predicate {
	return func(n *plan.Node) bool {
		for _, pred := range preds {
			if !pred(n) {
				return false
			}
		}
		return true
	}
}

// Run is the first half of a NextIsZeroOrMoreOf predicate.
type Run struct {
	skip []*tag.Tag
}

// NextIsZeroOrMoreOf starts a predicate that skips any number of successors
// that are one of tags before testing the node that follows them.
func NextIsZeroOrMoreOf(tags ...*tag.Tag) Run {
	return Run{skip: tags}
}

func (r Run) FollowedByOneOf(tags ...*tag.Tag) Predicate {
	return func(n *plan.Node) bool {
		next := n.Next()
		for next != nil && next.IsAnyOf(r.skip...) {
			next = next.Next()
		}
		return next != nil && next.IsAnyOf(tags...)
	}
}
