// Package pipeline decides how a rewritten and analyzed plan executes.  Its
// passes pick a kernel variant for every node, group the nodes that share a
// loop under segment nodes, and insert the synthetic loop, collect and clone
// nodes the renderer needs.
package pipeline

import (
	"github.com/brimdata/zjit/compiler/kernel"
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/composite"
	zqe "github.com/brimdata/zjit/errors"
	"go.uber.org/zap"
)

type Pass struct {
	Name string
	Run  func(*plan.Plan, *kernel.Kernel) error
}

// Passes returns the passes in the order they must run.
func Passes() []Pass {
	return []Pass{
		{"markReal", markReal},
		{"groupSegments", groupSegments},
		{"introduceLoops", introduceLoops},
		{"introduceArrays", introduceArrays},
		{"simplifyReducers", simplifyReducers},
	}
}

// Run applies every pass to p.  An Unsupported error means the kernel has no
// way to execute the plan.
func Run(p *plan.Plan, k *kernel.Kernel, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, pass := range Passes() {
		if err := pass.Run(p, k); err != nil {
			return err
		}
		logger.Debug("pipeline", zap.String("pass", pass.Name), zap.Stringer("plan", p))
	}
	p.Check()
	return nil
}

// markReal flags the nodes that execute.  A real node without any kernel
// variant makes the whole plan unsupported.
func markReal(p *plan.Plan, k *kernel.Kernel) error {
	c := p.Catalog
	for n := p.Source(); n != nil; n = n.Next() {
		n.Real = !n.Is(c.Synthetic)
		if !n.Real || n.Is(c.Source) {
			continue
		}
		if !k.Supports(n.Tag) {
			return zqe.E(zqe.Unsupported, "%s cannot be compiled", n.Tag)
		}
	}
	return nil
}

// groupSegments picks the input kind of every node and groups each run of
// streaming nodes under a segment.  Intermediates stay on the kind they are
// handed when they can; terminals prefer to stream since simplifyReducers
// recovers the closed forms.
func groupSegments(p *plan.Plan, k *kernel.Kernel) error {
	src := p.Source()
	cur, err := k.SourceKind(src.Tag)
	if err != nil {
		return err
	}
	src.In, src.Out = cur, cur
	for n := src.Next(); n != nil; n = n.Next() {
		in, ok := choose(k, n, cur, n.Is(p.Catalog.Terminal))
		if !ok {
			return zqe.E(zqe.Unsupported, "%s has no variant reachable from %s", n.Tag, cur)
		}
		v, _ := k.Variant(n.Tag, in)
		n.In, n.Out = in, v.Out
		cur = n.Out
	}
	root := p.Root()
	var first, last *plan.Node
	for n := src.Next(); n != nil; n = n.Next() {
		if n.In.Streaming() {
			if first == nil {
				first = n
			}
			last = n
			continue
		}
		if first != nil {
			root.Group(first, last)
			first = nil
		}
	}
	if first != nil {
		root.Group(first, last)
	}
	return nil
}

// loopOf is the streaming kind a loop over cur produces.
func loopOf(cur composite.Kind) (composite.Kind, bool) {
	switch cur {
	case composite.KindBounded:
		return composite.KindElement, true
	case composite.KindMap:
		return composite.KindPair, true
	}
	return cur, false
}

func choose(k *kernel.Kernel, n *plan.Node, cur composite.Kind, terminal bool) (composite.Kind, bool) {
	stream, canLoop := loopOf(cur)
	if terminal && canLoop && k.Has(n.Tag, stream) {
		return stream, true
	}
	if k.Has(n.Tag, cur) {
		return cur, true
	}
	if canLoop && k.Has(n.Tag, stream) {
		return stream, true
	}
	if cur == composite.KindElement && k.Has(n.Tag, composite.KindBounded) {
		return composite.KindBounded, true
	}
	return cur, false
}

// introduceLoops opens a loop at the head of every segment.
func introduceLoops(p *plan.Plan, k *kernel.Kernel) error {
	c := p.Catalog
	for n := p.Source().Next(); n != nil; n = n.Next() {
		prev := n.Previous()
		if !n.In.Streaming() || prev.Out.Streaming() {
			continue
		}
		v, ok := k.Variant(c.Loop, prev.Out)
		if !ok || v.Out != n.In {
			return zqe.E(zqe.Unsupported, "no loop from %s to %s", prev.Out, n.In)
		}
		loop := plan.NewNode(c.Loop, nil, nil)
		loop.In, loop.Out = v.In, v.Out
		n.InsertBefore(loop)
	}
	return nil
}

// introduceArrays closes a segment with a collect wherever an array is needed
// after it and clones a caller-owned array ahead of any in-place operation.
func introduceArrays(p *plan.Plan, k *kernel.Kernel) error {
	c := p.Catalog
	var mutable bool
	for n := p.Source().Next(); n != nil; n = n.Next() {
		prev := n.Previous()
		if n.In == composite.KindBounded && prev.Out == composite.KindElement {
			collect := plan.NewNode(c.Collect, nil, nil)
			collect.In, collect.Out = composite.KindElement, composite.KindBounded
			prev.InsertAfter(collect)
			mutable = true
		}
		if n.In == composite.KindBounded && n.Is(c.Materializing) && !mutable {
			if !k.Has(c.Clone, composite.KindBounded) {
				return zqe.E(zqe.Unsupported, "no clone for %s", n.Tag)
			}
			clone := plan.NewNode(c.Clone, nil, nil)
			clone.In, clone.Out = composite.KindBounded, composite.KindBounded
			n.InsertBefore(clone)
			mutable = true
		}
	}
	return nil
}

// simplifyReducers turns a terminal whose segment does nothing but loop
// over its input back into the terminal's closed form over that input.
func simplifyReducers(p *plan.Plan, k *kernel.Kernel) error {
	for simplifyReducer(p, k) {
	}
	return nil
}

func simplifyReducer(p *plan.Plan, k *kernel.Kernel) bool {
	t := p.Terminal()
	seg := t.Parent()
	if !seg.IsSegment() || len(seg.Children()) != 2 {
		return false
	}
	loop := seg.FirstChild()
	if !loop.Is(p.Catalog.Loop) || !k.Has(t.Tag, loop.In) {
		return false
	}
	v, _ := k.Variant(t.Tag, loop.In)
	loop.Remove()
	seg.Ungroup()
	t.In, t.Out = v.In, v.Out
	return true
}
