// Package semantic propagates static element, key and value properties along
// a plan.  Each node's output depends only on its own tag and its
// predecessor's output, so one linear pass from the source to the terminal
// is enough.
package semantic

import (
	"github.com/brimdata/zjit/compiler/plan"
	"github.com/brimdata/zjit/tag"
)

// A Transfer reads the predecessor's output and updates the node's output.
// Out starts as a copy of in with the node's own view filled in.
type Transfer func(in plan.Shape, out *plan.Shape, n *plan.Node)

type entry struct {
	tag  *tag.Tag
	from tag.View
	to   tag.View
	fn   Transfer
}

// Analyzer is a registry of transfer functions keyed by tag and by the views
// on either side of a transition.  It is built once and shared.
type Analyzer struct {
	catalog *tag.Catalog
	entries []entry
}

func New(c *tag.Catalog) *Analyzer {
	return &Analyzer{catalog: c}
}

// Register adds fn for nodes whose tag Is t, whose predecessor produces from
// and which themselves produce to.  ViewAny matches every view.
func (a *Analyzer) Register(t *tag.Tag, from, to tag.View, fn Transfer) {
	if t == nil || fn == nil {
		panic("semantic: incomplete transfer registration")
	}
	a.entries = append(a.entries, entry{tag: t, from: from, to: to, fn: fn})
}

func match(want, got tag.View) bool {
	return want == tag.ViewAny || want == got
}

// Analyze computes Props for every node of p in chain order.  Every
// matching transfer is applied in registration order.
func (a *Analyzer) Analyze(p *plan.Plan) {
	var in plan.Shape
	for n := p.Source(); n != nil; n = n.Next() {
		out := in
		out.Result = nil
		if v := a.catalog.View(n.Tag); v != tag.ViewAny {
			out.View = v
		}
		for _, e := range a.entries {
			if n.Is(e.tag) && match(e.from, in.View) && match(e.to, out.View) {
				e.fn(in, &out, n)
			}
		}
		n.Props = out
		in = out
	}
	p.Analyzed = true
}

// Standard returns an analyzer loaded with the standard transfer set.
func Standard(c *tag.Catalog) *Analyzer {
	a := New(c)
	registerStandard(a, c)
	return a
}
