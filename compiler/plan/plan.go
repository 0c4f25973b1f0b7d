// Package plan holds the transient tree built for one compile attempt.  A
// Plan starts as a copy of a query chain and is then rewritten, analyzed and
// grouped in place; nothing in it outlives the compile.
package plan

import (
	"fmt"
	"strings"

	"github.com/brimdata/zjit/compiler/codegen"
	"github.com/brimdata/zjit/query"
	"github.com/brimdata/zjit/tag"
)

type Plan struct {
	Catalog *tag.Catalog
	// Original is the tag sequence of the chain as the caller built it.
	Original []*tag.Tag
	// Body accumulates generated statements and Imports the packages they
	// need.
	Body    *codegen.Block
	Imports map[string]bool
	// Mods counts structural changes and is how rewriting detects that a
	// pass converged.
	Mods     int
	Analyzed bool

	root *Node
	head *Node
	tail *Node
}

// New copies the chain ending at t into a fresh plan.  Every plan node
// starts as a direct child of the root.
func New(c *tag.Catalog, t *query.Terminal) *Plan {
	p := &Plan{
		Catalog: c,
		Body:    &codegen.Block{},
		Imports: make(map[string]bool),
	}
	p.root = &Node{Tag: c.Operation, plan: p}
	for k, op := range t.Operations() {
		n := &Node{
			Tag:     op.Tag(),
			Elem:    op.Elem(),
			Origins: []int{k},
		}
		for slot := range op.Params() {
			n.Params = append(n.Params, Ref{Node: k, Slot: slot})
		}
		p.Original = append(p.Original, op.Tag())
		p.append(n)
	}
	return p
}

func (p *Plan) append(n *Node) {
	n.plan = p
	if p.tail == nil {
		p.head = n
	} else {
		p.tail.next = n
		n.prev = p.tail
	}
	p.tail = n
	p.root.AppendChild(n)
}

func (p *Plan) Root() *Node {
	return p.root
}

// Source is the first node of the chain.
func (p *Plan) Source() *Node {
	return p.head
}

// Terminal is the last node of the chain.
func (p *Plan) Terminal() *Node {
	return p.tail
}

// Nodes returns the chain in order.
func (p *Plan) Nodes() []*Node {
	var nodes []*Node
	for n := p.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}
	return nodes
}

// Tags returns the current tag sequence of the chain.
func (p *Plan) Tags() []*tag.Tag {
	var tags []*tag.Tag
	for n := p.head; n != nil; n = n.next {
		tags = append(tags, n.Tag)
	}
	return tags
}

// Real returns the tags of the nodes that survive into execution.
func (p *Plan) Real() []*tag.Tag {
	var tags []*tag.Tag
	for n := p.head; n != nil; n = n.next {
		if n.Real {
			tags = append(tags, n.Tag)
		}
	}
	return tags
}

func (p *Plan) String() string {
	return tag.Format(p.Tags())
}

// Tree renders the plan tree one node per line, indented by depth, with the
// composite kinds each chain node consumes and produces.
func (p *Plan) Tree() string {
	var b strings.Builder
	var walk func(*Node, int)
	walk = func(n *Node, depth int) {
		for _, c := range n.children {
			b.WriteString(strings.Repeat("  ", depth))
			b.WriteString(c.String())
			if !c.segment {
				fmt.Fprintf(&b, " %s->%s", c.In, c.Out)
			}
			b.WriteByte('\n')
			walk(c, depth+1)
		}
	}
	walk(p.root, 0)
	return b.String()
}

// Modified records a structural change.
func (p *Plan) Modified() {
	p.Mods++
}

// Check verifies the chain and tree links agree.  It panics on the first
// inconsistency found since a broken plan is always a compiler defect.
func (p *Plan) Check() {
	if p.head == nil || p.head.prev != nil || p.tail.next != nil {
		panic("plan: chain has no proper ends")
	}
	if !p.head.Tag.Is(p.Catalog.Source) {
		panic(fmt.Sprintf("plan: chain starts with %s", p.head.Tag))
	}
	if !p.tail.Tag.Is(p.Catalog.Terminal) {
		panic(fmt.Sprintf("plan: chain ends with %s", p.tail.Tag))
	}
	for n := p.head; n != nil; n = n.next {
		if n.next != nil && n.next.prev != n {
			panic(fmt.Sprintf("plan: broken link after %s", n.Tag))
		}
		if n.parent == nil {
			panic(fmt.Sprintf("plan: %s is not in the tree", n.Tag))
		}
	}
}
