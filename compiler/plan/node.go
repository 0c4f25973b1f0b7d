package plan

import (
	"fmt"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/composite"
	"github.com/brimdata/zjit/tag"
	"golang.org/x/exp/slices"
)

// A Ref locates one captured parameter in the original chain: the index of
// the query node and the parameter slot within it.
type Ref struct {
	Node int
	Slot int
}

func (r Ref) String() string {
	return fmt.Sprintf("%d.%d", r.Node, r.Slot)
}

// Node is one operation in a plan.  It is both a link in the chain and a
// node in the tree whose inner nodes scope loop bodies.  Segment nodes live
// only in the tree and are never part of the chain.
type Node struct {
	Tag     *tag.Tag
	Params  []Ref
	Origins []int
	Elem    *zjit.Type
	// Real is set on nodes that survive into execution.
	Real bool
	// In and Out are the kinds of composite the node consumes and produces.
	In  composite.Kind
	Out composite.Kind
	// Props describes what the node produces.
	Props Shape

	plan     *Plan
	prev     *Node
	next     *Node
	parent   *Node
	children []*Node
	segment  bool
}

// NewNode creates a detached node.  It joins a plan through InsertBefore.
func NewNode(t *tag.Tag, params []Ref, origins []int) *Node {
	if t == nil {
		panic("plan: node with nil tag")
	}
	return &Node{Tag: t, Params: params, Origins: origins}
}

func (n *Node) Is(t *tag.Tag) bool {
	return n.Tag.Is(t)
}

func (n *Node) IsAnyOf(tags ...*tag.Tag) bool {
	return n.Tag.IsAnyOf(tags...)
}

func (n *Node) Previous() *Node {
	return n.prev
}

func (n *Node) Next() *Node {
	return n.next
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

func (n *Node) AppendChild(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) indexInParent() int {
	k := slices.Index(n.parent.children, n)
	if k < 0 {
		panic(fmt.Sprintf("plan: %s missing from its parent", n.Tag))
	}
	return k
}

// Remove splices n out of both the chain and the tree.  A chain end may go
// only once a node of the same role has been inserted next to it: a source
// after the head or a terminal before the tail.
func (n *Node) Remove() {
	p := n.plan
	switch {
	case n == p.head:
		if n.next == nil || !n.next.Tag.Is(p.Catalog.Source) {
			panic(fmt.Sprintf("plan: cannot remove chain end %s", n.Tag))
		}
		p.head = n.next
	case n == p.tail:
		if n.prev == nil || !n.prev.Tag.Is(p.Catalog.Terminal) {
			panic(fmt.Sprintf("plan: cannot remove chain end %s", n.Tag))
		}
		p.tail = n.prev
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if n.parent != nil {
		k := n.indexInParent()
		n.parent.children = slices.Delete(n.parent.children, k, k+1)
	}
	n.prev, n.next, n.parent = nil, nil, nil
	p.Modified()
}

// InsertBefore links the detached node x into the chain ahead of n and into
// the tree as n's preceding sibling.
func (n *Node) InsertBefore(x *Node) {
	if x.plan != nil {
		panic(fmt.Sprintf("plan: %s is already in a plan", x.Tag))
	}
	p := n.plan
	x.plan = p
	x.prev = n.prev
	x.next = n
	if n.prev != nil {
		n.prev.next = x
	} else {
		p.head = x
	}
	n.prev = x
	parent := n.parent
	k := n.indexInParent()
	parent.children = slices.Insert(parent.children, k, x)
	x.parent = parent
	p.Modified()
}

// InsertAfter links the detached node x into the chain after n and into the
// tree as n's following sibling.
func (n *Node) InsertAfter(x *Node) {
	if n.next == nil {
		panic(fmt.Sprintf("plan: cannot insert after chain end %s", n.Tag))
	}
	if x.plan != nil {
		panic(fmt.Sprintf("plan: %s is already in a plan", x.Tag))
	}
	p := n.plan
	x.plan = p
	x.prev = n
	x.next = n.next
	n.next.prev = x
	n.next = x
	parent := n.parent
	k := n.indexInParent()
	parent.children = slices.Insert(parent.children, k+1, x)
	x.parent = parent
	p.Modified()
}

// Ungroup dissolves the segment n, putting its children back in its place.
func (n *Node) Ungroup() {
	if !n.segment {
		panic("plan: ungrouping a chain node")
	}
	parent := n.parent
	k := n.indexInParent()
	for _, c := range n.children {
		c.parent = parent
	}
	parent.children = slices.Insert(slices.Delete(parent.children, k, k+1), k, n.children...)
	n.children = nil
	n.parent = nil
}

// Group moves the run of sibling nodes from first to last, inclusive, under
// a new segment node that takes their place in the tree.  The chain is left
// alone.
func (n *Node) Group(first, last *Node) *Node {
	if first.parent != n || last.parent != n {
		panic("plan: grouping nodes of another parent")
	}
	lo, hi := first.indexInParent(), last.indexInParent()
	if lo > hi {
		panic("plan: grouping a reversed run")
	}
	seg := &Node{Tag: n.plan.Catalog.Synthetic, plan: n.plan, parent: n, segment: true}
	seg.children = slices.Clone(n.children[lo : hi+1])
	for _, c := range seg.children {
		c.parent = seg
	}
	n.children = slices.Delete(n.children, lo+1, hi+1)
	n.children[lo] = seg
	return seg
}

// IsSegment reports whether n is a tree-only grouping node.
func (n *Node) IsSegment() bool {
	return n.segment
}

func (n *Node) String() string {
	if n.segment {
		return "segment"
	}
	return n.Tag.Name()
}
