// Package query holds the operation chain built by the stream façade.  A chain
// is a linked list of Nodes rooted at a source and ending at exactly one
// Terminal, the only kind of node that is ever evaluated.
package query

import (
	"fmt"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/tag"
)

// Node is one operation instance.  Its parameters (captured predicates,
// comparators, limits, the source data itself) are opaque to the engine:
// generated code extracts them by position at execution time.
type Node struct {
	tag    *tag.Tag
	params []any
	elem   *zjit.Type
	prev   *Node
	next   *Node
}

// NewSource creates the root of a chain.  Elem is the declared static type of
// the elements, keys or values the source produces.
func NewSource(t *tag.Tag, elem *zjit.Type, data any) *Node {
	if t == nil {
		panic("query: source with nil tag")
	}
	if elem == nil {
		panic(fmt.Sprintf("query: source %s without an element type", t))
	}
	if data == nil {
		panic(fmt.Sprintf("query: source %s without data", t))
	}
	return &Node{tag: t, params: []any{data}, elem: elem}
}

// New appends an intermediate operation to prev.  The forward link of prev is
// overwritten, so a view that is extended twice keeps only its latest next
// link; evaluation always walks backwards from the terminal.
func New(prev *Node, t *tag.Tag, params ...any) *Node {
	if prev == nil {
		panic("query: node without a predecessor")
	}
	if t == nil {
		panic("query: node with nil tag")
	}
	for k, p := range params {
		if p == nil {
			panic(fmt.Sprintf("query: %s parameter %d is nil", t, k))
		}
	}
	n := &Node{tag: t, params: params, prev: prev}
	prev.next = n
	return n
}

func (n *Node) Tag() *tag.Tag {
	return n.tag
}

func (n *Node) Is(t *tag.Tag) bool {
	return n.tag.Is(t)
}

func (n *Node) Params() []any {
	return n.params
}

func (n *Node) Param(slot int) any {
	return n.params[slot]
}

// Elem returns the declared element type of a source node and nil otherwise.
func (n *Node) Elem() *zjit.Type {
	return n.elem
}

func (n *Node) Previous() *Node {
	return n.prev
}

func (n *Node) Next() *Node {
	return n.next
}

// TypeID is the cache key component of the node.
func (n *Node) TypeID() int {
	return n.tag.ID()
}

func (n *Node) String() string {
	return n.tag.Name()
}
