package query

import (
	"fmt"
	"sync/atomic"

	"github.com/brimdata/zjit/tag"
)

// A Processor evaluates a terminal.  Compiled programs, the interpreter and
// cached artifacts all implement Processor.
type Processor interface {
	Process(*Terminal) any
}

type ProcessorFunc func(*Terminal) any

func (f ProcessorFunc) Process(t *Terminal) any {
	return f(t)
}

// Terminal is the node a result-producing call targets.  It owns the
// processor attached to it and reconstructs the full chain on demand.
type Terminal struct {
	Node
	processor atomic.Value
}

func NewTerminal(prev *Node, t *tag.Tag, params ...any) *Terminal {
	n := New(prev, t, params...)
	term := &Terminal{Node: *n}
	prev.next = &term.Node
	return term
}

// Operations returns the chain from the source to this terminal.  The chain is
// counted first and then filled from the back so the result is allocated
// exactly once.
func (t *Terminal) Operations() []*Node {
	var count int
	for n := &t.Node; n != nil; n = n.prev {
		count++
	}
	ops := make([]*Node, count)
	for n := &t.Node; n != nil; n = n.prev {
		count--
		ops[count] = n
	}
	return ops
}

// Tags returns the tag sequence of the chain from source to terminal.
func (t *Terminal) Tags() []*tag.Tag {
	ops := t.Operations()
	tags := make([]*tag.Tag, len(ops))
	for k, n := range ops {
		tags[k] = n.tag
	}
	return tags
}

// Source returns the node the chain starts at.
func (t *Terminal) Source() *Node {
	n := &t.Node
	for n.prev != nil {
		n = n.prev
	}
	return n
}

// Shape returns the type ids of the chain read from the terminal back to the
// source, the order in which the compilation cache walks its trie.  The
// element type of the source is not part of it.
func (t *Terminal) Shape() []int {
	var ids []int
	for n := &t.Node; n != nil; n = n.prev {
		ids = append(ids, n.TypeID())
	}
	return ids
}

func (t *Terminal) Attach(p Processor) {
	if p == nil {
		panic("query: nil processor")
	}
	t.processor.Store(holder{p})
}

func (t *Terminal) Processor() Processor {
	if h, ok := t.processor.Load().(holder); ok {
		return h.Processor
	}
	return nil
}

// Process is the single evaluation entry point.  It panics if no processor
// has been attached.
func (t *Terminal) Process() any {
	p := t.Processor()
	if p == nil {
		panic(fmt.Sprintf("query: terminal %s has no processor", t.tag))
	}
	return p.Process(t)
}

// holder gives atomic.Value a single concrete type to store.
type holder struct {
	Processor
}
