package cache

import (
	"github.com/brimdata/zjit/compiler"
	"github.com/brimdata/zjit/query"
	"github.com/segmentio/ksuid"
)

// A node is one vertex of the shape trie.  Children is indexed by tag type
// id and always has the same length, the number of ids in the catalog.
// Nodes are never modified once reachable from a published root.
type node struct {
	children []*node
	entry    *entry
}

// An entry is the payload of a trie node: either a promise that the shape
// is being compiled or the finished artifact, never both.
type entry struct {
	promise  *promise
	artifact *Artifact
}

type promise struct {
	done chan struct{}
}

// An Artifact is what the cache holds for one shape.  Program is nil when
// the compiler declined the shape and Processor is the interpreter.  Failure
// holds the error of a compile that went wrong; every lookup of the shape
// panics with it.
type Artifact struct {
	ID        ksuid.KSUID
	Processor query.Processor
	Program   *compiler.Program
	Failure   error
}

func (a *Artifact) Compiled() bool {
	return a.Program != nil
}

// lookup follows ids from n and returns the entry at the end of the path or
// nil.
func lookup(n *node, ids []int) *entry {
	for _, id := range ids {
		if n == nil {
			return nil
		}
		n = n.children[id]
	}
	if n == nil {
		return nil
	}
	return n.entry
}

// insert returns a new root equal to n except that the path along ids ends
// in e.  Only the nodes on the path are copied; everything else is shared
// with n.
func insert(n *node, width int, ids []int, e *entry) *node {
	out := &node{children: make([]*node, width)}
	if n != nil {
		copy(out.children, n.children)
		out.entry = n.entry
	}
	if len(ids) == 0 {
		out.entry = e
		return out
	}
	out.children[ids[0]] = insert(out.children[ids[0]], width, ids[1:], e)
	return out
}

// size counts the entries reachable from n.
func size(n *node) int {
	if n == nil {
		return 0
	}
	var count int
	if n.entry != nil {
		count++
	}
	for _, c := range n.children {
		count += size(c)
	}
	return count
}
