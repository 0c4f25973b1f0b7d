// Package tag implements the hierarchical operation tags that describe what a
// query node does.  Every rewrite rule match and every analyzer lookup is
// driven by Tag.Is.
package tag

import (
	"fmt"
	"strings"
)

// A Tag is either an ordinary tag with zero or more parents or an aggregate,
// a virtual grouping that is satisfied by membership rather than parentage.
// Is is reflexive and transitive but not symmetric: an aggregate does not Is
// any one of its members while every member Is the aggregate.
type Tag struct {
	name    string
	id      int
	parents []*Tag
	members []*Tag
}

func (t *Tag) Name() string {
	return t.name
}

func (t *Tag) String() string {
	return t.name
}

// ID returns the dense type id of an ordinary tag or -1 for an aggregate.
func (t *Tag) ID() int {
	return t.id
}

func (t *Tag) IsAggregate() bool {
	return t.id < 0
}

func (t *Tag) Parents() []*Tag {
	return t.parents
}

func (t *Tag) Members() []*Tag {
	return t.members
}

func (t *Tag) Is(other *Tag) bool {
	if t == other {
		return true
	}
	if other == nil {
		return false
	}
	for _, m := range other.members {
		if t.Is(m) {
			return true
		}
	}
	for _, p := range t.parents {
		if p.Is(other) {
			return true
		}
	}
	return false
}

func (t *Tag) IsAnyOf(others ...*Tag) bool {
	for _, o := range others {
		if t.Is(o) {
			return true
		}
	}
	return false
}

// Registry allocates tags and their type ids.  A registry is built once at
// startup, frozen, and then shared read-only by every compile.
type Registry struct {
	tags   []*Tag
	byName map[string]*Tag
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Tag)}
}

// Of declares an ordinary tag.  It panics on a duplicate name, a nil parent,
// or a frozen registry since these are programming errors in the catalog.
func (r *Registry) Of(name string, parents ...*Tag) *Tag {
	r.check(name, parents)
	t := &Tag{name: name, id: len(r.tags), parents: parents}
	r.tags = append(r.tags, t)
	r.byName[name] = t
	return t
}

// Aggregate declares a grouping tag satisfied by any of its members.
func (r *Registry) Aggregate(name string, members ...*Tag) *Tag {
	r.check(name, members)
	if len(members) == 0 {
		panic(fmt.Sprintf("tag: aggregate %q has no members", name))
	}
	t := &Tag{name: name, id: -1, members: members}
	r.byName[name] = t
	return t
}

func (r *Registry) check(name string, tags []*Tag) {
	if r.frozen {
		panic(fmt.Sprintf("tag: registry frozen while declaring %q", name))
	}
	if name == "" {
		panic("tag: empty tag name")
	}
	if _, ok := r.byName[name]; ok {
		panic(fmt.Sprintf("tag: duplicate tag %q", name))
	}
	for _, t := range tags {
		if t == nil {
			panic(fmt.Sprintf("tag: nil reference in declaration of %q", name))
		}
	}
}

// Freeze ends registration.  After Freeze, Len is stable and may be used to
// size arrays indexed by type id.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Frozen() bool {
	return r.frozen
}

// Len returns the number of type ids allocated.
func (r *Registry) Len() int {
	return len(r.tags)
}

func (r *Registry) Lookup(name string) (*Tag, bool) {
	t, ok := r.byName[name]
	return t, ok
}

func (r *Registry) ByID(id int) *Tag {
	if id < 0 || id >= len(r.tags) {
		return nil
	}
	return r.tags[id]
}

// Format renders a tag sequence as "a -> b -> c".
func Format(tags []*Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.name)
	}
	return strings.Join(names, " -> ")
}
