package plan

import (
	"fmt"

	"github.com/brimdata/zjit"
	"github.com/brimdata/zjit/tag"
)

// Properties is what the analyzer knows statically about one stream of
// values: its type, whether it may hold null, and the node it was derived
// from.  A nil Type means nothing is known.
type Properties struct {
	Type     *zjit.Type
	Nullable bool
	Dep      *Node
}

func (p Properties) Known() bool {
	return p.Type != nil
}

func (p Properties) String() string {
	if p.Type == nil {
		return "?"
	}
	if p.Nullable {
		return p.Type.String() + "?"
	}
	return p.Type.String()
}

// Of returns the properties of a value of type t derived from dep.
func Of(t *zjit.Type, nullable bool, dep *Node) Properties {
	return Properties{Type: t, Nullable: nullable, Dep: dep}
}

// Shape is the output of one node: the view it produces and the properties
// of its elements, or of its keys and values for a map view.  Result is the
// type a terminal returns.
type Shape struct {
	View    tag.View
	Element Properties
	Key     Properties
	Value   Properties
	Result  *zjit.Type
}

func (s Shape) String() string {
	switch s.View {
	case tag.ViewMap, tag.ViewMultimap:
		return fmt.Sprintf("%s[%s]%s", s.View, s.Key, s.Value)
	case tag.ViewScalar:
		if s.Result == nil {
			return "scalar(?)"
		}
		return fmt.Sprintf("scalar(%s)", s.Result)
	}
	return fmt.Sprintf("%s(%s)", s.View, s.Element)
}
