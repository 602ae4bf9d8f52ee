// Package dom defines the XML access capability consumed by the converter and
// provides two concrete implementations: one on top of beevik/etree and one
// on top of antchfx/xmlquery.
//
// Queries passed to Find and FindAll use the path subset understood by both
// backends: relative child steps ("front/article-meta"), relative descendant
// steps (".//fig"), attribute predicates ("[@ref-type='bibr']"), child
// existence predicates ("[person-group]") and 1-based positions ("[1]").
// Compiling an invalid query is a programming error and panics.
package dom

import (
	"io"
)

// Node types reported by Adapter.Type for non-element nodes. Elements report
// their local tag name.
const (
	TypeText        = "text"
	TypeComment     = "comment"
	TypeDocument    = "#document"
	TypeInstruction = "#instruction"
)

// Node is an opaque handle to a node owned by an Adapter. Handles must only
// be passed back to the adapter that produced them.
type Node any

// Adapter is the XML access capability.
type Adapter interface {
	// Find returns the first node matching query relative to n, or nil.
	Find(n Node, query string) Node
	// FindAll returns all nodes matching query relative to n in document order.
	FindAll(n Node, query string) []Node
	// Attr returns attribute value; name may carry a namespace prefix ("xlink:href").
	Attr(n Node, name string) (string, bool)
	// Type returns TypeText, TypeComment, TypeDocument, TypeInstruction or the
	// local element name.
	Type(n Node) string
	// Text returns the text content of n including all descendants.
	Text(n Node) string
	// ChildNodes returns all direct children, text and comments included.
	ChildNodes(n Node) []Node
	// Parent returns the parent element or nil for the root.
	Parent(n Node) Node
	// Serialize returns markup of n including n itself.
	Serialize(n Node) string
	// ElementByID finds element with the given id attribute anywhere under tree.
	ElementByID(tree Node, id string) Node
}

// Parser produces a tree an Adapter can walk.
type Parser interface {
	Parse(r io.Reader) (Node, error)
}

// Backend is an Adapter able to parse its own trees.
type Backend interface {
	Adapter
	Parser
}

// Elements returns element children of n, skipping text, comments and
// processing instructions.
func Elements(a Adapter, n Node) []Node {
	var res []Node
	for _, c := range a.ChildNodes(n) {
		if IsElement(a, c) {
			res = append(res, c)
		}
	}
	return res
}

// IsElement reports whether n is an element node.
func IsElement(a Adapter, n Node) bool {
	switch a.Type(n) {
	case TypeText, TypeComment, TypeDocument, TypeInstruction:
		return false
	}
	return true
}

// AttrValue returns attribute value or empty string when it is absent.
func AttrValue(a Adapter, n Node, name string) string {
	v, _ := a.Attr(n, name)
	return v
}

// FindText returns text of the first node matching query or empty string.
func FindText(a Adapter, n Node, query string) string {
	if found := a.Find(n, query); found != nil {
		return a.Text(found)
	}
	return ""
}

// validID rejects ids which cannot be safely embedded into a quoted predicate.
func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r == '\'' || r == '"' || r == ']' || r == '[' {
			return false
		}
	}
	return true
}
