// Package graph defines the publisher agnostic document graph produced by the
// converter: typed nodes addressed by generated IDs plus named ordered views.
package graph

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Well known view names.
const (
	ViewContent     = "content"
	ViewFigures     = "figures"
	ViewCitations   = "citations"
	ViewInfo        = "info"
	ViewDefinitions = "definitions"
)

// Document owns all nodes of one conversion.
type Document struct {
	ID       string
	Title    string
	Language string
	Authors  []string
	Editors  []string
	Abstract []string

	nodes    map[string]Node
	order    []string
	bySource map[string][]string
	views    map[string][]string
}

// New creates empty document with all well known views present.
func New() *Document {
	d := &Document{
		nodes:    make(map[string]Node),
		bySource: make(map[string][]string),
		views:    make(map[string][]string),
	}
	for _, v := range []string{ViewContent, ViewFigures, ViewCitations, ViewInfo, ViewDefinitions} {
		d.views[v] = []string{}
	}
	return d
}

// Create commits node to the graph. Nodes are never replaced.
func (d *Document) Create(n Node) error {
	id := n.NodeID()
	if id == "" {
		return fmt.Errorf("node of type %q has empty id", n.NodeType())
	}
	if _, exists := d.nodes[id]; exists {
		return fmt.Errorf("node %q already exists", id)
	}
	d.nodes[id] = n
	d.order = append(d.order, id)
	if sid := n.SourceID(); sid != "" {
		d.bySource[sid] = append(d.bySource[sid], id)
	}
	return nil
}

func (d *Document) Get(id string) Node {
	return d.nodes[id]
}

func (d *Document) Contains(id string) bool {
	_, ok := d.nodes[id]
	return ok
}

// Len returns number of nodes including annotations.
func (d *Document) Len() int {
	return len(d.order)
}

// Nodes returns nodes in creation order.
func (d *Document) Nodes() []Node {
	res := make([]Node, 0, len(d.order))
	for _, id := range d.order {
		res = append(res, d.nodes[id])
	}
	return res
}

// NodesOfType returns nodes of the given type in creation order.
func (d *Document) NodesOfType(t Type) []Node {
	return lo.Filter(d.Nodes(), func(n Node, _ int) bool { return n.NodeType() == t })
}

// BySourceID returns all nodes created from XML elements with the given id
// attribute, in creation order.
func (d *Document) BySourceID(sid string) []Node {
	ids := d.bySource[sid]
	res := make([]Node, 0, len(ids))
	for _, id := range ids {
		res = append(res, d.nodes[id])
	}
	return res
}

// Show appends node ids to the named view creating it when necessary.
func (d *Document) Show(view string, ids ...string) {
	d.views[view] = append(d.views[view], ids...)
}

// ShowAt inserts node id into the named view at position pos, out of range
// positions append.
func (d *Document) ShowAt(view, id string, pos int) {
	v := d.views[view]
	if pos < 0 || pos > len(v) {
		pos = len(v)
	}
	d.views[view] = slices.Insert(v, pos, id)
}

// View returns copy of the named view.
func (d *Document) View(name string) []string {
	return slices.Clone(d.views[name])
}

// ViewNames returns sorted names of all views.
func (d *Document) ViewNames() []string {
	names := lo.Keys(d.views)
	slices.Sort(names)
	return names
}

// NormalizeViews drops ids of nodes which do not exist and duplicates. First
// occurrence wins and relative order is kept.
func (d *Document) NormalizeViews() (dropped int) {
	for name, ids := range d.views {
		kept := lo.Uniq(lo.Filter(ids, func(id string, _ int) bool { return d.Contains(id) }))
		dropped += len(ids) - len(kept)
		d.views[name] = kept
	}
	return dropped
}

// References returns ids a node refers to through its relation fields.
func References(n Node) []string {
	switch v := n.(type) {
	case *Paragraph:
		return v.Children
	case *List:
		return v.Items
	case *Caption:
		return v.Children
	case *Box:
		return v.Children
	case *Composite:
		return v.Children
	case *Contributor:
		return v.Affiliations
	case *Figure:
		return lo.Compact([]string{v.Caption})
	case *Table:
		return lo.Compact([]string{v.Caption})
	case *Video:
		return lo.Compact([]string{v.Caption})
	case *Supplement:
		return lo.Compact([]string{v.Caption})
	case *Annotation:
		refs := []string{v.Path[0]}
		if v.Target.Resolved() {
			refs = append(refs, v.Target.NodeID)
		}
		return refs
	}
	return nil
}

// Dangling returns "<node> -> <missing id>" for every relation field or view
// entry pointing at a node which does not exist.
func (d *Document) Dangling() []string {
	var res []string
	for _, n := range d.Nodes() {
		for _, ref := range References(n) {
			if !d.Contains(ref) {
				res = append(res, n.NodeID()+" -> "+ref)
			}
		}
	}
	for _, name := range d.ViewNames() {
		for _, id := range d.views[name] {
			if !d.Contains(id) {
				res = append(res, "view:"+name+" -> "+id)
			}
		}
	}
	return res
}

// Get returns typed node.
func Get[T Node](d *Document, id string) (T, bool) {
	v, ok := d.nodes[id].(T)
	return v, ok
}

type documentJSON struct {
	ID       string              `json:"id"`
	Title    string              `json:"title"`
	Language string              `json:"language,omitempty"`
	Authors  []string            `json:"authors"`
	Editors  []string            `json:"editors,omitempty"`
	Abstract []string            `json:"abstract,omitempty"`
	Nodes    map[string]Node     `json:"nodes"`
	Views    map[string][]string `json:"views"`
}

func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(documentJSON{
		ID:       d.ID,
		Title:    d.Title,
		Language: d.Language,
		Authors:  lo.Ternary(d.Authors == nil, []string{}, d.Authors),
		Editors:  d.Editors,
		Abstract: d.Abstract,
		Nodes:    d.nodes,
		Views:    d.views,
	})
}
