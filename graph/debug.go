package graph

import (
	"nlmc/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
	doc     *Document
	annos   map[string][]*Annotation
	visited map[string]bool
}

// String returns readable tree of the document following views and node
// relations. It exists solely for manual inspection during debugging.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	tw := treeWriter{
		TreeWriter: debug.NewTreeWriter(),
		doc:        d,
		annos:      make(map[string][]*Annotation),
		visited:    make(map[string]bool),
	}
	tw.MaxText = 120
	for _, n := range d.NodesOfType(TypeAnnotation) {
		a := n.(*Annotation)
		tw.annos[a.Path[0]] = append(tw.annos[a.Path[0]], a)
	}

	tw.Line(0, "Document id=%q lang=%q nodes=%d", d.ID, d.Language, d.Len())
	tw.TextBlock(1, "Title", d.Title)
	tw.IDs(1, "Authors", d.Authors)
	tw.IDs(1, "Editors", d.Editors)
	tw.IDs(1, "Abstract", d.Abstract)
	for _, name := range d.ViewNames() {
		ids := d.views[name]
		tw.Line(1, "View %q (%d)", name, len(ids))
		for _, id := range ids {
			tw.node(2, id)
		}
	}
	return tw.String()
}

func (tw treeWriter) node(depth int, id string) {
	n := tw.doc.Get(id)
	if n == nil {
		tw.Line(depth, "%s <missing>", id)
		return
	}
	if tw.visited[id] {
		tw.Line(depth, "%s <see above>", id)
		return
	}
	tw.visited[id] = true

	tw.Line(depth, "%s type=%s source=%q", id, n.NodeType(), n.SourceID())
	switch v := n.(type) {
	case *Heading:
		tw.Line(depth+1, "level=%d", v.Level)
		tw.TextBlock(depth+1, "content", v.Content)
	case *Text:
		tw.TextBlock(depth+1, "content", v.Content)
	case *Formula:
		tw.Line(depth+1, "inline=%t formats=%v", v.Inline, v.Format)
	case *Figure:
		tw.TextBlock(depth+1, "label", v.Label)
		tw.TextBlock(depth+1, "url", v.URL)
	case *Video:
		tw.TextBlock(depth+1, "label", v.Label)
		tw.TextBlock(depth+1, "url", v.URL)
	case *Supplement:
		tw.TextBlock(depth+1, "label", v.Label)
		tw.TextBlock(depth+1, "url", v.URL)
	case *Table:
		tw.TextBlock(depth+1, "label", v.Label)
		tw.Line(depth+1, "content bytes=%d footers=%d", len(v.Content), len(v.Footers))
	case *Caption:
		tw.TextBlock(depth+1, "title", v.Title)
	case *Citation:
		tw.TextBlock(depth+1, "title", v.Title)
		tw.TextBlock(depth+1, "source", v.Source)
		tw.Line(depth+1, "authors=%d structured=%t", len(v.Authors), v.Structured)
	case *Contributor:
		tw.TextBlock(depth+1, "name", v.Name)
	case *Affiliation:
		tw.TextBlock(depth+1, "institution", v.Institution)
	case *Definition:
		tw.TextBlock(depth+1, "title", v.Title)
		tw.TextBlock(depth+1, "description", v.Description)
	case *Cover:
		tw.TextBlock(depth+1, "title", v.Title)
		tw.TextBlock(depth+1, "authors", v.Authors)
	case *PublicationInfo:
		tw.TextBlock(depth+1, "published_on", v.PublishedOn)
		tw.TextBlock(depth+1, "doi", v.DOI)
	}
	for _, a := range tw.annos[id] {
		tw.Line(depth+1, "@%s %s %s[%d:%d] -> %q", a.ID, a.Kind, a.Path[1], a.Range[0], a.Range[1], a.TargetID())
	}
	if _, isAnno := n.(*Annotation); isAnno {
		return
	}
	for _, ref := range References(n) {
		tw.node(depth+1, ref)
	}
}
