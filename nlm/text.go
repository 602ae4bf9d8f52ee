package nlm

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"nlmc/dom"
	"nlmc/graph"
)

// objectReplacement stands in the text for inline objects (formulas, images)
// so annotations over them have a non empty range.
const objectReplacement = "\ufffc"

// annotatedText flattens inline content into plain text starting at rune
// offset pos and stages an annotation for every recognized markup element.
// Annotations nest freely. With breakOnUnknown set, an unknown element at the
// top level stops consumption and is left in the iterator for the caller.
func (c *Converter) annotatedText(st *State, it *dom.Iterator, pos int, nested, breakOnUnknown bool) string {
	var b strings.Builder
	emit := func(text string) {
		b.WriteString(text)
		pos += utf8.RuneCountInString(text)
	}

	for it.HasNext() {
		n := it.Next()
		typ := st.XML.Type(n)
		switch typ {
		case dom.TypeText:
			emit(st.AcceptText(st.XML.Text(n)))
			continue
		case dom.TypeComment, dom.TypeInstruction, dom.TypeDocument:
			continue
		}

		if st.Top().ignores(typ) {
			continue
		}
		if kind, ok := c.annotations[typ]; ok {
			start := pos
			emit(c.annotationText(st, n, typ, pos))
			c.createAnnotation(st, n, typ, kind, start, pos)
			continue
		}
		if c.inline[typ] {
			emit(c.annotatedText(st, dom.ChildIterator(st.XML, n), pos, true, false))
			continue
		}
		if breakOnUnknown && !nested {
			it.Back()
			break
		}
		st.Log.Warn("Unexpected tag in annotated text, keeping its text", zap.String("tag", typ), zap.String("path", st.Top().Path[0]))
		emit(c.annotatedText(st, dom.ChildIterator(st.XML, n), pos, true, false))
	}
	return b.String()
}

func (c *Converter) annotationText(st *State, el dom.Node, typ string, pos int) string {
	switch typ {
	case "inline-formula", "inline-graphic":
		st.remember(objectReplacement)
		return objectReplacement
	}
	return c.annotatedText(st, dom.ChildIterator(st.XML, el), pos, true, false)
}

func (c *Converter) createAnnotation(st *State, el dom.Node, typ, kind string, start, end int) {
	path := st.Top().Path
	if path[0] == "" {
		st.Log.Error("Annotation outside of text field, ignoring", zap.String("tag", typ))
		return
	}

	a := &graph.Annotation{Kind: kind, Path: path, Range: [2]int{start, end}}
	switch typ {
	case "xref":
		a.Kind = xrefKind(dom.AttrValue(st.XML, el, "ref-type"))
		if rid := strings.Fields(dom.AttrValue(st.XML, el, "rid")); len(rid) > 0 {
			a.Target = graph.Unresolved(rid[0])
		} else {
			st.Log.Debug("Cross reference without target", zap.String("path", path[0]))
		}
	case "ext-link", "uri":
		a.URL = dom.AttrValue(st.XML, el, "xlink:href")
		if a.URL == "" {
			a.URL = st.PlainText(el)
		}
	case "email":
		a.URL = "mailto:" + st.PlainText(el)
	case "inline-formula":
		if f := c.formula(st, el, true); f != nil {
			a.Target = graph.ResolvedTo(f.ID)
		}
	case "inline-graphic":
		a.URL = st.Config.ResolveURL(st, dom.AttrValue(st.XML, el, "xlink:href"))
	}
	a.ID = st.NextID(a.Kind)

	st.Config.EnhanceAnnotationData(st, a, el, typ)
	st.Stage(a)
}

// xrefKind maps ref-type attribute of xref to annotation kind, unknown types
// become generic cross references.
func xrefKind(refType string) string {
	switch refType {
	case "bibr":
		return graph.AnnoCitationReference
	case "fig", "table", "video", "supplementary-material", "other":
		return graph.AnnoFigureReference
	case "list":
		return graph.AnnoDefinitionReference
	}
	return graph.AnnoCrossReference
}

// textField parses inline content of el into text field of owner. Result has
// no surrounding space.
func (c *Converter) textField(st *State, el dom.Node, owner, field string, ignore ...string) string {
	if el == nil {
		return ""
	}
	st.Push(Frame{Path: [2]string{owner, field}, Ignore: ignore})
	defer st.Pop()

	st.StartParagraph()
	return st.finishText(owner, field, c.annotatedText(st, dom.ChildIterator(st.XML, el), 0, false, false))
}
