package nlm

import (
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"nlmc/dom"
	"nlmc/graph"
)

// BodyNodes converts element children of container using the block handler
// table and returns ids of produced top level nodes in source order. Figures
// and tables are skipped since they are harvested for the whole article
// before the body is visited.
func (c *Converter) BodyNodes(st *State, container dom.Node, ignore ...string) []string {
	var ids []string
	for _, el := range dom.Elements(st.XML, container) {
		typ := st.XML.Type(el)
		if c.skipped[typ] || slices.Contains(ignore, typ) {
			continue
		}
		if handler, ok := c.blocks[typ]; ok {
			ids = append(ids, handler(st, el)...)
			continue
		}
		st.Unsupported(el, "Unexpected tag in body content, ignoring", zap.String("parent", st.XML.Type(container)))
	}
	return ids
}

func (c *Converter) section(st *State, el dom.Node) []string {
	level := st.sectionLevel
	st.sectionLevel++
	defer func() { st.sectionLevel-- }()

	// Heading id is taken before children are visited so numbering follows
	// document order, the node itself is only created for non empty sections.
	hid := st.NextID("heading")
	content := c.textField(st, st.XML.Find(el, "title"), hid, "content", "fn")

	children := c.BodyNodes(st, el, "title", "label", "sec-meta", "object-id")
	if len(children) == 0 {
		st.discard(hid)
		st.Log.Debug("Empty section, skipping heading", zap.String("id", sourceID(st, el)), zap.String("title", content))
		return nil
	}

	heading := &graph.Heading{
		Base:    graph.NewBase(hid, graph.TypeHeading, sourceID(st, el)),
		Level:   level,
		Content: content,
	}
	if !st.Commit(heading) {
		return children
	}
	return append([]string{hid}, children...)
}

func (c *Converter) appGroup(st *State, el dom.Node) []string {
	return c.BodyNodes(st, el, "title", "label")
}

// block is a unit of paragraph segmentation: either a run of inline content
// (tag is empty) or a single embedded block element.
type block struct {
	tag   string
	nodes []dom.Node
}

// segment partitions children of a paragraph like element. Inline content
// accumulates into runs, embeddable block elements break runs and stand
// alone, ignorable elements are dropped without breaking the current run.
func (c *Converter) segment(st *State, el dom.Node) []block {
	var (
		blocks []block
		run    []dom.Node
	)
	flush := func() {
		if len(run) > 0 && !blankRun(st, run) {
			blocks = append(blocks, block{nodes: run})
		}
		run = nil
	}
	for _, n := range st.XML.ChildNodes(el) {
		typ := st.XML.Type(n)
		switch {
		case typ == dom.TypeComment || typ == dom.TypeInstruction:
		case c.skipped[typ]:
		case c.embeddable[typ]:
			flush()
			blocks = append(blocks, block{tag: typ, nodes: []dom.Node{n}})
		default:
			run = append(run, n)
		}
	}
	flush()
	return blocks
}

func blankRun(st *State, run []dom.Node) bool {
	for _, n := range run {
		if st.XML.Type(n) != dom.TypeText || strings.TrimSpace(st.XML.Text(n)) != "" {
			return false
		}
	}
	return true
}

// ParagraphGroup converts a paragraph like element into paragraphs and
// embedded blocks, preserving source order.
func (c *Converter) ParagraphGroup(st *State, el dom.Node) []string {
	var ids []string
	sid := sourceID(st, el)
	for _, b := range c.segment(st, el) {
		if b.tag == "" {
			if id := c.paragraph(st, b.nodes, sid); id != "" {
				ids = append(ids, id)
				sid = ""
			}
			continue
		}
		ids = append(ids, c.blocks[b.tag](st, b.nodes[0])...)
	}
	return ids
}

func (c *Converter) paragraph(st *State, nodes []dom.Node, sid string) string {
	pid := st.NextID("paragraph")
	tid := st.NextID("text")

	st.Push(Frame{Path: [2]string{tid, "content"}})
	defer st.Pop()
	st.StartParagraph()

	var b strings.Builder
	it := dom.NewIterator(nodes)
	for it.HasNext() {
		b.WriteString(c.annotatedText(st, it, utf8.RuneCountInString(b.String()), false, true))
		if it.HasNext() {
			st.Unsupported(it.Next(), "Unexpected tag in paragraph, ignoring")
		}
	}

	content := st.finishText(tid, "content", b.String())
	if content == "" {
		st.discard(tid)
		return ""
	}
	if !st.Commit(&graph.Text{Base: graph.NewBase(tid, graph.TypeText, ""), Content: content}) {
		return ""
	}
	if !st.Commit(&graph.Paragraph{Base: graph.NewBase(pid, graph.TypeParagraph, sid), Children: []string{tid}}) {
		return ""
	}
	return pid
}

// Paragraph converts inline content of el into a single paragraph, block
// level children are reported and dropped. Used for elements known to hold
// only text such as copyright statements.
func (c *Converter) Paragraph(st *State, el dom.Node) string {
	return c.paragraph(st, st.XML.ChildNodes(el), sourceID(st, el))
}

func (c *Converter) list(st *State, el dom.Node) []string {
	l := &graph.List{
		Base:    graph.NewBase(st.NextID("list"), graph.TypeList, sourceID(st, el)),
		Ordered: orderedList(dom.AttrValue(st.XML, el, "list-type")),
	}
	for _, item := range dom.Elements(st.XML, el) {
		switch st.XML.Type(item) {
		case "list-item":
			for _, child := range dom.Elements(st.XML, item) {
				switch st.XML.Type(child) {
				case "p":
					l.Items = append(l.Items, c.ParagraphGroup(st, child)...)
				case "list":
					l.Items = append(l.Items, c.list(st, child)...)
				case "label":
				default:
					st.Unsupported(child, "Unexpected tag in list-item, ignoring")
				}
			}
		case "title", "label":
		default:
			st.Unsupported(item, "Unexpected tag in list, ignoring")
		}
	}
	if len(l.Items) == 0 {
		return nil
	}
	if !st.Commit(l) {
		return nil
	}
	return []string{l.ID}
}

func orderedList(listType string) bool {
	switch listType {
	case "order", "alpha-lower", "alpha-upper", "roman-lower", "roman-upper":
		return true
	}
	return false
}

func (c *Converter) box(st *State, el dom.Node) []string {
	b := &graph.Box{
		Base:  graph.NewBase(st.NextID("box"), graph.TypeBox, sourceID(st, el)),
		Label: st.FindPlain(el, "label"),
	}
	if b.Label == "" {
		b.Label = st.FindPlain(el, "caption/title")
	}
	if caption := st.XML.Find(el, "caption"); caption != nil {
		for _, p := range st.XML.FindAll(caption, "p") {
			b.Children = append(b.Children, c.ParagraphGroup(st, p)...)
		}
	}
	b.Children = append(b.Children, c.BodyNodes(st, el, "label", "caption", "title", "object-id")...)
	if len(b.Children) == 0 {
		st.Unsupported(el, "Empty boxed text, ignoring")
		return nil
	}
	if !st.Commit(b) {
		return nil
	}
	return []string{b.ID}
}

func (c *Converter) quote(st *State, el dom.Node) []string {
	return c.BodyNodes(st, el, "attrib", "label", "title")
}

// preformat keeps source whitespace and marks the whole text as code.
func (c *Converter) preformat(st *State, el dom.Node) []string {
	content := strings.Trim(st.XML.Text(el), "\r\n")
	if strings.TrimSpace(content) == "" {
		return nil
	}
	pid := st.NextID("paragraph")
	tid := st.NextID("text")
	if !st.Commit(&graph.Text{Base: graph.NewBase(tid, graph.TypeText, ""), Content: content}) {
		return nil
	}
	st.Stage(&graph.Annotation{
		ID:    st.NextID(graph.AnnoCode),
		Kind:  graph.AnnoCode,
		Path:  [2]string{tid, "content"},
		Range: [2]int{0, utf8.RuneCountInString(content)},
	})
	if !st.Commit(&graph.Paragraph{Base: graph.NewBase(pid, graph.TypeParagraph, sourceID(st, el)), Children: []string{tid}}) {
		return nil
	}
	return []string{pid}
}

func (c *Converter) displayFormula(st *State, el dom.Node) []string {
	if f := c.formula(st, el, false); f != nil {
		return []string{f.ID}
	}
	return nil
}

// formula captures every representation present, consumers choose by
// scanning Format.
func (c *Converter) formula(st *State, el dom.Node, inline bool) *graph.Formula {
	f := &graph.Formula{
		Base:   graph.NewBase(st.NextID("formula"), graph.TypeFormula, sourceID(st, el)),
		Inline: inline,
	}
	c.formulaData(st, f, el)
	if len(f.Format) == 0 {
		text := st.PlainText(el)
		if text == "" {
			st.Unsupported(el, "Formula has no supported representation, ignoring")
			return nil
		}
		f.Format, f.Data = append(f.Format, graph.FormatText), append(f.Data, text)
	}
	if !st.Commit(f) {
		return nil
	}
	return f
}

func (c *Converter) formulaData(st *State, f *graph.Formula, el dom.Node) {
	add := func(format, data string) {
		f.Format = append(f.Format, format)
		f.Data = append(f.Data, data)
	}
	for _, child := range dom.Elements(st.XML, el) {
		switch typ := st.XML.Type(child); typ {
		case "label":
			f.Label = st.PlainText(child)
		case "alternatives":
			c.formulaData(st, f, child)
		case "graphic", "inline-graphic":
			add(graph.FormatImage, st.Config.ResolveURL(st, dom.AttrValue(st.XML, child, "xlink:href")))
		case "svg":
			add(graph.FormatSVG, st.XML.Serialize(child))
		case "math":
			add(graph.FormatMathML, st.XML.Serialize(child))
		case "tex-math":
			add(graph.FormatLaTeX, strings.TrimSpace(st.XML.Text(child)))
		default:
			st.Log.Debug("Unexpected tag in formula, ignoring", zap.String("parent", st.XML.Type(el)), zap.String("tag", typ))
		}
	}
}
