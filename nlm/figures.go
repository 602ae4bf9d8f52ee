package nlm

import (
	"go.uber.org/zap"

	"nlmc/dom"
	"nlmc/graph"
)

// Default labels for items which carry none.
const (
	LabelFigure     = "Figure"
	LabelTable      = "Table"
	LabelVideo      = "Video"
	LabelSupplement = "Supplementary file"
)

// extractFigures harvests figure like items of the whole article (appendices
// and sub-articles included) in document order. Items nested inside another
// harvested item belong to it and are not converted separately.
func (c *Converter) extractFigures(st *State, article dom.Node) {
	match := dom.Tags("fig", "table-wrap", "supplementary-material", "media")
	for _, el := range dom.Descendants(st.XML, article, match, true) {
		var n graph.Node
		switch st.XML.Type(el) {
		case "fig":
			n = c.figure(st, el)
		case "table-wrap":
			n = c.table(st, el)
		case "supplementary-material":
			n = c.supplement(st, el)
		case "media":
			if mime := dom.AttrValue(st.XML, el, "mimetype"); mime != "video" {
				st.Unsupported(el, "Unsupported media type, ignoring", zap.String("mimetype", mime))
				continue
			}
			n = c.video(st, el)
		}
		if n != nil {
			st.Config.ShowNode(st, n)
		}
	}
}

func (c *Converter) figure(st *State, el dom.Node) graph.Node {
	fig := &graph.Figure{
		Base:     graph.NewBase(st.NextID("figure"), graph.TypeFigure, sourceID(st, el)),
		Label:    labelOr(st, el, LabelFigure),
		Position: dom.AttrValue(st.XML, el, "position"),
		Attrib:   st.FindPlain(el, "attrib"),
	}
	if graphic := st.XML.Find(el, ".//graphic"); graphic != nil {
		fig.URL = st.Config.ResolveURL(st, dom.AttrValue(st.XML, graphic, "xlink:href"))
	} else {
		st.Log.Debug("Figure without graphic", zap.String("id", fig.Source))
	}
	if caption := c.caption(st, st.XML.Find(el, "caption")); caption != nil {
		fig.Caption, fig.Title = caption.ID, caption.Title
	}

	st.Config.EnhanceFigure(st, fig, el)
	if !st.Commit(fig) {
		return nil
	}
	return fig
}

func (c *Converter) table(st *State, el dom.Node) graph.Node {
	tbl := &graph.Table{
		Base:  graph.NewBase(st.NextID("table"), graph.TypeTable, sourceID(st, el)),
		Label: labelOr(st, el, LabelTable),
	}
	if markup := st.XML.Find(el, ".//table"); markup != nil {
		tbl.Content = st.XML.Serialize(markup)
	} else {
		st.Log.Debug("Table without markup", zap.String("id", tbl.Source))
	}
	if caption := c.caption(st, st.XML.Find(el, "caption")); caption != nil {
		tbl.Caption, tbl.Title = caption.ID, caption.Title
	}
	if foot := st.XML.Find(el, "table-wrap-foot"); foot != nil {
		notes := dom.Descendants(st.XML, foot, dom.Tags("fn"), true)
		if len(notes) == 0 {
			notes = dom.Elements(st.XML, foot)
		}
		for _, fn := range notes {
			if text := st.PlainText(fn); text != "" {
				tbl.Footers = append(tbl.Footers, text)
			}
		}
	}

	st.Config.EnhanceTable(st, tbl, el)
	if !st.Commit(tbl) {
		return nil
	}
	return tbl
}

func (c *Converter) video(st *State, el dom.Node) graph.Node {
	v := &graph.Video{
		Base:  graph.NewBase(st.NextID("video"), graph.TypeVideo, sourceID(st, el)),
		Label: labelOr(st, el, LabelVideo),
		URL:   st.Config.ResolveURL(st, dom.AttrValue(st.XML, el, "xlink:href")),
	}
	if caption := c.caption(st, st.XML.Find(el, "caption")); caption != nil {
		v.Caption, v.Title = caption.ID, caption.Title
	}

	st.Config.EnhanceVideo(st, v, el)
	if !st.Commit(v) {
		return nil
	}
	return v
}

func (c *Converter) supplement(st *State, el dom.Node) graph.Node {
	s := &graph.Supplement{
		Base:  graph.NewBase(st.NextID("supplement"), graph.TypeSupplement, sourceID(st, el)),
		Label: labelOr(st, el, LabelSupplement),
	}
	href := dom.AttrValue(st.XML, el, "xlink:href")
	if href == "" {
		if media := st.XML.Find(el, "media"); media != nil {
			href = dom.AttrValue(st.XML, media, "xlink:href")
		}
	}
	s.URL = st.Config.ResolveURL(st, href)
	if caption := c.caption(st, st.XML.Find(el, "caption")); caption != nil {
		s.Caption, s.Title = caption.ID, caption.Title
	}

	st.Config.EnhanceSupplement(st, s, el)
	if !st.Commit(s) {
		return nil
	}
	return s
}

// caption decomposes caption element into title and paragraphs. Returns nil
// when there is nothing to show.
func (c *Converter) caption(st *State, el dom.Node) *graph.Caption {
	if el == nil {
		return nil
	}
	cp := &graph.Caption{Base: graph.NewBase(st.NextID("caption"), graph.TypeCaption, sourceID(st, el))}
	for _, child := range dom.Elements(st.XML, el) {
		switch typ := st.XML.Type(child); typ {
		case "title":
			cp.Title = c.textField(st, child, cp.ID, "title")
		case "p":
			cp.Children = append(cp.Children, c.ParagraphGroup(st, child)...)
		default:
			st.Log.Warn("Unexpected tag in caption, ignoring", zap.String("parent", "caption"), zap.String("tag", typ))
		}
	}
	if len(cp.Children) == 0 {
		st.Unsupported(st.XML.Parent(el), "Caption has no paragraphs")
		if cp.Title == "" {
			st.discard(cp.ID)
			return nil
		}
	}
	if !st.Commit(cp) {
		st.discard(cp.ID)
		return nil
	}
	return cp
}

func labelOr(st *State, el dom.Node, def string) string {
	if label := st.FindPlain(el, "label"); label != "" {
		return label
	}
	return def
}
