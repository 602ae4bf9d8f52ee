// Package publishers holds configurations adapting conversion to conventions
// of individual journal publishers: asset locations, extra front matter and
// article info sections.
package publishers

import (
	"go.uber.org/zap"

	"nlmc/dom"
	"nlmc/graph"
	"nlmc/nlm"
)

// Publisher names as found in journal-meta/publisher/publisher-name.
const (
	ELife  = "eLife Sciences Publications, Ltd"
	PLOS   = "Public Library of Science"
	Landes = "Landes Bioscience"
	PeerJ  = "PeerJ Inc."
	BMC    = "BioMed Central"
)

// Table returns configurations of all known publishers keyed by name.
func Table() map[string]nlm.Configuration {
	return map[string]nlm.Configuration{
		ELife:  ELifeConfiguration{},
		PLOS:   PLOSConfiguration{},
		Landes: LandesConfiguration{},
		PeerJ:  PeerJConfiguration{},
		BMC:    BMCConfiguration{},
	}
}

// Names returns known publisher names in stable order.
func Names() []string {
	return []string{ELife, PLOS, Landes, PeerJ, BMC}
}

// articleInfoID is the id of the composite node publishers add to the info
// view.
const articleInfoID = "articleinfo"

// placeholderVideo is used by publishers whose video assets are not
// published at a predictable location.
const placeholderVideo = "http://mickey.com/mouse.mp4"

func graphicHref(st *nlm.State, el dom.Node) string {
	if graphic := st.XML.Find(el, ".//graphic"); graphic != nil {
		return dom.AttrValue(st.XML, graphic, "xlink:href")
	}
	return ""
}

func heading(st *nlm.State, level int, content string) string {
	h := &graph.Heading{
		Base:    graph.NewBase(st.NextID("heading"), graph.TypeHeading, ""),
		Level:   level,
		Content: content,
	}
	if !st.Commit(h) {
		return ""
	}
	return h.ID
}

// textParagraph creates paragraph holding literal text without annotations.
func textParagraph(st *nlm.State, content string) string {
	if content == "" {
		return ""
	}
	pid := st.NextID("paragraph")
	t := &graph.Text{Base: graph.NewBase(st.NextID("text"), graph.TypeText, ""), Content: content}
	if !st.Commit(t) {
		return ""
	}
	if !st.Commit(&graph.Paragraph{Base: graph.NewBase(pid, graph.TypeParagraph, ""), Children: []string{t.ID}}) {
		return ""
	}
	return pid
}

// articleCommentary appends decision letter (#SA1) and author response
// (#SA2) sub-articles to the content view.
func articleCommentary(cv *nlm.Converter, st *nlm.State) {
	var ids []string
	if letter := st.XML.ElementByID(st.Tree, "SA1"); letter != nil {
		ids = append(ids, heading(st, 1, "Article Commentary"), heading(st, 2, "Decision letter"))
		if body := st.XML.Find(letter, "body"); body != nil {
			ids = append(ids, cv.BodyNodes(st, body)...)
		}
	}
	if response := st.XML.ElementByID(st.Tree, "SA2"); response != nil {
		ids = append(ids, heading(st, 2, "Author response"))
		if body := st.XML.Find(response, "body"); body != nil {
			ids = append(ids, cv.BodyNodes(st, body)...)
		}
	}
	if len(ids) == 0 {
		return
	}
	st.Log.Debug("Adding article commentary", zap.Int("nodes", len(ids)))
	cv.Show(st, ids...)
}

// showArticleInfo commits composite of collected info sections and places it
// into the info view. Nothing is created when there are no sections.
func showArticleInfo(st *nlm.State, children []string) {
	var ids []string
	for _, id := range children {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	info := &graph.Composite{
		Base:     graph.NewBase(articleInfoID, graph.TypeComposite, ""),
		Children: ids,
	}
	if st.Commit(info) {
		st.Doc.Show(graph.ViewInfo, info.ID)
	}
}
