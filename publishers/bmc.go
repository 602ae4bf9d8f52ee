package publishers

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"nlmc/dom"
	"nlmc/graph"
	"nlmc/nlm"
)

const (
	pmcArticles = "http://www.ncbi.nlm.nih.gov/pmc/articles/PMC"
	pmcEFetch   = "http://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi?db=pmc&id="
)

// BMCConfiguration links assets through PubMed Central and collects reviewing
// editor, datasets, acknowledgements and license into the info view.
type BMCConfiguration struct {
	nlm.DefaultConfiguration
}

func pmcID(st *nlm.State) string {
	return st.FindPlain(st.Article, "front/article-meta/article-id[@pub-id-type='pmc']")
}

func (BMCConfiguration) EnhanceFigure(st *nlm.State, n *graph.Figure, el dom.Node) {
	pmc, href := pmcID(st), graphicHref(st, el)
	if pmc == "" || href == "" {
		return
	}
	n.URL = pmcArticles + pmc + "/bin/" + href + ".jpg"
}

func (BMCConfiguration) EnhancePublicationInfo(st *nlm.State, n *graph.PublicationInfo, article dom.Node) {
	meta := st.XML.Find(article, "front/article-meta")

	n.Keywords, n.ResearchOrganisms = nil, nil
	for _, kwd := range dom.Descendants(st.XML, meta, dom.Tags("kwd"), true) {
		if text := st.PlainText(kwd); text != "" {
			n.Keywords = append(n.Keywords, text)
		}
	}
	if subject := st.FindPlain(meta, "article-categories/subj-group[@subj-group-type='heading']/subject"); subject != "" {
		n.ArticleType = subject
	}
	if journal := st.FindPlain(article, "front/journal-meta/journal-id[@journal-id-type='nlm-ta']"); journal != "" {
		n.Journal = journal
	}

	pmc := pmcID(st)
	if pmc == "" {
		st.Log.Debug("Article has no PMC id, keeping source links")
		return
	}
	n.PDFLink = pmcArticles + pmc + "/pdf/" + st.Doc.ID + ".pdf"
	n.XMLLink = pmcEFetch + pmc
}

func (c BMCConfiguration) EnhanceArticle(cv *nlm.Converter, st *nlm.State, article dom.Node) {
	articleCommentary(cv, st)

	var nodes []string
	nodes = append(nodes, c.reviewingEditor(cv, st, article)...)
	for _, sec := range dom.Descendants(st.XML, article, dom.Tags("sec"), false) {
		if dom.AttrValue(st.XML, sec, "sec-type") != "datasets" {
			continue
		}
		nodes = append(nodes, heading(st, 3, "Major Datasets"))
		nodes = append(nodes, cv.BodyNodes(st, sec, "title", "label")...)
	}
	if ack := st.XML.Find(article, "back/ack"); ack != nil {
		nodes = append(nodes, heading(st, 3, "Acknowledgements"))
		nodes = append(nodes, cv.BodyNodes(st, ack, "title", "label")...)
	}
	nodes = append(nodes, c.license(cv, st, article)...)
	showArticleInfo(st, nodes)
}

// EnhanceContributor binds affiliations referenced by label only: author xref
// without rid attribute pointing at "aff<label>".
func (BMCConfiguration) EnhanceContributor(st *nlm.State, n *graph.Contributor, el dom.Node) {
	if n.ContributorType != "author" && n.ContributorType != "" {
		return
	}
	for _, xref := range st.XML.FindAll(el, "xref") {
		if dom.AttrValue(st.XML, xref, "ref-type") != "aff" || dom.AttrValue(st.XML, xref, "rid") != "" {
			continue
		}
		sid := "aff" + st.PlainText(xref)
		for _, aff := range st.Doc.BySourceID(sid) {
			if aff.NodeType() == graph.TypeAffiliation && !slices.Contains(n.Affiliations, aff.NodeID()) {
				n.Affiliations = append(n.Affiliations, aff.NodeID())
			}
		}
	}
}

func (BMCConfiguration) reviewingEditor(cv *nlm.Converter, st *nlm.State, article dom.Node) []string {
	editor := st.XML.Find(article, "front/article-meta/contrib-group/contrib[@contrib-type='editor']")
	if editor == nil {
		return nil
	}
	parts := []string{cv.PersonName(st, st.XML.Find(editor, "name")), st.FindPlain(editor, "role")}
	if xref := st.XML.Find(editor, "xref"); xref != nil {
		rid := dom.AttrValue(st.XML, xref, "rid")
		if aff := st.XML.ElementByID(st.Tree, rid); aff != nil {
			parts = append(parts, st.FindPlain(aff, "addr-line"))
		} else {
			st.Log.Debug("Editor affiliation not found", zap.String("rid", rid))
		}
	}
	var line []string
	for _, p := range parts {
		if p != "" {
			line = append(line, p)
		}
	}
	return []string{heading(st, 3, "Reviewing Editor"), textParagraph(st, strings.Join(line, ", "))}
}

func (BMCConfiguration) license(cv *nlm.Converter, st *nlm.State, article dom.Node) []string {
	permissions := st.XML.Find(article, "front/article-meta/permissions")
	if permissions == nil {
		return nil
	}
	nodes := []string{heading(st, 3, "Copyright and License")}
	if holder := st.FindPlain(permissions, "copyright-holder"); holder != "" {
		nodes = append(nodes, textParagraph(st, strings.TrimSuffix(holder, ".")+"."))
	}
	if lic := st.XML.Find(permissions, "license"); lic != nil {
		for _, child := range dom.Elements(st.XML, lic) {
			switch st.XML.Type(child) {
			case "p", "license-p":
				nodes = append(nodes, cv.ParagraphGroup(st, child)...)
			}
		}
	}
	return nodes
}
