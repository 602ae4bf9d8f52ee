package nlm

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"nlmc/dom"
	"nlmc/graph"
)

func (c *Converter) extractDefinitions(st *State, article dom.Node) {
	for _, item := range dom.Descendants(st.XML, article, dom.Tags("def-item"), true) {
		term := st.XML.Find(item, "term")
		sid := sourceID(st, item)
		if sid == "" && term != nil {
			sid = sourceID(st, term)
		}
		def := &graph.Definition{
			Base:        graph.NewBase(st.NextID("definition"), graph.TypeDefinition, sid),
			Title:       st.PlainText(term),
			Description: st.FindPlain(item, "def"),
		}
		if def.Title == "" {
			st.Unsupported(item, "Definition without term, ignoring")
			continue
		}
		if st.Commit(def) {
			st.Config.ShowNode(st, def)
		}
	}
}

func (c *Converter) extractAffiliations(st *State, article dom.Node) {
	for _, el := range dom.Descendants(st.XML, article, dom.Tags("aff"), true) {
		aff := &graph.Affiliation{
			Base:        graph.NewBase(st.NextID("affiliation"), graph.TypeAffiliation, sourceID(st, el)),
			Label:       st.FindPlain(el, "label"),
			Country:     st.FindPlain(el, "country"),
			SpecificUse: dom.AttrValue(st.XML, el, "specific-use"),
		}
		for _, inst := range descendants(st, el, "institution") {
			switch dom.AttrValue(st.XML, inst, "content-type") {
			case "dept":
				aff.Department = joinNonEmpty(", ", aff.Department, st.PlainText(inst))
			default:
				aff.Institution = joinNonEmpty(", ", aff.Institution, st.PlainText(inst))
			}
		}
		aff.City = st.FindPlain(el, ".//named-content[@content-type='city']")
		if aff.City == "" {
			aff.City = st.FindPlain(el, "city")
		}
		if aff.Institution == "" && aff.Department == "" {
			// Unstructured affiliation, the whole text is the institution.
			aff.Institution = strings.TrimSpace(strings.TrimPrefix(st.PlainText(el), aff.Label))
		}
		if st.Commit(aff) {
			st.affiliations[el] = aff.ID
		}
	}
}

func (c *Converter) extractContributors(st *State, article dom.Node) {
	meta := st.XML.Find(article, "front/article-meta")
	for _, el := range dom.Descendants(st.XML, meta, dom.Tags("contrib"), true) {
		contrib := c.contributor(st, el)
		if contrib == nil {
			continue
		}
		if !st.Commit(contrib) {
			continue
		}
		switch contrib.ContributorType {
		case "author", "":
			st.Doc.Authors = append(st.Doc.Authors, contrib.ID)
		case "editor", "senior_editor", "reviewing-editor":
			st.Doc.Editors = append(st.Doc.Editors, contrib.ID)
		}
	}
}

func (c *Converter) contributor(st *State, el dom.Node) *graph.Contributor {
	name := c.PersonName(st, st.XML.Find(el, "name"))
	if name == "" {
		name = st.FindPlain(el, "collab")
	}
	if name == "" {
		name = c.PersonName(st, st.XML.Find(el, "string-name"))
	}
	if name == "" {
		st.Unsupported(el, "Contributor without name, ignoring")
		return nil
	}

	contrib := &graph.Contributor{
		Base:              graph.NewBase(st.NextID("contributor"), graph.TypeContributor, sourceID(st, el)),
		Name:              name,
		ContributorType:   dom.AttrValue(st.XML, el, "contrib-type"),
		Role:              st.FindPlain(el, "role"),
		Affiliations:      []string{},
		EqualContribution: dom.AttrValue(st.XML, el, "equal-contrib") == "yes",
		Deceased:          dom.AttrValue(st.XML, el, "deceased") == "yes",
		Corresponding:     dom.AttrValue(st.XML, el, "corresp") == "yes",
	}
	if orcid := st.FindPlain(el, "contrib-id[@contrib-id-type='orcid']"); orcid != "" {
		contrib.ORCID = orcid
	} else if uri := st.XML.Find(el, "uri[@content-type='orcid']"); uri != nil {
		contrib.ORCID = dom.AttrValue(st.XML, uri, "xlink:href")
	}
	for _, email := range descendants(st, el, "email") {
		contrib.Emails = appendUnique(contrib.Emails, st.PlainText(email))
	}

	for _, aff := range dom.Elements(st.XML, el) {
		if st.XML.Type(aff) != "aff" {
			continue
		}
		// inline affiliation is bound to the node created for it, it may
		// have no id to look up
		if id, ok := st.affiliations[aff]; ok {
			contrib.Affiliations = appendUnique(contrib.Affiliations, id)
		} else {
			st.LookupMiss("aff", sourceID(st, aff), "Inline affiliation of contributor was not converted")
		}
	}
	for _, xref := range st.XML.FindAll(el, "xref") {
		rid := strings.Fields(dom.AttrValue(st.XML, xref, "rid"))
		switch dom.AttrValue(st.XML, xref, "ref-type") {
		case "aff":
			for _, r := range rid {
				if id := c.affiliationID(st, r); id != "" {
					contrib.Affiliations = appendUnique(contrib.Affiliations, id)
				} else {
					st.LookupMiss("aff", r, "Affiliation referenced by contributor not found")
				}
			}
		case "corresp":
			contrib.Corresponding = true
			for _, r := range rid {
				if corresp := st.XML.ElementByID(st.Tree, r); corresp != nil {
					for _, email := range descendants(st, corresp, "email") {
						contrib.Emails = appendUnique(contrib.Emails, st.PlainText(email))
					}
				}
			}
		}
	}
	st.Config.EnhanceContributor(st, contrib, el)
	return contrib
}

func (c *Converter) affiliationID(st *State, sid string) string {
	if sid == "" {
		return ""
	}
	for _, n := range st.Doc.BySourceID(sid) {
		if n.NodeType() == graph.TypeAffiliation {
			return n.NodeID()
		}
	}
	return ""
}

// extractCover builds synthetic cover node. Author names are joined into a
// single text and every name is annotated with a reference to its
// contributor node.
func (c *Converter) extractCover(st *State, article dom.Node) {
	meta := st.XML.Find(article, "front/article-meta")
	cover := &graph.Cover{Base: graph.NewBase(st.NextID("cover"), graph.TypeCover, "")}

	cover.Title = c.textField(st, st.XML.Find(meta, "title-group/article-title"), cover.ID, "title", "xref", "fn")

	var authors strings.Builder
	for _, id := range st.Doc.Authors {
		contrib, ok := graph.Get[*graph.Contributor](st.Doc, id)
		if !ok {
			continue
		}
		if authors.Len() > 0 {
			authors.WriteString(", ")
		}
		start := utf8.RuneCountInString(authors.String())
		authors.WriteString(contrib.Name)
		st.Stage(&graph.Annotation{
			ID:     st.NextID(graph.AnnoContributorReference),
			Kind:   graph.AnnoContributorReference,
			Path:   [2]string{cover.ID, "authors"},
			Range:  [2]int{start, start + utf8.RuneCountInString(contrib.Name)},
			Target: graph.ResolvedTo(id),
		})
	}
	cover.Authors = authors.String()

	if abstract := st.XML.Find(meta, "abstract"); abstract != nil {
		var parts []string
		for _, p := range descendants(st, abstract, "p") {
			if text := st.PlainText(p); text != "" {
				parts = append(parts, text)
			}
		}
		cover.Abstract = strings.Join(parts, " ")
	}

	st.Config.EnhanceCover(st, cover, article)
	if st.Commit(cover) {
		st.Config.ShowNode(st, cover)
	}
}

func (c *Converter) extractMetadata(st *State, article dom.Node) {
	meta := st.XML.Find(article, "front/article-meta")
	st.Doc.Title = st.FindPlain(meta, "title-group/article-title")

	c.publicationInfo(st, article, meta)

	first := true
	for _, el := range dom.Elements(st.XML, meta) {
		if st.XML.Type(el) != "abstract" {
			continue
		}
		ids := c.abstract(st, el)
		if first {
			st.Doc.Abstract = slices.DeleteFunc(slices.Clone(ids), func(id string) bool {
				n := st.Doc.Get(id)
				return n == nil || n.NodeType() == graph.TypeHeading
			})
			first = false
		}
		c.Show(st, ids...)
	}
}

func (c *Converter) abstract(st *State, el dom.Node) []string {
	hid := st.NextID("heading")
	title := c.textField(st, st.XML.Find(el, "title"), hid, "content")
	if title == "" {
		title = abstractTitle(dom.AttrValue(st.XML, el, "abstract-type"))
	}
	children := c.BodyNodes(st, el, "title", "object-id", "label")
	if len(children) == 0 {
		st.discard(hid)
		return nil
	}
	heading := &graph.Heading{
		Base:    graph.NewBase(hid, graph.TypeHeading, sourceID(st, el)),
		Level:   1,
		Content: title,
	}
	if !st.Commit(heading) {
		return children
	}
	return append([]string{hid}, children...)
}

func abstractTitle(abstractType string) string {
	switch abstractType {
	case "executive-summary":
		return "Digest"
	case "short", "summary":
		return "Summary"
	}
	return "Abstract"
}

func (c *Converter) publicationInfo(st *State, article, meta dom.Node) {
	info := &graph.PublicationInfo{
		Base:        graph.NewBase(st.NextID("publication_info"), graph.TypePublicationInfo, ""),
		PublishedOn: c.date(st, publicationDate(st, meta)),
		ReceivedOn:  c.date(st, st.XML.Find(meta, "history/date[@date-type='received']")),
		AcceptedOn:  c.date(st, st.XML.Find(meta, "history/date[@date-type='accepted']")),
		ArticleType: st.FindPlain(meta, "article-categories/subj-group[@subj-group-type='display-channel']/subject"),
		Journal:     st.FindPlain(article, "front/journal-meta/journal-title-group/journal-title"),
		DOI:         doiURL(st.FindPlain(meta, "article-id[@pub-id-type='doi']")),
	}
	if info.ArticleType == "" {
		info.ArticleType = dom.AttrValue(st.XML, article, "article-type")
	}
	if info.Journal == "" {
		info.Journal = st.FindPlain(article, "front/journal-meta/journal-title")
	}

	for _, group := range st.XML.FindAll(meta, "kwd-group") {
		var kwds []string
		for _, kwd := range st.XML.FindAll(group, "kwd") {
			if text := st.PlainText(kwd); text != "" {
				kwds = append(kwds, text)
			}
		}
		if dom.AttrValue(st.XML, group, "kwd-group-type") == "research-organism" {
			info.ResearchOrganisms = append(info.ResearchOrganisms, kwds...)
		} else {
			info.Keywords = append(info.Keywords, kwds...)
		}
	}
	for _, subject := range st.XML.FindAll(meta, "article-categories/subj-group[@subj-group-type='heading']/subject") {
		if text := st.PlainText(subject); text != "" {
			info.Subjects = append(info.Subjects, text)
		}
	}
	if related := st.XML.Find(meta, "related-article"); related != nil {
		info.RelatedArticle = doiURL(dom.AttrValue(st.XML, related, "xlink:href"))
	}
	for _, self := range st.XML.FindAll(meta, "self-uri") {
		href := st.Config.ResolveURL(st, dom.AttrValue(st.XML, self, "xlink:href"))
		switch dom.AttrValue(st.XML, self, "content-type") {
		case "pdf":
			info.PDFLink = href
		case "xml":
			info.XMLLink = href
		}
	}

	st.Config.EnhancePublicationInfo(st, info, article)
	if st.Commit(info) {
		st.Doc.ShowAt(graph.ViewInfo, info.ID, 0)
	}
}

func publicationDate(st *State, meta dom.Node) dom.Node {
	for _, q := range []string{
		"pub-date[@pub-type='epub']",
		"pub-date[@date-type='pub']",
		"pub-date[@pub-type='ppub']",
		"pub-date",
	} {
		if el := st.XML.Find(meta, q); el != nil {
			return el
		}
	}
	return nil
}

// date formats date element as YYYY-MM-DD, missing parts are omitted.
func (c *Converter) date(st *State, el dom.Node) string {
	if el == nil {
		return ""
	}
	year := st.FindPlain(el, "year")
	if year == "" {
		return ""
	}
	parts := []string{year}
	for _, q := range []string{"month", "day"} {
		v := st.FindPlain(el, q)
		if v == "" {
			break
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			st.Log.Debug("Unable to parse date part, ignoring", zap.String("part", q), zap.String("value", v))
			break
		}
		parts = append(parts, fmt.Sprintf("%02d", n))
	}
	return strings.Join(parts, "-")
}

// descendants returns elements of the given types under n in document order.
func descendants(st *State, n dom.Node, tags ...string) []dom.Node {
	return dom.Descendants(st.XML, n, dom.Tags(tags...), true)
}

func joinNonEmpty(sep string, parts ...string) string {
	var res []string
	for _, p := range parts {
		if p != "" {
			res = append(res, p)
		}
	}
	return strings.Join(res, sep)
}

func appendUnique(list []string, v string) []string {
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
