package nlm

import (
	"strings"

	"go.uber.org/zap"

	"nlmc/dom"
	"nlmc/graph"
)

func (c *Converter) extractCitations(st *State, article dom.Node) error {
	for _, ref := range dom.Descendants(st.XML, article, dom.Tags("ref"), true) {
		if err := c.citation(st, ref); err != nil {
			return err
		}
	}
	return nil
}

// citation converts reference entry. Entries without person-group are
// considered unstructured: they are skipped unless KeepUnstructuredCitations
// is set, in which case raw text becomes the citation source.
func (c *Converter) citation(st *State, ref dom.Node) error {
	sid, ok := st.XML.Attr(ref, "id")
	if !ok || sid == "" {
		return &StructuralError{Element: "ref", Reason: "reference entry has no id attribute"}
	}

	el := st.XML.Find(ref, "element-citation")
	if el == nil {
		el = st.XML.Find(ref, "mixed-citation")
	}
	if el == nil {
		el = st.XML.Find(ref, "citation")
	}
	if el == nil {
		st.Unsupported(ref, "Reference has no citation element, ignoring")
		return nil
	}

	cit := &graph.Citation{Label: st.FindPlain(ref, "label")}

	group := st.XML.Find(el, "person-group[@person-group-type='author']")
	if group == nil {
		group = st.XML.Find(el, "person-group")
	}
	if group == nil {
		if !st.Options.KeepUnstructuredCitations {
			st.Unsupported(ref, "Unstructured citation, ignoring")
			return nil
		}
		st.Log.Debug("Keeping unstructured citation as raw text", zap.String("id", sid))
		cit.Base = graph.NewBase(st.NextID("citation"), graph.TypeCitation, sid)
		cit.Source = st.PlainText(el)
		cit.Authors = []string{}
		c.commitCitation(st, cit)
		return nil
	}

	cit.Base = graph.NewBase(st.NextID("citation"), graph.TypeCitation, sid)
	cit.Structured = true
	cit.Authors = c.personNames(st, group)
	cit.Source = st.FindPlain(el, "source")
	cit.Volume = st.FindPlain(el, "volume")
	cit.FirstPage = st.FindPlain(el, "fpage")
	cit.LastPage = st.FindPlain(el, "lpage")
	cit.Year = st.FindPlain(el, "year")
	cit.PublisherName = st.FindPlain(el, "publisher-name")
	cit.PublisherLocation = st.FindPlain(el, "publisher-loc")
	cit.Comment = st.FindPlain(el, "comment")

	switch {
	case st.FindPlain(el, "article-title") != "":
		cit.Title = st.FindPlain(el, "article-title")
	case cit.Comment != "":
		cit.Title = cit.Comment
	case cit.Source != "":
		cit.Title = cit.Source
	default:
		cit.Source = st.PlainText(el)
	}

	if doi := st.FindPlain(el, "pub-id[@pub-id-type='doi']"); doi != "" {
		cit.DOI = doiURL(doi)
	} else if link := st.XML.Find(el, "ext-link[@ext-link-type='doi']"); link != nil {
		doi := dom.AttrValue(st.XML, link, "xlink:href")
		if doi == "" {
			doi = st.PlainText(link)
		}
		cit.DOI = doiURL(doi)
	}
	for _, link := range st.XML.FindAll(el, "ext-link[@ext-link-type='uri']") {
		if href := dom.AttrValue(st.XML, link, "xlink:href"); href != "" {
			cit.CitationURLs = append(cit.CitationURLs, href)
		}
	}

	c.commitCitation(st, cit)
	return nil
}

func (c *Converter) commitCitation(st *State, cit *graph.Citation) {
	if st.Commit(cit) {
		st.Config.ShowNode(st, cit)
	}
}

// personNames formats every person of group as "given family [suffix]",
// collaborations are taken verbatim.
func (c *Converter) personNames(st *State, group dom.Node) []string {
	names := []string{}
	for _, el := range dom.Elements(st.XML, group) {
		switch typ := st.XML.Type(el); typ {
		case "name", "string-name":
			if name := c.PersonName(st, el); name != "" {
				names = append(names, name)
			}
		case "collab":
			if name := st.PlainText(el); name != "" {
				names = append(names, name)
			}
		case "etal":
			names = append(names, "et al.")
		default:
			st.Log.Debug("Unexpected tag in person-group, ignoring", zap.String("parent", "person-group"), zap.String("tag", typ))
		}
	}
	return names
}

// PersonName formats name element as "given family [suffix]". Names without
// structure (string-name with text only) are returned as is.
func (c *Converter) PersonName(st *State, el dom.Node) string {
	if el == nil {
		return ""
	}
	surname := st.FindPlain(el, "surname")
	given := st.FindPlain(el, "given-names")
	if surname == "" && given == "" {
		return st.PlainText(el)
	}
	parts := []string{given, surname, st.FindPlain(el, "suffix")}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// doiURL turns bare DOI into resolvable URL.
func doiURL(doi string) string {
	doi = strings.TrimSpace(doi)
	switch {
	case doi == "":
		return ""
	case strings.HasPrefix(doi, "http://"), strings.HasPrefix(doi, "https://"):
		return doi
	}
	return "http://dx.doi.org/" + strings.TrimPrefix(doi, "doi:")
}
