package publishers

import (
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"nlmc/dom"
	"nlmc/graph"
	"nlmc/nlm"
)

const (
	elifeSite  = "http://elifesciences.org/"
	elifeLogo  = "http://lens.elifesciences.org/lens-elife/styles/elife.png"
	elifeCDN   = "http://cdn.elifesciences.org/elife-articles/"
	elifeMovie = "http://static.movie-usa.glencoesoftware.com/"
)

// ELifeConfiguration serves figures from the eLife CDN, links videos to their
// transcoded variants and adds article commentary and license information.
type ELifeConfiguration struct {
	nlm.DefaultConfiguration
}

// EnhanceFigure points figure to its SVG rendition, for example
// http://cdn.elifesciences.org/elife-articles/00768/svg/elife00768f001.svg
func (ELifeConfiguration) EnhanceFigure(st *nlm.State, n *graph.Figure, el dom.Node) {
	href := graphicHref(st, el)
	if href == "" {
		return
	}
	n.URL = elifeCDN + st.Doc.ID + "/svg/" + href + ".svg"
}

func (ELifeConfiguration) EnhanceVideo(st *nlm.State, n *graph.Video, el dom.Node) {
	href := dom.AttrValue(st.XML, el, "xlink:href")
	if href == "" {
		if media := st.XML.Find(el, "media"); media != nil {
			href = dom.AttrValue(st.XML, media, "xlink:href")
		}
	}
	name, _, _ := strings.Cut(href, ".")
	if name == "" {
		st.Log.Debug("Video without media reference", zap.String("id", n.Source))
		return
	}
	n.URL = elifeMovie + "mp4/10.7554/" + name + ".mp4"
	n.URLOGV = elifeMovie + "ogv/10.7554/" + name + ".ogv"
	n.URLWebM = elifeMovie + "webm/10.7554/" + name + ".webm"
	n.Poster = elifeMovie + "jpg/10.7554/" + name + ".jpg"
}

// EnhanceCover adds navigation from journal home through display channel to
// subject categories.
func (ELifeConfiguration) EnhanceCover(st *nlm.State, n *graph.Cover, article dom.Node) {
	meta := st.XML.Find(article, "front/article-meta")
	n.Breadcrumbs = []graph.Breadcrumb{{Name: "eLife", URL: elifeSite, Image: elifeLogo}}

	channel := st.FindPlain(meta, "article-categories/subj-group[@subj-group-type='display-channel']/subject")
	if channel != "" {
		n.Breadcrumbs = append(n.Breadcrumbs, category(channel))
	}
	for _, subject := range st.XML.FindAll(meta, "article-categories/subj-group[@subj-group-type='heading']/subject") {
		if name := st.PlainText(subject); name != "" {
			n.Breadcrumbs = append(n.Breadcrumbs, category(name))
		}
	}
}

func category(name string) graph.Breadcrumb {
	return graph.Breadcrumb{Name: name, URL: elifeSite + "category/" + slug.Make(name)}
}

func (c ELifeConfiguration) EnhanceArticle(cv *nlm.Converter, st *nlm.State, article dom.Node) {
	articleCommentary(cv, st)
	c.enhanceInfo(cv, st, article)
}

func (ELifeConfiguration) enhanceInfo(cv *nlm.Converter, st *nlm.State, article dom.Node) {
	permissions := st.XML.Find(article, "front/article-meta/permissions")
	if permissions == nil {
		return
	}

	nodes := []string{heading(st, 1, "Copyright and License")}
	if copyright := st.XML.Find(permissions, "copyright-statement"); copyright != nil {
		nodes = append(nodes, cv.Paragraph(st, copyright))
	}
	if ps := dom.Descendants(st.XML, permissions, dom.Tags("p", "license-p"), true); len(ps) > 0 {
		nodes = append(nodes, cv.ParagraphGroup(st, ps[0])...)
	}
	showArticleInfo(st, nodes)
}
