package publishers

import (
	"strings"

	"go.uber.org/zap"

	"nlmc/dom"
	"nlmc/graph"
	"nlmc/nlm"
)

const landesFigures = "https://www.landesbioscience.com/article_figure/journals/"

// landesJournals maps journal-id to the journal path segment of figure URLs.
var landesJournals = map[string]string{
	"CC":   "cc",
	"INTV": "intravital",
	"CIB":  "cib",
}

// LandesConfiguration serves figures from the publisher site and labels them
// uniformly.
type LandesConfiguration struct {
	nlm.DefaultConfiguration
}

func (LandesConfiguration) EnhanceFigure(st *nlm.State, n *graph.Figure, el dom.Node) {
	n.Label = nlm.LabelFigure

	href := graphicHref(st, el)
	if href == "" {
		return
	}
	id := st.FindPlain(st.Article, "front/journal-meta/journal-id")
	journal, ok := landesJournals[id]
	if !ok {
		journal = strings.ToLower(id)
		st.Log.Debug("Unknown Landes journal, using its id", zap.String("journal-id", id))
	}
	n.URL = landesFigures + journal + "/" + href
	n.LargeURL = n.URL
}
