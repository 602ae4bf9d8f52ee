package publishers

import (
	"nlmc/dom"
	"nlmc/graph"
	"nlmc/nlm"
)

// PeerJConfiguration takes figure references verbatim.
type PeerJConfiguration struct {
	nlm.DefaultConfiguration
}

func (PeerJConfiguration) EnhanceFigure(st *nlm.State, n *graph.Figure, el dom.Node) {
	if href := graphicHref(st, el); href != "" {
		n.URL = href
	}
}

func (PeerJConfiguration) EnhanceVideo(_ *nlm.State, n *graph.Video, _ dom.Node) {
	n.URL = placeholderVideo
}
