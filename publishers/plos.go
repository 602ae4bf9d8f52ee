package publishers

import (
	"net/url"

	"nlmc/dom"
	"nlmc/graph"
	"nlmc/nlm"
)

const plosFetchObject = "http://www.plosone.org/article/fetchObject.action"

// PLOSConfiguration fetches assets through the PLOS object service.
type PLOSConfiguration struct {
	nlm.DefaultConfiguration
}

func (PLOSConfiguration) ResolveURL(_ *nlm.State, ref string) string {
	if ref == "" {
		return ""
	}
	return plosFetchObject + "?uri=" + url.QueryEscape(ref) + "&representation=PNG_L"
}

func (PLOSConfiguration) EnhanceVideo(_ *nlm.State, n *graph.Video, _ dom.Node) {
	n.URL = placeholderVideo
}
