package nlm

import (
	"nlmc/dom"
	"nlmc/graph"
)

// Configuration supplies publisher specific behavior. Hooks receive nodes
// before they are committed and may patch their fields in place.
type Configuration interface {
	EnhanceFigure(st *State, n *graph.Figure, el dom.Node)
	EnhanceTable(st *State, n *graph.Table, el dom.Node)
	EnhanceVideo(st *State, n *graph.Video, el dom.Node)
	EnhanceSupplement(st *State, n *graph.Supplement, el dom.Node)
	EnhanceCover(st *State, n *graph.Cover, article dom.Node)
	EnhanceContributor(st *State, n *graph.Contributor, el dom.Node)
	// EnhanceArticle runs after the body has been converted and may append
	// content of its own.
	EnhanceArticle(cv *Converter, st *State, article dom.Node)
	EnhancePublicationInfo(st *State, n *graph.PublicationInfo, article dom.Node)
	EnhanceAnnotationData(st *State, a *graph.Annotation, el dom.Node, tag string)
	// ResolveURL maps an asset reference found in the source to a URL.
	ResolveURL(st *State, url string) string
	// ShowNode places a top level node into a view.
	ShowNode(st *State, n graph.Node)
}

// DefaultConfiguration is used when no publisher matches. Publisher
// configurations embed it and override what they need.
type DefaultConfiguration struct{}

func (DefaultConfiguration) EnhanceFigure(*State, *graph.Figure, dom.Node)         {}
func (DefaultConfiguration) EnhanceTable(*State, *graph.Table, dom.Node)           {}
func (DefaultConfiguration) EnhanceVideo(*State, *graph.Video, dom.Node)           {}
func (DefaultConfiguration) EnhanceSupplement(*State, *graph.Supplement, dom.Node) {}
func (DefaultConfiguration) EnhanceCover(*State, *graph.Cover, dom.Node)           {}
func (DefaultConfiguration) EnhanceContributor(*State, *graph.Contributor, dom.Node) {}
func (DefaultConfiguration) EnhanceArticle(*Converter, *State, dom.Node)           {}

func (DefaultConfiguration) EnhancePublicationInfo(*State, *graph.PublicationInfo, dom.Node) {}

func (DefaultConfiguration) EnhanceAnnotationData(*State, *graph.Annotation, dom.Node, string) {}

// ResolveURL leaves source reference as is: assets are expected next to the
// source XML.
func (DefaultConfiguration) ResolveURL(_ *State, url string) string {
	return url
}

func (DefaultConfiguration) ShowNode(st *State, n graph.Node) {
	st.Doc.Show(ViewFor(n.NodeType()), n.NodeID())
}

// DefaultPublisher is reported in Result.Publisher when no configuration
// matched.
const DefaultPublisher = "default"

// ViewFor returns the view a top level node of type t belongs to.
func ViewFor(t graph.Type) string {
	switch t {
	case graph.TypeFigure, graph.TypeTable, graph.TypeVideo, graph.TypeSupplement:
		return graph.ViewFigures
	case graph.TypeCitation:
		return graph.ViewCitations
	case graph.TypeDefinition:
		return graph.ViewDefinitions
	case graph.TypePublicationInfo:
		return graph.ViewInfo
	}
	return graph.ViewContent
}
