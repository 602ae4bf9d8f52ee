package graph

import (
	"encoding/json"
)

// Annotation kinds.
const (
	AnnoStrong               = "strong"
	AnnoEmphasis             = "emphasis"
	AnnoCode                 = "code"
	AnnoSubscript            = "subscript"
	AnnoSuperscript          = "superscript"
	AnnoUnderline            = "underline"
	AnnoLink                 = "link"
	AnnoCrossReference       = "cross_reference"
	AnnoCitationReference    = "citation_reference"
	AnnoFigureReference      = "figure_reference"
	AnnoDefinitionReference  = "definition_reference"
	AnnoContributorReference = "contributor_reference"
	AnnoInlineFormula        = "inline_formula"
	AnnoInlineImage          = "inline_image"
)

// Reference is an annotation target. Converter stages it with the source id
// taken from XML and the post processor fills NodeID once the referenced node
// exists.
type Reference struct {
	SourceID string
	NodeID   string
}

// ResolvedTo creates reference pointing to existing node.
func ResolvedTo(id string) *Reference {
	return &Reference{NodeID: id}
}

// Unresolved creates reference still expressed as source id.
func Unresolved(sourceID string) *Reference {
	return &Reference{SourceID: sourceID}
}

func (r *Reference) Resolved() bool {
	return r != nil && r.NodeID != ""
}

// Annotation is a span over a text field of another node.
type Annotation struct {
	ID    string
	Kind  string
	Path  [2]string
	Range [2]int
	// Target is nil for pure styling annotations.
	Target *Reference
	URL    string
}

func (a *Annotation) NodeID() string   { return a.ID }
func (a *Annotation) NodeType() Type   { return TypeAnnotation }
func (a *Annotation) SourceID() string { return "" }

// TargetID returns resolved node id, or source id placeholder while the
// reference is still unresolved.
func (a *Annotation) TargetID() string {
	switch {
	case a.Target == nil:
		return ""
	case a.Target.Resolved():
		return a.Target.NodeID
	}
	return a.Target.SourceID
}

type annotationJSON struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Path             [2]string `json:"path"`
	Range            [2]int    `json:"range"`
	Target           string    `json:"target,omitempty"`
	UnresolvedTarget string    `json:"unresolved_target,omitempty"`
	URL              string    `json:"url,omitempty"`
}

// MarshalJSON writes annotation in the shape viewers expect: kind goes to
// "type" and only resolved references appear as "target".
func (a *Annotation) MarshalJSON() ([]byte, error) {
	out := annotationJSON{
		ID:    a.ID,
		Type:  a.Kind,
		Path:  a.Path,
		Range: a.Range,
		URL:   a.URL,
	}
	if a.Target != nil {
		if a.Target.Resolved() {
			out.Target = a.Target.NodeID
		} else {
			out.UnresolvedTarget = a.Target.SourceID
		}
	}
	return json.Marshal(out)
}
