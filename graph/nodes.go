package graph

// Type tags node variants. Values are part of the serialized contract.
type Type string

const (
	TypeParagraph       Type = "paragraph"
	TypeHeading         Type = "heading"
	TypeText            Type = "text"
	TypeList            Type = "list"
	TypeFormula         Type = "formula"
	TypeFigure          Type = "figure"
	TypeTable           Type = "table"
	TypeVideo           Type = "video"
	TypeSupplement      Type = "supplement"
	TypeCaption         Type = "caption"
	TypeBox             Type = "box"
	TypeCitation        Type = "citation"
	TypeAffiliation     Type = "affiliation"
	TypeContributor     Type = "contributor"
	TypeCover           Type = "cover"
	TypePublicationInfo Type = "publication_info"
	TypeAnnotation      Type = "annotation"
	TypeDefinition      Type = "definition"
	TypeComposite       Type = "composite"
)

// Node is implemented by every variant stored in a Document.
type Node interface {
	NodeID() string
	NodeType() Type
	SourceID() string
}

// Base carries fields shared by all block node variants.
type Base struct {
	ID     string `json:"id"`
	Type   Type   `json:"type"`
	Source string `json:"source_id,omitempty"`
}

func (b *Base) NodeID() string   { return b.ID }
func (b *Base) NodeType() Type   { return b.Type }
func (b *Base) SourceID() string { return b.Source }

// NewBase is a shortcut used by node constructors.
func NewBase(id string, typ Type, source string) Base {
	return Base{ID: id, Type: typ, Source: source}
}

type Paragraph struct {
	Base
	Children []string `json:"children"`
}

type Heading struct {
	Base
	Level   int    `json:"level"`
	Content string `json:"content"`
}

type Text struct {
	Base
	Content string `json:"content"`
}

type List struct {
	Base
	Ordered bool     `json:"ordered"`
	Items   []string `json:"items"`
}

// Formula keeps every alternative representation found in the source in
// parallel slices, Format[i] describes Data[i].
type Formula struct {
	Base
	Label  string   `json:"label,omitempty"`
	Inline bool     `json:"inline"`
	Format []string `json:"format"`
	Data   []string `json:"data"`
}

// Formula representation formats.
const (
	FormatImage   = "image"
	FormatSVG     = "svg"
	FormatMathML  = "mathml"
	FormatLaTeX   = "latex"
	FormatText    = "text"
	FormatUnknown = "unknown"
)

type Figure struct {
	Base
	Label    string `json:"label"`
	Title    string `json:"title,omitempty"`
	URL      string `json:"url"`
	LargeURL string `json:"large_url,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Position string `json:"position,omitempty"`
	Attrib   string `json:"attrib,omitempty"`
}

type Table struct {
	Base
	Label   string   `json:"label"`
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content"`
	Caption string   `json:"caption,omitempty"`
	Footers []string `json:"footers,omitempty"`
}

type Video struct {
	Base
	Label   string `json:"label"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url"`
	URLOGV  string `json:"url_ogv,omitempty"`
	URLWebM string `json:"url_webm,omitempty"`
	Poster  string `json:"poster,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type Supplement struct {
	Base
	Label   string `json:"label"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

type Caption struct {
	Base
	Title    string   `json:"title,omitempty"`
	Children []string `json:"children"`
}

type Box struct {
	Base
	Label    string   `json:"label,omitempty"`
	Children []string `json:"children"`
}

type Citation struct {
	Base
	Label             string   `json:"label,omitempty"`
	Title             string   `json:"title"`
	Authors           []string `json:"authors"`
	Source            string   `json:"source,omitempty"`
	Volume            string   `json:"volume,omitempty"`
	FirstPage         string   `json:"fpage,omitempty"`
	LastPage          string   `json:"lpage,omitempty"`
	Year              string   `json:"year,omitempty"`
	PublisherName     string   `json:"publisher_name,omitempty"`
	PublisherLocation string   `json:"publisher_location,omitempty"`
	DOI               string   `json:"doi,omitempty"`
	CitationURLs      []string `json:"citation_urls,omitempty"`
	Comment           string   `json:"comment,omitempty"`
	// Structured is false for raw text fallbacks of unstructured references.
	Structured bool `json:"structured"`
}

type Affiliation struct {
	Base
	Label       string `json:"label,omitempty"`
	Department  string `json:"department,omitempty"`
	Institution string `json:"institution,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`
	SpecificUse string `json:"specific_use,omitempty"`
}

type Contributor struct {
	Base
	Name              string   `json:"name"`
	ContributorType   string   `json:"contributor_type,omitempty"`
	Role              string   `json:"role,omitempty"`
	Affiliations      []string `json:"affiliations"`
	Emails            []string `json:"emails,omitempty"`
	ORCID             string   `json:"orcid,omitempty"`
	EqualContribution bool     `json:"equal_contrib,omitempty"`
	Deceased          bool     `json:"deceased,omitempty"`
	Corresponding     bool     `json:"corresponding,omitempty"`
	Image             string   `json:"image,omitempty"`
}

// Breadcrumb is a navigation hint publishers attach to the cover.
type Breadcrumb struct {
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
	Image string `json:"image,omitempty"`
}

type Cover struct {
	Base
	Title       string       `json:"title"`
	Authors     string       `json:"authors"`
	Abstract    string       `json:"abstract,omitempty"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs,omitempty"`
}

type PublicationInfo struct {
	Base
	PublishedOn       string   `json:"published_on,omitempty"`
	ReceivedOn        string   `json:"received_on,omitempty"`
	AcceptedOn        string   `json:"accepted_on,omitempty"`
	Keywords          []string `json:"keywords,omitempty"`
	ResearchOrganisms []string `json:"research_organisms,omitempty"`
	Subjects          []string `json:"subjects,omitempty"`
	ArticleType       string   `json:"article_type,omitempty"`
	Journal           string   `json:"journal,omitempty"`
	DOI               string   `json:"doi,omitempty"`
	RelatedArticle    string   `json:"related_article,omitempty"`
	PDFLink           string   `json:"pdf_link,omitempty"`
	XMLLink           string   `json:"xml_link,omitempty"`
	JSONLink          string   `json:"json_link,omitempty"`
}

type Definition struct {
	Base
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Composite is a generic ordered container, used for publisher supplied
// sections such as article info.
type Composite struct {
	Base
	Children []string `json:"children"`
}
