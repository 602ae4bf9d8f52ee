// Package nlm converts NLM/JATS tagged journal articles into a document graph.
//
// Conversion is a single threaded recursive descent over the source tree.
// Handlers are dispatched by element type, create nodes with generated ids and
// stage annotations whose targets are bound by a post pass once every node
// exists.
package nlm

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"nlmc/dom"
	"nlmc/graph"
)

// Options control text extraction details.
type Options struct {
	TrimWhitespace            bool
	RemoveInnerWhitespace     bool
	NormalizeUnicode          bool
	KeepUnstructuredCitations bool
	// Publisher forces configuration by name bypassing metadata lookup.
	Publisher string
}

// DefaultOptions returns options used when none are supplied.
func DefaultOptions() Options {
	return Options{
		TrimWhitespace:        true,
		RemoveInnerWhitespace: true,
		NormalizeUnicode:      true,
	}
}

type blockHandler func(st *State, el dom.Node) []string

// Converter holds immutable dispatch tables and may be used for any number of
// sequential or concurrent imports.
type Converter struct {
	log        *zap.Logger
	opts       Options
	publishers map[string]Configuration

	blocks      map[string]blockHandler
	annotations map[string]string
	inline      map[string]bool
	skipped     map[string]bool
	embeddable  map[string]bool
	targets     map[string][]graph.Type
}

type Option func(*Converter)

func WithOptions(opts Options) Option {
	return func(c *Converter) {
		c.opts = opts
	}
}

// WithPublishers sets configurations selectable by exact publisher name.
func WithPublishers(table map[string]Configuration) Option {
	return func(c *Converter) {
		c.publishers = table
	}
}

func NewConverter(log *zap.Logger, opts ...Option) *Converter {
	c := &Converter{
		log:  log.Named("nlm"),
		opts: DefaultOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.blocks = map[string]blockHandler{
		"p":            c.ParagraphGroup,
		"sec":          c.section,
		"app":          c.section,
		"app-group":    c.appGroup,
		"list":         c.list,
		"disp-formula": c.displayFormula,
		"boxed-text":   c.box,
		"disp-quote":   c.quote,
		"preformat":    c.preformat,
	}
	c.annotations = map[string]string{
		"bold":           graph.AnnoStrong,
		"italic":         graph.AnnoEmphasis,
		"monospace":      graph.AnnoCode,
		"sub":            graph.AnnoSubscript,
		"sup":            graph.AnnoSuperscript,
		"underline":      graph.AnnoUnderline,
		"ext-link":       graph.AnnoLink,
		"uri":            graph.AnnoLink,
		"email":          graph.AnnoLink,
		"xref":           graph.AnnoCrossReference,
		"inline-formula": graph.AnnoInlineFormula,
		"inline-graphic": graph.AnnoInlineImage,
	}
	// Inline elements without annotation of their own, their text is kept.
	c.inline = map[string]bool{
		"named-content":                 true,
		"styled-content":                true,
		"abbrev":                        true,
		"sc":                            true,
		"roman":                         true,
		"sans-serif":                    true,
		"overline":                      true,
		"strike":                        true,
		"span":                          true,
		"break":                         true,
		"inline-supplementary-material": true,
	}
	// Harvested globally before the body is visited.
	c.skipped = map[string]bool{
		"fig":                    true,
		"fig-group":              true,
		"table-wrap":             true,
		"table-wrap-group":       true,
		"supplementary-material": true,
		"media":                  true,
	}
	// Block level elements allowed inside paragraphs.
	c.embeddable = map[string]bool{
		"boxed-text":   true,
		"list":         true,
		"disp-formula": true,
		"disp-quote":   true,
		"preformat":    true,
	}
	// Source ids are not unique across node types (a figure and its caption
	// may share one), nodes of these types win over the first created one.
	c.targets = map[string][]graph.Type{
		graph.AnnoCitationReference:   {graph.TypeCitation},
		graph.AnnoFigureReference:     {graph.TypeFigure, graph.TypeTable, graph.TypeVideo, graph.TypeSupplement},
		graph.AnnoDefinitionReference: {graph.TypeDefinition},
	}
	return c
}

// Import converts a parsed article. The returned error is a
// *StructuralError when the input lacks required elements.
func (c *Converter) Import(xml dom.Adapter, tree dom.Node) (*Result, error) {
	st := newState(xml, tree, c.opts, c.log)
	if err := c.document(st, tree); err != nil {
		return nil, err
	}
	return &Result{
		Doc:         st.Doc,
		Diagnostics: st.Diagnostics(),
		Publisher:   st.publisher,
	}, nil
}

func (c *Converter) document(st *State, tree dom.Node) error {
	article := tree
	if st.XML.Type(tree) != "article" {
		if article = st.XML.Find(tree, "article"); article == nil {
			article = st.XML.Find(tree, ".//article")
		}
	}
	if article == nil {
		return &StructuralError{Element: "article", Reason: "root article element not found"}
	}
	st.Article = article

	if st.XML.Find(article, "front/article-meta") == nil {
		return &StructuralError{Element: "article-meta", Reason: "article has no front/article-meta"}
	}

	// Hooks may only be called after this point.
	c.selectConfiguration(st, article)

	if err := c.article(st, article); err != nil {
		return fmt.Errorf("article: %w", err)
	}

	c.resolveAnnotations(st)

	if dropped := st.Doc.NormalizeViews(); dropped > 0 {
		st.Log.Debug("Dropped stale view entries", zap.Int("count", dropped))
	}
	return nil
}

func (c *Converter) selectConfiguration(st *State, article dom.Node) {
	st.publisher, st.Config = DefaultPublisher, DefaultConfiguration{}

	if name := c.opts.Publisher; name != "" {
		if cfg, ok := c.publishers[name]; ok {
			st.Log.Debug("Using forced publisher configuration", zap.String("publisher", name))
			st.publisher, st.Config = name, cfg
			return
		}
		st.Log.Warn("Unknown publisher requested, using default configuration", zap.String("publisher", name))
		return
	}

	name := st.FindPlain(article, "front/journal-meta/publisher/publisher-name")
	if cfg, ok := c.publishers[name]; ok {
		st.Log.Debug("Selected publisher configuration", zap.String("publisher", name))
		st.publisher, st.Config = name, cfg
		return
	}
	st.Log.Debug("No publisher configuration matched, using default", zap.String("publisher", name))
}

func (c *Converter) article(st *State, article dom.Node) error {
	id, err := documentID(st, article)
	if err != nil {
		return err
	}
	st.Doc.ID = id
	if lang, ok := st.XML.Attr(article, "xml:lang"); ok {
		tag, err := language.Parse(strings.TrimSpace(lang))
		if err != nil {
			st.Log.Warn("Unable to parse article language, ignoring", zap.String("lang", lang), zap.Error(err))
		} else {
			st.Doc.Language = tag.String()
		}
	}

	c.extractDefinitions(st, article)
	c.extractAffiliations(st, article)
	c.extractContributors(st, article)
	if err := c.extractCitations(st, article); err != nil {
		return fmt.Errorf("citations: %w", err)
	}
	c.extractFigures(st, article)
	c.extractCover(st, article)
	c.extractMetadata(st, article)

	if body := st.XML.Find(article, "body"); body != nil {
		c.Show(st, c.BodyNodes(st, body)...)
	}
	if back := st.XML.Find(article, "back"); back != nil {
		for _, group := range st.XML.FindAll(back, "app-group") {
			c.Show(st, c.appGroup(st, group)...)
		}
	}

	st.Config.EnhanceArticle(c, st, article)
	return nil
}

func documentID(st *State, article dom.Node) (string, error) {
	if id := st.FindPlain(article, "front/article-meta/article-id[@pub-id-type='publisher-id']"); id != "" {
		return id, nil
	}
	refID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("unable to generate document id: %w", err)
	}
	st.Log.Warn("Article has no publisher id, generating", zap.Stringer("id", refID))
	return refID.String(), nil
}

// Show places top level nodes into views using active configuration.
func (c *Converter) Show(st *State, ids ...string) {
	for _, id := range ids {
		if n := st.Doc.Get(id); n != nil {
			st.Config.ShowNode(st, n)
		}
	}
}

func sourceID(st *State, el dom.Node) string {
	return dom.AttrValue(st.XML, el, "id")
}
