package dom

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// XPath implements Backend with github.com/antchfx/xmlquery and full XPath 1.0
// expressions. Compiled expressions are cached.
type XPath struct {
	mu    sync.Mutex
	exprs map[string]*xpath.Expr
}

// NewXPath returns xmlquery based backend.
func NewXPath() *XPath {
	return &XPath{exprs: make(map[string]*xpath.Expr)}
}

// Parse reads XML document in non-strict mode with HTML named entities.
// xmlquery installs charset reader on its own.
func (a *XPath) Parse(r io.Reader) (Node, error) {
	doc, err := xmlquery.ParseWithOptions(r, xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict: false,
			Entity: xml.HTMLEntity,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read XML: %w", err)
	}
	return doc, nil
}

func (a *XPath) expr(query string) *xpath.Expr {
	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.exprs[query]; ok {
		return e
	}
	e, err := xpath.Compile(query)
	if err != nil {
		panic(fmt.Sprintf("invalid query %q: %v", query, err))
	}
	a.exprs[query] = e
	return e
}

func qnode(n Node) *xmlquery.Node {
	if v, ok := n.(*xmlquery.Node); ok {
		return v
	}
	return nil
}

func (a *XPath) Find(n Node, query string) Node {
	q := qnode(n)
	if q == nil {
		return nil
	}
	if found := xmlquery.QuerySelector(q, a.expr(query)); found != nil {
		return found
	}
	return nil
}

func (a *XPath) FindAll(n Node, query string) []Node {
	q := qnode(n)
	if q == nil {
		return nil
	}
	found := xmlquery.QuerySelectorAll(q, a.expr(query))
	res := make([]Node, 0, len(found))
	for _, f := range found {
		res = append(res, f)
	}
	return res
}

func (a *XPath) Attr(n Node, name string) (string, bool) {
	q := qnode(n)
	if q == nil {
		return "", false
	}
	space, local := "", name
	if i := strings.IndexByte(name, ':'); i > 0 {
		space, local = name[:i], name[i+1:]
	}
	for _, attr := range q.Attr {
		if attr.Name.Local != local {
			continue
		}
		if space == "" && attr.Name.Space == "" {
			return attr.Value, true
		}
		if space != "" && matchSpace(space, attr.Name.Space, attr.NamespaceURI) {
			return attr.Value, true
		}
	}
	return "", false
}

// xmlNamespace is bound to the predefined "xml" prefix, encoding/xml reports
// it instead of the prefix.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

func matchSpace(prefix, space, uri string) bool {
	if prefix == "xml" && (space == xmlNamespace || uri == xmlNamespace) {
		return true
	}
	return space == prefix || uri == prefix || strings.HasSuffix(uri, "/"+prefix)
}

func (a *XPath) Type(n Node) string {
	q := qnode(n)
	if q == nil {
		return TypeInstruction
	}
	switch q.Type {
	case xmlquery.DocumentNode:
		return TypeDocument
	case xmlquery.ElementNode:
		return q.Data
	case xmlquery.TextNode, xmlquery.CharDataNode:
		return TypeText
	case xmlquery.CommentNode:
		return TypeComment
	}
	return TypeInstruction
}

func (a *XPath) Text(n Node) string {
	q := qnode(n)
	if q == nil {
		return ""
	}
	switch q.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode, xmlquery.CommentNode:
		return q.Data
	}
	var sb strings.Builder
	collectQueryText(&sb, q)
	return sb.String()
}

func collectQueryText(sb *strings.Builder, n *xmlquery.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			sb.WriteString(c.Data)
		case xmlquery.ElementNode:
			collectQueryText(sb, c)
		}
	}
}

func (a *XPath) ChildNodes(n Node) []Node {
	q := qnode(n)
	if q == nil {
		return nil
	}
	var res []Node
	for c := q.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.DeclarationNode {
			continue
		}
		res = append(res, c)
	}
	return res
}

func (a *XPath) Parent(n Node) Node {
	q := qnode(n)
	if q == nil || q.Parent == nil || q.Type == xmlquery.DocumentNode {
		return nil
	}
	return q.Parent
}

func (a *XPath) Serialize(n Node) string {
	q := qnode(n)
	if q == nil {
		return ""
	}
	return q.OutputXML(true)
}

func (a *XPath) ElementByID(tree Node, id string) Node {
	if !validID(id) {
		return nil
	}
	return a.Find(tree, "//*[@id='"+id+"']")
}
