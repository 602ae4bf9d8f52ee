package dom

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

// Etree implements Backend with github.com/beevik/etree. Compiled paths are
// cached, so a single instance may be reused across conversions.
type Etree struct {
	mu    sync.Mutex
	paths map[string]etree.Path
}

// NewEtree returns etree based backend.
func NewEtree() *Etree {
	return &Etree{paths: make(map[string]etree.Path)}
}

// Parse reads XML document. Publisher XML is frequently sloppy: parsing is
// permissive, HTML named entities are understood and declared encodings are
// honored.
func (a *Etree) Parse(r io.Reader) (Node, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Entity:        xml.HTMLEntity,
		Permissive:    true,
	}
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read XML: %w", err)
	}
	return doc, nil
}

func (a *Etree) path(query string) etree.Path {
	a.mu.Lock()
	defer a.mu.Unlock()

	if p, ok := a.paths[query]; ok {
		return p
	}
	p, err := etree.CompilePath(query)
	if err != nil {
		panic(fmt.Sprintf("invalid query %q: %v", query, err))
	}
	a.paths[query] = p
	return p
}

func element(n Node) *etree.Element {
	switch v := n.(type) {
	case *etree.Document:
		return &v.Element
	case *etree.Element:
		return v
	}
	return nil
}

func (a *Etree) Find(n Node, query string) Node {
	el := element(n)
	if el == nil {
		return nil
	}
	if found := el.FindElementPath(a.path(query)); found != nil {
		return found
	}
	return nil
}

func (a *Etree) FindAll(n Node, query string) []Node {
	el := element(n)
	if el == nil {
		return nil
	}
	found := el.FindElementsPath(a.path(query))
	res := make([]Node, 0, len(found))
	for _, f := range found {
		res = append(res, f)
	}
	return res
}

func (a *Etree) Attr(n Node, name string) (string, bool) {
	el := element(n)
	if el == nil {
		return "", false
	}
	if attr := el.SelectAttr(name); attr != nil {
		return attr.Value, true
	}
	return "", false
}

func (a *Etree) Type(n Node) string {
	switch v := n.(type) {
	case *etree.Document:
		return TypeDocument
	case *etree.Element:
		return v.Tag
	case *etree.CharData:
		return TypeText
	case *etree.Comment:
		return TypeComment
	}
	return TypeInstruction
}

func (a *Etree) Text(n Node) string {
	switch v := n.(type) {
	case *etree.CharData:
		return v.Data
	case *etree.Comment:
		return v.Data
	}
	el := element(n)
	if el == nil {
		return ""
	}
	var sb strings.Builder
	collectText(&sb, el)
	return sb.String()
}

func collectText(sb *strings.Builder, el *etree.Element) {
	for _, tok := range el.Child {
		switch v := tok.(type) {
		case *etree.CharData:
			sb.WriteString(v.Data)
		case *etree.Element:
			collectText(sb, v)
		}
	}
}

func (a *Etree) ChildNodes(n Node) []Node {
	el := element(n)
	if el == nil {
		return nil
	}
	res := make([]Node, 0, len(el.Child))
	for _, tok := range el.Child {
		res = append(res, tok)
	}
	return res
}

func (a *Etree) Parent(n Node) Node {
	tok, ok := n.(etree.Token)
	if !ok {
		return nil
	}
	if _, isDoc := n.(*etree.Document); isDoc {
		return nil
	}
	if p := tok.Parent(); p != nil {
		return p
	}
	return nil
}

func (a *Etree) Serialize(n Node) string {
	switch v := n.(type) {
	case *etree.Document:
		s, _ := v.WriteToString()
		return s
	case *etree.Element:
		doc := etree.NewDocument()
		doc.WriteSettings = etree.WriteSettings{CanonicalText: true, CanonicalAttrVal: true}
		doc.SetRoot(v.Copy())
		s, _ := doc.WriteToString()
		return s
	case *etree.CharData:
		var sb strings.Builder
		_ = xml.EscapeText(&sb, []byte(v.Data))
		return sb.String()
	}
	return ""
}

func (a *Etree) ElementByID(tree Node, id string) Node {
	if !validID(id) {
		return nil
	}
	return a.Find(tree, ".//*[@id='"+id+"']")
}
