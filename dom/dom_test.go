package dom

import (
	"strings"
	"testing"
)

const sampleArticle = `<?xml version="1.0" encoding="UTF-8"?>
<article xmlns:xlink="http://www.w3.org/1999/xlink">
<front><article-meta><article-id pub-id-type="doi">10.7554/eLife.00311</article-id><article-id pub-id-type="publisher-id">00311</article-id></article-meta></front>
<body><p id="p1">Hello <bold>big</bold> world<!-- note --></p><sec><fig id="f1"><graphic xlink:href="elife00311f001"/></fig></sec></body>
</article>`

func backends() map[string]Backend {
	return map[string]Backend{
		"etree": NewEtree(),
		"xpath": NewXPath(),
	}
}

func mustParse(t *testing.T, b Backend, xml string) Node {
	t.Helper()

	doc, err := b.Parse(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestAdapters(t *testing.T) {
	for name, b := range backends() {
		t.Run(name, func(t *testing.T) {
			doc := mustParse(t, b, sampleArticle)

			article := b.Find(doc, "article")
			if article == nil {
				t.Fatalf("article not found")
			}
			if got := b.Type(article); got != "article" {
				t.Fatalf("expected article type, got %q", got)
			}
			if got := FindText(b, article, "front/article-meta/article-id[@pub-id-type='publisher-id']"); got != "00311" {
				t.Fatalf("publisher id mismatch: %q", got)
			}
			if got := b.FindAll(article, ".//article-id"); len(got) != 2 {
				t.Fatalf("expected 2 article ids, got %d", len(got))
			}
			if b.Find(article, ".//missing") != nil {
				t.Fatalf("expected nil for missing element")
			}

			p := b.Find(article, "body/p")
			if p == nil {
				t.Fatalf("paragraph not found")
			}
			var types []string
			for _, c := range b.ChildNodes(p) {
				types = append(types, b.Type(c))
			}
			if got := strings.Join(types, ","); got != "text,bold,text,comment" {
				t.Fatalf("unexpected child types: %s", got)
			}
			if got := b.Text(p); got != "Hello big world" {
				t.Fatalf("text mismatch: %q", got)
			}
			if v, ok := b.Attr(p, "id"); !ok || v != "p1" {
				t.Fatalf("id attribute mismatch: %q %v", v, ok)
			}
			if _, ok := b.Attr(p, "class"); ok {
				t.Fatalf("unexpected class attribute")
			}

			bold := Elements(b, p)[0]
			if got := b.Type(b.Parent(bold)); got != "p" {
				t.Fatalf("parent type mismatch: %q", got)
			}
			if got := b.Serialize(bold); !strings.Contains(got, "<bold>big</bold>") {
				t.Fatalf("serialized markup mismatch: %q", got)
			}

			fig := b.ElementByID(doc, "f1")
			if fig == nil || b.Type(fig) != "fig" {
				t.Fatalf("fig not found by id")
			}
			graphic := b.Find(fig, "graphic")
			if got := AttrValue(b, graphic, "xlink:href"); got != "elife00311f001" {
				t.Fatalf("xlink:href mismatch: %q", got)
			}
			if b.ElementByID(doc, "it's") != nil {
				t.Fatalf("quoted id must not match")
			}
		})
	}
}

func TestDescendantsDocumentOrder(t *testing.T) {
	const src = `<article><body>
		<sec><sec><fig id="a"><fig id="nested"/></fig></sec></sec>
		<table-wrap id="b"/>
		<fig id="c"/>
	</body></article>`

	for name, b := range backends() {
		t.Run(name, func(t *testing.T) {
			doc := mustParse(t, b, src)
			found := Descendants(b, doc, Tags("fig", "table-wrap"), true)
			var ids []string
			for _, n := range found {
				ids = append(ids, AttrValue(b, n, "id"))
			}
			if got := strings.Join(ids, ","); got != "a,b,c" {
				t.Fatalf("unexpected order: %s", got)
			}

			all := Descendants(b, doc, Tags("fig"), false)
			if len(all) != 3 {
				t.Fatalf("expected 3 figures including nested, got %d", len(all))
			}
		})
	}
}

func TestIteratorBack(t *testing.T) {
	it := NewIterator([]Node{"a", "b"})
	if !it.HasNext() {
		t.Fatalf("expected next")
	}
	if it.Next() != "a" || it.Next() != "b" {
		t.Fatalf("unexpected iteration order")
	}
	if it.HasNext() {
		t.Fatalf("expected exhausted iterator")
	}
	it.Back()
	if !it.HasNext() || it.Next() != "b" {
		t.Fatalf("back did not rewind")
	}
	empty := NewIterator(nil).Back()
	if empty.HasNext() {
		t.Fatalf("empty iterator has next")
	}
}
