package nlm

import (
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"nlmc/dom"
	"nlmc/graph"
)

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func backends() map[string]dom.Backend {
	return map[string]dom.Backend{
		"etree": dom.NewEtree(),
		"xpath": dom.NewXPath(),
	}
}

func mustParse(t *testing.T, b dom.Backend, src string) dom.Node {
	t.Helper()

	tree, err := b.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

func mustImport(t *testing.T, b dom.Backend, src string, opts ...Option) *Result {
	t.Helper()

	res, err := NewConverter(testLogger(t), opts...).Import(b, mustParse(t, b, src))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if dangling := res.Doc.Dangling(); len(dangling) > 0 {
		t.Fatalf("dangling references: %v", dangling)
	}
	return res
}

const articleTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<article xmlns:xlink="http://www.w3.org/1999/xlink" xmlns:mml="http://www.w3.org/1998/Math/MathML" article-type="research-article" xml:lang="en">
<front>
<journal-meta>
	<journal-title-group><journal-title>Journal of Tests</journal-title></journal-title-group>
	<publisher><publisher-name>Test Press</publisher-name></publisher>
</journal-meta>
<article-meta>
	<article-id pub-id-type="publisher-id">00042</article-id>
	<article-id pub-id-type="doi">10.7554/eLife.00042</article-id>
	<title-group><article-title>Sample article</article-title></title-group>
	%s
</article-meta>
</front>
<body>%s</body>
<back>%s</back>
</article>`

// article builds a minimal article around meta, body and back fragments.
func article(meta, body, back string) string {
	return fmt.Sprintf(articleTemplate, meta, body, back)
}

func mustNode[T graph.Node](t *testing.T, d *graph.Document, id string) T {
	t.Helper()

	n, ok := graph.Get[T](d, id)
	if !ok {
		t.Fatalf("node %q missing or of unexpected type (%T)", id, d.Get(id))
	}
	return n
}

func textOf(t *testing.T, d *graph.Document, paragraphID string) string {
	t.Helper()

	p := mustNode[*graph.Paragraph](t, d, paragraphID)
	if len(p.Children) != 1 {
		t.Fatalf("paragraph %s expected single text child, got %v", paragraphID, p.Children)
	}
	return mustNode[*graph.Text](t, d, p.Children[0]).Content
}

func annotationsOf(d *graph.Document, owner string) []*graph.Annotation {
	var res []*graph.Annotation
	for _, n := range d.NodesOfType(graph.TypeAnnotation) {
		if a := n.(*graph.Annotation); a.Path[0] == owner {
			res = append(res, a)
		}
	}
	return res
}
