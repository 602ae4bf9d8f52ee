package graph

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
)

func mustCreate(t *testing.T, d *Document, n Node) {
	t.Helper()
	if err := d.Create(n); err != nil {
		t.Fatalf("create %s: %v", n.NodeID(), err)
	}
}

func TestCreateRejectsDuplicates(t *testing.T) {
	d := New()
	mustCreate(t, d, &Text{Base: NewBase("text_1", TypeText, ""), Content: "a"})

	if err := d.Create(&Text{Base: NewBase("text_1", TypeText, ""), Content: "b"}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if err := d.Create(&Text{Base: NewBase("", TypeText, "")}); err == nil {
		t.Fatalf("expected empty id error")
	}
	txt, ok := Get[*Text](d, "text_1")
	if !ok || txt.Content != "a" {
		t.Fatalf("original node replaced: %+v", txt)
	}
	if _, ok := Get[*Figure](d, "text_1"); ok {
		t.Fatalf("typed get must fail on type mismatch")
	}
}

func TestBySourceIDKeepsCreationOrder(t *testing.T) {
	d := New()
	mustCreate(t, d, &Caption{Base: NewBase("caption_1", TypeCaption, "fig1")})
	mustCreate(t, d, &Figure{Base: NewBase("figure_1", TypeFigure, "fig1")})
	mustCreate(t, d, &Citation{Base: NewBase("citation_1", TypeCitation, "bib1")})

	got := d.BySourceID("fig1")
	if len(got) != 2 || got[0].NodeID() != "caption_1" || got[1].NodeID() != "figure_1" {
		t.Fatalf("unexpected source lookup result: %v", got)
	}
	if len(d.BySourceID("nope")) != 0 {
		t.Fatalf("expected empty result for unknown source id")
	}
	if n := len(d.NodesOfType(TypeCitation)); n != 1 {
		t.Fatalf("expected one citation, got %d", n)
	}
}

func TestNormalizeViews(t *testing.T) {
	d := New()
	mustCreate(t, d, &Heading{Base: NewBase("heading_1", TypeHeading, ""), Level: 1})
	mustCreate(t, d, &Paragraph{Base: NewBase("paragraph_1", TypeParagraph, "")})

	d.Show(ViewContent, "paragraph_1", "heading_1", "ghost_1", "paragraph_1")
	d.ShowAt(ViewContent, "heading_1", 0)

	dropped := d.NormalizeViews()
	if dropped != 3 {
		t.Fatalf("expected 3 dropped entries, got %d", dropped)
	}
	want := []string{"heading_1", "paragraph_1"}
	if got := d.View(ViewContent); !slices.Equal(got, want) {
		t.Fatalf("unexpected view: %v", got)
	}
	for _, name := range []string{ViewFigures, ViewCitations, ViewInfo, ViewDefinitions} {
		if v := d.View(name); len(v) != 0 {
			t.Fatalf("view %s expected empty, got %v", name, v)
		}
	}
}

func TestDangling(t *testing.T) {
	d := New()
	mustCreate(t, d, &Paragraph{Base: NewBase("paragraph_1", TypeParagraph, ""), Children: []string{"text_1", "text_2"}})
	mustCreate(t, d, &Text{Base: NewBase("text_1", TypeText, "")})
	mustCreate(t, d, &Annotation{ID: "emphasis_1", Kind: AnnoEmphasis, Path: [2]string{"text_1", "content"}})
	d.Show(ViewContent, "paragraph_1", "missing_1")

	got := d.Dangling()
	want := []string{"paragraph_1 -> text_2", "view:content -> missing_1"}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected dangling list: %v", got)
	}
}

func TestAnnotationJSON(t *testing.T) {
	tests := []struct {
		name   string
		target *Reference
		want   string
		absent string
	}{
		{"resolved", ResolvedTo("citation_1"), `"target":"citation_1"`, "unresolved_target"},
		{"unresolved", Unresolved("bib9"), `"unresolved_target":"bib9"`, `"target"`},
		{"styling", nil, `"type":"strong"`, "target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind := AnnoCitationReference
			if tt.target == nil {
				kind = AnnoStrong
			}
			a := &Annotation{ID: "a_1", Kind: kind, Path: [2]string{"text_1", "content"}, Range: [2]int{0, 3}, Target: tt.target}
			data, err := json.Marshal(a)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			s := string(data)
			if !strings.Contains(s, tt.want) {
				t.Fatalf("expected %s in %s", tt.want, s)
			}
			if strings.Contains(s, tt.absent) {
				t.Fatalf("unexpected %s in %s", tt.absent, s)
			}
			if !strings.Contains(s, `"range":[0,3]`) || !strings.Contains(s, `"path":["text_1","content"]`) {
				t.Fatalf("path or range missing: %s", s)
			}
		})
	}
}

func TestDocumentJSON(t *testing.T) {
	d := New()
	d.ID = "00311"
	d.Title = "Title"
	mustCreate(t, d, &Text{Base: NewBase("text_1", TypeText, "p1"), Content: "hello"})
	d.Show(ViewContent, "text_1")

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out struct {
		ID      string                     `json:"id"`
		Authors []string                   `json:"authors"`
		Nodes   map[string]json.RawMessage `json:"nodes"`
		Views   map[string][]string        `json:"views"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.ID != "00311" || out.Authors == nil {
		t.Fatalf("unexpected header: %s", data)
	}
	if !strings.Contains(string(out.Nodes["text_1"]), `"source_id":"p1"`) {
		t.Fatalf("node source id missing: %s", out.Nodes["text_1"])
	}
	if len(out.Views) != 5 || !slices.Equal(out.Views[ViewContent], []string{"text_1"}) {
		t.Fatalf("unexpected views: %v", out.Views)
	}
}

func TestDocumentString(t *testing.T) {
	d := New()
	mustCreate(t, d, &Paragraph{Base: NewBase("paragraph_1", TypeParagraph, ""), Children: []string{"text_1"}})
	mustCreate(t, d, &Text{Base: NewBase("text_1", TypeText, ""), Content: "hello"})
	mustCreate(t, d, &Annotation{ID: "strong_1", Kind: AnnoStrong, Path: [2]string{"text_1", "content"}, Range: [2]int{0, 5}})
	d.Show(ViewContent, "paragraph_1")

	s := d.String()
	for _, want := range []string{"View \"content\" (1)", "    text_1 type=text", "@strong_1 strong content[0:5]"} {
		if !strings.Contains(s, want) {
			t.Fatalf("dump misses %q:\n%s", want, s)
		}
	}
}
