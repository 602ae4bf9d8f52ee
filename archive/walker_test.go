package archive

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

type member struct {
	name    string
	content string
	nonUTF8 bool
}

func mustArchive(t *testing.T, members ...member) string {
	t.Helper()

	name := filepath.Join(t.TempDir(), "articles.zip")
	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, m := range members {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: m.name, Method: zip.Deflate, NonUTF8: m.nonUTF8})
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", m.name, err)
		}
		if _, err := io.WriteString(fw, m.content); err != nil {
			t.Fatalf("Failed to write content for %s: %v", m.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return name
}

func names(t *testing.T, archive, prefix string, opts ...Option) []string {
	t.Helper()

	var visited []string
	err := Walk(archive, prefix, func(e Entry) error {
		if e.Archive != archive {
			t.Errorf("archive = %s, want %s", e.Archive, archive)
		}
		visited = append(visited, e.Name)
		return nil
	}, opts...)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return visited
}

func TestWalk(t *testing.T) {
	arc := mustArchive(t,
		member{name: "elife/elife-00100.xml", content: "<article/>"},
		member{name: "elife/elife-00012.xml", content: "<article/>"},
		member{name: "elife/figures/"},
		member{name: "plos/pone.0000009.xml", content: "<article/>"},
		member{name: "__MACOSX/elife/._elife-00012.xml", content: "fork"},
		member{name: "README", content: "readme"},
	)

	cases := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"README", "elife/elife-00012.xml", "elife/elife-00100.xml", "plos/pone.0000009.xml"}},
		{"elife/", []string{"elife/elife-00012.xml", "elife/elife-00100.xml"}},
		{"plos/pone", []string{"plos/pone.0000009.xml"}},
		{"PLOS/", nil},
		{"bmc/", nil},
	}
	for _, tc := range cases {
		t.Run("prefix "+tc.prefix, func(t *testing.T) {
			if got := names(t, arc, tc.prefix); !slices.Equal(got, tc.want) {
				t.Errorf("visited = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWalk_Content(t *testing.T) {
	arc := mustArchive(t, member{name: "a.xml", content: "<article>text</article>"})

	err := Walk(arc, "", func(e Entry) error {
		r, err := e.File.Open()
		if err != nil {
			return err
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		if string(data) != "<article>text</article>" {
			t.Errorf("content = %q", data)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
}

func TestWalk_StopsOnError(t *testing.T) {
	arc := mustArchive(t,
		member{name: "1.xml", content: "x"},
		member{name: "2.xml", content: "x"},
	)
	errStop := errors.New("stop")
	calls := 0
	err := Walk(arc, "", func(Entry) error {
		calls++
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Errorf("Walk() error = %v, want %v", err, errStop)
	}
	if calls != 1 {
		t.Errorf("walkFn called %d times, want 1", calls)
	}
}

func TestWalk_Invalid(t *testing.T) {
	t.Run("nonexistent", func(t *testing.T) {
		if err := Walk(filepath.Join(t.TempDir(), "none.zip"), "", func(Entry) error { return nil }); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("not zip", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "article.xml")
		if err := os.WriteFile(name, []byte("<article/>"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := Walk(name, "", func(Entry) error { return nil }); err == nil {
			t.Error("expected error")
		}
	})

	for _, name := range []string{"../escape.xml", "a/../../escape.xml", "/abs.xml"} {
		t.Run("unsafe "+name, func(t *testing.T) {
			arc := mustArchive(t, member{name: name, content: "x"})
			if err := Walk(arc, "", func(Entry) error { return nil }); err == nil {
				t.Error("expected unsafe path error")
			}
		})
	}
}

func TestWalk_CodePage(t *testing.T) {
	raw, err := charmap.Windows1251.NewEncoder().String("статья.xml")
	if err != nil {
		t.Fatal(err)
	}
	arc := mustArchive(t, member{name: raw, content: "x", nonUTF8: true})

	if got := names(t, arc, ""); len(got) != 1 || got[0] != raw {
		t.Errorf("without code page name must be kept as is, got %q", got)
	}

	cp, err := ianaindex.IANA.Encoding("windows-1251")
	if err != nil {
		t.Fatal(err)
	}
	if got := names(t, arc, "ст", WithCodePage(cp)); len(got) != 1 || got[0] != "статья.xml" {
		t.Errorf("decoded names = %q", got)
	}
}
