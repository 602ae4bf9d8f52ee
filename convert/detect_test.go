package convert

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

const sampleArticle = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE article PUBLIC "-//NLM//DTD Journal Archiving and Interchange DTD v3.0 20080202//EN" "archivearticle3.dtd">
<article xmlns:xlink="http://www.w3.org/1999/xlink" article-type="research-article">
<front>
<journal-meta><publisher><publisher-name>PeerJ Inc.</publisher-name></publisher></journal-meta>
<article-meta>
<article-id pub-id-type="publisher-id">277</article-id>
<article-id pub-id-type="doi">10.7717/peerj.277</article-id>
<title-group><article-title>Sample article</article-title></title-group>
</article-meta>
</front>
<body><p>Hello <italic>world</italic>.</p></body>
</article>`

func encodeWith(t *testing.T, data string, encoder transform.Transformer) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := transform.NewWriter(&buf, encoder)
	if _, err := io.WriteString(w, data); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("finalize encoded sample: %v", err)
	}
	return buf.Bytes()
}

func encodedSamples(t *testing.T, data string) map[srcEncoding][]byte {
	t.Helper()

	return map[srcEncoding][]byte{
		encUnknown:           []byte(data),
		encUTF8:              append([]byte{0xEF, 0xBB, 0xBF}, data...),
		encUTF16BigEndian:    encodeWith(t, data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()),
		encUTF16LittleEndian: encodeWith(t, data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()),
		encUTF32BigEndian:    encodeWith(t, data, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder()),
		encUTF32LittleEndian: encodeWith(t, data, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder()),
	}
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func writeZip(t *testing.T, path string, members map[string][]byte) string {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, data := range members {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("Failed to write %s to zip: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finalize zip: %v", err)
	}
	return path
}

func TestDetectUTF(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want srcEncoding
	}{
		{"UTF-8 BOM", []byte{0xEF, 0xBB, 0xBF, 0x3C}, encUTF8},
		{"UTF-16 Big Endian BOM", []byte{0xFE, 0xFF, 0x00, 0x3C}, encUTF16BigEndian},
		{"UTF-16 Little Endian BOM", []byte{0xFF, 0xFE, 0x3C, 0x00}, encUTF16LittleEndian},
		{"UTF-32 Big Endian BOM", []byte{0x00, 0x00, 0xFE, 0xFF}, encUTF32BigEndian},
		{"UTF-32 Little Endian BOM", []byte{0xFF, 0xFE, 0x00, 0x00}, encUTF32LittleEndian},
		{"No BOM", []byte("<?xml"), encUnknown},
		{"Short", []byte{0xEF}, encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectUTF(tt.buf); got != tt.want {
				t.Errorf("detectUTF() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchArticle(t *testing.T) {
	tests := []struct {
		name string
		buf  string
		want bool
	}{
		{"declaration and doctype", sampleArticle, true},
		{"bare root", `<article><front/></article>`, true},
		{"leading comment", "<!-- exported -->\n<article dtd-version=\"1.1\">", true},
		{"prefixed root", `<?xml version="1.0"?><jats:article xmlns:jats="x">`, true},
		{"other root", `<?xml version="1.0"?><FictionBook><body/></FictionBook>`, false},
		{"article-meta is not root", `<?xml version="1.0"?><front><article-meta/></front>`, false},
		{"not xml", "article text <article>", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchArticle([]byte(tt.buf)); got != tt.want {
				t.Errorf("matchArticle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectReader(t *testing.T) {
	for enc, data := range encodedSamples(t, sampleArticle) {
		t.Run(enc.String(), func(t *testing.T) {
			out, err := io.ReadAll(selectReader(bytes.NewReader(data), enc))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(out) != sampleArticle {
				t.Errorf("unexpected content:\n%s", out)
			}
		})
	}
}

func TestSelectReader_Redeclare(t *testing.T) {
	src := `<?xml version='1.0' encoding='UTF-16'?><article/>`
	data := encodeWith(t, src, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder())

	out, err := io.ReadAll(selectReader(bytes.NewReader(data), encUTF16LittleEndian))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := `<?xml version='1.0' encoding="UTF-8"?><article/>`; string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSelectReader_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for invalid encoding")
		}
	}()
	selectReader(bytes.NewReader([]byte("test")), srcEncoding(999))
}

func TestIsArticleFile(t *testing.T) {
	dir := t.TempDir()

	for enc, data := range encodedSamples(t, sampleArticle) {
		t.Run("encoded "+enc.String(), func(t *testing.T) {
			path := writeFile(t, dir, "article-"+enc.String()+".xml", data)
			ok, got, err := isArticleFile(path)
			if err != nil {
				t.Fatalf("isArticleFile() error = %v", err)
			}
			if !ok || got != enc {
				t.Errorf("isArticleFile() = %v, %v, want true, %v", ok, got, enc)
			}
		})
	}

	tests := []struct {
		name     string
		filename string
		content  string
		want     bool
	}{
		{"nxml extension", "pmc.nxml", sampleArticle, true},
		{"uppercase extension", "ARTICLE.XML", sampleArticle, true},
		{"wrong extension", "article.txt", sampleArticle, false},
		{"not an article", "book.xml", `<?xml version="1.0"?><FictionBook/>`, false},
		{"garbage", "bad.xml", "not xml at all", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.filename, []byte(tt.content))
			got, _, err := isArticleFile(path)
			if err != nil {
				t.Fatalf("isArticleFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("isArticleFile() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("nonexistent", func(t *testing.T) {
		if _, _, err := isArticleFile(filepath.Join(dir, "absent.xml")); err == nil {
			t.Error("Expected error for non-existent file")
		}
	})
}

func TestIsArchiveFile(t *testing.T) {
	dir := t.TempDir()

	valid := writeZip(t, filepath.Join(dir, "package.zip"), map[string][]byte{"a.xml": []byte(sampleArticle)})
	if ok, err := isArchiveFile(valid); err != nil || !ok {
		t.Errorf("isArchiveFile(valid) = %v, %v", ok, err)
	}

	renamed := writeFile(t, dir, "package.bin", []byte(sampleArticle))
	if ok, err := isArchiveFile(renamed); err != nil || ok {
		t.Errorf("isArchiveFile(extension) = %v, %v", ok, err)
	}

	fake := writeFile(t, dir, "fake.zip", []byte("not a real zip file"))
	if ok, err := isArchiveFile(fake); err != nil || ok {
		t.Errorf("isArchiveFile(content) = %v, %v", ok, err)
	}

	if _, err := isArchiveFile(filepath.Join(dir, "absent.zip")); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestIsArticleInArchive(t *testing.T) {
	samples := encodedSamples(t, sampleArticle)
	path := writeZip(t, filepath.Join(t.TempDir(), "package.zip"), map[string][]byte{
		"plain.xml":    samples[encUnknown],
		"bom.nxml":     samples[encUTF8],
		"utf16.xml":    samples[encUTF16LittleEndian],
		"figure.tif":   []byte("II*\x00"),
		"manifest.xml": []byte(`<?xml version="1.0"?><manifest/>`),
	})

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("Failed to open zip: %v", err)
	}
	defer r.Close()

	want := map[string]struct {
		ok  bool
		enc srcEncoding
	}{
		"plain.xml":    {true, encUnknown},
		"bom.nxml":     {true, encUTF8},
		"utf16.xml":    {true, encUTF16LittleEndian},
		"figure.tif":   {false, encUnknown},
		"manifest.xml": {false, encUnknown},
	}
	for _, f := range r.File {
		t.Run(f.Name, func(t *testing.T) {
			ok, enc, err := isArticleInArchive(f)
			if err != nil {
				t.Fatalf("isArticleInArchive() error = %v", err)
			}
			if w := want[f.Name]; ok != w.ok || enc != w.enc {
				t.Errorf("isArticleInArchive() = %v, %v, want %v, %v", ok, enc, w.ok, w.enc)
			}
		})
	}
}
