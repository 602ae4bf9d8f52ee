package convert

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// srcEncoding is encoding detected from byte order mark.
type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUnknown:
		return "unknown"
	case encUTF8:
		return "utf-8"
	case encUTF16BigEndian:
		return "utf-16be"
	case encUTF16LittleEndian:
		return "utf-16le"
	case encUTF32BigEndian:
		return "utf-32be"
	case encUTF32LittleEndian:
		return "utf-32le"
	}
	return fmt.Sprintf("srcEncoding(%d)", int(e))
}

// headerSize is how much of the file is looked at when detecting type.
const headerSize = 4096

var (
	articleType = filetype.NewType("nxml", "application/jats+xml")

	xmlProlog   = regexp.MustCompile(`^\s*<(?:\?xml|!DOCTYPE|!--|article[\s>])`)
	articleRoot = regexp.MustCompile(`<(?:[A-Za-z_][\w.-]*:)?article[\s>]`)

	encodingDecl = regexp.MustCompile(`^(\s*<\?xml[^>]*?encoding\s*=\s*)(?:"[^"]*"|'[^']*')`)
)

func init() {
	filetype.AddMatcher(articleType, matchArticle)
}

// matchArticle recognizes UTF-8 (or ASCII compatible) XML with "article"
// root element. Header must be already transcoded to UTF-8.
func matchArticle(buf []byte) bool {
	buf = bytes.TrimPrefix(buf, []byte{0xEF, 0xBB, 0xBF})
	return xmlProlog.Match(buf) && articleRoot.Match(buf)
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks at byte order mark. UTF-32LE has to be checked before
// UTF-16LE as they share first two bytes.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader returns reader producing UTF-8 stream without byte order mark.
// XML decoder cannot read UTF-16 and UTF-32 by itself, for those encoding
// declaration is rewritten to match transcoded content.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return redeclareUTF8(transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()))
	case encUTF16LittleEndian:
		return redeclareUTF8(transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()))
	case encUTF32BigEndian:
		return redeclareUTF8(transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder()))
	case encUTF32LittleEndian:
		return redeclareUTF8(transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder()))
	default:
		// this should never happen
		panic(fmt.Sprintf("unexpected source encoding %d", enc))
	}
}

func redeclareUTF8(r io.Reader) io.Reader {
	br := bufio.NewReaderSize(r, 1024)
	head, _ := br.Peek(1024)
	end := bytes.Index(head, []byte("?>"))
	if end < 0 {
		return br
	}
	decl := encodingDecl.ReplaceAll(bytes.Clone(head[:end]), []byte(`${1}"UTF-8"`))
	if _, err := br.Discard(end); err != nil {
		return br
	}
	return io.MultiReader(bytes.NewReader(decl), br)
}

// sniff detects encoding and checks whether header belongs to an article.
func sniff(header []byte) (bool, srcEncoding, error) {
	enc := detectUTF(header)
	if enc == encUTF16BigEndian || enc == encUTF16LittleEndian || enc == encUTF32BigEndian || enc == encUTF32LittleEndian {
		// partial trailing code units are dropped by decoder with replacement
		decoded, err := io.ReadAll(selectReader(bytes.NewReader(header), enc))
		if err != nil {
			return false, enc, err
		}
		header = decoded
	}
	return filetype.IsType(header, articleType), enc, nil
}

func hasArticleExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml", ".nxml":
		return true
	}
	return false
}

func readHeader(r io.Reader) ([]byte, error) {
	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return header[:n], nil
}

// isArchiveFile checks extension and magic of the file.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header, err := readHeader(f)
	if err != nil {
		return false, err
	}
	return filetype.Is(header, "zip"), nil
}

// isArticleFile checks if file looks like an NLM/JATS article and returns its
// encoding.
func isArticleFile(path string) (bool, srcEncoding, error) {
	if !hasArticleExt(path) {
		return false, encUnknown, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, encUnknown, err
	}
	defer f.Close()

	header, err := readHeader(f)
	if err != nil {
		return false, encUnknown, err
	}
	return sniff(header)
}

// isArticleInArchive is the same as isArticleFile for archive members.
func isArticleInArchive(f *zip.File) (bool, srcEncoding, error) {
	if !hasArticleExt(f.FileHeader.Name) {
		return false, encUnknown, nil
	}
	r, err := f.Open()
	if err != nil {
		return false, encUnknown, err
	}
	defer r.Close()

	header, err := readHeader(r)
	if err != nil {
		return false, encUnknown, err
	}
	return sniff(header)
}
