// Package archive walks article package archives built on top of
// "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Entry is a file in archive selected by Walk.
type Entry struct {
	// Archive is path to archive passed to Walk.
	Archive string
	// Name is path of the file inside archive, decoded when code page was
	// forced for non UTF-8 names.
	Name string
	File *zip.File
}

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. If an error is returned, processing stops.
type WalkFunc func(e Entry) error

type walker struct {
	cp  encoding.Encoding
	log *zap.Logger
}

type Option func(*walker)

// WithCodePage forces encoding for all file names in archive which are not
// marked as UTF-8.
func WithCodePage(cp encoding.Encoding) Option {
	return func(w *walker) {
		w.cp = cp
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(w *walker) {
		w.log = log
	}
}

// Walk walks files in the archive whose (decoded) name starts with prefix in
// natural name order, calling walkFn for each item. Archives with absolute
// paths or path traversal components ("..") are rejected.
func Walk(archive, prefix string, walkFn WalkFunc, opts ...Option) error {
	w := &walker{log: zap.NewNop()}
	for _, opt := range opts {
		opt(w)
	}

	r, err := zip.OpenReader(archive)
	if err != nil {
		if r != nil {
			// zip.ErrInsecurePath, reader is usable but we refuse
			r.Close()
		}
		return err
	}
	defer r.Close()

	entries := make([]Entry, 0, len(r.File))
	for _, f := range r.File {
		if !isSafePath(f.FileHeader.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.FileHeader.Name)
		}
		if f.FileInfo().IsDir() || isMetadata(f.FileHeader.Name) {
			continue
		}
		name := w.decodeName(f)
		if strings.HasPrefix(name, prefix) {
			entries = append(entries, Entry{Archive: archive, Name: name, File: f})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return natural.Less(entries[i].Name, entries[j].Name)
	})

	for _, e := range entries {
		if err := walkFn(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) decodeName(f *zip.File) string {
	name := f.FileHeader.Name
	if w.cp == nil || !f.FileHeader.NonUTF8 {
		return name
	}
	n, err := w.cp.NewDecoder().String(name)
	if err != nil {
		cs, _ := ianaindex.IANA.Name(w.cp)
		w.log.Warn("Unable to convert archive name from specified encoding",
			zap.String("charset", cs), zap.String("path", name), zap.Error(err))
		return name
	}
	return n
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

// isMetadata reports archiver bookkeeping entries (macOS resource forks).
func isMetadata(name string) bool {
	return strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), "._")
}
