package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"

	"nlmc/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination cannot be created report
// goes to temporary directory.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{
		file:  f,
		files: make(map[string]string),
		data:  make(map[string]blob),
	}, nil
}

type blob struct {
	stamp   time.Time
	content []byte
}

// ArticleRecord describes a converted article in the report index.
type ArticleRecord struct {
	Source      string
	ID          string
	Publisher   string
	Diagnostics []string
}

// Report collects what is needed to troubleshoot a batch: configuration,
// logs and for every converted article its graph and diagnostics. Methods
// are safe to call on nil report, which means no report was requested. Not
// for concurrent use.
type Report struct {
	file     *os.File
	files    map[string]string
	data     map[string]blob
	articles []ArticleRecord
}

// Close writes the archive.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()
	return r.write()
}

// Name returns absolute name of the report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store remembers file to be copied into the report on Close. Absent files
// are skipped then.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if old, exists := r.files[name]; exists && old != path {
		// two different files under the same name is a program error
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old, path))
	}
	r.files[name] = path
}

// StoreData puts data into the report under name. Repeated names are
// versioned by time.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, exists := r.data[name]; exists {
		name = fmt.Sprintf("%s-%d", name, time.Now().UnixNano())
	}
	r.data[name] = blob{stamp: time.Now(), content: data}
}

// StoreArticle keeps rendered graph of converted article along with problems
// found while converting it. Every article gets its own numbered directory,
// the same id may come from several sources.
func (r *Report) StoreArticle(rec ArticleRecord, ext string, graph []byte) {
	if r == nil {
		return
	}
	r.articles = append(r.articles, rec)

	dir := path.Join("articles", fmt.Sprintf("%d-%s", len(r.articles), ArticleFileName(rec.ID)))
	r.StoreData(path.Join(dir, "graph"+ext), graph)
	if len(rec.Diagnostics) > 0 {
		r.StoreData(path.Join(dir, "diagnostics.txt"), []byte(strings.Join(rec.Diagnostics, "\n")+"\n"))
	}
}

func (r *Report) write() error {
	arc := zip.NewWriter(r.file)
	defer arc.Close()

	now := time.Now()

	names := make([]string, 0, len(r.files)+len(r.data))
	for name := range r.files {
		names = append(names, name)
	}
	for name := range r.data {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})

	manifest := new(bytes.Buffer)
	for _, name := range names {
		if b, ok := r.data[name]; ok {
			fmt.Fprintf(manifest, "%s\t%s\tdata\t%d bytes\n", b.stamp.UTC().Format(time.UnixDate), name, len(b.content))
		} else {
			fmt.Fprintf(manifest, "%s\t%s\tfile\t%s\n", now.UTC().Format(time.UnixDate), name, r.files[name])
		}
	}
	if err := addEntry(arc, "MANIFEST", now, manifest); err != nil {
		return err
	}
	if len(r.articles) > 0 {
		if err := addEntry(arc, "articles.tsv", now, articleIndex(r.articles)); err != nil {
			return err
		}
	}

	for _, name := range names {
		if b, ok := r.data[name]; ok {
			if err := addEntry(arc, name, b.stamp, bytes.NewReader(b.content)); err != nil {
				return err
			}
			continue
		}
		if err := addFile(arc, name, r.files[name]); err != nil {
			return err
		}
	}
	return nil
}

func articleIndex(articles []ArticleRecord) io.Reader {
	buf := new(bytes.Buffer)
	buf.WriteString("#\tid\tpublisher\tdiagnostics\tsource\n")
	for i, a := range articles {
		fmt.Fprintf(buf, "%d\t%s\t%s\t%d\t%s\n", i+1, a.ID, a.Publisher, len(a.Diagnostics), a.Source)
	}
	return buf
}

func addFile(arc *zip.Writer, name, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		// log file may never have been created
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return addEntry(arc, name, info.ModTime(), f)
}

func addEntry(arc *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
