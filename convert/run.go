package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"nlmc/archive"
	"nlmc/config"
	"nlmc/graph"
	"nlmc/nlm"
	"nlmc/publishers"
	"nlmc/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	// command line takes precedence over configuration
	if to := cmd.String("to"); len(to) > 0 {
		if format, err := config.ParseOutputFmt(to); err != nil {
			log.Warn("Unknown output format requested, keeping configured one",
				zap.Stringer("format", env.Cfg.Output.Format), zap.Error(err))
		} else {
			env.Cfg.Output.Format = format
		}
	}
	if name := cmd.String("backend"); len(name) > 0 {
		if backend, err := config.ParseXMLBackend(name); err != nil {
			log.Warn("Unknown XML backend requested, keeping configured one",
				zap.Stringer("backend", env.Cfg.Converter.Backend), zap.Error(err))
		} else {
			env.Cfg.Converter.Backend = backend
		}
	}
	if name := cmd.String("publisher"); len(name) > 0 {
		env.Cfg.Converter.Publisher = name
	}
	if name := env.Cfg.Converter.Publisher; len(name) > 0 && !slices.Contains(publishers.Names(), name) {
		log.Warn("Unknown publisher requested, default configuration will be used",
			zap.String("publisher", name), zap.Strings("known", publishers.Names()))
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst),
		zap.Stringer("format", env.Cfg.Output.Format), zap.Stringer("backend", env.Cfg.Converter.Backend))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process determines the input type (directory, archive, path inside archive
// or single file) and processes accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			// we need to look inside to see if path makes sense
			tail = filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			if err := processArchive(ctx, head, tail, "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		article, enc, err := isArticleFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if article && len(tail) == 0 {
			file, err := os.Open(head)
			if err != nil {
				return fmt.Errorf("unable to open article: %w", err)
			}
			defer file.Close()
			if err := processArticle(ctx, selectReader(file, enc), filepath.Base(head), dst, log); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}
		return fmt.Errorf("input was not recognized as NLM/JATS article (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding articles and archives and processes
// them.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		arc, err := isArchiveFile(path)
		if err != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if arc {
			count++
			if err := processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		article, enc, err := isArticleFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !article {
			log.Debug("Skipping file, not recognized as article or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processArticle(ctx, selectReader(file, enc), src, dst, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// processArchive walks all files inside archive, finds articles under
// "pathIn" and processes them.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	env := state.EnvFromContext(ctx)

	err = archive.Walk(path, pathIn, func(e archive.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		article, enc, err := isArticleInArchive(e.File)
		if err != nil {
			log.Warn("Skipping file in archive", zap.String("archive", e.Archive), zap.String("path", e.Name), zap.Error(err))
			return nil
		}
		if !article {
			log.Debug("Skipping file, not recognized as article", zap.String("archive", e.Archive), zap.String("file", e.Name))
			return nil
		}

		count++

		r, err := e.File.Open()
		if err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", e.Archive), zap.String("file", e.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		if err := processArticle(ctx, selectReader(r, enc), filepath.Join(pathOut, filepath.FromSlash(e.Name)), dst, log); err != nil {
			log.Error("Unable to process file in archive", zap.String("archive", e.Archive), zap.String("file", e.Name), zap.Error(err))
		}
		return nil
	}, archive.WithCodePage(env.CodePage), archive.WithLogger(log))
	return err
}

// processArticle converts single article. "src" is part of the source path
// (always including file name) relative to the original path, it is used to
// reproduce directory structure on output. "dst" is the destination directory.
func processArticle(ctx context.Context, r io.Reader, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var (
		docID, publisher, outputName string
		degraded                     bool
	)

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		// a bad article in a batch should not stop the rest
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		}
		switch {
		case rerr != nil:
			env.Batch.Failed++
		case degraded:
			env.Batch.Degraded++
		default:
			env.Batch.Converted++
		}
		if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)),
				zap.String("to", outputName), zap.String("id", docID), zap.String("publisher", publisher))
		}
	}(time.Now())

	backend := env.Backend()
	tree, err := backend.Parse(r)
	if err != nil {
		return fmt.Errorf("unable to parse article source (%s): %w", src, err)
	}

	conv := nlm.NewConverter(env.Cfg.Logging.ArticleLogger(log, src),
		nlm.WithOptions(env.ConverterOptions()), nlm.WithPublishers(publishers.Table()))
	res, err := conv.Import(backend, tree)
	if err != nil {
		return fmt.Errorf("unable to convert article (%s): %w", src, err)
	}
	docID, publisher, degraded = res.Doc.ID, res.Publisher, res.Degraded()
	if degraded && env.Cfg.Logging.SummarizeArticles() {
		log.Warn("Article converted with omissions",
			zap.String("id", docID),
			zap.Int("unsupported", res.Count(nlm.KindUnsupportedContent)),
			zap.Int("unresolved", res.Count(nlm.KindLookupMiss)))
	}

	data, err := render(res.Doc, &env.Cfg.Output)
	if err != nil {
		return fmt.Errorf("unable to render document graph: %w", err)
	}

	outputName = buildOutputPath(docID, src, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	env.Rpt.StoreArticle(articleRecord(src, res), env.Cfg.Output.Format.Ext(), data)
	return nil
}

func articleRecord(src string, res *nlm.Result) config.ArticleRecord {
	rec := config.ArticleRecord{Source: filepath.ToSlash(src), ID: res.Doc.ID, Publisher: res.Publisher}
	for _, d := range res.Diagnostics {
		rec.Diagnostics = append(rec.Diagnostics, d.Error())
	}
	return rec
}

// render serializes document graph in requested format.
func render(doc *graph.Document, conf *config.OutputConfig) ([]byte, error) {
	switch conf.Format {
	case config.OutputFmtTree:
		return []byte(doc.String()), nil
	case config.OutputFmtJson:
		if conf.Indent {
			return json.MarshalIndent(doc, "", "  ")
		}
		return json.Marshal(doc)
	}
	return nil, fmt.Errorf("unsupported output format %s", conf.Format)
}
