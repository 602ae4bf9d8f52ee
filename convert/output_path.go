package convert

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"nlmc/config"
	"nlmc/state"
)

// buildOutputPath returns output file path for converted article. File is
// named after document id (source file name when id is empty) and, unless
// requested otherwise, placed keeping source directory structure. Name is
// cleaned and, if requested, transliterated.
func buildOutputPath(docID, src, dst string, env *state.LocalEnv) string {
	return filepath.Join(determineOutputDir(src, dst, env), buildFileName(docID, src, env))
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func buildFileName(docID, src string, env *state.LocalEnv) string {
	baseName := docID
	if len(baseName) == 0 {
		baseName = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	if env.Cfg.Output.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.ArticleFileName(baseName) + env.Cfg.Output.Format.Ext()
}
