package config

import (
	"strings"
	"unicode"
)

const unnamedArticle = "_unnamed_article_"

// ArticleFileName turns article id into a name usable for output files. Ids
// are often DOIs, separators are dropped rather than creating directories.
func ArticleFileName(id string) string {
	out := strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || strings.ContainsRune(reservedNameChars, sym) {
			return -1
		}
		return sym
	}, strings.TrimSpace(id))
	// leading dot hides the file, trailing dots and spaces are lost on some
	// file systems
	out = strings.TrimRight(strings.TrimLeft(out, "."), ". ")
	if len(out) == 0 {
		return unnamedArticle
	}
	return out
}
