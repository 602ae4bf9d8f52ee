// Package debug contains helpers producing human readable dumps.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TreeWriter accumulates indented lines, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
	// MaxText limits quoted text values (in characters), 0 means unlimited.
	MaxText int
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{w: &strings.Builder{}}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// TextBlock writes "label: value" with value quoted, empty values are skipped.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	if value == "" {
		return
	}
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(tw.encodeText(value))
	tw.w.WriteByte('\n')
}

// IDs writes "label: [a b c]", empty lists are skipped.
func (tw *TreeWriter) IDs(depth int, label string, ids []string) {
	if len(ids) == 0 {
		return
	}
	tw.Line(depth, "%s: [%s]", label, strings.Join(ids, " "))
}

func (tw *TreeWriter) encodeText(raw string) string {
	if tw.MaxText > 0 && utf8.RuneCountInString(raw) > tw.MaxText {
		raw = string([]rune(raw)[:tw.MaxText]) + "…"
	}
	return strconv.Quote(raw)
}
