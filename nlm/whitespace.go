package nlm

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"nlmc/dom"
)

// AcceptText folds whitespace of a raw text chunk so source indentation does
// not show in extracted text. Runs of tabs, newlines and carriage returns
// become a single space. Leading spaces disappear when the previously emitted
// character was a space or a new paragraph has just started, otherwise they
// collapse to one space. Trailing spaces always collapse to one space, inner
// runs only when RemoveInnerWhitespace is set.
func (s *State) AcceptText(text string) string {
	if s.Options.NormalizeUnicode {
		text = norm.NFC.String(text)
	}
	if !s.Options.TrimWhitespace {
		s.remember(text)
		return text
	}

	text = foldControls(text)
	body := strings.TrimLeft(text, " ")
	hadLeading := len(body) < len(text)
	trimmed := strings.TrimRight(body, " ")
	hadTrailing := len(trimmed) < len(body)
	if s.Options.RemoveInnerWhitespace {
		trimmed = collapseSpaces(trimmed)
	}

	var b strings.Builder
	b.Grow(len(trimmed) + 2)
	if hadLeading && !s.skipWS && s.lastChar != ' ' {
		b.WriteByte(' ')
	}
	b.WriteString(trimmed)
	if hadTrailing {
		b.WriteByte(' ')
	}
	res := b.String()
	s.remember(res)
	return res
}

// StartParagraph arms one-shot leading whitespace removal.
func (s *State) StartParagraph() {
	s.skipWS = true
}

func (s *State) remember(emitted string) {
	if emitted == "" {
		return
	}
	r, _ := utf8.DecodeLastRuneInString(emitted)
	s.lastChar = r
	s.skipWS = false
}

func foldControls(text string) string {
	if !strings.ContainsAny(text, "\t\n\r") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	inRun := false
	for _, r := range text {
		if r == '\t' || r == '\n' || r == '\r' {
			if !inRun {
				b.WriteByte(' ')
			}
			inRun = true
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

func collapseSpaces(text string) string {
	if !strings.Contains(text, "  ") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	prev := false
	for _, r := range text {
		if r == ' ' {
			if prev {
				continue
			}
			prev = true
		} else {
			prev = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// plain returns text with every whitespace run collapsed and no surrounding
// space. It does not touch folding state and is used for attribute like
// fields (labels, names, dates).
func plain(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// PlainText returns collapsed text content of n, empty for nil.
func (s *State) PlainText(n dom.Node) string {
	if n == nil {
		return ""
	}
	return plain(s.XML.Text(n))
}

// FindPlain returns collapsed text of the first match of query under n.
func (s *State) FindPlain(n dom.Node, query string) string {
	return plain(dom.FindText(s.XML, n, query))
}
