package nlm

import (
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"nlmc/dom"
	"nlmc/graph"
)

// Frame is an entry of the processing stack. Path addresses the text field
// annotations are currently collected for, Ignore lists element types
// dropped entirely while the frame is active.
type Frame struct {
	Path   [2]string
	Ignore []string
}

func (f Frame) ignores(tag string) bool {
	for _, t := range f.Ignore {
		if t == tag {
			return true
		}
	}
	return false
}

// State is the mutable context of a single Import call. It must never be
// shared between conversions.
type State struct {
	Doc     *graph.Document
	XML     dom.Adapter
	Tree    dom.Node
	Article dom.Node
	Config  Configuration
	Options Options
	Log     *zap.Logger

	publisher    string
	counters     map[string]int
	annotations  []*graph.Annotation
	stack        []Frame
	lastChar     rune
	skipWS       bool
	sectionLevel int
	diagnostics  []Diagnostic
	// affiliation elements to their nodes, inline affiliations often have
	// no id
	affiliations map[dom.Node]string
}

func newState(xml dom.Adapter, tree dom.Node, opts Options, log *zap.Logger) *State {
	return &State{
		Doc:          graph.New(),
		XML:          xml,
		Tree:         tree,
		Config:       DefaultConfiguration{},
		publisher:    DefaultPublisher,
		Options:      opts,
		Log:          log,
		counters:     make(map[string]int),
		affiliations: make(map[dom.Node]string),
		sectionLevel: 1,
	}
}

// NextID returns "<typ>_<n>", n counts from 1 separately for every type and
// is never reused.
func (s *State) NextID(typ string) string {
	s.counters[typ]++
	return typ + "_" + strconv.Itoa(s.counters[typ])
}

func (s *State) Push(f Frame) {
	s.stack = append(s.stack, f)
}

func (s *State) Pop() Frame {
	if len(s.stack) == 0 {
		return Frame{}
	}
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return f
}

// Top returns innermost frame or an empty one.
func (s *State) Top() Frame {
	if len(s.stack) == 0 {
		return Frame{}
	}
	return s.stack[len(s.stack)-1]
}

// Stage queues annotation for the post processor.
func (s *State) Stage(a *graph.Annotation) {
	s.annotations = append(s.annotations, a)
}

// discard drops staged annotations owned by a node which is not going to be
// created.
func (s *State) discard(owner string) {
	kept := s.annotations[:0]
	for _, a := range s.annotations {
		if a.Path[0] != owner {
			kept = append(kept, a)
		}
	}
	s.annotations = kept
}

// finishText trims trailing space left by whitespace folding and keeps ranges
// of annotations staged for owner field inside the final text.
func (s *State) finishText(owner, field, text string) string {
	if s.Options.TrimWhitespace {
		for len(text) > 0 && text[len(text)-1] == ' ' {
			text = text[:len(text)-1]
		}
	}
	n := utf8.RuneCountInString(text)
	for _, a := range s.annotations {
		if a.Path[0] != owner || a.Path[1] != field {
			continue
		}
		a.Range[0] = min(a.Range[0], n)
		a.Range[1] = min(a.Range[1], n)
	}
	return text
}

// Commit adds node to the document. Failure is recorded as diagnostic.
func (s *State) Commit(n graph.Node) bool {
	if err := s.Doc.Create(n); err != nil {
		s.Log.Error("Unable to create node", zap.String("type", string(n.NodeType())), zap.Error(err))
		s.diagnostics = append(s.diagnostics, Diagnostic{
			Kind:     KindInvalidNode,
			Element:  string(n.NodeType()),
			SourceID: n.SourceID(),
			Message:  err.Error(),
		})
		return false
	}
	return true
}

// Unsupported logs and records content which is left out of the graph.
func (s *State) Unsupported(el dom.Node, msg string, fields ...zap.Field) {
	tag := s.XML.Type(el)
	sid := dom.AttrValue(s.XML, el, "id")
	s.Log.Warn(msg, append([]zap.Field{zap.String("tag", tag), zap.String("id", sid)}, fields...)...)
	s.diagnostics = append(s.diagnostics, Diagnostic{
		Kind:     KindUnsupportedContent,
		Element:  tag,
		SourceID: sid,
		Message:  msg,
	})
}

// LookupMiss logs and records a reference which could not be bound.
func (s *State) LookupMiss(element, sourceID, msg string) {
	s.Log.Warn(msg, zap.String("element", element), zap.String("target", sourceID))
	s.diagnostics = append(s.diagnostics, Diagnostic{
		Kind:     KindLookupMiss,
		Element:  element,
		SourceID: sourceID,
		Message:  msg,
	})
}

// Diagnostics returns problems recorded so far.
func (s *State) Diagnostics() []Diagnostic {
	return s.diagnostics
}
