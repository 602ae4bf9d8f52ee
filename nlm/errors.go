package nlm

import (
	"fmt"

	"go.uber.org/multierr"

	"nlmc/graph"
)

// StructuralError aborts conversion: the input lacks an element the converter
// cannot proceed without.
type StructuralError struct {
	Element string
	Reason  string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error at %s: %s", e.Element, e.Reason)
}

// DiagnosticKind classifies recoverable problems.
type DiagnosticKind int

const (
	// KindUnsupportedContent means source content was omitted from the graph.
	KindUnsupportedContent DiagnosticKind = iota + 1
	// KindLookupMiss means a reference could not be bound to a node.
	KindLookupMiss
	// KindInvalidNode means a node was rejected by the graph (empty or
	// duplicate id), only possible with misbehaving configuration hooks.
	KindInvalidNode
)

func (k DiagnosticKind) String() string {
	switch k {
	case KindUnsupportedContent:
		return "unsupported_content"
	case KindLookupMiss:
		return "lookup_miss"
	case KindInvalidNode:
		return "invalid_node"
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

// Diagnostic records a problem the converter recovered from.
type Diagnostic struct {
	Kind     DiagnosticKind
	Element  string
	SourceID string
	Message  string
}

func (d Diagnostic) Error() string {
	if d.SourceID != "" {
		return fmt.Sprintf("%s: %s (%s#%s)", d.Kind, d.Message, d.Element, d.SourceID)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, d.Element)
}

// Result is the outcome of a successful Import.
type Result struct {
	Doc         *graph.Document
	Diagnostics []Diagnostic
	// Publisher is the name of the configuration used, "default" when no
	// publisher specific one matched.
	Publisher string
}

// Degraded reports whether some source content did not make it into the
// graph intact.
func (r *Result) Degraded() bool {
	return len(r.Diagnostics) > 0
}

// Err folds all diagnostics into a single error, nil for clean conversions.
func (r *Result) Err() error {
	var err error
	for _, d := range r.Diagnostics {
		err = multierr.Append(err, d)
	}
	return err
}

// Count returns number of diagnostics of the given kind.
func (r *Result) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
