package footnote

import (
	"fmt"
	"strings"
)

// WarningKind classifies a linking anomaly.
type WarningKind string

const (
	// MissingHeading: citations exist but no footnotes heading; nothing was rewritten.
	MissingHeading WarningKind = "missing_heading"
	// MissingFootnotes: citations and heading exist but no footnote paragraphs; nothing was rewritten.
	MissingFootnotes WarningKind = "missing_footnotes"
	// OrphanCitation: cited keys without a footnote paragraph. Citations still link to note ids.
	OrphanCitation WarningKind = "orphan_citation"
	// OrphanFootnote: footnote paragraphs nobody cites. They get an anchor but no back-links.
	OrphanFootnote WarningKind = "orphan_footnote"
	// DuplicateFootnote: more than one paragraph for a key; the extra ones are left as written.
	DuplicateFootnote WarningKind = "duplicate_footnote"
	// SubLabelOverflow: a key cited more than MaxCitationsPerFootnote times.
	SubLabelOverflow WarningKind = "sublabel_overflow"
	// AlreadyLinked: linked markup and raw citations are mixed; nothing was rewritten.
	AlreadyLinked WarningKind = "already_linked"
)

// Severity is the level at which a warning should be reported.
type Severity string

const (
	SeverityWarning Severity = "warning"
)

// Warning describes one anomaly found while linking a document.
type Warning struct {
	Kind     WarningKind
	Severity Severity
	Keys     []string
	Message  string
}

func (w Warning) String() string {
	return w.Message
}

// Skipped reports whether the warning means the document was left unchanged.
func (w Warning) Skipped() bool {
	switch w.Kind {
	case MissingHeading, MissingFootnotes, AlreadyLinked:
		return true
	default:
		return false
	}
}

func structuralWarning(kind WarningKind, title string, citations int, what string) Warning {
	return Warning{
		Kind:     kind,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("Document %q has %d references but %s; skipping", title, citations, what),
	}
}

func keysWarning(kind WarningKind, title string, keys []string, format string) Warning {
	return Warning{
		Kind:     kind,
		Severity: SeverityWarning,
		Keys:     keys,
		Message:  fmt.Sprintf("Document %q: "+format, title, strings.Join(keys, ", ")),
	}
}
