package pipeline

import (
	"time"

	"git.home.luguber.info/inful/footnotelinker/internal/eventstore"
	"git.home.luguber.info/inful/footnotelinker/internal/footnote"
	"git.home.luguber.info/inful/footnotelinker/internal/metrics"
)

// DocumentReport collects everything a build found about one document.
type DocumentReport struct {
	Path          string
	Title         string
	Result        metrics.DocumentResult
	Citations     int
	Footnotes     int
	Warnings      []footnote.Warning
	BrokenAnchors []string
	DuplicateIDs  []string
	// AnchorMessage describes BrokenAnchors and DuplicateIDs.
	AnchorMessage string
	// Error is set when the document could not be parsed or rendered.
	Error string
}

// IssueCount returns the number of problems reported for the document.
func (d *DocumentReport) IssueCount() int {
	n := len(d.Warnings)
	if d.AnchorMessage != "" {
		n++
	}
	if d.Error != "" {
		n++
	}
	return n
}

// BuildReport summarizes one run of the processor.
type BuildReport struct {
	BuildID   string
	StartedAt time.Time
	Duration  time.Duration
	DryRun    bool
	Status    string
	// SetHash identifies the set of source files the build read.
	SetHash   string
	OutputDir string
	Documents int
	Rendered  int // Documents rendered from Markdown; the rest came from the cache
	Citations int
	Footnotes int
	Written   int
	// DocumentReports lists every linked document in collection order,
	// followed by documents that failed to parse or render.
	DocumentReports []DocumentReport
}

// WarningCount returns the number of issues across all documents.
func (r *BuildReport) WarningCount() int {
	n := 0
	for i := range r.DocumentReports {
		n += r.DocumentReports[i].IssueCount()
	}
	return n
}

// finish sets Duration and derives Status from err and the issue count.
func (r *BuildReport) finish(err error, canceled bool) {
	r.Duration = time.Since(r.StartedAt)
	switch {
	case canceled:
		r.Status = eventstore.StatusCanceled
	case err != nil:
		r.Status = eventstore.StatusFailed
	case r.WarningCount() > 0:
		r.Status = eventstore.StatusWarning
	default:
		r.Status = eventstore.StatusSuccess
	}
}

func (r *BuildReport) outcome() metrics.BuildOutcomeLabel {
	switch r.Status {
	case eventstore.StatusCanceled:
		return metrics.BuildOutcomeCanceled
	case eventstore.StatusFailed:
		return metrics.BuildOutcomeFailed
	case eventstore.StatusWarning:
		return metrics.BuildOutcomeWarning
	default:
		return metrics.BuildOutcomeSuccess
	}
}
