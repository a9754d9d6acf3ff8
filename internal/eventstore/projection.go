package eventstore

import (
	"context"
	"encoding/json"
	"time"
)

// BuildSummary is the read model of one build, rebuilt from its events.
type BuildSummary struct {
	BuildID        string            `json:"build_id"`
	Status         string            `json:"status"`
	ContentDir     string            `json:"content_dir,omitempty"`
	ReferenceRegex string            `json:"reference_regex,omitempty"`
	StartedAt      time.Time         `json:"started_at"`
	CompletedAt    *time.Time        `json:"completed_at,omitempty"`
	Duration       time.Duration     `json:"duration,omitempty"`
	Documents      int               `json:"documents"`
	Results        map[string]int    `json:"results,omitempty"`
	Citations      int               `json:"citations"`
	Footnotes      int               `json:"footnotes"`
	Warnings       []LinkWarningData `json:"warnings,omitempty"`
	SetHash        string            `json:"set_hash,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// Summarize projects the events of buildID into a summary. An empty
// buildID selects the latest build.
func Summarize(ctx context.Context, store Store, buildID string) (*BuildSummary, error) {
	if buildID == "" {
		latest, err := store.LatestBuildID(ctx)
		if err != nil {
			return nil, err
		}
		buildID = latest
	}

	events, err := store.GetByBuildID(ctx, buildID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, wrap(ErrBuildNotFound, nil, "build_id", buildID)
	}

	summary := &BuildSummary{
		BuildID:   buildID,
		Status:    StatusRunning,
		StartedAt: events[0].Timestamp(),
		Results:   make(map[string]int),
	}
	for _, e := range events {
		summary.apply(e)
	}
	return summary, nil
}

// apply folds one event into the summary. Payloads that fail to decode are
// ignored so that a damaged row does not hide the rest of the build.
func (s *BuildSummary) apply(e Event) {
	switch e.Type() {
	case TypeBuildStarted:
		var d BuildStartedData
		if json.Unmarshal(e.Payload(), &d) == nil {
			s.StartedAt = e.Timestamp()
			s.ContentDir = d.ContentDir
			s.ReferenceRegex = d.ReferenceRegex
		}

	case TypeDocumentLinked:
		var d DocumentLinkedData
		if json.Unmarshal(e.Payload(), &d) == nil {
			s.Documents++
			s.Results[d.Result]++
		}

	case TypeLinkWarningRaised:
		var d LinkWarningData
		if json.Unmarshal(e.Payload(), &d) == nil {
			s.Warnings = append(s.Warnings, d)
		}

	case TypeBuildCompleted:
		var d BuildCompletedData
		if json.Unmarshal(e.Payload(), &d) == nil {
			completed := e.Timestamp()
			s.CompletedAt = &completed
			s.Status = d.Status
			s.Duration = time.Duration(d.DurationMS) * time.Millisecond
			s.Documents = d.Documents
			s.Citations = d.Citations
			s.Footnotes = d.Footnotes
			s.SetHash = d.SetHash
			s.Error = d.Error
		}
	}
}
