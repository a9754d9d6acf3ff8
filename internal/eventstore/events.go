package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// Event type names.
const (
	TypeBuildStarted      = "BuildStarted"
	TypeDocumentLinked    = "DocumentLinked"
	TypeLinkWarningRaised = "LinkWarningRaised"
	TypeBuildCompleted    = "BuildCompleted"
)

// Build statuses as recorded in BuildCompleted.
const (
	StatusRunning  = "running"
	StatusSuccess  = "success"
	StatusWarning  = "warning"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// BuildStartedData is the payload of a BuildStarted event.
type BuildStartedData struct {
	ContentDir     string `json:"content_dir"`
	ReferenceRegex string `json:"reference_regex"`
	Workers        int    `json:"workers"`
	DryRun         bool   `json:"dry_run,omitempty"`
}

// DocumentLinkedData is the payload of a DocumentLinked event.
type DocumentLinkedData struct {
	Path      string `json:"path"`
	Title     string `json:"title"`
	Result    string `json:"result"`
	Citations int    `json:"citations"`
	Footnotes int    `json:"footnotes"`
}

// LinkWarningData is the payload of a LinkWarningRaised event.
type LinkWarningData struct {
	Path    string   `json:"path"`
	Title   string   `json:"title"`
	Kind    string   `json:"kind"`
	Keys    []string `json:"keys,omitempty"`
	Message string   `json:"message"`
}

// BuildCompletedData is the payload of a BuildCompleted event.
type BuildCompletedData struct {
	Status     string `json:"status"`
	Documents  int    `json:"documents"`
	Citations  int    `json:"citations"`
	Footnotes  int    `json:"footnotes"`
	Warnings   int    `json:"warnings"`
	DurationMS int64  `json:"duration_ms"`
	SetHash    string `json:"set_hash,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, data BuildStartedData) (Event, error) {
	return newEvent(buildID, TypeBuildStarted, data)
}

// NewDocumentLinked creates a DocumentLinked event.
func NewDocumentLinked(buildID string, data DocumentLinkedData) (Event, error) {
	return newEvent(buildID, TypeDocumentLinked, data)
}

// NewLinkWarningRaised creates a LinkWarningRaised event.
func NewLinkWarningRaised(buildID string, data LinkWarningData) (Event, error) {
	return newEvent(buildID, TypeLinkWarningRaised, data)
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID string, data BuildCompletedData) (Event, error) {
	return newEvent(buildID, TypeBuildCompleted, data)
}

func newEvent(buildID, eventType string, data any) (Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "failed to marshal "+eventType+" payload").
			WithContext("build_id", buildID).
			Build()
	}
	return &BaseEvent{
		EventBuildID:   buildID,
		EventType:      eventType,
		EventTimestamp: time.Now(),
		EventPayload:   payload,
	}, nil
}
