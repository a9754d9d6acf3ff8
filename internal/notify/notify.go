// Package notify publishes a short summary of every finished build.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/footnotelinker/internal/config"
	"git.home.luguber.info/inful/footnotelinker/internal/eventstore"
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
)

// BuildNotification is the message published when a build completes.
type BuildNotification struct {
	BuildID    string    `json:"build_id"`
	Status     string    `json:"status"`
	Documents  int       `json:"documents"`
	Citations  int       `json:"citations"`
	Footnotes  int       `json:"footnotes"`
	Warnings   int       `json:"warnings"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier delivers build notifications.
type Notifier interface {
	Notify(ctx context.Context, n BuildNotification) error
	Close() error
}

// NoopNotifier discards notifications.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, BuildNotification) error { return nil }
func (NoopNotifier) Close() error                                    { return nil }

// New returns a NATS notifier for cfg, or a NoopNotifier when no URL is set.
func New(cfg config.NotifyConfig, logger *slog.Logger) (Notifier, error) {
	if cfg.NATSURL == "" {
		return NoopNotifier{}, nil
	}
	return NewNATSNotifier(cfg.NATSURL, cfg.Subject, logger)
}

// FromEvent decodes a BuildCompleted event.
func FromEvent(e eventstore.Event) (BuildNotification, error) {
	if e.Type() != eventstore.TypeBuildCompleted {
		return BuildNotification{}, errors.InternalError("not a BuildCompleted event").
			WithContext("event_type", e.Type()).Build()
	}
	var data eventstore.BuildCompletedData
	if err := json.Unmarshal(e.Payload(), &data); err != nil {
		return BuildNotification{}, errors.WrapError(err, errors.CategoryNotify, "invalid BuildCompleted payload").
			WithContext("build_id", e.BuildID()).Build()
	}
	return BuildNotification{
		BuildID:    e.BuildID(),
		Status:     data.Status,
		Documents:  data.Documents,
		Citations:  data.Citations,
		Footnotes:  data.Footnotes,
		Warnings:   data.Warnings,
		DurationMS: data.DurationMS,
		Error:      data.Error,
		Timestamp:  e.Timestamp(),
	}, nil
}

// Handler returns a build event handler that forwards BuildCompleted events
// to n. Delivery failures are logged and never reported to the bus.
func Handler(n Notifier, logger *slog.Logger) func(context.Context, eventstore.Event) error {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, e eventstore.Event) error {
		msg, err := FromEvent(e)
		if err != nil {
			return err
		}
		if err := n.Notify(ctx, msg); err != nil {
			logger.Warn("Build notification failed", logfields.BuildID(msg.BuildID), logfields.Error(err))
		}
		return nil
	}
}
