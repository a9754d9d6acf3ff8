package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/footnotelinker/internal/config"
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
	"git.home.luguber.info/inful/footnotelinker/internal/retry"
)

// NATSNotifier publishes notifications as JSON on a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
	policy  retry.Policy
	logger  *slog.Logger
}

// NewNATSNotifier connects to url. An empty subject selects
// config.DefaultNotifySubject.
func NewNATSNotifier(url, subject string, logger *slog.Logger) (*NATSNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if subject == "" {
		subject = config.DefaultNotifySubject
	}

	conn, err := nats.Connect(url,
		nats.Name("footnotelinker"),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", logfields.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", logfields.Addr(c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNotify, "failed to connect to NATS").
			WithContext("url", url).Build()
	}

	logger.Info("NATS notifier connected", logfields.Addr(conn.ConnectedUrl()), logfields.Subject(subject))
	return &NATSNotifier{
		conn:    conn,
		subject: subject,
		policy:  retry.DefaultPolicy(),
		logger:  logger,
	}, nil
}

// Notify publishes n and waits until the server has received it.
func (s *NATSNotifier) Notify(ctx context.Context, n BuildNotification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return errors.WrapError(err, errors.CategoryNotify, "failed to marshal notification").Build()
	}

	return s.policy.Do(ctx, func(ctx context.Context) error {
		if err := s.conn.Publish(s.subject, data); err != nil {
			return errors.NotifyError("failed to publish notification").WithCause(err).
				WithContext("subject", s.subject).Build()
		}
		if err := s.conn.FlushWithContext(ctx); err != nil {
			return errors.NotifyError("failed to flush notification").WithCause(err).
				WithContext("subject", s.subject).Build()
		}
		s.logger.Debug("Build notification published", logfields.BuildID(n.BuildID), logfields.Subject(s.subject))
		return nil
	})
}

// Close drains the connection.
func (s *NATSNotifier) Close() error {
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return errors.WrapError(err, errors.CategoryNotify, "failed to drain NATS connection").Build()
	}
	return nil
}
