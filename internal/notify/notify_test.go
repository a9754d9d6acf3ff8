package notify

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/footnotelinker/internal/config"
	"git.home.luguber.info/inful/footnotelinker/internal/eventstore"
	ferrors "git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

type recordingNotifier struct {
	got []BuildNotification
	err error
}

func (r *recordingNotifier) Notify(_ context.Context, n BuildNotification) error {
	r.got = append(r.got, n)
	return r.err
}

func (r *recordingNotifier) Close() error { return nil }

func completedEvent(t *testing.T) eventstore.Event {
	t.Helper()
	e, err := eventstore.NewBuildCompleted("b1", eventstore.BuildCompletedData{
		Status: eventstore.StatusWarning, Documents: 3, Citations: 4, Footnotes: 2, Warnings: 1, DurationMS: 42,
	})
	require.NoError(t, err)
	return e
}

func TestNew_EmptyURLIsNoop(t *testing.T) {
	n, err := New(config.NotifyConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, NoopNotifier{}, n)
	require.NoError(t, n.Notify(t.Context(), BuildNotification{}))
	require.NoError(t, n.Close())
}

func TestNew_UnreachableServer(t *testing.T) {
	_, err := New(config.NotifyConfig{NATSURL: "nats://127.0.0.1:1"}, nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotify))
}

func TestFromEvent(t *testing.T) {
	e := completedEvent(t)
	n, err := FromEvent(e)
	require.NoError(t, err)

	assert.Equal(t, "b1", n.BuildID)
	assert.Equal(t, eventstore.StatusWarning, n.Status)
	assert.Equal(t, 3, n.Documents)
	assert.Equal(t, 4, n.Citations)
	assert.Equal(t, 2, n.Footnotes)
	assert.Equal(t, 1, n.Warnings)
	assert.Equal(t, int64(42), n.DurationMS)
	assert.Equal(t, e.Timestamp(), n.Timestamp)

	started, err := eventstore.NewBuildStarted("b1", eventstore.BuildStartedData{})
	require.NoError(t, err)
	_, err = FromEvent(started)
	require.Error(t, err)
}

func TestHandler(t *testing.T) {
	rec := &recordingNotifier{}
	h := Handler(rec, nil)

	require.NoError(t, h(t.Context(), completedEvent(t)))
	require.Len(t, rec.got, 1)
	assert.Equal(t, "b1", rec.got[0].BuildID)

	rec.err = stderrors.New("down")
	require.NoError(t, h(t.Context(), completedEvent(t)), "delivery failures are logged only")
}
