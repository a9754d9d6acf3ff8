package eventstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEventStoreAppendAndRetrieve(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	payload := []byte(`{"test":"data"}`)
	require.NoError(t, store.Append(ctx, "build-1", "TestEvent", payload, map[string]string{"key": "value"}))
	require.NoError(t, store.Append(ctx, "build-2", "TestEvent", nil, nil))

	events, err := store.GetByBuildID(ctx, "build-1")
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Positive(t, e.ID())
	assert.Equal(t, "build-1", e.BuildID())
	assert.Equal(t, "TestEvent", e.Type())
	assert.Equal(t, payload, e.Payload())
	assert.Equal(t, "value", e.Metadata()["key"])
	assert.WithinDuration(t, time.Now(), e.Timestamp(), time.Minute)

	events, err = store.GetByBuildID(ctx, "build-2")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].Payload())
	assert.Nil(t, events[0].Metadata())
}

func TestEventStoreLatestBuildID(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	_, err := store.LatestBuildID(ctx)
	require.ErrorIs(t, err, ErrBuildNotFound)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))

	require.NoError(t, store.Append(ctx, "first", "A", nil, nil))
	require.NoError(t, store.Append(ctx, "second", "A", nil, nil))

	id, err := store.LatestBuildID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", id)
}

func TestEventStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), "b1", "A", []byte(`{}`), nil))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	id, err := reopened.LatestBuildID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "b1", id)
}

func TestEventStoreAppendAfterClose(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Append(t.Context(), "b", "A", nil, nil)
	require.ErrorIs(t, err, ErrEventAppendFailed)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryStore))
}
