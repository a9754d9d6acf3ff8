package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

type mockPlugin struct {
	BasePlugin
	meta     PluginMetadata
	initErr  error
	execErr  error
	calls    *[]string
	executed int
}

func newMock(name string, order int, calls *[]string) *mockPlugin {
	return &mockPlugin{
		meta:  PluginMetadata{Name: name, Version: "v1.0.0", Type: PluginTypeTransform, Order: order},
		calls: calls,
	}
}

func (m *mockPlugin) Metadata() PluginMetadata { return m.meta }

func (m *mockPlugin) Init(*PluginContext) error {
	if m.calls != nil {
		*m.calls = append(*m.calls, "init:"+m.meta.Name)
	}
	return m.initErr
}

func (m *mockPlugin) Execute(_ context.Context, _ *PluginContext) error {
	m.executed++
	if m.calls != nil {
		*m.calls = append(*m.calls, "exec:"+m.meta.Name)
	}
	return m.execErr
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	p := newMock("footnotes", 0, nil)

	require.NoError(t, r.Register(p))
	assert.True(t, r.Has("footnotes"))
	assert.Equal(t, 1, r.Count())

	got, err := r.Get("footnotes")
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = r.Get("missing")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestRegistry_RegisterRejects(t *testing.T) {
	r := NewRegistry()

	require.Error(t, r.Register(nil))

	bad := newMock("", 0, nil)
	err := r.Register(bad)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	require.NoError(t, r.Register(newMock("footnotes", 0, nil)))
	require.Error(t, r.Register(newMock("footnotes", 1, nil)), "duplicate name")
}

func TestRegistry_ListOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newMock("zeta", 10, nil)))
	require.NoError(t, r.Register(newMock("beta", 0, nil)))
	require.NoError(t, r.Register(newMock("alpha", 0, nil)))

	var names []string
	for _, p := range r.List() {
		names = append(names, p.Metadata().Name)
	}
	assert.Equal(t, []string{"alpha", "beta", "zeta"}, names)
}

func TestRegistry_InitAndExecuteAll(t *testing.T) {
	var calls []string
	r := NewRegistry()
	require.NoError(t, r.Register(newMock("second", 2, &calls)))
	require.NoError(t, r.Register(newMock("first", 1, &calls)))

	pctx := NewPluginContext(nil, nil, nil, "b1", nil)
	require.NoError(t, r.InitAll(pctx))
	require.NoError(t, r.ExecuteAll(t.Context(), pctx))

	assert.Equal(t, []string{"init:first", "init:second", "exec:first", "exec:second"}, calls)
}

func TestRegistry_InitAllStopsOnError(t *testing.T) {
	var calls []string
	r := NewRegistry()
	failing := newMock("first", 1, &calls)
	failing.initErr = errors.New("bad pattern")
	require.NoError(t, r.Register(failing))
	require.NoError(t, r.Register(newMock("second", 2, &calls)))

	err := r.InitAll(NewPluginContext(nil, nil, nil, "", nil))
	require.Error(t, err)

	var pe *PluginError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "first", pe.PluginName)
	assert.Equal(t, "init", pe.Operation)
	assert.Equal(t, []string{"init:first"}, calls)
}

func TestRegistry_ExecuteAllStopsOnError(t *testing.T) {
	r := NewRegistry()
	failing := newMock("first", 1, nil)
	failing.execErr = errors.New("boom")
	second := newMock("second", 2, nil)
	require.NoError(t, r.Register(failing))
	require.NoError(t, r.Register(second))

	err := r.ExecuteAll(t.Context(), NewPluginContext(nil, nil, nil, "", nil))
	require.Error(t, err)
	assert.Equal(t, 0, second.executed)
}

func TestRegistry_ExecuteAllCanceled(t *testing.T) {
	r := NewRegistry()
	p := newMock("first", 1, nil)
	require.NoError(t, r.Register(p))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := r.ExecuteAll(ctx, NewPluginContext(nil, nil, nil, "", nil))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.executed)
}
