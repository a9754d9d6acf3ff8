package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

type status string

const (
	published status = "published"
	hidden    status = "hidden"
	draft     status = "draft"
)

func newStatus() *Normalizer[status] {
	return NewNormalizer(map[string]status{
		"published": published,
		"Hidden":    hidden,
		"draft":     draft,
	}, published)
}

func TestNormalize(t *testing.T) {
	n := newStatus()

	assert.Equal(t, hidden, n.Normalize("  HIDDEN "))
	assert.Equal(t, draft, n.Normalize("draft"))
	assert.Equal(t, published, n.Normalize("unknown"))
	assert.Equal(t, published, n.Normalize(""))
}

func TestLookup(t *testing.T) {
	n := newStatus()

	v, ok := n.Lookup("Draft")
	assert.True(t, ok)
	assert.Equal(t, draft, v)

	_, ok = n.Lookup("archived")
	assert.False(t, ok)
}

func TestNormalizeStrict(t *testing.T) {
	n := newStatus()

	v, err := n.NormalizeStrict("status", "hidden")
	require.NoError(t, err)
	assert.Equal(t, hidden, v)

	_, err = n.NormalizeStrict("status", "archived")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	valid, _ := ce.Context().GetString("valid")
	assert.Equal(t, "draft, hidden, published", valid)
}

func TestValidKeys(t *testing.T) {
	assert.Equal(t, []string{"draft", "hidden", "published"}, newStatus().ValidKeys())
}
