package footnote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

func TestNewPattern_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
	}{
		{"empty", ""},
		{"unbalanced group", `(\d+`},
		{"bad repetition", `*`},
		{"matches empty string", `\d*`},
		{"optional", `[a-z]?`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPattern(tt.fragment)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestNewPattern_Valid(t *testing.T) {
	for _, fragment := range []string{`\d+`, `[a-z]+\d{4}`, `\w+|\d+`, `(\d+)`} {
		p, err := NewPattern(fragment)
		require.NoError(t, err, fragment)
		assert.Equal(t, fragment, p.Fragment())
	}
}

func TestPattern_AlternationIsScopedToKey(t *testing.T) {
	p := MustPattern(`a+|b+`)

	cites := p.citations("x [refaa] y [refb] z [refc] [ref]")

	require.Len(t, cites, 2)
}

func TestPattern_FootnotesCaptureKeyAndBody(t *testing.T) {
	p := MustPattern(DefaultReferenceRegex)
	s := "<p>[ref12]Twelve</p>\n<p>text</p>\n<p>[ref3]  three\nlines</p>"

	blocks := p.footnotes(s)

	require.Len(t, blocks, 2)
	assert.Equal(t, "12", s[blocks[0][2]:blocks[0][3]])
	assert.Equal(t, "Twelve", s[blocks[0][4]:blocks[0][5]])
	assert.Equal(t, "3", s[blocks[1][2]:blocks[1][3]])
	assert.Equal(t, "  three\nlines", s[blocks[1][4]:blocks[1][5]])
}

func TestMustPattern_Panics(t *testing.T) {
	assert.Panics(t, func() { MustPattern("") })
}
