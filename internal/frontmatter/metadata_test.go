package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataFromFields(t *testing.T) {
	md := MetadataFromFields(map[string]any{
		"title":          "  A Title ",
		"status":         "Hidden",
		"lang":           "nb",
		"slug":           "a-title",
		"referenceregex": `[a-z]+`,
		"tags":           []any{"x"},
	})

	assert.Equal(t, "A Title", md.Title)
	assert.Equal(t, StatusHidden, md.Status)
	assert.Equal(t, "nb", md.Lang)
	assert.Equal(t, "a-title", md.Slug)
	assert.Equal(t, `[a-z]+`, md.ReferenceRegex)
	assert.False(t, md.Translation)
	assert.Contains(t, md.Fields, "tags")
}

func TestMetadataFromFields_Defaults(t *testing.T) {
	md := MetadataFromFields(map[string]any{})

	assert.Equal(t, StatusPublished, md.Status)
	assert.Empty(t, md.Title)
	assert.Empty(t, md.ReferenceRegex)
}

func TestMetadataFromFields_Status(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   Status
	}{
		{"draft flag", map[string]any{"draft": true}, StatusDraft},
		{"draft flag string", map[string]any{"draft": "yes"}, StatusDraft},
		{"draft flag wins", map[string]any{"status": "hidden", "draft": true}, StatusDraft},
		{"draft false", map[string]any{"draft": false}, StatusPublished},
		{"unknown status", map[string]any{"status": "archived"}, StatusPublished},
		{"draft status", map[string]any{"status": "DRAFT"}, StatusDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MetadataFromFields(tt.fields).Status)
		})
	}
}

func TestMetadataFromFields_ReferenceRegexAlias(t *testing.T) {
	md := MetadataFromFields(map[string]any{"reference_regex": `\w+`, "translation": true})

	assert.Equal(t, `\w+`, md.ReferenceRegex)
	assert.True(t, md.Translation)
}

func TestMetadataFromFields_NonStringValues(t *testing.T) {
	md := MetadataFromFields(map[string]any{"title": 2024, "slug": nil})

	assert.Equal(t, "2024", md.Title)
	assert.Empty(t, md.Slug)
}
