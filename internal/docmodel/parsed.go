package docmodel

import (
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/frontmatter"
)

// ParsedDoc represents a Markdown source split into YAML front matter and body.
type ParsedDoc struct {
	fmRaw  []byte
	body   []byte
	hadFM  bool
	fields map[string]any
}

// Parse splits content and decodes its front matter.
func Parse(content []byte) (*ParsedDoc, error) {
	fmRaw, body, had, _, err := frontmatter.Split(content)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "failed to split front matter").Build()
	}
	fields, err := frontmatter.ParseYAML(fmRaw)
	if err != nil {
		return nil, err
	}

	return &ParsedDoc{
		fmRaw:  append([]byte(nil), fmRaw...),
		body:   append([]byte(nil), body...),
		hadFM:  had,
		fields: fields,
	}, nil
}

// HadFrontmatter reports whether the source contained a front matter block.
func (d *ParsedDoc) HadFrontmatter() bool {
	return d.hadFM
}

// FrontmatterRaw returns the raw YAML front matter, or nil when there was none.
func (d *ParsedDoc) FrontmatterRaw() []byte {
	if !d.hadFM {
		return nil
	}
	return d.fmRaw
}

// Body returns the Markdown body.
func (d *ParsedDoc) Body() []byte {
	return d.body
}

// Fields returns the decoded front matter. The map is never nil.
func (d *ParsedDoc) Fields() map[string]any {
	return d.fields
}

// Metadata returns the typed front matter.
func (d *ParsedDoc) Metadata() frontmatter.Metadata {
	return frontmatter.MetadataFromFields(d.fields)
}
