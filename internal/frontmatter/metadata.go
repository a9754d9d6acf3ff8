package frontmatter

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/normalization"
)

// Status is the publication state of a document.
type Status string

const (
	StatusPublished Status = "published"
	StatusHidden    Status = "hidden"
	StatusDraft     Status = "draft"
)

var statusNormalizer = normalization.NewNormalizer(map[string]Status{
	"published": StatusPublished,
	"hidden":    StatusHidden,
	"draft":     StatusDraft,
}, StatusPublished)

// Front matter keys understood by the linker.
const (
	KeyTitle          = "title"
	KeyStatus         = "status"
	KeyDraft          = "draft"
	KeyLang           = "lang"
	KeySlug           = "slug"
	KeyTranslation    = "translation"
	KeyReferenceRegex = "referenceregex"
	keyReferenceAlt   = "reference_regex"
)

// Metadata is the typed view of a document's front matter.
type Metadata struct {
	Title  string
	Status Status
	Lang   string
	Slug   string
	// Translation marks the document as a translation even when its language
	// is the default one.
	Translation bool
	// ReferenceRegex overrides footnotes.reference_regex for this document.
	ReferenceRegex string
	Fields         map[string]any
}

// MetadataFromFields extracts Metadata from parsed front matter. Unknown
// status values are treated as published.
func MetadataFromFields(fields map[string]any) Metadata {
	md := Metadata{
		Title:          stringField(fields, KeyTitle),
		Status:         statusNormalizer.Normalize(stringField(fields, KeyStatus)),
		Lang:           stringField(fields, KeyLang),
		Slug:           stringField(fields, KeySlug),
		Translation:    boolField(fields, KeyTranslation),
		ReferenceRegex: stringField(fields, KeyReferenceRegex),
		Fields:         fields,
	}
	if md.ReferenceRegex == "" {
		md.ReferenceRegex = stringField(fields, keyReferenceAlt)
	}
	if boolField(fields, KeyDraft) {
		md.Status = StatusDraft
	}
	return md
}

func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func boolField(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "yes"
	default:
		return false
	}
}
