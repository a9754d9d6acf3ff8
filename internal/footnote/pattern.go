package footnote

import (
	"regexp"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// DefaultReferenceRegex matches the variable part of the default marker
// [ref<digits>].
const DefaultReferenceRegex = `\d+`

const (
	keyGroup  = "key"
	bodyGroup = "body"
)

var (
	footnotesHeading = regexp.MustCompile(`<h[234]>Footnotes`)

	// linkedCitation recognises citations this package already rewrote.
	linkedCitation = regexp.MustCompile(`\[<a href="#note-\d+" id="ref-[^"]+">\d+</a>\]`)
)

// Pattern holds the compiled marker expressions for one reference regex.
// It is immutable and safe for concurrent use.
type Pattern struct {
	fragment string
	citation *regexp.Regexp
	footnote *regexp.Regexp

	citationKey  int
	footnoteKey  int
	footnoteBody int
}

// NewPattern compiles a reference fragment. The fragment describes only the
// variable part of a marker; the surrounding "[ref" and "]" as well as the
// paragraph syntax of footnotes are added here.
func NewPattern(fragment string) (*Pattern, error) {
	if fragment == "" {
		return nil, errors.ValidationError("reference regex is empty").Build()
	}

	empty, err := regexp.Compile(`^(?:` + fragment + `)$`)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid reference regex").
			WithContext("reference_regex", fragment).
			Build()
	}
	if empty.MatchString("") {
		return nil, errors.ValidationError("reference regex matches the empty string").
			WithContext("reference_regex", fragment).
			Build()
	}

	citation, err := regexp.Compile(`\[ref(?P<` + keyGroup + `>` + fragment + `)\]`)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid reference regex").
			WithContext("reference_regex", fragment).
			Build()
	}
	footnote, err := regexp.Compile(`<p>\[ref(?P<` + keyGroup + `>` + fragment + `)\](?P<` + bodyGroup + `>(?s:.*?))</p>`)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid reference regex").
			WithContext("reference_regex", fragment).
			Build()
	}

	return &Pattern{
		fragment:     fragment,
		citation:     citation,
		footnote:     footnote,
		citationKey:  citation.SubexpIndex(keyGroup),
		footnoteKey:  footnote.SubexpIndex(keyGroup),
		footnoteBody: footnote.SubexpIndex(bodyGroup),
	}, nil
}

// MustPattern is like NewPattern but panics on error. Intended for constants.
func MustPattern(fragment string) *Pattern {
	p, err := NewPattern(fragment)
	if err != nil {
		panic(err)
	}
	return p
}

// Fragment returns the reference regex the pattern was built from.
func (p *Pattern) Fragment() string {
	return p.fragment
}

// citations returns, for every citation marker in s, the marker span and the
// key span as [start, end, keyStart, keyEnd].
func (p *Pattern) citations(s string) [][4]int {
	matches := p.citation.FindAllStringSubmatchIndex(s, -1)
	out := make([][4]int, 0, len(matches))
	for _, m := range matches {
		k := 2 * p.citationKey
		out = append(out, [4]int{m[0], m[1], m[k], m[k+1]})
	}
	return out
}

// footnotes returns, for every footnote paragraph in s, the paragraph span,
// the key span and the body span.
func (p *Pattern) footnotes(s string) [][6]int {
	matches := p.footnote.FindAllStringSubmatchIndex(s, -1)
	out := make([][6]int, 0, len(matches))
	for _, m := range matches {
		k, b := 2*p.footnoteKey, 2*p.footnoteBody
		out = append(out, [6]int{m[0], m[1], m[k], m[k+1], m[b], m[b+1]})
	}
	return out
}
