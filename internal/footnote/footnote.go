package footnote

import (
	"strconv"
	"strings"
)

// subLabels names the citations of one footnote in order of appearance.
const subLabels = "abcdefghijklmnopqrstuvwxyz"

// MaxCitationsPerFootnote is the number of citations of one footnote that can
// carry a distinct sub-label and back-link.
const MaxCitationsPerFootnote = len(subLabels)

// SubLabel returns the letter for the i-th (1-based) citation of a footnote.
// ok is false when i is outside 1..MaxCitationsPerFootnote.
func SubLabel(i int) (label string, ok bool) {
	if i < 1 || i > MaxCitationsPerFootnote {
		return "", false
	}
	return subLabels[i-1 : i], true
}

// Footnote is the per-document state for one footnote key. It exists from
// the first in-text citation of the key until the end of one Link call.
type Footnote struct {
	Key           string
	Ordinal       int
	CitationCount int
}

// AnchorID is the id of the rewritten footnote paragraph.
func (f *Footnote) AnchorID() string {
	return noteID(f.Ordinal)
}

// CitationID is the id of the i-th citation of this footnote.
func (f *Footnote) CitationID(i int) (string, bool) {
	label, ok := SubLabel(i)
	if !ok {
		return "", false
	}
	return "ref-" + f.Key + label, true
}

// backLinks renders the links from the footnote to each of its citations.
func (f *Footnote) backLinks() string {
	switch f.CitationCount {
	case 0:
		return ""
	case 1:
		id, _ := f.CitationID(1)
		return ` <a href="#` + id + `">^</a>`
	}

	var b strings.Builder
	b.WriteByte(' ')
	for i := 1; i <= f.CitationCount; i++ {
		id, _ := f.CitationID(i)
		label, _ := SubLabel(i)
		b.WriteString(`<a href="#` + id + `">^` + label + `</a>`)
	}
	return b.String()
}

func noteID(ordinal int) string {
	return "note-" + strconv.Itoa(ordinal)
}

// footnoteSet keeps footnotes in first-citation order.
type footnoteSet struct {
	byKey map[string]*Footnote
	order []*Footnote
}

func newFootnoteSet() *footnoteSet {
	return &footnoteSet{byKey: make(map[string]*Footnote)}
}

func (s *footnoteSet) get(key string) (*Footnote, bool) {
	f, ok := s.byKey[key]
	return f, ok
}

func (s *footnoteSet) getOrCreate(key string) *Footnote {
	if f, ok := s.byKey[key]; ok {
		return f
	}
	f := &Footnote{Key: key, Ordinal: len(s.order) + 1}
	s.byKey[key] = f
	s.order = append(s.order, f)
	return f
}
