package footnote

import (
	"slices"
	"strconv"
	"strings"
)

// Result is the outcome of linking one document.
type Result struct {
	// Content is the rewritten HTML, or the input when nothing was rewritten.
	Content string
	// Warnings lists anomalies in the order they were found.
	Warnings []Warning
	// Citations is the number of in-text citations turned into links.
	Citations int
	// Footnotes is the number of footnote paragraphs given back-links.
	Footnotes int
	// Changed is true when Content differs from the input.
	Changed bool
	// AlreadyLinked is true when the input already contains linked citations.
	AlreadyLinked bool
}

// Linker links documents with a default pattern, optionally overridden per
// document. A Linker has no mutable state and may be shared between goroutines.
type Linker struct {
	pattern *Pattern
}

// NewLinker returns a Linker using p as the default pattern. A nil p selects
// DefaultReferenceRegex.
func NewLinker(p *Pattern) *Linker {
	if p == nil {
		p = MustPattern(DefaultReferenceRegex)
	}
	return &Linker{pattern: p}
}

// Pattern returns the default pattern.
func (l *Linker) Pattern() *Pattern {
	return l.pattern
}

// Link links content with the default pattern. title is used in warnings only.
func (l *Linker) Link(content, title string) Result {
	return Link(content, l.pattern, title)
}

// LinkWith links content with override, or the default pattern when override is nil.
func (l *Linker) LinkWith(content string, override *Pattern, title string) Result {
	if override == nil {
		override = l.pattern
	}
	return Link(content, override, title)
}

// Link rewrites citations and footnotes in content using p, which must not be nil.
func Link(content string, p *Pattern, title string) Result {
	res := Result{Content: content}
	linked := linkedCitation.MatchString(content)

	cites := p.citations(content)
	if len(cites) == 0 {
		res.AlreadyLinked = linked
		return res
	}
	heading := footnotesHeading.FindStringIndex(content)
	if linked {
		res.AlreadyLinked = true
		// Markers left inside footnote bodies are expected after a first pass.
		if heading == nil || cites[0][0] < heading[0] {
			res.Warnings = append(res.Warnings,
				structuralWarning(AlreadyLinked, title, len(cites), "already contains linked footnotes"))
		}
		return res
	}
	if heading == nil {
		res.Warnings = append(res.Warnings,
			structuralWarning(MissingHeading, title, len(cites), "no footnotes heading"))
		return res
	}
	split := heading[0]
	body, notes := content[:split], content[split:]

	blocks := p.footnotes(notes)
	if len(blocks) == 0 {
		res.Warnings = append(res.Warnings,
			structuralWarning(MissingFootnotes, title, len(cites), "no footnotes"))
		return res
	}

	var out strings.Builder
	out.Grow(len(content) + len(cites)*48 + len(blocks)*64)

	set := newFootnoteSet()
	overflow := rewriteCitations(&out, body, cites, set, &res)
	footnoted, orphans, duplicates := rewriteFootnotes(&out, notes, blocks, set, &res)

	if len(overflow) > 0 {
		res.Warnings = append(res.Warnings, keysWarning(SubLabelOverflow, title, overflow,
			"reference(s) %s are cited more than "+strconv.Itoa(MaxCitationsPerFootnote)+" times; extra citations have no back-links"))
	}
	var missing []string
	for _, f := range set.order {
		if !footnoted[f.Key] {
			missing = append(missing, f.Key)
		}
	}
	if len(missing) > 0 {
		res.Warnings = append(res.Warnings, keysWarning(OrphanCitation, title, missing, "reference(s) %s have no footnotes"))
	}
	if len(orphans) > 0 {
		res.Warnings = append(res.Warnings, keysWarning(OrphanFootnote, title, orphans, "footnote(s) %s have no citations"))
	}
	if len(duplicates) > 0 {
		res.Warnings = append(res.Warnings, keysWarning(DuplicateFootnote, title, duplicates, "footnote(s) %s are defined more than once"))
	}

	res.Content = out.String()
	res.Changed = res.Content != content
	return res
}

// rewriteCitations writes body to out with every citation replaced by a link.
// Citations that reach into the footnotes region end the sweep. It returns
// the keys whose citations ran out of sub-labels.
func rewriteCitations(out *strings.Builder, body string, cites [][4]int, set *footnoteSet, res *Result) []string {
	var overflow []string
	last := 0
	for _, c := range cites {
		if c[1] > len(body) {
			break
		}

		before := body[last:c[0]]
		if strings.HasSuffix(before, " ") {
			before = before[:len(before)-1] + "&nbsp;"
		}
		out.WriteString(before)
		last = c[1]

		f := set.getOrCreate(body[c[2]:c[3]])
		ordinal := strconv.Itoa(f.Ordinal)
		id, ok := f.CitationID(f.CitationCount + 1)
		if !ok {
			if !slices.Contains(overflow, f.Key) {
				overflow = append(overflow, f.Key)
			}
			out.WriteString(`[<a href="#` + f.AnchorID() + `">` + ordinal + `</a>]`)
			res.Citations++
			continue
		}
		f.CitationCount++
		out.WriteString(`[<a href="#` + f.AnchorID() + `" id="` + id + `">` + ordinal + `</a>]`)
		res.Citations++
	}
	out.WriteString(body[last:])
	return overflow
}

// rewriteFootnotes writes notes to out with each footnote paragraph given an
// anchor and back-links. It returns the keys that were footnoted, the keys
// of uncited footnotes, and the keys defined more than once.
func rewriteFootnotes(out *strings.Builder, notes string, blocks [][6]int, set *footnoteSet, res *Result) (map[string]bool, []string, []string) {
	seen := make(map[string]bool, len(blocks))
	var orphans, duplicates []string
	next := len(set.order) + 1

	last := 0
	for _, b := range blocks {
		out.WriteString(notes[last:b[0]])
		last = b[1]

		key, text := notes[b[2]:b[3]], notes[b[4]:b[5]]
		if seen[key] {
			if !slices.Contains(duplicates, key) {
				duplicates = append(duplicates, key)
			}
			out.WriteString(notes[b[0]:b[1]])
			continue
		}
		seen[key] = true

		f, ok := set.get(key)
		if !ok {
			// Uncited footnotes get a self anchor numbered after the cited ones
			// instead of being left verbatim, so every footnote stays linkable.
			orphans = append(orphans, key)
			n := strconv.Itoa(next)
			out.WriteString(`<p id="` + noteID(next) + `">[` + n + `] ` + text + `</p>`)
			next++
			continue
		}

		out.WriteString(`<p id="` + f.AnchorID() + `">[` + strconv.Itoa(f.Ordinal) + `] ` + text + f.backLinks() + `</p>`)
		res.Footnotes++
	}
	out.WriteString(notes[last:])

	return seen, orphans, duplicates
}
