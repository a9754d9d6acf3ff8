package footnote

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultLinker(t *testing.T) *Linker {
	t.Helper()
	p, err := NewPattern(DefaultReferenceRegex)
	require.NoError(t, err)
	return NewLinker(p)
}

func TestLink_SingleCitation(t *testing.T) {
	in := "<p>Hello[ref1] world.</p>\n<h2>Footnotes</h2>\n<p>[ref1]Some note.</p>"

	res := defaultLinker(t).Link(in, "Hello")

	want := "<p>Hello[<a href=\"#note-1\" id=\"ref-1a\">1</a>] world.</p>\n" +
		"<h2>Footnotes</h2>\n" +
		"<p id=\"note-1\">[1] Some note. <a href=\"#ref-1a\">^</a></p>"
	assert.Equal(t, want, res.Content)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.Citations)
	assert.Equal(t, 1, res.Footnotes)
}

func TestLink_NoCitations_ReturnsInputUnchanged(t *testing.T) {
	inputs := []string{
		"",
		"<p>Plain text.</p>",
		"<p>Text</p><h2>Footnotes</h2><p>Nothing to see</p>",
		"<p>[reference1] is not a marker</p>",
	}
	for _, in := range inputs {
		res := defaultLinker(t).Link(in, "t")
		assert.Equal(t, in, res.Content)
		assert.Empty(t, res.Warnings)
		assert.False(t, res.Changed)
	}
}

func TestLink_MissingHeading_SkipsDocument(t *testing.T) {
	in := "<p>a[ref1] b[ref2]</p><p>[ref1]One</p>"

	res := defaultLinker(t).Link(in, "No Heading")

	assert.Equal(t, in, res.Content)
	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, MissingHeading, w.Kind)
	assert.True(t, w.Skipped())
	assert.Equal(t, `Document "No Heading" has 3 references but no footnotes heading; skipping`, w.Message)
}

func TestLink_UnsupportedHeadingLevel(t *testing.T) {
	for _, heading := range []string{"<h1>Footnotes</h1>", "<h5>Footnotes</h5>", "<h2 id=\"fn\">Footnotes</h2>", "<h2>Notes</h2>"} {
		in := "<p>a[ref1]</p>" + heading + "<p>[ref1]One</p>"
		res := defaultLinker(t).Link(in, "t")
		assert.Equal(t, in, res.Content, heading)
		require.Len(t, res.Warnings, 1, heading)
		assert.Equal(t, MissingHeading, res.Warnings[0].Kind, heading)
	}
}

func TestLink_HeadingWithSuffixIsAccepted(t *testing.T) {
	in := "<p>a[ref1]</p><h4>Footnotes and sources</h4><p>[ref1]One</p>"

	res := defaultLinker(t).Link(in, "t")

	assert.Empty(t, res.Warnings)
	assert.Contains(t, res.Content, `<p id="note-1">[1] One <a href="#ref-1a">^</a></p>`)
}

func TestLink_MissingFootnotes_SkipsDocument(t *testing.T) {
	in := "<p>a[ref1]</p><h2>Footnotes</h2><ul><li>[ref1] in a list</li></ul>"

	res := defaultLinker(t).Link(in, "Empty Notes")

	assert.Equal(t, in, res.Content)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, MissingFootnotes, res.Warnings[0].Kind)
	assert.Equal(t, `Document "Empty Notes" has 2 references but no footnotes; skipping`, res.Warnings[0].Message)
}

func TestLink_FootnoteParagraphBeforeHeadingIsNotAFootnote(t *testing.T) {
	in := "<p>[ref1] starts a paragraph</p><h2>Footnotes</h2><p>no markers</p>"

	res := defaultLinker(t).Link(in, "t")

	assert.Equal(t, in, res.Content)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, MissingFootnotes, res.Warnings[0].Kind)
}

func TestLink_NonBreakingSpaceBeforeCitation(t *testing.T) {
	in := "<p>Hello [ref1] and  [ref1]</p><h2>Footnotes</h2><p>[ref1]N</p>"

	res := defaultLinker(t).Link(in, "t")

	assert.True(t, strings.HasPrefix(res.Content,
		`<p>Hello&nbsp;[<a href="#note-1" id="ref-1a">1</a>] and &nbsp;[<a href="#note-1" id="ref-1b">1</a>]</p>`),
		res.Content)
}

func TestLink_AdjacentCitations(t *testing.T) {
	in := "<p>x[ref1][ref2] [ref3]</p><h2>Footnotes</h2><p>[ref1]A</p><p>[ref2]B</p><p>[ref3]C</p>"

	res := defaultLinker(t).Link(in, "t")

	assert.Contains(t, res.Content,
		`x[<a href="#note-1" id="ref-1a">1</a>][<a href="#note-2" id="ref-2a">2</a>]&nbsp;[<a href="#note-3" id="ref-3a">3</a>]`)
	assert.Empty(t, res.Warnings)
}

func TestLink_MultipleCitationsOfOneFootnote(t *testing.T) {
	in := "<p>A[ref5] B[ref5]</p><h2>Footnotes</h2><p>[ref5]Five.</p>"

	res := defaultLinker(t).Link(in, "t")

	assert.Contains(t, res.Content, `A[<a href="#note-1" id="ref-5a">1</a>] B[<a href="#note-1" id="ref-5b">1</a>]`)
	assert.Contains(t, res.Content,
		`<p id="note-1">[1] Five. <a href="#ref-5a">^a</a><a href="#ref-5b">^b</a></p>`)
	assert.Equal(t, 2, res.Citations)
	assert.Equal(t, 1, res.Footnotes)
}

func TestLink_ThreeCitationsRenderLetteredBackLinks(t *testing.T) {
	in := "<p>[ref2] x [ref2] y [ref2]</p><h2>Footnotes</h2><p>[ref2]Two</p>"

	res := defaultLinker(t).Link(in, "t")

	assert.Contains(t, res.Content,
		`[1] Two <a href="#ref-2a">^a</a><a href="#ref-2b">^b</a><a href="#ref-2c">^c</a></p>`)
}

func TestLink_OrdinalsFollowFirstCitationOrder(t *testing.T) {
	in := "<p>a[ref7] b[ref3] c[ref7] d[ref42]</p>" +
		"<h2>Footnotes</h2>" +
		"<p>[ref3]Three</p><p>[ref42]FortyTwo</p><p>[ref7]Seven</p>"

	res := defaultLinker(t).Link(in, "t")

	assert.Contains(t, res.Content, `a[<a href="#note-1" id="ref-7a">1</a>]`)
	assert.Contains(t, res.Content, `b[<a href="#note-2" id="ref-3a">2</a>]`)
	assert.Contains(t, res.Content, `c[<a href="#note-1" id="ref-7b">1</a>]`)
	assert.Contains(t, res.Content, `d[<a href="#note-3" id="ref-42a">3</a>]`)
	assert.Contains(t, res.Content,
		`<p id="note-2">[2] Three <a href="#ref-3a">^</a></p>`+
			`<p id="note-3">[3] FortyTwo <a href="#ref-42a">^</a></p>`+
			`<p id="note-1">[1] Seven <a href="#ref-7a">^a</a><a href="#ref-7b">^b</a></p>`)
	assert.Empty(t, res.Warnings)
}

func TestLink_OrphanCitation(t *testing.T) {
	in := "<p>X[ref1] Y[ref9]</p><h2>Footnotes</h2><p>[ref1]One</p>"

	res := defaultLinker(t).Link(in, "Orphans")

	assert.Contains(t, res.Content, `Y[<a href="#note-2" id="ref-9a">2</a>]`)
	require.Len(t, res.Warnings, 1)
	w := res.Warnings[0]
	assert.Equal(t, OrphanCitation, w.Kind)
	assert.Equal(t, []string{"9"}, w.Keys)
	assert.False(t, w.Skipped())
	assert.Equal(t, `Document "Orphans": reference(s) 9 have no footnotes`, w.Message)
}

func TestLink_OrphanCitationsAggregated(t *testing.T) {
	in := "<p>[ref4] [ref1] [ref8] [ref4]</p><h2>Footnotes</h2><p>[ref1]One</p>"

	res := defaultLinker(t).Link(in, "t")

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, []string{"4", "8"}, res.Warnings[0].Keys)
	assert.Contains(t, res.Warnings[0].Message, "reference(s) 4, 8 have no footnotes")
}

func TestLink_OrphanFootnote(t *testing.T) {
	in := "<p>X[ref1]</p><h3>Footnotes</h3><p>[ref2]Two</p><p>[ref1]One</p>"

	res := defaultLinker(t).Link(in, "Uncited")

	assert.Contains(t, res.Content, `<p id="note-2">[2] Two</p>`)
	assert.Contains(t, res.Content, `<p id="note-1">[1] One <a href="#ref-1a">^</a></p>`)
	assert.NotContains(t, res.Content, `href="#ref-2`)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, OrphanFootnote, res.Warnings[0].Kind)
	assert.Equal(t, []string{"2"}, res.Warnings[0].Keys)
	assert.Equal(t, `Document "Uncited": footnote(s) 2 have no citations`, res.Warnings[0].Message)
}

func TestLink_BothOrphanKinds(t *testing.T) {
	in := "<p>X[ref1]</p><h2>Footnotes</h2><p>[ref2]Two</p><p>[ref3]Three</p>"

	res := defaultLinker(t).Link(in, "t")

	require.Len(t, res.Warnings, 2)
	assert.Equal(t, OrphanCitation, res.Warnings[0].Kind)
	assert.Equal(t, []string{"1"}, res.Warnings[0].Keys)
	assert.Equal(t, OrphanFootnote, res.Warnings[1].Kind)
	assert.Equal(t, []string{"2", "3"}, res.Warnings[1].Keys)
	assert.Contains(t, res.Content, `<p id="note-2">[2] Two</p><p id="note-3">[3] Three</p>`)
}

func TestLink_DuplicateFootnoteLeftAsWritten(t *testing.T) {
	in := "<p>X[ref1]</p><h2>Footnotes</h2><p>[ref1]First</p><p>[ref1]Second</p>"

	res := defaultLinker(t).Link(in, "t")

	assert.Contains(t, res.Content, `<p id="note-1">[1] First <a href="#ref-1a">^</a></p><p>[ref1]Second</p>`)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, DuplicateFootnote, res.Warnings[0].Kind)
	assert.Equal(t, []string{"1"}, res.Warnings[0].Keys)
}

func TestLink_MarkerInsideFootnoteBodyIsPreserved(t *testing.T) {
	in := "<p>a[ref1]</p><h2>Footnotes</h2><p>[ref1]See [ref2]</p>"

	res := defaultLinker(t).Link(in, "t")

	assert.Equal(t,
		`<p>a[<a href="#note-1" id="ref-1a">1</a>]</p><h2>Footnotes</h2><p id="note-1">[1] See [ref2] <a href="#ref-1a">^</a></p>`,
		res.Content)
	assert.Empty(t, res.Warnings)
}

func TestLink_MultilineFootnoteBody(t *testing.T) {
	in := "<p>a[ref1]</p>\n<h2>Footnotes</h2>\n<p>[ref1]line one\nline two</p>\n<p>after</p>"

	res := defaultLinker(t).Link(in, "t")

	assert.Contains(t, res.Content, "<p id=\"note-1\">[1] line one\nline two <a href=\"#ref-1a\">^</a></p>\n<p>after</p>")
}

func TestLink_TrailingContentAfterFootnotesIsCopied(t *testing.T) {
	in := "<p>a[ref1]</p><h2>Footnotes</h2><p>[ref1]N</p><footer>end</footer>"

	res := defaultLinker(t).Link(in, "t")

	assert.True(t, strings.HasSuffix(res.Content, "</p><footer>end</footer>"))
}

func TestLink_SubLabelOverflowIsGuarded(t *testing.T) {
	in := "<p>" + strings.Repeat("x[ref1]", MaxCitationsPerFootnote+2) + "</p><h2>Footnotes</h2><p>[ref1]N</p>"

	res := defaultLinker(t).Link(in, "Busy")

	assert.Equal(t, MaxCitationsPerFootnote+2, res.Citations)
	assert.Contains(t, res.Content, `id="ref-1z"`)
	assert.Equal(t, 2, strings.Count(res.Content, `x[<a href="#note-1">1</a>]`))
	assert.Equal(t, MaxCitationsPerFootnote, strings.Count(res.Content, `<a href="#ref-1`))
	assert.Contains(t, res.Content, `<a href="#ref-1z">^z</a></p>`)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, SubLabelOverflow, res.Warnings[0].Kind)
	assert.Equal(t, []string{"1"}, res.Warnings[0].Keys)
}

func TestLink_SecondRunIsNoOp(t *testing.T) {
	in := "<p>a[ref1] b[ref2]</p><h2>Footnotes</h2><p>[ref1]One [ref2]</p><p>[ref2]Two</p>"
	l := defaultLinker(t)

	first := l.Link(in, "t")
	require.True(t, first.Changed)
	assert.False(t, first.AlreadyLinked)

	second := l.Link(first.Content, "t")
	assert.Equal(t, first.Content, second.Content)
	assert.False(t, second.Changed)
	assert.True(t, second.AlreadyLinked)
	assert.Empty(t, second.Warnings)
}

func TestLink_NewCitationsInLinkedContentAreRefused(t *testing.T) {
	l := defaultLinker(t)
	first := l.Link("<p>a[ref1]</p><h2>Footnotes</h2><p>[ref1]One</p>", "t")
	edited := strings.Replace(first.Content, "</p>", " and [ref3]</p>", 1)

	res := l.Link(edited, "Edited")

	assert.Equal(t, edited, res.Content)
	assert.True(t, res.AlreadyLinked)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, AlreadyLinked, res.Warnings[0].Kind)
	assert.True(t, res.Warnings[0].Skipped())
}

func TestLinker_LinkWithOverridePattern(t *testing.T) {
	l := defaultLinker(t)
	override, err := NewPattern(`[a-z]+`)
	require.NoError(t, err)
	in := "<p>See[refsmith] and[ref1]</p><h2>Footnotes</h2><p>[refsmith]Smith 2020.</p><p>[ref1]One.</p>"

	res := l.LinkWith(in, override, "t")

	assert.Contains(t, res.Content, `See[<a href="#note-1" id="ref-smitha">1</a>]`)
	assert.Contains(t, res.Content, "and[ref1]")
	assert.Contains(t, res.Content, `<p id="note-1">[1] Smith 2020. <a href="#ref-smitha">^</a></p><p>[ref1]One.</p>`)

	fallback := l.LinkWith(in, nil, "t")
	assert.Contains(t, fallback.Content, `and[<a href="#note-1" id="ref-1a">1</a>]`)
	assert.Contains(t, fallback.Content, "See[refsmith]")
}

func TestLinker_PatternWithOwnGroups(t *testing.T) {
	p, err := NewPattern(`(\d+)-(\d+)`)
	require.NoError(t, err)
	in := "<p>x[ref1-2]</p><h2>Footnotes</h2><p>[ref1-2]Range</p>"

	res := NewLinker(p).Link(in, "t")

	assert.Contains(t, res.Content, `x[<a href="#note-1" id="ref-1-2a">1</a>]`)
	assert.Contains(t, res.Content, `<p id="note-1">[1] Range <a href="#ref-1-2a">^</a></p>`)
}

func TestNewLinker_NilPatternUsesDefault(t *testing.T) {
	l := NewLinker(nil)
	assert.Equal(t, DefaultReferenceRegex, l.Pattern().Fragment())
}

var (
	citationIDRe   = regexp.MustCompile(`\[<a href="#(note-\d+)"(?: id="([^"]+)")?>\d+</a>\]`)
	footnoteAnchor = regexp.MustCompile(`<p id="(note-\d+)">`)
)

func TestLink_IDsAreUniqueAndTargetsExist(t *testing.T) {
	var b strings.Builder
	keys := []string{"3", "1", "4", "1", "5", "9", "2", "6", "5", "3", "5"}
	b.WriteString("<p>")
	for _, k := range keys {
		fmt.Fprintf(&b, "word [ref%s] ", k)
	}
	b.WriteString("</p>\n<h2>Footnotes</h2>\n")
	for _, k := range []string{"1", "2", "3", "4", "5", "6", "9"} {
		fmt.Fprintf(&b, "<p>[ref%s]Note %s</p>\n", k, k)
	}

	res := defaultLinker(t).Link(b.String(), "t")
	require.Empty(t, res.Warnings)

	anchors := map[string]bool{}
	for _, m := range footnoteAnchor.FindAllStringSubmatch(res.Content, -1) {
		require.False(t, anchors[m[1]], "duplicate footnote anchor %s", m[1])
		anchors[m[1]] = true
	}

	ids := map[string]bool{}
	cites := citationIDRe.FindAllStringSubmatch(res.Content, -1)
	require.Len(t, cites, len(keys))
	for _, m := range cites {
		assert.True(t, anchors[m[1]], "citation points at missing anchor %s", m[1])
		require.NotEmpty(t, m[2])
		require.False(t, ids[m[2]], "duplicate citation id %s", m[2])
		ids[m[2]] = true
		assert.Contains(t, res.Content, `<a href="#`+m[2]+`">^`, "no back-link to %s", m[2])
	}
}
