// Package footnote links in-text citation markers to footnote paragraphs in
// rendered HTML, and each footnote back to every citation that refers to it.
//
// A citation marker is a bracketed token such as [ref12]. A footnote is an
// HTML paragraph that begins with the same token, placed after a heading
// (h2, h3 or h4) whose text starts with "Footnotes":
//
//	<p>Hello[ref1] world.</p>
//	<h2>Footnotes</h2>
//	<p>[ref1]Some note.</p>
//
// becomes
//
//	<p>Hello[<a href="#note-1" id="ref-1a">1</a>] world.</p>
//	<h2>Footnotes</h2>
//	<p id="note-1">[1] Some note. <a href="#ref-1a">^</a></p>
//
// Footnotes are numbered in order of their first in-text citation. Repeated
// citations of one footnote get sub-labels a..z, and the footnote then lists
// one back-link per citation (^a^b...).
//
// The input is generator-produced HTML, so scanning is pattern based rather
// than DOM based. Callers must not rely on markers spanning several content
// fragments or on nested footnotes.
//
// Linking never fails. Structural problems (no footnotes heading, no footnote
// paragraphs) leave the content untouched and produce a Warning. Orphaned
// citations and footnotes are linked as far as possible and reported.
package footnote
