package footnotes

import (
	"fmt"

	"git.home.luguber.info/inful/footnotelinker/internal/docmodel"
	"git.home.luguber.info/inful/footnotelinker/internal/footnote"
)

func invalidOverride(doc *docmodel.Document, err error) footnote.Warning {
	return footnote.Warning{
		Kind:     InvalidReferenceRegex,
		Severity: footnote.SeverityWarning,
		Message:  fmt.Sprintf("Document %q: invalid reference regex %q: %v; skipping", doc.Title, doc.ReferenceRegex, err),
	}
}
