package linkverify

import (
	"io"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// Anchor is a same-page link.
type Anchor struct {
	Target string // Fragment without the leading '#'
	Text   string // Link text
	Line   int    // Approximate element number in the document
}

// AnchorReport is the result of checking one HTML document.
type AnchorReport struct {
	IDs          []string
	Links        []Anchor
	Broken       []Anchor
	DuplicateIDs []string
}

// OK reports whether the document has neither broken anchors nor duplicate ids.
func (r *AnchorReport) OK() bool {
	return len(r.Broken) == 0 && len(r.DuplicateIDs) == 0
}

// BrokenTargets returns the distinct targets of broken anchors in document order.
func (r *AnchorReport) BrokenTargets() []string {
	var out []string
	for _, a := range r.Broken {
		if !slices.Contains(out, a.Target) {
			out = append(out, a.Target)
		}
	}
	return out
}

// CheckAnchorsString is CheckAnchors for an in-memory document.
func CheckAnchorsString(s string) (*AnchorReport, error) {
	return CheckAnchors(strings.NewReader(s))
}

// CheckAnchors parses HTML from r and matches same-page links against
// element ids. Both id attributes and <a name> count as targets.
func CheckAnchors(r io.Reader) (*AnchorReport, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	report := &AnchorReport{}
	seen := make(map[string]int)
	var lineNum int

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			lineNum++
			if id := getAttr(n, "id"); id != "" {
				seen[id]++
				if seen[id] == 1 {
					report.IDs = append(report.IDs, id)
				} else if seen[id] == 2 {
					report.DuplicateIDs = append(report.DuplicateIDs, id)
				}
			}
			if n.Data == "a" {
				if name := getAttr(n, "name"); name != "" && seen[name] == 0 {
					seen[name] = 1
					report.IDs = append(report.IDs, name)
				}
				if target, ok := fragment(getAttr(n, "href")); ok {
					report.Links = append(report.Links, Anchor{Target: target, Text: extractText(n), Line: lineNum})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, a := range report.Links {
		if seen[a.Target] == 0 {
			report.Broken = append(report.Broken, a)
		}
	}
	return report, nil
}

// fragment returns the decoded target of a same-page href.
func fragment(href string) (string, bool) {
	if !strings.HasPrefix(href, "#") || len(href) == 1 {
		return "", false
	}
	target := href[1:]
	if decoded, err := url.PathUnescape(target); err == nil {
		target = decoded
	}
	return target, true
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// extractText extracts text content from an HTML node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}

	return strings.TrimSpace(text.String())
}
