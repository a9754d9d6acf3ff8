package frontmatter

import (
	"bytes"
	stderrors "errors"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// Style records the newline convention of a document.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front matter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = stderrors.New("yaml front matter start delimiter found but closing delimiter is missing")

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// If the document does not start with a front matter delimiter, had is false
// and body is the full input. A leading UTF-8 byte order mark is ignored.
func Split(content []byte) (fm []byte, body []byte, had bool, style Style, err error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	style = detectStyle(content)

	delim := []byte("---" + style.Newline)
	if !bytes.HasPrefix(content, delim) {
		return nil, content, false, style, nil
	}
	rest := content[len(delim):]

	// "---\n---\n": present but empty
	if bytes.HasPrefix(rest, delim) {
		return []byte{}, rest[len(delim):], true, style, nil
	}

	closing := []byte(style.Newline + "---" + style.Newline)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// closing delimiter on the last line without a trailing newline
		tail := []byte(style.Newline + "---")
		if bytes.HasSuffix(rest, tail) {
			return rest[:len(rest)-len(tail)+len(style.Newline)], []byte{}, true, style, nil
		}
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	return rest[:idx+len(style.Newline)], rest[idx+len(closing):], true, style, nil
}

// ParseYAML parses raw YAML front matter (without --- delimiters) into a map.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(fm)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "invalid yaml front matter").Build()
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		newline = "\r\n"
	}
	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
