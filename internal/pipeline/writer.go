package pipeline

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/footnotelinker/internal/config"
	"git.home.luguber.info/inful/footnotelinker/internal/docmodel"
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article>
<h1>{{.Title}}</h1>
{{.Content}}
</article>
</body>
</html>
`))

type pageData struct {
	Lang    string
	Title   string
	Content template.HTML
}

// renderPage wraps the linked document body in a minimal HTML page.
func renderPage(doc *docmodel.Document) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Lang:    doc.Lang,
		Title:   doc.Title,
		Content: template.HTML(doc.Content), //nolint:gosec // rendered from trusted Markdown
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to render page").
			WithContext("path", doc.Path).Build()
	}
	return buf.Bytes(), nil
}

// prepareOutput creates dir, removing its previous content when clean is set.
// A dir that overlaps contentDir is refused before anything is touched.
func prepareOutput(dir, contentDir string, clean bool) error {
	if err := config.CheckOutputDir(contentDir, dir); err != nil {
		return err
	}
	if clean {
		if err := os.RemoveAll(dir); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to clean output directory").
				WithContext("path", dir).Build()
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", dir).Build()
	}
	return nil
}

// writeDocument writes doc below dir at its output path. The file is
// written next to its target and renamed so readers never see a partial page.
func writeDocument(dir string, doc *docmodel.Document) error {
	page, err := renderPage(doc)
	if err != nil {
		return err
	}

	target := filepath.Join(dir, filepath.FromSlash(doc.OutputPath))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", filepath.Dir(target)).Build()
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*.html")
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output file").
			WithContext("path", target).Build()
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(page); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output file").
			WithContext("path", target).Build()
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output file").
			WithContext("path", target).Build()
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // published site content
		_ = os.Remove(tmpName)
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to set output file mode").
			WithContext("path", target).Build()
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to move output file into place").
			WithContext("path", target).Build()
	}
	return nil
}
