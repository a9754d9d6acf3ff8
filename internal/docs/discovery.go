package docs

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	derrors "git.home.luguber.info/inful/footnotelinker/internal/docs/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
)

// DocFile represents a discovered Markdown document.
type DocFile struct {
	Path         string // Absolute path to the file
	RelativePath string // Slash separated path relative to the content root
	Section      string // First directory below the content root, empty at root level
	Name         string // File name without extension
	Extension    string // Lower-cased file extension
	Content      []byte // File content
}

// OutputPath returns the slash separated path of the rendered HTML file.
func (df *DocFile) OutputPath() string {
	return strings.TrimSuffix(df.RelativePath, path.Ext(df.RelativePath)) + ".html"
}

// Discovery finds Markdown documents below a content directory.
type Discovery struct {
	extensions []string
	logger     *slog.Logger
}

// NewDiscovery creates a discovery for the given extensions (".md", ...).
func NewDiscovery(extensions []string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		exts = append(exts, strings.ToLower(e))
	}
	return &Discovery{extensions: exts, logger: logger}
}

// Discover walks root and returns its documents sorted by relative path.
// Hidden files and directories and repository housekeeping files at the
// root level are skipped.
func (d *Discovery) Discover(root string) ([]DocFile, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.WrapError(derrors.ErrContentDirNotFound, errors.CategoryNotFound, "content directory not found").
			WithContext("path", root).
			Build()
	}

	var files []DocFile
	err = filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			if p != root && isHidden(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(name) || !d.isMarkdown(name) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("%w: %w", derrors.ErrInvalidRelativePath, err)
		}
		rel = filepath.ToSlash(rel)

		section := ""
		if i := strings.IndexByte(rel, '/'); i >= 0 {
			section = rel[:i]
		} else if isIgnoredFile(name) {
			return nil
		}

		doc := DocFile{
			Path:         p,
			RelativePath: rel,
			Section:      section,
			Name:         strings.TrimSuffix(name, filepath.Ext(name)),
			Extension:    strings.ToLower(filepath.Ext(name)),
		}
		if err := doc.LoadContent(); err != nil {
			return err
		}
		files = append(files, doc)

		d.logger.Debug("Discovered document", logfields.Path(rel), slog.String("section", section))
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(fmt.Errorf("%w: %w", derrors.ErrDirWalkFailed, err), errors.CategoryFileSystem, "failed to discover documents").
			WithContext("path", root).
			Build()
	}

	slices.SortFunc(files, func(a, b DocFile) int {
		return strings.Compare(a.RelativePath, b.RelativePath)
	})
	d.logger.Info("Documents discovered", logfields.Path(root), logfields.Count(len(files)))
	return files, nil
}

// LoadContent loads the content of a document if it is not loaded yet.
func (df *DocFile) LoadContent() error {
	if df.Content != nil {
		return nil
	}
	content, err := os.ReadFile(df.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, df.Path, err)
	}
	df.Content = content
	return nil
}

func (d *Discovery) isMarkdown(name string) bool {
	return slices.Contains(d.extensions, strings.ToLower(filepath.Ext(name)))
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}

// isIgnoredFile reports repository housekeeping files that are never documents.
func isIgnoredFile(name string) bool {
	for _, ignore := range []string{"README.md", "CONTRIBUTING.md", "CHANGELOG.md", "LICENSE.md"} {
		if strings.EqualFold(name, ignore) {
			return true
		}
	}
	return false
}
