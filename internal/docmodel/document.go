package docmodel

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/footnotelinker/internal/frontmatter"
)

// Kind distinguishes dated articles from standalone pages.
type Kind string

const (
	KindArticle Kind = "article"
	KindPage    Kind = "page"
)

// Document is one source file after parsing and rendering.
type Document struct {
	Kind          Kind
	Status        frontmatter.Status
	Lang          string
	IsTranslation bool
	Title         string
	Slug          string
	// Path is the slash separated source path relative to the content root.
	Path       string
	OutputPath string
	Metadata   frontmatter.Metadata
	// Content is the rendered HTML. Transforms replace it in place.
	Content string
	// ReferenceRegex overrides the site-wide marker fragment when not empty.
	ReferenceRegex string
	Fingerprint    string
}

// KindFor classifies a document by its top-level section.
func KindFor(section, pagesDir string) Kind {
	if pagesDir != "" && section == pagesDir {
		return KindPage
	}
	return KindArticle
}

// NewDocument builds a Document from parsed metadata. name is the file name
// without extension and is used for the title and slug when the front
// matter has none.
func NewDocument(kind Kind, md frontmatter.Metadata, relPath, outputPath, name, defaultLang string) *Document {
	lang := NormalizeLang(md.Lang, defaultLang)
	title := md.Title
	if title == "" {
		title = TitleFromName(name)
	}
	slug := md.Slug
	if slug == "" {
		slug = Slugify(name)
	}
	return &Document{
		Kind:           kind,
		Status:         md.Status,
		Lang:           lang,
		IsTranslation:  md.Translation || lang != NormalizeLang(defaultLang, defaultLang),
		Title:          title,
		Slug:           slug,
		Path:           relPath,
		OutputPath:     outputPath,
		Metadata:       md,
		ReferenceRegex: md.ReferenceRegex,
	}
}

// NormalizeLang returns the canonical BCP 47 form of raw, or fallback when
// raw is empty or not a valid tag.
func NormalizeLang(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return fallback
	}
	return tag.String()
}

// TitleFromName derives a title from a file name: "my-first_post" becomes "My First Post".
func TitleFromName(name string) string {
	name = strings.TrimSuffix(path.Base(name), path.Ext(name))
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	// Casers keep state and cannot be shared between goroutines.
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// Slugify lower-cases name and joins its words with dashes.
func Slugify(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	return strings.Join(words, "-")
}
