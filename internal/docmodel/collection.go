package docmodel

import "git.home.luguber.info/inful/footnotelinker/internal/frontmatter"

// List is one named group of documents.
type List struct {
	Kind Kind
	Name string
	Docs []*Document
}

// listSpec places a document in a list by kind, status and translation flag.
type listSpec struct {
	kind        Kind
	name        string
	status      frontmatter.Status
	translation bool
}

// listOrder is the order in which lists are visited.
var listOrder = []listSpec{
	{KindArticle, "articles", frontmatter.StatusPublished, false},
	{KindArticle, "translations", frontmatter.StatusPublished, true},
	{KindArticle, "hidden_articles", frontmatter.StatusHidden, false},
	{KindArticle, "hidden_translations", frontmatter.StatusHidden, true},
	{KindArticle, "drafts", frontmatter.StatusDraft, false},
	{KindArticle, "drafts_translations", frontmatter.StatusDraft, true},
	{KindPage, "pages", frontmatter.StatusPublished, false},
	{KindPage, "translations", frontmatter.StatusPublished, true},
	{KindPage, "hidden_pages", frontmatter.StatusHidden, false},
	{KindPage, "hidden_translations", frontmatter.StatusHidden, true},
	{KindPage, "draft_pages", frontmatter.StatusDraft, false},
	{KindPage, "draft_translations", frontmatter.StatusDraft, true},
}

// Collection holds every document of a build.
type Collection struct {
	lists [][]*Document
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{lists: make([][]*Document, len(listOrder))}
}

// Add places doc in its list. Documents keep their insertion order within a list.
func (c *Collection) Add(doc *Document) {
	i := listIndex(doc)
	c.lists[i] = append(c.lists[i], doc)
}

func listIndex(doc *Document) int {
	status := doc.Status
	if status == "" {
		status = frontmatter.StatusPublished
	}
	kind := doc.Kind
	if kind == "" {
		kind = KindArticle
	}
	for i, def := range listOrder {
		if def.kind == kind && def.status == status && def.translation == doc.IsTranslation {
			return i
		}
	}
	return 0
}

// Lists returns every list, including empty ones, in visiting order.
func (c *Collection) Lists() []List {
	out := make([]List, len(listOrder))
	for i, def := range listOrder {
		out[i] = List{Kind: def.kind, Name: def.name, Docs: c.lists[i]}
	}
	return out
}

// Each calls fn for every document exactly once, list by list. It stops at
// the first error.
func (c *Collection) Each(fn func(list List, doc *Document) error) error {
	for _, l := range c.Lists() {
		for _, doc := range l.Docs {
			if err := fn(l, doc); err != nil {
				return err
			}
		}
	}
	return nil
}

// Documents returns every document in visiting order.
func (c *Collection) Documents() []*Document {
	out := make([]*Document, 0, c.Len())
	for _, l := range c.lists {
		out = append(out, l...)
	}
	return out
}

// Len returns the number of documents.
func (c *Collection) Len() int {
	n := 0
	for _, l := range c.lists {
		n += len(l)
	}
	return n
}
