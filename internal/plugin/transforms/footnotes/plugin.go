// Package footnotes is the transform plugin that runs the footnote Linker
// once over every document of a build.
package footnotes

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/footnotelinker/internal/docmodel"
	"git.home.luguber.info/inful/footnotelinker/internal/footnote"
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
	"git.home.luguber.info/inful/footnotelinker/internal/metrics"
	"git.home.luguber.info/inful/footnotelinker/internal/plugin"
)

// Name is the registry name of the plugin.
const Name = "footnotes"

// InvalidReferenceRegex is reported when a document's own reference regex
// does not compile. The document is left unchanged.
const InvalidReferenceRegex footnote.WarningKind = "invalid_reference_regex"

// DocumentReport is the linking outcome of one document.
type DocumentReport struct {
	Path      string
	Title     string
	Result    metrics.DocumentResult
	Citations int
	Footnotes int
	Warnings  []footnote.Warning
}

// Plugin links citations and footnotes in every document.
type Plugin struct {
	mu      sync.Mutex
	linker  *footnote.Linker
	reports []DocumentReport
}

// New creates an uninitialized plugin. Init must run before Execute.
func New() *Plugin {
	return &Plugin{}
}

// Metadata returns the plugin metadata.
func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.PluginTypeTransform,
		Description: "Links in-text citations to footnotes and back",
		Order:       10,
	}
}

// Init compiles the site-wide reference pattern. An invalid pattern is a
// configuration error and no document is processed.
func (p *Plugin) Init(pctx *plugin.PluginContext) error {
	fragment := footnote.DefaultReferenceRegex
	if pctx.Config != nil && pctx.Config.Footnotes.ReferenceRegex != "" {
		fragment = pctx.Config.Footnotes.ReferenceRegex
	}
	pattern, err := footnote.NewPattern(fragment)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid footnotes.reference_regex").
			WithContext("reference_regex", fragment).Fatal().UserAction().Build()
	}

	p.mu.Lock()
	p.linker = footnote.NewLinker(pattern)
	p.mu.Unlock()

	pctx.Logger.Debug("Footnote pattern compiled", logfields.Pattern(pattern.Fragment()))
	return nil
}

// Execute links every document of the collection. Documents are linked
// concurrently; warnings are logged and recorded in collection order.
func (p *Plugin) Execute(ctx context.Context, pctx *plugin.PluginContext) error {
	p.mu.Lock()
	linker := p.linker
	p.mu.Unlock()
	if linker == nil {
		return errors.InternalError("footnotes plugin used before Init").Build()
	}
	if pctx.Collection == nil {
		return errors.InternalError("footnotes plugin needs a collection").Build()
	}

	docs := pctx.Collection.Documents()
	reports := make([]DocumentReport, len(docs))
	workers := 1
	if pctx.Config != nil && pctx.Config.Build.Workers > 1 {
		workers = pctx.Config.Build.Workers
	}
	workers = min(workers, max(len(docs), 1))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i] = linkDocument(linker, docs[i])
			}
		}()
	}

	canceled := false
feed:
	for i := range docs {
		if ctx.Err() != nil {
			canceled = true
			break
		}
		select {
		case <-ctx.Done():
			canceled = true
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if canceled {
		return ctx.Err()
	}

	rec := metrics.OrNoop(pctx.Recorder)
	linked := 0
	for i := range reports {
		r := &reports[i]
		rec.IncDocuments(r.Result)
		rec.AddCitations(r.Citations)
		rec.AddFootnotes(r.Footnotes)
		if r.Result == metrics.DocumentLinked {
			linked++
		}
		for _, w := range r.Warnings {
			rec.IncWarning(string(w.Kind))
			pctx.Logger.Warn(w.Message,
				logfields.Document(r.Path),
				logfields.Kind(string(w.Kind)),
				logfields.Keys(w.Keys))
		}
	}
	pctx.Logger.Info("Footnotes linked",
		logfields.Count(len(docs)),
		logfields.Workers(workers),
		logfields.Pattern(linker.Pattern().Fragment()),
		slog.Int("linked", linked))

	p.mu.Lock()
	p.reports = reports
	p.mu.Unlock()
	return nil
}

// Reports returns the per-document results of the last Execute, in
// collection order.
func (p *Plugin) Reports() []DocumentReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reports
}

// linkDocument runs the Linker on doc and stores the rewritten content back.
func linkDocument(linker *footnote.Linker, doc *docmodel.Document) DocumentReport {
	report := DocumentReport{Path: doc.Path, Title: doc.Title}

	var override *footnote.Pattern
	if doc.ReferenceRegex != "" {
		var err error
		override, err = footnote.NewPattern(doc.ReferenceRegex)
		if err != nil {
			report.Result = metrics.DocumentSkipped
			report.Warnings = []footnote.Warning{invalidOverride(doc, err)}
			return report
		}
	}

	res := linker.LinkWith(doc.Content, override, doc.Title)
	doc.Content = res.Content

	report.Citations = res.Citations
	report.Footnotes = res.Footnotes
	report.Warnings = res.Warnings
	switch {
	case res.Changed:
		report.Result = metrics.DocumentLinked
	case skipped(res.Warnings):
		report.Result = metrics.DocumentSkipped
	default:
		report.Result = metrics.DocumentUnchanged
	}
	return report
}

func skipped(warnings []footnote.Warning) bool {
	for _, w := range warnings {
		if w.Skipped() {
			return true
		}
	}
	return false
}
