// Package pipeline runs a footnotelinker build: discover the content tree,
// parse and render every document, run the plugins over the collection and
// write the result.
package pipeline

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/footnotelinker/internal/config"
	"git.home.luguber.info/inful/footnotelinker/internal/docmodel"
	"git.home.luguber.info/inful/footnotelinker/internal/docs"
	"git.home.luguber.info/inful/footnotelinker/internal/eventstore"
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
	"git.home.luguber.info/inful/footnotelinker/internal/markdown"
	"git.home.luguber.info/inful/footnotelinker/internal/metrics"
	"git.home.luguber.info/inful/footnotelinker/internal/plugin"
	"git.home.luguber.info/inful/footnotelinker/internal/plugin/transforms/footnotes"
	"git.home.luguber.info/inful/footnotelinker/internal/plugin/verifiers/anchors"
)

// Stage names used for logging and metrics.
const (
	StageDiscover = "discover"
	StageParse    = "parse"
	StagePlugins  = "plugins"
	StageWrite    = "write"
)

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Processor) { p.recorder = metrics.OrNoop(r) }
}

// WithBus publishes build events on bus.
func WithBus(bus *Bus) Option {
	return func(p *Processor) { p.bus = bus }
}

// WithDryRun links and verifies without writing output.
func WithDryRun(dryRun bool) Option {
	return func(p *Processor) { p.dryRun = dryRun }
}

// DefaultRegistry returns a registry with the footnote linker and, when
// footnotes.verify_anchors is set, the anchor verifier.
func DefaultRegistry(cfg *config.Config) (*plugin.Registry, error) {
	r := plugin.NewRegistry()
	if err := r.Register(footnotes.New()); err != nil {
		return nil, err
	}
	if cfg.Footnotes.VerifyAnchors {
		if err := r.Register(anchors.New()); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Processor runs builds. Runs are serialized; the render cache and plugin
// initialization carry over from one run to the next.
type Processor struct {
	cfg       *config.Config
	registry  *plugin.Registry
	logger    *slog.Logger
	recorder  metrics.Recorder
	bus       *Bus
	dryRun    bool
	discovery *docs.Discovery
	renderer  *markdown.Renderer
	cache     *renderCache

	mu          sync.Mutex
	initialized bool
}

// NewProcessor creates a processor for cfg. A nil registry selects
// DefaultRegistry(cfg).
func NewProcessor(cfg *config.Config, registry *plugin.Registry, opts ...Option) (*Processor, error) {
	if cfg == nil {
		return nil, errors.InternalError("pipeline needs a configuration").Build()
	}
	if registry == nil {
		var err error
		if registry, err = DefaultRegistry(cfg); err != nil {
			return nil, err
		}
	}
	p := &Processor{
		cfg:      cfg,
		registry: registry,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		bus:      NewBus(),
		renderer: markdown.New(markdown.Options{Unsafe: true}),
		cache:    newRenderCache(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bus.SetLogger(p.logger)
	p.discovery = docs.NewDiscovery(cfg.Content.Extensions, p.logger)
	return p, nil
}

// NewBuildID returns a fresh build identifier.
func NewBuildID() string {
	return uuid.NewString()
}

// Run performs one build. The returned report is never nil; err is non-nil
// when the build could not complete. Document level problems are reported in
// the BuildReport and do not make Run fail.
func (p *Processor) Run(ctx context.Context) (*BuildReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	report := &BuildReport{
		BuildID:   NewBuildID(),
		StartedAt: time.Now(),
		DryRun:    p.dryRun,
		OutputDir: p.cfg.Output.Directory,
	}
	logger := p.logger.With(logfields.BuildID(report.BuildID))

	p.replayDeadLetters(ctx, logger)
	p.publish(ctx, logger, report.BuildID, func() (eventstore.Event, error) {
		return eventstore.NewBuildStarted(report.BuildID, eventstore.BuildStartedData{
			ContentDir:     p.cfg.Content.Path,
			ReferenceRegex: p.cfg.Footnotes.ReferenceRegex,
			Workers:        p.cfg.Build.Workers,
			DryRun:         p.dryRun,
		})
	})
	logger.Info("Build started", logfields.Path(p.cfg.Content.Path))

	err := p.run(ctx, logger, report)
	canceled := err != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded))
	report.finish(err, canceled)

	p.recorder.ObserveBuildDuration(report.Duration)
	p.recorder.IncBuildOutcome(report.outcome())

	// The outcome is recorded even when ctx was canceled.
	done := context.WithoutCancel(ctx)
	p.publishDocuments(done, logger, report)
	p.publish(done, logger, report.BuildID, func() (eventstore.Event, error) {
		data := eventstore.BuildCompletedData{
			Status:     report.Status,
			Documents:  report.Documents,
			Citations:  report.Citations,
			Footnotes:  report.Footnotes,
			Warnings:   report.WarningCount(),
			DurationMS: report.Duration.Milliseconds(),
			SetHash:    report.SetHash,
		}
		if err != nil {
			data.Error = err.Error()
		}
		return eventstore.NewBuildCompleted(report.BuildID, data)
	})

	attrs := []any{
		slog.String("status", report.Status),
		logfields.Count(report.Documents),
		slog.Int("citations", report.Citations),
		slog.Int("footnotes", report.Footnotes),
		slog.Int("warnings", report.WarningCount()),
		logfields.DurationMS(float64(report.Duration.Microseconds()) / 1000),
	}
	if err != nil {
		logger.Error("Build failed", append(attrs, logfields.Error(err))...)
	} else {
		logger.Info("Build finished", attrs...)
	}
	return report, err
}

func (p *Processor) run(ctx context.Context, logger *slog.Logger, report *BuildReport) error {
	if !p.initialized {
		pctx := plugin.NewPluginContext(logger, p.cfg, nil, report.BuildID, p.recorder)
		if err := p.registry.InitAll(pctx); err != nil {
			return err
		}
		logger.Debug("Plugins initialized", logfields.Count(p.registry.Count()))
		p.initialized = true
	}

	var files []docs.DocFile
	err := p.stage(ctx, StageDiscover, logger, func() error {
		var derr error
		files, derr = p.discovery.Discover(p.cfg.Content.Path)
		return derr
	})
	if err != nil {
		return err
	}
	report.SetHash = docs.SetHash(files)

	var coll *docmodel.Collection
	var failed []DocumentReport
	err = p.stage(ctx, StageParse, logger, func() error {
		coll, failed = p.buildCollection(ctx, logger, files, report)
		return ctx.Err()
	})
	if err != nil {
		return err
	}
	report.Documents = coll.Len()

	err = p.stage(ctx, StagePlugins, logger, func() error {
		pctx := plugin.NewPluginContext(logger, p.cfg, coll, report.BuildID, p.recorder)
		return p.registry.ExecuteAll(ctx, pctx)
	})
	if err != nil {
		return err
	}
	report.DocumentReports = append(p.collectReports(coll, report), failed...)

	if p.dryRun {
		return nil
	}
	return p.stage(ctx, StageWrite, logger, func() error {
		if err := prepareOutput(p.cfg.Output.Directory, p.cfg.Content.Path, p.cfg.Output.Clean); err != nil {
			return err
		}
		for _, doc := range coll.Documents() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := writeDocument(p.cfg.Output.Directory, doc); err != nil {
				return err
			}
			report.Written++
		}
		return nil
	})
}

// stage times fn and records its result.
func (p *Processor) stage(ctx context.Context, name string, logger *slog.Logger, fn func() error) error {
	if err := ctx.Err(); err != nil {
		p.recorder.IncStageResult(name, metrics.ResultCanceled)
		return err
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.recorder.ObserveStageDuration(name, elapsed)

	switch {
	case err == nil:
		p.recorder.IncStageResult(name, metrics.ResultSuccess)
	case ctx.Err() != nil:
		p.recorder.IncStageResult(name, metrics.ResultCanceled)
	default:
		p.recorder.IncStageResult(name, metrics.ResultFatal)
	}
	logger.Debug("Stage finished", logfields.Stage(name),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return err
}

// buildCollection parses and renders every file. Files that fail are
// reported and left out of the collection.
func (p *Processor) buildCollection(ctx context.Context, logger *slog.Logger, files []docs.DocFile, report *BuildReport) (*docmodel.Collection, []DocumentReport) {
	coll := docmodel.NewCollection()
	var failed []DocumentReport
	seen := make(map[string]bool, len(files))

	for i := range files {
		if ctx.Err() != nil {
			break
		}
		f := &files[i]
		seen[f.RelativePath] = true

		doc, rendered, err := p.buildDocument(f)
		if err != nil {
			logger.Warn("Document skipped", logfields.Document(f.RelativePath), logfields.Error(err))
			p.recorder.IncDocuments(metrics.DocumentFailed)
			failed = append(failed, DocumentReport{
				Path:   f.RelativePath,
				Title:  docmodel.TitleFromName(f.Name),
				Result: metrics.DocumentFailed,
				Error:  err.Error(),
			})
			continue
		}
		if rendered {
			report.Rendered++
		}
		coll.Add(doc)
	}
	p.cache.retain(seen)
	return coll, failed
}

// buildDocument parses f and renders its body, reusing the cached HTML when
// the fingerprint is unchanged.
func (p *Processor) buildDocument(f *docs.DocFile) (*docmodel.Document, bool, error) {
	parsed, err := docmodel.Parse(f.Content)
	if err != nil {
		return nil, false, err
	}
	fingerprint, err := docs.Fingerprint(parsed.Fields(), parsed.Body())
	if err != nil {
		return nil, false, err
	}

	html, ok := p.cache.get(f.RelativePath, fingerprint)
	rendered := !ok
	if rendered {
		html, err = p.renderer.Render(parsed.Body())
		if err != nil {
			return nil, false, err
		}
		p.cache.put(f.RelativePath, fingerprint, html)
	}

	kind := docmodel.KindFor(f.Section, p.cfg.Content.PagesDir)
	doc := docmodel.NewDocument(kind, parsed.Metadata(), f.RelativePath, f.OutputPath(), f.Name, p.cfg.Content.DefaultLang)
	doc.Content = html
	doc.Fingerprint = fingerprint
	return doc, rendered, nil
}

// collectReports merges plugin results into one report per document.
func (p *Processor) collectReports(coll *docmodel.Collection, report *BuildReport) []DocumentReport {
	docsInOrder := coll.Documents()
	out := make([]DocumentReport, len(docsInOrder))
	index := make(map[string]int, len(docsInOrder))
	for i, doc := range docsInOrder {
		out[i] = DocumentReport{Path: doc.Path, Title: doc.Title, Result: metrics.DocumentUnchanged}
		index[doc.Path] = i
	}

	for _, pl := range p.registry.List() {
		switch r := pl.(type) {
		case *footnotes.Plugin:
			for _, fr := range r.Reports() {
				i, ok := index[fr.Path]
				if !ok {
					continue
				}
				out[i].Result = fr.Result
				out[i].Citations = fr.Citations
				out[i].Footnotes = fr.Footnotes
				out[i].Warnings = fr.Warnings
				report.Citations += fr.Citations
				report.Footnotes += fr.Footnotes
			}
		case *anchors.Plugin:
			for _, issue := range r.Issues() {
				i, ok := index[issue.Path]
				if !ok {
					continue
				}
				out[i].BrokenAnchors = issue.Broken
				out[i].DuplicateIDs = issue.DuplicateIDs
				out[i].AnchorMessage = issue.Message
			}
		}
	}
	return out
}

// publishDocuments emits one DocumentLinked event per document and one
// LinkWarningRaised event per issue.
func (p *Processor) publishDocuments(ctx context.Context, logger *slog.Logger, report *BuildReport) {
	for i := range report.DocumentReports {
		d := &report.DocumentReports[i]
		p.publish(ctx, logger, report.BuildID, func() (eventstore.Event, error) {
			return eventstore.NewDocumentLinked(report.BuildID, eventstore.DocumentLinkedData{
				Path:      d.Path,
				Title:     d.Title,
				Result:    string(d.Result),
				Citations: d.Citations,
				Footnotes: d.Footnotes,
			})
		})
		for _, w := range d.Warnings {
			p.publishWarning(ctx, logger, report.BuildID, eventstore.LinkWarningData{
				Path: d.Path, Title: d.Title, Kind: string(w.Kind), Keys: w.Keys, Message: w.Message,
			})
		}
		if d.AnchorMessage != "" {
			p.publishWarning(ctx, logger, report.BuildID, eventstore.LinkWarningData{
				Path: d.Path, Title: d.Title, Kind: anchors.KindBrokenAnchor,
				Keys: append(append([]string(nil), d.BrokenAnchors...), d.DuplicateIDs...), Message: d.AnchorMessage,
			})
		}
		if d.Error != "" {
			p.publishWarning(ctx, logger, report.BuildID, eventstore.LinkWarningData{
				Path: d.Path, Title: d.Title, Kind: string(errors.CategoryContent), Message: d.Error,
			})
		}
	}
}

func (p *Processor) publishWarning(ctx context.Context, logger *slog.Logger, buildID string, data eventstore.LinkWarningData) {
	p.publish(ctx, logger, buildID, func() (eventstore.Event, error) {
		return eventstore.NewLinkWarningRaised(buildID, data)
	})
}

// publish builds an event and publishes it. Failures are logged; events
// never fail a build.
func (p *Processor) publish(ctx context.Context, logger *slog.Logger, buildID string, build func() (eventstore.Event, error)) {
	e, err := build()
	if err != nil {
		logger.Warn("Failed to create build event", logfields.BuildID(buildID), logfields.Error(err))
		return
	}
	if err := p.bus.Publish(ctx, e); err != nil {
		logger.Warn("Build event handler failed", logfields.Kind(e.Type()), logfields.Error(err))
	}
}

func (p *Processor) replayDeadLetters(ctx context.Context, logger *slog.Logger) {
	if p.bus.eventStore == nil || p.bus.dlq.Count() == 0 {
		return
	}
	n, err := p.bus.dlq.Replay(ctx, p.bus.eventStore)
	if err != nil {
		logger.Warn("Build history still unavailable", logfields.Count(p.bus.dlq.Count()), logfields.Error(err))
		return
	}
	logger.Info("Replayed build events", logfields.Count(n))
}
