// Package anchors is a verifier plugin that checks every document's
// same-page links after linking. It never changes content.
package anchors

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/linkverify"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
	"git.home.luguber.info/inful/footnotelinker/internal/metrics"
	"git.home.luguber.info/inful/footnotelinker/internal/plugin"
)

// Name is the registry name of the plugin.
const Name = "anchors"

// Warning kinds recorded by the plugin.
const (
	KindBrokenAnchor = "broken_anchor"
	KindDuplicateID  = "duplicate_id"
)

// Issue is an anchor problem found in one document.
type Issue struct {
	Path         string
	Title        string
	Broken       []string
	DuplicateIDs []string
	Message      string
}

// Plugin checks in-page anchors.
type Plugin struct {
	plugin.BasePlugin

	mu     sync.Mutex
	issues []Issue
}

// New creates the anchor verifier.
func New() *Plugin {
	return &Plugin{}
}

// Metadata returns the plugin metadata. The verifier runs after transforms.
func (p *Plugin) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        Name,
		Version:     "v1.0.0",
		Type:        plugin.PluginTypeVerifier,
		Description: "Reports same-page links without a target and duplicate element ids",
		Order:       100,
	}
}

// Execute checks every document of the collection.
func (p *Plugin) Execute(ctx context.Context, pctx *plugin.PluginContext) error {
	if pctx.Collection == nil {
		return errors.InternalError("anchors plugin needs a collection").Build()
	}
	rec := metrics.OrNoop(pctx.Recorder)

	var issues []Issue
	for _, doc := range pctx.Collection.Documents() {
		if err := ctx.Err(); err != nil {
			return err
		}
		report, err := linkverify.CheckAnchorsString(doc.Content)
		if err != nil {
			pctx.Logger.Warn("Anchor check failed", logfields.Document(doc.Path), logfields.Error(err))
			continue
		}
		if report.OK() {
			continue
		}

		issue := Issue{
			Path:         doc.Path,
			Title:        doc.Title,
			Broken:       report.BrokenTargets(),
			DuplicateIDs: report.DuplicateIDs,
		}
		issue.Message = describe(issue)
		issues = append(issues, issue)

		if len(issue.Broken) > 0 {
			rec.IncWarning(KindBrokenAnchor)
			pctx.Logger.Warn(issue.Message, logfields.Document(doc.Path),
				logfields.Kind(KindBrokenAnchor), logfields.Keys(issue.Broken))
		}
		if len(issue.DuplicateIDs) > 0 {
			rec.IncWarning(KindDuplicateID)
			pctx.Logger.Warn(issue.Message, logfields.Document(doc.Path),
				logfields.Kind(KindDuplicateID), logfields.Keys(issue.DuplicateIDs))
		}
	}

	p.mu.Lock()
	p.issues = issues
	p.mu.Unlock()
	return nil
}

// Issues returns the problems found by the last Execute, in collection order.
func (p *Plugin) Issues() []Issue {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issues
}

func describe(issue Issue) string {
	var parts []string
	if len(issue.Broken) > 0 {
		parts = append(parts, "anchor(s) "+strings.Join(issue.Broken, ", ")+" have no target")
	}
	if len(issue.DuplicateIDs) > 0 {
		parts = append(parts, "id(s) "+strings.Join(issue.DuplicateIDs, ", ")+" are not unique")
	}
	return fmt.Sprintf("Document %q: %s", issue.Title, strings.Join(parts, "; "))
}
