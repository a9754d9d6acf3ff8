package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"git.home.luguber.info/inful/footnotelinker/internal/eventstore"
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
)

// ReportCmd implements the 'report' command.
type ReportCmd struct {
	BuildID string `name:"build-id" help:"Build to show (default: the latest)"`
	JSON    bool   `name:"json" help:"Print the summary as JSON"`
}

func (r *ReportCmd) Run(g *Global, root *CLI) error {
	cfg, _, err := loadConfig(root)
	if err != nil {
		return err
	}
	if cfg.Report.Database == "" {
		return errors.ConfigError("report.database is not configured").
			WithContext("config", root.Config).
			Build()
	}

	store, err := eventstore.NewSQLiteStore(cfg.Report.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summary, err := eventstore.Summarize(context.Background(), store, r.BuildID)
	if err != nil {
		return err
	}

	if r.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "failed to encode build summary").Build()
		}
		return nil
	}
	printSummary(g.out(), summary)
	return nil
}

func printSummary(w io.Writer, s *eventstore.BuildSummary) {
	_, _ = fmt.Fprintf(w, "Build:      %s\n", s.BuildID)
	_, _ = fmt.Fprintf(w, "Status:     %s\n", s.Status)
	_, _ = fmt.Fprintf(w, "Started:    %s\n", s.StartedAt.Format(time.RFC3339))
	if s.CompletedAt != nil {
		_, _ = fmt.Fprintf(w, "Duration:   %s\n", s.Duration)
	}
	if s.ContentDir != "" {
		_, _ = fmt.Fprintf(w, "Content:    %s\n", s.ContentDir)
	}
	_, _ = fmt.Fprintf(w, "Documents:  %d", s.Documents)
	if len(s.Results) > 0 {
		results := make([]string, 0, len(s.Results))
		for r := range s.Results {
			results = append(results, r)
		}
		sort.Strings(results)
		_, _ = fmt.Fprint(w, " (")
		for i, r := range results {
			if i > 0 {
				_, _ = fmt.Fprint(w, ", ")
			}
			_, _ = fmt.Fprintf(w, "%d %s", s.Results[r], r)
		}
		_, _ = fmt.Fprint(w, ")")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Citations:  %d\n", s.Citations)
	_, _ = fmt.Fprintf(w, "Footnotes:  %d\n", s.Footnotes)
	_, _ = fmt.Fprintf(w, "Warnings:   %d\n", len(s.Warnings))
	for _, warn := range s.Warnings {
		_, _ = fmt.Fprintf(w, "  %s: %s: %s\n", warn.Path, warn.Kind, warn.Message)
	}
	if s.Error != "" {
		_, _ = fmt.Fprintf(w, "Error:      %s\n", s.Error)
	}
}
