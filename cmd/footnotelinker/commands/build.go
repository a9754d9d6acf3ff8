package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/footnotelinker/internal/config"
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides output.directory)"`
	Clean  bool   `help:"Remove the output directory before writing"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Clean {
		cfg.Output.Clean = true
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	env, err := newEnvironment(cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := env.processor(false)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := p.Run(ctx)
	printReport(g.out(), report, root.Verbose)
	if err != nil {
		return err
	}
	if cfg.Footnotes.FailOnWarnings {
		return warningsError(report)
	}
	return nil
}

// warningsError returns a validation error when report has issues.
func warningsError(report *pipeline.BuildReport) error {
	if n := report.WarningCount(); n > 0 {
		return errors.ValidationError(fmt.Sprintf("%d warning(s) in %d document(s)", n, issueDocuments(report))).
			WithContext("build_id", report.BuildID).
			Build()
	}
	return nil
}

func issueDocuments(report *pipeline.BuildReport) int {
	n := 0
	for i := range report.DocumentReports {
		if report.DocumentReports[i].IssueCount() > 0 {
			n++
		}
	}
	return n
}

// printReport writes the per-document issues followed by a one line summary.
// Verbose output lists every document.
func printReport(w io.Writer, report *pipeline.BuildReport, verbose bool) {
	if report == nil {
		return
	}
	for i := range report.DocumentReports {
		d := &report.DocumentReports[i]
		if d.IssueCount() == 0 {
			if verbose {
				_, _ = fmt.Fprintf(w, "%s: %s (%d citations, %d footnotes)\n", d.Path, d.Result, d.Citations, d.Footnotes)
			}
			continue
		}
		if d.Error != "" {
			_, _ = fmt.Fprintf(w, "%s: error: %s\n", d.Path, d.Error)
		}
		for _, warn := range d.Warnings {
			_, _ = fmt.Fprintf(w, "%s: %s: %s\n", d.Path, warn.Kind, warn.Message)
		}
		if d.AnchorMessage != "" {
			_, _ = fmt.Fprintf(w, "%s: anchors: %s\n", d.Path, d.AnchorMessage)
		}
	}

	mode := "written"
	count := report.Written
	if report.DryRun {
		mode = "checked"
		count = report.Documents
	}
	_, _ = fmt.Fprintf(w, "Build %s: %s, %d documents %s, %d citations, %d footnotes, %d warnings (%s)\n",
		report.BuildID, report.Status, count, mode,
		report.Citations, report.Footnotes, report.WarningCount(), report.Duration.Round(time.Millisecond))
}
