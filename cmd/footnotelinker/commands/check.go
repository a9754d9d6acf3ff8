package commands

import (
	"context"
	"os/signal"
	"syscall"
)

// CheckCmd implements the 'check' command: a dry-run build that fails when
// any document has warnings.
type CheckCmd struct{}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := loadConfig(root)
	if err != nil {
		return err
	}

	env, err := newEnvironment(cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	p, err := env.processor(true)
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
	return warningsError(report)
}
