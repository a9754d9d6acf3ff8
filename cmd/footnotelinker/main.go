package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/footnotelinker/cmd/footnotelinker/commands"
	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("footnotelinker"),
		kong.Description("Links citations to footnotes in Markdown documents rendered to HTML."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout}
	if err := parser.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
