package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/cmd/docsite/commands"
	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/version"
)

func main() {
	var cli commands.CLI
	kctx := kong.Parse(&cli,
		kong.Name("docsite"),
		kong.Description("Documentation content pipeline: discover, render, build and serve Markdown docs."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Get().String()},
	)
	if err := kctx.Run(&commands.Global{Out: os.Stdout}, &cli); err != nil {
		foundationerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
