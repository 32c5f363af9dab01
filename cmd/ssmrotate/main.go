package main

import (
	"fmt"
	"io"
	"os"

	"github.com/systmms/ssmrotate/cmd/ssmrotate/commands"
	"github.com/systmms/ssmrotate/internal/config"
	dserrors "github.com/systmms/ssmrotate/internal/errors"
	"github.com/systmms/ssmrotate/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := commands.NewApp(&config.Config{})
	if err := run(app); err != nil {
		reportError(os.Stderr, err, app.Config.Logger)
		os.Exit(1)
	}
}

func run(app *commands.App) error {
	root := commands.NewRootCommand(app, commands.BuildInfo{Version: version, Commit: commit, Date: date})
	defer func() {
		if app.Config.Logger != nil {
			_ = app.Config.Logger.Sync()
		}
	}()
	return root.Execute()
}

// reportError prints the simplified error, or the full chain with --debug
func reportError(w io.Writer, err error, logger *logging.Logger) {
	if logger != nil && logger.IsDebug() {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", dserrors.SimplifyError(err))
}
