// Command soundextract lists and exports the sounds of game audio banks as
// standard WAV and Ogg files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	"github.com/cwbudde/soundextract/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// app carries what the Before hook prepares for every subcommand.
type app struct {
	cfg Config
	log logger.Logger
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	a := &app{log: logger.Discard()}

	return &cli.Command{
		Name:      "soundextract",
		Usage:     "Extract sounds from audio banks into standard containers",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     globalFlags(),
		Before:    a.before,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			a.listCmd(),
			a.exportCmd(),
			a.inspectCmd(),
			a.convertCmd(),
			versionCmd(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	if path == "" {
		path = configPath()
	}

	a.cfg = LoadConfig(path)

	level := cmd.String("log-level")
	if a.cfg.LogLevel != "" && !cmd.IsSet("log-level") {
		level = a.cfg.LogLevel
	}

	format := cmd.String("log-format")
	if a.cfg.LogFormat != "" && !cmd.IsSet("log-format") {
		format = a.cfg.LogFormat
	}

	a.log = logger.ForFormat(format, cmd.Root().ErrWriter, logger.ParseLevel(level))

	return logger.WithContext(ctx, a.log), nil
}
