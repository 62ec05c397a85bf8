package main

import "github.com/urfave/cli/v3"

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to config.yaml (default: user config dir)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, warn, error)",
			Value: "info",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format (pretty, json, text)",
			Value: "pretty",
		},
		&cli.StringFlag{
			Name:  "streamed-ext",
			Usage: "extension of streamed media files next to the metadata",
			Value: "wem",
		},
	}
}

func vorbisFlags(tools *toolOptions) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "ww2ogg",
			Usage:       "path or name of the Vorbis repackager",
			Value:       "ww2ogg",
			Destination: &tools.ww2ogg,
		},
		&cli.StringFlag{
			Name:        "revorb",
			Usage:       "path or name of the Ogg stream renumberer",
			Value:       "revorb",
			Destination: &tools.revorb,
		},
		&cli.StringFlag{
			Name:        "codebooks",
			Usage:       "packed codebooks file passed to the repackager",
			Destination: &tools.codebooks,
		},
	}
}
