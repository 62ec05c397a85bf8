package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/cwbudde/soundextract"
)

var errConvertArgs = errors.New("convert needs an input file and an output directory")

func (a *app) convertCmd() *cli.Command {
	var tools toolOptions

	return &cli.Command{
		Name:      "convert",
		Usage:     "Rewrite a single extracted container into a standard one",
		ArgsUsage: "<in.wem> <out-dir>",
		Flags:     vorbisFlags(&tools),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a.cfg.applyTools(cmd, &tools)

			if cmd.NArg() != 2 {
				return errConvertArgs
			}

			in, outDir := cmd.Args().Get(0), cmd.Args().Get(1)

			raw, err := os.ReadFile(in)
			if err != nil {
				return err
			}

			out, err := soundextract.Transcode(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}

			name := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
			dst := filepath.Join(outDir, name+out.Ext)

			x := a.exporter(1, "", tools)
			if err := x.WriteOutput(ctx, out, dst); err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "%s -> %s (%s)\n", in, dst, out.Kind)

			return nil
		},
	}
}
