package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cwbudde/soundextract"
	"github.com/cwbudde/soundextract/internal/logger"
)

var (
	errMissingMetadata = errors.New("missing metadata path argument")
	errMissingOutDir   = errors.New("missing --out directory")
)

type toolOptions struct {
	ww2ogg    string
	revorb    string
	codebooks string
}

// exporter builds an Exporter. Vorbis support is left out when a tool
// cannot be found; such entries then fail on their own.
func (a *app) exporter(workers int, streamedExt string, tools toolOptions) *soundextract.Exporter {
	x := &soundextract.Exporter{
		Workers:     workers,
		StreamedExt: streamedExt,
		Logger:      a.log,
	}

	repack, renumber, err := soundextract.NewExecTools(tools.ww2ogg, tools.revorb, tools.codebooks)
	if err != nil {
		a.log.Debug("vorbis export disabled", "err", err)

		return x
	}

	x.Vorbis = repack
	x.Renumber = renumber

	return x
}

func (a *app) exportCmd() *cli.Command {
	var (
		outDir     string
		only       []string
		match      string
		workers    int
		reportPath string
		tools      toolOptions
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "export root directory",
			Destination: &outDir,
		},
		&cli.StringSliceFlag{
			Name:        "only",
			Usage:       "export only the named sound (repeatable)",
			Destination: &only,
		},
		&cli.StringFlag{
			Name:        "match",
			Usage:       "export only sounds whose name matches the glob",
			Destination: &match,
		},
		&cli.IntFlag{
			Name:        "workers",
			Aliases:     []string{"j"},
			Usage:       "concurrent exports (0 = one per CPU)",
			Destination: &workers,
		},
		&cli.StringFlag{
			Name:        "report",
			Usage:       "write a JSON run report to this file",
			Destination: &reportPath,
		},
	}

	return &cli.Command{
		Name:      "export",
		Usage:     "Export the sounds listed in SoundbanksInfo metadata files",
		ArgsUsage: "<metadata.xml>...",
		Flags:     append(flags, vorbisFlags(&tools)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a.cfg.applyExport(cmd, &outDir, &workers)
			a.cfg.applyTools(cmd, &tools)

			if cmd.NArg() == 0 {
				return errMissingMetadata
			}

			if outDir == "" {
				return errMissingOutDir
			}

			streamedExt := a.cfg.streamedExt(cmd)
			x := a.exporter(workers, streamedExt, tools)
			session := soundextract.NewSession(soundextract.SessionOptions{StreamedExt: streamedExt, Logger: a.log})
			runID := soundextract.NewRunID()
			log := a.log.With("run", runID)

			var outcomes []soundextract.Outcome

			for _, xmlPath := range cmd.Args().Slice() {
				results, err := exportOne(ctx, session, x, xmlPath, outDir, only, match)
				if err != nil {
					return err
				}

				log.Debug("metadata done", "path", xmlPath, "entries", len(results))
				outcomes = append(outcomes, results...)
			}

			report := soundextract.NewReport(runID, outcomes)
			report.Destination = outDir

			fmt.Fprintf(cmd.Root().Writer, "exported %d of %d sounds to %s\n",
				report.Exported, len(outcomes), outDir)

			if reportPath != "" {
				if err := writeReport(reportPath, report); err != nil {
					return err
				}
			}

			if report.Failed > 0 {
				return fmt.Errorf("%d of %d sounds failed", report.Failed, len(outcomes))
			}

			return nil
		},
	}
}

func exportOne(ctx context.Context, session *soundextract.BankSession, x *soundextract.Exporter,
	xmlPath, outDir string, only []string, match string,
) ([]soundextract.Outcome, error) {
	if _, err := session.Open(xmlPath); err != nil {
		return nil, err
	}

	entries, err := selectEntries(session, only, match)
	if err != nil {
		return nil, err
	}

	if entries != nil && len(entries) == 0 {
		logger.FromContext(ctx).Warn("nothing selected", "path", xmlPath)

		return nil, nil
	}

	return session.Export(ctx, x, entries, outDir), nil
}

// selectEntries returns nil for the whole catalog.
func selectEntries(session *soundextract.BankSession, only []string, match string) ([]soundextract.CatalogEntry, error) {
	switch {
	case len(only) > 0:
		return session.Select(only...)
	case match != "":
		matched, err := session.Match(match)
		if err != nil {
			return nil, err
		}

		if matched == nil {
			matched = []soundextract.CatalogEntry{}
		}

		return matched, nil
	default:
		return nil, nil
	}
}

func writeReport(path string, report *soundextract.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	if err := report.WriteJSON(f); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}
