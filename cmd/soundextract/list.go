package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/cwbudde/soundextract"
)

type listedEntry struct {
	soundextract.CatalogEntry
	Source string                      `json:"source"`
	Info   *soundextract.ContainerInfo `json:"info,omitempty"`
	Error  string                      `json:"error,omitempty"`
}

func (a *app) listCmd() *cli.Command {
	var (
		formats bool
		asJSON  bool
	)

	return &cli.Command{
		Name:      "list",
		Usage:     "List the sounds of SoundbanksInfo metadata files",
		ArgsUsage: "<metadata.xml>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "formats", Usage: "resolve each sound and show its format", Destination: &formats},
			&cli.BoolFlag{Name: "json", Usage: "print JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return errMissingMetadata
			}

			streamedExt := a.cfg.streamedExt(cmd)
			session := soundextract.NewSession(soundextract.SessionOptions{StreamedExt: streamedExt, Logger: a.log})

			var listed []listedEntry

			for _, xmlPath := range cmd.Args().Slice() {
				if _, err := session.Open(xmlPath); err != nil {
					return err
				}

				for _, entry := range session.Catalog() {
					le := listedEntry{CatalogEntry: entry, Source: xmlPath}
					if formats {
						le.Info, le.Error = describe(entry, session, streamedExt)
					}

					listed = append(listed, le)
				}
			}

			w := cmd.Root().Writer
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")

				return enc.Encode(listed)
			}

			return printEntries(w, listed, formats)
		},
	}
}

func describe(entry soundextract.CatalogEntry, session *soundextract.BankSession, streamedExt string) (*soundextract.ContainerInfo, string) {
	basePath := filepath.Dir(session.Source())

	raw, err := soundextract.ResolveBytes(entry, session.Bank(), basePath, streamedExt)
	if err != nil {
		return nil, err.Error()
	}

	info, err := soundextract.Inspect(raw)
	if err != nil {
		return nil, err.Error()
	}

	return info, ""
}

func printEntries(w io.Writer, listed []listedEntry, formats bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if formats {
		fmt.Fprintln(tw, "NAME\tID\tSOURCE\tPATH\tFORMAT")
	} else {
		fmt.Fprintln(tw, "NAME\tID\tSOURCE\tPATH")
	}

	for _, le := range listed {
		source := "memory"
		if le.Streamed {
			source = "streamed"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s", le.Name, le.ID, source, le.RelativePath)

		if formats {
			if le.Info != nil {
				fmt.Fprintf(tw, "\t%s", le.Info)
			} else {
				fmt.Fprintf(tw, "\terror: %s", le.Error)
			}
		}

		fmt.Fprintln(tw)
	}

	return tw.Flush()
}
