package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/cwbudde/soundextract"
)

var (
	errNotABank    = errors.New("not a sound bank")
	errMissingBank = errors.New("missing bank path argument")
)

type bankSummary struct {
	Path   string                  `json:"path"`
	Header soundextract.BankHeader `json:"header"`
	Chunks []chunkSummary          `json:"chunks"`
	Data   int                     `json:"data_size"`
	Media  []mediaSummary          `json:"media"`
}

type chunkSummary struct {
	ID     string `json:"id"`
	Size   uint32 `json:"size"`
	Offset int64  `json:"offset"`
}

type mediaSummary struct {
	soundextract.MediaIndexEntry
	Info  *soundextract.ContainerInfo `json:"info,omitempty"`
	Error string                      `json:"error,omitempty"`
}

func summarizeBank(path string, bank *soundextract.Bank) *bankSummary {
	s := &bankSummary{Path: path, Header: bank.Header, Data: len(bank.Blob)}

	for _, ch := range bank.Chunks {
		s.Chunks = append(s.Chunks, chunkSummary{ID: string(ch.ID[:]), Size: ch.Size, Offset: ch.Offset})
	}

	for _, entry := range bank.Index {
		m := mediaSummary{MediaIndexEntry: entry}

		raw, err := bank.Media(entry)
		if err == nil {
			m.Info, err = soundextract.Inspect(raw)
		}

		if err != nil {
			m.Error = err.Error()
		}

		s.Media = append(s.Media, m)
	}

	return s
}

func (a *app) inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show the chunks and media index of a sound bank",
		ArgsUsage: "<bank.bnk>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return errMissingBank
			}

			bank, err := soundextract.LoadBank(path)
			if err != nil {
				return err
			}

			if !bank.HasHeader {
				return fmt.Errorf("%s: %w", path, errNotABank)
			}

			summary := summarizeBank(path, bank)
			w := cmd.Root().Writer

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")

				return enc.Encode(summary)
			}

			return printBank(w, summary)
		},
	}
}

func printBank(w io.Writer, s *bankSummary) error {
	fmt.Fprintf(w, "Bank %d (version %d, language %d, project %d)\n",
		s.Header.SoundBankID, s.Header.GeneratorVersion, s.Header.LanguageID, s.Header.ProjectID)
	fmt.Fprintf(w, "Data: %d bytes, %d media\n", s.Data, len(s.Media))

	fmt.Fprintln(w, "Chunks:")

	for _, ch := range s.Chunks {
		fmt.Fprintf(w, "\t%s\t%d bytes @ %d\n", ch.ID, ch.Size, ch.Offset)
	}

	if len(s.Media) == 0 {
		return nil
	}

	fmt.Fprintln(w, "Media:")

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOFFSET\tSIZE\tFORMAT\tDURATION")

	for _, m := range s.Media {
		if m.Info == nil {
			fmt.Fprintf(tw, "%d\t%d\t%d\terror: %s\t\n", m.ID, m.Offset, m.Size, m.Error)

			continue
		}

		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\n", m.ID, m.Offset, m.Size, m.Info, m.Info.Duration)
	}

	return tw.Flush()
}
