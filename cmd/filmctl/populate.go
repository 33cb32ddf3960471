package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/films/internal/metrics"
	"github.com/jonesrussell/north-cloud/films/internal/service"
)

func newPopulateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "populate <file.ndjson>",
		Short: "Bulk-load NDJSON film records into the films index",
		Long: "Reads one JSON object per line, either a bulk envelope with _id and _source " +
			"or a bare film document, and indexes it in batches. Use - to read stdin. " +
			"Malformed lines are logged and skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, closeInput, err := openInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			defer closeInput()

			client, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			ingest := service.NewIngestService(
				client,
				a.cfg.Elasticsearch.Index,
				a.cfg.Ingest.BatchSize,
				metrics.NewProvider(),
				a.log,
			)

			summary, err := ingest.Populate(cmd.Context(), input)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "read=%d indexed=%d malformed=%d failed=%d\n",
				summary.Read, summary.Indexed, summary.Malformed, summary.Failed)
			return err
		},
	}
}

// openInput opens path, or returns stdin for "-".
func openInput(stdin io.Reader, path string) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
