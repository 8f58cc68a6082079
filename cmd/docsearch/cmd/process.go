package cmd

import (
	"github.com/spf13/cobra"

	"github.com/irfanahme/cloud-document-search/internal/output"
)

func newProcessCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "process [key]",
		Short: "Process documents from the store into the index",
		Long: `Process documents from the blob store into the search index.

Without arguments every eligible document is processed in one batch.
With a key only that document is processed.

Examples:
  docsearch process
  docsearch process --concurrency 10
  docsearch process reports/q3.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 1 {
				outcome, err := a.svc.ProcessOne(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if outcome.Succeeded() {
					out.Successf("%s: %s", outcome.Key, outcome.Message)
				} else {
					out.Errorf("%s: %s", outcome.Key, outcome.Message)
				}
				return nil
			}

			summary, err := a.svc.ProcessAll(cmd.Context(), concurrency)
			if err != nil {
				return err
			}
			out.BatchSummary(summary)
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "Parallel workers (0 uses the configured default)")

	return cmd
}
