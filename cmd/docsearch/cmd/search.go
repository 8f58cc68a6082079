package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/irfanahme/cloud-document-search/internal/output"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit  int
	offset int
	format string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed documents",
		Long: `Search the indexed documents by relevance.

Matches in the document body and the file name are combined, with
body matches weighted higher. Results include highlight fragments
and a time-limited access URL.

Examples:
  docsearch search "quarterly revenue"
  docsearch search invoice --limit 5
  docsearch search "error report" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.svc.Search(cmd.Context(), query, opts.limit, opts.offset)
			if err != nil {
				return err
			}

			if opts.format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			output.New(cmd.OutOrStdout()).SearchResults(results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Number of results to skip")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}
