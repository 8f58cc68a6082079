package cmd

import (
	"github.com/spf13/cobra"

	"github.com/irfanahme/cloud-document-search/internal/output"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the index with the store",
		Long: `Reconcile the search index with the blob store.

Documents present in the store but missing from the index are
processed; index entries whose source document is gone are removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.svc.Sync(cmd.Context())
			if err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).SyncSummary(summary)
			return nil
		},
	}
}
