package cmd

import (
	"github.com/spf13/cobra"

	"github.com/irfanahme/cloud-document-search/internal/output"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a document from the index",
		Long: `Remove a document from the search index by key.

Only the index entry is removed; the document in the store is left
untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.svc.DeleteFromIndex(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if removed {
				out.Successf("removed %s from the index", args[0])
			} else {
				out.Warningf("%s was not in the index", args[0])
			}
			return nil
		},
	}
}
