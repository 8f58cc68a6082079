package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/irfanahme/cloud-document-search/internal/output"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent batch and sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.New(cmd.OutOrStdout())

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.tel == nil {
				out.Warning("run history is disabled in the configuration")
				return nil
			}

			runs, err := a.tel.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				out.Status("", "no recorded runs")
				return nil
			}
			for _, r := range runs {
				out.Statusf("", "%s  %-5s total=%d processed=%d failed=%d removed=%d (%s)",
					r.StartedAt.Local().Format(time.DateTime), r.Kind,
					r.Total, r.Processed, r.Failed, r.Removed,
					(time.Duration(r.DurationMS) * time.Millisecond).String())
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}
