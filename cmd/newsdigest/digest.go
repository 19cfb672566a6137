package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsDigest/internal/app"
)

func newDigestCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Run one full pipeline pass and deliver the digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(true)
			if err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.RunDigest(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run:             %s\n", report.RunID)
			fmt.Fprintf(out, "new items:       %d\n", report.NewItems)
			fmt.Fprintf(out, "source failures: %d\n", report.SourceFailures)
			fmt.Fprintf(out, "fallbacks:       %d\n", report.Fallbacks)
			if report.NothingToDeliver {
				fmt.Fprintln(out, "nothing to deliver")
			} else {
				fmt.Fprintf(out, "delivered:       %d items in %d messages\n", report.Delivered, report.Chunks)
			}
			return err
		},
	}
}
