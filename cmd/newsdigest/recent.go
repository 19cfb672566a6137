package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NewsDigest/internal/app"
	"NewsDigest/internal/config"
	"NewsDigest/internal/sanitize"
)

func newRecentCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Print the most recently fetched items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(false)
			if err != nil {
				return err
			}

			store, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if limit <= 0 {
				limit = cfg.Digest.RecentLimit
			}
			limit = config.ClampRecentLimit(limit)
			items, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			logger.Debug("recent items loaded", "count", len(items))

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No articles found in the database.")
				return nil
			}
			for _, item := range items {
				state := "pending"
				if item.Delivered {
					state = "sent"
				}
				fmt.Fprintf(out, "%s  [%s/%s]  %s\n    %s\n    %s\n",
					item.FetchedAt.Format("2006-01-02 15:04"), item.Category, state,
					item.Title, item.OriginID, sanitize.TruncateEllipsis(item.Summary, 160))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of items (default digest.recentLimit)")
	return cmd
}
