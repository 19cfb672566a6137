package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"NewsDigest/internal/config"
	"NewsDigest/internal/logging"
)

type globalOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "newsdigest",
		Short: "Feed ingestion, summarization and daily chat digests",
		Long: `newsdigest polls news feeds, summarizes new items with a language model
and delivers a grouped daily digest to a Telegram chat.

Example usage:
  newsdigest serve                  # scheduler, bot commands and metrics
  newsdigest digest                 # run one digest now
  newsdigest recent --limit 10      # print the latest stored items
  newsdigest migrate                # create the database schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the YAML config file (default $NEWSDIGEST_CONFIG)")

	root.AddCommand(
		newServeCmd(opts),
		newDigestCmd(opts),
		newRecentCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}

// load reads and validates the configuration. Database-only commands skip
// the full validation.
func (o *globalOptions) load(full bool) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if full {
		err = cfg.Validate()
	} else {
		err = cfg.ValidateDatabase()
	}
	if err != nil {
		return config.Config{}, nil, err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.File)
	logger.Info("configuration loaded", cfg.LogAttrs()...)
	return cfg, logger, nil
}
