package main

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"efile/internal/platform/config"
	"efile/internal/platform/logger"
	"efile/pkg/requestcontext"
)

type rootOptions struct {
	envFiles  []string
	requestID string
	cfg       *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "efile",
		Short:        "Lobbyist e-filing administration",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.envFiles...)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if opts.requestID == "" {
				opts.requestID = uuid.NewString()
			}
			cmd.SetContext(requestcontext.WithRequestID(cmd.Context(), opts.requestID))
			return nil
		},
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "Env files to merge before reading the environment (default .env, .env.local)")
	cmd.PersistentFlags().StringVar(&opts.requestID, "request-id", "", "Request id recorded in logs (generated when empty)")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newFilingCmd(opts))
	cmd.AddCommand(newKafkaCmd(opts))
	return cmd
}

func (o *rootOptions) logger() *slog.Logger {
	return logger.New(o.cfg.LogLevel, o.cfg.LogFormat)
}
