package main

import (
	"errors"

	"github.com/spf13/cobra"

	"efile/internal/platform/kafka"
)

func newKafkaCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kafka",
		Short: "Notification topic administration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "provision",
		Short: "Create the notification topic if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !opts.cfg.KafkaEnabled() {
				return errors.New("KAFKA_BROKERS is not set")
			}
			cl, err := kafka.New(opts.cfg.Kafka)
			if err != nil {
				return err
			}
			defer cl.Close()

			res, err := kafka.EnsureTopic(cmd.Context(), cl, opts.cfg.Kafka)
			if err != nil {
				return err
			}
			opts.logger().InfoContext(cmd.Context(), "notification topic provisioned",
				"topic", res.Topic, "created", res.Created)
			return writeJSON(cmd.OutOrStdout(), res)
		},
	})
	return cmd
}
