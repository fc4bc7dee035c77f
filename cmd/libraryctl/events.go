package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/pkg/mq"
)

func eventsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "inspect loan events",
	}
	cmd.AddCommand(eventsTailCommand(e))
	return cmd
}

func eventsTailCommand(e *env) *cobra.Command {
	var (
		queue string
		keys  []string
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "print loan events as JSON lines until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.config()
			if err != nil {
				return err
			}
			consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, messaging.ExchangeType, queue, keys)
			if err != nil {
				return err
			}
			defer consumer.Close()

			enc := json.NewEncoder(e.out)
			return consumer.Consume(cmd.Context(), messaging.LoanEventHandler(func(_ context.Context, ev loan.Event) error {
				return enc.Encode(ev)
			}))
		},
	}
	cmd.Flags().StringVar(&queue, "queue", "", "durable queue name; empty uses a temporary queue")
	cmd.Flags().StringSliceVar(&keys, "key", []string{"loan.#"}, "routing key patterns")
	return cmd
}
