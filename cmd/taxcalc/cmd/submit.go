package cmd

import (
	"errors"
	"fmt"

	"tax-calculator/internal/config"
	"tax-calculator/internal/kafka"
	"tax-calculator/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// requestPublisher отправляет запрос на асинхронный расчёт
type requestPublisher interface {
	PublishQuoteRequested(req *models.QuoteRequest) (uuid.UUID, error)
	Close() error
}

// newPublisher подменяется в тестах
var newPublisher = func(cfg *config.Config, verbose bool, cmd *cobra.Command) (requestPublisher, error) {
	producer, err := kafka.NewProducer(&cfg.Kafka, cliLogger(cfg, verbose, cmd.ErrOrStderr()))
	if err != nil {
		return nil, err
	}
	return producer, nil
}

func newSubmitCmd(verbose *bool) *cobra.Command {
	flags := &quoteFlags{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Publish a quote.requested event for the server's Kafka worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if !cfg.Kafka.Enabled {
				return errors.New("kafka is disabled (KAFKA_ENABLED=false)")
			}

			publisher, err := newPublisher(cfg, *verbose, cmd)
			if err != nil {
				return err
			}
			defer publisher.Close()

			id, err := publisher.PublishQuoteRequested(flags.request(cmd))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", id)
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}
