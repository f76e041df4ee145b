package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/turtacn/minorchanges/internal/application/variants"
	"github.com/turtacn/minorchanges/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
)

// NewWorkerCmd creates the worker command.
func NewWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Generate variants for molecules requested over Kafka",
		Long: "Consumes molecule.requested events from kafka.input_topic, generates\n" +
			"their variants and publishes one variant.generated event per variant\n" +
			"to kafka.topic.  Messages that keep failing go to\n" +
			"kafka.dead_letter_topic when set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runWorker(cmd.Context(), cc)
		},
	}
}

func runWorker(ctx context.Context, cc *CLIContext) error {
	cfg := cc.Config
	logger := cc.Logger
	a := newApp(cc)
	defer a.Close()

	opts, libs, err := a.engineInputs(ctx)
	if err != nil {
		return err
	}
	metrics, _, err := a.metrics()
	if err != nil {
		return err
	}
	cache, err := a.cache(ctx, metrics)
	if err != nil {
		return err
	}
	svc, err := variants.NewService(opts, libs, variants.ServiceConfig{
		MaxMolecules: cfg.Server.MaxMolecules,
		Concurrency:  cfg.Worker.Concurrency,
		Cache:        cache,
		Metrics:      metrics,
	}, logger)
	if err != nil {
		return err
	}

	producer, err := a.kafkaProducer()
	if err != nil {
		return err
	}
	var deadLetter kafka.Publisher
	if cfg.Kafka.DeadLetterTopic != "" {
		deadLetter = producer
	}
	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topics:  []string{cfg.Kafka.InputTopic},
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      cfg.Kafka.MaxRetries,
			DeadLetterTopic: cfg.Kafka.DeadLetterTopic,
		},
	}, deadLetter, logger)
	if err != nil {
		return err
	}

	publisher := kafka.NewVariantPublisher(producer, cfg.Kafka.Topic, logger)
	consumer.Subscribe(cfg.Kafka.InputTopic, variants.NewRequestHandler(svc, publisher, logger))
	if err := consumer.Start(ctx); err != nil {
		return err
	}
	logger.Info("worker started",
		logging.String("input_topic", cfg.Kafka.InputTopic),
		logging.String("output_topic", publisher.Topic()),
		logging.String("fingerprint", svc.Fingerprint()))

	<-ctx.Done()
	if err := consumer.Close(); err != nil {
		logger.Warn("consumer close failed", logging.Err(err))
	}
	logger.Info("worker stopped",
		logging.Int64("processed", consumer.Processed()),
		logging.Int64("published", producer.Sent()))
	return nil
}

//Personal.AI order the ending
