// Package kafka publishes generated variants to Kafka and consumes molecule
// requests from it.
package kafka

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
)

var (
	ErrProducerClosed = errors.New(errors.CodeMessageQueueError, "producer closed")
	ErrPublishFailed  = errors.New(errors.CodeMessageQueueError, "publish failed")
)

// Message is a transport-neutral Kafka record.
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Time      time.Time
}

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers         []string
	Acks            string // "none" | "one" | "all"
	MaxAttempts     int
	BatchSize       int
	BatchTimeout    time.Duration
	MaxMessageBytes int
	Compression     string // "" | "gzip" | "snappy" | "lz4" | "zstd"
	WriteTimeout    time.Duration
}

// ProducerMetrics counts producer outcomes.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes messages through a kafka.Writer.
type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	closed  atomic.Bool
	metrics *ProducerMetrics
}

// NewProducer creates a Producer for cfg.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	cfg = withProducerDefaults(cfg)
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxAttempts,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: requiredAcks(cfg.Acks),
		Compression:  compression(cfg.Compression),
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	return newProducerWithWriter(writer, cfg, logger), nil
}

func newProducerWithWriter(w WriterInterface, cfg ProducerConfig, logger logging.Logger) *Producer {
	return &Producer{
		writer:  w,
		config:  withProducerDefaults(cfg),
		logger:  logger.Named("kafka_producer"),
		metrics: &ProducerMetrics{},
	}
}

func withProducerDefaults(cfg ProducerConfig) ProducerConfig {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 1 << 20
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return cfg
}

func requiredAcks(acks string) kafka.RequiredAcks {
	switch acks {
	case "none":
		return kafka.RequireNone
	case "all":
		return kafka.RequireAll
	default:
		return kafka.RequireOne
	}
}

func compression(codec string) kafka.Compression {
	switch codec {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Compression(0)
	}
}

// Publish writes msgs in one call.  Every message must carry a topic and a
// non-empty value within MaxMessageBytes; nothing is written otherwise.
func (p *Producer) Publish(ctx context.Context, msgs ...Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil
	}

	kMsgs := make([]kafka.Message, len(msgs))
	var bytes int64
	for i, msg := range msgs {
		switch {
		case msg.Topic == "":
			return errors.New(errors.ErrCodeValidation, "topic required")
		case len(msg.Value) == 0:
			return errors.New(errors.ErrCodeValidation, "value required")
		case len(msg.Value) > p.config.MaxMessageBytes:
			return errors.New(errors.ErrCodeValidation, "message too large").
				WithDetailf("%d > %d bytes", len(msg.Value), p.config.MaxMessageBytes)
		}
		kMsgs[i] = toKafkaMessage(msg)
		bytes += int64(len(msg.Value))
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, kMsgs...); err != nil {
		failed := int64(len(msgs))
		var writeErrs kafka.WriteErrors
		if stderrors.As(err, &writeErrs) {
			failed = int64(writeErrs.Count())
		}
		p.metrics.MessagesFailed.Add(failed)
		p.metrics.MessagesSent.Add(int64(len(msgs)) - failed)
		return errors.Wrap(err, errors.CodeMessageQueueError, "publish failed").
			WithDetailf("%d of %d message(s) failed", failed, len(msgs))
	}

	p.metrics.MessagesSent.Add(int64(len(msgs)))
	p.metrics.BytesSent.Add(bytes)
	p.logger.Debug("Messages published",
		logging.Int("count", len(msgs)),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// Sent returns the number of messages written successfully.
func (p *Producer) Sent() int64 { return p.metrics.MessagesSent.Load() }

// Failed returns the number of messages that could not be written.
func (p *Producer) Failed() int64 { return p.metrics.MessagesFailed.Load() }

// Close flushes and closes the writer.  It is idempotent.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

func toKafkaMessage(msg Message) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	ts := msg.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    ts,
	}
}

// ValidateProducerConfig checks the fields NewProducer cannot default.
func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.MaxAttempts < 0 {
		return errors.New(errors.ErrCodeValidation, "max attempts must be >= 0")
	}
	switch cfg.Acks {
	case "", "none", "one", "all":
	default:
		return errors.New(errors.ErrCodeValidation, "invalid acks").WithDetail(cfg.Acks)
	}
	return nil
}

//Personal.AI order the ending
