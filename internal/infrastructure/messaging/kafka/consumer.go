package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
	ErrConsumerClosed = errors.New(errors.CodeMessageQueueError, "consumer closed")
)

// Handler processes one message.  A non-nil error triggers a retry.
type Handler func(ctx context.Context, msg Message) error

// RetryConfig defines retry behaviour for failing handlers.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers         []string
	GroupID         string
	Topics          []string
	AutoOffsetReset string // "earliest" | "latest"
	MinBytes        int
	MaxBytes        int
	MaxWait         time.Duration
	RetryConfig     RetryConfig
}

// ConsumerMetrics counts consumer outcomes.
type ConsumerMetrics struct {
	MessagesConsumed     atomic.Int64
	MessagesProcessed    atomic.Int64
	MessagesFailed       atomic.Int64
	MessagesRetried      atomic.Int64
	MessagesDeadLettered atomic.Int64
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer dispatches group messages to per-topic handlers.  Offsets are
// committed after the handler succeeds, or after the message has been
// dead-lettered or dropped.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	handlers map[string]Handler
	mu       sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	deadLetter Publisher
	metrics    *ConsumerMetrics
}

// NewConsumer creates a Consumer.  deadLetter may be nil, in which case
// messages that exhaust their retries are dropped.
func NewConsumer(cfg ConsumerConfig, deadLetter Publisher, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = time.Second
	}
	readerCfg := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
		Dialer:      &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	}
	if cfg.AutoOffsetReset == "latest" {
		readerCfg.StartOffset = kafka.LastOffset
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return newConsumerWithReader(kafka.NewReader(readerCfg), cfg, deadLetter, logger), nil
}

func newConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, deadLetter Publisher, logger logging.Logger) *Consumer {
	return &Consumer{
		reader:     r,
		config:     cfg,
		logger:     logger.Named("kafka_consumer"),
		handlers:   make(map[string]Handler),
		deadLetter: deadLetter,
		metrics:    &ConsumerMetrics{},
	}
}

// Subscribe registers handler for topic, replacing any previous one.
func (c *Consumer) Subscribe(topic string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
	c.logger.Info("Subscribed to topic", logging.String("topic", topic))
}

// Start launches the consume loop in the background.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)
	c.logger.Info("Kafka consumer started", logging.String("group", c.config.GroupID))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()
	for ctx.Err() == nil {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("FetchMessage error", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		c.metrics.MessagesConsumed.Add(1)

		msg := Message{
			Topic:     m.Topic,
			Key:       m.Key,
			Value:     m.Value,
			Partition: m.Partition,
			Offset:    m.Offset,
			Time:      m.Time,
			Headers:   make(map[string]string, len(m.Headers)),
		}
		for _, h := range m.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}

		c.mu.RLock()
		handler, ok := c.handlers[m.Topic]
		c.mu.RUnlock()

		switch {
		case !ok:
			c.logger.Warn("No handler for topic", logging.String("topic", m.Topic))
		case c.processMessage(ctx, msg, handler):
			c.metrics.MessagesProcessed.Add(1)
		default:
			c.metrics.MessagesFailed.Add(1)
		}
		if ctx.Err() != nil {
			return
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("CommitMessages failed", logging.Err(err))
		}
	}
}

// processMessage runs handler with exponential backoff and reports whether
// it eventually succeeded.
func (c *Consumer) processMessage(ctx context.Context, msg Message, handler Handler) bool {
	err := handler(ctx, msg)
	if err == nil {
		return true
	}

	rc := c.config.RetryConfig
	backoff := rc.RetryBackoff
	if backoff == 0 {
		backoff = 100 * time.Millisecond
	}
	maxBackoff := rc.MaxRetryBackoff
	if maxBackoff == 0 {
		maxBackoff = 10 * time.Second
	}
	for i := 0; i < rc.MaxRetries; i++ {
		c.metrics.MessagesRetried.Add(1)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}
		if err = handler(ctx, msg); err == nil {
			return true
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	c.logger.Error("Message processing failed after retries",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Err(err))

	if c.deadLetter != nil && rc.DeadLetterTopic != "" {
		headers := make(map[string]string, len(msg.Headers)+2)
		for k, v := range msg.Headers {
			headers[k] = v
		}
		headers["original_topic"] = msg.Topic
		headers["error_message"] = err.Error()
		dl := Message{Topic: rc.DeadLetterTopic, Key: msg.Key, Value: msg.Value, Headers: headers}
		if dlErr := c.deadLetter.Publish(ctx, dl); dlErr != nil {
			c.logger.Error("Failed to send to dead letter topic", logging.Err(dlErr))
			return false
		}
		c.metrics.MessagesDeadLettered.Add(1)
	}
	return false
}

// Processed returns the number of messages handled successfully.
func (c *Consumer) Processed() int64 { return c.metrics.MessagesProcessed.Load() }

// Close stops the loop and closes the reader.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	err := c.reader.Close()
	c.logger.Info("Kafka consumer closed", logging.Int64("consumed", c.metrics.MessagesConsumed.Load()))
	return err
}

// ValidateConsumerConfig checks cfg.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return errors.New(errors.ErrCodeValidation, "group id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.New(errors.ErrCodeValidation, "at least one topic required")
	}
	if cfg.AutoOffsetReset != "" && cfg.AutoOffsetReset != "earliest" && cfg.AutoOffsetReset != "latest" {
		return errors.New(errors.ErrCodeValidation, "invalid auto offset reset").WithDetail(cfg.AutoOffsetReset)
	}
	if cfg.RetryConfig.MaxRetries < 0 {
		return errors.New(errors.ErrCodeValidation, "max retries must be >= 0")
	}
	return nil
}

//Personal.AI order the ending
