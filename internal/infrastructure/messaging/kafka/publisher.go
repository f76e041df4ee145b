package kafka

import (
	"context"
	"time"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

// Publisher is the write side of Producer.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
}

// VariantPublisher writes one variant.generated event per variant, keyed by
// the parent name so that all variants of a molecule share a partition.
type VariantPublisher struct {
	pub    Publisher
	topic  string
	logger logging.Logger
}

// NewVariantPublisher returns a VariantPublisher writing to topic.  An empty
// topic selects TopicVariantsGenerated.
func NewVariantPublisher(pub Publisher, topic string, logger logging.Logger) *VariantPublisher {
	if topic == "" {
		topic = TopicVariantsGenerated
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &VariantPublisher{pub: pub, topic: topic, logger: logger.Named("variant_publisher")}
}

// Topic returns the destination topic.
func (p *VariantPublisher) Topic() string { return p.topic }

// PublishVariants writes records in one batch.
func (p *VariantPublisher) PublishVariants(ctx context.Context, records []variant.Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]Message, 0, len(records))
	for _, r := range records {
		env, err := NewEventEnvelope(EventVariantGenerated, r)
		if err != nil {
			return err
		}
		env.Metadata = map[string]string{"run_id": string(r.RunID), "rule": r.Rule}
		msg, err := env.ToMessage(p.topic, []byte(r.Parent))
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.pub.Publish(ctx, msgs...); err != nil {
		return errors.Wrap(err, errors.CodeMessageQueueError, "failed to publish variants").WithDetail(p.topic)
	}
	p.logger.Debug("variants published", logging.Int("count", len(msgs)), logging.String("topic", p.topic))
	return nil
}

// PublishRunCompleted writes the closing event of a run, keyed by run ID.
func (p *VariantPublisher) PublishRunCompleted(ctx context.Context, summary RunCompletedPayload) error {
	if summary.FinishedAt.IsZero() {
		summary.FinishedAt = time.Now().UTC()
	}
	env, err := NewEventEnvelope(EventRunCompleted, summary)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(p.topic, []byte(summary.RunID))
	if err != nil {
		return err
	}
	if err := p.pub.Publish(ctx, msg); err != nil {
		return errors.Wrap(err, errors.CodeMessageQueueError, "failed to publish run summary").WithDetail(summary.RunID)
	}
	return nil
}

//Personal.AI order the ending
