package kafka

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
)

type mockKafkaWriter struct {
	mu        sync.Mutex
	written   []kafka.Message
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closed    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed++
	return nil
}

func newTestProducer(w WriterInterface) *Producer {
	return newProducerWithWriter(w, ProducerConfig{Brokers: []string{"localhost:9092"}}, logging.NewNopLogger())
}

func TestValidateProducerConfig(t *testing.T) {
	assert.NoError(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}, MaxAttempts: -1}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}, Acks: "most"}))
}

func TestNewProducer_Defaults(t *testing.T) {
	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}, Acks: "all", Compression: "zstd"}, nil)
	require.NoError(t, err)
	defer p.Close()

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.Equal(t, 3, w.MaxAttempts)
	assert.Equal(t, 1<<20, p.config.MaxMessageBytes)
}

func TestPublish_Success(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(),
		Message{Topic: "t", Key: []byte("k1"), Value: []byte("v1"), Headers: map[string]string{"h": "x"}},
		Message{Topic: "t", Key: []byte("k2"), Value: []byte("v2")},
	)
	require.NoError(t, err)
	require.Len(t, w.written, 2)
	assert.Equal(t, "k1", string(w.written[0].Key))
	assert.Equal(t, []kafka.Header{{Key: "h", Value: []byte("x")}}, w.written[0].Headers)
	assert.False(t, w.written[1].Time.IsZero())
	assert.Equal(t, int64(2), p.Sent())
}

func TestPublish_Validation(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})
	ctx := context.Background()

	assert.NoError(t, p.Publish(ctx))
	assert.True(t, errors.IsCode(p.Publish(ctx, Message{Value: []byte("v")}), errors.ErrCodeValidation))
	assert.True(t, errors.IsCode(p.Publish(ctx, Message{Topic: "t"}), errors.ErrCodeValidation))

	big := make([]byte, (1<<20)+1)
	assert.Error(t, p.Publish(ctx, Message{Topic: "t", Value: big}))
}

func TestPublish_PartialFailure(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
		errs := make(kafka.WriteErrors, len(msgs))
		errs[1] = stderrors.New("leader not available")
		return errs
	}}
	p := newTestProducer(w)

	err := p.Publish(context.Background(),
		Message{Topic: "t", Value: []byte("1")},
		Message{Topic: "t", Value: []byte("2")},
	)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeMessageQueueError))
	assert.Equal(t, int64(1), p.Sent())
	assert.Equal(t, int64(1), p.Failed())
}

func TestPublish_AfterClose(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)

	err := p.Publish(context.Background(), Message{Topic: "t", Value: []byte("v")})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

//Personal.AI order the ending
