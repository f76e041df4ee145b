package variants

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/minorchanges/internal/infrastructure/database/postgres"
	"github.com/turtacn/minorchanges/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/common"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

func sampleResult() variant.MoleculeResult {
	return variant.MoleculeResult{
		Parent:       "ethanol",
		ParentSMILES: "CCO",
		Count:        2,
		Variants: []variant.Record{
			{ID: "v1", RunID: "run-1", Parent: "ethanol", Ordinal: 1, Name: "ethanol.1 insert_ch2", SMILES: "CCCO", Rule: "insert_ch2"},
			{ID: "v2", RunID: "run-1", Parent: "ethanol", Ordinal: 2, Name: "ethanol.2 carbon_to_nitrogen", SMILES: "CNO", Rule: "carbon_to_nitrogen"},
		},
	}
}

func TestStreamSink_SMILES(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewStreamSink(&buf, "", false)
	require.NoError(t, err)
	assert.Equal(t, "stdout", s.Name())

	ctx := context.Background()
	require.NoError(t, s.Begin(ctx, RunInfo{}))
	require.NoError(t, s.Write(ctx, sampleResult()))
	assert.Empty(t, buf.String(), "output is buffered until End")
	require.NoError(t, s.End(ctx, RunInfo{}, RunSummary{}))
	assert.Equal(t, "CCCO ethanol.1 insert_ch2\nCNO ethanol.2 carbon_to_nitrogen\n", buf.String())
}

func TestStreamSink_WriteParent(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewStreamSink(&buf, FormatSMILES, true)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), sampleResult()))
	require.NoError(t, s.End(context.Background(), RunInfo{}, RunSummary{}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "CCO ethanol", lines[0])
}

func TestStreamSink_JSON(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewStreamSink(&buf, FormatJSON, false)
	require.NoError(t, err)
	require.NoError(t, s.Write(context.Background(), sampleResult()))
	require.NoError(t, s.End(context.Background(), RunInfo{}, RunSummary{}))

	dec := json.NewDecoder(&buf)
	var got []variant.Record
	for dec.More() {
		var r variant.Record
		require.NoError(t, dec.Decode(&r))
		got = append(got, r)
	}
	require.Len(t, got, 2)
	assert.Equal(t, "CCCO", got[0].SMILES)
	assert.Equal(t, "insert_ch2", got[0].Rule)
	assert.Equal(t, 2, got[1].Ordinal)
}

func TestNewStreamSink_UnknownFormat(t *testing.T) {
	_, err := NewStreamSink(&bytes.Buffer{}, "sdf", false)
	assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) StartRun(ctx context.Context, runID common.ID, fp string, rules []string) error {
	return m.Called(ctx, runID, fp, rules).Error(0)
}

func (m *mockStore) FinishRun(ctx context.Context, runID common.ID, sum postgres.RunSummary) error {
	return m.Called(ctx, runID, sum).Error(0)
}

func (m *mockStore) SaveVariants(ctx context.Context, recs []variant.Record) (int64, error) {
	args := m.Called(ctx, recs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) ListByRun(ctx context.Context, runID common.ID, limit int) ([]variant.Record, error) {
	args := m.Called(ctx, runID, limit)
	recs, _ := args.Get(0).([]variant.Record)
	return recs, args.Error(1)
}

func TestStoreSink(t *testing.T) {
	ctx := context.Background()
	run := RunInfo{ID: "run-1", Fingerprint: "fp", Rules: []string{"insert_ch2"}}
	res := sampleResult()

	store := &mockStore{}
	store.On("StartRun", ctx, common.ID("run-1"), "fp", []string{"insert_ch2"}).Return(nil)
	store.On("SaveVariants", ctx, res.Variants).Return(int64(2), nil)
	store.On("FinishRun", ctx, common.ID("run-1"), postgres.RunSummary{MoleculesRead: 1, MoleculesWithHits: 1, VariantsGenerated: 2}).Return(nil)

	s := NewStoreSink(store)
	assert.Equal(t, "postgres", s.Name())
	require.NoError(t, s.Begin(ctx, run))
	require.NoError(t, s.Write(ctx, res))
	require.NoError(t, s.End(ctx, run, RunSummary{MoleculesRead: 1, MoleculesWithHits: 1, VariantsGenerated: 2}))
	store.AssertExpectations(t)
}

func TestStoreSink_WriteError(t *testing.T) {
	store := &mockStore{}
	store.On("SaveVariants", mock.Anything, mock.Anything).Return(int64(0), stderrors.New("copy failed"))
	err := NewStoreSink(store).Write(context.Background(), sampleResult())
	assert.EqualError(t, err, "copy failed")
}

type capturePublisher struct {
	msgs []kafka.Message
	err  error
}

func (p *capturePublisher) Publish(_ context.Context, msgs ...kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func TestPublisherSink(t *testing.T) {
	ctx := context.Background()
	pub := &capturePublisher{}
	s := NewPublisherSink(kafka.NewVariantPublisher(pub, "variants", nil))
	assert.Equal(t, "kafka", s.Name())

	run := RunInfo{ID: "run-1", Fingerprint: "fp"}
	require.NoError(t, s.Begin(ctx, run))
	require.NoError(t, s.Write(ctx, sampleResult()))
	require.NoError(t, s.End(ctx, run, RunSummary{MoleculesRead: 1, MoleculesWithHits: 1, VariantsGenerated: 2}))

	require.Len(t, pub.msgs, 3)
	assert.Equal(t, "ethanol", string(pub.msgs[0].Key))
	assert.Equal(t, "variants", pub.msgs[0].Topic)

	env, err := kafka.MessageToEventEnvelope(pub.msgs[2])
	require.NoError(t, err)
	assert.Equal(t, kafka.EventRunCompleted, env.EventType)
	var summary kafka.RunCompletedPayload
	require.NoError(t, env.DecodePayload(&summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 2, summary.VariantsGenerated)
	assert.False(t, summary.FinishedAt.IsZero())
}

func TestPublisherSink_Error(t *testing.T) {
	pub := &capturePublisher{err: stderrors.New("broker down")}
	err := NewPublisherSink(kafka.NewVariantPublisher(pub, "", nil)).Write(context.Background(), sampleResult())
	assert.True(t, errors.IsCode(err, errors.CodeMessageQueueError))
}

//Personal.AI order the ending
