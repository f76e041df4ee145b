package variants

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/turtacn/minorchanges/internal/infrastructure/database/postgres"
	"github.com/turtacn/minorchanges/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/common"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

// Output formats.
const (
	FormatSMILES = "smiles"
	FormatJSON   = "json"
)

// RunInfo describes a run to sinks.
type RunInfo struct {
	ID          common.ID
	Fingerprint string
	Rules       []string
}

// RunSummary is handed to sinks when a run ends.
type RunSummary struct {
	MoleculesRead     int
	MoleculesWithHits int
	VariantsGenerated int
}

// Sink receives results in input order.  Sinks are called from a single
// goroutine.
type Sink interface {
	Name() string
	Begin(ctx context.Context, run RunInfo) error
	Write(ctx context.Context, result variant.MoleculeResult) error
	End(ctx context.Context, run RunInfo, summary RunSummary) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Stream sink
// ─────────────────────────────────────────────────────────────────────────────

// StreamSink writes results to w as "SMILES name" lines or as one JSON
// record per line.
type StreamSink struct {
	mu          sync.Mutex
	w           *bufio.Writer
	format      string
	writeParent bool
}

// NewStreamSink returns a StreamSink for format "smiles" or "json".
func NewStreamSink(w io.Writer, format string, writeParent bool) (*StreamSink, error) {
	switch format {
	case "", FormatSMILES:
		format = FormatSMILES
	case FormatJSON:
	default:
		return nil, errors.New(errors.CodeConfigInvalid, "unknown output format").WithDetail(format)
	}
	return &StreamSink{w: bufio.NewWriter(w), format: format, writeParent: writeParent}, nil
}

func (s *StreamSink) Name() string { return "stdout" }

func (s *StreamSink) Begin(context.Context, RunInfo) error { return nil }

func (s *StreamSink) Write(_ context.Context, res variant.MoleculeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatJSON {
		enc := json.NewEncoder(s.w)
		if s.writeParent {
			parent := variant.Record{Parent: res.Parent, ParentSMILES: res.ParentSMILES, Name: res.Parent, SMILES: res.ParentSMILES}
			if err := enc.Encode(parent); err != nil {
				return err
			}
		}
		for _, r := range res.Variants {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	if s.writeParent {
		if _, err := fmt.Fprintf(s.w, "%s %s\n", res.ParentSMILES, res.Parent); err != nil {
			return err
		}
	}
	for _, r := range res.Variants {
		if _, err := fmt.Fprintf(s.w, "%s %s\n", r.SMILES, r.Name); err != nil {
			return err
		}
	}
	return nil
}

// End flushes buffered output.
func (s *StreamSink) End(context.Context, RunInfo, RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

// ─────────────────────────────────────────────────────────────────────────────
// Postgres sink
// ─────────────────────────────────────────────────────────────────────────────

type storeSink struct {
	store postgres.VariantStore
}

// NewStoreSink persists results through store.
func NewStoreSink(store postgres.VariantStore) Sink { return &storeSink{store: store} }

func (s *storeSink) Name() string { return "postgres" }

func (s *storeSink) Begin(ctx context.Context, run RunInfo) error {
	return s.store.StartRun(ctx, run.ID, run.Fingerprint, run.Rules)
}

func (s *storeSink) Write(ctx context.Context, res variant.MoleculeResult) error {
	_, err := s.store.SaveVariants(ctx, res.Variants)
	return err
}

func (s *storeSink) End(ctx context.Context, run RunInfo, sum RunSummary) error {
	return s.store.FinishRun(ctx, run.ID, postgres.RunSummary{
		MoleculesRead:     sum.MoleculesRead,
		MoleculesWithHits: sum.MoleculesWithHits,
		VariantsGenerated: sum.VariantsGenerated,
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Kafka sink
// ─────────────────────────────────────────────────────────────────────────────

type publisherSink struct {
	pub *kafka.VariantPublisher
}

// NewPublisherSink publishes results through pub.
func NewPublisherSink(pub *kafka.VariantPublisher) Sink { return &publisherSink{pub: pub} }

func (s *publisherSink) Name() string { return "kafka" }

func (s *publisherSink) Begin(context.Context, RunInfo) error { return nil }

func (s *publisherSink) Write(ctx context.Context, res variant.MoleculeResult) error {
	return s.pub.PublishVariants(ctx, res.Variants)
}

func (s *publisherSink) End(ctx context.Context, run RunInfo, sum RunSummary) error {
	return s.pub.PublishRunCompleted(ctx, kafka.RunCompletedPayload{
		RunID:             string(run.ID),
		Fingerprint:       run.Fingerprint,
		MoleculesRead:     sum.MoleculesRead,
		MoleculesWithHits: sum.MoleculesWithHits,
		VariantsGenerated: sum.VariantsGenerated,
	})
}

//Personal.AI order the ending
