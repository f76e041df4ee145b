package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/minorchanges/pkg/errors"
	"github.com/turtacn/minorchanges/pkg/types/variant"
)

// Default topics.
const (
	TopicVariantsGenerated = "minorchanges.variants"
	TopicMoleculeRequests  = "minorchanges.molecules"
	TopicDeadLetter        = "minorchanges.dead_letter"
)

// Event types carried in EventEnvelope.EventType.
const (
	EventVariantGenerated = "variant.generated"
	EventRunCompleted     = "run.completed"
	EventMoleculeRequest  = "molecule.requested"
)

const eventSource = "minorchanges"

// EventEnvelope wraps every payload written to or read from Kafka.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// VariantGeneratedPayload is one generated variant.
type VariantGeneratedPayload = variant.Record

// RunCompletedPayload closes a run on the variants topic.
type RunCompletedPayload struct {
	RunID             string    `json:"run_id"`
	Fingerprint       string    `json:"fingerprint"`
	MoleculesRead     int       `json:"molecules_read"`
	MoleculesWithHits int       `json:"molecules_with_hits"`
	VariantsGenerated int       `json:"variants_generated"`
	FinishedAt        time.Time `json:"finished_at"`
}

// MoleculeRequestPayload asks a worker to generate the variants of one
// molecule.
type MoleculeRequestPayload = variant.MoleculeInput

// NewEventEnvelope marshals payload into a fresh envelope.
func NewEventEnvelope(eventType string, payload any) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        eventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target any) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "empty event payload").WithDetail(e.EventID)
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode payload").WithDetail(e.EventType)
	}
	return nil
}

// ToMessage serialises e for topic with the given partition key.
func (e *EventEnvelope) ToMessage(topic string, key []byte) (Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return Message{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal envelope")
	}
	return Message{
		Topic: topic,
		Key:   key,
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Time: e.Timestamp,
	}, nil
}

// MessageToEventEnvelope parses the value of msg.
func MessageToEventEnvelope(msg Message) (*EventEnvelope, error) {
	if len(msg.Value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal envelope")
	}
	return &env, nil
}

//Personal.AI order the ending
