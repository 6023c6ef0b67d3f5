// Package kafka publishes filtering decisions for downstream call-log and
// notification consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"callguard/internal/callfilter/models"
	"callguard/internal/platform/kafka/producer"
	"callguard/pkg/platform/privacy"
)

const schemaVersion = "1"

// Producer is the subset of producer.Producer the sink needs.
type Producer interface {
	Produce(ctx context.Context, msg producer.Message) error
}

// DecisionEvent is the record value. Handles travel hashed.
type DecisionEvent struct {
	CallID                 string    `json:"call_id"`
	ProfileID              string    `json:"profile_id"`
	SubjectHash            string    `json:"subject_hash,omitempty"`
	Presentation           string    `json:"presentation"`
	Outcome                string    `json:"outcome"`
	AllowCall              bool      `json:"allow_call"`
	Reject                 bool      `json:"reject"`
	Silence                bool      `json:"silence"`
	AddToCallLog           bool      `json:"add_to_call_log"`
	ShowNotification       bool      `json:"show_notification"`
	BlockReason            string    `json:"block_reason"`
	AttributingAppName     string    `json:"attributing_app_name,omitempty"`
	AttributingComponentID string    `json:"attributing_component_id,omitempty"`
	DecidedAt              time.Time `json:"decided_at"`
}

// Sink implements ports.DecisionSink.
type Sink struct {
	producer Producer
	topic    string
	now      func() time.Time
}

func NewSink(p Producer, topic string) (*Sink, error) {
	if p == nil {
		return nil, fmt.Errorf("kafka producer is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("decisions topic is required")
	}
	return &Sink{producer: p, topic: topic, now: time.Now}, nil
}

func (s *Sink) Name() string { return "kafka" }

// Deliver produces one record keyed by call id, so every decision for a call
// lands on the same partition.
func (s *Sink) Deliver(ctx context.Context, call *models.Call, result models.FilterResult) error {
	value, err := json.Marshal(newDecisionEvent(call, result, s.now()))
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	return s.producer.Produce(ctx, producer.Message{
		Topic: s.topic,
		Key:   []byte(call.ID.String()),
		Value: value,
		Headers: map[string]string{
			"content-type":   "application/json",
			"schema-version": schemaVersion,
		},
	})
}

func newDecisionEvent(call *models.Call, r models.FilterResult, at time.Time) DecisionEvent {
	return DecisionEvent{
		CallID:                 call.ID.String(),
		ProfileID:              call.ProfileID.String(),
		SubjectHash:            privacy.HashHandle(call.Handle),
		Presentation:           string(call.Presentation),
		Outcome:                r.Outcome(),
		AllowCall:              r.AllowCall,
		Reject:                 r.Reject,
		Silence:                r.Silence,
		AddToCallLog:           r.AddToCallLog,
		ShowNotification:       r.ShowNotification,
		BlockReason:            r.BlockReason.String(),
		AttributingAppName:     r.AttributingAppName,
		AttributingComponentID: r.AttributingComponentID,
		DecidedAt:              at.UTC(),
	}
}
