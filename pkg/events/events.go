package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TopicUsers    = "user_events"
	TopicCatalog  = "catalog_events"
	TopicOrders   = "order_events"
	TopicFeedback = "feedback_events"
)

type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Key        string          `json:"key,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEnvelope(producer, eventType, key string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Producer:   producer,
		Key:        key,
		Payload:    raw,
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, topic, key, eventType string, payload any) error
}

// Nop is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, string, any) error { return nil }
