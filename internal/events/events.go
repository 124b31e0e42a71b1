package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventCheckoutCompleted = "CheckoutCompleted"
	EventOrderItemUpdated  = "OrderItemUpdated"
	EventMessageCreated    = "MessageCreated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type CheckoutCompletedPayload struct {
	OrderID        string   `json:"order_id"`
	UserID         string   `json:"user_id"`
	SubOrderIDs    []string `json:"sub_order_ids"`
	TotalCents     int64    `json:"total_cents"`
	TransactionRef string   `json:"transaction_ref"`
}

type OrderItemUpdatedPayload struct {
	ItemID    string `json:"item_id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	SellerID  string `json:"seller_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

type MessageCreatedPayload struct {
	MessageID  string `json:"message_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	ProductID  string `json:"product_id"`
}

// Publisher is satisfied by the kafka producer; services publish through it
// so tests can capture events in memory.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Emit wraps payload in a v1 envelope and publishes it keyed by correlation,
// so all events of one entity stay ordered within a partition.
func Emit(p Publisher, eventType, producer, trace, correlation string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       trace,
		CorrelationID: correlation,
		Payload:       body,
	}
	b, err := json.Marshal(env)
	if err != nil {
		panic(err)
	}
	p.Publish(PartitionKey(correlation), b,
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
