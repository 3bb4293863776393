package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	TopicStatusChanged     = "procurement.po.status_changed"
	TopicPurchaseRecorded  = "procurement.purchase.recorded"
	TopicGoodsReceived     = "procurement.goods.received"
	EventStatusChanged     = "POStatusChanged"
	EventPurchaseRecorded  = "PurchaseRecorded"
	EventGoodsReceived     = "GoodsReceived"
	currentEnvelopeVersion = 1
)

// Envelope wraps every event on the wire.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // purchase order ID
	Payload       json.RawMessage `json:"payload"`
}

type Actor struct {
	ID   *int   `json:"id,omitempty"`
	Role string `json:"role"`
}

type StatusChangedPayload struct {
	POID     int    `json:"po_id"`
	PONumber string `json:"po_number,omitempty"`
	From     string `json:"from"`
	To       string `json:"to"`
	Actor    Actor  `json:"actor"`
}

type PurchaseRecordedPayload struct {
	POID      int    `json:"po_id"`
	Reference string `json:"reference,omitempty"`
}

// GoodsReceivedPayload reports a receipt. Complete marks the final delivery.
type GoodsReceivedPayload struct {
	POID     int  `json:"po_id"`
	Complete bool `json:"complete"`
}

// NewEnvelope wraps payload with a fresh event ID.
func NewEnvelope(eventType, producer, correlationID string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  currentEnvelopeVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       b,
	}, nil
}

// UnwrapPayload decodes the payload of env into T.
func UnwrapPayload[T any](env Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(env.Payload, &t); err != nil {
		return t, fmt.Errorf("decode %s payload: %w", env.EventType, err)
	}
	return t, nil
}

// PartitionKey keeps every event of one order on the same partition.
func PartitionKey(poID int) []byte { return []byte(strconv.Itoa(poID)) }
