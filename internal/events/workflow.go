package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"procurement-console/internal/core"

	"github.com/segmentio/kafka-go"
)

// Recorder applies downstream purchase and receipt facts to purchase orders.
type Recorder interface {
	RecordPurchase(ctx context.Context, poID int) error
	RecordReceipt(ctx context.Context, poID int, complete bool) error
}

// Deduper remembers applied event IDs.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// Observer counts handled events by topic and result.
type Observer interface {
	ObserveEvent(topic, result string)
}

// WorkflowTopics are the topics NewWorkflowHandler understands.
var WorkflowTopics = []string{TopicPurchaseRecorded, TopicGoodsReceived}

// NewWorkflowHandler returns a Handler that drives external status transitions.
// Events that can never apply (unknown order, illegal transition, bad payload)
// are logged and committed; infrastructure errors are returned for retry.
// dedup and obs may be nil.
func NewWorkflowHandler(rec Recorder, dedup Deduper, obs Observer, log *slog.Logger) Handler {
	return func(ctx context.Context, m kafka.Message) error {
		result := "ok"
		err := handleWorkflow(ctx, rec, dedup, m)
		switch {
		case err == nil:
		case errors.Is(err, errDuplicate):
			result, err = "duplicate", nil
		case isPermanent(err):
			log.Warn("dropping workflow event", "topic", m.Topic, "offset", m.Offset, "err", err)
			result, err = "dropped", nil
		default:
			result = "error"
		}
		if obs != nil {
			obs.ObserveEvent(m.Topic, result)
		}
		return err
	}
}

var (
	errDuplicate = errors.New("duplicate event")
	errMalformed = errors.New("malformed event")
)

func handleWorkflow(ctx context.Context, rec Recorder, dedup Deduper, m kafka.Message) error {
	var env Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if dedup != nil && env.EventID != "" {
		seen, err := dedup.Seen(ctx, env.EventID)
		if err != nil {
			return fmt.Errorf("dedup lookup: %w", err)
		}
		if seen {
			return errDuplicate
		}
	}

	if err := apply(ctx, rec, m.Topic, env); err != nil {
		return err
	}

	if dedup != nil && env.EventID != "" {
		if err := dedup.Mark(ctx, env.EventID); err != nil {
			return fmt.Errorf("dedup mark: %w", err)
		}
	}
	return nil
}

func apply(ctx context.Context, rec Recorder, topic string, env Envelope) error {
	switch topic {
	case TopicPurchaseRecorded:
		p, err := UnwrapPayload[PurchaseRecordedPayload](env)
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return rec.RecordPurchase(ctx, p.POID)
	case TopicGoodsReceived:
		p, err := UnwrapPayload[GoodsReceivedPayload](env)
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return rec.RecordReceipt(ctx, p.POID, p.Complete)
	default:
		return fmt.Errorf("%w: unexpected topic %q", errMalformed, topic)
	}
}

func isPermanent(err error) bool {
	var verrs core.ValidationErrors
	return errors.Is(err, errMalformed) ||
		errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrInvalidTransition) ||
		errors.Is(err, core.ErrForbiddenTransition) ||
		errors.As(err, &verrs)
}
