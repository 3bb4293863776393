package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"procurement-console/internal/core"
)

type queue interface {
	Publish(ctx context.Context, key, value []byte) error
}

// StatusPublisher emits a status-changed event for every committed transition.
// Failures are returned to the caller, which owns reporting them.
type StatusPublisher struct {
	q        queue
	producer string
}

func NewStatusPublisher(q queue, producer string) *StatusPublisher {
	return &StatusPublisher{q: q, producer: producer}
}

func (s *StatusPublisher) PublishStatusChange(ctx context.Context, c core.StatusChange) error {
	env, err := NewEnvelope(EventStatusChanged, s.producer, strconv.Itoa(c.POID), StatusChangedPayload{
		POID:     c.POID,
		PONumber: c.PONumber,
		From:     string(c.From),
		To:       string(c.To),
		Actor:    Actor{ID: c.ActorID, Role: c.ActorRole},
	})
	if err != nil {
		return fmt.Errorf("build status event for purchase order %d: %w", c.POID, err)
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode status event for purchase order %d: %w", c.POID, err)
	}
	if err := s.q.Publish(ctx, PartitionKey(c.POID), b); err != nil {
		return fmt.Errorf("queue status event for purchase order %d: %w", c.POID, err)
	}
	return nil
}

type fanout []core.StatusPublisher

// Fanout delivers each change to every non-nil publisher and joins their errors.
func Fanout(pubs ...core.StatusPublisher) core.StatusPublisher {
	var out fanout
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (f fanout) PublishStatusChange(ctx context.Context, c core.StatusChange) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishStatusChange(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
