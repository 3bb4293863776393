package console

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrStale is returned for a response superseded by a newer request.
var ErrStale = errors.New("response superseded by a newer request")

// Generations hands out request tickets; only the latest ticket is current.
type Generations struct {
	n atomic.Uint64
}

// Next issues a ticket that supersedes every earlier one.
func (g *Generations) Next() uint64 {
	return g.n.Add(1)
}

func (g *Generations) Current(ticket uint64) bool {
	return g.n.Load() == ticket
}

// Loader fetches pages for query snapshots and drops responses that arrive
// after a newer Load has started.
type Loader[Q, T any] struct {
	gen   Generations
	fetch func(context.Context, Q) (T, error)
}

func NewLoader[Q, T any](fetch func(context.Context, Q) (T, error)) *Loader[Q, T] {
	return &Loader[Q, T]{fetch: fetch}
}

// Load fetches q. A stale result, successful or not, is reported as ErrStale.
func (l *Loader[Q, T]) Load(ctx context.Context, q Q) (T, error) {
	ticket := l.gen.Next()
	res, err := l.fetch(ctx, q)
	if !l.gen.Current(ticket) {
		var zero T
		return zero, ErrStale
	}
	return res, err
}
