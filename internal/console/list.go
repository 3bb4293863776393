package console

import (
	"context"
	"errors"
	"sync"

	"procurement-console/internal/core"
)

// List is a filterable, paginated list screen. Every query change fetches
// immediately except SetDebounced, which waits for SearchDelay.
type List[Q, T any] struct {
	loader   *Loader[Q, *core.Page[T]]
	debounce *Debouncer
	notify   Notifier

	mu    sync.Mutex
	query Q
	page  *core.Page[T]
}

func newList[Q, T any](initial Q, fetch func(context.Context, Q) (*core.Page[T], error), notify Notifier) *List[Q, T] {
	return &List[Q, T]{
		loader:   NewLoader(fetch),
		debounce: NewDebouncer(SearchDelay),
		notify:   notify,
		query:    initial,
		page:     core.NewPage[T](nil, 1, core.DefaultPerPage, 0),
	}
}

func (l *List[Q, T]) Query() Q {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// Page returns the most recently accepted response.
func (l *List[Q, T]) Page() *core.Page[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

// Set replaces the query and fetches it.
func (l *List[Q, T]) Set(ctx context.Context, q Q) error {
	l.debounce.Stop()
	l.mu.Lock()
	l.query = q
	l.mu.Unlock()
	return l.load(ctx, q)
}

// SetDebounced replaces the query now and fetches it once typing settles.
// done, if non-nil, receives the fetch result.
func (l *List[Q, T]) SetDebounced(ctx context.Context, q Q, done func(error)) {
	l.mu.Lock()
	l.query = q
	l.mu.Unlock()
	l.debounce.Trigger(func() {
		err := l.load(ctx, q)
		if done != nil {
			done(err)
		}
	})
}

// Refresh re-fetches the current query.
func (l *List[Q, T]) Refresh(ctx context.Context) error {
	return l.load(ctx, l.Query())
}

// Close cancels a pending debounced fetch.
func (l *List[Q, T]) Close() {
	l.debounce.Stop()
}

func (l *List[Q, T]) load(ctx context.Context, q Q) error {
	page, err := l.loader.Load(ctx, q)
	if errors.Is(err, ErrStale) {
		return nil
	}
	if err != nil {
		notifyAll(l.notify, NoticesFor(err))
		return err
	}
	l.mu.Lock()
	l.page = page
	l.mu.Unlock()
	return nil
}

// OrderSource lists purchase orders.
type OrderSource interface {
	ListPurchaseOrders(ctx context.Context, f core.PurchaseOrderFilter) (*core.Page[core.PurchaseOrder], error)
}

// OrderList is the purchase order list screen with client-side sort.
type OrderList struct {
	*List[OrderQuery, core.PurchaseOrder]

	names Names
	mu    sync.Mutex
	sort  Sort
}

func NewOrderList(src OrderSource, names Names, notify Notifier) *OrderList {
	fetch := func(ctx context.Context, q OrderQuery) (*core.Page[core.PurchaseOrder], error) {
		return src.ListPurchaseOrders(ctx, q.Filter())
	}
	return &OrderList{
		List:  newList(OrderQuery{Page: 1}, fetch, notify),
		names: names,
	}
}

// SortBy toggles the sort on key. It does not re-fetch.
func (l *OrderList) SortBy(key SortKey) Sort {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sort = l.sort.Toggle(key)
	return l.sort
}

// Rows is the loaded page in display order with relational names resolved.
func (l *OrderList) Rows() []core.PurchaseOrder {
	l.mu.Lock()
	s := l.sort
	l.mu.Unlock()
	rows := SortOrders(l.Page().Data, s, l.names)
	for i := range rows {
		rows[i] = l.names.Resolve(rows[i])
	}
	return rows
}

// DemandSource lists demands not yet bound to an order.
type DemandSource interface {
	PendingDemands(ctx context.Context, f core.DemandFilter) (*core.Page[core.Demand], error)
}

// DemandList is the demand-selection list for one ordering flow.
type DemandList struct {
	*List[DemandQuery, core.Demand]
}

func NewDemandList(src DemandSource, typ core.DemandType, notify Notifier) *DemandList {
	fetch := func(ctx context.Context, q DemandQuery) (*core.Page[core.Demand], error) {
		return src.PendingDemands(ctx, q.Filter())
	}
	return &DemandList{List: newList(DemandQuery{Type: typ, Page: 1}, fetch, notify)}
}

// Selected returns the loaded demands with the given IDs, in page order.
func (l *DemandList) Selected(ids ...int) []core.Demand {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []core.Demand
	for _, d := range l.Page().Data {
		if want[d.ID] {
			out = append(out, d)
		}
	}
	return out
}
