package console

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"procurement-console/internal/core"

	"github.com/stretchr/testify/require"
)

func TestLoader_DropsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	loader := NewLoader(func(_ context.Context, q string) (string, error) {
		if q == "slow" {
			<-release
		}
		return q, nil
	})

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = loader.Load(context.Background(), "slow")
	}()
	require.Eventually(t, func() bool { return loader.gen.n.Load() == 1 }, time.Second, time.Millisecond)

	got, err := loader.Load(context.Background(), "fast")
	require.NoError(t, err)
	require.Equal(t, "fast", got)

	close(release)
	wg.Wait()
	require.ErrorIs(t, slowErr, ErrStale)
}

func TestDebouncer_RunsLastOnly(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Value
	for _, term := range []string{"c", "ce", "cem"} {
		d.Trigger(func() {
			calls.Add(1)
			last.Store(term)
		})
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, "cem", last.Load())

	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	time.Sleep(40 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

type fakeOrderSource struct {
	mu      sync.Mutex
	filters []core.PurchaseOrderFilter
	err     error
}

func (f *fakeOrderSource) ListPurchaseOrders(_ context.Context, filter core.PurchaseOrderFilter) (*core.Page[core.PurchaseOrder], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	orders := []core.PurchaseOrder{{ID: 1, VendorName: "b"}, {ID: 2, VendorName: "a"}}
	page, perPage := core.NormalizePaging(filter.Page, filter.PerPage)
	return core.NewPage(orders, page, perPage, 40), nil
}

func (f *fakeOrderSource) calls() []core.PurchaseOrderFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.PurchaseOrderFilter(nil), f.filters...)
}

func TestOrderList(t *testing.T) {
	src := &fakeOrderSource{}
	notices := &NoticeLog{}
	list := NewOrderList(src, Names{}, notices)
	defer list.Close()
	ctx := context.Background()

	require.NoError(t, list.Set(ctx, list.Query().WithPage(3)))
	require.Equal(t, 3, list.Page().CurrentPage)

	require.NoError(t, list.Set(ctx, list.Query().WithStatus("all").WithVendor(4)))
	last := src.calls()[len(src.calls())-1]
	require.Equal(t, core.PurchaseOrderFilter{VendorID: 4, Page: 1}, last)

	list.SortBy(SortVendor)
	rows := list.Rows()
	require.Equal(t, 2, rows[0].ID)
	require.Equal(t, 1, list.Page().Data[0].ID, "sorting does not touch the loaded page")

	done := make(chan error, 1)
	list.SetDebounced(ctx, list.Query().WithSearch("cement"), func(err error) { done <- err })
	require.Equal(t, "cement", list.Query().Search)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced search never fired")
	}
	last = src.calls()[len(src.calls())-1]
	require.Equal(t, "cement", last.Search)
	require.Equal(t, 1, last.Page)
}

func TestOrderList_FailureKeepsPageAndNotifies(t *testing.T) {
	src := &fakeOrderSource{}
	notices := &NoticeLog{}
	list := NewOrderList(src, Names{}, notices)
	ctx := context.Background()
	require.NoError(t, list.Refresh(ctx))
	before := list.Page()

	src.err = context.DeadlineExceeded
	require.Error(t, list.Set(ctx, list.Query().WithLabel("urgent")))
	require.Same(t, before, list.Page())

	got := notices.Drain()
	require.Len(t, got, 1)
	require.Equal(t, core.NoticeError, got[0].Level)
}
