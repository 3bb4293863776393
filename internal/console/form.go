package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"procurement-console/internal/client"
	"procurement-console/internal/core"

	"github.com/google/uuid"
)

// OrderAPI is the subset of the API client the form session calls.
type OrderAPI interface {
	CreatePurchaseOrder(ctx context.Context, in core.PurchaseOrderInput, att *client.Attachment, idempotencyKey string) (*core.PurchaseOrder, error)
	UpdatePurchaseOrder(ctx context.Context, id int, in core.PurchaseOrderInput, att *client.Attachment) (*core.PurchaseOrder, error)
	ChangeStatus(ctx context.Context, id int, to core.Status) (*core.PurchaseOrder, error)
	DeletePurchaseOrder(ctx context.Context, id int) error
}

// Form is one purchase order being created or edited. Commands run through the
// reducer locally; Save sends the draft and adopts the server's record, which
// is never recomputed afterwards. Any failure leaves the draft unchanged.
type Form struct {
	api    OrderAPI
	env    core.DraftEnv
	role   string
	notify Notifier
	now    func() time.Time

	mu         sync.Mutex
	po         core.PurchaseOrder
	attachment *client.Attachment
	// createKey is reused across retries of one create until it succeeds.
	createKey string
}

// NewForm starts an unsaved draft.
func NewForm(api OrderAPI, env core.DraftEnv, role string, notify Notifier) *Form {
	return EditForm(api, env, core.NewDraft(env.Policy), role, notify)
}

// EditForm opens an existing order.
func EditForm(api OrderAPI, env core.DraftEnv, po core.PurchaseOrder, role string, notify Notifier) *Form {
	return &Form{api: api, env: env, role: role, notify: notify, now: time.Now, po: po}
}

// Order returns a snapshot of the current draft.
func (f *Form) Order() core.PurchaseOrder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.po
}

// Affordances returns what the console may offer for the current order.
func (f *Form) Affordances() core.Affordances {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.po.ID == 0 {
		return core.Affordances{Status: f.po.Status, CanEdit: true}
	}
	return core.AffordancesFor(f.po.Status, f.role)
}

// Apply runs cmds through the reducer. Notices from successful commands are
// shown; on error the draft is left as it was and the error becomes toasts.
func (f *Form) Apply(cmds ...core.Command) error {
	f.mu.Lock()
	next, notices, err := core.ReduceAll(f.po, f.env, cmds...)
	if err == nil {
		f.po = next
	}
	f.mu.Unlock()

	notifyAll(f.notify, notices)
	if err != nil {
		notifyAll(f.notify, NoticesFor(err))
		return err
	}
	return nil
}

// Attach sets the file sent with the next save.
func (f *Form) Attach(att *client.Attachment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attachment = att
}

// Save validates locally, then creates or updates the order on the server.
// Local validation failures make no network call.
func (f *Form) Save(ctx context.Context) error {
	f.mu.Lock()
	po := f.po
	att := f.attachment
	f.mu.Unlock()

	if !core.Editable(po) {
		err := fmt.Errorf("%w (status %s)", core.ErrNotEditable, po.Status)
		notifyAll(f.notify, NoticesFor(err))
		return err
	}
	if err := core.ValidateForSubmit(po, f.now()); err != nil {
		notifyAll(f.notify, NoticesFor(err))
		return err
	}

	in := core.InputFromOrder(po)
	var (
		saved *core.PurchaseOrder
		err   error
	)
	if po.ID == 0 {
		saved, err = f.api.CreatePurchaseOrder(ctx, in, att, f.idempotencyKey())
	} else {
		saved, err = f.api.UpdatePurchaseOrder(ctx, po.ID, in, att)
	}
	if err != nil {
		notifyAll(f.notify, NoticesFor(err))
		return err
	}

	f.adopt(saved, func() {
		f.attachment = nil
		f.createKey = ""
	})
	f.notifySaved(saved, po.ID == 0)
	return nil
}

// Transition requests a status change. The workflow table is checked locally
// first; the server decides.
func (f *Form) Transition(ctx context.Context, to core.Status) error {
	po := f.Order()
	if po.ID == 0 {
		err := fmt.Errorf("%w: save the order before changing its status", core.ErrInvalidTransition)
		notifyAll(f.notify, NoticesFor(err))
		return err
	}
	t, err := core.AuthorizeTransition(po.Status, to, f.role)
	if err != nil {
		notifyAll(f.notify, NoticesFor(err))
		return err
	}
	saved, err := f.api.ChangeStatus(ctx, po.ID, to)
	if err != nil {
		notifyAll(f.notify, NoticesFor(err))
		return err
	}
	f.adopt(saved, nil)
	notifyAll(f.notify, []core.Notice{{Level: core.NoticeSuccess, Message: t.Label + ": " + string(saved.Status)}})
	return nil
}

// Delete removes a saved draft.
func (f *Form) Delete(ctx context.Context) error {
	po := f.Order()
	if po.ID == 0 {
		return nil
	}
	if !po.Status.Editable() {
		err := fmt.Errorf("%w (status %s)", core.ErrNotEditable, po.Status)
		notifyAll(f.notify, NoticesFor(err))
		return err
	}
	if err := f.api.DeletePurchaseOrder(ctx, po.ID); err != nil {
		notifyAll(f.notify, NoticesFor(err))
		return err
	}
	notifyAll(f.notify, []core.Notice{{Level: core.NoticeSuccess, Message: "Purchase order deleted"}})
	return nil
}

func (f *Form) idempotencyKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createKey == "" {
		f.createKey = uuid.NewString()
	}
	return f.createKey
}

func (f *Form) adopt(saved *core.PurchaseOrder, also func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.po = *saved
	if also != nil {
		also()
	}
}

func (f *Form) notifySaved(po *core.PurchaseOrder, created bool) {
	number := fmt.Sprintf("#%d", po.ID)
	if po.PONumber != nil {
		number = *po.PONumber
	}
	msg := "Purchase order " + number + " updated"
	if created {
		msg = "Purchase order " + number + " created"
	}
	notifyAll(f.notify, []core.Notice{{Level: core.NoticeSuccess, Message: msg}})
}
