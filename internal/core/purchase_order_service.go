package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type purchaseOrderService struct {
	pool      *pgxpool.Pool
	docs      DocumentService
	publisher StatusPublisher
	policy    Policy
	log       *slog.Logger
	now       func() time.Time
}

// NewPurchaseOrderService constructs a PurchaseOrderService backed by PostgreSQL.
// publisher may be nil, in which case status changes are only recorded locally.
// A nil log uses slog.Default.
func NewPurchaseOrderService(pool *pgxpool.Pool, docs DocumentService, publisher StatusPublisher, policy Policy, log *slog.Logger) PurchaseOrderService {
	if log == nil {
		log = slog.Default()
	}
	return &purchaseOrderService{pool: pool, docs: docs, publisher: publisher, policy: policy, log: log, now: time.Now}
}

// statusTimestamp names the column stamped when an order enters a status.
var statusTimestamp = map[Status]string{
	StatusPending:         "submitted_at",
	StatusApproved:        "approved_at",
	StatusRejected:        "rejected_at",
	StatusPurchased:       "purchased_at",
	StatusReceivedPartial: "received_at",
	StatusReceivedFull:    "received_at",
}

// CreatePO stores a new draft purchase order with a freshly assigned PO number.
func (s *purchaseOrderService) CreatePO(ctx context.Context, in PurchaseOrderInput, actor Actor) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	po, err := s.buildOrder(ctx, tx, in, 0)
	if err != nil {
		return nil, err
	}

	number, err := s.docs.NextNumberTx(ctx, tx, DocumentTypePO, s.now().Year())
	if err != nil {
		return nil, fmt.Errorf("assign PO number: %w", err)
	}

	var createdBy *int
	if actor.UserID != 0 {
		id := actor.UserID
		createdBy = &id
	}

	var poID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (po_number, vendor_id, location_id, delivery_date,
		                             reference_quotation, incoterm, label, notes,
		                             cond_tax, cond_wht, cond_delivery_scope, cond_delivery_cost, cond_delivery_damages,
		                             gst_rate, wht_rate, subtotal, gst_amount, total_after_tax, wht_amount,
		                             total_payable, amount_in_words, status, attachment, created_by)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, 'draft', $22, $23)
		RETURNING id`,
		number, po.VendorID, po.LocationID, po.DeliveryDate,
		po.ReferenceQuotation, po.Incoterm, po.Label, po.Notes,
		string(po.Conditions.Tax), string(po.Conditions.WHT), string(po.Conditions.DeliveryScope),
		string(po.Conditions.DeliveryCost), string(po.Conditions.DeliveryDamages),
		po.GSTRate, po.WHTRate, po.Subtotal, po.GSTAmount, po.TotalAfterTax, po.WHTAmount,
		po.TotalPayable, po.AmountInWords, po.Attachment, createdBy,
	).Scan(&poID); err != nil {
		return nil, fmt.Errorf("insert purchase order: %w", err)
	}

	if err := writeLines(ctx, tx, poID, po); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order: %w", err)
	}
	return s.GetPO(ctx, poID)
}

// UpdatePO replaces the header, lines and demand bindings of a draft order.
func (s *purchaseOrderService) UpdatePO(ctx context.Context, poID int, in PurchaseOrderInput, _ Actor) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	status, _, err := lockOrder(ctx, tx, poID)
	if err != nil {
		return nil, err
	}
	if !status.Editable() {
		return nil, fmt.Errorf("purchase order %d: %w (status %s)", poID, ErrNotEditable, status)
	}

	po, err := s.buildOrder(ctx, tx, in, poID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE purchase_orders
		SET vendor_id = $1, location_id = $2, delivery_date = $3::date,
		    reference_quotation = $4, incoterm = $5, label = $6, notes = $7,
		    cond_tax = $8, cond_wht = $9, cond_delivery_scope = $10,
		    cond_delivery_cost = $11, cond_delivery_damages = $12,
		    gst_rate = $13, wht_rate = $14, subtotal = $15, gst_amount = $16,
		    total_after_tax = $17, wht_amount = $18, total_payable = $19, amount_in_words = $20,
		    attachment = COALESCE($21, attachment), updated_at = NOW()
		WHERE id = $22`,
		po.VendorID, po.LocationID, po.DeliveryDate,
		po.ReferenceQuotation, po.Incoterm, po.Label, po.Notes,
		string(po.Conditions.Tax), string(po.Conditions.WHT), string(po.Conditions.DeliveryScope),
		string(po.Conditions.DeliveryCost), string(po.Conditions.DeliveryDamages),
		po.GSTRate, po.WHTRate, po.Subtotal, po.GSTAmount,
		po.TotalAfterTax, po.WHTAmount, po.TotalPayable, po.AmountInWords,
		po.Attachment, poID,
	); err != nil {
		return nil, fmt.Errorf("update purchase order %d: %w", poID, err)
	}

	// Lines and bindings are replaced wholesale; a removed bound line releases
	// its demand here.
	if _, err := tx.Exec(ctx, "DELETE FROM purchase_order_lines WHERE order_id = $1", poID); err != nil {
		return nil, fmt.Errorf("clear lines of purchase order %d: %w", poID, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM purchase_order_demands WHERE order_id = $1", poID); err != nil {
		return nil, fmt.Errorf("clear demands of purchase order %d: %w", poID, err)
	}
	if err := writeLines(ctx, tx, poID, po); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase order %d: %w", poID, err)
	}
	return s.GetPO(ctx, poID)
}

// DeletePO removes a draft order. Its demand bindings cascade, returning the
// demands to the pending pool.
func (s *purchaseOrderService) DeletePO(ctx context.Context, poID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	status, _, err := lockOrder(ctx, tx, poID)
	if err != nil {
		return err
	}
	if !status.Editable() {
		return fmt.Errorf("purchase order %d: %w (status %s)", poID, ErrNotEditable, status)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM purchase_orders WHERE id = $1", poID); err != nil {
		return fmt.Errorf("delete purchase order %d: %w", poID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete of purchase order %d: %w", poID, err)
	}
	return nil
}

// TransitionStatus applies one workflow edge under a row lock and records it in
// the status history. The change is published after commit.
func (s *purchaseOrderService) TransitionStatus(ctx context.Context, poID int, to Status, actor Actor) (*PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	from, number, err := lockOrder(ctx, tx, poID)
	if err != nil {
		return nil, err
	}
	if _, err := AuthorizeTransition(from, to, actor.Role); err != nil {
		return nil, fmt.Errorf("purchase order %d: %w", poID, err)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf(`
		UPDATE purchase_orders
		SET status = $1, %s = NOW(), updated_at = NOW()
		WHERE id = $2`, statusTimestamp[to]),
		string(to), poID,
	); err != nil {
		return nil, fmt.Errorf("update status of purchase order %d: %w", poID, err)
	}

	var actorID *int
	if actor.UserID != 0 {
		id := actor.UserID
		actorID = &id
	}
	change := StatusChange{POID: poID, PONumber: number, From: from, To: to, ActorID: actorID, ActorRole: actor.Role}
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_order_status_history (order_id, from_status, to_status, actor_id, actor_role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING changed_at`,
		poID, string(from), string(to), actorID, actor.Role,
	).Scan(&change.ChangedAt); err != nil {
		return nil, fmt.Errorf("record status history for purchase order %d: %w", poID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status change of purchase order %d: %w", poID, err)
	}

	// The change is durable at this point; a failed publish does not undo it.
	if s.publisher != nil {
		if err := s.publisher.PublishStatusChange(ctx, change); err != nil {
			s.log.Error("publish status change failed",
				"po_id", poID, "po_number", number, "from", string(from), "to", string(to), "err", err)
		}
	}
	return s.GetPO(ctx, poID)
}

func (s *purchaseOrderService) NextPONumber(ctx context.Context, at time.Time) (string, error) {
	return s.docs.PeekNumber(ctx, DocumentTypePO, at.Year())
}

const orderColumns = `
	po.id, po.po_number, po.vendor_id, COALESCE(v.name, ''), po.location_id, COALESCE(l.name, ''),
	po.delivery_date::text, po.reference_quotation, po.incoterm, po.label, po.notes,
	po.cond_tax, po.cond_wht, po.cond_delivery_scope, po.cond_delivery_cost, po.cond_delivery_damages,
	po.gst_rate, po.wht_rate, po.subtotal, po.gst_amount, po.total_after_tax, po.wht_amount,
	po.total_payable, po.amount_in_words, po.status, po.attachment, po.created_by,
	po.submitted_at, po.approved_at, po.rejected_at, po.purchased_at, po.received_at,
	po.created_at, po.updated_at`

const orderFrom = `
	FROM purchase_orders po
	LEFT JOIN vendors v ON v.id = po.vendor_id
	LEFT JOIN locations l ON l.id = po.location_id`

func scanOrder(row pgx.Row) (PurchaseOrder, error) {
	var (
		po                                     PurchaseOrder
		tax, wht, scope, cost, damages, status string
	)
	err := row.Scan(
		&po.ID, &po.PONumber, &po.VendorID, &po.VendorName, &po.LocationID, &po.LocationName,
		&po.DeliveryDate, &po.ReferenceQuotation, &po.Incoterm, &po.Label, &po.Notes,
		&tax, &wht, &scope, &cost, &damages,
		&po.GSTRate, &po.WHTRate, &po.Subtotal, &po.GSTAmount, &po.TotalAfterTax, &po.WHTAmount,
		&po.TotalPayable, &po.AmountInWords, &status, &po.Attachment, &po.CreatedBy,
		&po.SubmittedAt, &po.ApprovedAt, &po.RejectedAt, &po.PurchasedAt, &po.ReceivedAt,
		&po.CreatedAt, &po.UpdatedAt,
	)
	po.Conditions = Conditions{
		Tax:             TaxMode(tax),
		WHT:             YesNo(wht),
		DeliveryScope:   DeliveryScope(scope),
		DeliveryCost:    DeliveryCost(cost),
		DeliveryDamages: YesNo(damages),
	}
	po.Status = Status(status)
	return po, err
}

// GetPO returns a purchase order with its lines, demand IDs and status history.
func (s *purchaseOrderService) GetPO(ctx context.Context, poID int) (*PurchaseOrder, error) {
	po, err := scanOrder(s.pool.QueryRow(ctx, "SELECT"+orderColumns+orderFrom+" WHERE po.id = $1", poID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", poID, ErrNotFound)
		}
		return nil, fmt.Errorf("get purchase order %d: %w", poID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT pol.id, pol.line_number, pol.item_id, pol.item_code, pol.item_name, pol.description,
		       pol.uom, pol.quantity, pol.rate, pol.amount, pol.demand_id,
		       COALESCE(d.demand_number, ''), pol.demand_ceiling, pol.location_id, pol.purchase_status
		FROM purchase_order_lines pol
		LEFT JOIN demands d ON d.id = pol.demand_id
		WHERE pol.order_id = $1
		ORDER BY pol.line_number`,
		poID,
	)
	if err != nil {
		return nil, fmt.Errorf("get lines for purchase order %d: %w", poID, err)
	}
	po.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (LineItem, error) {
		var l LineItem
		var ps string
		err := row.Scan(
			&l.ID, &l.LineNumber, &l.ItemID, &l.ItemCode, &l.ItemName, &l.Description,
			&l.UOM, &l.Quantity, &l.Rate, &l.Amount, &l.DemandID,
			&l.DemandNumber, &l.DemandCeiling, &l.LocationID, &ps,
		)
		l.PurchaseStatus = PurchaseStatus(ps)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan lines for purchase order %d: %w", poID, err)
	}

	rows, err = s.pool.Query(ctx,
		"SELECT demand_id FROM purchase_order_demands WHERE order_id = $1 ORDER BY demand_id", poID)
	if err != nil {
		return nil, fmt.Errorf("get demands for purchase order %d: %w", poID, err)
	}
	po.DemandIDs, err = pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("scan demands for purchase order %d: %w", poID, err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT from_status, to_status, actor_id, actor_role, changed_at
		FROM purchase_order_status_history
		WHERE order_id = $1
		ORDER BY changed_at, id`,
		poID,
	)
	if err != nil {
		return nil, fmt.Errorf("get status history for purchase order %d: %w", poID, err)
	}
	po.History, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (StatusChange, error) {
		c := StatusChange{POID: po.ID}
		if po.PONumber != nil {
			c.PONumber = *po.PONumber
		}
		var from, to string
		err := row.Scan(&from, &to, &c.ActorID, &c.ActorRole, &c.ChangedAt)
		c.From, c.To = Status(from), Status(to)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan status history for purchase order %d: %w", poID, err)
	}

	return &po, nil
}

// ListPOs returns one page of orders, newest first. Lines are not loaded.
func (s *purchaseOrderService) ListPOs(ctx context.Context, f PurchaseOrderFilter) (*Page[PurchaseOrder], error) {
	page, perPage := NormalizePaging(f.Page, f.PerPage)

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where = append(where, "po.status = "+arg(string(f.Status)))
	}
	if f.VendorID != 0 {
		where = append(where, "po.vendor_id = "+arg(f.VendorID))
	}
	if f.LocationID != 0 {
		where = append(where, "po.location_id = "+arg(f.LocationID))
	}
	if f.Label != "" {
		where = append(where, "po.label = "+arg(f.Label))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		p := arg("%" + term + "%")
		where = append(where, fmt.Sprintf(
			"(po.po_number ILIKE %[1]s OR v.name ILIKE %[1]s OR po.reference_quotation ILIKE %[1]s OR po.notes ILIKE %[1]s)", p))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*)"+orderFrom+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count purchase orders: %w", err)
	}

	query := "SELECT" + orderColumns + orderFrom + cond +
		fmt.Sprintf(" ORDER BY po.created_at DESC, po.id DESC LIMIT %s OFFSET %s",
			arg(perPage), arg((page-1)*perPage))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PurchaseOrder, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan purchase orders: %w", err)
	}
	return NewPage(orders, page, perPage, total), nil
}

// lockOrder reads the status and number of an order with FOR UPDATE.
func lockOrder(ctx context.Context, tx pgx.Tx, poID int) (Status, string, error) {
	var status string
	var number *string
	if err := tx.QueryRow(ctx,
		"SELECT status, po_number FROM purchase_orders WHERE id = $1 FOR UPDATE",
		poID,
	).Scan(&status, &number); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", fmt.Errorf("purchase order %d: %w", poID, ErrNotFound)
		}
		return "", "", fmt.Errorf("fetch purchase order %d: %w", poID, err)
	}
	n := ""
	if number != nil {
		n = *number
	}
	return Status(status), n, nil
}

func writeLines(ctx context.Context, tx pgx.Tx, poID int, po PurchaseOrder) error {
	for i, l := range po.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_lines
			            (order_id, line_number, item_id, item_code, item_name, description, uom,
			             quantity, rate, amount, demand_id, demand_ceiling, location_id, purchase_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			poID, i+1, l.ItemID, l.ItemCode, l.ItemName, l.Description, l.UOM,
			l.Quantity, l.Rate, l.Amount, l.DemandID, l.DemandCeiling, l.LocationID, string(l.PurchaseStatus),
		); err != nil {
			return fmt.Errorf("insert PO line %d: %w", i+1, err)
		}
	}
	for _, id := range po.DemandIDs {
		if _, err := tx.Exec(ctx,
			"INSERT INTO purchase_order_demands (order_id, demand_id) VALUES ($1, $2)",
			poID, id,
		); err != nil {
			return fmt.Errorf("bind demand %d: %w", id, err)
		}
	}
	return nil
}

// buildOrder resolves an input against the item master and demand source,
// recomputes every derived field and validates the result. The client's own
// amounts are never trusted. excludePO is the order being updated, whose
// existing bindings do not count as conflicts.
func (s *purchaseOrderService) buildOrder(ctx context.Context, tx pgx.Tx, in PurchaseOrderInput, excludePO int) (PurchaseOrder, error) {
	var errs ValidationErrors

	po := PurchaseOrder{
		VendorID:           in.VendorID,
		LocationID:         in.LocationID,
		DeliveryDate:       in.DeliveryDate,
		ReferenceQuotation: in.ReferenceQuotation,
		Incoterm:           in.Incoterm,
		Label:              in.Label,
		Notes:              in.Notes,
		Conditions:         in.Conditions,
		GSTRate:            in.GSTRate,
		WHTRate:            in.WHTRate,
		Attachment:         in.Attachment,
		Status:             StatusDraft,
	}
	if po.Conditions == (Conditions{}) {
		po.Conditions = DefaultConditions()
	}

	if in.VendorID != 0 {
		if err := tx.QueryRow(ctx,
			"SELECT name FROM vendors WHERE id = $1 AND is_active = true", in.VendorID,
		).Scan(&po.VendorName); err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return po, fmt.Errorf("resolve vendor: %w", err)
			}
			errs.Add("vendor_id", "vendor %d not found", in.VendorID)
		}
	}
	if in.LocationID != 0 {
		if err := tx.QueryRow(ctx,
			"SELECT name FROM locations WHERE id = $1 AND is_active = true", in.LocationID,
		).Scan(&po.LocationName); err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return po, fmt.Errorf("resolve location: %w", err)
			}
			errs.Add("location_id", "location %d not found", in.LocationID)
		}
	}

	var itemIDs, demandIDs []int
	for _, l := range in.Lines {
		if l.ItemID != nil {
			itemIDs = append(itemIDs, *l.ItemID)
		}
		if l.DemandID != nil {
			demandIDs = append(demandIDs, *l.DemandID)
		}
	}
	items, err := loadItems(ctx, tx, itemIDs)
	if err != nil {
		return po, err
	}
	if err := lockDemands(ctx, tx, demandIDs); err != nil {
		return po, err
	}
	demandList, err := loadDemands(ctx, tx, demandIDs)
	if err != nil {
		return po, err
	}
	demands := make(map[int]Demand, len(demandList))
	for _, d := range demandList {
		demands[d.ID] = d
	}
	taken, err := boundElsewhere(ctx, tx, demandIDs, excludePO)
	if err != nil {
		return po, err
	}

	seen := map[int]bool{}
	for i, li := range in.Lines {
		key := func(f string) string { return fmt.Sprintf("lines.%d.%s", i, f) }
		var line LineItem

		switch {
		case li.DemandID != nil:
			d, ok := demands[*li.DemandID]
			if !ok {
				errs.Add(key("demand_id"), "demand %d not found", *li.DemandID)
				continue
			}
			if seen[d.ID] {
				errs.Add(key("demand_id"), "demand %s is bound more than once", demandRef(d))
				continue
			}
			if number, ok := taken[d.ID]; ok {
				errs.Add(key("demand_id"), "demand %s is already on purchase order %s", demandRef(d), number)
				continue
			}
			seen[d.ID] = true
			line = lineFromDemand(d)
			if li.Description != "" {
				line.Description = li.Description
			}
			po.DemandIDs = append(po.DemandIDs, d.ID)

		case li.ItemID != nil:
			it, ok := items[*li.ItemID]
			if !ok || !it.IsActive {
				errs.Add(key("item_id"), "item %d not found", *li.ItemID)
				continue
			}
			id := it.ID
			line = LineItem{ItemID: &id, Description: li.Description}
			freezeItem(&line, it)

		default:
			line = LineItem{Description: li.Description}
			if line.Blank() && li.Quantity.IsZero() && li.Rate.IsZero() {
				continue
			}
		}

		line.Quantity = li.Quantity
		line.Rate = li.Rate
		line.LocationID = li.LocationID
		line.PurchaseStatus = li.PurchaseStatus
		po.Lines = append(po.Lines, line)
	}

	Recompute(&po, s.policy)

	if err := ValidateForSubmit(po, s.now()); err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			errs = append(errs, verrs...)
		} else {
			return po, err
		}
	}
	if err := errs.Err(); err != nil {
		return po, err
	}
	return po, nil
}

// boundElsewhere maps each of ids already bound to another live order to that
// order's number.
func boundElsewhere(ctx context.Context, tx pgx.Tx, ids []int, excludePO int) (map[int]string, error) {
	out := map[int]string{}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := tx.Query(ctx, `
		SELECT pod.demand_id, COALESCE(po.po_number, po.id::text)
		FROM purchase_order_demands pod
		JOIN purchase_orders po ON po.id = pod.order_id
		WHERE pod.demand_id = ANY($1) AND po.id <> $2 AND po.status <> 'rejected'`,
		ids, excludePO,
	)
	if err != nil {
		return nil, fmt.Errorf("check demand bindings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		var number string
		if err := rows.Scan(&id, &number); err != nil {
			return nil, fmt.Errorf("scan demand binding: %w", err)
		}
		out[id] = number
	}
	return out, rows.Err()
}
