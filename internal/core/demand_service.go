package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type demandService struct {
	pool *pgxpool.Pool
}

// NewDemandService constructs a DemandService backed by PostgreSQL.
func NewDemandService(pool *pgxpool.Pool) DemandService {
	return &demandService{pool: pool}
}

const demandColumns = `
	d.id, d.demand_number, d.demand_type, COALESCE(d.location_id, 0), COALESCE(l.name, ''),
	i.id, COALESCE(i.code, ''), COALESCE(i.name, ''), COALESCE(i.description, ''),
	COALESCE(i.uom, ''), COALESCE(i.rate, 0), COALESCE(i.is_inventory, false),
	d.item_name, d.item_code, d.item_description, d.item_uom, d.rate,
	d.approved_quantity, d.quantity_remaining, COALESCE(d.required_date::text, '')`

const demandFrom = `
	FROM demands d
	LEFT JOIN locations l ON l.id = d.location_id
	LEFT JOIN items i ON i.id = d.item_id`

// unboundDemand excludes demands already consumed by a live purchase order.
const unboundDemand = `NOT EXISTS (
		SELECT 1 FROM purchase_order_demands pod
		JOIN purchase_orders po ON po.id = pod.order_id
		WHERE pod.demand_id = d.id AND po.status <> 'rejected')`

func (s *demandService) ListPending(ctx context.Context, f DemandFilter) (*Page[Demand], error) {
	page, perPage := NormalizePaging(f.Page, f.PerPage)

	where := []string{unboundDemand}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Type != "" {
		where = append(where, "d.demand_type = "+arg(string(f.Type)))
	}
	if f.LocationID != 0 {
		where = append(where, "d.location_id = "+arg(f.LocationID))
	}
	if f.DateFrom != "" {
		where = append(where, "d.required_date >= "+arg(f.DateFrom)+"::date")
	}
	if f.DateTo != "" {
		where = append(where, "d.required_date <= "+arg(f.DateTo)+"::date")
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		p := arg("%" + term + "%")
		where = append(where, fmt.Sprintf(
			"(d.demand_number ILIKE %[1]s OR d.item_name ILIKE %[1]s OR i.name ILIKE %[1]s OR i.code ILIKE %[1]s)", p))
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*)"+demandFrom+cond, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count pending demands: %w", err)
	}

	query := "SELECT" + demandColumns + demandFrom + cond +
		fmt.Sprintf(" ORDER BY d.required_date NULLS LAST, d.id LIMIT %s OFFSET %s",
			arg(perPage), arg((page-1)*perPage))
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending demands: %w", err)
	}
	demands, err := pgx.CollectRows(rows, scanDemand)
	if err != nil {
		return nil, fmt.Errorf("scan pending demands: %w", err)
	}
	return NewPage(demands, page, perPage, total), nil
}

func (s *demandService) GetDemands(ctx context.Context, ids []int) ([]Demand, error) {
	return loadDemands(ctx, s.pool, ids)
}

func loadDemands(ctx context.Context, q querier, ids []int) ([]Demand, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := q.Query(ctx, "SELECT"+demandColumns+demandFrom+" WHERE d.id = ANY($1) ORDER BY d.id", ids)
	if err != nil {
		return nil, fmt.Errorf("load demands: %w", err)
	}
	demands, err := pgx.CollectRows(rows, scanDemand)
	if err != nil {
		return nil, fmt.Errorf("scan demands: %w", err)
	}
	return demands, nil
}

// lockDemands takes row locks on the demands in id order, serialising
// concurrent saves that bind any of them until tx ends.
func lockDemands(ctx context.Context, tx pgx.Tx, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := tx.Query(ctx, "SELECT id FROM demands WHERE id = ANY($1) ORDER BY id FOR UPDATE", ids)
	if err != nil {
		return fmt.Errorf("lock demands: %w", err)
	}
	rows.Close()
	return rows.Err()
}

func scanDemand(row pgx.CollectableRow) (Demand, error) {
	var (
		d         Demand
		itemID    *int
		code      string
		name      string
		desc      string
		uom       string
		rate      decimal.Decimal
		inventory bool
		dtype     string
	)
	err := row.Scan(
		&d.ID, &d.DemandNumber, &dtype, &d.LocationID, &d.LocationName,
		&itemID, &code, &name, &desc, &uom, &rate, &inventory,
		&d.ItemName, &d.ItemCode, &d.ItemDescription, &d.ItemUOM, &d.Rate,
		&d.ApprovedQuantity, &d.QuantityRemaining, &d.RequiredDate,
	)
	if err != nil {
		return d, err
	}
	d.Type = DemandType(dtype)
	if itemID != nil {
		if inventory {
			d.Item = InventoryItem{ID: *itemID, Code: code, Name: name, Description: desc, UOM: uom, Rate: rate}
		} else {
			d.Item = NonInventoryItem{ID: *itemID, Code: code, Name: name, Description: desc, UOM: uom}
		}
	}
	return d, nil
}
