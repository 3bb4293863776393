package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type lookupService struct {
	pool *pgxpool.Pool
}

// NewLookupService constructs a LookupService backed by PostgreSQL.
func NewLookupService(pool *pgxpool.Pool) LookupService {
	return &lookupService{pool: pool}
}

// Vendors returns all active vendors, ordered by name.
func (s *lookupService) Vendors(ctx context.Context) ([]Vendor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, contact_person, email, phone, address,
		       payment_terms_days, is_active
		FROM vendors
		WHERE is_active = true
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("get vendors: %w", err)
	}
	defer rows.Close()

	var vendors []Vendor
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(
			&v.ID, &v.Code, &v.Name,
			&v.ContactPerson, &v.Email, &v.Phone, &v.Address,
			&v.PaymentTermsDays, &v.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendors: %w", err)
	}
	return vendors, nil
}

// Locations returns all active locations, ordered by name.
func (s *lookupService) Locations(ctx context.Context) ([]Location, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, code, name, is_active FROM locations WHERE is_active = true ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("get locations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Location, error) {
		var l Location
		err := row.Scan(&l.ID, &l.Code, &l.Name, &l.IsActive)
		return l, err
	})
}

// Units returns the active units of measure, ordered by code.
func (s *lookupService) Units(ctx context.Context) ([]Unit, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, code, name, is_active FROM units WHERE is_active = true ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("get units: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Unit, error) {
		var u Unit
		err := row.Scan(&u.ID, &u.Code, &u.Name, &u.IsActive)
		return u, err
	})
}

// Items returns the active item master, ordered by code.
func (s *lookupService) Items(ctx context.Context) ([]Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, uom, rate, is_inventory, is_active
		FROM items
		WHERE is_active = true
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	return pgx.CollectRows(rows, scanItem)
}

func (s *lookupService) ItemsByID(ctx context.Context, ids []int) (map[int]Item, error) {
	return loadItems(ctx, s.pool, ids)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func loadItems(ctx context.Context, q querier, ids []int) (map[int]Item, error) {
	if len(ids) == 0 {
		return map[int]Item{}, nil
	}
	rows, err := q.Query(ctx, `
		SELECT id, code, name, uom, rate, is_inventory, is_active
		FROM items
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	return ItemIndex(items), nil
}

func scanItem(row pgx.CollectableRow) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Code, &it.Name, &it.UOM, &it.Rate, &it.Inventory, &it.IsActive)
	return it, err
}
