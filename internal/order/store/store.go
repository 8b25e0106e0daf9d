package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dermanow/dermanow/internal/identity"
	"github.com/dermanow/dermanow/internal/order"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const selectOrderColumns = `
	id, charity_address, vendor_address, fund_source, created_by, status,
	total_price, created_at, updated_at
`

func scanOrder(s scanner) (*order.Order, error) {
	var (
		o                   order.Order
		createdBy, statusSt string
		updatedAt           sql.NullTime
	)

	if err := s.Scan(
		&o.ID, &o.CharityAddress, &o.VendorAddress, &o.FundSource, &createdBy, &statusSt,
		&o.TotalPrice, &o.CreatedAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	o.CreatedBy = identity.Role(createdBy)
	o.Status = order.Status(statusSt)

	if updatedAt.Valid {
		o.UpdatedAt = &updatedAt.Time
	}

	return &o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO purchase_orders (charity_address, vendor_address, fund_source, created_by, status, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		o.CharityAddress,
		o.VendorAddress,
		o.FundSource,
		o.CreatedBy,
		o.Status,
		o.TotalPrice,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating purchase order: %w", err)
	}

	if err := insertItems(ctx, dbTx, o.ID, o.Items); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func insertItems(ctx context.Context, dbTx *sql.Tx, id uuid.UUID, items []order.LineItem) error {
	query := `
		INSERT INTO purchase_order_items (order_id, position, name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`

	for i, it := range items {
		if _, err := dbTx.ExecContext(ctx, query, id, i, it.Name, it.Quantity, it.UnitPrice); err != nil {
			return fmt.Errorf("inserting line item: %w", err)
		}
	}

	return nil
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM purchase_orders WHERE id = $1`

	o, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("getting purchase order: %w", err)
	}

	if err := loadItems(ctx, s.db, []*order.Order{o}); err != nil {
		return nil, err
	}

	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter order.ListFilter) ([]*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM purchase_orders WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Party != "" {
		query += fmt.Sprintf(" AND (charity_address = $%d OR vendor_address = $%d)", argIdx, argIdx)

		args = append(args, filter.Party)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.CreatedBy != nil {
		query += fmt.Sprintf(" AND created_by = $%d", argIdx)

		args = append(args, *filter.CreatedBy)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning purchase order: %w", err)
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating purchase orders: %w", err)
	}

	if err := loadItems(ctx, s.db, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func loadItems(ctx context.Context, q queryer, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*order.Order, len(orders))
	ids := make([]string, 0, len(orders))

	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID.String())
	}

	query := `
		SELECT order_id, name, quantity, unit_price
		FROM purchase_order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`

	rows, err := q.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("loading line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id uuid.UUID
			it order.LineItem
		)

		if err := rows.Scan(&id, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return fmt.Errorf("scanning line item: %w", err)
		}

		if o, ok := byID[id]; ok {
			o.Items = append(o.Items, it)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating line items: %w", err)
	}

	return nil
}

func (s *Store) ReplaceItems(ctx context.Context, id uuid.UUID, items []order.LineItem, total int64) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `
		UPDATE purchase_orders
		SET total_price = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, total, id, order.StatusPending)
	if err != nil {
		return fmt.Errorf("updating purchase order total: %w", err)
	}

	if err := expectOneRow(res); err != nil {
		return err
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM purchase_order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("deleting line items: %w", err)
	}

	if err := insertItems(ctx, dbTx, id, items); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// ApplyTransitions runs a compare-and-set on the status so that two
// concurrent actions on the same order cannot both succeed.
func (s *Store) ApplyTransitions(ctx context.Context, id uuid.UUID, steps []order.Transition) error {
	if len(steps) == 0 {
		return nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, `
		UPDATE purchase_orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, steps[len(steps)-1].To, steps[len(steps)-1].At, id, steps[0].From)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	if err := expectOneRow(res); err != nil {
		return err
	}

	query := `
		INSERT INTO purchase_order_history (order_id, from_status, to_status, action, actor_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, st := range steps {
		if _, err := dbTx.ExecContext(ctx, query, id, st.From, st.To, st.Action, st.Actor, st.At); err != nil {
			return fmt.Errorf("recording transition: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return order.ErrConflict
	}

	return nil
}

func (s *Store) ListHistory(ctx context.Context, id uuid.UUID) ([]order.Transition, error) {
	query := `
		SELECT from_status, to_status, action, actor_address, created_at
		FROM purchase_order_history
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var history []order.Transition

	for rows.Next() {
		var (
			t             order.Transition
			from, to, act string
		)

		if err := rows.Scan(&from, &to, &act, &t.Actor, &t.At); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}

		t.OrderID = id
		t.From = order.Status(from)
		t.To = order.Status(to)
		t.Action = order.Action(act)

		history = append(history, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	return history, nil
}
