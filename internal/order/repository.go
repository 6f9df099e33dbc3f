package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListActive(ctx context.Context, statuses []Status, todayOnly bool) ([]Order, error)
	ListRecent(ctx context.Context, limit int) ([]Summary, error)
	UpdateStatus(ctx context.Context, id int64, newStatus Status) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `
	o.id, o.user_id, o.status, o.total_amount,
	o.shipping_full_name, o.shipping_phone, o.shipping_address,
	o.shipping_city, o.shipping_zip_code, o.shipping_country,
	u.name, o.created_at, o.updated_at
`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.TotalAmount,
		&o.ShippingDetails.FullName,
		&o.ShippingDetails.Phone,
		&o.ShippingDetails.Address,
		&o.ShippingDetails.City,
		&o.ShippingDetails.ZipCode,
		&o.ShippingDetails.Country,
		&o.CustomerName,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = $1
	`

	var o Order
	err := scanOrder(r.db.QueryRow(ctx, query, id), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %d: %w", id, err)
	}

	return &o, nil
}

func (r *postgresRepository) ListActive(ctx context.Context, statuses []Status, todayOnly bool) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
	`

	// An empty status list means no status filter at all.
	var args []interface{}
	where := make([]string, 0, 2)
	if len(statuses) > 0 {
		raw := make([]string, 0, len(statuses))
		for _, s := range statuses {
			raw = append(raw, string(s))
		}
		args = append(args, raw)
		where = append(where, fmt.Sprintf("o.status = ANY($%d)", len(args)))
	}
	if todayOnly {
		where = append(where, "o.created_at >= CURRENT_DATE")
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY o.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query active orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating active orders: %w", err)
	}

	return orders, nil
}

func (r *postgresRepository) ListRecent(ctx context.Context, limit int) ([]Summary, error) {
	query := `
		SELECT o.id, u.name, o.status, o.total_amount, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query recent orders: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var s Summary
		err := rows.Scan(&s.ID, &s.CustomerName, &s.Status, &s.TotalAmount, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan recent order: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating recent orders: %w", err)
	}

	return summaries, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id int64, newStatus Status) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), id)
	if err != nil {
		log.Error().Err(err).Int64("order_id", id).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update order status %d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Warn().Int64("order_id", id).Str("new_status", string(newStatus)).Msg("repository: order not found for status update")
		return ErrNotFound
	}

	return nil
}
