package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/washpay/internal/checkout/domain"
	"github.com/aussiebroadwan/washpay/internal/checkout/store"
	"github.com/aussiebroadwan/washpay/pkg/ipg"
)

type ordersRepo struct {
	q   dbtx
	now func() time.Time
}

const orderColumns = `id, kind, product_id, product_name, charge_total, currency, status,
	gateway_status, approval_code, fail_reason, created_at, updated_at, completed_at`

func (r *ordersRepo) CreateOrder(ctx context.Context, o domain.Order) error {
	created := o.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	status := o.Status
	if status == "" {
		status = domain.OrderPending
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO orders (id, kind, product_id, product_name, charge_total, currency, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, string(o.Kind), o.ProductID, o.ProductName, o.ChargeTotal, o.Currency, string(status),
		toMillis(created), toMillis(created),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *ordersRepo) GetOrderByID(ctx context.Context, id string) (domain.Order, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, mapNotFound(err)
	}
	return o, nil
}

func (r *ordersRepo) CompleteOrder(ctx context.Context, id string, res domain.OrderResult) error {
	completed := res.CompletedAt
	if completed.IsZero() {
		completed = r.now()
	}

	result, err := r.q.ExecContext(ctx, `
		UPDATE orders
		SET status = ?, gateway_status = ?, approval_code = ?, fail_reason = ?,
		    updated_at = ?, completed_at = ?
		WHERE id = ? AND status IN ('pending', 'abandoned')`,
		string(res.Status), res.GatewayStatus, res.ApprovalCode, res.FailReason,
		toMillis(completed), toMillis(completed), id,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Nothing changed: either the order is unknown or already completed.
	if _, err := r.GetOrderByID(ctx, id); err != nil {
		return err
	}
	return store.ErrOrderFinal
}

func (r *ordersRepo) AbandonStaleOrders(ctx context.Context, cutoff time.Time) (int64, error) {
	now := toMillis(r.now())
	result, err := r.q.ExecContext(ctx, `
		UPDATE orders SET status = 'abandoned', updated_at = ?, completed_at = ?
		WHERE status = 'pending' AND created_at < ?`,
		now, now, toMillis(cutoff),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanOrder(row *sql.Row) (domain.Order, error) {
	var (
		o                    domain.Order
		kind, status         string
		createdAt, updatedAt int64
		completedAt          sql.NullInt64
	)
	err := row.Scan(
		&o.ID, &kind, &o.ProductID, &o.ProductName, &o.ChargeTotal, &o.Currency, &status,
		&o.GatewayStatus, &o.ApprovalCode, &o.FailReason, &createdAt, &updatedAt, &completedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}

	o.Kind = ipg.ProductKind(kind)
	o.Status = domain.OrderStatus(status)
	o.CreatedAt = fromMillis(createdAt)
	o.UpdatedAt = fromMillis(updatedAt)
	o.CompletedAt = mapNullMillis(completedAt)
	return o, nil
}
