package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/csae99/ayur-sub001/internal/domain"
)

const orderColumns = `id, item_id, user_id, quantity, order_date, order_status,
	tracking_number, shipped_at, delivered_at, estimated_delivery,
	coupon_code, discount_amount, final_amount,
	payment_intent_id, payment_id, created_at, updated_at`

// TransitionUpdate carries the optional fields written together with a status
// change.
type TransitionUpdate struct {
	TrackingNumber string
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	Note           string
	ActorRole      domain.ActorRole
}

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// CreateCheckout inserts one order row per cart item and clears the user's
// cart in the same transaction. Either everything lands or nothing does; no
// order rows are left behind by a failed checkout.
func (s *OrderStore) CreateCheckout(ctx context.Context, userID int64, orders []*domain.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin checkout tx: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO orders (
			item_id, user_id, quantity, order_date, order_status,
			estimated_delivery, coupon_code, discount_amount, final_amount,
			payment_intent_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING id`

	for _, order := range orders {
		err := tx.QueryRowContext(ctx, insert,
			order.ItemID,
			order.UserID,
			order.Quantity,
			order.OrderDate,
			order.Status,
			order.EstimatedDelivery,
			order.CouponCode,
			order.DiscountAmount,
			order.FinalAmount,
			order.PaymentIntentID,
		).Scan(&order.ID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		if err := insertHistory(ctx, tx, order.ID, order.Status,
			"Order placed, awaiting payment", domain.RoleSystem); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout tx: %w", err)
	}
	return nil
}

func (s *OrderStore) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return s.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY order_date DESC, id DESC`,
		userID)
}

func (s *OrderStore) ListByIntent(ctx context.Context, intentID string) ([]*domain.Order, error) {
	return s.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1 ORDER BY id`,
		intentID)
}

// ListShippedBefore returns orders still at Shipped whose shipped timestamp is
// older than cutoff; feed for the auto-delivery sweep.
func (s *OrderStore) ListShippedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Order, error) {
	return s.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_status = $1 AND shipped_at <= $2 ORDER BY id`,
		domain.StatusShipped, cutoff)
}

func (s *OrderStore) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order row iteration: %w", err)
	}
	return orders, nil
}

// UpdateStatusCAS applies a transition with a compare-and-swap on the current
// status. A serialized loser observes zero affected rows and gets ErrConflict;
// the caller re-reads and retries. The history row commits atomically with the
// status write.
func (s *OrderStore) UpdateStatusCAS(ctx context.Context, id int64, from, to domain.OrderStatus, upd TransitionUpdate) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders SET
			order_status = $1,
			tracking_number = CASE WHEN $2 <> '' THEN $2 ELSE tracking_number END,
			shipped_at = COALESCE($3, shipped_at),
			delivered_at = COALESCE($4, delivered_at),
			updated_at = NOW()
		WHERE id = $5 AND order_status = $6`,
		to, upd.TrackingNumber, upd.ShippedAt, upd.DeliveredAt, id, from)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check order existence: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("order %d status moved past %d: %w", id, from, domain.ErrConflict)
	}

	if err := insertHistory(ctx, tx, id, to, upd.Note, upd.ActorRole); err != nil {
		return nil, err
	}

	order, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition tx: %w", err)
	}
	return order, nil
}

// FinalizeIntent confirms every pending order behind a payment intent and
// redeems the coupon, all in one transaction. The coupon increment is
// conditional on the usage limit so two racing finalizations can never redeem
// past it. Returns already=true when a previous verification has finalized
// the orders; the call is then a no-op.
func (s *OrderStore) FinalizeIntent(ctx context.Context, intentID, paymentID string) (orders []*domain.Order, already bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin finalize tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1 ORDER BY id FOR UPDATE`,
		intentID)
	if err != nil {
		return nil, false, fmt.Errorf("lock intent orders: %w", err)
	}
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			rows.Close()
			return nil, false, fmt.Errorf("scan intent order: %w", scanErr)
		}
		orders = append(orders, order)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("intent order iteration: %w", err)
	}

	if len(orders) == 0 {
		return nil, false, fmt.Errorf("payment intent %s: %w", intentID, domain.ErrNotFound)
	}

	pending := false
	couponCode := ""
	for _, order := range orders {
		if order.Status == domain.StatusPendingPayment {
			pending = true
		}
		if order.CouponCode != "" {
			couponCode = order.CouponCode
		}
	}
	if !pending {
		// Verified before; idempotent no-op.
		return orders, true, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET order_status = $1, payment_id = $2, updated_at = NOW()
		WHERE payment_intent_id = $3 AND order_status = $4`,
		domain.StatusConfirmed, paymentID, intentID, domain.StatusPendingPayment); err != nil {
		return nil, false, fmt.Errorf("confirm orders: %w", err)
	}

	note := fmt.Sprintf("Payment verified (payment %s)", paymentID)
	for _, order := range orders {
		if order.Status != domain.StatusPendingPayment {
			continue
		}
		if err := insertHistory(ctx, tx, order.ID, domain.StatusConfirmed, note, domain.RoleSystem); err != nil {
			return nil, false, err
		}
		order.Status = domain.StatusConfirmed
		order.PaymentID = paymentID
	}

	if couponCode != "" {
		result, err := tx.ExecContext(ctx, `
			UPDATE coupons SET used_count = used_count + 1
			WHERE code = $1 AND is_active
			  AND (usage_limit IS NULL OR used_count < usage_limit)`,
			couponCode)
		if err != nil {
			return nil, false, fmt.Errorf("redeem coupon: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, false, err
		}
		if affected == 0 {
			return nil, false, domain.NewCouponError(couponCode, domain.CouponUsageExceeded,
				"coupon usage limit reached before payment completed")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit finalize tx: %w", err)
	}
	return orders, false, nil
}

func (s *OrderStore) GetHistory(ctx context.Context, orderID int64) ([]*domain.StatusHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, status, status_name, note, actor_role, created_at
		FROM order_status_history WHERE order_id = $1 ORDER BY created_at, id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.StatusHistoryEntry
	for rows.Next() {
		entry := &domain.StatusHistoryEntry{}
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.Status, &entry.Label,
			&entry.Note, &entry.ActorRole, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// StatusStat is one row of the fulfiller-facing order summary.
type StatusStat struct {
	Status  domain.OrderStatus `json:"status"`
	Label   string             `json:"status_name"`
	Count   int64              `json:"count"`
	Revenue decimal.Decimal    `json:"revenue"`
}

func (s *OrderStore) Stats(ctx context.Context) ([]*StatusStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_status, COUNT(id), COALESCE(SUM(final_amount), 0)
		FROM orders GROUP BY order_status ORDER BY order_status`)
	if err != nil {
		return nil, fmt.Errorf("query order stats: %w", err)
	}
	defer rows.Close()

	var stats []*StatusStat
	for rows.Next() {
		stat := &StatusStat{}
		if err := rows.Scan(&stat.Status, &stat.Count, &stat.Revenue); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stat.Label = stat.Status.Label()
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func insertHistory(ctx context.Context, tx *sql.Tx, orderID int64, status domain.OrderStatus, note string, actor domain.ActorRole) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, status_name, note, actor_role, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		orderID, status, status.Label(), note, actor); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.ItemID,
		&order.UserID,
		&order.Quantity,
		&order.OrderDate,
		&order.Status,
		&order.TrackingNumber,
		&order.ShippedAt,
		&order.DeliveredAt,
		&order.EstimatedDelivery,
		&order.CouponCode,
		&order.DiscountAmount,
		&order.FinalAmount,
		&order.PaymentIntentID,
		&order.PaymentID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}
