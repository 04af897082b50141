package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/csae99/ayur-sub001/internal/domain"
)

const couponColumns = `id, code, discount_type, discount_value, min_order_value,
	max_discount, expiry_date, usage_limit, used_count, is_active, created_at`

type CouponStore struct {
	db *sql.DB
}

func NewCouponStore(db *sql.DB) *CouponStore {
	return &CouponStore{db: db}
}

func (s *CouponStore) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1`,
		domain.NormalizeCouponCode(code))
	c, err := scanCoupon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("coupon %s: %w", code, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query coupon by code: %w", err)
	}
	return c, nil
}

func (s *CouponStore) Create(ctx context.Context, c *domain.Coupon) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO coupons (
			code, discount_type, discount_value, min_order_value, max_discount,
			expiry_date, usage_limit, used_count, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, NOW())
		RETURNING id`,
		c.Code, c.DiscountType, c.DiscountValue, c.MinOrderValue, c.MaxDiscount,
		c.ExpiryDate, c.UsageLimit, c.IsActive,
	).Scan(&c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("coupon code %s already exists: %w", c.Code, domain.ErrConflict)
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

func (s *CouponStore) List(ctx context.Context) ([]*domain.Coupon, error) {
	return s.list(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
}

func (s *CouponStore) ListAvailable(ctx context.Context, now time.Time) ([]*domain.Coupon, error) {
	return s.list(ctx, `
		SELECT `+couponColumns+` FROM coupons
		WHERE is_active
		  AND (expiry_date IS NULL OR expiry_date > $1)
		  AND (usage_limit IS NULL OR used_count < usage_limit)
		ORDER BY discount_value DESC`, now)
}

func (s *CouponStore) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE coupons SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("update coupon active flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("coupon %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *CouponStore) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Coupon, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon row: %w", err)
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func scanCoupon(row rowScanner) (*domain.Coupon, error) {
	c := &domain.Coupon{}
	var usageLimit sql.NullInt64
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinOrderValue,
		&c.MaxDiscount,
		&c.ExpiryDate,
		&usageLimit,
		&c.UsedCount,
		&c.IsActive,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if usageLimit.Valid {
		limit := int(usageLimit.Int64)
		c.UsageLimit = &limit
	}
	return c, nil
}
