package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/csae99/ayur-sub001/internal/domain"
)

// Store is the read side of coupon persistence needed for validation.
type Store interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

type Validator struct {
	store Store
}

func NewValidator(store Store) *Validator {
	return &Validator{store: store}
}

// Validate checks a coupon code against a subtotal and returns the discount
// it would grant. Validation alone never consumes a use; redemption happens
// inside the transaction that finalizes a paid checkout.
func (v *Validator) Validate(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, *domain.Coupon, error) {
	code = domain.NormalizeCouponCode(code)

	c, err := v.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return decimal.Zero, nil, domain.NewCouponError(code, domain.CouponNotFound, "invalid coupon code")
		}
		return decimal.Zero, nil, fmt.Errorf("coupon lookup: %w", err)
	}

	if !c.IsActive {
		return decimal.Zero, nil, domain.NewCouponError(code, domain.CouponNotFound, "this coupon is no longer active")
	}
	if c.IsExpired(now) {
		return decimal.Zero, nil, domain.NewCouponError(code, domain.CouponExpired, "this coupon has expired")
	}
	if c.IsExhausted() {
		return decimal.Zero, nil, domain.NewCouponError(code, domain.CouponUsageExceeded, "this coupon has reached its usage limit")
	}
	if subtotal.LessThan(c.MinOrderValue) {
		return decimal.Zero, nil, domain.NewCouponError(code, domain.CouponBelowMinimum,
			fmt.Sprintf("minimum order value of %s required to use this coupon", c.MinOrderValue.StringFixed(2)))
	}

	return c.Discount(subtotal), c, nil
}
