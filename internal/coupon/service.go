package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/csae99/ayur-sub001/internal/domain"
)

// AdminStore adds the write side used by coupon administration.
type AdminStore interface {
	Store
	Create(ctx context.Context, c *domain.Coupon) error
	List(ctx context.Context) ([]*domain.Coupon, error)
	ListAvailable(ctx context.Context, now time.Time) ([]*domain.Coupon, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type Service struct {
	store AdminStore
}

func NewService(store AdminStore) *Service {
	return &Service{store: store}
}

type CreateRequest struct {
	Code          string
	DiscountType  domain.DiscountType
	DiscountValue decimal.Decimal
	MinOrderValue decimal.Decimal
	MaxDiscount   decimal.Decimal
	ExpiryDate    *time.Time
	UsageLimit    *int
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Coupon, error) {
	code := domain.NormalizeCouponCode(req.Code)
	if len(code) < 3 || len(code) > 50 {
		return nil, fmt.Errorf("coupon code must be 3-50 characters: %w", domain.ErrValidation)
	}

	switch req.DiscountType {
	case domain.DiscountPercentage:
		if req.DiscountValue.IsNegative() || req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("percentage discount must be between 0 and 100: %w", domain.ErrValidation)
		}
	case domain.DiscountFixed:
		if req.DiscountValue.IsNegative() {
			return nil, fmt.Errorf("fixed discount must not be negative: %w", domain.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("discount_type must be either %q or %q: %w", domain.DiscountPercentage, domain.DiscountFixed, domain.ErrValidation)
	}

	c := &domain.Coupon{
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinOrderValue: req.MinOrderValue,
		MaxDiscount:   req.MaxDiscount,
		ExpiryDate:    req.ExpiryDate,
		UsageLimit:    req.UsageLimit,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Coupon, error) {
	return s.store.List(ctx)
}

// ListAvailable returns coupons a customer could currently redeem: active,
// unexpired and under their usage limit.
func (s *Service) ListAvailable(ctx context.Context) ([]*domain.Coupon, error) {
	return s.store.ListAvailable(ctx, time.Now())
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.store.SetActive(ctx, id, active)
}
