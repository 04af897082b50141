package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrIllegalTransition     = errors.New("illegal status transition")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("concurrent transition lost, re-read and retry")
	ErrMissingTrackingNumber = errors.New("tracking number required for shipping")
	ErrPriceMismatch         = errors.New("price mismatch at payment verification")
	ErrUpstreamUnavailable   = errors.New("upstream service unavailable")
	ErrInvalidSignature      = errors.New("invalid payment signature")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrValidation            = errors.New("validation failed")
)

type CouponReason string

const (
	CouponNotFound      CouponReason = "NOT_FOUND"
	CouponExpired       CouponReason = "EXPIRED"
	CouponBelowMinimum  CouponReason = "BELOW_MINIMUM"
	CouponUsageExceeded CouponReason = "USAGE_EXCEEDED"
)

// CouponError covers every way a coupon can be rejected. Validation never
// consumes a use; redemption failures surface the same error type.
type CouponError struct {
	Code    string
	Reason  CouponReason
	Message string
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("coupon %s: %s", e.Code, e.Message)
}

func NewCouponError(code string, reason CouponReason, message string) *CouponError {
	return &CouponError{Code: code, Reason: reason, Message: message}
}

func AsCouponError(err error) (*CouponError, bool) {
	var ce *CouponError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
