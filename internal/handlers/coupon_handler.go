package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/csae99/ayur-sub001/internal/coupon"
	"github.com/csae99/ayur-sub001/internal/domain"
	"github.com/csae99/ayur-sub001/internal/httpx"
)

type CouponHandler struct {
	couponService *coupon.Service
	validator     *coupon.Validator
}

func NewCouponHandler(couponService *coupon.Service, validator *coupon.Validator) *CouponHandler {
	return &CouponHandler{couponService: couponService, validator: validator}
}

// Apply validates a coupon against a subtotal and quotes the discount it
// would grant. Validation only; no use is consumed until a paid checkout
// finalizes.
func (h *CouponHandler) Apply(c *fiber.Ctx) error {
	var request ApplyCouponRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.Code == "" {
		return httpx.BadRequestResponse(c, "coupon code is required", nil)
	}
	if request.Subtotal.IsNegative() {
		return httpx.BadRequestResponse(c, "subtotal must not be negative", nil)
	}

	discount, applied, err := h.validator.Validate(c.Context(), request.Code, request.Subtotal, time.Now())
	if err != nil {
		return renderError(c, err)
	}

	return httpx.SuccessResponse(c, "Coupon applied successfully", ApplyCouponResponse{
		Code:     applied.Code,
		Discount: discount,
		Payable:  request.Subtotal.Sub(discount),
	})
}

func (h *CouponHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}
	if actor.Role != domain.RoleFulfiller {
		return httpx.ForbiddenResponse(c, "Not allowed for this actor")
	}

	var request CreateCouponRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	created, err := h.couponService.Create(c.Context(), coupon.CreateRequest{
		Code:          request.Code,
		DiscountType:  domain.DiscountType(request.DiscountType),
		DiscountValue: request.DiscountValue,
		MinOrderValue: request.MinOrderAmount,
		MaxDiscount:   request.MaxDiscount,
		ExpiryDate:    request.ExpiresAt,
		UsageLimit:    request.UsageLimit,
	})
	if err != nil {
		return renderError(c, err)
	}
	return httpx.CreatedResponse(c, "Coupon created successfully", created)
}

func (h *CouponHandler) List(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}
	if actor.Role != domain.RoleFulfiller {
		return httpx.ForbiddenResponse(c, "Not allowed for this actor")
	}

	coupons, err := h.couponService.List(c.Context())
	if err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Coupons retrieved successfully", coupons)
}

// ListAvailable returns the coupons a customer may still redeem.
func (h *CouponHandler) ListAvailable(c *fiber.Ctx) error {
	coupons, err := h.couponService.ListAvailable(c.Context())
	if err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Coupons retrieved successfully", coupons)
}

func (h *CouponHandler) SetActive(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}
	if actor.Role != domain.RoleFulfiller {
		return httpx.ForbiddenResponse(c, "Not allowed for this actor")
	}

	couponID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid coupon ID", nil)
	}

	var request struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	if err := h.couponService.SetActive(c.Context(), couponID, request.IsActive); err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Coupon updated successfully", nil)
}
