package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/csae99/ayur-sub001/internal/httpx"
	"github.com/csae99/ayur-sub001/internal/service"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout converts the caller's cart into pending orders plus a payment
// intent.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}

	var request CheckoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&request); err != nil {
			return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
				"parse_error": err.Error(),
			})
		}
	}

	result, err := h.checkoutService.Checkout(c.Context(), actor.UserID, request.CouponCode)
	if err != nil {
		return renderError(c, err)
	}
	return httpx.CreatedResponse(c, "Checkout created, awaiting payment", result)
}

// VerifyPayment is the gateway callback target. The signature proves the
// payment; a replayed callback succeeds without changing anything.
func (h *CheckoutHandler) VerifyPayment(c *fiber.Ctx) error {
	var request VerifyPaymentRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.PaymentIntentID == "" || request.PaymentID == "" || request.Signature == "" {
		return httpx.BadRequestResponse(c, "payment_intent_id, payment_id and signature are required", nil)
	}

	result, err := h.checkoutService.VerifyPayment(
		c.Context(), request.PaymentIntentID, request.PaymentID, request.Signature)
	if err != nil {
		return renderError(c, err)
	}

	message := "Payment verified, orders confirmed"
	if result.AlreadyFinalized {
		message = "Payment already verified"
	}
	return httpx.SuccessResponse(c, message, result)
}
