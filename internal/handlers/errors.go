package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/csae99/ayur-sub001/internal/domain"
	"github.com/csae99/ayur-sub001/internal/httpx"
)

// renderError maps domain errors onto the response envelope. Anything
// unrecognized is a 500 with the detail kept out of the body.
func renderError(c *fiber.Ctx, err error) error {
	if ce, ok := domain.AsCouponError(err); ok {
		return httpx.BadRequestResponse(c, ce.Message, map[string]interface{}{
			"coupon_code": ce.Code,
			"reason":      string(ce.Reason),
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return httpx.ErrorResponse(c, fiberErr.Code, statusCodeLabel(fiberErr.Code), fiberErr.Message, nil)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return httpx.NotFoundResponse(c, "Resource not found")
	case errors.Is(err, domain.ErrForbidden):
		return httpx.ForbiddenResponse(c, "Not allowed for this actor")
	case errors.Is(err, domain.ErrConflict):
		return httpx.ConflictResponse(c, "Order was updated concurrently, re-read and retry", nil)
	case errors.Is(err, domain.ErrIllegalTransition):
		return httpx.UnprocessableResponse(c, "Illegal status transition", map[string]interface{}{
			"detail": err.Error(),
		})
	case errors.Is(err, domain.ErrMissingTrackingNumber):
		return httpx.BadRequestResponse(c, "Tracking number is required for shipping", nil)
	case errors.Is(err, domain.ErrInvalidSignature):
		return httpx.BadRequestResponse(c, "Payment signature verification failed", nil)
	case errors.Is(err, domain.ErrPriceMismatch):
		return httpx.UnprocessableResponse(c, "Order amounts no longer match catalog pricing", nil)
	case errors.Is(err, domain.ErrValidation):
		return httpx.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, domain.ErrEmptyCart):
		return httpx.BadRequestResponse(c, "Cart is empty", nil)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return httpx.BadGatewayResponse(c, "Upstream service unavailable")
	}

	log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return httpx.InternalServerErrorResponse(c, "Internal server error", nil)
}

// statusCodeLabel turns an HTTP status into the envelope's error code,
// e.g. 405 becomes METHOD_NOT_ALLOWED.
func statusCodeLabel(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "INTERNAL_SERVER_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
