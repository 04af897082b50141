package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/csae99/ayur-sub001/internal/domain"
	"github.com/csae99/ayur-sub001/internal/httpx"
	"github.com/csae99/ayur-sub001/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}

	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	order, history, err := h.orderService.GetOrder(c.Context(), orderID, actor)
	if err != nil {
		return renderError(c, err)
	}

	return httpx.SuccessResponse(c, "Order retrieved successfully", OrderDetailResponse{
		Order:   mapOrder(order),
		History: history,
	})
}

func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}

	userID := actor.UserID
	if raw := c.Query("user_id"); raw != "" {
		userID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return httpx.BadRequestResponse(c, "Invalid user ID", nil)
		}
	}

	orders, err := h.orderService.ListUserOrders(c.Context(), userID, actor)
	if err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Orders retrieved successfully", mapOrders(orders))
}

// UpdateStatus applies one lifecycle transition. The request carries the
// target status; the service decides whether this actor may make that move
// from the order's current status.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}

	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	var request TransitionRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	order, err := h.orderService.RequestTransition(
		c.Context(), orderID, domain.OrderStatus(request.Status), actor, request.TrackingNumber)
	if err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Order status updated successfully", mapOrder(order))
}

// Cancel is sugar for a transition to Cancelled.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}

	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid order ID", map[string]interface{}{
			"order_id": c.Params("id"),
		})
	}

	order, err := h.orderService.RequestTransition(c.Context(), orderID, domain.StatusCancelled, actor, "")
	if err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Order cancelled successfully", mapOrder(order))
}

func (h *OrderHandler) Stats(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}
	if actor.Role == domain.RolePatient {
		return httpx.ForbiddenResponse(c, "Not allowed for this actor")
	}

	stats, err := h.orderService.Stats(c.Context())
	if err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Order stats retrieved successfully", stats)
}
