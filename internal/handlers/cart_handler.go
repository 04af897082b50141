package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/csae99/ayur-sub001/internal/httpx"
	"github.com/csae99/ayur-sub001/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}

	cart, err := h.cartService.GetCart(c.Context(), actor.UserID)
	if err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Cart retrieved successfully", cart)
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}

	var request AddCartItemRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}
	if request.ItemID <= 0 || request.Quantity <= 0 {
		return httpx.BadRequestResponse(c, "item_id and a positive quantity are required", nil)
	}

	cart, err := h.cartService.AddItem(c.Context(), actor.UserID, request.ItemID, request.Quantity)
	if err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Item added to cart", cart)
}

func (h *CartHandler) SetItemQuantity(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}

	itemID, err := strconv.ParseInt(c.Params("itemId"), 10, 64)
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid item ID", nil)
	}

	var request SetCartQuantityRequest
	if err := c.BodyParser(&request); err != nil {
		return httpx.BadRequestResponse(c, "Invalid request body", map[string]interface{}{
			"parse_error": err.Error(),
		})
	}

	cart, err := h.cartService.SetItemQuantity(c.Context(), actor.UserID, itemID, request.Quantity)
	if err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Cart updated successfully", cart)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}

	itemID, err := strconv.ParseInt(c.Params("itemId"), 10, 64)
	if err != nil {
		return httpx.BadRequestResponse(c, "Invalid item ID", nil)
	}

	cart, err := h.cartService.RemoveItem(c.Context(), actor.UserID, itemID)
	if err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Item removed from cart", cart)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return renderError(c, err)
	}

	if err := h.cartService.Clear(c.Context(), actor.UserID); err != nil {
		return renderError(c, err)
	}
	return httpx.SuccessResponse(c, "Cart cleared", nil)
}
