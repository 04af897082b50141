package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires every handler under /api/v1.
func RegisterRoutes(app *fiber.App, checkout *CheckoutHandler, orders *OrderHandler, coupons *CouponHandler, carts *CartHandler) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	cart := api.Group("/cart")
	cart.Get("/", carts.GetCart)
	cart.Post("/items", carts.AddItem)
	cart.Put("/items/:itemId", carts.SetItemQuantity)
	cart.Delete("/items/:itemId", carts.RemoveItem)
	cart.Delete("/", carts.Clear)

	api.Post("/checkout", checkout.Checkout)
	api.Post("/checkout/verify", checkout.VerifyPayment)

	ord := api.Group("/orders")
	ord.Get("/", orders.ListMyOrders)
	ord.Get("/stats", orders.Stats)
	ord.Get("/:id", orders.GetOrder)
	ord.Put("/:id/status", orders.UpdateStatus)
	ord.Post("/:id/cancel", orders.Cancel)

	coup := api.Group("/coupons")
	coup.Get("/available", coupons.ListAvailable)
	coup.Post("/apply", coupons.Apply)
	coup.Get("/", coupons.List)
	coup.Post("/", coupons.Create)
	coup.Put("/:id/active", coupons.SetActive)

	app.Use("*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})
}
