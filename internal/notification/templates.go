package notification

import (
	"fmt"

	"github.com/csae99/ayur-sub001/internal/domain"
)

var statusMessages = map[domain.OrderStatus]string{
	domain.StatusConfirmed:      "Your order has been confirmed and will be processed soon.",
	domain.StatusProcessing:     "We are currently processing your order.",
	domain.StatusPacked:         "Your order has been packed and is ready for shipment.",
	domain.StatusShipped:        "Your order has been shipped! Track it using the tracking number above.",
	domain.StatusOutForDelivery: "Your order is out for delivery and will arrive soon.",
	domain.StatusDelivered:      "Your order has been successfully delivered. Thank you for your order!",
	domain.StatusCancelled:      "Your order has been cancelled.",
}

func statusMessage(status domain.OrderStatus) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "Your order status has been updated."
}

func renderSubject(order *domain.Order, status domain.OrderStatus) string {
	return fmt.Sprintf("Order #%d - %s", order.ID, status.Label())
}

func renderBody(name string, order *domain.Order, status domain.OrderStatus) string {
	body := fmt.Sprintf("Hi %s,\n\nOrder #%d is now %s.\n%s",
		name, order.ID, status.Label(), statusMessage(status))

	if status == domain.StatusShipped && order.TrackingNumber != "" {
		body += fmt.Sprintf("\nTracking number: %s", order.TrackingNumber)
	}
	if order.EstimatedDelivery != nil && !status.IsTerminal() {
		body += fmt.Sprintf("\nEstimated delivery: %s", order.EstimatedDelivery.Format("Monday, Jan 2"))
	}
	return body
}
