package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus int

const (
	StatusPendingPayment OrderStatus = iota // 0
	StatusConfirmed                         // 1
	StatusProcessing                        // 2
	StatusPacked                            // 3
	StatusShipped                           // 4
	StatusOutForDelivery                    // 5
	StatusDelivered                         // 6
	StatusCancelled                         // 7
	StatusReturned                          // 8
	StatusRefunded                          // 9
)

var statusLabels = map[OrderStatus]string{
	StatusPendingPayment: "Pending Payment",
	StatusConfirmed:      "Confirmed",
	StatusProcessing:     "Processing",
	StatusPacked:         "Packed",
	StatusShipped:        "Shipped",
	StatusOutForDelivery: "Out for Delivery",
	StatusDelivered:      "Delivered",
	StatusCancelled:      "Cancelled",
	StatusReturned:       "Returned",
	StatusRefunded:       "Refunded",
}

func (s OrderStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed. Returned (8)
// and Refunded (9) are reachable only through the out-of-band return flow and
// are never targets of a regular transition request.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// transitions is the legal transition table. Confirmation (0->1) happens only
// through verified payment; cancellation (->7) is allowed until the order has
// been handed to the carrier.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment: {StatusConfirmed},
	StatusConfirmed:      {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusPacked, StatusCancelled},
	StatusPacked:         {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is one purchased catalog line item with a lifecycle status. The
// platform models one item per order row, not a multi-item invoice.
type Order struct {
	ID                int64           `json:"id"`
	ItemID            int64           `json:"item_id"`
	UserID            int64           `json:"user_id"`
	Quantity          int             `json:"quantity"`
	OrderDate         time.Time       `json:"order_date"`
	Status            OrderStatus     `json:"status"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	ShippedAt         *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time      `json:"delivered_at,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	CouponCode        string          `json:"coupon_code,omitempty"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
	PaymentIntentID   string          `json:"payment_intent_id,omitempty"`
	PaymentID         string          `json:"payment_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// StatusHistoryEntry records one applied transition.
type StatusHistoryEntry struct {
	ID        int64       `json:"id"`
	OrderID   int64       `json:"order_id"`
	Status    OrderStatus `json:"status"`
	Label     string      `json:"status_name"`
	Note      string      `json:"note,omitempty"`
	ActorRole ActorRole   `json:"actor_role"`
	CreatedAt time.Time   `json:"created_at"`
}
