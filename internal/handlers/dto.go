package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/csae99/ayur-sub001/internal/domain"
)

type CheckoutRequest struct {
	CouponCode string `json:"coupon_code"`
}

type VerifyPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentID       string `json:"payment_id"`
	Signature       string `json:"signature"`
}

type TransitionRequest struct {
	Status         int    `json:"status"`
	TrackingNumber string `json:"tracking_number"`
}

type AddCartItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type SetCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyCouponRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type ApplyCouponResponse struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
	Payable  decimal.Decimal `json:"payable"`
}

type CreateCouponRequest struct {
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	MaxDiscount    decimal.Decimal `json:"max_discount"`
	UsageLimit     *int            `json:"usage_limit"`
	ExpiresAt      *time.Time      `json:"expires_at"`
}

type OrderResponse struct {
	ID                int64           `json:"id"`
	ItemID            int64           `json:"item_id"`
	UserID            int64           `json:"user_id"`
	Quantity          int             `json:"quantity"`
	OrderDate         time.Time       `json:"order_date"`
	Status            int             `json:"status"`
	StatusName        string          `json:"status_name"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	ShippedAt         *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time      `json:"delivered_at,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	CouponCode        string          `json:"coupon_code,omitempty"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	FinalAmount       decimal.Decimal `json:"final_amount"`
	PaymentIntentID   string          `json:"payment_intent_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func mapOrder(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                order.ID,
		ItemID:            order.ItemID,
		UserID:            order.UserID,
		Quantity:          order.Quantity,
		OrderDate:         order.OrderDate,
		Status:            int(order.Status),
		StatusName:        order.Status.Label(),
		TrackingNumber:    order.TrackingNumber,
		ShippedAt:         order.ShippedAt,
		DeliveredAt:       order.DeliveredAt,
		EstimatedDelivery: order.EstimatedDelivery,
		CouponCode:        order.CouponCode,
		DiscountAmount:    order.DiscountAmount,
		FinalAmount:       order.FinalAmount,
		PaymentIntentID:   order.PaymentIntentID,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

func mapOrders(orders []*domain.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = mapOrder(order)
	}
	return responses
}

type OrderDetailResponse struct {
	Order   OrderResponse                `json:"order"`
	History []*domain.StatusHistoryEntry `json:"history"`
}
