package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/csae99/ayur-sub001/internal/clients"
	"github.com/csae99/ayur-sub001/internal/coupon"
	"github.com/csae99/ayur-sub001/internal/domain"
	"github.com/csae99/ayur-sub001/internal/gateway"
	"github.com/csae99/ayur-sub001/internal/messaging"
	"github.com/csae99/ayur-sub001/internal/pricing"
)

type CheckoutStore interface {
	CreateCheckout(ctx context.Context, userID int64, orders []*domain.Order) error
	ListByIntent(ctx context.Context, intentID string) ([]*domain.Order, error)
	FinalizeIntent(ctx context.Context, intentID, paymentID string) ([]*domain.Order, bool, error)
}

// CartProvider is the slice of CartService the orchestrator needs.
type CartProvider interface {
	GetCart(ctx context.Context, userID int64) (*domain.Cart, error)
	Invalidate(ctx context.Context, userID int64)
}

// CheckoutResult is what the customer takes to the payment page: the pending
// orders, the gateway intent to pay against, and the price breakdown.
type CheckoutResult struct {
	Orders    []*domain.Order   `json:"orders"`
	Intent    *gateway.Intent   `json:"payment_intent"`
	Breakdown pricing.Breakdown `json:"pricing"`
}

type VerifyResult struct {
	Orders           []*domain.Order `json:"orders"`
	AlreadyFinalized bool            `json:"already_finalized"`
}

// CheckoutService turns a cart into pending orders with a payment intent, and
// finalizes them once the gateway callback proves the payment.
type CheckoutService struct {
	store    CheckoutStore
	carts    CartProvider
	catalog  clients.CatalogClient
	coupons  *coupon.Validator
	gateway  gateway.PaymentGateway
	verifier *gateway.SignatureVerifier
	notifier Notifier
	events   EventPublisher
	currency string

	sideEffectTimeout time.Duration
}

func NewCheckoutService(
	store CheckoutStore,
	carts CartProvider,
	catalog clients.CatalogClient,
	coupons *coupon.Validator,
	pg gateway.PaymentGateway,
	verifier *gateway.SignatureVerifier,
	notifier Notifier,
	events EventPublisher,
	currency string,
) *CheckoutService {
	return &CheckoutService{
		store:             store,
		carts:             carts,
		catalog:           catalog,
		coupons:           coupons,
		gateway:           pg,
		verifier:          verifier,
		notifier:          notifier,
		events:            events,
		currency:          currency,
		sideEffectTimeout: 10 * time.Second,
	}
}

// Checkout prices the user's cart against live catalog data, applies the
// coupon if one is given, opens a payment intent for the grand total and
// persists one pending order per cart line. The cart is cleared in the same
// transaction that inserts the orders.
//
// The gateway intent is created before any row is written: a failed intent
// leaves no orders behind, while an intent nobody pays against simply
// expires at the gateway.
func (s *CheckoutService) Checkout(ctx context.Context, userID int64, couponCode string) (*CheckoutResult, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	// Catalog prices are authoritative; whatever the client displayed is
	// ignored.
	lineItems := make([]pricing.LineItem, 0, len(cart.Items))
	weights := make([]decimal.Decimal, 0, len(cart.Items))
	for _, ci := range cart.Items {
		item, err := s.catalog.GetItem(ctx, ci.ItemID)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", ci.ItemID, err)
		}
		lineItems = append(lineItems, pricing.LineItem{
			UnitPrice: item.UnitPrice,
			Quantity:  ci.Quantity,
		})
		weights = append(weights, item.UnitPrice.Mul(decimal.NewFromInt(int64(ci.Quantity))))
	}

	now := time.Now()
	breakdown := pricing.Compute(lineItems, decimal.Zero)

	discount := decimal.Zero
	var coup *domain.Coupon
	if couponCode != "" {
		discount, coup, err = s.coupons.Validate(ctx, couponCode, breakdown.Subtotal, now)
		if err != nil {
			return nil, err
		}
		breakdown = pricing.Compute(lineItems, discount)
	}

	intent, err := s.gateway.CreateIntent(ctx, breakdown.Total, s.currency, uuid.NewString())
	if err != nil {
		return nil, err
	}

	totalShares := pricing.Allocate(breakdown.Total, weights)
	discountShares := pricing.Allocate(breakdown.Discount, weights)
	eta := pricing.EstimateDelivery(now)

	orders := make([]*domain.Order, 0, len(cart.Items))
	for i, ci := range cart.Items {
		order := &domain.Order{
			ItemID:            ci.ItemID,
			UserID:            userID,
			Quantity:          ci.Quantity,
			OrderDate:         now,
			Status:            domain.StatusPendingPayment,
			EstimatedDelivery: &eta,
			DiscountAmount:    discountShares[i],
			FinalAmount:       totalShares[i],
			PaymentIntentID:   intent.ID,
		}
		if coup != nil {
			order.CouponCode = coup.Code
		}
		orders = append(orders, order)
	}

	if err := s.store.CreateCheckout(ctx, userID, orders); err != nil {
		return nil, err
	}
	s.carts.Invalidate(ctx, userID)

	return &CheckoutResult{Orders: orders, Intent: intent, Breakdown: breakdown}, nil
}

// VerifyPayment finalizes the orders behind a payment intent. The gateway
// signature is checked first and any failure stops everything: no status
// moves, the coupon counter stays put. A second callback for an intent that
// is already finalized is a no-op success.
func (s *CheckoutService) VerifyPayment(ctx context.Context, intentID, paymentID, signature string) (*VerifyResult, error) {
	if err := s.verifier.Verify(intentID, paymentID, signature); err != nil {
		return nil, err
	}

	orders, err := s.store.ListByIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("intent %s: %w", intentID, domain.ErrNotFound)
	}

	pending := false
	for _, o := range orders {
		if o.Status == domain.StatusPendingPayment {
			pending = true
			break
		}
	}
	if !pending {
		return &VerifyResult{Orders: orders, AlreadyFinalized: true}, nil
	}

	// Reprice against the live catalog before confirming. The discount is
	// the one locked in at checkout, so an expired coupon does not fail a
	// payment that was priced while it was valid.
	lineItems := make([]pricing.LineItem, 0, len(orders))
	storedDiscount := decimal.Zero
	storedTotal := decimal.Zero
	for _, o := range orders {
		item, err := s.catalog.GetItem(ctx, o.ItemID)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", o.ItemID, err)
		}
		lineItems = append(lineItems, pricing.LineItem{
			UnitPrice: item.UnitPrice,
			Quantity:  o.Quantity,
		})
		storedDiscount = storedDiscount.Add(o.DiscountAmount)
		storedTotal = storedTotal.Add(o.FinalAmount)
	}
	recomputed := pricing.Compute(lineItems, storedDiscount)
	if !recomputed.Total.Equal(storedTotal) {
		return nil, fmt.Errorf("stored %s, recomputed %s: %w",
			storedTotal.StringFixed(2), recomputed.Total.StringFixed(2), domain.ErrPriceMismatch)
	}

	finalized, already, err := s.store.FinalizeIntent(ctx, intentID, paymentID)
	if err != nil {
		return nil, err
	}
	if !already {
		s.fireConfirmationEffects(finalized)
	}
	return &VerifyResult{Orders: finalized, AlreadyFinalized: already}, nil
}

// fireConfirmationEffects runs the post-commit fanout for a finalized intent:
// customer notification, a bus event per order, and a best-effort stock
// decrement at the catalog.
func (s *CheckoutService) fireConfirmationEffects(orders []*domain.Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.sideEffectTimeout)
		defer cancel()

		for _, o := range orders {
			if s.notifier != nil {
				s.notifier.Notify(ctx, o, domain.StatusConfirmed)
			}
			if s.events != nil {
				if err := s.events.PublishStatusChanged(messaging.StatusEvent{
					OrderID:    o.ID,
					UserID:     o.UserID,
					FromStatus: domain.StatusPendingPayment,
					ToStatus:   domain.StatusConfirmed,
					ActorRole:  domain.RoleSystem,
				}); err != nil {
					log.Printf("status event publish failed for order %d: %v", o.ID, err)
				}
			}
			if err := s.catalog.DecrementStock(ctx, o.ItemID, o.Quantity); err != nil {
				log.Printf("stock decrement failed for item %d: %v", o.ItemID, err)
			}
		}
	}()
}
