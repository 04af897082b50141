package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/csae99/ayur-sub001/internal/domain"
)

type ShippedLister interface {
	ListShippedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Order, error)
}

// DeliverySweeper walks shipped orders whose ship date is older than the
// configured window and marches them through out-for-delivery to delivered.
// It stands in for carrier webhooks in deployments that have none.
type DeliverySweeper struct {
	orders       ShippedLister
	svc          *OrderService
	deliverAfter time.Duration
	interval     time.Duration
}

func NewDeliverySweeper(orders ShippedLister, svc *OrderService, deliverAfter, interval time.Duration) *DeliverySweeper {
	return &DeliverySweeper{
		orders:       orders,
		svc:          svc,
		deliverAfter: deliverAfter,
		interval:     interval,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *DeliverySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("Delivery sweeper started (window %s, every %s)", w.deliverAfter, w.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("Delivery sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep performs one pass. Conflicts are expected when a fulfiller updates
// the same order concurrently; the order is simply picked up again next
// round.
func (w *DeliverySweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.deliverAfter)
	orders, err := w.orders.ListShippedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("Delivery sweep query failed: %v", err)
		return
	}

	actor := domain.Actor{Role: domain.RoleSystem}
	for _, o := range orders {
		if _, err := w.svc.RequestTransition(ctx, o.ID, domain.StatusOutForDelivery, actor, ""); err != nil {
			if !errors.Is(err, domain.ErrConflict) {
				log.Printf("Delivery sweep: order %d to out-for-delivery failed: %v", o.ID, err)
			}
			continue
		}
		if _, err := w.svc.RequestTransition(ctx, o.ID, domain.StatusDelivered, actor, ""); err != nil {
			if !errors.Is(err, domain.ErrConflict) {
				log.Printf("Delivery sweep: order %d to delivered failed: %v", o.ID, err)
			}
		}
	}
}
