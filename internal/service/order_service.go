package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/csae99/ayur-sub001/internal/domain"
	"github.com/csae99/ayur-sub001/internal/messaging"
	"github.com/csae99/ayur-sub001/internal/repository"
)

// OrderStore is the persistence surface the state machine needs. The SQL
// implementation lives in internal/repository; tests supply an in-memory one
// with the same compare-and-swap semantics.
type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	UpdateStatusCAS(ctx context.Context, id int64, from, to domain.OrderStatus, upd repository.TransitionUpdate) (*domain.Order, error)
	GetHistory(ctx context.Context, orderID int64) ([]*domain.StatusHistoryEntry, error)
	Stats(ctx context.Context) ([]*repository.StatusStat, error)
}

// Notifier informs the customer about a committed transition. Implementations
// never return an error; failures are their problem to log.
type Notifier interface {
	Notify(ctx context.Context, order *domain.Order, status domain.OrderStatus)
}

// EventPublisher announces committed transitions on the message bus.
type EventPublisher interface {
	PublishStatusChanged(event messaging.StatusEvent) error
}

type OrderService struct {
	store             OrderStore
	notifier          Notifier
	events            EventPublisher
	sideEffectTimeout time.Duration
}

func NewOrderService(store OrderStore, notifier Notifier, events EventPublisher) *OrderService {
	return &OrderService{
		store:             store,
		notifier:          notifier,
		events:            events,
		sideEffectTimeout: 10 * time.Second,
	}
}

// RequestTransition validates and applies one status change. Checks run in
// order: existence, transition table, actor policy, tracking number. The
// write is a compare-and-swap against the status the caller saw, so two
// racing requests on one order serialize: one commits, the other gets
// ErrConflict and must re-read.
//
// Side effects (notification, bus event) fire only after the status write is
// durably committed and are best effort: their failure never rolls back the
// transition.
func (s *OrderService) RequestTransition(ctx context.Context, orderID int64, requested domain.OrderStatus, actor domain.Actor, trackingNumber string) (*domain.Order, error) {
	if !requested.Valid() {
		return nil, fmt.Errorf("unknown status %d: %w", requested, domain.ErrIllegalTransition)
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(requested) {
		return nil, fmt.Errorf("%s -> %s: %w", order.Status.Label(), requested.Label(), domain.ErrIllegalTransition)
	}
	if !actor.MayTransition(requested) {
		return nil, fmt.Errorf("role %s may not set status %s: %w", actor.Role, requested.Label(), domain.ErrForbidden)
	}
	if actor.Role == domain.RolePatient && order.UserID != actor.UserID {
		return nil, fmt.Errorf("order %d belongs to another user: %w", orderID, domain.ErrForbidden)
	}
	if requested == domain.StatusShipped && trackingNumber == "" && order.TrackingNumber == "" {
		return nil, domain.ErrMissingTrackingNumber
	}

	upd := repository.TransitionUpdate{
		TrackingNumber: trackingNumber,
		Note:           fmt.Sprintf("Status updated to %s", requested.Label()),
		ActorRole:      actor.Role,
	}
	now := time.Now()
	switch requested {
	case domain.StatusShipped:
		upd.ShippedAt = &now
	case domain.StatusDelivered:
		upd.DeliveredAt = &now
	case domain.StatusCancelled:
		upd.Note = "Order cancelled"
	}

	updated, err := s.store.UpdateStatusCAS(ctx, orderID, order.Status, requested, upd)
	if err != nil {
		return nil, err
	}

	s.fireSideEffects(updated, order.Status, requested, actor.Role)
	return updated, nil
}

// GetOrder returns one order with its transition history. Patients see only
// their own orders.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64, actor domain.Actor) (*domain.Order, []*domain.StatusHistoryEntry, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Role == domain.RolePatient && order.UserID != actor.UserID {
		return nil, nil, fmt.Errorf("order %d belongs to another user: %w", orderID, domain.ErrForbidden)
	}

	history, err := s.store.GetHistory(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, history, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, actor domain.Actor) ([]*domain.Order, error) {
	if actor.Role == domain.RolePatient && actor.UserID != userID {
		return nil, fmt.Errorf("orders belong to another user: %w", domain.ErrForbidden)
	}
	return s.store.ListByUser(ctx, userID)
}

func (s *OrderService) Stats(ctx context.Context) ([]*repository.StatusStat, error) {
	return s.store.Stats(ctx)
}

func (s *OrderService) fireSideEffects(order *domain.Order, from, to domain.OrderStatus, actor domain.ActorRole) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.sideEffectTimeout)
		defer cancel()

		if s.notifier != nil {
			s.notifier.Notify(ctx, order, to)
		}
		if s.events != nil {
			if err := s.events.PublishStatusChanged(messaging.StatusEvent{
				OrderID:    order.ID,
				UserID:     order.UserID,
				FromStatus: from,
				ToStatus:   to,
				ActorRole:  actor,
			}); err != nil {
				log.Printf("status event publish failed for order %d: %v", order.ID, err)
			}
		}
	}()
}
