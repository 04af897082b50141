package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csae99/ayur-sub001/internal/domain"
)

func seedOrder(store *memoryOrderStore, userID int64, status domain.OrderStatus) *domain.Order {
	return store.put(&domain.Order{
		ItemID:      10,
		UserID:      userID,
		Quantity:    1,
		OrderDate:   time.Now(),
		Status:      status,
		FinalAmount: dec("155.00"),
	})
}

func TestRequestTransition_FulfillerAdvancesOrder(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusConfirmed)
	svc := NewOrderService(store, nil, nil)
	fulfiller := domain.Actor{Role: domain.RoleFulfiller, UserID: 99}

	updated, err := svc.RequestTransition(context.Background(), order.ID, domain.StatusProcessing, fulfiller, "")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)

	history, err := store.GetHistory(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusProcessing, history[0].Status)
	assert.Equal(t, domain.RoleFulfiller, history[0].ActorRole)
}

func TestRequestTransition_NoBackwardMove(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusShipped)
	svc := NewOrderService(store, nil, nil)
	fulfiller := domain.Actor{Role: domain.RoleFulfiller}

	_, err := svc.RequestTransition(context.Background(), order.ID, domain.StatusProcessing, fulfiller, "")

	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	stored, _ := store.GetOrder(context.Background(), order.ID)
	assert.Equal(t, domain.StatusShipped, stored.Status)
}

func TestRequestTransition_PatientCancelsOwnOrder(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusConfirmed)
	svc := NewOrderService(store, nil, nil)
	patient := domain.Actor{Role: domain.RolePatient, UserID: 7}

	updated, err := svc.RequestTransition(context.Background(), order.ID, domain.StatusCancelled, patient, "")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)

	// cancelled is terminal, a second cancel must fail
	_, err = svc.RequestTransition(context.Background(), order.ID, domain.StatusCancelled, patient, "")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestRequestTransition_PatientCannotCancelAfterShipping(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusShipped)
	svc := NewOrderService(store, nil, nil)
	patient := domain.Actor{Role: domain.RolePatient, UserID: 7}

	_, err := svc.RequestTransition(context.Background(), order.ID, domain.StatusCancelled, patient, "")

	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestRequestTransition_PatientCannotTouchForeignOrder(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusConfirmed)
	svc := NewOrderService(store, nil, nil)
	stranger := domain.Actor{Role: domain.RolePatient, UserID: 8}

	_, err := svc.RequestTransition(context.Background(), order.ID, domain.StatusCancelled, stranger, "")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequestTransition_PatientCannotAdvanceFulfillment(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusConfirmed)
	svc := NewOrderService(store, nil, nil)
	patient := domain.Actor{Role: domain.RolePatient, UserID: 7}

	_, err := svc.RequestTransition(context.Background(), order.ID, domain.StatusProcessing, patient, "")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequestTransition_ShippingRequiresTrackingNumber(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusPacked)
	svc := NewOrderService(store, nil, nil)
	fulfiller := domain.Actor{Role: domain.RoleFulfiller}

	_, err := svc.RequestTransition(context.Background(), order.ID, domain.StatusShipped, fulfiller, "")
	assert.ErrorIs(t, err, domain.ErrMissingTrackingNumber)

	updated, err := svc.RequestTransition(context.Background(), order.ID, domain.StatusShipped, fulfiller, "TRK-001")
	require.NoError(t, err)
	assert.Equal(t, "TRK-001", updated.TrackingNumber)
	require.NotNil(t, updated.ShippedAt)
}

func TestRequestTransition_DeliveredSetsTimestamp(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusOutForDelivery)
	svc := NewOrderService(store, nil, nil)
	fulfiller := domain.Actor{Role: domain.RoleFulfiller}

	updated, err := svc.RequestTransition(context.Background(), order.ID, domain.StatusDelivered, fulfiller, "")

	require.NoError(t, err)
	require.NotNil(t, updated.DeliveredAt)
}

func TestRequestTransition_UnknownOrder(t *testing.T) {
	svc := NewOrderService(newMemoryOrderStore(), nil, nil)

	_, err := svc.RequestTransition(context.Background(), 404, domain.StatusProcessing, domain.Actor{Role: domain.RoleFulfiller}, "")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestTransition_UnknownStatus(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusConfirmed)
	svc := NewOrderService(store, nil, nil)

	_, err := svc.RequestTransition(context.Background(), order.ID, domain.OrderStatus(42), domain.Actor{Role: domain.RoleFulfiller}, "")

	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestRequestTransition_ConcurrentRequestsOneWins(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusConfirmed)
	svc := NewOrderService(store, nil, nil)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := domain.Actor{Role: domain.RoleFulfiller}
			_, errs[i] = svc.RequestTransition(context.Background(), order.ID, domain.StatusProcessing, actor, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		// losers either lost the swap or re-read the already-moved order
		assert.True(t, errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrIllegalTransition),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	history, _ := store.GetHistory(context.Background(), order.ID)
	assert.Len(t, history, 1)
}

func TestRequestTransition_FiresSideEffects(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusConfirmed)
	notifier := &recordingNotifier{}
	publisher := &recordingPublisher{}
	svc := NewOrderService(store, notifier, publisher)

	_, err := svc.RequestTransition(context.Background(), order.ID, domain.StatusProcessing, domain.Actor{Role: domain.RoleFulfiller}, "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return notifier.count() == 1 && publisher.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	assert.Equal(t, domain.StatusConfirmed, publisher.events[0].FromStatus)
	assert.Equal(t, domain.StatusProcessing, publisher.events[0].ToStatus)
}

func TestGetOrder_PatientOwnership(t *testing.T) {
	store := newMemoryOrderStore()
	order := seedOrder(store, 7, domain.StatusConfirmed)
	svc := NewOrderService(store, nil, nil)

	_, _, err := svc.GetOrder(context.Background(), order.ID, domain.Actor{Role: domain.RolePatient, UserID: 8})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, _, err := svc.GetOrder(context.Background(), order.ID, domain.Actor{Role: domain.RolePatient, UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}
