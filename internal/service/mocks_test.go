package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/csae99/ayur-sub001/internal/clients"
	"github.com/csae99/ayur-sub001/internal/domain"
	"github.com/csae99/ayur-sub001/internal/gateway"
	"github.com/csae99/ayur-sub001/internal/messaging"
	"github.com/csae99/ayur-sub001/internal/repository"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// memoryOrderStore implements OrderStore and CheckoutStore with the same
// compare-and-swap semantics as the SQL store, guarded by one mutex so
// concurrent callers serialize exactly like they would on row updates.
type memoryOrderStore struct {
	mu      sync.Mutex
	nextID  int64
	orders  map[int64]*domain.Order
	history map[int64][]*domain.StatusHistoryEntry

	couponLimitHit bool // simulate a coupon at its usage limit during finalize
	finalizations  int
}

func newMemoryOrderStore() *memoryOrderStore {
	return &memoryOrderStore{
		nextID:  1,
		orders:  make(map[int64]*domain.Order),
		history: make(map[int64][]*domain.StatusHistoryEntry),
	}
}

func (m *memoryOrderStore) put(order *domain.Order) *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.ID == 0 {
		order.ID = m.nextID
		m.nextID++
	}
	m.orders[order.ID] = order
	return order
}

func (m *memoryOrderStore) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *memoryOrderStore) ListByUser(_ context.Context, userID int64) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryOrderStore) UpdateStatusCAS(_ context.Context, id int64, from, to domain.OrderStatus, upd repository.TransitionUpdate) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if order.Status != from {
		return nil, domain.ErrConflict
	}

	order.Status = to
	if upd.TrackingNumber != "" {
		order.TrackingNumber = upd.TrackingNumber
	}
	if upd.ShippedAt != nil {
		order.ShippedAt = upd.ShippedAt
	}
	if upd.DeliveredAt != nil {
		order.DeliveredAt = upd.DeliveredAt
	}
	order.UpdatedAt = time.Now()

	m.history[id] = append(m.history[id], &domain.StatusHistoryEntry{
		OrderID:   id,
		Status:    to,
		Label:     to.Label(),
		Note:      upd.Note,
		ActorRole: upd.ActorRole,
		CreatedAt: time.Now(),
	})

	copied := *order
	return &copied, nil
}

func (m *memoryOrderStore) GetHistory(_ context.Context, orderID int64) ([]*domain.StatusHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[orderID], nil
}

func (m *memoryOrderStore) Stats(_ context.Context) ([]*repository.StatusStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[domain.OrderStatus]int64)
	for _, o := range m.orders {
		counts[o.Status]++
	}
	var out []*repository.StatusStat
	for status, count := range counts {
		out = append(out, &repository.StatusStat{Status: status, Label: status.Label(), Count: count})
	}
	return out, nil
}

func (m *memoryOrderStore) ListShippedBefore(_ context.Context, cutoff time.Time) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.Status == domain.StatusShipped && o.ShippedAt != nil && o.ShippedAt.Before(cutoff) {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryOrderStore) CreateCheckout(_ context.Context, userID int64, orders []*domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range orders {
		o.ID = m.nextID
		m.nextID++
		m.orders[o.ID] = o
	}
	return nil
}

func (m *memoryOrderStore) ListByIntent(_ context.Context, intentID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.PaymentIntentID == intentID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryOrderStore) FinalizeIntent(_ context.Context, intentID, paymentID string) ([]*domain.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Order
	pending := false
	for _, o := range m.orders {
		if o.PaymentIntentID == intentID {
			matched = append(matched, o)
			if o.Status == domain.StatusPendingPayment {
				pending = true
			}
		}
	}
	if len(matched) == 0 {
		return nil, false, domain.ErrNotFound
	}
	if !pending {
		out := make([]*domain.Order, len(matched))
		for i, o := range matched {
			copied := *o
			out[i] = &copied
		}
		return out, true, nil
	}
	if m.couponLimitHit {
		return nil, false, domain.NewCouponError(matched[0].CouponCode, domain.CouponUsageExceeded,
			"this coupon has reached its usage limit")
	}

	m.finalizations++
	out := make([]*domain.Order, len(matched))
	for i, o := range matched {
		o.Status = domain.StatusConfirmed
		o.PaymentID = paymentID
		copied := *o
		out[i] = &copied
	}
	return out, false, nil
}

// recordingNotifier implements Notifier for testing
type recordingNotifier struct {
	mu    sync.Mutex
	calls []domain.OrderStatus
}

func (n *recordingNotifier) Notify(_ context.Context, _ *domain.Order, status domain.OrderStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, status)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// recordingPublisher implements EventPublisher for testing
type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.StatusEvent
	err    error
}

func (p *recordingPublisher) PublishStatusChanged(event messaging.StatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// memoryCartProvider implements CartProvider for testing
type memoryCartProvider struct {
	cart        *domain.Cart
	err         error
	invalidated int
}

func (m *memoryCartProvider) GetCart(_ context.Context, _ int64) (*domain.Cart, error) {
	return m.cart, m.err
}

func (m *memoryCartProvider) Invalidate(_ context.Context, _ int64) {
	m.invalidated++
}

// memoryCatalog implements clients.CatalogClient for testing
type memoryCatalog struct {
	mu         sync.Mutex
	items      map[int64]*clients.Item
	err        error
	decrements map[int64]int
}

func newMemoryCatalog(items map[int64]*clients.Item) *memoryCatalog {
	return &memoryCatalog{items: items, decrements: make(map[int64]int)}
}

func (m *memoryCatalog) GetItem(_ context.Context, itemID int64) (*clients.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.items[itemID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (m *memoryCatalog) DecrementStock(_ context.Context, itemID int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decrements[itemID] += quantity
	return nil
}

// memoryCouponStore implements coupon.Store for testing
type memoryCouponStore struct {
	coupons map[string]*domain.Coupon
}

func (m *memoryCouponStore) GetByCode(_ context.Context, code string) (*domain.Coupon, error) {
	c, ok := m.coupons[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// stubGateway implements gateway.PaymentGateway for testing
type stubGateway struct {
	intentID string
	err      error
	amount   decimal.Decimal // captures the amount asked for
}

func (g *stubGateway) CreateIntent(_ context.Context, amount decimal.Decimal, currency, receipt string) (*gateway.Intent, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.amount = amount
	return &gateway.Intent{
		ID:       g.intentID,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}
