package gateway

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockGateway is an in-process payment gateway for local runs and tests. It
// records created intents so tests can fabricate matching payments.
type MockGateway struct {
	mu      sync.Mutex
	intents map[string]*Intent
}

func NewMockGateway() *MockGateway {
	return &MockGateway{intents: make(map[string]*Intent)}
}

func (m *MockGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*Intent, error) {
	intent := &Intent{
		ID:       fmt.Sprintf("intent_%s", uuid.New().String()[:8]),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}

	m.mu.Lock()
	m.intents[intent.ID] = intent
	m.mu.Unlock()

	log.Printf("Mock payment gateway: intent %s created, amount %s %s",
		intent.ID, amount.StringFixed(2), currency)
	return intent, nil
}

func (m *MockGateway) Intent(id string) (*Intent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[id]
	return intent, ok
}

var _ PaymentGateway = (*MockGateway)(nil)
