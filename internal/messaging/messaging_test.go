package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/csae99/ayur-sub001/internal/domain"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "out-for-delivery", slug(domain.StatusOutForDelivery.Label()))
	assert.Equal(t, "pending-payment", slug(domain.StatusPendingPayment.Label()))
	assert.Equal(t, "shipped", slug(domain.StatusShipped.Label()))
}

func TestConnectionURL(t *testing.T) {
	cfg := &RabbitMQConfig{
		Host:     "rabbit.local",
		Port:     5672,
		Username: "svc",
		Password: "pw",
		VHost:    "/",
	}
	assert.Equal(t, "amqp://svc:pw@rabbit.local:5672/", cfg.ConnectionURL())

	cfg.VHost = "orders"
	assert.Equal(t, "amqp://svc:pw@rabbit.local:5672/orders", cfg.ConnectionURL())
}
