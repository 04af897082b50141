package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/csae99/ayur-sub001/internal/domain"
)

// StatusEvent announces one committed order transition to interested
// consumers (dashboards, analytics). Publication is best effort and happens
// only after the status write is durable.
type StatusEvent struct {
	EventID    uuid.UUID          `json:"event_id"`
	OrderID    int64              `json:"order_id"`
	UserID     int64              `json:"user_id"`
	FromStatus domain.OrderStatus `json:"from_status"`
	ToStatus   domain.OrderStatus `json:"to_status"`
	Label      string             `json:"status_name"`
	ActorRole  domain.ActorRole   `json:"actor_role"`
	OccurredAt time.Time          `json:"occurred_at"`
}

type Publisher struct {
	client *RabbitMQClient
}

func NewPublisher(client *RabbitMQClient) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishStatusChanged(event StatusEvent) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("no RabbitMQ connection")
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	event.Label = event.ToStatus.Label()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event serialization error: %v", err)
	}

	routingKey := fmt.Sprintf("orders.status.%s", slug(event.Label))

	err = p.client.Channel().Publish(
		p.client.config.Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID.String(),
			Timestamp:    event.OccurredAt,
			Headers: amqp.Table{
				"order_id":   event.OrderID,
				"user_id":    event.UserID,
				"to_status":  int(event.ToStatus),
				"actor_role": string(event.ActorRole),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("event publish error: %v", err)
	}

	log.Printf("Status event published: %s (order %d)", routingKey, event.OrderID)
	return nil
}

func slug(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "-")
}
