package notification

import (
	"context"
	"log"
	"time"

	"github.com/csae99/ayur-sub001/internal/clients"
	"github.com/csae99/ayur-sub001/internal/domain"
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Dispatcher fans out a status change to the customer over email and SMS.
// Best effort only: each channel gets at most one attempt per transition,
// failures are logged and swallowed, and nothing ever propagates back to the
// order aggregate.
type Dispatcher struct {
	identity clients.IdentityClient
	email    EmailSender
	sms      SMSSender
	timeout  time.Duration
}

func NewDispatcher(identity clients.IdentityClient, email EmailSender, sms SMSSender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		identity: identity,
		email:    email,
		sms:      sms,
		timeout:  timeout,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, order *domain.Order, status domain.OrderStatus) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	user, err := d.identity.GetUser(ctx, order.UserID)
	if err != nil {
		log.Printf("notification skipped for order %d: user lookup failed: %v", order.ID, err)
		return
	}

	subject := renderSubject(order, status)
	body := renderBody(user.DisplayName, order, status)

	if d.email != nil && user.Email != "" {
		if err := d.email.SendEmail(ctx, user.Email, subject, body); err != nil {
			log.Printf("email notification failed for order %d: %v", order.ID, err)
		}
	}

	if d.sms != nil && user.Phone != "" {
		if err := d.sms.SendSMS(ctx, user.Phone, body); err != nil {
			log.Printf("sms notification failed for order %d: %v", order.ID, err)
		}
	}
}
