package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecomcart/golang_services/internal/checkout_service/domain"
	"github.com/ecomcart/golang_services/internal/platform/messagebroker"
)

// OrderConfirmedNotifier publishes an order-confirmed event after a settled
// checkout. The notification service downstream owns the actual email.
type OrderConfirmedNotifier struct {
	nats    *messagebroker.NatsClient
	subject string
	logger  *slog.Logger
}

func NewOrderConfirmedNotifier(nats *messagebroker.NatsClient, subject string, logger *slog.Logger) *OrderConfirmedNotifier {
	return &OrderConfirmedNotifier{
		nats:    nats,
		subject: subject,
		logger:  logger.With("adapter", "order_confirmed_notifier"),
	}
}

type orderConfirmedEvent struct {
	Reference   string    `json:"reference"`
	TotalMinor  int64     `json:"total_minor"`
	Currency    string    `json:"currency"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

func (n *OrderConfirmedNotifier) Send(ctx context.Context, confirmation domain.OrderConfirmation) error {
	event := orderConfirmedEvent{
		Reference:   confirmation.Reference,
		TotalMinor:  confirmation.TotalMinor,
		Currency:    confirmation.Currency,
		ConfirmedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order confirmed event: %w", err)
	}
	if err := n.nats.Publish(ctx, n.subject, payload); err != nil {
		return fmt.Errorf("publish order confirmed event: %w", err)
	}
	n.logger.InfoContext(ctx, "order confirmed event published", "subject", n.subject, "reference", confirmation.Reference)
	return nil
}
