package account

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"mangavault/pkg/broker/rabbitmq"
)

// AuditEvent is published whenever a credential-store Save replaces an
// existing record: a credential swap for a known email is a
// security-relevant mutation worth a trail, even for a CLI tool.
type AuditEvent struct {
	AccountID string    `json:"account_id"`
	Vendor    string    `json:"vendor"`
	Email     string    `json:"email"`
	Replaced  bool      `json:"replaced"`
	At        time.Time `json:"at"`
}

// AuditPublisher publishes AuditEvent to a fixed exchange. A nil
// *AuditPublisher is valid and Publish becomes a no-op, so wiring the
// audit trail stays optional for callers that don't configure RabbitMQ.
type AuditPublisher struct {
	broker   *rabbitmq.RabbitMQ
	exchange string
}

func NewAuditPublisher(broker *rabbitmq.RabbitMQ, exchange string) *AuditPublisher {
	return &AuditPublisher{broker: broker, exchange: exchange}
}

func (p *AuditPublisher) Publish(ctx context.Context, ev AuditEvent) error {
	if p == nil || p.broker == nil {
		return nil
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.broker.Channel.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   ev.At,
		Body:        body,
	})
}

// AuditingStore wraps a Store and publishes an AuditEvent after every
// successful Save.
type AuditingStore struct {
	Store
	publisher *AuditPublisher
}

func NewAuditingStore(inner Store, publisher *AuditPublisher) *AuditingStore {
	return &AuditingStore{Store: inner, publisher: publisher}
}

func (s *AuditingStore) Save(ctx context.Context, acc Account) (Account, error) {
	existing, _ := s.Store.FindByEmail(ctx, acc.Vendor, acc.Email)

	saved, err := s.Store.Save(ctx, acc)
	if err != nil {
		return saved, err
	}

	_ = s.publisher.Publish(ctx, AuditEvent{
		AccountID: saved.ID,
		Vendor:    saved.Vendor,
		Email:     saved.Email,
		Replaced:  existing != nil,
		At:        time.Now().UTC(),
	})

	return saved, nil
}
