package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type EventType string

const (
	EventLeadCaptured         EventType = "lead.captured"
	EventWaitlistJoined       EventType = "waitlist.joined"
	EventEnrollmentIdentified EventType = "enrollment.identified"
	EventEnrollmentPaid       EventType = "enrollment.paid"
)

// FunnelEvent é o que vai para a fila depois de uma mudança de estado no funil.
type FunnelEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	LeadID      int64     `json:"lead_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Origin      string    `json:"origin"`
	OriginFont  string    `json:"origin_font"`
	Brand       string    `json:"brand"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type QueueProducerInterface interface {
	PublishFunnelEvent(ctx context.Context, event FunnelEvent) error
}

// channelPublisher é o pedaço de *amqp.Channel que o producer usa.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch channelPublisher
}

func NewProducer(ch channelPublisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishFunnelEvent(ctx context.Context, event FunnelEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	return nil
}

// NoopProducer é usado quando RABBITMQ_URL não está configurado.
type NoopProducer struct{}

func (NoopProducer) PublishFunnelEvent(context.Context, FunnelEvent) error { return nil }
