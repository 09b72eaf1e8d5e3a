package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// CRMClient recebe os leads novos (Kommo).
type CRMClient interface {
	SyncLead(ctx context.Context, event FunnelEvent) error
}

// ConfirmationSender envia a confirmação de entrada na waitlist.
type ConfirmationSender interface {
	SendWaitlistConfirmation(ctx context.Context, to, name string) error
}

// consumerChannel é o pedaço de *amqp.Channel que o worker usa.
type consumerChannel interface {
	channelPublisher
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel consumerChannel
	CRM     CRMClient
	Mailer  ConfirmationSender
	Logger  *zap.Logger
}

func NewWorker(ch consumerChannel, crm CRMClient, mailer ConfirmationSender, logger *zap.Logger) *Worker {
	return &Worker{
		Channel: ch,
		CRM:     crm,
		Mailer:  mailer,
		Logger:  logger,
	}
}

// Start consome a fila até o ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName, // fila
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info("worker aguardando eventos", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event FunnelEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.Logger.Error("evento com JSON inválido", zap.Error(err), zap.String("message_id", d.MessageId))
		// mensagem podre vai direto pra DLQ
		d.Nack(false, false)
		return
	}

	log := w.Logger.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)), zap.Int64("lead_id", event.LeadID))

	err := w.processMessage(ctx, event)
	if err == nil {
		log.Info("evento processado")
		d.Ack(false)
		return
	}

	retries := retryCount(d.Headers)
	if IsPermanent(err) || retries >= MaxRetries {
		log.Error("evento enviado para a DLQ", zap.Error(err), zap.Int("retries", retries))
		d.Nack(false, false)
		return
	}

	if perr := w.scheduleRetry(ctx, d, retries+1); perr != nil {
		// sem fila de retry: devolve para a fila principal
		log.Error("falha ao agendar retry", zap.Error(perr))
		d.Nack(false, true)
		return
	}
	log.Warn("falha temporária, retry agendado", zap.Error(err), zap.Int("retry", retries+1))
	d.Ack(false)
}

// scheduleRetry republica na fila de retry, que devolve a mensagem depois do TTL.
func (w *Worker) scheduleRetry(ctx context.Context, d amqp.Delivery, attempt int) error {
	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[retryHeader] = int32(attempt)

	return w.Channel.PublishWithContext(ctx, "", RetryQueueName, false, false, amqp.Publishing{
		Headers:      headers,
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    d.MessageId,
		Timestamp:    d.Timestamp,
		Type:         d.Type,
		Body:         d.Body,
	})
}

func (w *Worker) processMessage(ctx context.Context, event FunnelEvent) error {
	switch event.Type {
	case EventLeadCaptured:
		if w.CRM == nil {
			return nil
		}
		return w.CRM.SyncLead(ctx, event)

	case EventWaitlistJoined:
		if w.Mailer == nil || event.Email == "" {
			return nil
		}
		return w.Mailer.SendWaitlistConfirmation(ctx, event.Email, event.Name)

	default:
		// sem consumidor para esse tipo, ACK e segue
		w.Logger.Debug("evento sem consumidor", zap.String("event_type", string(event.Type)))
		return nil
	}
}
