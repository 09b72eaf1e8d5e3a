package queue

import (
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// RetryQueueName segura a mensagem por RetryDelay e devolve ao ExchangeName.
	RetryQueueName = "q.funnel-events.retry"
	RetryDelay     = 30 * time.Second
	MaxRetries     = 5

	retryHeader = "x-retry-count"
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marca um erro que não melhora com retry (payload recusado, 4xx do CRM).
// O worker manda a mensagem direto para a DLQ.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// retryCount lê quantas vezes a mensagem já passou pela fila de retry.
func retryCount(headers amqp.Table) int {
	switch v := headers[retryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
