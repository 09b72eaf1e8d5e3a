package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/entity"
	"github.com/xavierca1/ligue-funnel/internal/infra/logger"
	"github.com/xavierca1/ligue-funnel/internal/infra/queue"
)

// storageFailure loga a causa e devolve um TechnicalError sem o texto do banco.
func storageFailure(ctx context.Context, log *zap.Logger, op string, err error) error {
	logger.Ctx(ctx, log).Error("falha no armazenamento", zap.String("op", op), zap.Error(err))

	if errors.Is(err, entity.ErrStorageUnavailable) {
		return &TechnicalError{Code: CodeStorageUnavailable, Message: ErrStorageUnavailable.Message, Err: err}
	}
	return &TechnicalError{Code: CodeUnknown, Message: ErrUnknown.Message, Err: err}
}

// DescribeError converte qualquer erro de caso de uso em ErrorDetail serializável.
func DescribeError(err error) *ErrorDetail {
	if err == nil {
		return nil
	}

	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return &ErrorDetail{Code: CodeValidation, Message: "invalid input", Fields: verrs}
	}

	var de *DomainError
	if errors.As(err, &de) {
		return &ErrorDetail{Code: de.Code, Message: de.Message}
	}

	var te *TechnicalError
	if errors.As(err, &te) {
		return &ErrorDetail{Code: te.Code, Message: te.Message}
	}

	return &ErrorDetail{Code: CodeUnknown, Message: ErrUnknown.Message}
}

// publish é best effort: falha na fila nunca desfaz a operação que já foi gravada.
func publish(ctx context.Context, q QueueProducerInterface, log *zap.Logger, event queue.FunnelEvent) {
	if q == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := q.PublishFunnelEvent(ctx, event); err != nil {
		logger.Ctx(ctx, log).Warn("falha ao publicar evento do funil",
			zap.String("event_type", string(event.Type)),
			zap.Int64("lead_id", event.LeadID),
			zap.Error(err),
		)
	}
}

func leadEvent(t queue.EventType, l *entity.Lead) queue.FunnelEvent {
	return queue.FunnelEvent{
		Type:        t,
		LeadID:      l.ID,
		Name:        l.Name,
		Email:       l.Email,
		PhoneNumber: l.PhoneNumber,
		Origin:      l.Origin.String(),
		OriginFont:  l.OriginFont,
		Brand:       l.Brand,
	}
}
