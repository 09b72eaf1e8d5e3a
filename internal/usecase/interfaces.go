package usecase

import (
	"context"

	"github.com/xavierca1/ligue-funnel/internal/entity"
	"github.com/xavierca1/ligue-funnel/internal/infra/queue"
)

type QueueProducerInterface interface {
	PublishFunnelEvent(ctx context.Context, event queue.FunnelEvent) error
}

// UserService materializa a conta do lead. AccountService é a implementação de produção;
// o EnrollmentService recebe qualquer implementação pelo construtor.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*entity.User, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
}
