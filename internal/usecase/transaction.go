package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/infra/logger"
)

// Transaction executa passos em sequência e, se um falhar, roda as compensações
// dos passos já concluídos em ordem reversa (saga local, sem transação de banco).
type Transaction struct {
	operations []Operation
	logger     *zap.Logger
}

type Operation struct {
	Name       string
	Fn         func(context.Context) error
	Compensate func(context.Context) error
}

func NewTransaction(log *zap.Logger) *Transaction {
	return &Transaction{logger: log}
}

// AddOperation registra um passo; compensate pode ser nil.
func (t *Transaction) AddOperation(name string, fn, compensate func(context.Context) error) {
	t.operations = append(t.operations, Operation{Name: name, Fn: fn, Compensate: compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w", op.Name, err)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) {
	// a requisição pode ter sido cancelada; a compensação precisa rodar mesmo assim
	ctx = context.WithoutCancel(ctx)

	for i := failedAt - 1; i >= 0; i-- {
		op := t.operations[i]
		if op.Compensate == nil {
			continue
		}
		if err := op.Compensate(ctx); err != nil {
			logger.Ctx(ctx, t.logger).Error("compensação falhou, risco de inconsistência",
				zap.String("operation", op.Name), zap.Error(err))
			continue
		}
		logger.Ctx(ctx, t.logger).Info("operação compensada", zap.String("operation", op.Name))
	}
}
