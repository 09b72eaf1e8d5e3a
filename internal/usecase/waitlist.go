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

// Mensagens exibidas no site; o texto é contrato com o front.
const (
	WaitlistLeadNotFoundMessage  = "Lead not found. Please complete identification step first."
	WaitlistAlreadyJoinedMessage = "You are already on the waitlist."
	WaitlistUnavailableMessage   = "Unable to join the waitlist right now. Please try again."
)

// ErrWaitlistLeadNotFound é o ErrReferenceNotFound com o texto exibido na waitlist.
var ErrWaitlistLeadNotFound = &DomainError{Code: CodeReferenceNotFound, Message: WaitlistLeadNotFoundMessage}

type WaitlistService struct {
	Repo     entity.WaitlistRepositoryInterface
	LeadRepo entity.LeadRepositoryInterface
	Queue    QueueProducerInterface
	Logger   *zap.Logger

	now func() time.Time
}

func NewWaitlistService(
	repo entity.WaitlistRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	q QueueProducerInterface,
	log *zap.Logger,
) *WaitlistService {
	return &WaitlistService{
		Repo:     repo,
		LeadRepo: leadRepo,
		Queue:    q,
		Logger:   log,
		now:      time.Now,
	}
}

// CreateWaitlistEntry nunca devolve erro: toda falha vira Success=false com uma
// mensagem pronta para o usuário. A causa técnica fica só no log.
func (s *WaitlistService) CreateWaitlistEntry(ctx context.Context, input CreateWaitlistEntryInput) CreateWaitlistEntryOutput {
	log := logger.Ctx(ctx, s.Logger).With(zap.Int64("lead_id", input.LeadID))

	entry := entity.NewWaitlistEntry(input.LeadID, input.NotificationPreferences, s.now())

	if err := s.Repo.Create(ctx, entry); err != nil {
		return waitlistFailure(s.classifyCreate(ctx, log, err))
	}

	log.Info("lead entrou na waitlist", zap.Int64("waitlist_entry_id", entry.ID))
	s.publishJoined(ctx, entry)

	return CreateWaitlistEntryOutput{Success: true, WaitlistEntryID: entry.ID}
}

// classifyCreate mapeia a falha do insert para o conjunto fechado de resultados.
func (s *WaitlistService) classifyCreate(ctx context.Context, log *zap.Logger, err error) error {
	switch {
	case entity.IsConstraint(err, entity.ForeignKeyViolation):
		return ErrWaitlistLeadNotFound
	case entity.IsConstraint(err, entity.UniqueViolation):
		return ErrAlreadyWaitlisted
	}
	return storageFailure(ctx, log, "waitlist.create", err)
}

// waitlistFailure usa a mensagem do DomainError; falha técnica vira texto genérico.
func waitlistFailure(err error) CreateWaitlistEntryOutput {
	detail := DescribeError(err)
	out := CreateWaitlistEntryOutput{Error: detail.Message, Code: detail.Code}
	if !IsDomainError(err) {
		out.Error = WaitlistUnavailableMessage
	}
	return out
}

func (s *WaitlistService) publishJoined(ctx context.Context, entry *entity.WaitlistEntry) {
	if s.Queue == nil || s.LeadRepo == nil {
		return
	}
	lead, err := s.LeadRepo.FindByID(ctx, entry.LeadID)
	if err != nil {
		logger.Ctx(ctx, s.Logger).Warn("lead da waitlist não carregado para o evento", zap.Error(err))
		return
	}
	publish(ctx, s.Queue, s.Logger, leadEvent(queue.EventWaitlistJoined, lead))
}

// UpdateStatus só avança: ACTIVE -> CONVERTED | REMOVED.
func (s *WaitlistService) UpdateStatus(ctx context.Context, entryID int64, status entity.WaitlistStatus) (*entity.WaitlistEntry, error) {
	if !status.Valid() {
		return nil, ValidationErrors{{Field: "status", Message: "must be one of: ACTIVE CONVERTED REMOVED"}}
	}

	current, err := s.Repo.FindByID(ctx, entryID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageFailure(ctx, s.Logger, "waitlist.find_by_id", err)
	}

	if !current.Status.CanTransitionTo(status) {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.Repo.UpdateStatus(ctx, entryID, current.Status, status)
	switch {
	case err == nil:
		logger.Ctx(ctx, s.Logger).Info("status da waitlist alterado",
			zap.Int64("waitlist_entry_id", entryID),
			zap.String("from", string(current.Status)),
			zap.String("to", string(status)),
		)
		return updated, nil
	case errors.Is(err, entity.ErrInvalidWaitlistTransition):
		// outra requisição mudou o status entre a leitura e o update
		return nil, ErrInvalidStatusTransition
	case errors.Is(err, entity.ErrNotFound):
		return nil, ErrNotFound
	default:
		return nil, storageFailure(ctx, s.Logger, "waitlist.update_status", err)
	}
}

// FindByLeadID devolve nil, nil quando o lead nunca entrou na waitlist.
func (s *WaitlistService) FindByLeadID(ctx context.Context, leadID int64) (*entity.WaitlistEntry, error) {
	entry, err := s.Repo.FindByLeadID(ctx, leadID)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageFailure(ctx, s.Logger, "waitlist.find_by_lead", err)
	}
	return entry, nil
}

func (s *WaitlistService) IsWaitlisted(ctx context.Context, leadID int64) (bool, error) {
	entry, err := s.FindByLeadID(ctx, leadID)
	if err != nil {
		return false, err
	}
	return entity.IsWaitlisted(entry), nil
}
