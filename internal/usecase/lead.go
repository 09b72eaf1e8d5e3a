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

type LeadService struct {
	Repo           entity.LeadRepositoryInterface
	SubmissionRepo entity.LeadSubmissionRepositoryInterface
	Queue          QueueProducerInterface
	Logger         *zap.Logger

	now func() time.Time
}

func NewLeadService(
	repo entity.LeadRepositoryInterface,
	submissionRepo entity.LeadSubmissionRepositoryInterface,
	q QueueProducerInterface,
	log *zap.Logger,
) *LeadService {
	return &LeadService{
		Repo:           repo,
		SubmissionRepo: submissionRepo,
		Queue:          q,
		Logger:         log,
		now:            time.Now,
	}
}

// FindByEmail devolve nil, nil quando não existe lead para o email.
func (s *LeadService) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}

	lead, err := s.Repo.FindByEmail(ctx, email)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageFailure(ctx, s.Logger, "lead.find_by_email", err)
	}
	return lead, nil
}

func (s *LeadService) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	lead, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageFailure(ctx, s.Logger, "lead.find_by_id", err)
	}
	return lead, nil
}

// Create insere o lead. Se outro insert com o mesmo email venceu, devolve o
// *entity.ConstraintError de unicidade sem alteração.
func (s *LeadService) Create(ctx context.Context, lead *entity.Lead) error {
	err := s.Repo.Create(ctx, lead)
	if err == nil {
		return nil
	}
	if entity.IsConstraint(err, entity.UniqueViolation) {
		return err
	}
	return storageFailure(ctx, s.Logger, "lead.create", err)
}

// CreateLead reaproveita o lead do email quando ele existe (sem alterar nada) e cria
// um novo caso contrário.
func (s *LeadService) CreateLead(ctx context.Context, input CreateLeadInput) (*CreateLeadOutput, error) {
	input.normalize()
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, errs
	}

	email := entity.NormalizeEmail(input.Email)
	if email != "" {
		existing, err := s.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return leadOutput(existing, false), nil
		}
	}

	lead := input.toLead(s.now())
	if err := s.Create(ctx, lead); err != nil {
		if email == "" || !entity.IsConstraint(err, entity.UniqueViolation) {
			return nil, err
		}

		// corrida: outro request gravou o mesmo email entre a busca e o insert
		winner, findErr := s.FindByEmail(ctx, email)
		if findErr != nil {
			return nil, findErr
		}
		if winner == nil {
			return nil, storageFailure(ctx, s.Logger, "lead.create", err)
		}
		return leadOutput(winner, false), nil
	}

	logger.Ctx(ctx, s.Logger).Info("lead criado", zap.Int64("lead_id", lead.ID), zap.String("origin", lead.Origin.String()))
	publish(ctx, s.Queue, s.Logger, leadEvent(queue.EventLeadCaptured, lead))

	return leadOutput(lead, true), nil
}

func (s *LeadService) CreateSubmission(ctx context.Context, input CreateSubmissionInput) (*entity.LeadSubmission, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, errs
	}

	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	sub := &entity.LeadSubmission{
		LeadID:    input.LeadID,
		Type:      input.Type,
		Metadata:  metadata,
		CreatedAt: s.now(),
	}

	if err := s.SubmissionRepo.Create(ctx, sub); err != nil {
		if entity.IsConstraint(err, entity.ForeignKeyViolation) {
			return nil, ErrReferenceNotFound
		}
		return nil, storageFailure(ctx, s.Logger, "submission.create", err)
	}

	return sub, nil
}

// ListSubmissions devolve as submissions do lead na ordem de gravação.
func (s *LeadService) ListSubmissions(ctx context.Context, leadID int64) ([]*entity.LeadSubmission, error) {
	subs, err := s.SubmissionRepo.ListByLeadID(ctx, leadID)
	if err != nil {
		return nil, storageFailure(ctx, s.Logger, "submission.list", err)
	}
	return subs, nil
}
