package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/entity"
	"github.com/xavierca1/ligue-funnel/internal/infra/logger"
	"github.com/xavierca1/ligue-funnel/internal/infra/queue"
)

// EnrollmentService conduz o funil de matrícula: identificação -> pagamento.
type EnrollmentService struct {
	Leads    *LeadService
	Waitlist *WaitlistService
	Users    UserService
	Queue    QueueProducerInterface
	Logger   *zap.Logger
}

func NewEnrollmentService(leads *LeadService, waitlist *WaitlistService, users UserService, q QueueProducerInterface, log *zap.Logger) *EnrollmentService {
	return &EnrollmentService{
		Leads:    leads,
		Waitlist: waitlist,
		Users:    users,
		Queue:    q,
		Logger:   log,
	}
}

// Progress reconstrói o estado do funil a partir das submissions do lead.
func (s *EnrollmentService) Progress(ctx context.Context, leadID int64) (entity.EnrollmentStepState, error) {
	if _, err := s.Leads.FindByID(ctx, leadID); err != nil {
		return entity.EnrollmentStepState{}, err
	}
	subs, err := s.Leads.ListSubmissions(ctx, leadID)
	if err != nil {
		return entity.EnrollmentStepState{}, err
	}
	return entity.DeriveEnrollmentState(leadID, subs), nil
}

func (s *EnrollmentService) CanAccessPaymentStep(ctx context.Context, leadID int64) (bool, error) {
	state, err := s.Progress(ctx, leadID)
	if err != nil {
		return false, err
	}
	return entity.CanAccessPaymentStep(state), nil
}

// IsEnrollmentLead não altera o lead: quem veio de outro funil passa a contar pelas
// submissions da matrícula.
func (s *EnrollmentService) IsEnrollmentLead(ctx context.Context, leadID int64) (bool, error) {
	lead, err := s.Leads.FindByID(ctx, leadID)
	if err != nil {
		return false, err
	}
	subs, err := s.Leads.ListSubmissions(ctx, leadID)
	if err != nil {
		return false, err
	}
	return entity.IsEnrollmentLead(lead, subs), nil
}

// CompleteIdentification resolve o lead, cria a conta e registra a etapa. Se o registro
// falhar a conta é apagada, e a etapa pode ser repetida sem DuplicateAccount.
func (s *EnrollmentService) CompleteIdentification(ctx context.Context, input IdentificationInput) (*IdentificationOutput, error) {
	input.normalize()
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, errs
	}

	origin := input.Origin
	if !origin.Valid() {
		origin = entity.OriginPage
	}

	// lead órfão (sem conta) é aceito se algo abaixo falhar
	lead, err := s.Leads.CreateLead(ctx, CreateLeadInput{
		Name:        input.Name,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Brand:       input.Brand,
		Description: input.Description,
		Origin:      origin,
		OriginFont:  entity.OriginFontEnrollment,
		IP:          input.IP,
		Country:     input.Country,
		City:        input.City,
		UserAgent:   input.UserAgent,
		Route:       input.Route,
	})
	if err != nil {
		return nil, err
	}

	subs, err := s.Leads.ListSubmissions(ctx, lead.ID)
	if err != nil {
		return nil, err
	}
	state := entity.DeriveEnrollmentState(lead.ID, subs)

	var user *entity.User
	tx := NewTransaction(s.Logger)
	tx.AddOperation("create_account",
		func(ctx context.Context) error {
			var err error
			user, err = s.Users.Create(ctx, CreateUserInput{
				Name:        input.Name,
				Email:       input.Email,
				PhoneNumber: input.PhoneNumber,
				Password:    input.Password,
			})
			return err
		},
		func(ctx context.Context) error {
			return s.Users.Delete(ctx, user.ID)
		},
	)
	tx.AddOperation("record_identification",
		func(ctx context.Context) error {
			_, err := s.Leads.CreateSubmission(ctx, CreateSubmissionInput{
				LeadID:   lead.ID,
				Type:     entity.SubmissionEnrollment,
				Metadata: map[string]any{"step": string(entity.StepIdentification)},
			})
			return err
		},
		nil,
	)

	if err := tx.Execute(ctx); err != nil {
		return nil, unwrapOperation(err)
	}

	if err := state.Complete(entity.StepIdentification); err != nil {
		return nil, ErrStepOutOfOrder
	}

	logger.Ctx(ctx, s.Logger).Info("identificação concluída", zap.Int64("lead_id", lead.ID), zap.Int64("user_id", user.ID))
	publish(ctx, s.Queue, s.Logger, queue.FunnelEvent{
		Type:        queue.EventEnrollmentIdentified,
		LeadID:      lead.ID,
		Name:        lead.Name,
		Email:       lead.Email,
		PhoneNumber: lead.PhoneNumber,
		OriginFont:  entity.OriginFontEnrollment,
		Brand:       input.Brand,
	})

	return &IdentificationOutput{LeadID: lead.ID, UserID: user.ID, State: state}, nil
}

// CompletePayment só aceita leads com a identificação concluída. Repetir o pagamento
// não grava uma segunda submission.
func (s *EnrollmentService) CompletePayment(ctx context.Context, input PaymentInput) (*PaymentOutput, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, errs
	}

	lead, err := s.Leads.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, err
	}

	subs, err := s.Leads.ListSubmissions(ctx, lead.ID)
	if err != nil {
		return nil, err
	}
	state := entity.DeriveEnrollmentState(lead.ID, subs)

	if !entity.CanAccessPaymentStep(state) {
		return nil, ErrStepOutOfOrder
	}

	if state.Has(entity.StepPayment) {
		return &PaymentOutput{LeadID: lead.ID, State: state}, nil
	}

	metadata := map[string]any{
		"step":           string(entity.StepPayment),
		"payment_method": input.PaymentMethod,
	}
	if input.Reference != "" {
		metadata["reference"] = input.Reference
	}
	if _, err := s.Leads.CreateSubmission(ctx, CreateSubmissionInput{
		LeadID:   lead.ID,
		Type:     entity.SubmissionEnrollment,
		Metadata: metadata,
	}); err != nil {
		return nil, err
	}

	if err := state.Complete(entity.StepPayment); err != nil {
		return nil, ErrStepOutOfOrder
	}

	out := &PaymentOutput{LeadID: lead.ID, State: state}
	out.WaitlistConverted = s.convertWaitlist(ctx, lead.ID)

	logger.Ctx(ctx, s.Logger).Info("pagamento registrado",
		zap.Int64("lead_id", lead.ID),
		zap.String("payment_method", input.PaymentMethod),
		zap.Bool("waitlist_converted", out.WaitlistConverted),
	)
	publish(ctx, s.Queue, s.Logger, leadEvent(queue.EventEnrollmentPaid, lead))

	return out, nil
}

// convertWaitlist marca a entrada ACTIVE como CONVERTED. O pagamento já foi gravado,
// então falha aqui só é logada.
func (s *EnrollmentService) convertWaitlist(ctx context.Context, leadID int64) bool {
	if s.Waitlist == nil {
		return false
	}

	entry, err := s.Waitlist.FindByLeadID(ctx, leadID)
	if err != nil || !entity.IsWaitlisted(entry) {
		return false
	}

	if _, err := s.Waitlist.UpdateStatus(ctx, entry.ID, entity.WaitlistConverted); err != nil {
		logger.Ctx(ctx, s.Logger).Warn("waitlist não convertida após pagamento",
			zap.Int64("waitlist_entry_id", entry.ID), zap.Error(err))
		return false
	}
	return true
}

// unwrapOperation devolve o erro de caso de uso que derrubou a transação, sem o
// prefixo com o nome da operação.
func unwrapOperation(err error) error {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te
	}
	return err
}
