package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/ligue-funnel/internal/entity"
	"github.com/xavierca1/ligue-funnel/internal/infra/memstore"
	"github.com/xavierca1/ligue-funnel/internal/infra/queue"
)

type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishFunnelEvent(ctx context.Context, event queue.FunnelEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockLeadRepo struct {
	mock.Mock
}

func (m *MockLeadRepo) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	args := m.Called(ctx, email)
	lead, _ := args.Get(0).(*entity.Lead)
	return lead, args.Error(1)
}

func (m *MockLeadRepo) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	lead, _ := args.Get(0).(*entity.Lead)
	return lead, args.Error(1)
}

func (m *MockLeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) Create(ctx context.Context, sub *entity.LeadSubmission) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockSubmissionRepo) ListByLeadID(ctx context.Context, leadID int64) ([]*entity.LeadSubmission, error) {
	args := m.Called(ctx, leadID)
	subs, _ := args.Get(0).([]*entity.LeadSubmission)
	return subs, args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	args := m.Called(ctx, input)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id int64, input UpdateUserInput) (*entity.User, error) {
	args := m.Called(ctx, id, input)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// funnel monta os serviços reais sobre um memstore, sem fila.
type funnel struct {
	store      *memstore.Store
	leads      *LeadService
	waitlist   *WaitlistService
	accounts   *AccountService
	enrollment *EnrollmentService
}

func newFunnel() *funnel {
	store := memstore.New()
	log := zap.NewNop()

	leads := NewLeadService(store.Leads(), store.Submissions(), nil, log)
	waitlist := NewWaitlistService(store.Waitlist(), store.Leads(), nil, log)
	accounts := NewAccountService(store.Users(), bcrypt.MinCost, log)

	return &funnel{
		store:      store,
		leads:      leads,
		waitlist:   waitlist,
		accounts:   accounts,
		enrollment: NewEnrollmentService(leads, waitlist, accounts, nil, log),
	}
}

func validIdentification() IdentificationInput {
	return IdentificationInput{
		Name:        "Ana Souza",
		Email:       "ana@example.com",
		PhoneNumber: "(11) 98765-4321",
		Password:    "Senha123",
		Brand:       "Ligue",
	}
}
