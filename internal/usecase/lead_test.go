package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xavierca1/ligue-funnel/internal/entity"
	"github.com/xavierca1/ligue-funnel/internal/infra/queue"
)

func TestCreateLead_NewLeadGetsFirstID(t *testing.T) {
	f := newFunnel()

	out, err := f.leads.CreateLead(context.Background(), CreateLeadInput{
		Name:   "Ana",
		Email:  "ana@example.com",
		Origin: entity.OriginGoogleAds,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.True(t, out.Created)

	lead, err := f.store.Leads().FindByID(context.Background(), 1)
	require.NoError(t, err)
	// campos opcionais gravados como string vazia
	assert.Equal(t, "", lead.Brand)
	assert.Equal(t, "", lead.Website)
	assert.Equal(t, entity.OriginGoogleAds, lead.Origin)
}

func TestCreateLead_ExistingEmailReturnsSameLeadUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()

	first, err := f.leads.CreateLead(ctx, CreateLeadInput{Name: "Ana", Email: "ana@example.com", PhoneNumber: "11999990000", Origin: entity.OriginPage})
	require.NoError(t, err)

	second, err := f.leads.CreateLead(ctx, CreateLeadInput{Name: "Outro Nome", Email: "  ANA@example.com", PhoneNumber: "21999990000", Origin: entity.OriginEmail})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.Created)
	assert.Equal(t, "Ana", second.Name)
	assert.Equal(t, 1, f.store.Leads().Count())

	stored, err := f.store.Leads().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.Name)
	assert.Equal(t, "11999990000", stored.PhoneNumber)
	assert.Equal(t, entity.OriginPage, stored.Origin)
}

func TestCreateLead_WithoutEmailIsNeverDeduplicated(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()

	a, err := f.leads.CreateLead(ctx, CreateLeadInput{Name: "Ana", Origin: entity.OriginPage})
	require.NoError(t, err)
	b, err := f.leads.CreateLead(ctx, CreateLeadInput{Name: "Ana", Origin: entity.OriginPage})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, f.store.Leads().Count())
}

func TestCreateLead_Validation(t *testing.T) {
	f := newFunnel()

	_, err := f.leads.CreateLead(context.Background(), CreateLeadInput{Email: "not-an-email"})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.ElementsMatch(t, []string{"name", "email", "origin"}, verrs.Fields())
	assert.Equal(t, 0, f.store.Leads().Count())
}

func TestCreateLead_ConcurrentSameEmailYieldsOneLead(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()

	const workers = 32
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := f.leads.CreateLead(ctx, CreateLeadInput{
				Name:   fmt.Sprintf("Ana %d", i),
				Email:  "ana@example.com",
				Origin: entity.OriginPage,
			})
			errs[i] = err
			if out != nil {
				ids[i] = out.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, f.store.Leads().Count())
}

func TestCreateLead_LostRaceReturnsWinner(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepo)
	winner := &entity.Lead{ID: 7, Name: "Primeira", Email: "ana@example.com"}

	repo.On("FindByEmail", ctx, "ana@example.com").Return(nil, entity.ErrNotFound).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*entity.Lead")).
		Return(&entity.ConstraintError{Kind: entity.UniqueViolation, Constraint: "leads_email_key"}).Once()
	repo.On("FindByEmail", ctx, "ana@example.com").Return(winner, nil).Once()

	s := NewLeadService(repo, nil, nil, zap.NewNop())
	out, err := s.CreateLead(ctx, CreateLeadInput{Name: "Segunda", Email: "ana@example.com", Origin: entity.OriginPage})

	require.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, "Primeira", out.Name)
	assert.False(t, out.Created)
	repo.AssertExpectations(t)
}

func TestCreate_PassesUniqueViolationThrough(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()
	require.NoError(t, f.leads.Create(ctx, &entity.Lead{Name: "Ana", Email: "ana@example.com"}))

	err := f.leads.Create(ctx, &entity.Lead{Name: "Ana 2", Email: "ana@example.com"})

	var ce *entity.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, entity.UniqueViolation, ce.Kind)
}

func TestCreateLead_StorageUnavailableIsRetryable(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	f := newFunnel()
	f.leads.Logger = zap.New(core)
	f.store.SetFailure(fmt.Errorf("%w: connection refused", entity.ErrStorageUnavailable))

	_, err := f.leads.CreateLead(context.Background(), CreateLeadInput{Name: "Ana", Email: "ana@example.com", Origin: entity.OriginPage})

	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.True(t, Retryable(err))
	assert.NotContains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, logs.Len())
}

func TestCreateLead_PublishesLeadCaptured(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()
	q := new(MockQueueProducer)
	q.On("PublishFunnelEvent", ctx, mock.MatchedBy(func(e queue.FunnelEvent) bool {
		return e.Type == queue.EventLeadCaptured && e.LeadID == 1 && e.Origin == "facebook_ads"
	})).Return(nil).Once()
	f.leads.Queue = q

	_, err := f.leads.CreateLead(ctx, CreateLeadInput{Name: "Ana", Email: "ana@example.com", Origin: entity.OriginFacebookAds})
	require.NoError(t, err)

	// lead existente não publica de novo
	_, err = f.leads.CreateLead(ctx, CreateLeadInput{Name: "Ana", Email: "ana@example.com", Origin: entity.OriginFacebookAds})
	require.NoError(t, err)

	q.AssertExpectations(t)
}

func TestCreateLead_PublishFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()
	q := new(MockQueueProducer)
	q.On("PublishFunnelEvent", ctx, mock.Anything).Return(errors.New("channel closed"))
	f.leads.Queue = q

	out, err := f.leads.CreateLead(ctx, CreateLeadInput{Name: "Ana", Origin: entity.OriginPage})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
}

func TestCreateSubmission(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()
	lead, err := f.leads.CreateLead(ctx, CreateLeadInput{Name: "Ana", Origin: entity.OriginSEOArchive})
	require.NoError(t, err)

	t.Run("grava com metadata", func(t *testing.T) {
		sub, err := f.leads.CreateSubmission(ctx, CreateSubmissionInput{
			LeadID:   lead.ID,
			Type:     entity.SubmissionEbook,
			Metadata: map[string]any{"ebook": "guia-telemedicina"},
		})
		require.NoError(t, err)
		assert.NotZero(t, sub.ID)
		assert.Equal(t, "guia-telemedicina", sub.Metadata["ebook"])
	})

	t.Run("metadata vazia vira objeto", func(t *testing.T) {
		sub, err := f.leads.CreateSubmission(ctx, CreateSubmissionInput{LeadID: lead.ID, Type: entity.SubmissionContact})
		require.NoError(t, err)
		assert.NotNil(t, sub.Metadata)
	})

	t.Run("lead inexistente", func(t *testing.T) {
		_, err := f.leads.CreateSubmission(ctx, CreateSubmissionInput{LeadID: 999, Type: entity.SubmissionEbook})
		assert.ErrorIs(t, err, ErrReferenceNotFound)
	})

	t.Run("tipo desconhecido", func(t *testing.T) {
		_, err := f.leads.CreateSubmission(ctx, CreateSubmissionInput{LeadID: lead.ID, Type: "webinar"})
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, []string{"type"}, verrs.Fields())
	})
}

func TestFindByEmail_AbsentIsNil(t *testing.T) {
	f := newFunnel()
	lead, err := f.leads.FindByEmail(context.Background(), "ninguem@example.com")
	require.NoError(t, err)
	assert.Nil(t, lead)
}

func TestCreateLead_EmailWithSurroundingSpacesIsValid(t *testing.T) {
	ctx := context.Background()
	f := newFunnel()

	first, err := f.leads.CreateLead(ctx, CreateLeadInput{Name: "Ana", Email: "ana@x.com", Origin: entity.OriginPage})
	require.NoError(t, err)

	second, err := f.leads.CreateLead(ctx, CreateLeadInput{Name: "Ana", Email: " ana@x.com ", Origin: entity.OriginPage})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "ana@x.com", second.Email)

	_, err = f.leads.CreateLead(ctx, CreateLeadInput{Name: "Ana", Email: " ana@ x.com", Origin: entity.OriginPage})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"email"}, verrs.Fields())
}
