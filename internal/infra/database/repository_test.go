package database

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-funnel/internal/entity"
)

// setupStore usa TEST_DATABASE_URL; sem ela os testes de integração são pulados.
func setupStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL não definida")
	}
	driver := os.Getenv("TEST_DB_DRIVER")
	if driver == "" {
		driver = "pgx"
	}

	db, err := NewDBConnection(driver, url)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = Migrate(ctx, db)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `TRUNCATE users, waitlist_entries, lead_submissions, leads RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func newLead(name, email string) *entity.Lead {
	now := time.Now().UTC()
	return &entity.Lead{Name: name, Email: email, Origin: entity.OriginPage, CreatedAt: now, UpdatedAt: now}
}

func TestLeadRepository_Postgres(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	repo := store.Leads()

	lead := newLead("Ana", "Ana@Example.com")
	require.NoError(t, repo.Create(ctx, lead))
	assert.Equal(t, int64(1), lead.ID)

	err := repo.Create(ctx, newLead("Outra", "ana@example.com"))
	assert.True(t, entity.IsConstraint(err, entity.UniqueViolation))

	require.NoError(t, repo.Create(ctx, newLead("Sem email", "")))
	require.NoError(t, repo.Create(ctx, newLead("Sem email", "")))

	found, err := repo.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, lead.ID, found.ID)
	assert.Equal(t, entity.OriginPage, found.Origin)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestLeadRepository_ConcurrentInsertsOneWinner(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	repo := store.Leads()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, newLead("Ana", "ana@example.com"))
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			assert.True(t, entity.IsConstraint(err, entity.UniqueViolation))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

func TestSubmissionAndWaitlist_Postgres(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	err := store.Submissions().Create(ctx, &entity.LeadSubmission{LeadID: 999, Type: entity.SubmissionEbook, CreatedAt: now})
	assert.True(t, entity.IsConstraint(err, entity.ForeignKeyViolation))

	lead := newLead("Ana", "ana@example.com")
	require.NoError(t, store.Leads().Create(ctx, lead))

	sub := &entity.LeadSubmission{LeadID: lead.ID, Type: entity.SubmissionEnrollment, Metadata: map[string]any{"step": "identification"}, CreatedAt: now}
	require.NoError(t, store.Submissions().Create(ctx, sub))

	subs, err := store.Submissions().ListByLeadID(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "identification", subs[0].Metadata["step"])

	err = store.Waitlist().Create(ctx, entity.NewWaitlistEntry(999, nil, now))
	assert.True(t, entity.IsConstraint(err, entity.ForeignKeyViolation))

	entry := entity.NewWaitlistEntry(lead.ID, map[string]bool{"email": true}, now)
	require.NoError(t, store.Waitlist().Create(ctx, entry))
	assert.Equal(t, int64(1), entry.ID)

	err = store.Waitlist().Create(ctx, entity.NewWaitlistEntry(lead.ID, nil, now))
	assert.True(t, entity.IsConstraint(err, entity.UniqueViolation))

	updated, err := store.Waitlist().UpdateStatus(ctx, entry.ID, entity.WaitlistActive, entity.WaitlistConverted)
	require.NoError(t, err)
	assert.Equal(t, entity.WaitlistConverted, updated.Status)
	assert.Equal(t, map[string]bool{"email": true}, updated.NotificationPreferences)

	_, err = store.Waitlist().UpdateStatus(ctx, entry.ID, entity.WaitlistActive, entity.WaitlistRemoved)
	assert.ErrorIs(t, err, entity.ErrInvalidWaitlistTransition)

	_, err = store.Waitlist().UpdateStatus(ctx, 42, entity.WaitlistActive, entity.WaitlistRemoved)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestUserRepository_Postgres(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	repo := store.Users()

	u, err := entity.NewUser("Ana", "ana@example.com", "11987654321", "hash")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, u))

	dup, _ := entity.NewUser("Ana 2", "ana@example.com", "", "hash")
	assert.True(t, entity.IsConstraint(repo.Create(ctx, dup), entity.UniqueViolation))

	u.Name = "Ana Maria"
	require.NoError(t, repo.Update(ctx, u))
	got, err := repo.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.Name)

	require.NoError(t, repo.Delete(ctx, u.ID))
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), entity.ErrNotFound)
}
