package database

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/ligue-funnel/internal/entity"
)

type WaitlistRepository struct {
	DB *sqlx.DB
}

func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{DB: db}
}

const waitlistColumns = `id, lead_id, enrollment_attempt_at, notification_preferences, status, created_at, updated_at`

type waitlistRow struct {
	ID                      int64     `db:"id"`
	LeadID                  int64     `db:"lead_id"`
	EnrollmentAttemptAt     time.Time `db:"enrollment_attempt_at"`
	NotificationPreferences boolMap   `db:"notification_preferences"`
	Status                  string    `db:"status"`
	CreatedAt               time.Time `db:"created_at"`
	UpdatedAt               time.Time `db:"updated_at"`
}

func (row waitlistRow) toEntity() *entity.WaitlistEntry {
	return &entity.WaitlistEntry{
		ID:                      row.ID,
		LeadID:                  row.LeadID,
		EnrollmentAttemptAt:     row.EnrollmentAttemptAt,
		NotificationPreferences: map[string]bool(row.NotificationPreferences),
		Status:                  entity.WaitlistStatus(row.Status),
		CreatedAt:               row.CreatedAt,
		UpdatedAt:               row.UpdatedAt,
	}
}

func (r *WaitlistRepository) Create(ctx context.Context, entry *entity.WaitlistEntry) error {
	const query = `
		INSERT INTO waitlist_entries (lead_id, enrollment_attempt_at, notification_preferences, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.DB.QueryRowxContext(ctx, query,
		entry.LeadID,
		entry.EnrollmentAttemptAt,
		boolMap(entry.NotificationPreferences),
		string(entry.Status),
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&entry.ID)

	return classify(err)
}

func (r *WaitlistRepository) FindByID(ctx context.Context, id int64) (*entity.WaitlistEntry, error) {
	var row waitlistRow
	if err := r.DB.GetContext(ctx, &row, `SELECT `+waitlistColumns+` FROM waitlist_entries WHERE id = $1`, id); err != nil {
		return nil, classify(err)
	}
	return row.toEntity(), nil
}

func (r *WaitlistRepository) FindByLeadID(ctx context.Context, leadID int64) (*entity.WaitlistEntry, error) {
	var row waitlistRow
	if err := r.DB.GetContext(ctx, &row, `SELECT `+waitlistColumns+` FROM waitlist_entries WHERE lead_id = $1`, leadID); err != nil {
		return nil, classify(err)
	}
	return row.toEntity(), nil
}

// UpdateStatus é compare-and-set: só altera se o status no banco ainda for from.
func (r *WaitlistRepository) UpdateStatus(ctx context.Context, id int64, from, to entity.WaitlistStatus) (*entity.WaitlistEntry, error) {
	if !from.CanTransitionTo(to) {
		return nil, entity.ErrInvalidWaitlistTransition
	}

	const query = `
		UPDATE waitlist_entries
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + waitlistColumns

	var row waitlistRow
	err := r.DB.GetContext(ctx, &row, query, id, string(from), string(to))
	if err == nil {
		return row.toEntity(), nil
	}

	err = classify(err)
	if !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	// nenhuma linha: ou o id não existe ou o status já mudou
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, entity.ErrInvalidWaitlistTransition
}
