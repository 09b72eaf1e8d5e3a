package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/ligue-funnel/internal/entity"
)

type SubmissionRepository struct {
	DB *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

type submissionRow struct {
	ID        int64      `db:"id"`
	LeadID    int64      `db:"lead_id"`
	Type      string     `db:"type"`
	Metadata  jsonObject `db:"metadata"`
	CreatedAt time.Time  `db:"created_at"`
}

func (row submissionRow) toEntity() *entity.LeadSubmission {
	return &entity.LeadSubmission{
		ID:        row.ID,
		LeadID:    row.LeadID,
		Type:      entity.SubmissionType(row.Type),
		Metadata:  map[string]any(row.Metadata),
		CreatedAt: row.CreatedAt,
	}
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *entity.LeadSubmission) error {
	const query = `
		INSERT INTO lead_submissions (lead_id, type, metadata, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.DB.QueryRowxContext(ctx, query,
		sub.LeadID,
		string(sub.Type),
		jsonObject(sub.Metadata),
		sub.CreatedAt,
	).Scan(&sub.ID)

	return classify(err)
}

func (r *SubmissionRepository) ListByLeadID(ctx context.Context, leadID int64) ([]*entity.LeadSubmission, error) {
	const query = `
		SELECT id, lead_id, type, metadata, created_at
		FROM lead_submissions
		WHERE lead_id = $1
		ORDER BY id`

	var rows []submissionRow
	if err := r.DB.SelectContext(ctx, &rows, query, leadID); err != nil {
		return nil, classify(err)
	}

	out := make([]*entity.LeadSubmission, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
