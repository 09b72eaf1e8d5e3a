package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/ligue-funnel/internal/entity"
)

type LeadRepository struct {
	DB *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, name, COALESCE(email, '') AS email, phone_number, brand, description,
	company_size, company_segment, company_on_market, website, origin, origin_font,
	ip, country, city, user_agent, route, created_at, updated_at`

const sqlInsertLead = `
	INSERT INTO leads (
		name, email, phone_number, brand, description, company_size, company_segment,
		company_on_market, website, origin, origin_font, ip, country, city, user_agent,
		route, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	RETURNING id`

// Create grava o lead; email vazio vira NULL para não colidir na constraint única.
func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	lead.Email = entity.NormalizeEmail(lead.Email)

	err := r.DB.QueryRowxContext(ctx, sqlInsertLead,
		lead.Name,
		nullString(lead.Email),
		lead.PhoneNumber,
		lead.Brand,
		lead.Description,
		lead.CompanySize,
		lead.CompanySegment,
		lead.CompanyOnMarket,
		lead.Website,
		lead.Origin,
		lead.OriginFont,
		lead.IP,
		lead.Country,
		lead.City,
		lead.UserAgent,
		lead.Route,
		lead.CreatedAt,
		lead.UpdatedAt,
	).Scan(&lead.ID)

	return classify(err)
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	var lead entity.Lead
	if err := r.DB.GetContext(ctx, &lead, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id); err != nil {
		return nil, classify(err)
	}
	return &lead, nil
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return nil, entity.ErrNotFound
	}

	var lead entity.Lead
	if err := r.DB.GetContext(ctx, &lead, `SELECT `+leadColumns+` FROM leads WHERE email = $1`, email); err != nil {
		return nil, classify(err)
	}
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
