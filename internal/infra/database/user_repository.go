package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/ligue-funnel/internal/entity"
)

type UserRepository struct {
	DB *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, name, email, phone_number, password_hash, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	const query = `
		INSERT INTO users (name, email, phone_number, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.DB.QueryRowxContext(ctx, query,
		u.Name, u.Email, u.PhoneNumber, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)

	return classify(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var u entity.User
	if err := r.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.DB.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, entity.NormalizeEmail(email)); err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	const query = `
		UPDATE users
		SET name = $2, email = $3, phone_number = $4, password_hash = $5, updated_at = $6
		WHERE id = $1`

	res, err := r.DB.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PhoneNumber, u.PasswordHash, u.UpdatedAt)
	if err != nil {
		return classify(err)
	}
	return expectAffected(res)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	return expectAffected(res)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectAffected(res rowsAffecter) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
