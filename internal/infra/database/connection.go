package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // driver "postgres"
)

// NewDBConnection abre o pool com o driver escolhido (pgx ou postgres) e testa o Ping.
func NewDBConnection(driver, connString string) (*sqlx.DB, error) {
	switch driver {
	case "pgx", "postgres":
	default:
		return nil, fmt.Errorf("driver de banco não suportado: %q", driver)
	}

	db, err := sqlx.Open(driver, connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, classify(err)
	}

	return db, nil
}

// Store agrupa os repositórios sobre uma única conexão.
type Store struct {
	DB *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return classify(s.DB.PingContext(ctx))
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Leads() *LeadRepository             { return NewLeadRepository(s.DB) }
func (s *Store) Submissions() *SubmissionRepository { return NewSubmissionRepository(s.DB) }
func (s *Store) Waitlist() *WaitlistRepository      { return NewWaitlistRepository(s.DB) }
func (s *Store) Users() *UserRepository             { return NewUserRepository(s.DB) }
