package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"corebanking/internal/domain"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Postgres wraps *sql.DB to satisfy domain.DB: BeginTx returns the
// transaction behind the domain.Tx seam, everything else is the embedded
// pool.
type Postgres struct {
	*sql.DB
}

func NewPostgres(cfg Config) (*Postgres, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &Postgres{DB: db}, nil
}

func (p *Postgres) BeginTx(ctx context.Context, opts *sql.TxOptions) (domain.Tx, error) {
	return p.DB.BeginTx(ctx, opts)
}
