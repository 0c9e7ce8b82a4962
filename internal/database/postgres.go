package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/AnshRaj112/watchlist-backend/internal/models"
)

// ConnectPostgres connects to PostgreSQL and creates the audit tables.
func ConnectPostgres(ctx context.Context, postgresURI string, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("connected to PostgreSQL")

	if err := InitPostgresTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS login_events (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			user_id VARCHAR(24),
			username VARCHAR(255) NOT NULL,
			success BOOLEAN NOT NULL,
			ip_address VARCHAR(255),
			user_agent TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_login_events_user_id ON login_events(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_login_events_created_at ON login_events(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_login_events_ip_address ON login_events(ip_address)`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// LoginAudit writes login attempts to the login_events table.
type LoginAudit struct {
	db *sql.DB
}

func NewLoginAudit(db *sql.DB) *LoginAudit {
	return &LoginAudit{db: db}
}

func (a *LoginAudit) Record(ctx context.Context, e models.LoginEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO login_events (created_at, user_id, username, success, ip_address, user_agent)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
	`, e.CreatedAt, e.UserID, e.Username, e.Success, e.IPAddress, e.UserAgent)
	return err
}
