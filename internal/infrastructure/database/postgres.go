package database

import (
	"fmt"
	"time"

	"github.com/gdugdh24/tapcard-backend/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// NewPostgresDB opens the sqlx pool and waits until Postgres answers.
func NewPostgresDB(cfg *config.DatabaseConfig, log *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	log = log.With(zap.String("host", cfg.Host), zap.Int("port", cfg.Port), zap.String("db", cfg.DBName))
	if err := pingWithRetry(log, "postgres", time.Second, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
