package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"tracking/internal/adapters/out/postgres/shipmentrepo"

	"github.com/lib/pq"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Settings are the connection parameters of the tracking database.
type Settings struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SslMode  string
}

// DSN builds a postgres URL for database name.
func (s Settings) DSN(name string) string {
	sslMode := s.SslMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.User, s.Password),
		Host:     fmt.Sprintf("%s:%s", s.Host, s.Port),
		Path:     name,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}

// EnsureDatabase connects to the maintenance database and creates s.Name when it
// does not exist yet.
func EnsureDatabase(ctx context.Context, s Settings) error {
	db, err := sql.Open("postgres", s.DSN("postgres"))
	if err != nil {
		return fmt.Errorf("open maintenance connection: %w", err)
	}
	defer db.Close()

	var exists bool
	if err := db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", s.Name,
	).Scan(&exists); err != nil {
		return fmt.Errorf("look up database %q: %w", s.Name, err)
	}
	if exists {
		return nil
	}

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(s.Name)); err != nil {
		var pqErr *pq.Error
		// 42P04 duplicate_database: another instance created it first.
		if errors.As(err, &pqErr) && pqErr.Code == "42P04" {
			return nil
		}
		return fmt.Errorf("create database %q: %w", s.Name, err)
	}
	return nil
}

// Open connects GORM to the tracking database and migrates the schema.
func Open(s Settings) (*gorm.DB, error) {
	db, err := gorm.Open(gormpostgres.Open(s.DSN(s.Name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %q: %w", s.Name, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or alters the tables owned by this adapter.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&shipmentrepo.ShipmentDTO{}); err != nil {
		return fmt.Errorf("migrate shipments: %w", err)
	}
	return nil
}
