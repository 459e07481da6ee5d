package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// NewDB creates a MySQL connection pool from dsn. parseTime and
// clientFoundRows are forced on: scans read DATETIME into time.Time, and an
// UPDATE that leaves a row unchanged still reports it as affected.
func NewDB(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		slog.Warn("database ping failed, continuing", "addr", cfg.Addr, "error", err)
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT AUTO_INCREMENT PRIMARY KEY,
		username      VARCHAR(150) NOT NULL UNIQUE,
		email         VARCHAR(254) NOT NULL DEFAULT '',
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(16)  NOT NULL DEFAULT 'standard',
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          BIGINT AUTO_INCREMENT PRIMARY KEY,
		title       VARCHAR(100) NOT NULL,
		description TEXT         NOT NULL,
		status      VARCHAR(20)  NOT NULL DEFAULT 'new',
		owner_id    BIGINT       NOT NULL,
		created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_tasks_owner (owner_id),
		CONSTRAINT fk_tasks_owner FOREIGN KEY (owner_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
}

// Migrate creates the users and tasks tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

// isDuplicateEntryError reports whether err is a MySQL unique key violation.
func isDuplicateEntryError(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
