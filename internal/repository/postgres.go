package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// NewPostgresDB creates a PostgreSQL connection pool and runs migrations
func NewPostgresDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := Migrate(db, DialectPostgres); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// isUniqueViolation detects a unique constraint failure from either driver
func isUniqueViolation(err error) bool {
	return isSQLiteUniqueViolation(err) || isPostgresUniqueViolation(err)
}
