package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/boonegifts/server/internal/models"
)

// ConnectionRepository implements ConnectionRepo for PostgreSQL/SQLite
type ConnectionRepository struct {
	db DBTX
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(db DBTX) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

const connectionColumns = `id, requester_id, addressee_id, status, created_at, accepted_at`

func scanConnection(row interface{ Scan(...interface{}) error }) (*models.Connection, error) {
	var c models.Connection
	var acceptedAt sql.NullTime
	if err := row.Scan(&c.ID, &c.RequesterID, &c.AddresseeID, &c.Status, &c.CreatedAt, &acceptedAt); err != nil {
		return nil, err
	}
	if acceptedAt.Valid {
		c.AcceptedAt = &acceptedAt.Time
	}
	return &c, nil
}

func (r *ConnectionRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Connection, error) {
	c, err := scanConnection(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *ConnectionRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]*models.Connection, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conns := []*models.Connection{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*models.Connection, error) {
	return r.getOne(ctx, `SELECT `+connectionColumns+` FROM connections WHERE id = $1`, id)
}

// GetBetween finds the connection for the unordered pair (a, b)
func (r *ConnectionRepository) GetBetween(ctx context.Context, a, b string) (*models.Connection, error) {
	return r.getOne(ctx, `SELECT `+connectionColumns+` FROM connections WHERE pair_key = $1`,
		models.PairKey(a, b))
}

func (r *ConnectionRepository) GetAccepted(ctx context.Context, userID string) ([]*models.Connection, error) {
	return r.getMany(ctx, `SELECT `+connectionColumns+` FROM connections
		WHERE status = $1 AND (requester_id = $2 OR addressee_id = $2)
		ORDER BY accepted_at ASC`, models.ConnectionAccepted, userID)
}

func (r *ConnectionRepository) GetIncoming(ctx context.Context, userID string) ([]*models.Connection, error) {
	return r.getMany(ctx, `SELECT `+connectionColumns+` FROM connections
		WHERE status = $1 AND addressee_id = $2
		ORDER BY created_at ASC`, models.ConnectionPending, userID)
}

func (r *ConnectionRepository) Add(ctx context.Context, conn *models.Connection) error {
	query := `INSERT INTO connections (id, requester_id, addressee_id, pair_key, status, created_at, accepted_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		conn.ID, conn.RequesterID, conn.AddresseeID, conn.PairKey(), conn.Status, conn.CreatedAt, conn.AcceptedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrConnectionExists
	}
	return err
}

// Accept moves a pending connection to accepted. It reports false when the
// row is missing or was not pending.
func (r *ConnectionRepository) Accept(ctx context.Context, id string, at time.Time) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx,
		`UPDATE connections SET status = $1, accepted_at = $2 WHERE id = $3 AND status = $4`,
		models.ConnectionAccepted, at, id, models.ConnectionPending))
}

func (r *ConnectionRepository) Delete(ctx context.Context, id string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx, `DELETE FROM connections WHERE id = $1`, id))
}

// DeletePending deletes the connection only while it is still pending
func (r *ConnectionRepository) DeletePending(ctx context.Context, id string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx,
		`DELETE FROM connections WHERE id = $1 AND status = $2`, id, models.ConnectionPending))
}

// HoldAccepted locks the accepted connection between a and b until the
// surrounding transaction ends and reports whether one exists
func (r *ConnectionRepository) HoldAccepted(ctx context.Context, a, b string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx,
		`UPDATE connections SET status = status WHERE pair_key = $1 AND status = $2`,
		models.PairKey(a, b), models.ConnectionAccepted))
}
