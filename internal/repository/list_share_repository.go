package repository

import (
	"context"

	"github.com/boonegifts/server/internal/models"
)

// ListShareRepository implements ListShareRepo for PostgreSQL/SQLite
type ListShareRepository struct {
	db DBTX
}

// NewListShareRepository creates a new ListShareRepository
func NewListShareRepository(db DBTX) *ListShareRepository {
	return &ListShareRepository{db: db}
}

func (r *ListShareRepository) Exists(ctx context.Context, listID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM list_shares WHERE list_id = $1 AND user_id = $2)`
	err := r.db.QueryRowContext(ctx, query, listID, userID).Scan(&exists)
	return exists, err
}

func (r *ListShareRepository) GetByList(ctx context.Context, listID string) ([]*models.ListShare, error) {
	query := `SELECT id, list_id, user_id, created_at
			  FROM list_shares WHERE list_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := []*models.ListShare{}
	for rows.Next() {
		var s models.ListShare
		if err := rows.Scan(&s.ID, &s.ListID, &s.UserID, &s.CreatedAt); err != nil {
			return nil, err
		}
		shares = append(shares, &s)
	}
	return shares, rows.Err()
}

func (r *ListShareRepository) Add(ctx context.Context, share *models.ListShare) error {
	query := `INSERT INTO list_shares (id, list_id, user_id, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, share.ID, share.ListID, share.UserID, share.CreatedAt)
	if isUniqueViolation(err) {
		return models.ErrShareExists
	}
	return err
}

func (r *ListShareRepository) Delete(ctx context.Context, listID, userID string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx,
		`DELETE FROM list_shares WHERE list_id = $1 AND user_id = $2`, listID, userID))
}

// DeleteOnListsOf revokes every share granting userID access to ownerID's lists
func (r *ListShareRepository) DeleteOnListsOf(ctx context.Context, ownerID, userID string) (int64, error) {
	return rowCount(r.db.ExecContext(ctx,
		`DELETE FROM list_shares
		 WHERE list_id IN (SELECT id FROM gift_lists WHERE owner_id = $1) AND user_id = $2`,
		ownerID, userID))
}

// Hold locks the share row until the surrounding transaction ends and
// reports whether it exists. A revoke of the same share waits for the lock.
func (r *ListShareRepository) Hold(ctx context.Context, listID, userID string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx,
		`UPDATE list_shares SET user_id = user_id WHERE list_id = $1 AND user_id = $2`, listID, userID))
}
