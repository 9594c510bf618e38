package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/boonegifts/server/internal/models"
)

// InviteRepository implements InviteRepo for PostgreSQL/SQLite
type InviteRepository struct {
	db DBTX
}

// NewInviteRepository creates a new InviteRepository
func NewInviteRepository(db DBTX) *InviteRepository {
	return &InviteRepository{db: db}
}

const inviteColumns = `id, token, email, role, expires_at, used_at, invited_by_id, created_at`

func scanInvite(row interface{ Scan(...interface{}) error }) (*models.Invite, error) {
	var inv models.Invite
	var usedAt sql.NullTime
	if err := row.Scan(&inv.ID, &inv.Token, &inv.Email, &inv.Role, &inv.ExpiresAt,
		&usedAt, &inv.InvitedByID, &inv.CreatedAt); err != nil {
		return nil, err
	}
	if usedAt.Valid {
		inv.UsedAt = &usedAt.Time
	}
	return &inv, nil
}

func (r *InviteRepository) GetByID(ctx context.Context, id string) (*models.Invite, error) {
	inv, err := scanInvite(r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r *InviteRepository) GetByToken(ctx context.Context, token string) (*models.Invite, error) {
	inv, err := scanInvite(r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE token = $1`, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r *InviteRepository) GetAll(ctx context.Context) ([]*models.Invite, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+inviteColumns+` FROM invites ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (r *InviteRepository) Add(ctx context.Context, invite *models.Invite) error {
	query := `INSERT INTO invites (id, token, email, role, expires_at, used_at, invited_by_id, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		invite.ID, invite.Token, invite.Email, invite.Role, invite.ExpiresAt,
		invite.UsedAt, invite.InvitedByID, invite.CreatedAt,
	)
	return err
}

// MarkUsed consumes the invite only if nobody consumed it first
func (r *InviteRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx,
		`UPDATE invites SET used_at = $1 WHERE id = $2 AND used_at IS NULL`, usedAt, id))
}

func (r *InviteRepository) Delete(ctx context.Context, id string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx, `DELETE FROM invites WHERE id = $1`, id))
}
