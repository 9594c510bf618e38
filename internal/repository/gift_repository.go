package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/boonegifts/server/internal/models"
)

// GiftRepository implements GiftRepo for PostgreSQL/SQLite
type GiftRepository struct {
	db DBTX
}

// NewGiftRepository creates a new GiftRepository
func NewGiftRepository(db DBTX) *GiftRepository {
	return &GiftRepository{db: db}
}

const giftColumns = `id, list_id, name, description, url, price, claimed_by_id, claimed_at, created_at, updated_at`

func scanGift(row interface{ Scan(...interface{}) error }) (*models.Gift, error) {
	var g models.Gift
	var (
		description, url, claimedBy sql.NullString
		price                       sql.NullFloat64
		claimedAt                   sql.NullTime
	)
	if err := row.Scan(&g.ID, &g.ListID, &g.Name, &description, &url, &price,
		&claimedBy, &claimedAt, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		g.Description = &description.String
	}
	if url.Valid {
		g.URL = &url.String
	}
	if price.Valid {
		g.Price = &price.Float64
	}
	if claimedBy.Valid {
		g.ClaimedByID = &claimedBy.String
	}
	if claimedAt.Valid {
		g.ClaimedAt = &claimedAt.Time
	}
	return &g, nil
}

func (r *GiftRepository) GetByID(ctx context.Context, id string) (*models.Gift, error) {
	g, err := scanGift(r.db.QueryRowContext(ctx, `SELECT `+giftColumns+` FROM gifts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (r *GiftRepository) GetByList(ctx context.Context, listID string) ([]*models.Gift, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+giftColumns+` FROM gifts WHERE list_id = $1 ORDER BY created_at ASC`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gifts := []*models.Gift{}
	for rows.Next() {
		g, err := scanGift(rows)
		if err != nil {
			return nil, err
		}
		gifts = append(gifts, g)
	}
	return gifts, rows.Err()
}

func (r *GiftRepository) Add(ctx context.Context, gift *models.Gift) error {
	query := `INSERT INTO gifts (id, list_id, name, description, url, price, claimed_by_id, claimed_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		gift.ID, gift.ListID, gift.Name, gift.Description, gift.URL, gift.Price,
		gift.ClaimedByID, gift.ClaimedAt, gift.CreatedAt, gift.UpdatedAt,
	)
	return err
}

// Update writes the descriptive fields only; claim state has its own writes.
func (r *GiftRepository) Update(ctx context.Context, gift *models.Gift) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE gifts SET name = $1, description = $2, url = $3, price = $4, updated_at = $5 WHERE id = $6`,
		gift.Name, gift.Description, gift.URL, gift.Price, gift.UpdatedAt, gift.ID,
	)
	return err
}

// Claim sets the claimant only while the gift is unclaimed
func (r *GiftRepository) Claim(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx,
		`UPDATE gifts SET claimed_by_id = $1, claimed_at = $2
		 WHERE id = $3 AND claimed_by_id IS NULL`, userID, at, id))
}

// Unclaim clears the claim only when userID is the current claimant
func (r *GiftRepository) Unclaim(ctx context.Context, id, userID string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx,
		`UPDATE gifts SET claimed_by_id = NULL, claimed_at = NULL
		 WHERE id = $1 AND claimed_by_id = $2`, id, userID))
}

// DeleteUnclaimed removes the gift only while nobody holds it
func (r *GiftRepository) DeleteUnclaimed(ctx context.Context, id string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx,
		`DELETE FROM gifts WHERE id = $1 AND claimed_by_id IS NULL`, id))
}

// UnclaimOnListsOf releases every claim claimantID holds on ownerID's lists
func (r *GiftRepository) UnclaimOnListsOf(ctx context.Context, ownerID, claimantID string) (int64, error) {
	return rowCount(r.db.ExecContext(ctx,
		`UPDATE gifts SET claimed_by_id = NULL, claimed_at = NULL
		 WHERE claimed_by_id = $1
		 AND list_id IN (SELECT id FROM gift_lists WHERE owner_id = $2)`, claimantID, ownerID))
}

// UnclaimAllBy releases every claim held by claimantID
func (r *GiftRepository) UnclaimAllBy(ctx context.Context, claimantID string) (int64, error) {
	return rowCount(r.db.ExecContext(ctx,
		`UPDATE gifts SET claimed_by_id = NULL, claimed_at = NULL WHERE claimed_by_id = $1`, claimantID))
}
