package repository

import (
	"context"
	"database/sql"

	"github.com/boonegifts/server/internal/models"
)

// GiftListRepository implements GiftListRepo for PostgreSQL/SQLite
type GiftListRepository struct {
	db DBTX
}

// NewGiftListRepository creates a new GiftListRepository
func NewGiftListRepository(db DBTX) *GiftListRepository {
	return &GiftListRepository{db: db}
}

const giftListSelect = `SELECT l.id, l.owner_id, u.name, l.name, l.description, l.created_at, l.updated_at
			  FROM gift_lists l INNER JOIN users u ON u.id = l.owner_id`

func scanGiftList(row interface{ Scan(...interface{}) error }) (*models.GiftList, error) {
	var l models.GiftList
	var description sql.NullString
	if err := row.Scan(&l.ID, &l.OwnerID, &l.OwnerName, &l.Name, &description,
		&l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		l.Description = &description.String
	}
	return &l, nil
}

func (r *GiftListRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.GiftList, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []*models.GiftList
	for rows.Next() {
		l, err := scanGiftList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *GiftListRepository) GetByID(ctx context.Context, id string) (*models.GiftList, error) {
	l, err := scanGiftList(r.db.QueryRowContext(ctx, giftListSelect+` WHERE l.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *GiftListRepository) GetOwned(ctx context.Context, userID string) ([]*models.GiftList, error) {
	return r.query(ctx, giftListSelect+` WHERE l.owner_id = $1 ORDER BY l.created_at ASC`, userID)
}

func (r *GiftListRepository) GetSharedWith(ctx context.Context, userID string) ([]*models.GiftList, error) {
	return r.query(ctx, giftListSelect+`
			  WHERE l.id IN (SELECT list_id FROM list_shares WHERE user_id = $1)
			  ORDER BY l.created_at ASC`, userID)
}

func (r *GiftListRepository) GetVisibleTo(ctx context.Context, userID string) ([]*models.GiftList, error) {
	return r.query(ctx, giftListSelect+`
			  WHERE l.owner_id = $1 OR l.id IN (SELECT list_id FROM list_shares WHERE user_id = $1)
			  ORDER BY l.created_at ASC`, userID)
}

func (r *GiftListRepository) GetByCollection(ctx context.Context, collectionID string) ([]*models.GiftList, error) {
	return r.query(ctx, giftListSelect+`
			  INNER JOIN collection_items ci ON ci.list_id = l.id
			  WHERE ci.collection_id = $1 ORDER BY ci.created_at ASC`, collectionID)
}

func (r *GiftListRepository) Add(ctx context.Context, list *models.GiftList) error {
	query := `INSERT INTO gift_lists (id, owner_id, name, description, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		list.ID, list.OwnerID, list.Name, list.Description, list.CreatedAt, list.UpdatedAt,
	)
	return err
}

// Update writes name and description. The owner column is never updated.
func (r *GiftListRepository) Update(ctx context.Context, list *models.GiftList) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE gift_lists SET name = $1, description = $2, updated_at = $3 WHERE id = $4`,
		list.Name, list.Description, list.UpdatedAt, list.ID,
	)
	return err
}

func (r *GiftListRepository) Delete(ctx context.Context, id string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx, `DELETE FROM gift_lists WHERE id = $1`, id))
}
