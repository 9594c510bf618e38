package repository

import (
	"context"

	"github.com/boonegifts/server/internal/models"
)

// CollectionItemRepository implements CollectionItemRepo for PostgreSQL/SQLite
type CollectionItemRepository struct {
	db DBTX
}

// NewCollectionItemRepository creates a new CollectionItemRepository
func NewCollectionItemRepository(db DBTX) *CollectionItemRepository {
	return &CollectionItemRepository{db: db}
}

func (r *CollectionItemRepository) Add(ctx context.Context, item *models.CollectionItem) error {
	query := `INSERT INTO collection_items (id, collection_id, list_id, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, item.ID, item.CollectionID, item.ListID, item.CreatedAt)
	if isUniqueViolation(err) {
		return models.ErrCollectionItemExists
	}
	return err
}

func (r *CollectionItemRepository) Delete(ctx context.Context, collectionID, listID string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx,
		`DELETE FROM collection_items WHERE collection_id = $1 AND list_id = $2`, collectionID, listID))
}

// DeleteCrossReferences removes items in collectionOwnerID's collections that
// point at lists owned by listOwnerID
func (r *CollectionItemRepository) DeleteCrossReferences(ctx context.Context, collectionOwnerID, listOwnerID string) (int64, error) {
	return rowCount(r.db.ExecContext(ctx,
		`DELETE FROM collection_items
		 WHERE collection_id IN (SELECT id FROM collections WHERE owner_id = $1)
		 AND list_id IN (SELECT id FROM gift_lists WHERE owner_id = $2)`,
		collectionOwnerID, listOwnerID))
}
