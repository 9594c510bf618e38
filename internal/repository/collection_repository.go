package repository

import (
	"context"
	"database/sql"

	"github.com/boonegifts/server/internal/models"
)

// CollectionRepository implements CollectionRepo for PostgreSQL/SQLite
type CollectionRepository struct {
	db DBTX
}

// NewCollectionRepository creates a new CollectionRepository
func NewCollectionRepository(db DBTX) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	query := `SELECT id, owner_id, name, description, created_at, updated_at
			  FROM collections WHERE id = $1`

	var c models.Collection
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.OwnerID, &c.Name, &description, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if description.Valid {
		c.Description = &description.String
	}
	return &c, nil
}

func (r *CollectionRepository) GetAllForUser(ctx context.Context, userID string) ([]*models.Collection, error) {
	query := `SELECT id, owner_id, name, description, created_at, updated_at
			  FROM collections WHERE owner_id = $1 ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collections := []*models.Collection{}
	for rows.Next() {
		var c models.Collection
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if description.Valid {
			c.Description = &description.String
		}
		collections = append(collections, &c)
	}
	return collections, rows.Err()
}

func (r *CollectionRepository) Add(ctx context.Context, collection *models.Collection) error {
	query := `INSERT INTO collections (id, owner_id, name, description, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		collection.ID, collection.OwnerID, collection.Name, collection.Description,
		collection.CreatedAt, collection.UpdatedAt,
	)
	return err
}

func (r *CollectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	query := `UPDATE collections SET name = $1, description = $2, updated_at = $3 WHERE id = $4`

	_, err := r.db.ExecContext(ctx, query,
		collection.Name, collection.Description, collection.UpdatedAt, collection.ID,
	)
	return err
}

func (r *CollectionRepository) Delete(ctx context.Context, id string) (bool, error) {
	return rowsTouched(r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id))
}
