package repository

import (
	"context"
	"fmt"

	"github.com/boonegifts/server/internal/models"
)

// CascadeResult counts what a disconnect removed
type CascadeResult struct {
	GiftsUnclaimed int64
	SharesRevoked  int64
	ItemsRemoved   int64
}

// Disconnect deletes the accepted connection between a and b together with
// everything the connection made possible between them. It runs in a single
// transaction.
//
// The connection row goes first and the shares second. A share or claim
// written under a lock from HoldAccepted or Hold either commits before those
// deletes run, and is then swept up by the later steps, or sees the rows
// already gone.
func (s *Store) Disconnect(ctx context.Context, connectionID, a, b string) (*CascadeResult, error) {
	res := &CascadeResult{}

	err := s.RunInTx(ctx, func(r *Repos) error {
		deleted, err := r.Connections.Delete(ctx, connectionID)
		if err != nil {
			return fmt.Errorf("failed to delete connection: %w", err)
		}
		if !deleted {
			return models.ErrConnectionNotFound
		}

		pairs := [][2]string{{a, b}, {b, a}}
		for _, pair := range pairs {
			n, err := r.Shares.DeleteOnListsOf(ctx, pair[0], pair[1])
			if err != nil {
				return fmt.Errorf("failed to revoke shares: %w", err)
			}
			res.SharesRevoked += n
		}

		for _, pair := range pairs {
			owner, other := pair[0], pair[1]

			n, err := r.Gifts.UnclaimOnListsOf(ctx, owner, other)
			if err != nil {
				return fmt.Errorf("failed to release claims: %w", err)
			}
			res.GiftsUnclaimed += n

			n, err = r.CollectionItems.DeleteCrossReferences(ctx, owner, other)
			if err != nil {
				return fmt.Errorf("failed to remove collection items: %w", err)
			}
			res.ItemsRemoved += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
