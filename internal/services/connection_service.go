package services

import (
	"context"
	"fmt"

	"github.com/boonegifts/server/internal/models"
	"github.com/boonegifts/server/internal/observability"
	"github.com/boonegifts/server/internal/repository"
)

// Disconnector tears down an accepted connection and everything it enabled
type Disconnector interface {
	Disconnect(ctx context.Context, connectionID, a, b string) (*repository.CascadeResult, error)
}

// ConnectionService manages the connection lifecycle between users.
//
// A request starts pending and can only move to accepted. Rejecting,
// cancelling and disconnecting all delete the row; deleting an accepted
// connection also releases claims, revokes shares and drops collection
// entries that crossed between the two users.
type ConnectionService struct {
	connRepo repository.ConnectionRepo
	userRepo repository.UserRepo
	store    Disconnector
	notifier Notifier
	metrics  *observability.BusinessMetrics
}

// NewConnectionService creates a new ConnectionService. notifier may be nil.
func NewConnectionService(
	connRepo repository.ConnectionRepo,
	userRepo repository.UserRepo,
	store Disconnector,
	notifier Notifier,
	metrics *observability.BusinessMetrics,
) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		userRepo: userRepo,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
	}
}

// CreateConnection sends a connection request from actor to the user named
// by id or email
func (s *ConnectionService) CreateConnection(ctx context.Context, actor *models.User, req *models.CreateConnectionRequest) (*models.ConnectionResponse, error) {
	target, err := s.resolveTarget(ctx, req)
	if err != nil {
		return nil, err
	}

	conn, err := models.NewConnection(actor.ID, target.ID)
	if err != nil {
		return nil, err
	}

	existing, err := s.connRepo.GetBetween(ctx, actor.ID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check connection: %w", err)
	}
	if existing != nil {
		return nil, models.ErrConnectionExists
	}

	if err := s.connRepo.Add(ctx, conn); err != nil {
		if _, ok := models.KindOf(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}

	s.metrics.RecordConnection(ctx, "requested")
	s.notify(target.ID, WSTypeConnectionRequested, conn, actor)
	return toConnectionResponse(conn, target), nil
}

func (s *ConnectionService) resolveTarget(ctx context.Context, req *models.CreateConnectionRequest) (*models.User, error) {
	var (
		target *models.User
		err    error
	)
	switch {
	case req.UserID != nil && *req.UserID != "":
		target, err = s.userRepo.GetByID(ctx, *req.UserID)
	case req.Email != nil && *req.Email != "":
		email, normErr := models.NormalizeEmail(*req.Email)
		if normErr != nil {
			return nil, normErr
		}
		target, err = s.userRepo.GetByEmail(ctx, email)
	default:
		return nil, models.ErrConnectTargetRequired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return nil, models.ErrUserNotFound
	}
	return target, nil
}

// AcceptConnection accepts a pending request addressed to actor
func (s *ConnectionService) AcceptConnection(ctx context.Context, actor *models.User, connectionID string) (*models.ConnectionResponse, error) {
	conn, err := s.getConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.AddresseeID != actor.ID {
		return nil, models.ErrNotAddressee
	}
	if conn.IsAccepted() {
		return nil, models.ErrConnectionAccepted
	}

	conn.Accept()
	accepted, err := s.connRepo.Accept(ctx, conn.ID, *conn.AcceptedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to accept connection: %w", err)
	}
	if !accepted {
		// Accepted or deleted concurrently
		current, err := s.getConnection(ctx, connectionID)
		if err != nil {
			return nil, err
		}
		if current.IsAccepted() {
			return nil, models.ErrConnectionAccepted
		}
		return nil, models.ErrConnectionNotFound
	}

	requester, err := s.userRepo.GetByID(ctx, conn.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if requester == nil {
		return nil, models.ErrUserNotFound
	}

	s.metrics.RecordConnection(ctx, "accepted")
	s.notify(requester.ID, WSTypeConnectionAccepted, conn, actor)
	return toConnectionResponse(conn, requester), nil
}

// DeleteConnection rejects, cancels or severs a connection. Severing an
// accepted connection runs the disconnect cascade in one transaction.
func (s *ConnectionService) DeleteConnection(ctx context.Context, actor *models.User, connectionID string) error {
	ctx, span := observability.StartServiceSpan(ctx, "ConnectionService", "DeleteConnection")
	defer span.End()
	span.SetAttributes(observability.ConnectionID(connectionID), observability.UserID(actor.ID))

	conn, err := s.getConnection(ctx, connectionID)
	if err != nil {
		observability.RecordError(span, err)
		return err
	}
	if !conn.Involves(actor.ID) {
		return models.ErrNotConnectionParty
	}

	if !conn.IsAccepted() {
		deleted, err := s.connRepo.DeletePending(ctx, conn.ID)
		if err != nil {
			observability.RecordError(span, err)
			return fmt.Errorf("failed to delete connection: %w", err)
		}
		if deleted {
			s.metrics.RecordConnection(ctx, "rejected")
			observability.SetSuccess(span)
			return nil
		}
		// Accepted or deleted since it was read
		if conn, err = s.getConnection(ctx, connectionID); err != nil {
			observability.RecordError(span, err)
			return err
		}
	}

	res, err := s.store.Disconnect(ctx, conn.ID, conn.RequesterID, conn.AddresseeID)
	if err != nil {
		observability.RecordError(span, err)
		if _, ok := models.KindOf(err); ok {
			return err
		}
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	s.metrics.RecordConnection(ctx, "disconnected")
	s.metrics.RecordCascade(ctx, res.GiftsUnclaimed, res.SharesRevoked, res.ItemsRemoved)
	observability.AddEvent(span, "cascade")
	observability.WithContext(ctx).
		WithField("connection_id", conn.ID).
		WithFields(map[string]interface{}{
			"gifts_unclaimed": res.GiftsUnclaimed,
			"shares_revoked":  res.SharesRevoked,
			"items_removed":   res.ItemsRemoved,
		}).Info("Connection severed")
	observability.SetSuccess(span)
	return nil
}

// requireConnected fails with Forbidden unless a and b hold an accepted
// connection. Run inside a transaction, the connection row stays locked until
// commit and a concurrent disconnect waits for it.
func requireConnected(ctx context.Context, conns repository.ConnectionRepo, a, b string) error {
	held, err := conns.HoldAccepted(ctx, a, b)
	if err != nil {
		return fmt.Errorf("failed to check connection: %w", err)
	}
	if !held {
		return models.ErrShareNotConnected
	}
	return nil
}

// ListConnections returns actor's accepted connections
func (s *ConnectionService) ListConnections(ctx context.Context, actor *models.User) ([]*models.ConnectionResponse, error) {
	conns, err := s.connRepo.GetAccepted(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return s.render(ctx, actor, conns)
}

// ListIncoming returns pending requests addressed to actor
func (s *ConnectionService) ListIncoming(ctx context.Context, actor *models.User) ([]*models.ConnectionResponse, error) {
	conns, err := s.connRepo.GetIncoming(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return s.render(ctx, actor, conns)
}

func (s *ConnectionService) render(ctx context.Context, actor *models.User, conns []*models.Connection) ([]*models.ConnectionResponse, error) {
	out := make([]*models.ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		other, err := s.userRepo.GetByID(ctx, c.OtherParty(actor.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		if other == nil {
			continue
		}
		out = append(out, toConnectionResponse(c, other))
	}
	return out, nil
}

func (s *ConnectionService) getConnection(ctx context.Context, id string) (*models.Connection, error) {
	conn, err := s.connRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	if conn == nil {
		return nil, models.ErrConnectionNotFound
	}
	return conn, nil
}

func (s *ConnectionService) notify(userID, msgType string, conn *models.Connection, from *models.User) {
	if s.notifier == nil {
		return
	}
	s.notifier.SendToUser(userID, WSMessage{
		Type: msgType,
		Payload: ConnectionEventPayload{
			ConnectionID: conn.ID,
			UserID:       from.ID,
			Name:         from.Name,
			Email:        from.Email,
		},
	})
}

func toConnectionResponse(c *models.Connection, other *models.User) *models.ConnectionResponse {
	return &models.ConnectionResponse{
		ID:         c.ID,
		Status:     c.Status,
		User:       other.Summary(),
		CreatedAt:  c.CreatedAt,
		AcceptedAt: c.AcceptedAt,
	}
}
