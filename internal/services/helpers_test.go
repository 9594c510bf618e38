package services

import (
	"sync"
	"testing"
	"time"

	"github.com/boonegifts/server/internal/authz"
	"github.com/boonegifts/server/internal/repository"
	"github.com/boonegifts/server/internal/testutil"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[string][]WSMessage
}

func (n *recordingNotifier) SendToUser(userID string, msg WSMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = make(map[string][]WSMessage)
	}
	n.sent[userID] = append(n.sent[userID], msg)
}

func (n *recordingNotifier) messages(userID string) []WSMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[userID]
}

type testEnv struct {
	store       *repository.Store
	engine      *authz.Engine
	notifier    *recordingNotifier
	tokens      *TokenService
	auth        *AuthService
	admin       *AdminService
	lists       *ListService
	claims      *ClaimService
	shares      *ShareService
	collections *CollectionService
	connections *ConnectionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := testutil.NewStore(t)
	engine := authz.NewEngine(store.Shares)
	notifier := &recordingNotifier{}
	tokens := NewTokenService("test-secret", 15*time.Minute, 24*time.Hour)
	connections := NewConnectionService(store.Connections, store.Users, store, notifier, nil)

	return &testEnv{
		store:       store,
		engine:      engine,
		notifier:    notifier,
		tokens:      tokens,
		auth:        NewAuthService(store.Users, store, tokens, nil),
		admin:       NewAdminService(engine, store.Users, store.Invites, store, nil, "http://localhost:5173", nil),
		lists:       NewListService(engine, store.Lists, store.Gifts),
		claims:      NewClaimService(engine, store, nil),
		shares:      NewShareService(engine, store.Lists, store.Shares, store),
		collections: NewCollectionService(engine, store.Collections, store.CollectionItems, store.Lists, store),
		connections: connections,
	}
}

func strPtr(s string) *string {
	return &s
}
