package handlers

import (
	"net/http"
	"time"

	"github.com/boonegifts/server/internal/middleware"
	"github.com/boonegifts/server/internal/observability"
	"github.com/boonegifts/server/internal/services"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps carries everything the HTTP layer needs
type RouterDeps struct {
	Auth        *services.AuthService
	Admin       *services.AdminService
	Lists       *services.ListService
	Claims      *services.ClaimService
	Shares      *services.ShareService
	Collections *services.CollectionService
	Connections *services.ConnectionService
	Hub         *services.WebSocketHub
	DB          Pinger

	RefreshTTL  time.Duration
	CORSOrigins []string

	// Optional
	LoginLimiter func(http.Handler) http.Handler
	ServiceName  string
	HTTPMetrics  *observability.HTTPMetrics
	Sentry       bool
}

// NewRouter wires every route onto a chi router
func NewRouter(d RouterDeps) http.Handler {
	authHandler := NewAuthHandler(d.Auth, d.RefreshTTL)
	adminHandler := NewAdminHandler(d.Admin)
	listHandler := NewListHandler(d.Lists, d.Claims)
	shareHandler := NewShareHandler(d.Shares)
	collectionHandler := NewCollectionHandler(d.Collections)
	connectionHandler := NewConnectionHandler(d.Connections)
	healthHandler := NewHealthHandler(d.DB)
	wsHandler := NewWebSocketHandler(d.Hub, d.Auth, d.CORSOrigins)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if d.Sentry {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if d.ServiceName != "" {
		r.Use(observability.TracingMiddleware(d.ServiceName))
	}
	if d.HTTPMetrics != nil {
		r.Use(observability.MetricsMiddleware(d.HTTPMetrics))
	}

	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/ws", wsHandler.HandleConnection)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", VersionHandler)

		r.Route("/auth", func(r chi.Router) {
			if d.LoginLimiter != nil {
				r.With(d.LoginLimiter).Post("/login", authHandler.Login)
			} else {
				r.Post("/login", authHandler.Login)
			}
			r.Post("/register", authHandler.Register)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
			r.With(middleware.BearerAuth(d.Auth)).Get("/me", authHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(d.Auth))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", adminHandler.ListUsers)
				r.Get("/{id}", adminHandler.GetUser)
				r.Put("/{id}", adminHandler.UpdateUser)
				r.Delete("/{id}", adminHandler.DeleteUser)
			})

			r.Route("/invites", func(r chi.Router) {
				r.Post("/", adminHandler.CreateInvite)
				r.Get("/", adminHandler.ListInvites)
				r.Delete("/{id}", adminHandler.DeleteInvite)
			})

			r.Route("/lists", func(r chi.Router) {
				r.Post("/", listHandler.CreateList)
				r.Get("/", listHandler.ListLists)

				r.Route("/{listID}", func(r chi.Router) {
					r.Get("/", listHandler.GetList)
					r.Put("/", listHandler.UpdateList)
					r.Delete("/", listHandler.DeleteList)

					r.Post("/gifts", listHandler.CreateGift)
					r.Put("/gifts/{giftID}", listHandler.UpdateGift)
					r.Delete("/gifts/{giftID}", listHandler.DeleteGift)
					r.Post("/gifts/{giftID}/claim", listHandler.ClaimGift)
					r.Delete("/gifts/{giftID}/claim", listHandler.UnclaimGift)

					r.Get("/shares", shareHandler.ListShares)
					r.Post("/shares", shareHandler.CreateShare)
					r.Delete("/shares/{userID}", shareHandler.DeleteShare)
				})
			})

			r.Route("/collections", func(r chi.Router) {
				r.Post("/", collectionHandler.CreateCollection)
				r.Get("/", collectionHandler.ListCollections)

				r.Route("/{collectionID}", func(r chi.Router) {
					r.Get("/", collectionHandler.GetCollection)
					r.Put("/", collectionHandler.UpdateCollection)
					r.Delete("/", collectionHandler.DeleteCollection)
					r.Post("/items", collectionHandler.AddList)
					r.Delete("/items/{listID}", collectionHandler.RemoveList)
				})
			})

			r.Route("/connections", func(r chi.Router) {
				r.Post("/", connectionHandler.CreateConnection)
				r.Get("/", connectionHandler.ListConnections)
				r.Get("/requests", connectionHandler.ListRequests)
				r.Post("/{connectionID}/accept", connectionHandler.AcceptConnection)
				r.Delete("/{connectionID}", connectionHandler.DeleteConnection)
			})
		})
	})

	return r
}
