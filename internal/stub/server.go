package stub

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server bundles the in-memory store, the SSE hub and the router.
type Server struct {
	store     *Store
	hub       *Hub
	jwtSecret string
}

// NewServer builds a stub backend. Seed it before serving.
func NewServer(store *Store, jwtSecret string) *Server {
	return &Server{store: store, hub: NewHub(), jwtSecret: jwtSecret}
}

// Hub exposes the broadcast hub, used by tests to inject change signals.
func (s *Server) Hub() *Hub { return s.hub }

// Store exposes the backing store.
func (s *Server) Store() *Store { return s.store }

// Router assembles the full REST + SSE contract.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Cache-Control"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The contract lives under /api, matching the client's default base URL.
	r.Route("/api", func(r chi.Router) {
		// Public: auth, catalog, ordering, tracking
		r.Post("/auth/login", s.handleLogin)
		r.Get("/menu", s.handleMenu)
		r.Get("/categories", s.handleCategories)
		r.Get("/tables/validate", s.handleValidateTable)
		r.Post("/orders", s.handleCreateOrder)
		r.Get("/orders/{id}/tracking", s.handleTracking)
		r.Get("/sse/orders/{id}", s.handleOrderStream)

		// Staff only
		r.Group(func(r chi.Router) {
			r.Use(authenticate(s.jwtSecret))

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/orders", s.handleListOrders)
			r.Patch("/orders/{id}/pay", s.handlePay)
			r.Patch("/orders/{id}/cancel", s.handleCancel)
			r.Get("/orders/{id}/receipt", s.handleReceipt)

			r.Get("/production/queue", s.handleQueue)
			r.Patch("/production/orders/{id}", s.handleUpdateProduction)
			r.Get("/production/orders/{id}/logs", s.handleLogs)

			r.Get("/sse/cashier", s.handleCashierStream)
			r.Get("/sse/production", s.handleProductionStream)
		})
	})

	return r
}
