// Package api exposes the shelf over a JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/meur/gameshelf/internal/catalog"
	"github.com/meur/gameshelf/internal/shelf"
	"go.uber.org/zap"
)

// Catalog looks games up in the external game database
type Catalog interface {
	Search(ctx context.Context, query string, pageSize int) ([]catalog.Game, error)
	Game(ctx context.Context, id int64) (catalog.Game, error)
	Stores(ctx context.Context, id int64) ([]catalog.Store, error)
}

// Server holds the HTTP server dependencies
type Server struct {
	shelf   *shelf.Shelf
	catalog Catalog
	log     *zap.Logger
	router  chi.Router
	origins []string
}

// New creates a new API server. catalog may be nil, which disables the
// catalog routes.
func New(sh *shelf.Shelf, cat Catalog, log *zap.Logger, allowedOrigins []string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		shelf:   sh,
		catalog: cat,
		log:     log.Named("api"),
		router:  chi.NewRouter(),
		origins: allowedOrigins,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Cards
		r.Get("/cards", s.handleListCards)
		r.Post("/cards", s.handleAddCard)
		r.Delete("/cards", s.handleClearView)
		r.Get("/cards/{id}", s.handleGetCard)
		r.Patch("/cards/{id}", s.handleUpdateCard)
		r.Delete("/cards/{id}", s.handleRemoveCard)
		r.Put("/cards/{id}/rating", s.handleSetRating)
		r.Post("/refresh", s.handleRefresh)

		// View
		r.Get("/view", s.handleGetView)
		r.Put("/view", s.handleSetView)
		r.Post("/view/toggle", s.handleToggleView)

		// Categories
		r.Get("/categories", s.handleListCategories)
		r.Get("/categories/{category}", s.handleGetCategory)
		r.Post("/categories/{category}", s.handlePlaceEntry)
		r.Delete("/categories/{category}", s.handleClearCategory)
		r.Put("/categories/{category}/order", s.handleReorderCategory)
		r.Post("/categories/{category}/cards/{id}", s.handleDropCard)
		r.Delete("/categories/{category}/{id}", s.handleRemoveFromCategory)

		// Leaderboard
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Put("/leaderboard/order", s.handleReorderLeaderboard)
		r.Delete("/leaderboard", s.handleClearLeaderboard)
		r.Post("/leaderboard/items", s.handleRateItem)
		r.Get("/ranking-mode", s.handleGetRankingMode)
		r.Put("/ranking-mode", s.handleSetRankingMode)
		r.Post("/ranking-mode/toggle", s.handleToggleRankingMode)

		// Legacy ranked list
		r.Get("/ranked", s.handleRankedGames)
		r.Delete("/ranked", s.handleClearRanked)
		r.Put("/ranked/order", s.handleReorderRanked)
		r.Post("/ranked/{id}", s.handleAddRanked)
		r.Delete("/ranked/{id}", s.handleRemoveRanked)

		// Franchises
		r.Get("/franchises/{name}", s.handleGetFranchise)
		r.Delete("/franchises/{name}", s.handleClearFranchise)
		r.Post("/franchises/{name}/games", s.handleAddFranchiseGame)
		r.Put("/franchises/{name}/games/{id}", s.handleUpdateFranchiseGame)
		r.Delete("/franchises/{name}/games/{id}", s.handleRemoveFranchiseGame)
		r.Put("/franchises/{name}/games/{id}/rating", s.handleRateFranchiseGame)
		r.Delete("/franchises/{name}/games/{id}/rating", s.handleUnrateFranchiseGame)

		// Catalog
		r.Get("/catalog/search", s.handleCatalogSearch)
		r.Get("/catalog/games/{id}", s.handleCatalogGame)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Get("/health", s.handleHealth)
	})

	// Health check
	s.router.Get("/health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.shelf.Snapshot()
	w.Header().Set("Content-Disposition", `attachment; filename="gameshelf-`+snap.ID+`.json"`)
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var snap shelf.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid snapshot")
		return
	}
	respondJSON(w, http.StatusOK, s.shelf.Import(snap))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
