package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meur/gameshelf/internal/catalog"
	"github.com/meur/gameshelf/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const catalogTimeout = 15 * time.Second

type catalogResult struct {
	catalog.Game
	Entry models.GameEntry `json:"entry"`
}

func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, "Catalog is not configured")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	ctx, cancel := context.WithTimeout(r.Context(), catalogTimeout)
	defer cancel()
	games, err := s.catalog.Search(ctx, query, pageSize)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	results := make([]catalogResult, len(games))
	for i, g := range games {
		results[i] = catalogResult{Game: g, Entry: g.Entry()}
	}
	respondJSON(w, http.StatusOK, results)
}

// handleCatalogGame fetches details and storefronts concurrently. Missing
// storefronts are not fatal.
func (s *Server) handleCatalogGame(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, "Catalog is not configured")
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid game id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), catalogTimeout)
	defer cancel()

	var (
		game   catalog.Game
		stores []catalog.Store
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		game, err = s.catalog.Game(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		stores, err = s.catalog.Stores(gctx, id)
		if err != nil {
			s.log.Warn("catalog stores lookup failed", zap.Int64("id", id), zap.Error(err))
			stores = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.respondErr(w, r, err)
		return
	}
	if stores == nil {
		stores = []catalog.Store{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"game":   catalogResult{Game: game, Entry: game.Entry()},
		"stores": stores,
	})
}
