package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meur/gameshelf/internal/franchise"
)

func (s *Server) handleGetFranchise(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.shelf.Franchise(chi.URLParam(r, "name")))
}

func (s *Server) handleClearFranchise(w http.ResponseWriter, r *http.Request) {
	s.shelf.ClearFranchise(chi.URLParam(r, "name"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddFranchiseGame(w http.ResponseWriter, r *http.Request) {
	id, col := s.shelf.AddFranchiseGame(chi.URLParam(r, "name"))
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":        id,
		"franchise": col,
	})
}

func (s *Server) handleUpdateFranchiseGame(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid game id")
		return
	}
	var game franchise.GameCard
	if err := decodeJSON(r, &game); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := chi.URLParam(r, "name")
	if !s.shelf.UpdateFranchiseGame(name, id, game) {
		respondError(w, http.StatusNotFound, "Game not found")
		return
	}
	respondJSON(w, http.StatusOK, s.shelf.Franchise(name))
}

func (s *Server) handleRemoveFranchiseGame(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid game id")
		return
	}
	if !s.shelf.RemoveFranchiseGame(chi.URLParam(r, "name"), id) {
		respondError(w, http.StatusNotFound, "Game not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRateFranchiseGame puts a complete franchise game on the leaderboard
func (s *Server) handleRateFranchiseGame(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid game id")
		return
	}
	card, found, err := s.shelf.RateFranchiseGame(chi.URLParam(r, "name"), id)
	if !found {
		respondError(w, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (s *Server) handleUnrateFranchiseGame(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid game id")
		return
	}
	if !s.shelf.UnrateFranchiseGame(chi.URLParam(r, "name"), id) {
		respondError(w, http.StatusNotFound, "Game not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
