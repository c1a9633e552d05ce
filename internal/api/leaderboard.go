package api

import (
	"net/http"

	"github.com/meur/gameshelf/internal/models"
)

// modeParam reads ?mode=, falling back to the persisted mode
func (s *Server) modeParam(r *http.Request) (models.RankingMode, error) {
	name := r.URL.Query().Get("mode")
	if name == "" {
		return s.shelf.RankingMode(), nil
	}
	return models.ParseRankingMode(name)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	mode, err := s.modeParam(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mode":    mode,
		"entries": s.shelf.Leaderboard(mode),
	})
}

type leaderboardOrderRequest struct {
	Mode string  `json:"mode"`
	IDs  []int64 `json:"ids"`
}

// handleReorderLeaderboard sets a display order that lasts until the next
// rating change
func (s *Server) handleReorderLeaderboard(w http.ResponseWriter, r *http.Request) {
	var req leaderboardOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	mode := s.shelf.RankingMode()
	if req.Mode != "" {
		parsed, err := models.ParseRankingMode(req.Mode)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		mode = parsed
	}

	entries, err := s.shelf.ReorderLeaderboard(mode, req.IDs)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"mode":    mode,
		"entries": entries,
	})
}

func (s *Server) handleClearLeaderboard(w http.ResponseWriter, r *http.Request) {
	s.shelf.ClearRankings()
	w.WriteHeader(http.StatusNoContent)
}

type rateItemRequest struct {
	Card   models.Card `json:"card"`
	Rating *float64    `json:"rating"`
}

// handleRateItem rates an item that may not be on the homepage yet
func (s *Server) handleRateItem(w http.ResponseWriter, r *http.Request) {
	var req rateItemRequest
	if err := decodeJSON(r, &req); err != nil || req.Rating == nil || req.Card.ID == 0 {
		respondError(w, http.StatusBadRequest, "card.id and rating are required")
		return
	}

	card, exists, err := s.shelf.RateItem(req.Card, *req.Rating)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if !exists {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (s *Server) handleGetRankingMode(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]models.RankingMode{"mode": s.shelf.RankingMode()})
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleSetRankingMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	mode, err := models.ParseRankingMode(req.Mode)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.shelf.SetRankingMode(mode)
	respondJSON(w, http.StatusOK, map[string]models.RankingMode{"mode": mode})
}

func (s *Server) handleToggleRankingMode(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]models.RankingMode{"mode": s.shelf.ToggleRankingMode()})
}

func (s *Server) handleRankedGames(w http.ResponseWriter, r *http.Request) {
	ranked := s.shelf.RankedGames()
	if ranked == nil {
		ranked = []models.RankEntry{}
	}
	respondJSON(w, http.StatusOK, ranked)
}

func (s *Server) handleAddRanked(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid card id")
		return
	}
	status := http.StatusCreated
	if !s.shelf.AddToRanking(id) {
		if _, found := s.shelf.Card(id); !found {
			respondError(w, http.StatusNotFound, "Card not found")
			return
		}
		status = http.StatusOK
	}
	respondJSON(w, status, s.shelf.RankedGames())
}

func (s *Server) handleRemoveRanked(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid card id")
		return
	}
	if !s.shelf.RemoveFromRanking(id) {
		respondError(w, http.StatusNotFound, "Entry not ranked")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorderRanked(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.shelf.ReorderRanking(req.IDs); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.shelf.RankedGames())
}

func (s *Server) handleClearRanked(w http.ResponseWriter, r *http.Request) {
	s.shelf.ClearRanking()
	w.WriteHeader(http.StatusNoContent)
}
