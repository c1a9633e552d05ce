package api

import (
	"net/http"

	"github.com/meur/gameshelf/internal/models"
)

// handleListCards returns every card, or only the visible ones with ?visible=true
func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("visible") == "true" {
		respondJSON(w, http.StatusOK, s.shelf.Visible())
		return
	}
	respondJSON(w, http.StatusOK, s.shelf.Cards())
}

type addCardRequest struct {
	IsFranchiseCard *bool `json:"isFranchiseCard"`
}

// handleAddCard creates a card, in the current view's universe unless the
// body says otherwise
func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var req addCardRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	var card models.Card
	if req.IsFranchiseCard != nil {
		card = s.shelf.AddCardTo(*req.IsFranchiseCard)
	} else {
		card = s.shelf.AddCard()
	}
	respondJSON(w, http.StatusCreated, card)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid card id")
		return
	}
	card, found := s.shelf.Card(id)
	if !found {
		respondError(w, http.StatusNotFound, "Card not found")
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid card id")
		return
	}
	var patch models.CardPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	card, found := s.shelf.UpdateCard(id, patch)
	if !found {
		respondError(w, http.StatusNotFound, "Card not found")
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (s *Server) handleRemoveCard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid card id")
		return
	}
	if !s.shelf.RemoveCard(id) {
		respondError(w, http.StatusNotFound, "Card not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearView deletes the cards of the current view
func (s *Server) handleClearView(w http.ResponseWriter, r *http.Request) {
	removed := s.shelf.ClearCurrentView()
	if removed == nil {
		removed = []int64{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}

type ratingRequest struct {
	Rating *float64 `json:"rating"`
}

// handleSetRating rates a card. A rating of 0 on a ranking-only card
// deletes it and answers 204.
func (s *Server) handleSetRating(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid card id")
		return
	}
	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil || req.Rating == nil {
		respondError(w, http.StatusBadRequest, "rating is required")
		return
	}

	card, found, kept, err := s.shelf.SetRating(id, *req.Rating)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "Card not found")
		return
	}
	if !kept {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

type viewResponse struct {
	IsFranchiseView bool          `json:"isFranchiseView"`
	Search          string        `json:"search"`
	Cards           []models.Card `json:"cards"`
}

func (s *Server) viewResponse() viewResponse {
	isFranchise, search := s.shelf.View()
	return viewResponse{
		IsFranchiseView: isFranchise,
		Search:          search,
		Cards:           s.shelf.Visible(),
	}
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.viewResponse())
}

type setViewRequest struct {
	IsFranchiseView *bool   `json:"isFranchiseView"`
	Search          *string `json:"search"`
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req setViewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.IsFranchiseView != nil {
		s.shelf.SetView(*req.IsFranchiseView)
	}
	if req.Search != nil {
		s.shelf.SetSearch(*req.Search)
	}
	respondJSON(w, http.StatusOK, s.viewResponse())
}

func (s *Server) handleToggleView(w http.ResponseWriter, r *http.Request) {
	s.shelf.ToggleView()
	respondJSON(w, http.StatusOK, s.viewResponse())
}

// handleRefresh reconciles card ratings with the rating records and
// returns the refreshed cards
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.shelf.Refresh()
	respondJSON(w, http.StatusOK, s.shelf.Cards())
}
