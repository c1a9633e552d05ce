package api

import (
	"net/http"

	"github.com/meur/gameshelf/internal/models"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.shelf.Categories())
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.shelf.Category(cat))
}

// handlePlaceEntry moves a catalog entry into the category. Placing an
// entry that is already there answers 200 with the list unchanged.
func (s *Server) handlePlaceEntry(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var entry models.GameEntry
	if err := decodeJSON(r, &entry); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if entry.ID == 0 || entry.Name == "" {
		respondError(w, http.StatusBadRequest, "id and name are required")
		return
	}

	status := http.StatusOK
	if s.shelf.Place(entry, cat) {
		status = http.StatusCreated
	}
	respondJSON(w, status, s.shelf.Category(cat))
}

func (s *Server) handleClearCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.shelf.ClearCategory(cat)
	w.WriteHeader(http.StatusNoContent)
}

type orderRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleReorderCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.shelf.ReorderCategory(cat, req.IDs); err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s.shelf.Category(cat))
}

// handleDropCard places a homepage card into the category
func (s *Server) handleDropCard(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid card id")
		return
	}

	status := http.StatusCreated
	if !s.shelf.DropCard(id, cat) {
		// false also means the card was already in place
		if _, found := s.shelf.Card(id); !found {
			respondError(w, http.StatusNotFound, "Card not found")
			return
		}
		status = http.StatusOK
	}
	respondJSON(w, status, s.shelf.Category(cat))
}

func (s *Server) handleRemoveFromCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := categoryParam(r)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	id, ok := idParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid entry id")
		return
	}
	if !s.shelf.RemoveFromCategory(id, cat) {
		respondError(w, http.StatusNotFound, "Entry not in category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
