package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meur/gameshelf/internal/catalog"
	"github.com/meur/gameshelf/internal/franchise"
	"github.com/meur/gameshelf/internal/models"
	"github.com/meur/gameshelf/internal/ranking"
	"go.uber.org/zap"
)

// respondErr maps domain errors onto status codes
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvariantViolation):
		status = http.StatusConflict
	case errors.Is(err, models.ErrUnknownCategory),
		errors.Is(err, models.ErrUnknownMode),
		errors.Is(err, ranking.ErrInvalidRating),
		errors.Is(err, franchise.ErrIncomplete):
		status = http.StatusBadRequest
	case errors.Is(err, catalog.ErrUnavailable):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.log.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	respondError(w, status, err.Error())
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func categoryParam(r *http.Request) (models.Category, error) {
	return models.ParseCategory(chi.URLParam(r, "category"))
}
