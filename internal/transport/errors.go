package transport

import (
	"errors"
	"net/http"

	"catalog-api/internal/domain"
	"catalog-api/internal/middleware"

	"go.uber.org/zap"
)

// respondServiceError maps catalog service errors onto HTTP statuses:
// missing entity 404, duplicate or integrity conflict 409, unknown
// category references 400. Anything unclassified becomes a generic 500
// without leaking storage internals.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		notFound  *domain.NotFoundError
		duplicate *domain.DuplicateEntryError
		conflict  *domain.ConflictError
		unknown   *domain.UnknownReferenceError
		invalid   *domain.InvalidInputError
	)

	switch {
	case errors.As(err, &notFound):
		middleware.RespondWithError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &duplicate):
		middleware.RespondWithError(w, http.StatusConflict, duplicate.Error())
	case errors.As(err, &conflict):
		middleware.RespondWithError(w, http.StatusConflict, conflict.Error())
	case errors.As(err, &unknown):
		middleware.RespondWithError(w, http.StatusBadRequest, unknown.Error())
	case errors.As(err, &invalid):
		middleware.RespondWithError(w, http.StatusBadRequest, invalid.Error())
	default:
		logger.Error("Unclassified service error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
