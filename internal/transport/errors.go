package transport

import (
	"errors"
	"net/http"

	"safgati-admin/internal/auth"
	"safgati-admin/internal/domain"
	"safgati-admin/internal/middleware"
	"safgati-admin/internal/repository"
	"safgati-admin/internal/service"

	"go.uber.org/zap"
)

// editorRoles may manage the catalog; a few routes narrow this to admins
var editorRoles = []string{domain.RoleAdmin, domain.RoleEditor}

// respondDecodeError answers a request whose body could not be decoded or failed tag validation
func respondDecodeError(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

// respondServiceError maps service and store errors onto HTTP responses
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: validationErr.Field, Message: validationErr.Message},
		})
	case errors.Is(err, domain.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid session")
	case errors.Is(err, repository.ErrRemoteUnavailable):
		logger.Error("Catalog store unavailable", zap.String("operation", op), zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "catalog store unavailable")
	default:
		logger.Error("Request failed", zap.String("operation", op), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+op)
	}
}
