package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"finance-search/apperrors"
	"finance-search/observability"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

const (
	internalErrorLabel   = "Internal server error"
	internalErrorMessage = "An unexpected error occurred"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, label, message string) {
	respondWithJSON(w, statusCode, ErrorResponse{Error: label, Message: message})
}

func respondWithInternalError(w http.ResponseWriter) {
	respondWithError(w, http.StatusInternalServerError, internalErrorLabel, internalErrorMessage)
}

// respondWithAppError maps err to a status. Internal and unclassified errors
// are logged and answered with the generic body only.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("unhandled error")
		respondWithInternalError(w)
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message, appErr.Detail)
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message, appErr.Detail)
	case apperrors.ErrorTypeUnauthorized:
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("unauthorized request")
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", appErr.Message)
	case apperrors.ErrorTypeTooLarge:
		respondWithError(w, http.StatusRequestEntityTooLarge, appErr.Message, appErr.Detail)
	case apperrors.ErrorTypeRateLimited:
		respondWithError(w, http.StatusTooManyRequests, "Too many requests", appErr.Message)
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("request failed")
		respondWithInternalError(w)
	}
}

// decodeJSON reads the request body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.NewTooLargeError("Request body too large", err).
			WithDetail(fmt.Sprintf("Request bodies are limited to %d bytes", maxErr.Limit))
	}
	return apperrors.NewValidationError("Invalid JSON body").WithDetail(err.Error())
}
