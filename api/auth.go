package api

import (
	"net/http"

	"finance-search/apperrors"
	"finance-search/identity"
	"finance-search/models"
)

// AuthHandler verifies sign-in credentials for browser clients.
type AuthHandler struct {
	provider identity.IdentityProvider
}

func NewAuthHandler(provider identity.IdentityProvider) *AuthHandler {
	return &AuthHandler{provider: provider}
}

type verifyRequest struct {
	Credential string `json:"credential"`
}

type verifyResponse struct {
	User *models.UserSession `json:"user"`
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	user, err := h.provider.ParseCredential(r.Context(), req.Credential)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrorTypeUnauthorized) {
			err = apperrors.NewUnauthorizedError("credential rejected", err)
		}
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, verifyResponse{User: user})
}
