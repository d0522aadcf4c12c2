package identity

import (
	"context"
	"fmt"
	"strings"

	"finance-search/apperrors"
	"finance-search/models"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// GoogleIssuer is the OIDC issuer for Google Identity Services tokens.
const GoogleIssuer = "https://accounts.google.com"

// GoogleProvider verifies Google ID tokens against Google's published keys.
type GoogleProvider struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleProvider runs OIDC discovery against Google and builds a verifier
// for clientID.
func NewGoogleProvider(ctx context.Context, clientID string) (*GoogleProvider, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	provider, err := oidc.NewProvider(ctx, GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover google oidc provider: %w", err)
	}
	return NewGoogleProviderWithVerifier(provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

func NewGoogleProviderWithVerifier(verifier *oidc.IDTokenVerifier) *GoogleProvider {
	return &GoogleProvider{verifier: verifier}
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) ParseCredential(ctx context.Context, credential string) (*models.UserSession, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, apperrors.NewUnauthorizedError("credential is required", nil)
	}

	token, err := p.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid credential", err)
	}

	claims := jwt.MapClaims{}
	if err := token.Claims(&claims); err != nil {
		return nil, apperrors.NewUnauthorizedError("unreadable credential claims", err)
	}
	return userFromClaims(claims, credential), nil
}

// DisableAutoSelect is a no-op: Google ID tokens are stateless and automatic
// sign-in lives in the browser widget.
func (p *GoogleProvider) DisableAutoSelect(context.Context) error {
	return nil
}
