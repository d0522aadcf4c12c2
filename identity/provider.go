package identity

import (
	"context"
	"strings"
	"sync/atomic"

	"finance-search/apperrors"
	"finance-search/models"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityProvider turns a sign-in credential into a user session.
type IdentityProvider interface {
	Name() string
	ParseCredential(ctx context.Context, credential string) (*models.UserSession, error)
	// DisableAutoSelect asks the provider to forget automatic sign-in.
	// Callers treat failures as non-fatal.
	DisableAutoSelect(ctx context.Context) error
}

// DemoUser is the account used when signing in without a credential.
func DemoUser() *models.UserSession {
	return &models.UserSession{
		ID:            "demo-user",
		Email:         "demo@example.com",
		Name:          "Demo User",
		Picture:       "https://via.placeholder.com/40",
		GivenName:     "Demo",
		FamilyName:    "User",
		VerifiedEmail: true,
		Token:         "demo-token",
	}
}

// MockProvider decodes credential JWTs without verifying signatures. An
// empty credential signs in the demo user.
type MockProvider struct {
	parser          *jwt.Parser
	autoSelectCalls atomic.Int64
}

func NewMockProvider() *MockProvider {
	return &MockProvider{parser: jwt.NewParser()}
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) ParseCredential(_ context.Context, credential string) (*models.UserSession, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return DemoUser(), nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := p.parser.ParseUnverified(credential, claims); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid credential", err)
	}
	return userFromClaims(claims, credential), nil
}

func (p *MockProvider) DisableAutoSelect(context.Context) error {
	p.autoSelectCalls.Add(1)
	return nil
}

// AutoSelectDisabled reports how many times DisableAutoSelect was called.
func (p *MockProvider) AutoSelectDisabled() int64 {
	return p.autoSelectCalls.Load()
}

func userFromClaims(claims jwt.MapClaims, token string) *models.UserSession {
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}

	verified := false
	switch v := claims["email_verified"].(type) {
	case bool:
		verified = v
	case string:
		verified = v == "true"
	}

	return &models.UserSession{
		ID:            str("sub"),
		Email:         str("email"),
		Name:          str("name"),
		Picture:       str("picture"),
		GivenName:     str("given_name"),
		FamilyName:    str("family_name"),
		VerifiedEmail: verified,
		Token:         token,
	}
}
