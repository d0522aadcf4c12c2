package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Keys of the third-party credentials the service understands.
const (
	OpenAIAPIKey = "OPENAI_API_KEY"
	GeminiAPIKey = "GEMINI_API_KEY"
)

// ErrNotFound is returned when a credential is absent.
var ErrNotFound = errors.New("credential not found")

// Provider defines the interface for credential providers
type Provider interface {
	GetCredential(key string) (string, error)
}

// EnvProvider retrieves credentials from environment variables
type EnvProvider struct{}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

func (p *EnvProvider) GetCredential(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return value, nil
}

// StaticProvider for testing with hardcoded credentials
type StaticProvider struct {
	credentials map[string]string
}

func NewStaticProvider(creds map[string]string) *StaticProvider {
	return &StaticProvider{
		credentials: creds,
	}
}

func (p *StaticProvider) GetCredential(key string) (string, error) {
	value, ok := p.credentials[key]
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return value, nil
}

// Optional returns the credential for key, or "" when p cannot supply it.
// Callers treat "" as "use the mock implementation".
func Optional(p Provider, key string) string {
	if p == nil {
		return ""
	}
	value, err := p.GetCredential(key)
	if err != nil {
		return ""
	}
	return value
}
