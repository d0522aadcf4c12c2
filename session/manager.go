package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"finance-search/apperrors"
	"finance-search/identity"
	"finance-search/models"
	"finance-search/observability"
)

// StorageKey is the key the session blob is stored under.
const StorageKey = "user"

// State is a consistent snapshot of the session. IsAuthenticated is true
// exactly when User is non-nil.
type State struct {
	User            *models.UserSession `json:"user"`
	IsAuthenticated bool                `json:"isAuthenticated"`
	IsLoading       bool                `json:"isLoading"`
}

// Manager owns the signed-in user. It starts loading; Restore moves it to
// ready, after which Login and Logout mutate both memory and storage.
type Manager struct {
	storage  Storage
	identity identity.IdentityProvider

	mu      sync.RWMutex
	user    *models.UserSession
	loading bool

	readyOnce sync.Once
	ready     chan struct{}
}

// NewManager returns a manager in the loading state. idp may be nil.
func NewManager(storage Storage, idp identity.IdentityProvider) *Manager {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Manager{
		storage:  storage,
		identity: idp,
		loading:  true,
		ready:    make(chan struct{}),
	}
}

// Restore reads the persisted blob. Unreadable or corrupt blobs are removed
// and leave the manager unauthenticated. Restore never fails.
func (m *Manager) Restore(ctx context.Context) State {
	logger := observability.LoggerFromContext(ctx)

	user, err := m.load()
	if err != nil {
		logger.Error().Err(err).Msg("discarding saved session")
		if rmErr := m.storage.Remove(StorageKey); rmErr != nil {
			logger.Error().Err(rmErr).Msg("failed to remove saved session")
		}
		user = nil
	}

	m.mu.Lock()
	m.setUser(user)
	m.loading = false
	m.mu.Unlock()

	m.readyOnce.Do(func() { close(m.ready) })
	return m.Snapshot()
}

func (m *Manager) load() (*models.UserSession, error) {
	raw, ok, err := m.storage.Get(StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var user *models.UserSession
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to parse saved user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("saved user is null")
	}
	return user, nil
}

// Ready is closed once Restore has completed.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Login persists the typed profile of user and marks the session
// authenticated. Fields outside models.UserSession are not kept.
func (m *Manager) Login(ctx context.Context, user *models.UserSession) error {
	if user == nil {
		return apperrors.NewValidationError("user is required")
	}

	blob, err := json.Marshal(user)
	if err != nil {
		return apperrors.NewInternalError("failed to encode user", err)
	}
	if err := m.storage.Set(StorageKey, string(blob)); err != nil {
		return apperrors.NewInternalError("failed to save session", err)
	}

	saved := *user
	m.mu.Lock()
	m.setUser(&saved)
	m.mu.Unlock()

	observability.LoggerFromContext(ctx).Info().Str("email", user.Email).Msg("user signed in")
	return nil
}

// LoginWithCredential resolves credential through the identity provider and
// logs the resulting user in.
func (m *Manager) LoginWithCredential(ctx context.Context, credential string) (*models.UserSession, error) {
	if m.identity == nil {
		return nil, apperrors.NewInternalError("no identity provider configured", nil)
	}
	user, err := m.identity.ParseCredential(ctx, credential)
	if err != nil {
		return nil, err
	}
	if err := m.Login(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout clears the session and its stored blob, then asks the identity
// provider to drop automatic sign-in. Only the storage error is returned.
func (m *Manager) Logout(ctx context.Context) error {
	logger := observability.LoggerFromContext(ctx)

	m.mu.Lock()
	m.setUser(nil)
	m.mu.Unlock()

	err := m.storage.Remove(StorageKey)
	if err != nil {
		logger.Error().Err(err).Msg("failed to remove saved session")
		err = apperrors.NewInternalError("failed to remove saved session", err)
	}

	if m.identity != nil {
		if idErr := m.identity.DisableAutoSelect(ctx); idErr != nil {
			logger.Warn().Err(idErr).Str("provider", m.identity.Name()).Msg("disable auto select failed")
		}
	}
	return err
}

// Snapshot returns the current state. The user is a copy.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := State{IsLoading: m.loading}
	if m.user != nil {
		u := *m.user
		state.User = &u
		state.IsAuthenticated = true
	}
	return state
}

// setUser is the only writer of m.user; callers hold m.mu.
func (m *Manager) setUser(user *models.UserSession) {
	m.user = user
}
