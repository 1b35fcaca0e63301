package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Default OAuth endpoints for the Tribe platform
const (
	DefaultTokenURL     = "https://auth.tribe.dev/oauth/token"
	DefaultAuthorizeURL = "https://auth.tribe.dev/oauth/authorize"
	DefaultClientID     = "tribe-cli"
	DefaultRedirectPort = 8976
)

// ErrNoRefreshToken indicates the stored token cannot be refreshed
var ErrNoRefreshToken = errors.New("no refresh token available")

// Endpoints identifies the OAuth endpoints and client registration to use
type Endpoints struct {
	TokenURL     string
	AuthorizeURL string
	ClientID     string
	RedirectPort int
}

// DefaultEndpoints returns the production Tribe OAuth configuration
func DefaultEndpoints() Endpoints {
	return Endpoints{
		TokenURL:     DefaultTokenURL,
		AuthorizeURL: DefaultAuthorizeURL,
		ClientID:     DefaultClientID,
		RedirectPort: DefaultRedirectPort,
	}
}

// Manager handles the OAuth flow and token lifecycle
type Manager struct {
	endpoints  Endpoints
	store      *Store
	httpClient *http.Client
	logger     zerolog.Logger

	mu    sync.Mutex
	token *Token
}

// NewManager creates a token manager, loading any previously stored token
func NewManager(endpoints Endpoints, store *Store, logger zerolog.Logger) *Manager {
	m := &Manager{
		endpoints:  endpoints,
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}

	if token, err := store.Load(); err == nil {
		m.token = token
	}

	return m
}

// Token returns the cached token without refreshing, or nil when the user
// never logged in
func (m *Manager) Token() *Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// AccessToken returns a valid access token, refreshing it when the expiry
// margin has been reached.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token == nil || token.AccessToken == "" {
		return "", ErrNotAuthenticated
	}

	if token.Valid() {
		return token.AccessToken, nil
	}

	m.logger.Debug().Msg("Access token expired, refreshing")
	refreshed, err := m.Refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	return refreshed.AccessToken, nil
}

// Refresh exchanges the refresh token for a new access token and persists
// the result. A rotated refresh token from the server replaces the old one.
func (m *Manager) Refresh(ctx context.Context) (*Token, error) {
	m.mu.Lock()
	if m.token == nil || m.token.RefreshToken == "" {
		m.mu.Unlock()
		return nil, ErrNoRefreshToken
	}
	refreshToken := m.token.RefreshToken
	email := m.token.Email
	m.mu.Unlock()

	data := url.Values{}
	data.Set("client_id", m.endpoints.ClientID)
	data.Set("refresh_token", refreshToken)
	data.Set("grant_type", "refresh_token")

	token, err := m.requestToken(ctx, data)
	if err != nil {
		return nil, err
	}

	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	if token.Email == "" {
		token.Email = email
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	if err := m.store.Save(token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	return token, nil
}

// Exchange redeems an authorization code for tokens and persists them
func (m *Manager) Exchange(ctx context.Context, code, verifier string) (*Token, error) {
	data := url.Values{}
	data.Set("client_id", m.endpoints.ClientID)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", m.redirectURL())
	data.Set("code_verifier", verifier)

	token, err := m.requestToken(ctx, data)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	if err := m.store.Save(token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	m.logger.Debug().Time("expiry", token.Expiry).Msg("Stored new token")

	return token, nil
}

// Logout drops the cached token and deletes the token file
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.token = nil
	m.mu.Unlock()

	return m.store.Delete()
}

func (m *Manager) redirectURL() string {
	return fmt.Sprintf("http://localhost:%d/callback", m.endpoints.RedirectPort)
}

func (m *Manager) requestToken(ctx context.Context, data url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoints.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	token.setExpiry(time.Now())
	return &token, nil
}
