package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
)

// LoginFlow holds the PKCE parameters for one authorization attempt
type LoginFlow struct {
	Verifier string
	State    string
	AuthURL  string
}

// StartLogin generates the PKCE verifier, S256 challenge, and state, and
// builds the authorization URL the user opens in a browser.
func (m *Manager) StartLogin() (*LoginFlow, error) {
	verifierBytes := make([]byte, 32)
	if _, err := rand.Read(verifierBytes); err != nil {
		return nil, err
	}
	verifier := base64.RawURLEncoding.EncodeToString(verifierBytes)

	hash := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(hash[:])

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return nil, err
	}
	state := base64.RawURLEncoding.EncodeToString(stateBytes)

	u, err := url.Parse(m.endpoints.AuthorizeURL)
	if err != nil {
		return nil, fmt.Errorf("invalid authorize URL: %w", err)
	}
	q := u.Query()
	q.Set("client_id", m.endpoints.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", m.redirectURL())
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	q.Set("state", state)
	u.RawQuery = q.Encode()

	return &LoginFlow{
		Verifier: verifier,
		State:    state,
		AuthURL:  u.String(),
	}, nil
}

// WaitForCallback runs a loopback HTTP listener until the browser redirect
// delivers the authorization code. The state must match the login flow that
// produced the authorize URL.
func (m *Manager) WaitForCallback(ctx context.Context, expectedState string) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Get("state") != expectedState {
			http.Error(w, "Invalid state", http.StatusBadRequest)
			errChan <- fmt.Errorf("authorization state mismatch")
			return
		}

		if errStr := q.Get("error"); errStr != "" {
			http.Error(w, "Authorization failed: "+errStr, http.StatusBadRequest)
			errChan <- fmt.Errorf("authorization failed: %s", errStr)
			return
		}

		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code received", http.StatusBadRequest)
			errChan <- fmt.Errorf("no authorization code received")
			return
		}

		fmt.Fprint(w, "Login successful! You can close this window and return to the terminal.")
		codeChan <- code
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", m.endpoints.RedirectPort),
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	defer server.Close()

	select {
	case code := <-codeChan:
		return code, nil
	case err := <-errChan:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
