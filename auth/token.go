package auth

import "time"

// expiryMargin is how long before the recorded expiry a token is treated
// as stale, so API calls never race the server clock.
const expiryMargin = 5 * time.Minute

// Token holds the OAuth token details.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	Expiry       time.Time `json:"expiry"`
	Email        string    `json:"email,omitempty"`
}

// Valid reports whether the access token is usable, keeping the refresh
// margin. Tokens without a recorded expiry are treated as usable.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return time.Now().Add(expiryMargin).Before(t.Expiry)
}

// setExpiry computes the absolute expiry from expires_in at issuance.
func (t *Token) setExpiry(now time.Time) {
	if t.ExpiresIn > 0 {
		t.Expiry = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
}
