package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity claims carried in a Tribe access token
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Plan  string `json:"plan,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the claims of a JWT access token without verifying
// the signature. The result is display-only; the server stays the
// authority on token validity. Opaque (non-JWT) tokens return an error
// and callers degrade to showing nothing.
func ParseClaims(accessToken string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("not a JWT access token: %w", err)
	}

	return claims, nil
}
