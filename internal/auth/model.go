package auth

import "github.com/golang-jwt/jwt/v5"

// Identity is the resolved authenticated user, stored in the request context
// by the REST middleware and threaded explicitly into WebSocket handlers.
type Identity struct {
	UserID   int64
	Username string
	Email    string
}

// Claims is the JWT payload. The user_id claim name matches the tokens the
// token endpoints issue, so one secret serves REST and WebSocket auth.
type Claims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair holds a freshly issued access/refresh token pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
