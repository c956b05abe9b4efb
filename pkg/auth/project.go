// Package auth resolves the caller's project scope and rate-limits
// requests. The project scope is an opaque string namespace; the engine
// uses it to isolate per-tenant cache state.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const projectContextKey contextKey = "memgate.project"

// WithProject stores the caller's project scope in the context. An empty
// scope is valid and denotes the global, project-less scope.
func WithProject(ctx context.Context, project string) context.Context {
	return context.WithValue(ctx, projectContextKey, project)
}

// ProjectFromContext returns the project scope set by the auth middleware.
func ProjectFromContext(ctx context.Context) string {
	if project, ok := ctx.Value(projectContextKey).(string); ok {
		return project
	}
	return ""
}

// TokenValidator validates bearer tokens and extracts the project claim.
type TokenValidator struct {
	secret []byte
	issuer string
}

// NewTokenValidator creates a validator for HS256-signed tokens.
func NewTokenValidator(secret, issuer string) (*TokenValidator, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: signing secret is required")
	}
	return &TokenValidator{secret: []byte(secret), issuer: issuer}, nil
}

// Claims is the token payload the service understands.
type Claims struct {
	Project string `json:"project,omitempty"`
	jwt.RegisteredClaims
}

// Validate parses and verifies a bearer token, returning its claims.
func (v *TokenValidator) Validate(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
