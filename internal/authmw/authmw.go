// Package authmw provides HTTP middleware for clinician bearer-token
// authentication. Tokens are HS256 JWTs carrying the clinician's role and
// identity; issuance is owned by the hospital SSO, not this service.
package authmw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the clinician role carried in the token.
type Role string

const (
	// RoleNurse may register intakes.
	RoleNurse Role = "nurse"

	// RoleDoctor may claim and close intakes.
	RoleDoctor Role = "doctor"
)

// Identity is the authenticated clinician extracted from the token.
type Identity struct {
	Role       Role
	Name       string
	Surname    string
	License    string
	NationalID string
	Email      string
}

// Claims is the JWT payload schema issued by the hospital SSO.
type Claims struct {
	Role       string `json:"role"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	License    string `json:"license,omitempty"`
	NationalID string `json:"national_id,omitempty"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// ErrNoIdentity is returned by FromContext when the request was not
// authenticated.
var ErrNoIdentity = errors.New("no clinician identity in context")

// Authenticate returns middleware that validates the Authorization header
// contains a Bearer JWT signed with secret, and stores the clinician
// Identity in the request context.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, `{"error":"missing or malformed authorization header"}`, http.StatusUnauthorized)
				return
			}

			var claims Claims
			token, err := jwt.ParseWithClaims(auth[len("Bearer "):], &claims,
				func(t *jwt.Token) (any, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, errors.New("unexpected signing method")
					}
					return secret, nil
				},
			)
			if err != nil || !token.Valid {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			id, ok := identityFromClaims(&claims)
			if !ok {
				http.Error(w, `{"error":"token missing clinician role"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole returns middleware that rejects requests whose authenticated
// clinician does not hold the given role.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := FromContext(r.Context())
			if err != nil || id.Role != role {
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity stores the clinician identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the authenticated clinician from the context.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

func identityFromClaims(c *Claims) (Identity, bool) {
	role := Role(strings.ToLower(c.Role))
	if role != RoleNurse && role != RoleDoctor {
		return Identity{}, false
	}
	return Identity{
		Role:       role,
		Name:       c.Name,
		Surname:    c.Surname,
		License:    c.License,
		NationalID: c.NationalID,
		Email:      c.Subject,
	}, true
}
