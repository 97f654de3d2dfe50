package myMiddleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/duong122/Linkly/internal/identity"
)

type contextKey string

const sessionKey contextKey = "session"

// TokenValidator is what we need from the user service.
// The interface keeps 'middleware' decoupled from 'user'.
type TokenValidator interface {
	ValidateToken(tokenString string) (int64, string, error)
}

type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(v TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: v}
}

// Handle validates the bearer token and attaches the resulting session
// to the request context. Websocket clients can't always set headers, so
// a ?token= query param is accepted as a fallback.
func (am *AuthMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ""

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			tokenString = r.URL.Query().Get("token")
		}

		if tokenString == "" {
			http.Error(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		userID, username, err := am.validator.ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		sess := &identity.TokenSession{ID: userID, DisplayName: username}
		ctx := context.WithValue(r.Context(), sessionKey, sess)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFrom returns the authenticated session attached to ctx, or nil
// if the request never passed the auth middleware.
func SessionFrom(ctx context.Context) identity.Session {
	s, _ := ctx.Value(sessionKey).(*identity.TokenSession)
	if s == nil {
		return nil
	}
	return s
}
