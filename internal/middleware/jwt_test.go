package myMiddleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duong122/Linkly/internal/identity"
)

type fakeValidator struct {
	id   int64
	name string
	err  error
}

func (v *fakeValidator) ValidateToken(string) (int64, string, error) {
	return v.id, v.name, v.err
}

func TestHandleAttachesSession(t *testing.T) {
	am := NewAuthMiddleware(&fakeValidator{id: 42, name: "alice"})

	var got identity.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFrom(r.Context())
	})

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rr := httptest.NewRecorder()
	am.Handle(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, got)
	id, err := identity.Resolve(got)
	require.NoError(t, err)
	require.EqualValues(t, 42, id)
	require.Equal(t, "alice", got.Name())
}

func TestHandleQueryParamFallback(t *testing.T) {
	am := NewAuthMiddleware(&fakeValidator{id: 7, name: "bob"})

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest("GET", "/ws?token=sometoken", nil)
	rr := httptest.NewRecorder()
	am.Handle(next).ServeHTTP(rr, req)

	require.True(t, called)
}

func TestHandleMissingToken(t *testing.T) {
	am := NewAuthMiddleware(&fakeValidator{id: 7, name: "bob"})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	req := httptest.NewRequest("GET", "/ws", nil)
	rr := httptest.NewRecorder()
	am.Handle(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleInvalidToken(t *testing.T) {
	am := NewAuthMiddleware(&fakeValidator{err: errors.New("expired")})

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rr := httptest.NewRecorder()
	am.Handle(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSessionFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	require.Nil(t, SessionFrom(req.Context()))
}
