// Package identity resolves the stable user id behind an authenticated
// connection. Every code path that sends to a per-user destination goes
// through Resolve first.
package identity

import (
	"errors"
	"strconv"
)

var (
	// ErrNoSession means the connection carries no authenticated session at all.
	ErrNoSession = errors.New("no authenticated session")

	// ErrUnresolvableIdentity means a session exists but no user id can be
	// derived from it.
	ErrUnresolvableIdentity = errors.New("session identity is unresolvable")
)

// Session is the transport layer's proof of identity for one live
// connection. The core never mutates it.
type Session interface {
	// Name returns the session's display name.
	Name() string
}

// Bearer is implemented by sessions that carry a pre-resolved user id.
// Resolve prefers this over parsing the display name.
type Bearer interface {
	UserID() int64
}

// Resolve maps an authenticated session to a stable user id.
// Order: no session fails with ErrNoSession; a Bearer session returns its
// id directly; otherwise the display name is parsed as a decimal id.
// Resolve has no side effects and is safe for concurrent use.
func Resolve(s Session) (int64, error) {
	if s == nil {
		return 0, ErrNoSession
	}
	if b, ok := s.(Bearer); ok {
		return b.UserID(), nil
	}
	id, err := strconv.ParseInt(s.Name(), 10, 64)
	if err != nil {
		return 0, ErrUnresolvableIdentity
	}
	return id, nil
}

// TokenSession is the session the auth middleware attaches to a request
// after validating its token. It bears a resolved user id.
type TokenSession struct {
	ID          int64
	DisplayName string
}

func (s *TokenSession) Name() string { return s.DisplayName }

func (s *TokenSession) UserID() int64 { return s.ID }
