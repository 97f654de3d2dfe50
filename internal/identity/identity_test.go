package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type nameSession string

func (s nameSession) Name() string { return string(s) }

func TestResolveNilSession(t *testing.T) {
	id, err := Resolve(nil)
	require.ErrorIs(t, err, ErrNoSession)
	require.Zero(t, id)
}

func TestResolveBearerWinsOverName(t *testing.T) {
	// The display name is numeric too, but the bearer id must win.
	s := &TokenSession{ID: 42, DisplayName: "999"}
	id, err := Resolve(s)
	require.NoError(t, err)
	require.EqualValues(t, 42, id)
}

func TestResolveNumericName(t *testing.T) {
	id, err := Resolve(nameSession("7"))
	require.NoError(t, err)
	require.EqualValues(t, 7, id)
}

func TestResolveNonNumericName(t *testing.T) {
	for _, name := range []string{"alice", "", "42abc", "4.2"} {
		_, err := Resolve(nameSession(name))
		require.ErrorIs(t, err, ErrUnresolvableIdentity, "name %q", name)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	s := &TokenSession{ID: 42, DisplayName: "alice"}
	first, err := Resolve(s)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Resolve(s)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}
