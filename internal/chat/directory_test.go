package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDirectory() *Directory {
	return NewDirectory(nil, zap.NewNop().Sugar())
}

func TestDirectoryRegisterAndLookup(t *testing.T) {
	dir := newTestDirectory()

	require.Empty(t, dir.ChannelsFor(42))

	c := newTestClient(8)
	dir.Register(42, c)

	channels := dir.ChannelsFor(42)
	require.Len(t, channels, 1)
	require.Same(t, c, channels[0])
	require.Empty(t, dir.ChannelsFor(7))
}

func TestDirectoryMultiDevice(t *testing.T) {
	dir := newTestDirectory()

	phone := newTestClient(8)
	laptop := newTestClient(8)
	dir.Register(42, phone)
	dir.Register(42, laptop)

	require.Len(t, dir.ChannelsFor(42), 2)
	require.Equal(t, 2, dir.ConnectionCount())

	dir.Unregister(42, phone)
	channels := dir.ChannelsFor(42)
	require.Len(t, channels, 1)
	require.Same(t, laptop, channels[0])

	dir.Unregister(42, laptop)
	require.Empty(t, dir.ChannelsFor(42))
	require.Zero(t, dir.ConnectionCount())
}

func TestDirectoryUnregisterStopsClient(t *testing.T) {
	dir := newTestDirectory()

	c := newTestClient(8)
	dir.Register(42, c)
	dir.Unregister(42, c)

	select {
	case <-c.done:
	default:
		t.Fatal("unregister must shut the client down")
	}

	// Enqueues after shutdown are rejected, never panic.
	require.False(t, c.enqueue([]byte("late")))
}

func TestDirectoryUnregisterUnknownClient(t *testing.T) {
	dir := newTestDirectory()
	// Must not panic for a client that was never registered.
	dir.Unregister(42, newTestClient(8))
}

func TestDirectoryConcurrentAccess(t *testing.T) {
	dir := newTestDirectory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			c := newTestClient(8)
			dir.Register(userID, c)
			dir.ChannelsFor(userID)
			dir.Unregister(userID, c)
		}(int64(i % 5))
	}
	wg.Wait()

	require.Zero(t, dir.ConnectionCount())
}
