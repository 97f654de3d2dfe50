package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Directory is the process-wide registry of live connections, keyed by
// user id. The transport layer mutates it on connect/disconnect; the
// router only reads it. Multiple connections per user model multi-device
// presence.
type Directory struct {
	mu       sync.RWMutex
	sessions map[int64]map[*Client]struct{}
	presence *Presence // optional
	logger   *zap.SugaredLogger
}

func NewDirectory(presence *Presence, logger *zap.SugaredLogger) *Directory {
	return &Directory{
		sessions: make(map[int64]map[*Client]struct{}),
		presence: presence,
		logger:   logger,
	}
}

// Register adds a live connection for a user. The first connection of a
// user marks them online.
func (d *Directory) Register(userID int64, c *Client) {
	d.mu.Lock()
	set, ok := d.sessions[userID]
	if !ok {
		set = make(map[*Client]struct{})
		d.sessions[userID] = set
	}
	set[c] = struct{}{}
	first := len(set) == 1
	d.mu.Unlock()

	d.logger.Debugw("connection registered", "user_id", userID, "conn_id", c.ID)
	if first && d.presence != nil {
		d.presence.MarkOnline(context.Background(), userID)
	}
}

// Unregister removes one connection and shuts down its write pump.
// Removing a user's last connection marks them offline.
func (d *Directory) Unregister(userID int64, c *Client) {
	d.mu.Lock()
	set, ok := d.sessions[userID]
	if ok {
		delete(set, c)
		if len(set) == 0 {
			delete(d.sessions, userID)
		}
	}
	last := ok && len(set) == 0
	d.mu.Unlock()

	c.shutdown()

	if !ok {
		return
	}
	d.logger.Debugw("connection unregistered", "user_id", userID, "conn_id", c.ID)
	if last && d.presence != nil {
		d.presence.MarkOffline(context.Background(), userID)
	}
}

// ChannelsFor returns a snapshot of the user's live connections.
// The result may be empty; it is never an error.
func (d *Directory) ChannelsFor(userID int64) []*Client {
	d.mu.RLock()
	defer d.mu.RUnlock()
	set := d.sessions[userID]
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Touch refreshes the presence TTL for a user, driven by connection
// heartbeats.
func (d *Directory) Touch(userID int64) {
	if d.presence != nil {
		d.presence.Refresh(context.Background(), userID)
	}
}

// ConnectionCount returns the number of live connections across all users.
func (d *Directory) ConnectionCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	for _, set := range d.sessions {
		n += len(set)
	}
	return n
}
