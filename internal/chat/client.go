package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/duong122/Linkly/internal/identity"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Send pings to peer with this period. Must be less than pongWait.
	maxMessageSize = 4096                // Maximum frame size allowed from peer.
)

// Client is a middleman between one websocket connection and the router.
type Client struct {
	// ID distinguishes connections of the same user in the directory
	// and in logs.
	ID string

	userID int64
	sess   identity.Session
	conn   *websocket.Conn

	// Buffered channel of outbound frames.
	send chan []byte
	// Closed exactly once to stop the write pump. The send channel itself
	// is never closed, so concurrent enqueues can never panic.
	done      chan struct{}
	closeOnce sync.Once

	router *Router
	dir    *Directory
	logger *zap.SugaredLogger
}

func newClient(userID int64, sess identity.Session, conn *websocket.Conn, router *Router, dir *Directory, logger *zap.SugaredLogger) *Client {
	return &Client{
		ID:     uuid.NewString(),
		userID: userID,
		sess:   sess,
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		router: router,
		dir:    dir,
		logger: logger,
	}
}

// enqueue offers a frame to the connection without blocking. It reports
// false when the connection is gone or its buffer is full.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// SendError pushes a best-effort error notice onto this connection's
// errors channel. It is the fallback reporting path for events whose
// sender identity could not be resolved.
func (c *Client) SendError(reason string) {
	c.enqueue(marshalFrame(ChannelErrors, reason))
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump pumps frames from the websocket connection into the router.
func (c *Client) readPump() {
	defer func() {
		// Cleanup: if the connection dies, drop it from the directory.
		c.dir.Unregister(c.userID, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.dir.Touch(c.userID)
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warnw("websocket read error", "conn_id", c.ID, "user_id", c.userID, "error", err)
			}
			break
		}
		c.handleFrame(raw)
	}
}

// handleFrame decodes one inbound frame and hands it to the router.
// Bad frames earn an error notice on this connection; they never kill it.
func (c *Client) handleFrame(raw []byte) {
	f, err := parseInbound(raw)
	if err != nil {
		c.logger.Debugw("rejected inbound frame", "conn_id", c.ID, "user_id", c.userID, "error", err)
		c.SendError("invalid frame: " + err.Error())
		return
	}

	ctx := context.Background()
	switch f.Action {
	case actionSend:
		c.router.HandleSend(ctx, c.sess, c, SendRequest{RecipientID: f.RecipientID, Content: f.Content})
	case actionTyping:
		c.router.HandleTyping(ctx, c.sess, f.RecipientID)
	}
}

// writePump pumps frames from the send channel to the websocket
// connection and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(msg)

			// Drain queued frames into the same writer to reduce syscalls.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
