package chat

import (
	"encoding/json"
	"fmt"
	"time"
)

// ---------------------------------------------
// Database & API Models
// ---------------------------------------------

// Message is the durable record of one delivered message. It is created
// only by the persistence gateway and immutable afterwards.
type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Conversation is one entry in a user's recent-peers list.
type Conversation struct {
	PeerID      int64   `json:"peer_id"`
	PeerName    string  `json:"peer_name"`
	LastMessage Message `json:"last_message"`
}

// ---------------------------------------------
// Internal Routing Models
// ---------------------------------------------

// SendRequest is what a client submits over the wire. It has no identity
// of its own until the store assigns one.
type SendRequest struct {
	RecipientID int64
	Content     string
}

// TypingSignal is a transient notice that a user is typing. It is never
// persisted and exists only for the duration of one relay call.
type TypingSignal struct {
	SenderID    int64
	SenderName  string
	RecipientID int64
}

// Logical channel types for per-user delivery.
const (
	ChannelMessages = "messages"
	ChannelTyping   = "typing"
	ChannelErrors   = "errors"
)

// Destination addresses one logical channel of one user. The transport
// layer owns the mapping from a Destination to live connections.
type Destination struct {
	UserID  int64
	Channel string
}

func (d Destination) String() string {
	return fmt.Sprintf("user.%d.%s", d.UserID, d.Channel)
}

// frame is the outbound envelope written to a websocket connection.
type frame struct {
	Channel string      `json:"channel"`
	Data    interface{} `json:"data"`
}

func marshalFrame(channel string, data interface{}) []byte {
	b, err := json.Marshal(frame{Channel: channel, Data: data})
	if err != nil {
		// Data is always one of our own types; this cannot fail at runtime.
		panic(err)
	}
	return b
}
