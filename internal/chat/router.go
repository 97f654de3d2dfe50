package chat

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/duong122/Linkly/internal/identity"
)

// ErrorSink is a best-effort reporting path for a connection whose user
// identity could not be resolved. *Client implements it.
type ErrorSink interface {
	SendError(reason string)
}

// Router owns message delivery: it resolves the sender, persists the
// message, then fans the durable record out to the recipient's and the
// sender's live connections. It is stateless per call and safe for
// concurrent use.
type Router struct {
	store  MessageStore
	dir    *Directory
	logger *zap.SugaredLogger
}

func NewRouter(store MessageStore, dir *Directory, logger *zap.SugaredLogger) *Router {
	return &Router{store: store, dir: dir, logger: logger}
}

// HandleSend processes one inbound send-message event.
//
// Failures before persistence abort the whole operation with no side
// effects beyond a best-effort notice to the originating connection.
// Failures after persistence are isolated per dispatch target; the
// durable record is never rolled back.
func (r *Router) HandleSend(ctx context.Context, sess identity.Session, origin ErrorSink, req SendRequest) {
	senderID, err := identity.Resolve(sess)
	if err != nil {
		r.logger.Errorw("identity resolution failed on send", "error", err)
		if origin != nil {
			origin.SendError("Authentication failed: user identity not found")
		}
		return
	}

	if req.RecipientID < 1 || req.Content == "" {
		r.dispatchError(senderID, "invalid message: recipient and content are required")
		return
	}

	record, err := r.store.Persist(ctx, senderID, req)
	if err != nil {
		r.logger.Errorw("message persistence failed",
			"sender_id", senderID, "recipient_id", req.RecipientID, "error", err)
		var pe *PersistenceError
		reason := "Failed to send message"
		if errors.As(err, &pe) {
			reason = "Failed to send message: " + pe.Cause.Error()
		}
		// The recipient receives nothing for an unrecorded message.
		r.dispatchError(senderID, reason)
		return
	}

	r.RouteMessage(record)
}

// RouteMessage fans a durable record out to exactly two destinations:
// the recipient's messages channel, then the sender's. The sender
// dispatch is the send confirmation that lets the sending device echo
// the message immediately.
func (r *Router) RouteMessage(record *Message) {
	payload := marshalFrame(ChannelMessages, record)
	r.dispatch(Destination{UserID: record.RecipientID, Channel: ChannelMessages}, payload)
	r.dispatch(Destination{UserID: record.SenderID, Channel: ChannelMessages}, payload)
}

// HandleTyping processes one inbound typing event. Typing indicators are
// best-effort and never surface errors to the caller.
func (r *Router) HandleTyping(ctx context.Context, sess identity.Session, recipientID int64) {
	senderID, err := identity.Resolve(sess)
	if err != nil {
		r.logger.Debugw("identity resolution failed on typing", "error", err)
		return
	}
	if recipientID < 1 {
		return
	}
	r.RelayTyping(TypingSignal{
		SenderID:    senderID,
		SenderName:  sess.Name(),
		RecipientID: recipientID,
	})
}

// RelayTyping dispatches a transient typing notice to the recipient only.
// No persistence, no sender echo.
func (r *Router) RelayTyping(sig TypingSignal) {
	payload := marshalFrame(ChannelTyping, sig.SenderName+" is typing...")
	r.dispatch(Destination{UserID: sig.RecipientID, Channel: ChannelTyping}, payload)
}

func (r *Router) dispatchError(userID int64, reason string) {
	r.dispatch(Destination{UserID: userID, Channel: ChannelErrors}, marshalFrame(ChannelErrors, reason))
}

// dispatch pushes a payload to every live connection of the destination
// user. An offline user is a silent no-op. A connection that can't keep
// up is dropped, without affecting other connections or other targets.
func (r *Router) dispatch(dst Destination, payload []byte) {
	clients := r.dir.ChannelsFor(dst.UserID)
	if len(clients) == 0 {
		r.logger.Debugw("no live channels for destination", "destination", dst.String())
		return
	}
	for _, c := range clients {
		if !c.enqueue(payload) {
			r.logger.Warnw("dispatch failed, dropping slow connection",
				"destination", dst.String(), "conn_id", c.ID)
			r.dir.Unregister(dst.UserID, c)
		}
	}
}
