package chat

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// MessageStore is the narrow gateway to the external message store. The
// router persists through it before any fan-out happens.
type MessageStore interface {
	Persist(ctx context.Context, senderID int64, req SendRequest) (*Message, error)
}

// PersistenceError wraps any storage-layer failure behind the gateway.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return "message persistence failed: " + e.Cause.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// Repository implements MessageStore on postgres and serves message
// history reads.
type Repository struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func NewRepository(db *sql.DB, logger *zap.SugaredLogger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Persist writes one message and returns the durable record with its
// assigned id and timestamp. It performs a single insert, so a failure
// leaves no partial state behind.
func (r *Repository) Persist(ctx context.Context, senderID int64, req SendRequest) (*Message, error) {
	m := &Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Content:     req.Content,
	}
	query := `INSERT INTO messages (sender_id, recipient_id, content)
              VALUES ($1, $2, $3)
              RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, senderID, req.RecipientID, req.Content).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, &PersistenceError{Cause: err}
	}

	r.logger.Debugw("message persisted", "id", m.ID, "sender_id", senderID, "recipient_id", req.RecipientID)
	return m, nil
}

// History returns up to limit messages between two users, oldest first.
func (r *Repository) History(ctx context.Context, userID, peerID int64, limit int) ([]*Message, error) {
	query := `
        SELECT id, sender_id, recipient_id, content, created_at FROM (
            SELECT id, sender_id, recipient_id, content, created_at
              FROM messages
             WHERE (sender_id = $1 AND recipient_id = $2)
                OR (sender_id = $2 AND recipient_id = $1)
             ORDER BY created_at DESC
             LIMIT $3
        ) recent
        ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, peerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Conversations returns the caller's peers ordered by most recent
// message, each with the last message exchanged.
func (r *Repository) Conversations(ctx context.Context, userID int64) ([]Conversation, error) {
	query := `
        SELECT t.peer_id, u.username, t.id, t.sender_id, t.recipient_id, t.content, t.created_at
          FROM (
            SELECT DISTINCT ON (CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END)
                   CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS peer_id,
                   id, sender_id, recipient_id, content, created_at
              FROM messages
             WHERE sender_id = $1 OR recipient_id = $1
             ORDER BY CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END,
                      created_at DESC
          ) t
          JOIN users u ON u.id = t.peer_id
         ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.PeerID, &c.PeerName, &c.LastMessage.ID, &c.LastMessage.SenderID,
			&c.LastMessage.RecipientID, &c.LastMessage.Content, &c.LastMessage.CreatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}
