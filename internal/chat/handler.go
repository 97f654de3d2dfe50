package chat

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/duong122/Linkly/internal/identity"
	myMiddleware "github.com/duong122/Linkly/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for now (Dev mode)
	},
}

type Handler struct {
	router   *Router
	dir      *Directory
	repo     *Repository
	presence *Presence
	logger   *zap.SugaredLogger
}

func NewHandler(router *Router, dir *Directory, repo *Repository, presence *Presence, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		router:   router,
		dir:      dir,
		repo:     repo,
		presence: presence,
		logger:   logger,
	}
}

// ServeWs upgrades an authenticated request to a websocket connection and
// registers it with the session directory.
func (h *Handler) ServeWs(w http.ResponseWriter, r *http.Request) {
	sess := myMiddleware.SessionFrom(r.Context())
	userID, err := identity.Resolve(sess)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	client := newClient(userID, sess, conn, h.router, h.dir, h.logger)
	h.dir.Register(userID, client)

	go client.writePump()
	go client.readPump()
}

// GetHistory serves the message history between the caller and ?peer=.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sess := myMiddleware.SessionFrom(r.Context())
	userID, err := identity.Resolve(sess)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	peerID, err := strconv.ParseInt(r.URL.Query().Get("peer"), 10, 64)
	if err != nil || peerID < 1 {
		http.Error(w, "query param \"peer\" must be a valid user id", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			http.Error(w, "query param \"limit\" must be between 1 and 200", http.StatusBadRequest)
			return
		}
		limit = n
	}

	messages, err := h.repo.History(r.Context(), userID, peerID, limit)
	if err != nil {
		h.logger.Errorw("history query failed", "user_id", userID, "peer_id", peerID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []*Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// GetConversations serves the caller's recent peers with last messages.
func (h *Handler) GetConversations(w http.ResponseWriter, r *http.Request) {
	sess := myMiddleware.SessionFrom(r.Context())
	userID, err := identity.Resolve(sess)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversations, err := h.repo.Conversations(r.Context(), userID)
	if err != nil {
		h.logger.Errorw("conversations query failed", "user_id", userID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if conversations == nil {
		conversations = []Conversation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conversations)
}

// GetPresence reports whether a user currently has a live connection.
func (h *Handler) GetPresence(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || targetID < 1 {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	online, err := h.presence.IsOnline(r.Context(), targetID)
	if err != nil {
		h.logger.Errorw("presence lookup failed", "user_id", targetID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user_id": targetID,
		"online":  online,
	})
}
