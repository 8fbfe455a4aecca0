package ws

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk/internal/auth"
	"github.com/boardwalk-games/boardwalk/internal/database"
	"github.com/boardwalk-games/boardwalk/internal/models"
)

// Handler exposes the HTTP surface: guest auth, room creation and the
// websocket join endpoint.
type Handler struct {
	Hub  *Hub
	Auth *auth.Service
}

// Routes builds the server mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/guest", h.guestHandler)
	mux.HandleFunc("/rooms", h.createRoomHandler)
	mux.HandleFunc("/ws", h.joinHandler)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed writing response")
	}
}

// guestHandler mints a token for an anonymous player.
func (h *Handler) guestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Username) == "" {
		http.Error(w, "username required", http.StatusBadRequest)
		return
	}
	userID := uuid.New()
	token, err := h.Auth.Mint(userID, strings.TrimSpace(body.Username))
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token":  token,
		"userId": userID.String(),
	})
}

// authenticate pulls the token from the Authorization header or, for the
// websocket handshake where headers are awkward in browsers, the query.
func (h *Handler) authenticate(r *http.Request) (models.User, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	userID, username, err := h.Auth.Verify(token)
	if err != nil {
		return models.User{}, err
	}
	return models.User{ID: userID, Username: username}, nil
}

// createRoomHandler opens a new room and returns its join code.
func (h *Handler) createRoomHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, err := h.authenticate(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	room := h.Hub.CreateRoom()
	writeJSON(w, http.StatusCreated, map[string]string{
		"code":   room.Code,
		"roomId": room.ID.String(),
	})
}

// joinHandler upgrades the connection and attaches the player to a room.
func (h *Handler) joinHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	code := strings.ToUpper(r.URL.Query().Get("code"))
	room := h.Hub.GetRoom(code)
	if room == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	pieceID := r.URL.Query().Get("piece")
	if pieceID == "" {
		pieceID = models.DefaultPieceID
	}
	profile, err := database.GetProfile(r.Context(), user.ID)
	if err != nil {
		logrus.WithError(err).Warn("profile load failed; falling back to defaults")
		profile = &models.Profile{UserID: user.ID}
	}
	if !profile.OwnsPiece(pieceID) {
		http.Error(w, "piece not owned", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		logrus.WithError(err).Debug("websocket accept failed")
		return
	}

	sessionID := uuid.NewString()
	c := newClient(sessionID, code, conn)
	h.Hub.addClient(code, c)
	go c.writeLoop()

	if err := room.AddPlayer(sessionID, user, pieceID, conn); err != nil {
		h.Hub.removeClient(code, sessionID)
		return
	}

	c.readLoop(r.Context(), room)
	h.Hub.removeClient(code, sessionID)
}
