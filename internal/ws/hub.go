// Package ws is the websocket transport: the hub tracks rooms by join
// code and fans room broadcasts out to the connected clients.
package ws

import (
	"crypto/rand"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk/internal/game"
)

// Hub is the room registry. Lock ordering: the hub lock is never held
// while calling into a room, because rooms call back into the hub (via
// the broadcast funcs) while holding their own lock.
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]*game.Room
	clients map[string]map[string]*client

	turnDuration      time.Duration
	extensionDuration time.Duration
}

// NewHub creates an empty registry.
func NewHub(turnDuration, extensionDuration time.Duration) *Hub {
	return &Hub{
		rooms:             make(map[string]*game.Room),
		clients:           make(map[string]map[string]*client),
		turnDuration:      turnDuration,
		extensionDuration: extensionDuration,
	}
}

// codeAlphabet drops the characters players misread over voice chat.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func newRoomCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// CreateRoom registers a fresh room under a new join code.
func (h *Hub) CreateRoom() *game.Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	code := newRoomCode()
	for h.rooms[code] != nil {
		code = newRoomCode()
	}
	room := game.NewRoom(code)
	room.TurnDuration = h.turnDuration
	room.ExtensionDuration = h.extensionDuration
	room.BroadcastFn = h.broadcaster(code)
	room.BroadcastToPlayerFn = h.playerBroadcaster(code)
	room.OnGameEnd = h.onGameEnd
	h.rooms[code] = room
	h.clients[code] = make(map[string]*client)
	logrus.WithField("room", code).Info("room created")
	return room
}

// GetRoom looks a room up by join code.
func (h *Hub) GetRoom(code string) *game.Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rooms[code]
}

// broadcaster serializes an event once and enqueues it to every client in
// the room. Called with the room lock held, so it only touches the hub.
func (h *Hub) broadcaster(code string) func(ev game.GameEvent) {
	return func(ev game.GameEvent) {
		data, err := json.Marshal(ev)
		if err != nil {
			logrus.WithError(err).Error("failed marshaling event")
			return
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		for _, c := range h.clients[code] {
			c.enqueue(data)
		}
	}
}

// playerBroadcaster delivers a private event to one client.
func (h *Hub) playerBroadcaster(code string) func(sessionID string, ev game.GameEvent) {
	return func(sessionID string, ev game.GameEvent) {
		data, err := json.Marshal(ev)
		if err != nil {
			logrus.WithError(err).Error("failed marshaling event")
			return
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		if c := h.clients[code][sessionID]; c != nil {
			c.enqueue(data)
		}
	}
}

// onGameEnd is informational: the room survives so the host can return
// everyone to the lobby for a rematch.
func (h *Hub) onGameEnd(roomID uuid.UUID, winnerSessionID string) {
	logrus.WithFields(logrus.Fields{"roomId": roomID, "winner": winnerSessionID}).Info("game ended")
}

// addClient registers a connected client under its room.
func (h *Hub) addClient(code string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.clients[code]; m != nil {
		m[c.sessionID] = c
	}
}

// removeClient drops a client and, outside the hub lock, tells the room.
// The last client out closes the room.
func (h *Hub) removeClient(code, sessionID string) {
	h.mu.Lock()
	var c *client
	if m := h.clients[code]; m != nil {
		c = m[sessionID]
		delete(m, sessionID)
	}
	room := h.rooms[code]
	h.mu.Unlock()

	if c != nil {
		c.close()
	}
	if room == nil {
		return
	}
	room.HandleDisconnect(sessionID)
	if room.PlayerCount() == 0 {
		room.Close()
		h.mu.Lock()
		delete(h.rooms, code)
		delete(h.clients, code)
		h.mu.Unlock()
		logrus.WithField("room", code).Info("room removed")
	}
}
