package models

import "github.com/coder/websocket"

// Player is one connected participant in a room. SessionID is the stable
// identity the engine keys on; Conn is the live transport handle and may
// be nil while disconnected.
type Player struct {
	SessionID string
	User      User
	PieceID   string
	Conn      *websocket.Conn
	Connected bool
}
