package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk/internal/game"
	"github.com/boardwalk-games/boardwalk/internal/models"
)

const (
	writeTimeout  = 10 * time.Second
	sendQueueSize = 32
)

// client is one websocket connection bound to a room. Outbound messages
// go through a buffered queue drained by a single writer goroutine, so
// room broadcasts never block on a slow socket.
type client struct {
	sessionID string
	roomCode  string
	conn      *websocket.Conn

	send      chan []byte
	closeOnce sync.Once
	log       *logrus.Entry
}

func newClient(sessionID, roomCode string, conn *websocket.Conn) *client {
	return &client{
		sessionID: sessionID,
		roomCode:  roomCode,
		conn:      conn,
		send:      make(chan []byte, sendQueueSize),
		log:       logrus.WithFields(logrus.Fields{"session": sessionID, "room": roomCode}),
	}
}

// enqueue queues one outbound frame. A client that cannot keep up has its
// oldest frame dropped; the next full-state snapshot resynchronizes it.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		select {
		case <-c.send:
		default:
		}
		select {
		case c.send <- data:
		default:
		}
		c.log.Warn("send queue full, dropped a frame")
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// writeLoop drains the send queue onto the socket.
func (c *client) writeLoop() {
	for data := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			c.log.WithError(err).Debug("write failed")
			return
		}
	}
	c.conn.Close(websocket.StatusNormalClosure, "room closed")
}

// readLoop parses inbound actions and hands them to the room. Returns
// when the socket dies; the caller deregisters the client.
func (c *client) readLoop(ctx context.Context, room *game.Room) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			c.log.WithError(err).Debug("read loop ended")
			return
		}
		var action models.GameAction
		if err := json.Unmarshal(data, &action); err != nil {
			c.log.WithError(err).Debug("dropping malformed action")
			continue
		}
		room.HandlePlayerAction(c.sessionID, action)
	}
}
