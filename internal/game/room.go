// Package game owns the per-match room actor. One Room wraps one
// engine.GameState; every inbound action and timer event is applied under
// the room mutex, so the match state is mutated by a strictly ordered
// sequence of events and never concurrently.
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk/engine"
	"github.com/boardwalk-games/boardwalk/internal/cache"
	"github.com/boardwalk-games/boardwalk/internal/models"
)

// OnGameEndFunc is called when a match finishes, with the winner's
// session id ("" when nobody won).
type OnGameEndFunc func(roomID uuid.UUID, winnerSessionID string)

// Room is the actor owning one match.
type Room struct {
	ID   uuid.UUID
	Code string

	State   *engine.GameState
	Players []*models.Player

	TurnDuration      time.Duration
	ExtensionDuration time.Duration

	// Mu protects every field below and the engine state. All exported
	// methods acquire it.
	Mu sync.Mutex

	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(sessionID string, ev GameEvent)
	OnGameEnd           OnGameEndFunc

	turnTimer       *time.Timer
	bankruptcyTimer *time.Timer
	turnEpoch       int
	bankruptcyEpoch int
	turnDeadline    time.Time
	pausedRemaining []time.Duration

	actionIndex int
	closed      bool

	now func() time.Time
	log *logrus.Entry
}

// NewRoom creates an empty room with a fresh match document.
func NewRoom(code string) *Room {
	id := uuid.New()
	return &Room{
		ID:                id,
		Code:              code,
		State:             engine.NewGame(uint64(time.Now().UnixNano())),
		TurnDuration:      DefaultTurnDuration,
		ExtensionDuration: DefaultExtensionDuration,
		now:               time.Now,
		log:               logrus.WithFields(logrus.Fields{"room": code, "roomId": id}),
	}
}

// preState captures the fields the post-mutation sync diffs against.
type preState struct {
	neg       engine.NegotiationKind
	phase     engine.Phase
	currentID string
	drawn     *engine.DrawnCard
}

func (r *Room) capture() preState {
	pre := preState{
		neg:   r.State.ActiveNegotiation(),
		phase: r.State.Phase,
		drawn: r.State.Drawn,
	}
	if cp := r.State.CurrentPlayer(); cp != nil {
		pre.currentID = cp.SessionID
	}
	return pre
}

// AddPlayer admits a participant to the lobby. Joining a match in
// progress is refused and the connection closed, mirroring the engine's
// lobby-only rule.
func (r *Room) AddPlayer(sessionID string, user models.User, pieceID string, conn *websocket.Conn) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return errors.New("room is closed")
	}
	if err := r.State.AddPlayer(sessionID, user.ID.String(), user.Username, pieceID); err != nil {
		if conn != nil {
			conn.Close(websocket.StatusPolicyViolation, "game already in progress")
		}
		return err
	}
	r.Players = append(r.Players, &models.Player{
		SessionID: sessionID,
		User:      user,
		PieceID:   pieceID,
		Conn:      conn,
		Connected: true,
	})
	r.log.WithFields(logrus.Fields{"player": sessionID, "username": user.Username}).Info("player joined")
	r.logAction(sessionID, "player_join", map[string]interface{}{"username": user.Username})
	r.broadcastState()
	return nil
}

// HandleDisconnect removes a participant. In the lobby they vanish
// silently; mid-match they are eliminated and every timer or negotiation
// that referenced them is cleared before play continues.
func (r *Room) HandleDisconnect(sessionID string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return
	}
	mp := r.findPlayer(sessionID)
	if mp == nil || !mp.Connected {
		return
	}
	mp.Connected = false
	mp.Conn = nil
	r.log.WithField("player", sessionID).Info("player disconnected")
	r.logAction(sessionID, "player_disconnect", nil)

	if r.State.Phase == engine.PhaseLobby {
		r.State.RemovePlayer(sessionID)
		for i, p := range r.Players {
			if p.SessionID == sessionID {
				r.Players = append(r.Players[:i], r.Players[i+1:]...)
				break
			}
		}
		r.broadcastState()
		return
	}

	pre := r.capture()
	r.State.Eliminate(sessionID)
	r.postMutation(pre)
}

// PlayerCount returns the number of participants still in the room.
func (r *Room) PlayerCount() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return len(r.Players)
}

// Close tears the room down: timers cancelled so nothing fires against
// discarded state.
func (r *Room) Close() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.stopTurnTimer()
	r.stopBankruptcyTimer()
	r.log.Info("room closed")
}

// findPlayer returns the connection-level player record, or nil.
func (r *Room) findPlayer(sessionID string) *models.Player {
	for _, p := range r.Players {
		if p.SessionID == sessionID {
			return p
		}
	}
	return nil
}

// postMutation runs after every successful state change: point events are
// forwarded, timers re-synced against the negotiation and turn
// transitions, the finish handled, and the new state broadcast.
func (r *Room) postMutation(pre preState) {
	r.forwardStats(r.State.DrainEvents())
	r.syncTimers(pre)
	if drawn := r.State.Drawn; drawn != nil && drawn != pre.drawn {
		r.fireEvent(GameEvent{
			Type: EventCardDrawn,
			Payload: map[string]interface{}{
				"sessionId": drawn.PlayerID,
				"community": drawn.Community,
				"card":      drawn.Card,
			},
		})
	}
	if r.State.Phase == engine.PhaseFinished && pre.phase == engine.PhasePlaying {
		r.finishGame()
	}
	r.broadcastState()
}

// finishGame stops the clocks and announces the result. Assumes lock held.
func (r *Room) finishGame() {
	r.stopTurnTimer()
	r.stopBankruptcyTimer()
	r.State.TurnTimerActive = false

	winner := r.State.WinnerID
	r.log.WithField("winner", winner).Info("game finished")
	r.fireEvent(GameEvent{
		Type:    EventGameEnd,
		Payload: map[string]interface{}{"winnerId": winner, "turnCount": r.State.TurnCount},
	})
	r.recordResult(winner)
	if r.OnGameEnd != nil {
		r.OnGameEnd(r.ID, winner)
	}
}

// fireEvent broadcasts to everyone. Assumes lock held.
func (r *Room) fireEvent(ev GameEvent) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends a private event to one connected participant.
// Assumes lock held.
func (r *Room) fireEventToPlayer(sessionID string, ev GameEvent) {
	if r.BroadcastToPlayerFn == nil {
		return
	}
	if p := r.findPlayer(sessionID); p != nil && p.Connected {
		r.BroadcastToPlayerFn(sessionID, ev)
	}
}

// broadcastState pushes the full snapshot to all participants. Assumes
// lock held.
func (r *Room) broadcastState() {
	snap := r.Snapshot()
	r.fireEvent(GameEvent{Type: EventState, State: snap})
}

// logAction publishes one historian record asynchronously, in order.
// Assumes lock held.
func (r *Room) logAction(actorID, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	rec := cache.GameActionRecord{
		RoomID:        r.ID.String(),
		ActionIndex:   r.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     r.now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			logrus.WithError(err).WithField("room", rec.RoomID).Warn("failed publishing action record")
		}
	}(rec)
}
