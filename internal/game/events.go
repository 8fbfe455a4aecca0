package game

// GameEventType labels a websocket event emitted by a room.
type GameEventType string

const (
	// EventState carries the full state snapshot after every mutation.
	EventState GameEventType = "game_state"
	// EventActionError is private: the acting player's request was refused.
	EventActionError GameEventType = "action_error"
	// EventCardDrawn is public: a chance/community card was shown.
	EventCardDrawn GameEventType = "card_drawn"
	// EventTurnTimeout is public: the turn clock expired and play advanced.
	EventTurnTimeout GameEventType = "turn_timeout"
	// EventGameEnd is public: the match finished, includes the winner.
	EventGameEnd GameEventType = "game_end"
)

// GameEvent is the standard structure for room broadcasts. State is
// attached to EventState; everything else rides in Payload.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *StateSnapshot         `json:"state,omitempty"`
}
