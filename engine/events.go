package engine

// StatEventType identifies a point event forwarded to the external
// profile/achievement collaborator. These are side notifications only;
// nothing in the rules depends on them.
type StatEventType string

const (
	StatPropertyBought StatEventType = "property_bought"
	StatBuildingBuilt  StatEventType = "building_built"
	StatRentCollected  StatEventType = "rent_collected"
	StatRentPaid       StatEventType = "rent_paid"
	StatTradeCompleted StatEventType = "trade_completed"
	StatAuctionWon     StatEventType = "auction_won"
	StatJailEscaped    StatEventType = "jail_escaped"
	StatGameWon        StatEventType = "game_won"
)

// StatEvent is one point event attributed to a player.
type StatEvent struct {
	Type      StatEventType `json:"type"`
	SessionID string        `json:"sessionId"`
	Amount    int           `json:"amount,omitempty"`
}

// emit queues a point event for the room to drain after the mutation.
func (g *GameState) emit(t StatEventType, sessionID string, amount int) {
	g.Events = append(g.Events, StatEvent{Type: t, SessionID: sessionID, Amount: amount})
}

// DrainEvents returns and clears the queued point events.
func (g *GameState) DrainEvents() []StatEvent {
	ev := g.Events
	g.Events = nil
	return ev
}
