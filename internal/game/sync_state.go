package game

import (
	"sort"

	"github.com/boardwalk-games/boardwalk/engine"
)

// PlayerSnapshot is one participant's public view: the engine player plus
// connection status from the transport layer.
type PlayerSnapshot struct {
	engine.Player
	Connected bool `json:"connected"`
}

// StateSnapshot is the full client-facing view of one room. Everything in
// this game is public information, so all players receive the same
// snapshot; only the deck order and the RNG stay server-side. The
// snapshot is a deep copy, safe to marshal after the room lock is
// released.
type StateSnapshot struct {
	RoomID   string `json:"roomId"`
	RoomCode string `json:"roomCode"`
	Phase    string `json:"phase"`

	Players            []PlayerSnapshot    `json:"players"`
	Board              []engine.BoardSpace `json:"board"`
	CurrentPlayerIndex int                 `json:"currentPlayerIndex"`
	CurrentSessionID   string              `json:"currentSessionId,omitempty"`

	Dice1     int    `json:"dice1"`
	Dice2     int    `json:"dice2"`
	TurnCount int    `json:"turnCount"`
	WinnerID  string `json:"winnerId,omitempty"`

	HasRolled   bool `json:"hasRolled"`
	AwaitingBuy bool `json:"awaitingBuy"`

	Trade      engine.TradeOffer            `json:"trade"`
	Auction    engine.AuctionState          `json:"auction"`
	Bankruptcy engine.BankruptcyNegotiation `json:"bankruptcy"`
	DrawnCard  *engine.DrawnCard            `json:"drawnCard,omitempty"`

	TurnTimerActive   bool  `json:"turnTimerActive"`
	TurnExtensionUsed bool  `json:"turnExtensionUsed"`
	TurnStartTime     int64 `json:"turnStartTime,omitempty"`
	TurnDeadline      int64 `json:"turnDeadline,omitempty"`

	Log []string `json:"log"`
}

// Snapshot builds the broadcast view of the room. Assumes lock held.
func (r *Room) Snapshot() *StateSnapshot {
	g := r.State

	players := make([]PlayerSnapshot, 0, len(g.Players))
	for _, p := range g.Players {
		ps := PlayerSnapshot{Player: *p}
		ps.OwnedProperties = append([]int(nil), p.OwnedProperties...)
		if mp := r.findPlayer(p.SessionID); mp != nil {
			ps.Connected = mp.Connected
		}
		players = append(players, ps)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].JoinOrder < players[j].JoinOrder })

	snap := &StateSnapshot{
		RoomID:   r.ID.String(),
		RoomCode: r.Code,
		Phase:    g.Phase.String(),

		Players:            players,
		Board:              append([]engine.BoardSpace(nil), g.Board...),
		CurrentPlayerIndex: g.CurrentPlayerIndex,

		Dice1:     g.Dice1,
		Dice2:     g.Dice2,
		TurnCount: g.TurnCount,
		WinnerID:  g.WinnerID,

		HasRolled:   g.HasRolled,
		AwaitingBuy: g.AwaitingBuy,

		Trade:      g.Trade,
		Auction:    g.Auction,
		Bankruptcy: g.Bankruptcy,

		TurnTimerActive:   g.TurnTimerActive,
		TurnExtensionUsed: g.TurnExtensionUsed,

		Log: append([]string(nil), g.Log...),
	}
	if cp := g.CurrentPlayer(); cp != nil {
		snap.CurrentSessionID = cp.SessionID
	}
	if g.Trade.OfferedProps != nil {
		snap.Trade.OfferedProps = append([]int(nil), g.Trade.OfferedProps...)
		snap.Trade.RequestedProps = append([]int(nil), g.Trade.RequestedProps...)
	}
	if g.Auction.PassedPlayers != nil {
		passed := make(map[string]bool, len(g.Auction.PassedPlayers))
		for k, v := range g.Auction.PassedPlayers {
			passed[k] = v
		}
		snap.Auction.PassedPlayers = passed
	}
	if g.Drawn != nil {
		drawn := *g.Drawn
		snap.DrawnCard = &drawn
	}
	if g.TurnTimerActive {
		snap.TurnStartTime = g.TurnStartTime.UnixMilli()
		snap.TurnDeadline = r.turnDeadline.UnixMilli()
	}
	return snap
}
