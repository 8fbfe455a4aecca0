// Package engine implements the rules of the property trading game.
//
// The engine is pure state manipulation: it performs no I/O, owns no
// timers and reads no clocks. Callers pass the current time into the few
// operations that stamp deadlines, which keeps every rule deterministic
// and directly testable. One GameState is the canonical document for one
// match; the room actor that owns it serializes all access.
package engine

import (
	"fmt"
	"sort"
	"time"
)

// Phase is the top-level match lifecycle state.
type Phase uint8

const (
	PhaseLobby Phase = iota
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// Player is one participant's slice of the game document. SessionID is the
// stable transport identity; JoinOrder fixes the turn rotation.
type Player struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	PieceID   string `json:"pieceId"`
	JoinOrder int    `json:"joinOrder"`
	IsHost    bool   `json:"isHost"`

	Coins           int   `json:"coins"`
	Position        int   `json:"position"`
	OwnedProperties []int `json:"ownedProperties"`

	IsActive           bool `json:"isActive"`
	IsBankrupt         bool `json:"isBankrupt"`
	InJail             bool `json:"inJail"`
	JailTurnsRemaining int  `json:"jailTurnsRemaining"`
	JailFreeCards      int  `json:"jailFreeCards"`
	DoublesCount       int  `json:"doublesCount"`
}

// TradeStatus is the trade slot state.
type TradeStatus uint8

const (
	TradeNone TradeStatus = iota
	TradePending
)

// TradeTerms is one side-pair of a trade proposal.
type TradeTerms struct {
	FromSessionID  string `json:"fromSessionId"`
	ToSessionID    string `json:"toSessionId"`
	OfferedProps   []int  `json:"offeredProps"`
	RequestedProps []int  `json:"requestedProps"`
	OfferedCoins   int    `json:"offeredCoins"`
	RequestedCoins int    `json:"requestedCoins"`
}

// TradeOffer is the singleton trade negotiation slot.
type TradeOffer struct {
	Status            TradeStatus `json:"status"`
	TradeTerms                    // current terms
	CounterOfferCount int         `json:"counterOfferCount"`
	IsCounterOffer    bool        `json:"isCounterOffer"`
	// Previous holds the terms the current counter replaced, for diff
	// display on the receiving side. Nil for a fresh proposal.
	Previous *TradeTerms `json:"previous,omitempty"`
}

// AuctionStatus is the auction slot state.
type AuctionStatus uint8

const (
	AuctionNone AuctionStatus = iota
	AuctionActive
)

// AuctionState is the singleton auction slot.
type AuctionState struct {
	Status          AuctionStatus   `json:"status"`
	PropertyIndex   int             `json:"propertyIndex"`
	CurrentBid      int             `json:"currentBid"`
	HighestBidderID string          `json:"highestBidderId,omitempty"`
	PassedPlayers   map[string]bool `json:"passedPlayers,omitempty"`
}

// BankruptcyStatus is the bankruptcy negotiation slot state.
type BankruptcyStatus uint8

const (
	BankruptcyNone BankruptcyStatus = iota
	BankruptcyActive
)

// DebtReason records what obligation opened a bankruptcy negotiation.
type DebtReason string

const (
	DebtRent     DebtReason = "rent"
	DebtTax      DebtReason = "tax"
	DebtCard     DebtReason = "card"
	DebtJailFine DebtReason = "jail_fine"
)

// BankruptcyNegotiation is the singleton debt-resolution slot. An empty
// CreditorSessionID means the debt is owed to the bank.
type BankruptcyNegotiation struct {
	Status            BankruptcyStatus `json:"status"`
	DebtorSessionID   string           `json:"debtorSessionId,omitempty"`
	CreditorSessionID string           `json:"creditorSessionId,omitempty"`
	AmountOwed        int              `json:"amountOwed"`
	Reason            DebtReason       `json:"reason,omitempty"`
	Deadline          time.Time        `json:"deadline"`
}

// NegotiationKind tags which of the three singleton negotiation slots is
// currently blocking normal play. At most one is active at a time; every
// entry point that could start a second one checks ActiveNegotiation first.
type NegotiationKind uint8

const (
	NegotiationNone NegotiationKind = iota
	NegotiationTrade
	NegotiationAuction
	NegotiationBankruptcy
)

// GameState is the single mutable document for one match.
type GameState struct {
	Phase              Phase              `json:"phase"`
	Players            map[string]*Player `json:"players"`
	Board              []BoardSpace       `json:"board"`
	CurrentPlayerIndex int                `json:"currentPlayerIndex"`

	Dice1     int    `json:"dice1"`
	Dice2     int    `json:"dice2"`
	TurnCount int    `json:"turnCount"`
	WinnerID  string `json:"winnerId,omitempty"`

	HasRolled   bool `json:"hasRolled"`
	AwaitingBuy bool `json:"awaitingBuy"`

	Trade      TradeOffer            `json:"trade"`
	Auction    AuctionState          `json:"auction"`
	Bankruptcy BankruptcyNegotiation `json:"bankruptcy"`

	Drawn *DrawnCard `json:"drawnCard,omitempty"`

	// Turn timer view, maintained by the room's timer controller so that
	// clients can render the countdown from the snapshot alone.
	TurnStartTime     time.Time     `json:"turnStartTime"`
	TurnTimeLimit     time.Duration `json:"turnTimeLimit"`
	TurnTimerActive   bool          `json:"turnTimerActive"`
	TurnExtensionUsed bool          `json:"turnExtensionUsed"`

	Log []string `json:"log"`

	// Events holds queued point events for the external stats
	// collaborator, drained by the room after every mutation.
	Events []StatEvent `json:"-"`

	ChanceDeck    Deck `json:"-"`
	CommunityDeck Deck `json:"-"`

	rng       uint64
	joinedSeq int
}

// NewGame creates a fresh match document in the lobby phase. The seed
// drives dice and deck shuffles; zero is corrected because xorshift64
// cannot leave state zero.
func NewGame(seed uint64) *GameState {
	g := &GameState{
		Phase:   PhaseLobby,
		Players: make(map[string]*Player),
		Board:   NewBoard(),
		rng:     seed,
	}
	if g.rng == 0 {
		g.rng = 1
	}
	g.ChanceDeck = newDeck(chanceCards(), g)
	g.CommunityDeck = newDeck(communityCards(), g)
	return g
}

// xorshift64, embedded so a seed fully determines a match.
func (g *GameState) nextRand() uint64 {
	x := g.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.rng = x
	return x
}

func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// rollDie returns a value in [1,6].
func (g *GameState) rollDie() int {
	return int(g.randN(6)) + 1
}

// ---------------------------------------------------------------------------
// Players
// ---------------------------------------------------------------------------

// AddPlayer registers a participant while the match is in the lobby. The
// first joiner becomes host.
func (g *GameState) AddPlayer(sessionID, userID, name, pieceID string) error {
	if g.Phase != PhaseLobby {
		return preconditionf("game already started")
	}
	if _, ok := g.Players[sessionID]; ok {
		return preconditionf("already joined")
	}
	host := len(g.Players) == 0
	g.joinedSeq++
	g.Players[sessionID] = &Player{
		SessionID: sessionID,
		UserID:    userID,
		Name:      name,
		PieceID:   pieceID,
		JoinOrder: g.joinedSeq,
		IsHost:    host,
		Coins:     StartingCoins,
		IsActive:  true,
	}
	g.appendLog("%s joined the game", name)
	return nil
}

// RemovePlayer drops a participant from the lobby. Mid-match departures go
// through Eliminate instead. If the host leaves, the longest-joined
// remaining player is promoted.
func (g *GameState) RemovePlayer(sessionID string) {
	p, ok := g.Players[sessionID]
	if !ok || g.Phase != PhaseLobby {
		return
	}
	delete(g.Players, sessionID)
	g.appendLog("%s left the game", p.Name)
	if p.IsHost {
		if rest := g.ActivePlayers(); len(rest) > 0 {
			rest[0].IsHost = true
			g.appendLog("%s is now the host", rest[0].Name)
		}
	}
}

// Host returns the current host, or nil if the room is empty.
func (g *GameState) Host() *Player {
	for _, p := range g.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// ActivePlayers returns the active, non-bankrupt players ordered by join
// order. CurrentPlayerIndex always indexes this slice, never the raw map.
func (g *GameState) ActivePlayers() []*Player {
	out := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		if p.IsActive && !p.IsBankrupt {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinOrder < out[j].JoinOrder })
	return out
}

// CurrentPlayer returns the player whose turn it is, or nil outside the
// playing phase.
func (g *GameState) CurrentPlayer() *Player {
	if g.Phase != PhasePlaying {
		return nil
	}
	active := g.ActivePlayers()
	if len(active) == 0 {
		return nil
	}
	return active[g.CurrentPlayerIndex%len(active)]
}

// player resolves a session id, returning a precondition error for unknown
// or eliminated participants.
func (g *GameState) player(sessionID string) (*Player, error) {
	p, ok := g.Players[sessionID]
	if !ok {
		return nil, preconditionf("unknown player")
	}
	if !p.IsActive || p.IsBankrupt {
		return nil, preconditionf("player is out of the game")
	}
	return p, nil
}

// requireTurn resolves a session id and checks it is that player's turn.
func (g *GameState) requireTurn(sessionID string) (*Player, error) {
	if g.Phase != PhasePlaying {
		return nil, preconditionf("game is not in progress")
	}
	p, err := g.player(sessionID)
	if err != nil {
		return nil, err
	}
	if cur := g.CurrentPlayer(); cur == nil || cur.SessionID != sessionID {
		return nil, preconditionf("not your turn")
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Ownership
// ---------------------------------------------------------------------------

// setOwner is the single mutator for the duplicated ownership fact: it
// rewrites both space.OwnerID and the affected players' OwnedProperties in
// one step so the two views can never drift.
func (g *GameState) setOwner(idx int, sessionID string) {
	space := &g.Board[idx]
	if space.OwnerID != "" {
		if prev, ok := g.Players[space.OwnerID]; ok {
			for i, owned := range prev.OwnedProperties {
				if owned == idx {
					prev.OwnedProperties = append(prev.OwnedProperties[:i], prev.OwnedProperties[i+1:]...)
					break
				}
			}
		}
	}
	space.OwnerID = sessionID
	if sessionID == "" {
		return
	}
	next := g.Players[sessionID]
	next.OwnedProperties = append(next.OwnedProperties, idx)
	sort.Ints(next.OwnedProperties)
}

// ActiveNegotiation reports which negotiation slot currently blocks normal
// play. The three slots are singletons; this is the one exhaustive check.
func (g *GameState) ActiveNegotiation() NegotiationKind {
	switch {
	case g.Bankruptcy.Status == BankruptcyActive:
		return NegotiationBankruptcy
	case g.Auction.Status == AuctionActive:
		return NegotiationAuction
	case g.Trade.Status == TradePending:
		return NegotiationTrade
	}
	return NegotiationNone
}

// ---------------------------------------------------------------------------
// Event log
// ---------------------------------------------------------------------------

// appendLog adds a human-readable event line, keeping only the most recent
// logLimit entries.
func (g *GameState) appendLog(format string, args ...interface{}) {
	g.Log = append(g.Log, fmt.Sprintf(format, args...))
	if len(g.Log) > logLimit {
		g.Log = g.Log[len(g.Log)-logLimit:]
	}
}

// LastLog returns the most recent event line, or "".
func (g *GameState) LastLog() string {
	if len(g.Log) == 0 {
		return ""
	}
	return g.Log[len(g.Log)-1]
}

// ---------------------------------------------------------------------------
// Reset
// ---------------------------------------------------------------------------

// ResetToLobby returns a finished match to the lobby in place: board,
// decks, log and negotiation slots cleared, players reset to starting
// coins and position. Join order and host survive.
func (g *GameState) ResetToLobby() error {
	if g.Phase != PhaseFinished {
		return preconditionf("game is not finished")
	}
	g.Phase = PhaseLobby
	g.Board = NewBoard()
	g.ChanceDeck = newDeck(chanceCards(), g)
	g.CommunityDeck = newDeck(communityCards(), g)
	g.CurrentPlayerIndex = 0
	g.Dice1, g.Dice2 = 0, 0
	g.TurnCount = 0
	g.WinnerID = ""
	g.HasRolled = false
	g.AwaitingBuy = false
	g.Trade = TradeOffer{}
	g.Auction = AuctionState{}
	g.Bankruptcy = BankruptcyNegotiation{}
	g.Drawn = nil
	g.TurnTimerActive = false
	g.TurnExtensionUsed = false
	g.Log = nil
	for _, p := range g.Players {
		p.Coins = StartingCoins
		p.Position = 0
		p.OwnedProperties = nil
		p.IsActive = true
		p.IsBankrupt = false
		p.InJail = false
		p.JailTurnsRemaining = 0
		p.JailFreeCards = 0
		p.DoublesCount = 0
	}
	g.appendLog("returned to lobby")
	return nil
}
