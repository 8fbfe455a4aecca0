package game

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk/engine"
	"github.com/boardwalk-games/boardwalk/internal/models"
)

// HandlePlayerAction validates and applies one inbound action under the
// room lock. Refusals are reported privately to the acting player and
// leave the state untouched; successful actions are logged to the
// historian and followed by the standard post-mutation sync.
func (r *Room) HandlePlayerAction(sessionID string, action models.GameAction) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return
	}
	pre := r.capture()
	if err := r.applyAction(sessionID, action); err != nil {
		r.log.WithFields(logrus.Fields{
			"player": sessionID,
			"action": action.ActionType,
		}).WithError(err).Debug("action refused")
		r.fireEventToPlayer(sessionID, GameEvent{
			Type: EventActionError,
			Payload: map[string]interface{}{
				"action": action.ActionType,
				"error":  err.Error(),
			},
		})
		return
	}
	r.logAction(sessionID, action.ActionType, action.Payload)
	r.postMutation(pre)
}

// applyAction routes one action to the engine. Assumes lock held.
func (r *Room) applyAction(sessionID string, a models.GameAction) error {
	g := r.State
	switch a.ActionType {
	case "start_game":
		return g.Start(sessionID)
	case "return_to_lobby":
		if host := g.Host(); host == nil || host.SessionID != sessionID {
			return fmt.Errorf("only the host can return the room to the lobby")
		}
		return g.ResetToLobby()

	case "roll_dice":
		return g.RollDice(sessionID, r.now())
	case "end_turn":
		return g.EndTurn(sessionID)
	case "request_time_extension":
		return r.requestTimeExtension(sessionID)

	case "buy_property":
		return g.BuyProperty(sessionID)
	case "skip_buy":
		return g.SkipBuy(sessionID)
	case "dismiss_card":
		return g.DismissCard(sessionID)

	case "build_house":
		return g.BuildHouse(sessionID, a.Int("propertyIndex", -1))
	case "build_hotel":
		return g.BuildHotel(sessionID, a.Int("propertyIndex", -1))
	case "sell_house":
		return g.SellHouse(sessionID, a.Int("propertyIndex", -1))
	case "sell_hotel":
		return g.SellHotel(sessionID, a.Int("propertyIndex", -1), a.Bool("convertToHouses"))
	case "mortgage_property":
		return g.MortgageProperty(sessionID, a.Int("propertyIndex", -1))
	case "unmortgage_property":
		return g.UnmortgageProperty(sessionID, a.Int("propertyIndex", -1))

	case "pay_jail_fine":
		return g.PayJailFine(sessionID)
	case "use_jail_card":
		return g.UseJailCard(sessionID)

	case "propose_trade":
		return g.ProposeTrade(sessionID, r.tradeTerms(sessionID, a))
	case "counter_offer":
		return g.CounterOffer(sessionID, r.tradeTerms(sessionID, a))
	case "accept_trade":
		return g.AcceptTrade(sessionID)
	case "reject_trade":
		return g.RejectTrade(sessionID)
	case "cancel_trade":
		return g.CancelTrade(sessionID)

	case "place_bid":
		return g.PlaceBid(sessionID, a.Int("amount", 0))
	case "pass_auction":
		return g.PassAuction(sessionID)

	case "bankruptcy_sell_building":
		return g.BankruptcySellBuilding(sessionID, a.Int("propertyIndex", -1))
	case "bankruptcy_mortgage":
		return g.BankruptcyMortgage(sessionID, a.Int("propertyIndex", -1))
	case "bankruptcy_pay_debt":
		return g.PayDebt(sessionID)
	case "bankruptcy_declare":
		return g.DeclareBankruptcy(sessionID)
	}
	return fmt.Errorf("unknown action %q", a.ActionType)
}

// tradeTerms decodes the trade payload. The engine fills the proposer
// and, for counters, swaps the roles; only the recipient needs decoding
// here.
func (r *Room) tradeTerms(sessionID string, a models.GameAction) engine.TradeTerms {
	return engine.TradeTerms{
		FromSessionID:  sessionID,
		ToSessionID:    a.String("toSessionId"),
		OfferedProps:   a.IntSlice("offeredProps"),
		RequestedProps: a.IntSlice("requestedProps"),
		OfferedCoins:   a.Int("offeredCoins", 0),
		RequestedCoins: a.Int("requestedCoins", 0),
	}
}

// requestTimeExtension grants the once-per-turn 30 seconds. Only the
// current player may ask, only while their clock is actually running, so
// a paused negotiation clock cannot be stretched. Assumes lock held.
func (r *Room) requestTimeExtension(sessionID string) error {
	g := r.State
	cp := g.CurrentPlayer()
	if cp == nil || cp.SessionID != sessionID {
		return fmt.Errorf("not your turn")
	}
	if !g.TurnTimerActive {
		return fmt.Errorf("the turn clock is not running")
	}
	if g.TurnExtensionUsed {
		return fmt.Errorf("the extension was already used this turn")
	}
	g.TurnExtensionUsed = true

	remaining := r.turnDeadline.Sub(r.now())
	if remaining < 0 {
		remaining = 0
	}
	r.armTurnTimer(remaining + r.ExtensionDuration)
	r.log.WithField("player", sessionID).Info("turn extension granted")
	return nil
}
