package engine

// validateTradeTerms checks a proposal against current state. It runs at
// proposal, at counter, and again at accept time, because ownership and
// balances may have changed in between.
func (g *GameState) validateTradeTerms(terms TradeTerms) error {
	from, err := g.player(terms.FromSessionID)
	if err != nil {
		return err
	}
	to, err := g.player(terms.ToSessionID)
	if err != nil {
		return err
	}
	if from.SessionID == to.SessionID {
		return violationf("cannot trade with yourself")
	}
	if terms.OfferedCoins < 0 || terms.RequestedCoins < 0 {
		return violationf("coin amounts cannot be negative")
	}
	if len(terms.OfferedProps) == 0 && len(terms.RequestedProps) == 0 &&
		terms.OfferedCoins == 0 && terms.RequestedCoins == 0 {
		return violationf("the trade is empty")
	}
	if from.Coins < terms.OfferedCoins {
		return violationf("%s cannot cover the offered coins", from.Name)
	}
	if to.Coins < terms.RequestedCoins {
		return violationf("%s cannot cover the requested coins", to.Name)
	}
	check := func(owner *Player, props []int) error {
		for _, idx := range props {
			s, err := g.ownedProperty(owner.SessionID, idx)
			if err != nil {
				return err
			}
			if s.Houses > 0 || s.HasHotel {
				return violationf("%s has buildings and cannot be traded", s.Name)
			}
		}
		return nil
	}
	if err := check(from, terms.OfferedProps); err != nil {
		return err
	}
	return check(to, terms.RequestedProps)
}

// ProposeTrade opens the trade slot with a fresh proposal. No other
// negotiation may be active: trading is deliberately excluded during
// auctions and bankruptcy negotiations.
func (g *GameState) ProposeTrade(fromID string, terms TradeTerms) error {
	if g.Phase != PhasePlaying {
		return preconditionf("game is not in progress")
	}
	if g.ActiveNegotiation() != NegotiationNone {
		return preconditionf("a negotiation is already in progress")
	}
	terms.FromSessionID = fromID
	if err := g.validateTradeTerms(terms); err != nil {
		return err
	}
	g.Trade = TradeOffer{
		Status:     TradePending,
		TradeTerms: terms,
	}
	g.appendLog("%s proposed a trade to %s",
		g.Players[terms.FromSessionID].Name, g.Players[terms.ToSessionID].Name)
	return nil
}

// tradeParty checks there is a pending trade and that sessionID plays the
// given role in it.
func (g *GameState) tradeParty(sessionID string, wantRecipient bool) error {
	if g.Trade.Status != TradePending {
		return preconditionf("no trade is pending")
	}
	if g.ActiveNegotiation() != NegotiationTrade {
		return preconditionf("another negotiation takes priority")
	}
	want := g.Trade.FromSessionID
	if wantRecipient {
		want = g.Trade.ToSessionID
	}
	if sessionID != want {
		return preconditionf("this trade is not yours to answer")
	}
	return nil
}

// CounterOffer replaces the pending terms with new ones from the other
// side, swapping the proposer and recipient roles. Capped at
// MaxCounterOffers rounds.
func (g *GameState) CounterOffer(byID string, terms TradeTerms) error {
	if err := g.tradeParty(byID, true); err != nil {
		return err
	}
	if g.Trade.CounterOfferCount >= MaxCounterOffers {
		return violationf("counter-offer limit reached")
	}
	terms.FromSessionID = byID
	terms.ToSessionID = g.Trade.FromSessionID
	if err := g.validateTradeTerms(terms); err != nil {
		return err
	}
	prev := g.Trade.TradeTerms
	g.Trade = TradeOffer{
		Status:            TradePending,
		TradeTerms:        terms,
		CounterOfferCount: g.Trade.CounterOfferCount + 1,
		IsCounterOffer:    true,
		Previous:          &prev,
	}
	g.appendLog("%s countered the trade", g.Players[byID].Name)
	return nil
}

// AcceptTrade applies the pending terms atomically. The terms are
// revalidated first; on failure nothing is transferred and the trade
// stays pending.
func (g *GameState) AcceptTrade(byID string) error {
	if err := g.tradeParty(byID, true); err != nil {
		return err
	}
	terms := g.Trade.TradeTerms
	if err := g.validateTradeTerms(terms); err != nil {
		return err
	}
	from := g.Players[terms.FromSessionID]
	to := g.Players[terms.ToSessionID]

	for _, idx := range terms.OfferedProps {
		g.setOwner(idx, to.SessionID)
	}
	for _, idx := range terms.RequestedProps {
		g.setOwner(idx, from.SessionID)
	}
	from.Coins -= terms.OfferedCoins
	to.Coins += terms.OfferedCoins
	to.Coins -= terms.RequestedCoins
	from.Coins += terms.RequestedCoins

	g.Trade = TradeOffer{}
	g.appendLog("%s and %s completed a trade", from.Name, to.Name)
	g.emit(StatTradeCompleted, from.SessionID, 0)
	g.emit(StatTradeCompleted, to.SessionID, 0)
	g.afterLandingResolved()
	return nil
}

// RejectTrade closes the pending trade with no effect.
func (g *GameState) RejectTrade(byID string) error {
	if err := g.tradeParty(byID, true); err != nil {
		return err
	}
	g.Trade = TradeOffer{}
	g.appendLog("%s rejected the trade", g.Players[byID].Name)
	g.afterLandingResolved()
	return nil
}

// CancelTrade lets the proposer withdraw the pending offer.
func (g *GameState) CancelTrade(byID string) error {
	if err := g.tradeParty(byID, false); err != nil {
		return err
	}
	g.Trade = TradeOffer{}
	g.appendLog("%s cancelled the trade", g.Players[byID].Name)
	g.afterLandingResolved()
	return nil
}
