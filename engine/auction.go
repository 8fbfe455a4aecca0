package engine

// startAuction opens the auction slot for a property the landing player
// could not or would not buy. Every active player may take part.
func (g *GameState) startAuction(idx int) {
	g.Auction = AuctionState{
		Status:        AuctionActive,
		PropertyIndex: idx,
		PassedPlayers: make(map[string]bool),
	}
	g.appendLog("%s is up for auction", g.Board[idx].Name)
}

// PlaceBid raises the auction. Bids start at 1 and must strictly exceed
// the current bid; a player who has passed is out for good.
func (g *GameState) PlaceBid(sessionID string, amount int) error {
	if g.Auction.Status != AuctionActive {
		return preconditionf("no auction is running")
	}
	p, err := g.player(sessionID)
	if err != nil {
		return err
	}
	if g.Auction.PassedPlayers[sessionID] {
		return preconditionf("you have passed on this auction")
	}
	if amount < 1 {
		return violationf("bids start at 1")
	}
	if amount <= g.Auction.CurrentBid {
		return violationf("bid must exceed the current bid of %d", g.Auction.CurrentBid)
	}
	if p.Coins < amount {
		return violationf("cannot afford a bid of %d", amount)
	}
	g.Auction.CurrentBid = amount
	g.Auction.HighestBidderID = sessionID
	g.appendLog("%s bid %d for %s", p.Name, amount, g.Board[g.Auction.PropertyIndex].Name)
	g.checkAuctionEnd()
	return nil
}

// PassAuction takes a player out of the auction. The current highest
// bidder may not pass.
func (g *GameState) PassAuction(sessionID string) error {
	if g.Auction.Status != AuctionActive {
		return preconditionf("no auction is running")
	}
	p, err := g.player(sessionID)
	if err != nil {
		return err
	}
	if g.Auction.PassedPlayers[sessionID] {
		return preconditionf("you have already passed")
	}
	if g.Auction.HighestBidderID == sessionID {
		return preconditionf("the highest bidder cannot pass")
	}
	g.Auction.PassedPlayers[sessionID] = true
	g.appendLog("%s passed on the auction", p.Name)
	g.checkAuctionEnd()
	return nil
}

// auctionPlayerGone handles a participant dropping out mid-auction: an
// implicit pass, and if they were leading, the bid and leader are cleared
// and the auction continues.
func (g *GameState) auctionPlayerGone(sessionID string) {
	if g.Auction.Status != AuctionActive {
		return
	}
	if g.Auction.HighestBidderID == sessionID {
		g.Auction.HighestBidderID = ""
		g.Auction.CurrentBid = 0
		g.appendLog("the leading bid was withdrawn")
	}
	g.Auction.PassedPlayers[sessionID] = true
	g.checkAuctionEnd()
}

// checkAuctionEnd closes the auction once every active player except the
// highest bidder has passed. With no bids at all, that means everyone.
func (g *GameState) checkAuctionEnd() {
	for _, p := range g.ActivePlayers() {
		if p.SessionID == g.Auction.HighestBidderID {
			continue
		}
		if !g.Auction.PassedPlayers[p.SessionID] {
			return
		}
	}
	g.endAuction()
}

// endAuction transfers the property to the highest bidder at their bid, or
// leaves it with the bank when nobody bid.
func (g *GameState) endAuction() {
	a := g.Auction
	g.Auction = AuctionState{}
	s := &g.Board[a.PropertyIndex]
	if a.HighestBidderID == "" {
		g.appendLog("no bids; %s stays with the bank", s.Name)
	} else if w, ok := g.Players[a.HighestBidderID]; ok {
		w.Coins -= a.CurrentBid
		g.setOwner(a.PropertyIndex, a.HighestBidderID)
		g.appendLog("%s won %s at auction for %d", w.Name, s.Name, a.CurrentBid)
		g.emit(StatAuctionWon, a.HighestBidderID, a.CurrentBid)
	}
	g.afterLandingResolved()
}
