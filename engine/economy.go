package engine

import "time"

// BankruptcyWindow is how long a debtor gets to liquidate before being
// declared bankrupt.
const BankruptcyWindow = 45 * time.Second

// PaymentOutcome describes how a payment obligation was resolved.
type PaymentOutcome uint8

const (
	PaymentPaid        PaymentOutcome = iota // debt settled from cash
	PaymentNegotiation                       // bankruptcy negotiation opened
	PaymentBankrupted                        // debtor eliminated outright
)

// ---------------------------------------------------------------------------
// Movement
// ---------------------------------------------------------------------------

// movePlayer advances a player clockwise around the loop and credits the
// salary when the position wraps past the start space.
func (g *GameState) movePlayer(p *Player, steps int) (passedStart bool) {
	old := p.Position
	p.Position = (p.Position + steps) % BoardSize
	if p.Position < old {
		p.Coins += Salary
		g.appendLog("%s passed Payday and collected %d", p.Name, Salary)
		return true
	}
	return false
}

// moveTo relocates a player to an absolute space, crediting the salary if
// the move passes start. Used by card effects.
func (g *GameState) moveTo(p *Player, target int) {
	steps := (target - p.Position + BoardSize) % BoardSize
	if steps == 0 {
		steps = BoardSize
	}
	g.movePlayer(p, steps)
}

// sendToJail relocates a player to the jail space and ends their movement
// for the turn. No salary is collected on the way.
func (g *GameState) sendToJail(p *Player) {
	p.Position = JailIndex
	p.InJail = true
	p.JailTurnsRemaining = JailTurns
	p.DoublesCount = 0
	g.HasRolled = true
	g.AwaitingBuy = false
	g.appendLog("%s was sent to jail", p.Name)
}

// ---------------------------------------------------------------------------
// Rent
// ---------------------------------------------------------------------------

// ownsDistrict reports whether sessionID owns every property in district.
func (g *GameState) ownsDistrict(sessionID, district string) bool {
	for i := range g.Board {
		s := &g.Board[i]
		if s.Type == SpaceProperty && s.District == district && s.OwnerID != sessionID {
			return false
		}
	}
	return true
}

// EffectiveRent computes the rent currently due on a space. Mortgaged
// properties collect nothing; the monopoly bonus doubles only the
// unimproved base rate.
func (g *GameState) EffectiveRent(idx int) int {
	s := &g.Board[idx]
	if s.Type != SpaceProperty || s.OwnerID == "" || s.IsMortgaged {
		return 0
	}
	if s.HasHotel {
		return s.Rent[5]
	}
	if s.Houses > 0 {
		return s.Rent[s.Houses]
	}
	if g.ownsDistrict(s.OwnerID, s.District) {
		return s.Rent[0] * 2
	}
	return s.Rent[0]
}

// ---------------------------------------------------------------------------
// Solvency and payment
// ---------------------------------------------------------------------------

// LiquidationValue is the cash a player could raise right now: half of
// every built house, half of a hotel plus the four houses it contains, and
// half the price of every unmortgaged property.
func (g *GameState) LiquidationValue(p *Player) int {
	total := 0
	for _, idx := range p.OwnedProperties {
		s := &g.Board[idx]
		houseCost := HouseCost(s.District)
		if s.HasHotel {
			total += (HotelCost(s.District) + MaxHouses*houseCost) * buildingSalePct / 100
		} else if s.Houses > 0 {
			total += s.Houses * houseCost * buildingSalePct / 100
		}
		if !s.IsMortgaged {
			total += s.Price * mortgagePct / 100
		}
	}
	return total
}

// Wealth is a player's total worth, used only to break the round-cap win
// condition: coins plus property prices plus building value at cost.
func (g *GameState) Wealth(p *Player) int {
	total := p.Coins
	for _, idx := range p.OwnedProperties {
		s := &g.Board[idx]
		total += s.Price
		if s.HasHotel {
			total += MaxHouses*HouseCost(s.District) + HotelCost(s.District)
		} else {
			total += s.Houses * HouseCost(s.District)
		}
	}
	return total
}

// chargePlayer attempts to settle a payment obligation. Paid in full from
// cash when possible; otherwise a bankruptcy negotiation opens if
// liquidation could cover the debt, and the debtor is eliminated outright
// if it cannot. Coins never go negative on any path.
func (g *GameState) chargePlayer(p *Player, amount int, creditorID string, reason DebtReason, now time.Time) PaymentOutcome {
	if amount <= 0 {
		return PaymentPaid
	}
	if p.Coins >= amount {
		p.Coins -= amount
		if creditorID != "" {
			if c, ok := g.Players[creditorID]; ok {
				c.Coins += amount
			}
		}
		if reason == DebtRent {
			g.emit(StatRentPaid, p.SessionID, amount)
			if creditorID != "" {
				g.emit(StatRentCollected, creditorID, amount)
			}
		}
		return PaymentPaid
	}
	if p.Coins+g.LiquidationValue(p) >= amount {
		g.openBankruptcy(p, creditorID, amount, reason, now)
		return PaymentNegotiation
	}
	g.bankrupt(p, creditorID)
	return PaymentBankrupted
}

// bankrupt eliminates a player: remaining cash to the creditor, then every
// property transferred with buildings stripped (or reverted to the bank
// when the debt was owed to the bank).
func (g *GameState) bankrupt(debtor *Player, creditorID string) {
	current := g.CurrentPlayer()

	if creditorID != "" {
		if c, ok := g.Players[creditorID]; ok {
			c.Coins += debtor.Coins
		}
	}
	debtor.Coins = 0

	owned := append([]int(nil), debtor.OwnedProperties...)
	for _, idx := range owned {
		s := &g.Board[idx]
		s.Houses = 0
		s.HasHotel = false
		if creditorID == "" {
			s.IsMortgaged = false
		}
		g.setOwner(idx, creditorID)
	}

	debtor.IsBankrupt = true
	debtor.InJail = false
	debtor.JailTurnsRemaining = 0
	debtor.DoublesCount = 0
	g.appendLog("%s went bankrupt", debtor.Name)

	// Clear anything that referenced the departed player.
	if g.Drawn != nil && g.Drawn.PlayerID == debtor.SessionID {
		g.Drawn = nil
	}
	if g.Trade.Status == TradePending &&
		(g.Trade.FromSessionID == debtor.SessionID || g.Trade.ToSessionID == debtor.SessionID) {
		g.Trade = TradeOffer{}
	}
	if g.Bankruptcy.Status == BankruptcyActive && g.Bankruptcy.DebtorSessionID == debtor.SessionID {
		g.Bankruptcy = BankruptcyNegotiation{}
	}
	if g.Bankruptcy.Status == BankruptcyActive && g.Bankruptcy.CreditorSessionID == debtor.SessionID {
		// The negotiation outlives its creditor; the debt is now owed to
		// the bank.
		g.Bankruptcy.CreditorSessionID = ""
	}
	if g.Auction.Status == AuctionActive {
		g.auctionPlayerGone(debtor.SessionID)
	}

	g.repairRotation(current, debtor)
	g.checkGameOver()
	if g.Phase == PhasePlaying && current != nil && current.SessionID == debtor.SessionID {
		// The eliminated player's turn is over; hand play to the repaired
		// rotation slot with a clean turn window.
		g.HasRolled = false
		g.AwaitingBuy = false
		g.Drawn = nil
		g.Dice1, g.Dice2 = 0, 0
		g.startTurn()
	}
}

// repairRotation re-anchors CurrentPlayerIndex after the active set
// shrank. If the player whose turn it was is still in the game, the index
// follows them; otherwise it stays in place (mod the new length), which
// hands the turn to the next player in join order.
func (g *GameState) repairRotation(current, removed *Player) {
	active := g.ActivePlayers()
	if len(active) == 0 {
		return
	}
	if current != nil && current.SessionID != removed.SessionID {
		for i, p := range active {
			if p.SessionID == current.SessionID {
				g.CurrentPlayerIndex = i
				return
			}
		}
	}
	g.CurrentPlayerIndex %= len(active)
}

// ---------------------------------------------------------------------------
// Landing resolution
// ---------------------------------------------------------------------------

// resolveLanding dispatches on the space type under the player. It may set
// the buy prompt, start an auction, charge rent or tax, jail the player,
// or draw a card.
func (g *GameState) resolveLanding(p *Player, now time.Time) {
	s := &g.Board[p.Position]
	switch s.Type {
	case SpaceProperty:
		g.resolvePropertyLanding(p, s, now)
	case SpaceTax:
		g.appendLog("%s owes %d in tax", p.Name, s.TaxAmount)
		if g.chargePlayer(p, s.TaxAmount, "", DebtTax, now) == PaymentPaid {
			g.appendLog("%s paid %d tax", p.Name, s.TaxAmount)
		}
	case SpaceGoToJail:
		g.sendToJail(p)
	case SpaceChance:
		g.drawCard(p, false, now)
	case SpaceCommunity:
		g.drawCard(p, true, now)
	case SpacePayday, SpaceJail, SpaceParking:
		// Nothing to resolve. Salary is handled by movement, jail here is
		// just visiting.
	}
}

func (g *GameState) resolvePropertyLanding(p *Player, s *BoardSpace, now time.Time) {
	switch {
	case s.OwnerID == "":
		if p.Coins >= s.Price {
			g.AwaitingBuy = true
			g.appendLog("%s landed on %s (price %d)", p.Name, s.Name, s.Price)
		} else {
			g.appendLog("%s cannot afford %s; it goes to auction", p.Name, s.Name)
			g.startAuction(s.Index)
		}
	case s.OwnerID == p.SessionID:
		// Own property, nothing due.
	default:
		rent := g.EffectiveRent(s.Index)
		if rent == 0 {
			g.appendLog("%s is mortgaged; no rent due", s.Name)
			return
		}
		owner := g.Players[s.OwnerID]
		g.appendLog("%s owes %s %d rent for %s", p.Name, owner.Name, rent, s.Name)
		if g.chargePlayer(p, rent, s.OwnerID, DebtRent, now) == PaymentPaid {
			g.appendLog("%s paid %s %d rent", p.Name, owner.Name, rent)
		}
	}
}

// drawCard draws from the chance or community deck, records the card for
// the recipient's dismissal prompt, and applies its effect immediately.
func (g *GameState) drawCard(p *Player, community bool, now time.Time) {
	var card Card
	if community {
		card = g.CommunityDeck.Draw(g)
	} else {
		card = g.ChanceDeck.Draw(g)
	}
	g.Drawn = &DrawnCard{Card: card, PlayerID: p.SessionID, Community: community}
	g.appendLog("%s drew: %s", p.Name, card.Text)

	switch card.Effect {
	case EffectGain:
		p.Coins += card.Amount
	case EffectPay:
		g.chargePlayer(p, card.Amount, "", DebtCard, now)
	case EffectAdvanceTo:
		g.moveTo(p, card.Target)
		g.resolveLanding(p, now)
	case EffectGoToJail:
		g.sendToJail(p)
	case EffectJailFree:
		p.JailFreeCards++
	case EffectRepairs:
		bill := 0
		for _, idx := range p.OwnedProperties {
			s := &g.Board[idx]
			if s.HasHotel {
				bill += card.HotelAmount
			} else {
				bill += s.Houses * card.Amount
			}
		}
		g.chargePlayer(p, bill, "", DebtCard, now)
	case EffectCollectEach:
		// Capped at each payer's cash: a birthday card never drags a third
		// party into insolvency mid-turn.
		for _, other := range g.ActivePlayers() {
			if other.SessionID == p.SessionID {
				continue
			}
			pay := card.Amount
			if pay > other.Coins {
				pay = other.Coins
			}
			other.Coins -= pay
			p.Coins += pay
		}
	}
}

// DismissCard clears the drawn-card prompt. Only the recipient may do so.
func (g *GameState) DismissCard(sessionID string) error {
	if g.Drawn == nil {
		return preconditionf("no card to dismiss")
	}
	if g.Drawn.PlayerID != sessionID {
		return preconditionf("card is not yours to dismiss")
	}
	g.Drawn = nil
	g.afterLandingResolved()
	return nil
}

// ---------------------------------------------------------------------------
// Buying
// ---------------------------------------------------------------------------

// BuyProperty completes a pending buy prompt at list price.
func (g *GameState) BuyProperty(sessionID string) error {
	p, err := g.requireTurn(sessionID)
	if err != nil {
		return err
	}
	if !g.AwaitingBuy {
		return preconditionf("no property purchase pending")
	}
	if g.ActiveNegotiation() != NegotiationNone {
		return preconditionf("a negotiation is in progress")
	}
	s := &g.Board[p.Position]
	if p.Coins < s.Price {
		return violationf("cannot afford %s (price %d)", s.Name, s.Price)
	}
	p.Coins -= s.Price
	g.setOwner(s.Index, sessionID)
	g.AwaitingBuy = false
	g.appendLog("%s bought %s for %d", p.Name, s.Name, s.Price)
	g.emit(StatPropertyBought, sessionID, s.Price)
	g.afterLandingResolved()
	return nil
}

// SkipBuy declines a pending purchase, which sends the property straight
// to auction.
func (g *GameState) SkipBuy(sessionID string) error {
	p, err := g.requireTurn(sessionID)
	if err != nil {
		return err
	}
	if !g.AwaitingBuy {
		return preconditionf("no property purchase pending")
	}
	if g.ActiveNegotiation() != NegotiationNone {
		return preconditionf("a negotiation is in progress")
	}
	g.AwaitingBuy = false
	g.appendLog("%s declined to buy %s", p.Name, g.Board[p.Position].Name)
	g.startAuction(p.Position)
	return nil
}

// ---------------------------------------------------------------------------
// Building
// ---------------------------------------------------------------------------

// buildLevel treats a hotel as one step past four houses for the
// even-distribution comparisons.
func (g *GameState) buildLevel(idx int) int {
	s := &g.Board[idx]
	if s.HasHotel {
		return MaxHouses + 1
	}
	return s.Houses
}

// requireBuildable runs the checks shared by every build action: the turn
// window is open, the player owns the property, holds the monopoly, and no
// sibling is mortgaged.
func (g *GameState) requireBuildable(sessionID string, idx int) (*Player, *BoardSpace, error) {
	p, err := g.requireTurn(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !g.HasRolled {
		return nil, nil, preconditionf("roll before building")
	}
	if g.AwaitingBuy {
		return nil, nil, preconditionf("resolve the pending purchase first")
	}
	if g.ActiveNegotiation() != NegotiationNone {
		return nil, nil, preconditionf("a negotiation is in progress")
	}
	s, err := g.ownedProperty(sessionID, idx)
	if err != nil {
		return nil, nil, err
	}
	if !g.ownsDistrict(sessionID, s.District) {
		return nil, nil, violationf("you must own all of %s to build", s.District)
	}
	for _, sib := range DistrictIndices(g.Board, s.District) {
		if g.Board[sib].IsMortgaged {
			return nil, nil, violationf("%s is mortgaged; lift it before building", g.Board[sib].Name)
		}
	}
	return p, s, nil
}

// ownedProperty validates that idx is a property owned by sessionID.
func (g *GameState) ownedProperty(sessionID string, idx int) (*BoardSpace, error) {
	if idx < 0 || idx >= len(g.Board) {
		return nil, violationf("no such space")
	}
	s := &g.Board[idx]
	if s.Type != SpaceProperty {
		return nil, violationf("%s is not a property", s.Name)
	}
	if s.OwnerID != sessionID {
		return nil, violationf("you do not own %s", s.Name)
	}
	return s, nil
}

// BuildHouse adds one house, subject to monopoly, even-distribution and
// cash checks.
func (g *GameState) BuildHouse(sessionID string, idx int) error {
	p, s, err := g.requireBuildable(sessionID, idx)
	if err != nil {
		return err
	}
	if s.HasHotel || s.Houses >= MaxHouses {
		return violationf("%s is fully built", s.Name)
	}
	for _, sib := range DistrictIndices(g.Board, s.District) {
		if g.buildLevel(sib) < g.buildLevel(idx) {
			return violationf("build evenly across %s", s.District)
		}
	}
	cost := HouseCost(s.District)
	if p.Coins < cost {
		return violationf("cannot afford a house (%d)", cost)
	}
	p.Coins -= cost
	s.Houses++
	g.appendLog("%s built a house on %s", p.Name, s.Name)
	g.emit(StatBuildingBuilt, sessionID, cost)
	return nil
}

// BuildHotel upgrades four houses to a hotel. Every sibling must already
// be at four houses or a hotel.
func (g *GameState) BuildHotel(sessionID string, idx int) error {
	p, s, err := g.requireBuildable(sessionID, idx)
	if err != nil {
		return err
	}
	if s.HasHotel {
		return violationf("%s already has a hotel", s.Name)
	}
	if s.Houses != MaxHouses {
		return violationf("a hotel requires %d houses on %s", MaxHouses, s.Name)
	}
	for _, sib := range DistrictIndices(g.Board, s.District) {
		if g.buildLevel(sib) < MaxHouses {
			return violationf("build evenly across %s", s.District)
		}
	}
	cost := HotelCost(s.District)
	if p.Coins < cost {
		return violationf("cannot afford a hotel (%d)", cost)
	}
	p.Coins -= cost
	s.Houses = 0
	s.HasHotel = true
	g.appendLog("%s built a hotel on %s", p.Name, s.Name)
	g.emit(StatBuildingBuilt, sessionID, cost)
	return nil
}

// SellHouse removes one house for half its cost, preserving the even
// distribution.
func (g *GameState) SellHouse(sessionID string, idx int) error {
	p, err := g.requireTurn(sessionID)
	if err != nil {
		return err
	}
	return g.sellHouse(p, idx)
}

// sellHouse is the turn-independent core, shared with the bankruptcy flow.
func (g *GameState) sellHouse(p *Player, idx int) error {
	s, err := g.ownedProperty(p.SessionID, idx)
	if err != nil {
		return err
	}
	if s.Houses == 0 {
		return violationf("%s has no houses to sell", s.Name)
	}
	for _, sib := range DistrictIndices(g.Board, s.District) {
		if g.buildLevel(sib) > g.buildLevel(idx) {
			return violationf("sell evenly across %s", s.District)
		}
	}
	s.Houses--
	payout := HouseCost(s.District) * buildingSalePct / 100
	p.Coins += payout
	g.appendLog("%s sold a house on %s for %d", p.Name, s.Name, payout)
	return nil
}

// SellHotel removes a hotel. With convertToHouses the hotel reverts to
// four standing houses and pays out half the hotel cost; otherwise every
// building goes and the payout also covers the four houses, so both paths
// liquidate to the same total.
func (g *GameState) SellHotel(sessionID string, idx int, convertToHouses bool) error {
	p, err := g.requireTurn(sessionID)
	if err != nil {
		return err
	}
	return g.sellHotel(p, idx, convertToHouses)
}

// sellHotel is the turn-independent core, shared with the bankruptcy flow.
func (g *GameState) sellHotel(p *Player, idx int, convertToHouses bool) error {
	s, err := g.ownedProperty(p.SessionID, idx)
	if err != nil {
		return err
	}
	if !s.HasHotel {
		return violationf("%s has no hotel", s.Name)
	}
	houseCost := HouseCost(s.District)
	payout := HotelCost(s.District) * buildingSalePct / 100
	s.HasHotel = false
	if convertToHouses {
		s.Houses = MaxHouses
	} else {
		s.Houses = 0
		payout += MaxHouses * houseCost * buildingSalePct / 100
	}
	p.Coins += payout
	g.appendLog("%s sold the hotel on %s for %d", p.Name, s.Name, payout)
	return nil
}

// ---------------------------------------------------------------------------
// Mortgaging
// ---------------------------------------------------------------------------

// MortgageProperty pays out half the price. Buildings must be sold first.
func (g *GameState) MortgageProperty(sessionID string, idx int) error {
	p, err := g.requireTurn(sessionID)
	if err != nil {
		return err
	}
	return g.mortgage(p, idx)
}

// mortgage is the turn-independent core, shared with the bankruptcy flow.
func (g *GameState) mortgage(p *Player, idx int) error {
	s, err := g.ownedProperty(p.SessionID, idx)
	if err != nil {
		return err
	}
	if s.IsMortgaged {
		return violationf("%s is already mortgaged", s.Name)
	}
	if s.Houses > 0 || s.HasHotel {
		return violationf("sell the buildings on %s before mortgaging", s.Name)
	}
	s.IsMortgaged = true
	payout := s.Price * mortgagePct / 100
	p.Coins += payout
	g.appendLog("%s mortgaged %s for %d", p.Name, s.Name, payout)
	return nil
}

// UnmortgageProperty lifts a mortgage for 55% of the price.
func (g *GameState) UnmortgageProperty(sessionID string, idx int) error {
	p, err := g.requireTurn(sessionID)
	if err != nil {
		return err
	}
	s, err := g.ownedProperty(sessionID, idx)
	if err != nil {
		return err
	}
	if !s.IsMortgaged {
		return violationf("%s is not mortgaged", s.Name)
	}
	cost := s.Price * unmortgagePct / 100
	if p.Coins < cost {
		return violationf("cannot afford to unmortgage %s (%d)", s.Name, cost)
	}
	p.Coins -= cost
	s.IsMortgaged = false
	g.appendLog("%s lifted the mortgage on %s", p.Name, s.Name)
	return nil
}
