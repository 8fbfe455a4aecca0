package engine

import "time"

// openBankruptcy starts the timed debt-resolution window. The debtor can
// cover the amount by liquidating; everyone else is frozen out until the
// slot resolves or the deadline passes.
func (g *GameState) openBankruptcy(debtor *Player, creditorID string, amount int, reason DebtReason, now time.Time) {
	g.Bankruptcy = BankruptcyNegotiation{
		Status:            BankruptcyActive,
		DebtorSessionID:   debtor.SessionID,
		CreditorSessionID: creditorID,
		AmountOwed:        amount,
		Reason:            reason,
		Deadline:          now.Add(BankruptcyWindow),
	}
	g.appendLog("%s owes %d and must raise it or go bankrupt", debtor.Name, amount)
}

// requireDebtor checks an active bankruptcy negotiation and that sessionID
// is the debtor. Only the debtor may act while the slot is open.
func (g *GameState) requireDebtor(sessionID string) (*Player, error) {
	if g.Bankruptcy.Status != BankruptcyActive {
		return nil, preconditionf("no bankruptcy negotiation is active")
	}
	if g.Bankruptcy.DebtorSessionID != sessionID {
		return nil, preconditionf("only the debtor may act right now")
	}
	return g.player(sessionID)
}

// BankruptcySellBuilding sells a house (or strips a hotel outright) while
// the debtor raises funds. Even-distribution still applies to houses.
func (g *GameState) BankruptcySellBuilding(sessionID string, idx int) error {
	p, err := g.requireDebtor(sessionID)
	if err != nil {
		return err
	}
	if idx >= 0 && idx < len(g.Board) && g.Board[idx].HasHotel {
		return g.sellHotel(p, idx, false)
	}
	return g.sellHouse(p, idx)
}

// BankruptcyMortgage mortgages a property while the debtor raises funds.
func (g *GameState) BankruptcyMortgage(sessionID string, idx int) error {
	p, err := g.requireDebtor(sessionID)
	if err != nil {
		return err
	}
	return g.mortgage(p, idx)
}

// PayDebt settles the negotiated debt once the debtor is solvent again.
func (g *GameState) PayDebt(sessionID string) error {
	p, err := g.requireDebtor(sessionID)
	if err != nil {
		return err
	}
	owed := g.Bankruptcy.AmountOwed
	if p.Coins < owed {
		return violationf("you still need %d more", owed-p.Coins)
	}
	p.Coins -= owed
	if cid := g.Bankruptcy.CreditorSessionID; cid != "" {
		if c, ok := g.Players[cid]; ok {
			c.Coins += owed
		}
	}
	if g.Bankruptcy.Reason == DebtJailFine {
		p.InJail = false
		p.JailTurnsRemaining = 0
		g.emit(StatJailEscaped, p.SessionID, owed)
	}
	g.Bankruptcy = BankruptcyNegotiation{}
	g.appendLog("%s paid the %d debt in full", p.Name, owed)
	g.afterLandingResolved()
	return nil
}

// DeclareBankruptcy gives up: assets pass to the creditor (or the bank)
// and the debtor is out.
func (g *GameState) DeclareBankruptcy(sessionID string) error {
	p, err := g.requireDebtor(sessionID)
	if err != nil {
		return err
	}
	creditor := g.Bankruptcy.CreditorSessionID
	g.Bankruptcy = BankruptcyNegotiation{}
	g.bankrupt(p, creditor)
	return nil
}

// ResolveBankruptcyDeadline forces bankruptcy once the deadline has
// passed. Returns true if it fired. Called by the room's deadline timer.
func (g *GameState) ResolveBankruptcyDeadline(now time.Time) bool {
	if g.Bankruptcy.Status != BankruptcyActive || now.Before(g.Bankruptcy.Deadline) {
		return false
	}
	debtor, ok := g.Players[g.Bankruptcy.DebtorSessionID]
	creditor := g.Bankruptcy.CreditorSessionID
	g.Bankruptcy = BankruptcyNegotiation{}
	if ok {
		g.appendLog("%s ran out of time to settle the debt", debtor.Name)
		g.bankrupt(debtor, creditor)
	}
	return true
}
