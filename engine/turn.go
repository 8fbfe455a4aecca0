package engine

import "time"

// Start moves the match from lobby to playing. Host only, two players
// minimum. The first joiner takes the first turn.
func (g *GameState) Start(sessionID string) error {
	if g.Phase != PhaseLobby {
		return preconditionf("game already started")
	}
	p, ok := g.Players[sessionID]
	if !ok || !p.IsHost {
		return preconditionf("only the host can start the game")
	}
	if len(g.ActivePlayers()) < 2 {
		return preconditionf("at least two players are required")
	}
	g.Phase = PhasePlaying
	g.CurrentPlayerIndex = 0
	g.TurnCount = 1
	g.appendLog("the game has started")
	g.startTurn()
	return nil
}

// startTurn opens a fresh turn window for the current player.
func (g *GameState) startTurn() {
	g.TurnExtensionUsed = false
	if cur := g.CurrentPlayer(); cur != nil {
		g.appendLog("it's %s's turn", cur.Name)
	}
}

// ---------------------------------------------------------------------------
// Rolling
// ---------------------------------------------------------------------------

// RollDice rolls for the current player and resolves the resulting
// movement and landing. now stamps any bankruptcy deadline the landing
// might open.
func (g *GameState) RollDice(sessionID string, now time.Time) error {
	p, err := g.requireTurn(sessionID)
	if err != nil {
		return err
	}
	if g.ActiveNegotiation() != NegotiationNone {
		return preconditionf("a negotiation is in progress")
	}
	if g.AwaitingBuy {
		return preconditionf("resolve the pending purchase first")
	}
	if g.Drawn != nil {
		return preconditionf("dismiss the drawn card first")
	}
	if g.HasRolled {
		return preconditionf("you have already rolled")
	}
	return g.applyRoll(p, g.rollDie(), g.rollDie(), now)
}

// applyRoll runs the movement rules for a concrete dice pair. Split from
// RollDice so tests can drive exact rolls.
func (g *GameState) applyRoll(p *Player, d1, d2 int, now time.Time) error {
	g.Dice1, g.Dice2 = d1, d2
	g.HasRolled = true
	g.appendLog("%s rolled %d and %d", p.Name, d1, d2)

	if p.InJail {
		g.resolveJailRoll(p, d1, d2, now)
		return nil
	}

	if d1 == d2 {
		p.DoublesCount++
		if p.DoublesCount >= MaxDoubles {
			g.appendLog("%s rolled three doubles", p.Name)
			g.sendToJail(p)
			return nil
		}
	}

	g.movePlayer(p, d1+d2)
	g.resolveLanding(p, now)
	g.afterLandingResolved()
	return nil
}

// resolveJailRoll handles a roll made from jail: doubles release and move,
// the third failed attempt forces the fine through the normal solvency
// path.
func (g *GameState) resolveJailRoll(p *Player, d1, d2 int, now time.Time) {
	if d1 == d2 {
		p.InJail = false
		p.JailTurnsRemaining = 0
		g.appendLog("%s rolled doubles and left jail", p.Name)
		g.emit(StatJailEscaped, p.SessionID, 0)
		g.movePlayer(p, d1+d2)
		g.resolveLanding(p, now)
		g.afterLandingResolved()
		return
	}

	p.JailTurnsRemaining--
	if p.JailTurnsRemaining > 0 {
		g.appendLog("%s stays in jail (%d attempts left)", p.Name, p.JailTurnsRemaining)
		return
	}

	// Third failed attempt: the fine is due now.
	g.appendLog("%s must pay the %d jail fine", p.Name, JailFine)
	if g.chargePlayer(p, JailFine, "", DebtJailFine, now) == PaymentPaid {
		p.InJail = false
		g.appendLog("%s paid the fine and left jail", p.Name)
		g.movePlayer(p, d1+d2)
		g.resolveLanding(p, now)
		g.afterLandingResolved()
	}
	// On PaymentNegotiation the player stays jailed until the debt
	// resolves; on PaymentBankrupted they are already out of the game.
}

// afterLandingResolved runs whenever a landing flow finishes (directly, or
// after a buy prompt, card dismissal, auction or bankruptcy wraps up). If
// the roll was doubles and nothing blocks, the player earns a re-roll.
func (g *GameState) afterLandingResolved() {
	if g.Phase != PhasePlaying || !g.HasRolled || g.AwaitingBuy || g.Drawn != nil {
		return
	}
	if g.ActiveNegotiation() != NegotiationNone {
		return
	}
	p := g.CurrentPlayer()
	if p == nil || p.InJail {
		return
	}
	if g.Dice1 == g.Dice2 && p.DoublesCount > 0 && p.DoublesCount < MaxDoubles {
		g.HasRolled = false
		g.appendLog("%s rolled doubles and rolls again", p.Name)
	}
}

// ---------------------------------------------------------------------------
// Jail actions
// ---------------------------------------------------------------------------

// PayJailFine buys out of jail before rolling.
func (g *GameState) PayJailFine(sessionID string) error {
	p, err := g.requireTurn(sessionID)
	if err != nil {
		return err
	}
	if !p.InJail {
		return preconditionf("you are not in jail")
	}
	if g.HasRolled {
		return preconditionf("pay the fine before rolling")
	}
	if p.Coins < JailFine {
		return violationf("cannot afford the %d fine", JailFine)
	}
	p.Coins -= JailFine
	p.InJail = false
	p.JailTurnsRemaining = 0
	g.appendLog("%s paid %d and left jail", p.Name, JailFine)
	g.emit(StatJailEscaped, sessionID, JailFine)
	return nil
}

// UseJailCard spends a get-out-of-jail card before rolling.
func (g *GameState) UseJailCard(sessionID string) error {
	p, err := g.requireTurn(sessionID)
	if err != nil {
		return err
	}
	if !p.InJail {
		return preconditionf("you are not in jail")
	}
	if g.HasRolled {
		return preconditionf("use the card before rolling")
	}
	if p.JailFreeCards == 0 {
		return violationf("no get-out-of-jail card to use")
	}
	p.JailFreeCards--
	p.InJail = false
	p.JailTurnsRemaining = 0
	g.appendLog("%s used a get-out-of-jail card", p.Name)
	g.emit(StatJailEscaped, sessionID, 0)
	return nil
}

// ---------------------------------------------------------------------------
// Ending a turn
// ---------------------------------------------------------------------------

// EndTurn finishes the current player's turn once everything is resolved.
func (g *GameState) EndTurn(sessionID string) error {
	if _, err := g.requireTurn(sessionID); err != nil {
		return err
	}
	if !g.HasRolled {
		return preconditionf("roll before ending your turn")
	}
	if g.AwaitingBuy {
		return preconditionf("resolve the pending purchase first")
	}
	if g.Drawn != nil {
		return preconditionf("dismiss the drawn card first")
	}
	if g.ActiveNegotiation() != NegotiationNone {
		return preconditionf("a negotiation is in progress")
	}
	g.endTurn()
	return nil
}

// ForceEndTurn terminates the turn on timer expiry: prompts are cleared,
// the doubles streak is wiped, and play advances as a normal end-turn.
func (g *GameState) ForceEndTurn() {
	if g.Phase != PhasePlaying {
		return
	}
	if cur := g.CurrentPlayer(); cur != nil {
		g.appendLog("%s ran out of time", cur.Name)
		cur.DoublesCount = 0
	}
	g.AwaitingBuy = false
	g.Drawn = nil
	if g.Trade.Status == TradePending {
		g.Trade = TradeOffer{}
	}
	g.HasRolled = true
	g.endTurn()
}

// endTurn rotates to the next active player and re-checks the game-over
// conditions.
func (g *GameState) endTurn() {
	if cur := g.CurrentPlayer(); cur != nil {
		cur.DoublesCount = 0
	}
	g.HasRolled = false
	g.AwaitingBuy = false
	g.Drawn = nil
	g.Dice1, g.Dice2 = 0, 0
	g.TurnCount++

	g.checkGameOver()
	if g.Phase != PhasePlaying {
		return
	}
	active := g.ActivePlayers()
	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(active)
	g.startTurn()
}

// checkGameOver finishes the match when one player remains or the turn cap
// is hit; the cap tiebreak goes to the wealthiest player.
func (g *GameState) checkGameOver() {
	if g.Phase != PhasePlaying {
		return
	}
	active := g.ActivePlayers()
	if len(active) <= 1 {
		g.Phase = PhaseFinished
		if len(active) == 1 {
			g.WinnerID = active[0].SessionID
			g.appendLog("%s wins the game", active[0].Name)
			g.emit(StatGameWon, g.WinnerID, 0)
		} else {
			g.appendLog("the game is over")
		}
		return
	}
	if g.TurnCount > MaxGameTurns {
		g.Phase = PhaseFinished
		best := active[0]
		for _, p := range active[1:] {
			if g.Wealth(p) > g.Wealth(best) {
				best = p
			}
		}
		g.WinnerID = best.SessionID
		g.appendLog("turn limit reached; %s wins with %d total wealth", best.Name, g.Wealth(best))
		g.emit(StatGameWon, g.WinnerID, 0)
	}
}

// Eliminate removes a player mid-match, for example on disconnect. Their
// properties revert to the bank with buildings stripped; any negotiation
// or prompt that referenced them is cleared.
func (g *GameState) Eliminate(sessionID string) {
	p, ok := g.Players[sessionID]
	if !ok || g.Phase != PhasePlaying || p.IsBankrupt || !p.IsActive {
		return
	}
	cur := g.CurrentPlayer()
	wasCurrent := cur != nil && cur.SessionID == sessionID
	p.IsActive = false
	g.appendLog("%s left the game", p.Name)
	g.bankrupt(p, "")
	if wasCurrent && g.Phase == PhasePlaying {
		g.HasRolled = false
		g.AwaitingBuy = false
		g.Drawn = nil
		g.Dice1, g.Dice2 = 0, 0
		g.startTurn()
	}
}
