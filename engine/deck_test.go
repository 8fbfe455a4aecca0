package engine

import "testing"

// forceChance rigs the chance deck to a single known card.
func forceChance(g *GameState, card Card) {
	g.ChanceDeck = Deck{Cards: []Card{card}, Order: []int{0}}
}

// landOnChance walks the current player onto space 9 with a known roll.
func landOnChance(t *testing.T, g *GameState) {
	t.Helper()
	g.Players["s1"].Position = 4
	mustRoll(t, g, "s1", 2, 3)
}

func TestCardGain(t *testing.T) {
	g := startedGame(t, 2)
	forceChance(g, Card{Text: "windfall", Effect: EffectGain, Amount: 120})
	landOnChance(t, g)

	p := g.Players["s1"]
	if p.Coins != StartingCoins+120 {
		t.Errorf("expected coins %d, got %d", StartingCoins+120, p.Coins)
	}
	if g.Drawn == nil || g.Drawn.PlayerID != "s1" {
		t.Fatalf("expected a drawn-card prompt for s1, got %+v", g.Drawn)
	}
	if err := g.EndTurn("s1"); err == nil {
		t.Fatal("expected end turn to wait for the dismissal")
	}
	if err := g.DismissCard("s2"); err == nil {
		t.Fatal("expected only the recipient to dismiss")
	}
	if err := g.DismissCard("s1"); err != nil {
		t.Fatalf("DismissCard failed: %v", err)
	}
	if err := g.EndTurn("s1"); err != nil {
		t.Fatalf("EndTurn failed: %v", err)
	}
}

func TestCardPay(t *testing.T) {
	g := startedGame(t, 2)
	forceChance(g, Card{Text: "fine", Effect: EffectPay, Amount: 60})
	landOnChance(t, g)

	if got := g.Players["s1"].Coins; got != StartingCoins-60 {
		t.Errorf("expected coins %d, got %d", StartingCoins-60, got)
	}
}

func TestCardAdvanceToCollectsSalaryOnWrap(t *testing.T) {
	g := startedGame(t, 2)
	forceChance(g, Card{Text: "go home", Effect: EffectAdvanceTo, Target: StartIndex})
	landOnChance(t, g)

	p := g.Players["s1"]
	if p.Position != StartIndex {
		t.Errorf("expected position %d, got %d", StartIndex, p.Position)
	}
	if p.Coins != StartingCoins+Salary {
		t.Errorf("expected the wrap to pay the salary, coins %d", p.Coins)
	}
}

func TestCardGoToJail(t *testing.T) {
	g := startedGame(t, 2)
	forceChance(g, Card{Text: "busted", Effect: EffectGoToJail})
	landOnChance(t, g)

	p := g.Players["s1"]
	if !p.InJail || p.Position != JailIndex {
		t.Fatalf("expected jail, got jailed=%v position=%d", p.InJail, p.Position)
	}
	if p.Coins != StartingCoins {
		t.Errorf("expected no salary on the way to jail, coins %d", p.Coins)
	}
}

func TestCardJailFree(t *testing.T) {
	g := startedGame(t, 2)
	forceChance(g, Card{Text: "keep this", Effect: EffectJailFree})
	landOnChance(t, g)

	if got := g.Players["s1"].JailFreeCards; got != 1 {
		t.Errorf("expected one jail-free card, got %d", got)
	}
}

func TestCardRepairsBillsBuildings(t *testing.T) {
	g := startedGame(t, 2)
	g.setOwner(1, "s1")
	g.setOwner(2, "s1")
	g.Board[1].Houses = 2
	g.Board[2].HasHotel = true
	forceChance(g, Card{Text: "repairs", Effect: EffectRepairs, Amount: 25, HotelAmount: 100})
	landOnChance(t, g)

	bill := 2*25 + 100
	if got := g.Players["s1"].Coins; got != StartingCoins-bill {
		t.Errorf("expected repairs bill %d, coins %d", bill, got)
	}
}

func TestCardCollectEachCapsAtPayerCash(t *testing.T) {
	g := startedGame(t, 3)
	g.Players["s3"].Coins = 5
	forceChance(g, Card{Text: "birthday", Effect: EffectCollectEach, Amount: 20})
	landOnChance(t, g)

	if got := g.Players["s1"].Coins; got != StartingCoins+20+5 {
		t.Errorf("recipient: expected %d, got %d", StartingCoins+25, got)
	}
	if got := g.Players["s2"].Coins; got != StartingCoins-20 {
		t.Errorf("full payer: expected %d, got %d", StartingCoins-20, got)
	}
	if got := g.Players["s3"].Coins; got != 0 {
		t.Errorf("broke payer: expected 0, got %d", got)
	}
}

func TestDeckCyclesWithoutRunningOut(t *testing.T) {
	g := NewGame(7)
	seen := make(map[string]int)
	for i := 0; i < 25; i++ {
		c := g.ChanceDeck.Draw(g)
		if c.Text == "" {
			t.Fatalf("draw %d returned an empty card", i)
		}
		seen[c.Text]++
	}
	if len(seen) != 10 {
		t.Errorf("expected all 10 distinct cards across cycles, saw %d", len(seen))
	}
}

func TestSeedDeterminesShuffle(t *testing.T) {
	a, b := NewGame(99), NewGame(99)
	for i := 0; i < 10; i++ {
		ca, cb := a.ChanceDeck.Draw(a), b.ChanceDeck.Draw(b)
		if ca != cb {
			t.Fatalf("draw %d diverged: %q vs %q", i, ca.Text, cb.Text)
		}
	}
}
