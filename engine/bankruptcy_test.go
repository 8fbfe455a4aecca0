package engine

import (
	"testing"
	"time"
)

// debtGame opens a 300 rent debt negotiation for s1, who holds 120 cash
// and two skyline properties worth enough to liquidate.
func debtGame(t *testing.T) *GameState {
	t.Helper()
	g := startedGame(t, 3)
	p := g.Players["s1"]
	p.Coins = 120
	g.setOwner(25, "s1")
	g.setOwner(26, "s1")
	if outcome := g.chargePlayer(p, 300, "s2", DebtRent, testNow); outcome != PaymentNegotiation {
		t.Fatalf("expected a negotiation, got outcome %d", outcome)
	}
	return g
}

func TestDebtorMortgagesAndPays(t *testing.T) {
	g := debtGame(t)
	if err := g.BankruptcyMortgage("s1", 25); err != nil {
		t.Fatalf("mortgage failed: %v", err)
	}
	if err := g.BankruptcyMortgage("s1", 26); err != nil {
		t.Fatalf("mortgage failed: %v", err)
	}
	p := g.Players["s1"]
	if p.Coins != 120+150+160 {
		t.Fatalf("expected 430 after mortgaging, got %d", p.Coins)
	}

	if err := g.PayDebt("s1"); err != nil {
		t.Fatalf("PayDebt failed: %v", err)
	}
	if p.Coins != 130 {
		t.Errorf("expected 130 left, got %d", p.Coins)
	}
	if g.Players["s2"].Coins != StartingCoins+300 {
		t.Errorf("expected the creditor paid, got %d", g.Players["s2"].Coins)
	}
	if g.Bankruptcy.Status != BankruptcyNone {
		t.Error("expected the negotiation closed")
	}
	if p.IsBankrupt {
		t.Error("expected s1 to survive")
	}
}

func TestPayDebtRequiresFullAmount(t *testing.T) {
	g := debtGame(t)
	if err := g.PayDebt("s1"); err == nil {
		t.Fatal("expected a short payment to be refused")
	}
	if g.Bankruptcy.Status != BankruptcyActive {
		t.Error("expected the negotiation to stay open")
	}
}

func TestOnlyDebtorActsDuringNegotiation(t *testing.T) {
	g := debtGame(t)
	if err := g.BankruptcyMortgage("s2", 25); err == nil {
		t.Error("expected a non-debtor liquidation to be refused")
	}
	if err := g.EndTurn("s1"); err == nil {
		t.Error("expected end turn to wait for the negotiation")
	}
	if err := g.ProposeTrade("s3", TradeTerms{ToSessionID: "s2", OfferedCoins: 10}); err == nil {
		t.Error("expected trading to wait for the negotiation")
	}
}

func TestBankruptcySellBuilding(t *testing.T) {
	g := debtGame(t)
	g.Board[25].Houses = 2
	g.Board[26].Houses = 2
	p := g.Players["s1"]
	before := p.Coins

	if err := g.BankruptcySellBuilding("s1", 25); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if g.Board[25].Houses != 1 {
		t.Errorf("expected one house left, got %d", g.Board[25].Houses)
	}
	if p.Coins != before+HouseCost("skyline")/2 {
		t.Errorf("expected payout %d, got %d", HouseCost("skyline")/2, p.Coins-before)
	}
}

func TestBankruptcySellBuildingStripsHotel(t *testing.T) {
	g := debtGame(t)
	g.Board[25].HasHotel = true
	p := g.Players["s1"]
	before := p.Coins

	if err := g.BankruptcySellBuilding("s1", 25); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if g.Board[25].HasHotel || g.Board[25].Houses != 0 {
		t.Fatalf("expected the hotel fully stripped, got %+v", g.Board[25])
	}
	want := (HotelCost("skyline") + MaxHouses*HouseCost("skyline")) / 2
	if p.Coins != before+want {
		t.Errorf("expected payout %d, got %d", want, p.Coins-before)
	}
}

func TestDeclareBankruptcy(t *testing.T) {
	g := debtGame(t)
	if err := g.DeclareBankruptcy("s1"); err != nil {
		t.Fatalf("DeclareBankruptcy failed: %v", err)
	}
	p := g.Players["s1"]
	if !p.IsBankrupt || p.Coins != 0 {
		t.Fatalf("expected s1 out and emptied, got %+v", p)
	}
	if g.Players["s2"].Coins != StartingCoins+120 {
		t.Errorf("expected the creditor to take the cash, got %d", g.Players["s2"].Coins)
	}
	if g.Board[25].OwnerID != "s2" || g.Board[26].OwnerID != "s2" {
		t.Error("expected the creditor to take the properties")
	}
	if g.Bankruptcy.Status != BankruptcyNone {
		t.Error("expected the negotiation closed")
	}
	if g.Phase != PhasePlaying {
		t.Errorf("expected play to continue with two players, got %v", g.Phase)
	}
}

func TestDeadlineForcesBankruptcy(t *testing.T) {
	g := debtGame(t)
	if g.ResolveBankruptcyDeadline(testNow.Add(BankruptcyWindow - time.Second)) {
		t.Fatal("expected the deadline not to fire early")
	}
	if !g.ResolveBankruptcyDeadline(testNow.Add(BankruptcyWindow)) {
		t.Fatal("expected the deadline to fire")
	}
	if !g.Players["s1"].IsBankrupt {
		t.Error("expected the debtor forced into bankruptcy")
	}
	if g.ResolveBankruptcyDeadline(testNow.Add(time.Hour)) {
		t.Error("expected a spent deadline to be inert")
	}
}

func TestCreditorEliminationRevertsDebtToBank(t *testing.T) {
	g := debtGame(t)
	g.Eliminate("s2")
	if g.Bankruptcy.Status != BankruptcyActive {
		t.Fatal("expected the negotiation to stay open for the debtor")
	}
	if g.Bankruptcy.CreditorSessionID != "" {
		t.Fatalf("expected the debt owed to the bank, got creditor %q", g.Bankruptcy.CreditorSessionID)
	}

	if !g.ResolveBankruptcyDeadline(testNow.Add(BankruptcyWindow)) {
		t.Fatal("expected the deadline to fire")
	}
	if g.Board[25].OwnerID != "" || g.Board[26].OwnerID != "" {
		t.Errorf("expected the properties back with the bank, got %q and %q",
			g.Board[25].OwnerID, g.Board[26].OwnerID)
	}
	if g.Players["s2"].Coins != 0 {
		t.Errorf("expected nothing paid to the eliminated creditor, got %d", g.Players["s2"].Coins)
	}
	if g.Phase != PhaseFinished || g.WinnerID != "s3" {
		t.Errorf("expected s3 left standing, got phase %v winner %q", g.Phase, g.WinnerID)
	}
}

func TestPayDebtAfterCreditorLeft(t *testing.T) {
	g := debtGame(t)
	g.Eliminate("s2")
	if err := g.BankruptcyMortgage("s1", 25); err != nil {
		t.Fatalf("mortgage failed: %v", err)
	}
	if err := g.BankruptcyMortgage("s1", 26); err != nil {
		t.Fatalf("mortgage failed: %v", err)
	}
	if err := g.PayDebt("s1"); err != nil {
		t.Fatalf("PayDebt failed: %v", err)
	}
	if g.Players["s1"].Coins != 130 {
		t.Errorf("expected 130 left after paying the bank, got %d", g.Players["s1"].Coins)
	}
	if g.Players["s2"].Coins != 0 {
		t.Errorf("expected the eliminated creditor untouched, got %d", g.Players["s2"].Coins)
	}
	if g.Bankruptcy.Status != BankruptcyNone {
		t.Error("expected the negotiation closed")
	}
}

func TestJailFineDebtReleasesOnPayment(t *testing.T) {
	g := startedGame(t, 2)
	p := g.Players["s1"]
	p.InJail = true
	p.JailTurnsRemaining = 1
	p.Position = JailIndex
	p.Coins = 20
	g.setOwner(25, "s1")

	mustRoll(t, g, "s1", 1, 2)
	if g.Bankruptcy.Status != BankruptcyActive || g.Bankruptcy.Reason != DebtJailFine {
		t.Fatalf("expected a jail-fine negotiation, got %+v", g.Bankruptcy)
	}
	if !p.InJail {
		t.Fatal("expected the debtor to stay jailed while the fine is unpaid")
	}

	if err := g.BankruptcyMortgage("s1", 25); err != nil {
		t.Fatalf("mortgage failed: %v", err)
	}
	if err := g.PayDebt("s1"); err != nil {
		t.Fatalf("PayDebt failed: %v", err)
	}
	if p.InJail {
		t.Error("expected the paid fine to release from jail")
	}
	if p.Position != JailIndex {
		t.Errorf("expected the forfeited move to leave position at %d, got %d", JailIndex, p.Position)
	}
	if g.Bankruptcy.Status != BankruptcyNone {
		t.Error("expected the negotiation closed")
	}
}
