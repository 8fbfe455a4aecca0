package engine

import "testing"

// auctionGame opens an auction for space 10 with three players.
func auctionGame(t *testing.T) *GameState {
	t.Helper()
	g := startedGame(t, 3)
	g.startAuction(10)
	return g
}

func TestAuctionNoBidsReturnsToBank(t *testing.T) {
	g := auctionGame(t)
	if err := g.PassAuction("s1"); err != nil {
		t.Fatalf("pass s1 failed: %v", err)
	}
	if err := g.PassAuction("s2"); err != nil {
		t.Fatalf("pass s2 failed: %v", err)
	}
	if g.Auction.Status != AuctionActive {
		t.Fatal("expected the auction to wait for the last player")
	}
	if err := g.PassAuction("s3"); err != nil {
		t.Fatalf("pass s3 failed: %v", err)
	}
	if g.Auction.Status != AuctionNone {
		t.Fatal("expected the auction closed")
	}
	if g.Board[10].OwnerID != "" {
		t.Errorf("expected the property to stay with the bank, got %q", g.Board[10].OwnerID)
	}
}

func TestAuctionWinnerPaysBid(t *testing.T) {
	g := auctionGame(t)
	if err := g.PlaceBid("s1", 50); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	if err := g.PlaceBid("s2", 60); err != nil {
		t.Fatalf("raise failed: %v", err)
	}
	if err := g.PassAuction("s1"); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if err := g.PassAuction("s3"); err != nil {
		t.Fatalf("pass failed: %v", err)
	}

	if g.Board[10].OwnerID != "s2" {
		t.Fatalf("expected s2 to win, got %q", g.Board[10].OwnerID)
	}
	if g.Players["s2"].Coins != StartingCoins-60 {
		t.Errorf("expected the winner charged 60, coins %d", g.Players["s2"].Coins)
	}
	if g.Auction.Status != AuctionNone {
		t.Error("expected the auction cleared")
	}

	won := false
	for _, ev := range g.DrainEvents() {
		if ev.Type == StatAuctionWon && ev.SessionID == "s2" && ev.Amount == 60 {
			won = true
		}
	}
	if !won {
		t.Error("expected an auction-won event")
	}
}

func TestBidValidation(t *testing.T) {
	g := auctionGame(t)
	if err := g.PlaceBid("s1", 0); err == nil {
		t.Error("expected a zero bid to be refused")
	}
	if err := g.PlaceBid("s1", 50); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	if err := g.PlaceBid("s2", 50); err == nil {
		t.Error("expected an equal bid to be refused")
	}
	if err := g.PlaceBid("s2", StartingCoins+1); err == nil {
		t.Error("expected an unaffordable bid to be refused")
	}
}

func TestLeaderCannotPass(t *testing.T) {
	g := auctionGame(t)
	if err := g.PlaceBid("s1", 10); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	if err := g.PassAuction("s1"); err == nil {
		t.Fatal("expected the highest bidder to be unable to pass")
	}
}

func TestPassedPlayerLockedOut(t *testing.T) {
	g := auctionGame(t)
	if err := g.PassAuction("s2"); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if err := g.PlaceBid("s2", 10); err == nil {
		t.Fatal("expected a passed player to stay out")
	}
	if err := g.PassAuction("s2"); err == nil {
		t.Fatal("expected a second pass to be refused")
	}
}

func TestAuctionBlocksNormalPlay(t *testing.T) {
	g := auctionGame(t)
	if g.ActiveNegotiation() != NegotiationAuction {
		t.Fatal("expected the auction to be the active negotiation")
	}
	if err := g.RollDice("s1", testNow); err == nil {
		t.Error("expected rolling to wait for the auction")
	}
	if err := g.EndTurn("s1"); err == nil {
		t.Error("expected end turn to wait for the auction")
	}
}

func TestLeaderEliminationClearsBid(t *testing.T) {
	g := auctionGame(t)
	if err := g.PlaceBid("s1", 50); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	g.Eliminate("s1")

	if g.Auction.Status != AuctionActive {
		t.Fatal("expected the auction to continue")
	}
	if g.Auction.CurrentBid != 0 || g.Auction.HighestBidderID != "" {
		t.Fatalf("expected the withdrawn bid cleared, got %+v", g.Auction)
	}

	if err := g.PassAuction("s2"); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if err := g.PassAuction("s3"); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if g.Auction.Status != AuctionNone || g.Board[10].OwnerID != "" {
		t.Errorf("expected a no-sale close, got %+v owner %q", g.Auction, g.Board[10].OwnerID)
	}
}

func TestNonLeaderEliminationCountsAsPass(t *testing.T) {
	g := auctionGame(t)
	if err := g.PlaceBid("s1", 50); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	g.Eliminate("s3")
	if err := g.PassAuction("s2"); err != nil {
		t.Fatalf("pass failed: %v", err)
	}

	if g.Board[10].OwnerID != "s1" {
		t.Fatalf("expected s1 to win after the field cleared, got %q", g.Board[10].OwnerID)
	}
}
