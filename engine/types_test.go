package engine

import (
	"fmt"
	"testing"
	"time"
)

// testNow stamps deadlines in tests that thread a clock into the engine.
var testNow = time.Unix(1_700_000_000, 0)

// newLobby creates a lobby with n joined players s1..sn; s1 is host.
func newLobby(t *testing.T, n int) *GameState {
	t.Helper()
	g := NewGame(42)
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	for i := 0; i < n; i++ {
		sid := fmt.Sprintf("s%d", i+1)
		uid := fmt.Sprintf("00000000-0000-0000-0000-00000000000%d", i+1)
		if err := g.AddPlayer(sid, uid, names[i], "classic_hat"); err != nil {
			t.Fatalf("AddPlayer(%s) failed: %v", sid, err)
		}
	}
	return g
}

// startedGame creates a running game with n players; s1 has the turn.
func startedGame(t *testing.T, n int) *GameState {
	t.Helper()
	g := newLobby(t, n)
	if err := g.Start("s1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return g
}

// mustRoll drives an exact dice pair for the current player.
func mustRoll(t *testing.T, g *GameState, sessionID string, d1, d2 int) {
	t.Helper()
	p, ok := g.Players[sessionID]
	if !ok {
		t.Fatalf("unknown player %s", sessionID)
	}
	if err := g.applyRoll(p, d1, d2, testNow); err != nil {
		t.Fatalf("roll (%d,%d) for %s failed: %v", d1, d2, sessionID, err)
	}
}

func TestFirstJoinerIsHost(t *testing.T) {
	g := newLobby(t, 3)
	if !g.Players["s1"].IsHost {
		t.Error("expected s1 to be host")
	}
	if g.Players["s2"].IsHost || g.Players["s3"].IsHost {
		t.Error("expected a single host")
	}
	if g.Players["s1"].Coins != StartingCoins {
		t.Errorf("expected starting coins %d, got %d", StartingCoins, g.Players["s1"].Coins)
	}
}

func TestDuplicateJoinRefused(t *testing.T) {
	g := newLobby(t, 1)
	if err := g.AddPlayer("s1", "u", "again", "classic_hat"); err == nil {
		t.Fatal("expected duplicate join to fail")
	}
}

func TestJoinAfterStartRefused(t *testing.T) {
	g := startedGame(t, 2)
	if err := g.AddPlayer("s9", "u9", "late", "classic_hat"); err == nil {
		t.Fatal("expected join after start to fail")
	}
}

func TestRemovePlayerPromotesHost(t *testing.T) {
	g := newLobby(t, 3)
	g.RemovePlayer("s1")
	if _, ok := g.Players["s1"]; ok {
		t.Fatal("expected s1 removed")
	}
	host := g.Host()
	if host == nil || host.SessionID != "s2" {
		t.Fatalf("expected s2 promoted to host, got %+v", host)
	}
}

func TestActivePlayersFollowJoinOrder(t *testing.T) {
	g := newLobby(t, 4)
	active := g.ActivePlayers()
	for i, want := range []string{"s1", "s2", "s3", "s4"} {
		if active[i].SessionID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, active[i].SessionID)
		}
	}
}

func TestStartRequiresHost(t *testing.T) {
	g := newLobby(t, 2)
	if err := g.Start("s2"); err == nil {
		t.Fatal("expected non-host start to fail")
	}
	if err := g.Start("s1"); err != nil {
		t.Fatalf("host start failed: %v", err)
	}
	if g.Phase != PhasePlaying || g.TurnCount != 1 {
		t.Fatalf("expected playing phase at turn 1, got %v turn %d", g.Phase, g.TurnCount)
	}
	if cur := g.CurrentPlayer(); cur == nil || cur.SessionID != "s1" {
		t.Fatalf("expected s1 to move first, got %+v", cur)
	}
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	g := newLobby(t, 1)
	if err := g.Start("s1"); err == nil {
		t.Fatal("expected single-player start to fail")
	}
}

func TestSetOwnerKeepsViewsInSync(t *testing.T) {
	g := startedGame(t, 2)
	g.setOwner(1, "s1")
	g.setOwner(2, "s1")
	g.setOwner(1, "s2")

	if g.Board[1].OwnerID != "s2" {
		t.Errorf("expected space 1 owned by s2, got %q", g.Board[1].OwnerID)
	}
	p1 := g.Players["s1"]
	if len(p1.OwnedProperties) != 1 || p1.OwnedProperties[0] != 2 {
		t.Errorf("expected s1 to own only space 2, got %v", p1.OwnedProperties)
	}
	p2 := g.Players["s2"]
	if len(p2.OwnedProperties) != 1 || p2.OwnedProperties[0] != 1 {
		t.Errorf("expected s2 to own only space 1, got %v", p2.OwnedProperties)
	}

	g.setOwner(1, "")
	if g.Board[1].OwnerID != "" || len(p2.OwnedProperties) != 0 {
		t.Error("expected space 1 reverted to the bank")
	}
}

func TestResetToLobby(t *testing.T) {
	g := startedGame(t, 2)
	g.setOwner(5, "s1")
	g.Players["s1"].Coins = 42
	g.Eliminate("s2")
	if g.Phase != PhaseFinished {
		t.Fatalf("expected finished phase, got %v", g.Phase)
	}

	if err := g.ResetToLobby(); err != nil {
		t.Fatalf("ResetToLobby failed: %v", err)
	}
	if g.Phase != PhaseLobby {
		t.Fatalf("expected lobby phase, got %v", g.Phase)
	}
	if g.Board[5].OwnerID != "" {
		t.Error("expected a fresh board")
	}
	for sid, p := range g.Players {
		if p.Coins != StartingCoins || p.IsBankrupt || !p.IsActive || len(p.OwnedProperties) != 0 {
			t.Errorf("player %s not reset: %+v", sid, p)
		}
	}
	if !g.Players["s1"].IsHost {
		t.Error("expected host to survive the reset")
	}
	if g.WinnerID != "" || g.TurnCount != 0 {
		t.Errorf("expected cleared result, got winner %q turn %d", g.WinnerID, g.TurnCount)
	}
}

func TestResetToLobbyOnlyWhenFinished(t *testing.T) {
	g := startedGame(t, 2)
	if err := g.ResetToLobby(); err == nil {
		t.Fatal("expected reset of a running game to fail")
	}
}
