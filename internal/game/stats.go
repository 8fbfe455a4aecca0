package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk/engine"
	"github.com/boardwalk-games/boardwalk/internal/cache"
	"github.com/boardwalk-games/boardwalk/internal/database"
)

// statNames maps engine point events to lifetime counter names. Events
// without an entry are dropped.
var statNames = map[engine.StatEventType]string{
	engine.StatPropertyBought: "properties_bought",
	engine.StatBuildingBuilt:  "buildings_built",
	engine.StatRentCollected:  "rent_collected",
	engine.StatRentPaid:       "rent_paid",
	engine.StatTradeCompleted: "trades_completed",
	engine.StatAuctionWon:     "auctions_won",
	engine.StatJailEscaped:    "jail_escapes",
	engine.StatGameWon:        "games_won",
}

// forwardStats pushes drained engine point events to the profile store
// and the counter cache. Fire-and-forget: a slow or absent store never
// blocks the room. Assumes lock held.
func (r *Room) forwardStats(events []engine.StatEvent) {
	if len(events) == 0 {
		return
	}
	type statDelta struct {
		userID uuid.UUID
		stat   string
		delta  int
	}
	deltas := make([]statDelta, 0, len(events))
	for _, ev := range events {
		stat, ok := statNames[ev.Type]
		if !ok {
			continue
		}
		p, ok := r.State.Players[ev.SessionID]
		if !ok {
			continue
		}
		uid, err := uuid.Parse(p.UserID)
		if err != nil {
			continue
		}
		delta := ev.Amount
		if delta == 0 {
			delta = 1
		}
		deltas = append(deltas, statDelta{userID: uid, stat: stat, delta: delta})
	}
	if len(deltas) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, d := range deltas {
			if err := database.IncrementStat(ctx, d.userID, d.stat, d.delta); err != nil {
				logrus.WithError(err).WithField("stat", d.stat).Warn("failed persisting stat")
			}
			if err := cache.IncrPlayerCounter(ctx, d.userID.String(), d.stat, d.delta); err != nil {
				logrus.WithError(err).WithField("stat", d.stat).Warn("failed bumping counter")
			}
		}
	}()
}

// recordResult writes the end-of-match row and the winner's first-win
// achievement. Assumes lock held.
func (r *Room) recordResult(winnerSessionID string) {
	var winnerID uuid.UUID
	if p, ok := r.State.Players[winnerSessionID]; ok {
		if uid, err := uuid.Parse(p.UserID); err == nil {
			winnerID = uid
		}
	}
	participants := make([]uuid.UUID, 0, len(r.State.Players))
	for _, p := range r.State.Players {
		if uid, err := uuid.Parse(p.UserID); err == nil {
			participants = append(participants, uid)
		}
	}
	roomID := r.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.RecordGameResult(ctx, roomID, winnerID, participants); err != nil {
			logrus.WithError(err).WithField("room", roomID).Warn("failed recording game result")
			return
		}
		if winnerID != uuid.Nil {
			if err := database.UnlockAchievement(ctx, winnerID, "first_win"); err != nil {
				logrus.WithError(err).Warn("failed unlocking achievement")
			}
		}
	}()
}
