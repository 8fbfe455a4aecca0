// Package database holds the pgx pool for the cross-match profile store:
// display profiles, owned cosmetic pieces, lifetime stats and
// achievements. The store is a collaborator, not part of the rules
// engine; every write here is fire-and-forget from the room's point of
// view, and a nil DB disables persistence entirely.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk/internal/models"
)

// DB is the shared connection pool, set by Connect.
var DB *pgxpool.Pool

// Connect opens the pool and verifies the connection.
func Connect(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	DB = pool
	logrus.Info("connected to postgres")
	return nil
}

// GetProfile loads a user's cross-match profile, creating a default row
// on first sight.
func GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if DB == nil {
		return &models.Profile{UserID: userID}, nil
	}
	p := &models.Profile{UserID: userID}
	err := DB.QueryRow(ctx, `
		INSERT INTO profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING currency, owned_pieces, games_played, games_won`,
		userID,
	).Scan(&p.Currency, &p.OwnedPieces, &p.GamesPlayed, &p.GamesWon)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return p, nil
}

// IncrementStat bumps one lifetime counter column-free: stats live in a
// (user_id, stat) counter table.
func IncrementStat(ctx context.Context, userID uuid.UUID, stat string, delta int) error {
	if DB == nil {
		return nil
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO player_stats (user_id, stat, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, stat) DO UPDATE
		SET value = player_stats.value + EXCLUDED.value`,
		userID, stat, delta,
	)
	if err != nil {
		return fmt.Errorf("increment stat %s for %s: %w", stat, userID, err)
	}
	return nil
}

// UnlockAchievement records an achievement once; replays are no-ops.
func UnlockAchievement(ctx context.Context, userID uuid.UUID, achievement string) error {
	if DB == nil {
		return nil
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO achievements (user_id, achievement, unlocked_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, achievement) DO NOTHING`,
		userID, achievement,
	)
	if err != nil {
		return fmt.Errorf("unlock achievement %s for %s: %w", achievement, userID, err)
	}
	return nil
}

// RecordGameResult writes the end-of-match row and bumps the played/won
// aggregates on the winner's and participants' profiles.
func RecordGameResult(ctx context.Context, roomID uuid.UUID, winnerID uuid.UUID, participants []uuid.UUID) error {
	if DB == nil {
		return nil
	}
	_, err := DB.Exec(ctx, `
		INSERT INTO game_results (room_id, winner_id, participants, finished_at)
		VALUES ($1, $2, $3, NOW())`,
		roomID, winnerID, participants,
	)
	if err != nil {
		return fmt.Errorf("record game result %s: %w", roomID, err)
	}
	for _, uid := range participants {
		won := 0
		if uid == winnerID {
			won = 1
		}
		if _, err := DB.Exec(ctx, `
			UPDATE profiles
			SET games_played = games_played + 1, games_won = games_won + $2
			WHERE user_id = $1`, uid, won); err != nil {
			return fmt.Errorf("update aggregates for %s: %w", uid, err)
		}
	}
	return nil
}
