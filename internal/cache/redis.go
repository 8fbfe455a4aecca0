// Package cache wraps the Redis client used for the action historian and
// lifetime player counters. All calls are optional: when Rdb is nil the
// rest of the server runs without history.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client, set by InitRedis.
var Rdb *redis.Client

// InitRedis connects the shared client and verifies the connection.
func InitRedis(ctx context.Context, addr, password string) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	Rdb = client
	logrus.WithField("addr", addr).Info("connected to redis")
	return nil
}

// GameActionRecord is one historian entry: a single validated action (or
// internal timer event) applied to a room, in order.
type GameActionRecord struct {
	RoomID        string                 `json:"roomId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   string                 `json:"actorUserId"`
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload,omitempty"`
	Timestamp     int64                  `json:"timestamp"`
}

// historyKey is the per-room list the historian drains.
func historyKey(roomID string) string {
	return fmt.Sprintf("room:%s:actions", roomID)
}

// PublishGameAction appends an action record to the room's history list.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	return Rdb.RPush(ctx, historyKey(rec.RoomID), data).Err()
}

// IncrPlayerCounter bumps a lifetime counter on the player's stats hash.
func IncrPlayerCounter(ctx context.Context, userID, counter string, delta int) error {
	if Rdb == nil {
		return nil
	}
	key := fmt.Sprintf("player:%s:counters", userID)
	return Rdb.HIncrBy(ctx, key, counter, int64(delta)).Err()
}
