// internal/history/redis.go
package history

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list that round and game records are pushed
// onto for the out-of-band replay/stats worker.
const DefaultQueueName = "dice_rounds"

// Record is one entry in the history queue: either a resolved round
// (kind "round_end") or a finished game (kind "game_end").
type Record struct {
	Kind           string    `json:"kind"`
	Code           string    `json:"code"`
	Winner         uuid.UUID `json:"winner"`
	Loser          uuid.UUID `json:"loser,omitempty"`
	AccusationType string    `json:"accusation_type,omitempty"`
	DiceValue      int       `json:"dice_value,omitempty"`
	DiceCount      int       `json:"dice_count,omitempty"`
	ActualCount    int       `json:"actual_count,omitempty"`
	JokerCount     int       `json:"joker_count,omitempty"`
	Timestamp      int64     `json:"timestamp"`
}

// Recorder publishes records to Redis. A nil Recorder silently discards,
// so game code never has to branch on whether history is configured.
type Recorder struct {
	rdb   *redis.Client
	queue string
	log   *logrus.Logger
}

// Connect builds a Recorder from REDIS_ADDR/REDIS_DB/HISTORY_QUEUE_NAME.
// It returns nil (history disabled) when REDIS_ADDR is unset, and an error
// only when an address is configured but unreachable.
func Connect(ctx context.Context, logger *logrus.Logger) (*Recorder, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil, nil
	}

	db := 0
	if s := os.Getenv("REDIS_DB"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			db = v
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}

	queue := os.Getenv("HISTORY_QUEUE_NAME")
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Recorder{rdb: rdb, queue: queue, log: logger}, nil
}

// Publish pushes a record onto the queue without blocking the caller's
// game loop: the network send happens on its own goroutine.
func (r *Recorder) Publish(rec Record) {
	if r == nil || r.rdb == nil {
		return
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().Unix()
	}
	go func() {
		data, err := json.Marshal(rec)
		if err != nil {
			r.log.Warnf("history: failed to marshal record for room %s: %v", rec.Code, err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.rdb.RPush(ctx, r.queue, data).Err(); err != nil {
			r.log.Warnf("history: failed to push record for room %s: %v", rec.Code, err)
		}
	}()
}
