// internal/playground/playground.go
package playground

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/koren13n/dice-be/internal/game"
	"github.com/koren13n/dice-be/internal/history"
	"github.com/koren13n/dice-be/internal/models"
)

// ErrGameNotFound is returned when a room code is unknown or its session has
// been evicted.
var ErrGameNotFound = errors.New("game not found")

// codeSpace is the number of distinct room codes (4 decimal digits).
const codeSpace = 10000

// Playground is the process-wide registry of live game managers, keyed by
// room code. Lookups take a read lock so sessions never contend with each
// other; the write lock is held only for the brief create/evict window.
type Playground struct {
	mu    sync.RWMutex
	games map[string]*entry

	log *logrus.Logger
	rec *history.Recorder
}

type entry struct {
	manager *game.Manager
	cancel  context.CancelFunc
}

// New creates an empty registry. rec may be nil when history is disabled.
func New(logger *logrus.Logger, rec *history.Recorder) *Playground {
	return &Playground{
		games: make(map[string]*entry),
		log:   logger,
		rec:   rec,
	}
}

// CreateGame allocates a fresh unique room code, spins up a lobby-phase
// manager for it, and returns the code.
func (pg *Playground) CreateGame(rules models.GameRules) (string, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if len(pg.games) >= codeSpace {
		return "", fmt.Errorf("room code space exhausted (%d active games)", len(pg.games))
	}

	code := fmt.Sprintf("%04d", rand.Intn(codeSpace))
	for {
		if _, taken := pg.games[code]; !taken {
			break
		}
		code = fmt.Sprintf("%04d", rand.Intn(codeSpace))
	}

	m := game.NewManager(code, rules, pg.log, pg.rec)
	ctx, cancel := context.WithCancel(context.Background())
	pg.games[code] = &entry{manager: m, cancel: cancel}
	go m.Run(ctx)

	pg.log.Infof("created game %s (initial dice %d, paso %v, exact %v)",
		code, rules.InitialDiceCount, rules.PasoAllowed, rules.ExactAllowed)
	return code, nil
}

// GetGame looks up an active session by room code.
func (pg *Playground) GetGame(code string) (*game.Manager, error) {
	pg.mu.RLock()
	defer pg.mu.RUnlock()
	e, ok := pg.games[code]
	if !ok {
		return nil, ErrGameNotFound
	}
	return e.manager, nil
}

// Evict tears down one session: its manager goroutine stops and the code is
// freed for reuse.
func (pg *Playground) Evict(code string) {
	pg.mu.Lock()
	e, ok := pg.games[code]
	if ok {
		delete(pg.games, code)
	}
	pg.mu.Unlock()

	if ok {
		e.cancel()
		pg.log.Infof("evicted game %s", code)
	}
}

// Len reports the number of active sessions.
func (pg *Playground) Len() int {
	pg.mu.RLock()
	defer pg.mu.RUnlock()
	return len(pg.games)
}

// StartJanitor sweeps the registry on the given interval, evicting finished
// sessions and sessions idle longer than ttl (abandoned lobbies, games whose
// players all went away). Stops when ctx is canceled.
func (pg *Playground) StartJanitor(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pg.sweep(ttl)
			}
		}
	}()
}

func (pg *Playground) sweep(ttl time.Duration) {
	pg.mu.RLock()
	stale := make([]string, 0)
	for code, e := range pg.games {
		if e.manager.Finished() || e.manager.IdleFor() > ttl {
			stale = append(stale, code)
		}
	}
	pg.mu.RUnlock()

	for _, code := range stale {
		pg.Evict(code)
	}
}
