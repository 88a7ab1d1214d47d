// internal/game/manager.go
package game

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/koren13n/dice-be/internal/dice"
	"github.com/koren13n/dice-be/internal/history"
	"github.com/koren13n/dice-be/internal/models"
)

// Manager drives one session. Every mutation — joins, leaves, ready-ups,
// accusations — flows through a single command channel consumed by Run on
// its own goroutine, so round resolution and ring relinking are atomic to
// observers. Connection read loops produce into the channel; nothing else
// touches the Session.
type Manager struct {
	Code string

	session *Session
	conns   map[uuid.UUID]*Outbox
	inbound chan command

	log *logrus.Entry
	rec *history.Recorder

	finished   atomic.Bool
	lastActive atomic.Int64
}

type cmdKind int

const (
	cmdJoin cmdKind = iota
	cmdDetach
	cmdEvent
	cmdSnapshot
)

// command is one staged mutation or query, applied in arrival order.
type command struct {
	kind     cmdKind
	playerID uuid.UUID
	user     *models.User
	ev       Event
	out      *Outbox
	reply    chan error
	view     chan GameUpdate
}

// NewManager builds a lobby-phase manager for a freshly allocated room code.
// Run must be started before any Connect/Deliver call.
func NewManager(code string, rules models.GameRules, logger *logrus.Logger, rec *history.Recorder) *Manager {
	m := &Manager{
		Code:    code,
		session: NewSession(code, rules),
		conns:   make(map[uuid.UUID]*Outbox),
		inbound: make(chan command, 64),
		log:     logger.WithField("room", code),
		rec:     rec,
	}
	m.touch()
	return m
}

// Run consumes the command queue until ctx is canceled. On exit every
// connection's outbox is closed so write pumps terminate.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for id, out := range m.conns {
				out.close()
				delete(m.conns, id)
			}
			return
		case cmd := <-m.inbound:
			m.touch()
			m.dispatch(cmd)
		}
	}
}

func (m *Manager) dispatch(cmd command) {
	switch cmd.kind {
	case cmdJoin:
		cmd.reply <- m.handleJoin(cmd.user, cmd.out)
	case cmdDetach:
		m.handleDetach(cmd.playerID)
	case cmdEvent:
		m.handleEvent(cmd.playerID, cmd.ev)
	case cmdSnapshot:
		cmd.view <- m.buildGameUpdate()
	}
}

func (m *Manager) touch() {
	m.lastActive.Store(time.Now().UnixNano())
}

// Finished reports whether the session reached its terminal state.
func (m *Manager) Finished() bool {
	return m.finished.Load()
}

// IdleFor reports how long ago the manager last processed a command; the
// registry's janitor uses it to evict abandoned rooms.
func (m *Manager) IdleFor() time.Duration {
	return time.Since(time.Unix(0, m.lastActive.Load()))
}

func (m *Manager) enqueue(ctx context.Context, cmd command) error {
	select {
	case m.inbound <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect registers a user's live connection and returns its outbox. In the
// lobby an unknown user is seated; once the game has started only seated
// players may (re)connect.
func (m *Manager) Connect(ctx context.Context, user *models.User) (*Outbox, error) {
	out := NewOutbox(DefaultOutboxSize)
	reply := make(chan error, 1)
	cmd := command{kind: cmdJoin, user: user, out: out, reply: reply}
	if err := m.enqueue(ctx, cmd); err != nil {
		return nil, err
	}
	select {
	case err := <-reply:
		if err != nil {
			return nil, err
		}
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Disconnect drops a player's connection mapping. The seat survives during a
// game so the player can reconnect; a lobby player is unseated entirely.
func (m *Manager) Disconnect(playerID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.enqueue(ctx, command{kind: cmdDetach, playerID: playerID})
}

// Deliver queues one decoded inbound event for sequential processing.
func (m *Manager) Deliver(ctx context.Context, playerID uuid.UUID, ev Event) error {
	return m.enqueue(ctx, command{kind: cmdEvent, playerID: playerID, ev: ev})
}

// Snapshot returns the narrowed session view (progression, rules, players
// without dice) through the command queue, so it never observes a torn state.
func (m *Manager) Snapshot(ctx context.Context) (GameUpdate, error) {
	view := make(chan GameUpdate, 1)
	if err := m.enqueue(ctx, command{kind: cmdSnapshot, view: view}); err != nil {
		return GameUpdate{}, err
	}
	select {
	case v := <-view:
		return v, nil
	case <-ctx.Done():
		return GameUpdate{}, ctx.Err()
	}
}

// HasPlayer reports whether the user currently holds a seat in the session.
func (m *Manager) HasPlayer(ctx context.Context, userID uuid.UUID) (bool, error) {
	view, err := m.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range view.Players {
		if p.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

// --- join / detach ---

func (m *Manager) handleJoin(user *models.User, out *Outbox) error {
	if p := m.session.Player(user.ID); p != nil {
		// Reconnect: replace any stale connection and resync the client.
		if old, ok := m.conns[user.ID]; ok {
			old.close()
		}
		m.conns[user.ID] = out
		m.log.Infof("player %s (%s) reconnected", user.ID, p.Name)
		m.resync(p)
		return nil
	}

	if m.session.Progression != Lobby {
		return ErrGameInProgress
	}

	m.session.AddPlayer(user)
	m.conns[user.ID] = out
	m.log.Infof("player %s (%s) joined the lobby", user.ID, user.Name)
	m.broadcast(m.buildGameUpdate())
	return nil
}

// resync brings a reconnecting player back up to date with the current phase.
func (m *Manager) resync(p *models.Player) {
	switch m.session.Progression {
	case Lobby:
		m.sendTo(p.ID, m.buildGameUpdate())
	case InGame:
		m.sendTo(p.ID, m.buildRoundStart())
		if p.CurrentDiceCount > 0 {
			m.sendTo(p.ID, PlayerRoundStart{Event: "round_start", Dice: p.Dice})
		}
	case Finished:
		m.sendTo(p.ID, m.buildGameUpdate())
	}
}

func (m *Manager) handleDetach(playerID uuid.UUID) {
	out, ok := m.conns[playerID]
	if !ok {
		return
	}
	out.close()
	delete(m.conns, playerID)
	m.log.Infof("player %s disconnected", playerID)

	// A lobby player who drops the connection gives up the seat; otherwise
	// a half-joined player could block the all-ready transition forever.
	// Mid-game the seat and dice survive for a reconnect.
	if m.session.Progression == Lobby && m.session.RemovePlayer(playerID) {
		m.broadcast(m.buildGameUpdate())
		m.maybeStartGame()
	}
}

// --- inbound events ---

// handleEvent validates and applies one inbound event. An accepted event is
// acked to its sender before any broadcast it triggers, so a client never
// sees the fallout of its own event ahead of the confirmation.
func (m *Manager) handleEvent(playerID uuid.UUID, ev Event) {
	p := m.session.Player(playerID)
	if p == nil {
		m.log.Warnf("event from unseated player %s, ignoring", playerID)
		return
	}

	var err error
	switch ev := ev.(type) {
	case PlayerReady:
		err = m.handleReady(p, ev)
	case PlayerLeave:
		m.sendTo(playerID, newReadyConfirm(nil))
		m.handleLeave(p)
		return
	case Accusation:
		err = m.handleAccusation(p, ev)
	}

	if err != nil {
		m.log.WithFields(logrus.Fields{
			"player": playerID,
			"error":  err,
		}).Info("rejected event")
		m.sendTo(playerID, newReadyConfirm(err))
	}
}

func (m *Manager) handleReady(p *models.Player, ev PlayerReady) error {
	if m.session.Progression != Lobby {
		if ev.Ready && p.Ready {
			m.sendTo(p.ID, newReadyConfirm(nil)) // idempotent repeat after start
			return nil
		}
		return ErrWrongPhase
	}

	m.sendTo(p.ID, newReadyConfirm(nil))
	if p.Ready != ev.Ready {
		p.Ready = ev.Ready
		m.log.Infof("player %s (%s) ready=%v", p.ID, p.Name, p.Ready)
		m.broadcast(PlayerUpdate{Event: "player_update", Players: m.publicPlayers()})
	}
	m.maybeStartGame()
	return nil
}

// maybeStartGame fires the lobby-to-game transition. It must run after every
// mutation that can complete the all-ready condition: a ready toggle, a lobby
// leave and a lobby disconnect, since removing the last unready seat makes
// the remaining lobby all-ready with no further ready event coming.
func (m *Manager) maybeStartGame() {
	if m.session.Progression == Lobby && m.session.AllReady() {
		m.startGame()
	}
}

// startGame freezes the rules, deals everyone their initial dice, links the
// ring in join order and opens the first round with the first-joined player
// as accuser.
func (m *Manager) startGame() {
	for _, p := range m.session.Players {
		p.CurrentDiceCount = m.session.Rules.InitialDiceCount
	}
	m.session.Progression = InGame
	m.session.LinkRing()

	m.log.Infof("all %d players ready, game starting", len(m.session.Players))
	m.broadcast(GameStart{Event: "game_start", Rules: m.session.Rules})
	m.startRound(m.session.Players[0].ID)
}

// startRound rerolls every active hand and hands the turn to accuser.
// Broadcast carries only die counts; each player's values go out privately.
func (m *Manager) startRound(accuser uuid.UUID) {
	m.session.CurrentAccuserID = accuser
	m.session.RollAll()

	m.broadcast(m.buildRoundStart())
	for _, p := range m.session.ActivePlayers() {
		m.sendTo(p.ID, PlayerRoundStart{Event: "round_start", Dice: p.Dice})
	}
}

func (m *Manager) handleLeave(p *models.Player) {
	m.log.Infof("player %s (%s) left the session", p.ID, p.Name)

	if m.session.Progression == InGame && p.CurrentDiceCount > 0 {
		// Leaving mid-game forfeits all remaining dice.
		successor := m.session.Eliminate(p)
		m.session.RemovePlayer(p.ID)
		m.dropConn(p.ID)
		m.broadcast(m.buildGameUpdate())

		active := m.session.ActivePlayers()
		if len(active) == 1 {
			m.finishGame(active[0].ID)
			return
		}
		// The leaver's hand is gone, so standing claims are stale: start a
		// fresh round. The turn passes onward only if the leaver held it.
		next := m.session.CurrentAccuserID
		if next == p.ID {
			next = successor
		}
		m.startRound(next)
		return
	}

	m.session.RemovePlayer(p.ID)
	m.dropConn(p.ID)
	m.broadcast(m.buildGameUpdate())
	m.maybeStartGame()
}

func (m *Manager) handleAccusation(p *models.Player, acc Accusation) error {
	if m.session.Progression != InGame {
		return ErrWrongPhase
	}
	if p.ID != m.session.CurrentAccuserID || p.CurrentDiceCount == 0 {
		return ErrNotYourTurn
	}
	if acc.AccusedPlayer == p.ID {
		return ErrSelfAccusation
	}
	accused := m.session.Player(acc.AccusedPlayer)
	if accused == nil || accused.CurrentDiceCount == 0 {
		return ErrNoSuchPlayer
	}

	switch acc.Type {
	case AccusationStandard:
		if acc.DiceValue < 1 || acc.DiceValue > 6 || acc.DiceCount < 1 {
			return ErrBadClaim
		}
	case AccusationExact:
		if !m.session.Rules.ExactAllowed {
			return ErrAccusationDisabled
		}
		if acc.DiceValue < 1 || acc.DiceValue > 6 || acc.DiceCount < 1 {
			return ErrBadClaim
		}
	case AccusationPaso:
		if !m.session.Rules.PasoAllowed {
			return ErrAccusationDisabled
		}
	}

	// Accepted: confirm to the accuser ahead of the resolution broadcasts.
	m.sendTo(p.ID, newReadyConfirm(nil))

	var (
		actual, jokers int
		correct        bool
	)
	switch acc.Type {
	case AccusationStandard:
		actual, jokers, correct = dice.ResolveStandard(m.session.ActiveHands(), acc.DiceValue, acc.DiceCount)
	case AccusationExact:
		actual, jokers, correct = dice.ResolveExact(m.session.ActiveHands(), acc.DiceValue, acc.DiceCount)
	case AccusationPaso:
		// The accuser calls the accused's paso a lie; a hand that really is
		// a paso proves the accuser wrong.
		correct = !dice.IsPaso(accused.Dice)
	}

	winner, loser := accused, p
	if correct {
		winner, loser = p, accused
	}

	m.log.WithFields(logrus.Fields{
		"accuser": p.ID,
		"accused": accused.ID,
		"type":    acc.Type,
		"correct": correct,
		"actual":  actual,
	}).Info("accusation resolved")

	// Reveal every active hand before any dice are taken away.
	m.broadcast(RoundEnd{
		Event:             "round_end",
		Winner:            winner.ID,
		Loser:             loser.ID,
		CorrectAccusation: correct,
		AccusationType:    acc.Type,
		DiceValue:         acc.DiceValue,
		DiceCount:         acc.DiceCount,
		JokerCount:        jokers,
		Players:           m.revealHands(),
	})
	m.rec.Publish(history.Record{
		Kind:           "round_end",
		Code:           m.Code,
		Winner:         winner.ID,
		Loser:          loser.ID,
		AccusationType: string(acc.Type),
		DiceValue:      acc.DiceValue,
		DiceCount:      acc.DiceCount,
		ActualCount:    actual,
		JokerCount:     jokers,
	})

	loser.CurrentDiceCount--
	next := loser.ID
	if loser.CurrentDiceCount == 0 {
		next = m.session.Eliminate(loser)
		m.log.Infof("player %s (%s) eliminated", loser.ID, loser.Name)
	}

	if active := m.session.ActivePlayers(); len(active) == 1 {
		m.finishGame(active[0].ID)
		return nil
	}
	m.startRound(next)
	return nil
}

func (m *Manager) finishGame(winner uuid.UUID) {
	m.session.Progression = Finished
	m.session.CurrentAccuserID = uuid.Nil
	m.finished.Store(true)

	m.log.Infof("game finished, winner %s", winner)
	m.broadcast(GameEnd{Event: "game_end", Winner: winner})
	m.rec.Publish(history.Record{Kind: "game_end", Code: m.Code, Winner: winner})
}

// --- outbound plumbing ---

func (m *Manager) broadcast(frame interface{}) {
	data, err := json.Marshal(frame)
	if err != nil {
		m.log.Errorf("failed to marshal broadcast frame: %v", err)
		return
	}
	for id, out := range m.conns {
		if !out.send(data) {
			m.log.Warnf("outbox overflow, dropping connection for player %s", id)
			delete(m.conns, id)
		}
	}
}

func (m *Manager) sendTo(playerID uuid.UUID, frame interface{}) {
	out, ok := m.conns[playerID]
	if !ok {
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		m.log.Errorf("failed to marshal frame for player %s: %v", playerID, err)
		return
	}
	if !out.send(data) {
		m.log.Warnf("outbox overflow, dropping connection for player %s", playerID)
		delete(m.conns, playerID)
	}
}

func (m *Manager) dropConn(playerID uuid.UUID) {
	if out, ok := m.conns[playerID]; ok {
		out.close()
		delete(m.conns, playerID)
	}
}

// --- narrowed views ---

func (m *Manager) publicPlayers() []PlayerPublic {
	players := make([]PlayerPublic, len(m.session.Players))
	for i, p := range m.session.Players {
		players[i] = PlayerPublic{ID: p.ID, Name: p.Name, Ready: p.Ready}
	}
	return players
}

func (m *Manager) buildGameUpdate() GameUpdate {
	return GameUpdate{
		Event:       "game_update",
		Code:        m.Code,
		Progression: m.session.Progression,
		Rules:       m.session.Rules,
		Players:     m.publicPlayers(),
	}
}

func (m *Manager) buildRoundStart() RoundStart {
	active := m.session.ActivePlayers()
	players := make([]PlayerCount, len(active))
	for i, p := range active {
		players[i] = PlayerCount{
			ID:               p.ID,
			Name:             p.Name,
			CurrentDiceCount: p.CurrentDiceCount,
			LeftID:           p.LeftID,
			RightID:          p.RightID,
		}
	}
	return RoundStart{
		Event:          "round_start",
		CurrentAccuser: m.session.CurrentAccuserID,
		Players:        players,
	}
}

func (m *Manager) revealHands() []PlayerDice {
	active := m.session.ActivePlayers()
	players := make([]PlayerDice, len(active))
	for i, p := range active {
		hand := make([]int, len(p.Dice))
		copy(hand, p.Dice)
		players[i] = PlayerDice{ID: p.ID, Name: p.Name, Dice: hand}
	}
	return players
}
