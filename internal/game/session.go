// internal/game/session.go
package game

import (
	"github.com/google/uuid"

	"github.com/koren13n/dice-be/internal/dice"
	"github.com/koren13n/dice-be/internal/models"
)

// Progression is the lifecycle state of a session.
type Progression string

const (
	Lobby    Progression = "lobby"
	InGame   Progression = "in_game"
	Finished Progression = "finished"
)

// Session is the state of one room: its rules, progression, and players in
// join order. It is owned exclusively by the room's Manager; nothing else
// mutates it.
//
// While InGame, the active players (remaining dice >= 1) form a single ring
// through their LeftID/RightID links. Eliminated players stay in the slice
// with zero dice and cleared links. In the lobby all links are unset.
type Session struct {
	Code        string
	Rules       models.GameRules
	Progression Progression
	Players     []*models.Player

	// CurrentAccuserID holds the turn while InGame.
	CurrentAccuserID uuid.UUID
}

// NewSession creates an empty lobby-phase session.
func NewSession(code string, rules models.GameRules) *Session {
	return &Session{
		Code:        code,
		Rules:       rules,
		Progression: Lobby,
	}
}

// AddPlayer seats a user at the end of the join order.
func (s *Session) AddPlayer(user *models.User) *models.Player {
	p := &models.Player{ID: user.ID, Name: user.Name}
	s.Players = append(s.Players, p)
	return p
}

// RemovePlayer unseats a player by id, reporting whether it was present.
// Index-stable: it rebuilds the slice instead of mutating during iteration.
func (s *Session) RemovePlayer(id uuid.UUID) bool {
	for i, p := range s.Players {
		if p.ID == id {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			return true
		}
	}
	return false
}

// Player finds a seated player by id, nil if absent.
func (s *Session) Player(id uuid.UUID) *models.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActivePlayers returns, in join order, the players still holding dice.
// In the lobby every seated player is active.
func (s *Session) ActivePlayers() []*models.Player {
	if s.Progression == Lobby {
		return s.Players
	}
	active := make([]*models.Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.CurrentDiceCount > 0 {
			active = append(active, p)
		}
	}
	return active
}

// AllReady reports whether the lobby can start: at least two seated players,
// all of them ready.
func (s *Session) AllReady() bool {
	if len(s.Players) < 2 {
		return false
	}
	for _, p := range s.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// LinkRing assigns ring neighbors over the active players in join order.
// RightID is the successor (next accuser direction), LeftID the predecessor.
func (s *Session) LinkRing() {
	active := s.ActivePlayers()
	n := len(active)
	for i, p := range active {
		p.RightID = active[(i+1)%n].ID
		p.LeftID = active[(i-1+n)%n].ID
	}
}

// Eliminate zeroes a player's dice and splices it out of the ring, relinking
// its neighbors to each other. Returns the player's ring successor, which
// callers use to hand the turn onward.
func (s *Session) Eliminate(p *models.Player) uuid.UUID {
	successor := p.RightID

	left := s.Player(p.LeftID)
	right := s.Player(p.RightID)
	if left != nil && right != nil {
		if left == right {
			// Two-player ring collapsing to one: the survivor links to itself.
			left.LeftID = left.ID
			left.RightID = left.ID
		} else {
			left.RightID = right.ID
			right.LeftID = left.ID
		}
	}

	p.Dice = nil
	p.CurrentDiceCount = 0
	p.LeftID = uuid.Nil
	p.RightID = uuid.Nil
	return successor
}

// RollAll deals every active player a fresh hand sized to its remaining-die
// count.
func (s *Session) RollAll() {
	for _, p := range s.ActivePlayers() {
		p.Dice = dice.RollHand(p.CurrentDiceCount)
	}
}

// ActiveHands collects the active players' dice for accusation resolution.
func (s *Session) ActiveHands() [][]int {
	active := s.ActivePlayers()
	hands := make([][]int, len(active))
	for i, p := range active {
		hands[i] = p.Dice
	}
	return hands
}
