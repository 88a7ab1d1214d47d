// internal/game/events.go
package game

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/koren13n/dice-be/internal/models"
)

// AccusationType discriminates the three accusation kinds.
type AccusationType string

const (
	AccusationStandard AccusationType = "standard"
	AccusationExact    AccusationType = "exact"
	AccusationPaso     AccusationType = "paso"
)

// Event is the closed set of inbound frames a client may send on the game
// socket. Each variant carries the "event" discriminator in its JSON form.
type Event interface {
	isEvent()
}

// PlayerReady marks the sender ready in the lobby. Repeats are idempotent.
type PlayerReady struct {
	Event string `json:"event"`
	Ready bool   `json:"ready"`
}

// PlayerLeave removes the sender from the session. During a game it is a
// forfeit of all remaining dice.
type PlayerLeave struct {
	Event string `json:"event"`
}

// Accusation is the current accuser's claim against another player.
// DiceValue/DiceCount are only meaningful for standard and exact kinds.
type Accusation struct {
	Event         string         `json:"event"`
	Type          AccusationType `json:"type"`
	AccusedPlayer uuid.UUID      `json:"accused_player"`
	DiceValue     int            `json:"dice_value,omitempty"`
	DiceCount     int            `json:"dice_count,omitempty"`
}

func (PlayerReady) isEvent() {}
func (PlayerLeave) isEvent() {}
func (Accusation) isEvent()  {}

// DecodeEvent parses one inbound frame, dispatching on the "event" field.
// An unknown or missing discriminator is a protocol error; the caller is
// expected to terminate the offending connection.
func DecodeEvent(data []byte) (Event, error) {
	var head struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("malformed event frame: %w", err)
	}

	switch head.Event {
	case "player_ready":
		var ev PlayerReady
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("malformed player_ready: %w", err)
		}
		return ev, nil
	case "player_leave":
		var ev PlayerLeave
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("malformed player_leave: %w", err)
		}
		return ev, nil
	case "accusation":
		var ev Accusation
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("malformed accusation: %w", err)
		}
		switch ev.Type {
		case AccusationStandard, AccusationExact, AccusationPaso:
		default:
			return nil, fmt.Errorf("unknown accusation type %q", ev.Type)
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", head.Event)
	}
}

// --- Outbound frames ---

// ReadyConfirm acknowledges any inbound event to its sender: success, or the
// violated rule when the action was rejected.
type ReadyConfirm struct {
	Event   string `json:"event"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func newReadyConfirm(err error) ReadyConfirm {
	rc := ReadyConfirm{Event: "ready_confirm", Success: err == nil}
	if err != nil {
		rc.Error = err.Error()
	}
	return rc
}

// PlayerPublic is the lobby view of a player: never dice.
type PlayerPublic struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Ready bool      `json:"ready"`
}

// PlayerCount is the round-start view: identity, remaining-die count and the
// player's ring neighbors, so clients can render the table order.
type PlayerCount struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	CurrentDiceCount int       `json:"current_dice_count"`
	LeftID           uuid.UUID `json:"left_player_id"`
	RightID          uuid.UUID `json:"right_player_id"`
}

// PlayerDice is the round-end reveal of a full hand.
type PlayerDice struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Dice []int     `json:"dice"`
}

// GameUpdate is the lobby snapshot broadcast on joins and leaves, and served
// over the snapshot endpoint.
type GameUpdate struct {
	Event       string           `json:"event"`
	Code        string           `json:"code"`
	Progression Progression      `json:"progression"`
	Rules       models.GameRules `json:"rules"`
	Players     []PlayerPublic   `json:"players"`
}

// PlayerUpdate narrows GameUpdate to ready-state changes.
type PlayerUpdate struct {
	Event   string         `json:"event"`
	Players []PlayerPublic `json:"players"`
}

// GameStart announces the lobby-to-game transition with the frozen rules.
type GameStart struct {
	Event string           `json:"event"`
	Rules models.GameRules `json:"rules"`
}

// RoundStart is the broadcast view of a fresh round: per-player die counts
// and whose accusation opens the round. Dice values are never included here.
type RoundStart struct {
	Event          string        `json:"event"`
	CurrentAccuser uuid.UUID     `json:"current_accuser"`
	Players        []PlayerCount `json:"players"`
}

// PlayerRoundStart is the private companion to RoundStart carrying the
// recipient's own roll.
type PlayerRoundStart struct {
	Event string `json:"event"`
	Dice  []int  `json:"dice"`
}

// RoundEnd reports an accusation's resolution, revealing every active hand.
type RoundEnd struct {
	Event             string         `json:"event"`
	Winner            uuid.UUID      `json:"winner"`
	Loser             uuid.UUID      `json:"loser"`
	CorrectAccusation bool           `json:"correct_accusation"`
	AccusationType    AccusationType `json:"accusation_type"`
	DiceValue         int            `json:"dice_value,omitempty"`
	DiceCount         int            `json:"dice_count,omitempty"`
	JokerCount        int            `json:"joker_count"`
	Players           []PlayerDice   `json:"players"`
}

// GameEnd is the terminal frame naming the last player standing.
type GameEnd struct {
	Event  string    `json:"event"`
	Winner uuid.UUID `json:"winner"`
}
