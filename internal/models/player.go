package models

import "github.com/google/uuid"

// Player is one seat in a game session. Dice are hidden state: they only ever
// leave the server through the private round_start frame and the round_end
// reveal.
//
// LeftID/RightID express the turn ring as id links rather than pointers, so
// relinking on elimination never aliases live player objects.
type Player struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Dice             []int     `json:"dice,omitempty"`
	CurrentDiceCount int       `json:"current_dice_count"`
	Ready            bool      `json:"ready"`
	LeftID           uuid.UUID `json:"left_player_id,omitempty"`
	RightID          uuid.UUID `json:"right_player_id,omitempty"`
}
