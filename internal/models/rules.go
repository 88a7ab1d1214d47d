package models

import "fmt"

// GameRules defines the per-session rule set. Rules are chosen at room
// creation and freeze once the session leaves the lobby.
type GameRules struct {
	InitialDiceCount int  `json:"initial_dice_count"` // dice dealt to each player at game start
	PasoAllowed      bool `json:"paso_allowed"`       // permit paso accusations
	ExactAllowed     bool `json:"exact_allowed"`      // permit exact-count accusations
}

// DefaultRules returns the standard five-dice rule set with every accusation
// kind enabled.
func DefaultRules() GameRules {
	return GameRules{
		InitialDiceCount: 5,
		PasoAllowed:      true,
		ExactAllowed:     true,
	}
}

// Update applies a partial rules payload. Absent keys keep their old value;
// wrongly typed or invalid values abort without applying anything further.
func (rules *GameRules) Update(newRules map[string]interface{}) error {
	if val, exists := newRules["initial_dice_count"]; exists && val != nil {
		f, ok := val.(float64)
		if !ok {
			return fmt.Errorf("invalid type for initial_dice_count")
		}
		if f < 1 {
			return fmt.Errorf("initial_dice_count must be at least 1")
		}
		rules.InitialDiceCount = int(f)
	}

	assignBool := func(field *bool, key string) error {
		if val, exists := newRules[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	if err := assignBool(&rules.PasoAllowed, "paso_allowed"); err != nil {
		return err
	}
	return assignBool(&rules.ExactAllowed, "exact_allowed")
}
