// internal/game/errors.go
package game

import "errors"

// Rule violations are recoverable: they are reported to the sender in a
// negative ready_confirm and leave session state untouched. Protocol errors
// (malformed frames, unknown discriminators) are handled at the connection
// layer instead and never reach the manager.
var (
	ErrNotYourTurn        = errors.New("it is not your turn to accuse")
	ErrWrongPhase         = errors.New("session is not in the required phase")
	ErrAccusationDisabled = errors.New("accusation kind is disabled by the room rules")
	ErrNoSuchPlayer       = errors.New("accused player is not an active player in this session")
	ErrSelfAccusation     = errors.New("players cannot accuse themselves")
	ErrBadClaim           = errors.New("claimed dice value or count is out of range")
	ErrGameInProgress     = errors.New("game is already in progress")
)
