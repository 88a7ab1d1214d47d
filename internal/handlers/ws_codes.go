// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes for the game endpoint, alongside the
// standard protocol-error status.
const (
	// ProtocolError mirrors RFC 6455 1002 for malformed frames and unknown
	// event discriminators.
	ProtocolError = websocket.StatusProtocolError

	UnknownGameCodeError websocket.StatusCode = 3000 // room code does not name an active session
	UnknownUserError     websocket.StatusCode = 3001 // first-frame user id is unknown
	JoinRejectedError    websocket.StatusCode = 3002 // session refused the join (e.g. game already started)
)
