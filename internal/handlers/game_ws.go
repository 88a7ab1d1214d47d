// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/koren13n/dice-be/internal/database"
	"github.com/koren13n/dice-be/internal/game"
	"github.com/koren13n/dice-be/internal/playground"
)

// handshakeTimeout bounds how long a fresh connection may wait before
// sending its identifying first frame.
const handshakeTimeout = 30 * time.Second

// joinFrame is the first message on a new game socket: the joining user's id.
type joinFrame struct {
	ID string `json:"id"`
}

// ServeGameWS upgrades to WebSocket, resolves the first-frame user id
// against the users store, registers the connection with the room's manager,
// and then pumps frames both ways until the connection dies.
//
// Protocol errors (bad id, malformed frames, unknown event tags) close only
// this connection with a reason; the session itself is untouched.
func ServeGameWS(logger *logrus.Logger, pg *playground.Playground, w http.ResponseWriter, r *http.Request, code string) {
	m, err := pg.GetGame(code)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // tighten for production
	})
	if err != nil {
		logger.Warnf("websocket accept error for game %s: %v", code, err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler exited")

	log := logger.WithFields(logrus.Fields{"room": code, "remote": r.RemoteAddr})

	// First frame identifies the user.
	hsCtx, cancelHs := context.WithTimeout(r.Context(), handshakeTimeout)
	_, data, err := c.Read(hsCtx)
	cancelHs()
	if err != nil {
		log.Warnf("failed to read join frame: %v", err)
		return
	}

	var join joinFrame
	if err := json.Unmarshal(data, &join); err != nil {
		c.Close(ProtocolError, "malformed join frame")
		return
	}
	userID, err := uuid.Parse(join.ID)
	if err != nil {
		c.Close(ProtocolError, "invalid user id format")
		return
	}

	lookupCtx, cancelLookup := context.WithTimeout(r.Context(), 5*time.Second)
	user, err := database.GetUserByID(lookupCtx, userID)
	cancelLookup()
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.Close(UnknownUserError, "unknown user id")
		} else {
			log.Warnf("user lookup failed for %s: %v", userID, err)
			c.Close(websocket.StatusInternalError, "user lookup failed")
		}
		return
	}

	out, err := m.Connect(r.Context(), user)
	if err != nil {
		log.Infof("join rejected for user %s: %v", userID, err)
		c.Close(JoinRejectedError, err.Error())
		return
	}
	log.Infof("user %s (%s) connected", user.ID, user.Name)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go writePump(ctx, c, out, log)
	readPump(ctx, c, m, user.ID, log)

	// The manager drops the outbox on Disconnect, which also stops the
	// write pump. Disconnect is a no-op if the player already left.
	m.Disconnect(user.ID)
	log.Infof("user %s disconnected", user.ID)
}

// readPump decodes inbound frames and forwards them into the manager's
// command queue. It returns when the connection closes or a protocol error
// terminates it.
func readPump(ctx context.Context, c *websocket.Conn, m *game.Manager, userID uuid.UUID, log *logrus.Entry) {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			switch {
			case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
				log.Infof("websocket closed for user %s", userID)
			case strings.Contains(err.Error(), "context canceled"):
			default:
				log.Warnf("read error for user %s: %v", userID, err)
			}
			return
		}

		ev, err := game.DecodeEvent(data)
		if err != nil {
			// Malformed frame: protocol error, close only this connection.
			log.Warnf("protocol error from user %s: %v", userID, err)
			c.Close(ProtocolError, err.Error())
			return
		}

		if err := m.Deliver(ctx, userID, ev); err != nil {
			log.Warnf("failed to deliver event for user %s: %v", userID, err)
			return
		}
	}
}

// writePump drains the player's outbox onto the socket. The channel closes
// when the manager drops the connection (leave, overflow, eviction).
func writePump(ctx context.Context, c *websocket.Conn, out *game.Outbox, log *logrus.Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-out.C():
			if !ok {
				c.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				log.Warnf("write error: %v", err)
				return
			}
		}
	}
}
