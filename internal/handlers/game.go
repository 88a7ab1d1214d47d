// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/koren13n/dice-be/internal/models"
	"github.com/koren13n/dice-be/internal/playground"
)

// createGameRequest mirrors the creation payload: a partial rules object,
// defaults filled in for anything omitted.
type createGameRequest struct {
	GameRules map[string]interface{} `json:"game_rules"`
}

// GamesHandler routes the /games/ surface:
//
//	POST /games/                create a room, respond with its code
//	GET  /games/{code}/         narrowed session snapshot
//	GET  /games/{code}/state    progression only
//	GET  /games/{code}/{user}   membership check
//	GET  /games/{code}/ws       the live game WebSocket
func GamesHandler(logger *logrus.Logger, pg *playground.Playground) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(strings.TrimPrefix(r.URL.Path, "/games/"))

		switch {
		case len(parts) == 0:
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			createGame(w, r, pg)
		case len(parts) == 2 && parts[1] == "ws":
			ServeGameWS(logger, pg, w, r, parts[0])
		case r.Method != http.MethodGet:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		case len(parts) == 1:
			getGame(w, r, pg, parts[0])
		case len(parts) == 2 && parts[1] == "state":
			getGameState(w, r, pg, parts[0])
		case len(parts) == 2:
			checkPlayerInGame(w, r, pg, parts[0], parts[1])
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
	}
}

func splitPath(p string) []string {
	parts := []string{}
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

func createGame(w http.ResponseWriter, r *http.Request, pg *playground.Playground) {
	rules := models.DefaultRules()

	// A bare POST creates a default-rules room.
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.GameRules != nil {
		if err := rules.Update(req.GameRules); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	code, err := pg.CreateGame(rules)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, code)
}

func getGame(w http.ResponseWriter, r *http.Request, pg *playground.Playground, code string) {
	m, err := pg.GetGame(code)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	view, err := m.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func getGameState(w http.ResponseWriter, r *http.Request, pg *playground.Playground, code string) {
	m, err := pg.GetGame(code)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	view, err := m.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view.Progression)
}

func checkPlayerInGame(w http.ResponseWriter, r *http.Request, pg *playground.Playground, code, userIDStr string) {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	m, err := pg.GetGame(code)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	seated, err := m.HasPlayer(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, seated)
}
