// internal/handlers/game_test.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/koren13n/dice-be/internal/game"
	"github.com/koren13n/dice-be/internal/models"
	"github.com/koren13n/dice-be/internal/playground"
)

func newGamesHandler() (http.HandlerFunc, *playground.Playground) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	pg := playground.New(logger, nil)
	return GamesHandler(logger, pg), pg
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateGameDefaults(t *testing.T) {
	h, pg := newGamesHandler()

	rec := doRequest(t, h, http.MethodPost, "/games/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var code string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &code))
	require.Len(t, code, 4)

	_, err := pg.GetGame(code)
	require.NoError(t, err)
}

func TestCreateGameWithRules(t *testing.T) {
	h, _ := newGamesHandler()

	rec := doRequest(t, h, http.MethodPost, "/games/",
		`{"game_rules":{"initial_dice_count":3,"paso_allowed":false}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var code string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &code))

	snap := doRequest(t, h, http.MethodGet, "/games/"+code+"/", "")
	require.Equal(t, http.StatusOK, snap.Code)

	var view game.GameUpdate
	require.NoError(t, json.Unmarshal(snap.Body.Bytes(), &view))
	require.Equal(t, game.Lobby, view.Progression)
	require.Equal(t, 3, view.Rules.InitialDiceCount)
	require.False(t, view.Rules.PasoAllowed)
	require.Empty(t, view.Players)
}

func TestCreateGameRejectsBadRules(t *testing.T) {
	h, _ := newGamesHandler()

	rec := doRequest(t, h, http.MethodPost, "/games/", `{"game_rules":{"initial_dice_count":0}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/games/", `{"game_rules":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameStateEndpoint(t *testing.T) {
	h, pg := newGamesHandler()
	code, err := pg.CreateGame(models.DefaultRules())
	require.NoError(t, err)

	rec := doRequest(t, h, http.MethodGet, "/games/"+code+"/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state game.Progression
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.Equal(t, game.Lobby, state)
}

func TestUnknownGameCode(t *testing.T) {
	h, _ := newGamesHandler()

	rec := doRequest(t, h, http.MethodGet, "/games/9999/", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/games/9999/state", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlayerMembershipEndpoint(t *testing.T) {
	h, pg := newGamesHandler()
	code, err := pg.CreateGame(models.DefaultRules())
	require.NoError(t, err)

	rec := doRequest(t, h, http.MethodGet, "/games/"+code+"/"+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "false", strings.TrimSpace(rec.Body.String()))

	rec = doRequest(t, h, http.MethodGet, "/games/"+code+"/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h, pg := newGamesHandler()
	code, err := pg.CreateGame(models.DefaultRules())
	require.NoError(t, err)

	rec := doRequest(t, h, http.MethodGet, "/games/", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(t, h, http.MethodDelete, "/games/"+code+"/", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
