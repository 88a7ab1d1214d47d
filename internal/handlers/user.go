// internal/handlers/user.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/koren13n/dice-be/internal/database"
	"github.com/koren13n/dice-be/internal/models"
)

// UsersHandler routes the /users/ surface:
//
//	POST /users/                create a user from a display name
//	GET  /users/                list users
//	GET  /users/{id}/           fetch one user
//	POST /users/{id}/friends    append friend ids
func UsersHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := splitPath(strings.TrimPrefix(r.URL.Path, "/users/"))

		switch {
		case len(parts) == 0 && r.Method == http.MethodPost:
			createUser(w, r)
		case len(parts) == 0 && r.Method == http.MethodGet:
			listUsers(w, r)
		case len(parts) == 1 && r.Method == http.MethodGet:
			getUser(w, r, parts[0])
		case len(parts) == 2 && parts[1] == "friends" && r.Method == http.MethodPost:
			addFriends(w, r, parts[0])
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
	}
}

func createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "a non-empty name is required")
		return
	}

	user := &models.User{Name: req.Name}
	if err := database.CreateUser(r.Context(), user); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := database.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func getUser(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := database.GetUserByID(r.Context(), id)
	if errors.Is(err, database.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func addFriends(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req struct {
		Friends []uuid.UUID `json:"friends"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := database.AddFriends(r.Context(), id, req.Friends)
	if errors.Is(err, database.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user)
}
