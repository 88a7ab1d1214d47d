// internal/database/user.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/koren13n/dice-be/internal/models"
)

// ErrUserNotFound is returned when no user exists for the requested id.
var ErrUserNotFound = errors.New("user not found")

// CreateUser inserts a new user, generating its id when unset.
func CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	q := `INSERT INTO users (id, name, friend_ids) VALUES ($1, $2, $3)`
	if _, err := DB.Exec(ctx, q, user.ID, user.Name, user.FriendIDs); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByID looks up a single user. This is the identity source the game
// WebSocket handshake resolves ids against.
func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	q := `SELECT id, name, friend_ids FROM users WHERE id=$1`
	err := DB.QueryRow(ctx, q, id).Scan(&u.ID, &u.Name, &u.FriendIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return &u, nil
}

// ListUsers returns every registered user.
func ListUsers(ctx context.Context) ([]*models.User, error) {
	q := `SELECT id, name, friend_ids FROM users ORDER BY name`
	rows, err := DB.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.FriendIDs); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// AddFriends appends friend ids to a user's friend list and returns the
// updated record.
func AddFriends(ctx context.Context, id uuid.UUID, friends []uuid.UUID) (*models.User, error) {
	user, err := GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.FriendIDs = append(user.FriendIDs, friends...)

	q := `UPDATE users SET friend_ids=$2 WHERE id=$1`
	if _, err := DB.Exec(ctx, q, user.ID, user.FriendIDs); err != nil {
		return nil, fmt.Errorf("failed to update friends for %s: %w", id, err)
	}
	return user, nil
}
