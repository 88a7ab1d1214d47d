package models

import "github.com/google/uuid"

// User is the identity record from the users table. The game layer treats it
// as opaque: it only ever reads the ID and display name.
type User struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	FriendIDs []uuid.UUID `json:"friend_ids,omitempty"`
}
