package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Image     string
	Role      Role
	CreatedAt time.Time
}

// DisplayName is the name shown next to a user's messages: the name when set,
// the email otherwise.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
