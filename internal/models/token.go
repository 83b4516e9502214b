package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type RefreshToken struct {
	UserID      uuid.UUID
	HashedToken string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type TokenPair struct {
	AccessToken  *jwt.Token
	RefreshToken *jwt.Token
}

// LoginLink is a pending email sign-in. Only the bcrypt hash of the secret
// half of the link token is stored.
type LoginLink struct {
	ID         uuid.UUID
	Email      string
	SecretHash string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}
