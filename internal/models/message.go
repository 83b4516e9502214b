package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID        uuid.UUID
	Body      string
	UserID    uuid.UUID
	CreatedAt time.Time
}

// MessageView is a message annotated with its author's display name.
type MessageView struct {
	Message
	Author string
}
