package service

import (
	"RoleChat/internal/service/auth"
	"RoleChat/internal/service/avatar"
	"RoleChat/internal/service/messages"
)

// Collection is everything the HTTP layer needs. AvatarService is nil when
// object storage is not configured.
type Collection struct {
	AuthService    *auth.AuthService
	MessageService *messages.MessageService
	AvatarService  *avatar.AvatarService
}
