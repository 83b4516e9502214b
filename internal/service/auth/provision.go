package auth

import (
	"RoleChat/internal/models"
	"RoleChat/pkg/logger"
	"context"

	"github.com/google/uuid"
)

type roleSetter interface {
	SetRole(ctx context.Context, id uuid.UUID, role models.Role) error
}

// Provisioner runs after the sign-in flow has created or matched a user.
type Provisioner struct {
	log   logger.Log
	users roleSetter
}

func NewProvisioner(l logger.Log, users roleSetter) *Provisioner {
	return &Provisioner{log: l, users: users}
}

// AfterUserCreated assigns the default role to new users. Existing users keep
// whatever role they have.
func (p *Provisioner) AfterUserCreated(ctx context.Context, userID uuid.UUID, existing bool) error {
	if existing {
		return nil
	}
	if err := p.users.SetRole(ctx, userID, models.DefaultRole); err != nil {
		return err
	}
	p.log.Info("user provisioned", "user_id", userID, "role", models.DefaultRole)
	return nil
}
