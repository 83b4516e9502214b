package permissions

import (
	"RoleChat/internal/metrics"
	"RoleChat/internal/models"
	"RoleChat/pkg/logger"
	"context"

	"github.com/google/uuid"
)

type userRepo interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Checker answers whether a user's stored role satisfies a required role.
type Checker struct {
	log   logger.Log
	users userRepo
}

func NewChecker(l logger.Log, users userRepo) *Checker {
	return &Checker{log: l, users: users}
}

// CheckPermission fails closed: a missing user, a failed lookup, an absent or
// unknown stored role, or an unknown required role all deny access.
func (c *Checker) CheckPermission(ctx context.Context, userID uuid.UUID, required models.Role) bool {
	allowed := c.check(ctx, userID, required)

	result := "denied"
	if allowed {
		result = "allowed"
	}
	metrics.PermissionChecks.WithLabelValues(string(required), result).Inc()
	return allowed
}

func (c *Checker) check(ctx context.Context, userID uuid.UUID, required models.Role) bool {
	if userID == uuid.Nil {
		return false
	}
	user, err := c.users.UserByID(ctx, userID)
	if err != nil {
		c.log.Warn("permission lookup failed", "user_id", userID, "required", required, logger.Err(err))
		return false
	}
	if user == nil {
		return false
	}
	return user.Role.Satisfies(required)
}
