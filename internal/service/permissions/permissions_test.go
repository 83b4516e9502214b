package permissions

import (
	"RoleChat/internal/models"
	"RoleChat/internal/storage/memory"
	"RoleChat/pkg/logger"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingUsers struct{}

func (failingUsers) UserByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, errors.New("connection refused")
}

type nilUsers struct{}

func (nilUsers) UserByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, nil
}

func newUser(t *testing.T, users *memory.Users, role models.Role) uuid.UUID {
	t.Helper()
	u, err := users.CreateUser(context.Background(), models.User{Email: uuid.NewString() + "@example.com"})
	require.NoError(t, err)
	if role != "" {
		require.NoError(t, users.SetRole(context.Background(), u.ID, role))
	}
	return u.ID
}

func TestCheckPermission(t *testing.T) {
	ctx := context.Background()
	users := memory.New().Users()
	checker := NewChecker(logger.NewDiscard(), users)

	reader := newUser(t, users, models.ReadRole)
	writer := newUser(t, users, models.WriteRole)
	admin := newUser(t, users, models.AdminRole)
	roleless := newUser(t, users, "")
	unknownRole := newUser(t, users, "owner")

	tests := []struct {
		name     string
		userID   uuid.UUID
		required models.Role
		want     bool
	}{
		{"reader reads", reader, models.ReadRole, true},
		{"reader cannot write", reader, models.WriteRole, false},
		{"reader cannot admin", reader, models.AdminRole, false},
		{"writer reads", writer, models.ReadRole, true},
		{"writer writes", writer, models.WriteRole, true},
		{"writer cannot admin", writer, models.AdminRole, false},
		{"admin reads", admin, models.ReadRole, true},
		{"admin writes", admin, models.WriteRole, true},
		{"admin admins", admin, models.AdminRole, true},
		{"no role", roleless, models.ReadRole, false},
		{"unknown stored role", unknownRole, models.ReadRole, false},
		{"unknown required role", admin, "superuser", false},
		{"anonymous", uuid.Nil, models.ReadRole, false},
		{"missing user", uuid.New(), models.ReadRole, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.CheckPermission(ctx, tt.userID, tt.required))
		})
	}
}

func TestCheckPermissionFailsClosed(t *testing.T) {
	ctx := context.Background()

	checker := NewChecker(logger.NewDiscard(), failingUsers{})
	assert.False(t, checker.CheckPermission(ctx, uuid.New(), models.ReadRole))

	checker = NewChecker(logger.NewDiscard(), nilUsers{})
	assert.False(t, checker.CheckPermission(ctx, uuid.New(), models.ReadRole))
}

func TestCheckPermissionSeesRoleChanges(t *testing.T) {
	ctx := context.Background()
	users := memory.New().Users()
	checker := NewChecker(logger.NewDiscard(), users)

	id := newUser(t, users, models.ReadRole)
	assert.False(t, checker.CheckPermission(ctx, id, models.AdminRole))

	require.NoError(t, users.SetRole(ctx, id, models.AdminRole))
	assert.True(t, checker.CheckPermission(ctx, id, models.AdminRole))

	require.NoError(t, users.SetRole(ctx, id, models.ReadRole))
	assert.False(t, checker.CheckPermission(ctx, id, models.WriteRole))
}
