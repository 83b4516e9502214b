package postgres

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/models"
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to ROLECHAT_DB_URL and applies the schema. Tests are
// skipped when the variable is unset.
func openTestDB(t *testing.T) *Storage {
	t.Helper()
	dsn := os.Getenv("ROLECHAT_DB_URL")
	if dsn == "" {
		t.Skip("ROLECHAT_DB_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(db.Close)
	return db
}

func TestUserLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserPostgres(db.Pool)
	email := uuid.NewString() + "@example.com"

	u, err := users.CreateUser(ctx, models.User{Email: email})
	require.NoError(t, err)
	assert.Equal(t, models.Role(""), u.Role)

	_, err = users.CreateUser(ctx, models.User{Email: email})
	assert.ErrorIs(t, err, app_errors.ErrUserExists)

	require.NoError(t, users.SetRole(ctx, u.ID, models.WriteRole))
	got, err := users.UserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, models.WriteRole, got.Role)

	_, err = users.UserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, app_errors.ErrUserNotFound)
	assert.ErrorIs(t, users.SetRole(ctx, uuid.New(), models.ReadRole), app_errors.ErrUserNotFound)
}

func TestMessageLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserPostgres(db.Pool)
	msgs := NewMessagePostgres(db.Pool)

	u, err := users.CreateUser(ctx, models.User{Name: "Ada", Email: uuid.NewString() + "@example.com"})
	require.NoError(t, err)

	first, err := msgs.CreateMessage(ctx, models.Message{UserID: u.ID, Body: "first"})
	require.NoError(t, err)
	second, err := msgs.CreateMessage(ctx, models.Message{UserID: u.ID, Body: "second"})
	require.NoError(t, err)

	_, err = msgs.CreateMessage(ctx, models.Message{UserID: uuid.New(), Body: "orphan"})
	assert.ErrorIs(t, err, app_errors.ErrAuthorNotFound)

	recent, err := msgs.RecentMessages(ctx, 100)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(recent), 2)
	assert.Equal(t, second.ID, recent[0].ID)
	assert.Equal(t, "Ada", recent[0].Author)

	byID, err := msgs.MessagesByIDs(ctx, []uuid.UUID{second.ID, first.ID})
	require.NoError(t, err)
	require.Len(t, byID, 2)
	assert.Equal(t, second.ID, byID[0].ID)

	require.NoError(t, msgs.DeleteMessage(ctx, first.ID))
	require.NoError(t, msgs.DeleteMessage(ctx, first.ID))
	byID, err = msgs.MessagesByIDs(ctx, []uuid.UUID{first.ID})
	require.NoError(t, err)
	assert.Empty(t, byID)
}

func TestLinksAndExpiry(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	links := NewLinksPostgres(db.Pool)
	now := time.Now()

	expired := models.LoginLink{ID: uuid.New(), Email: "a@example.com", SecretHash: "h", CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}
	live := models.LoginLink{ID: uuid.New(), Email: "b@example.com", SecretHash: "h", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, links.CreateLink(ctx, expired))
	require.NoError(t, links.CreateLink(ctx, live))

	n, err := links.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	_, err = links.LinkByID(ctx, expired.ID)
	assert.ErrorIs(t, err, app_errors.ErrLinkNotFound)

	ok, err := links.DeleteLink(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = links.DeleteLink(ctx, live.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
