package sweeper

import (
	"RoleChat/internal/models"
	"RoleChat/internal/storage/memory"
	"RoleChat/pkg/logger"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenRepo struct{}

func (brokenRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func TestNewRejectsBadCron(t *testing.T) {
	_, err := New(logger.NewDiscard(), "every ten minutes")
	assert.Error(t, err)

	_, err = New(logger.NewDiscard(), "*/10 * * * *")
	assert.NoError(t, err)
}

func TestRunOnceRemovesExpiredLinks(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	links := store.Links()
	now := time.Now()

	require.NoError(t, links.CreateLink(ctx, models.LoginLink{ID: uuid.New(), Email: "a@example.com", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, links.CreateLink(ctx, models.LoginLink{ID: uuid.New(), Email: "b@example.com", ExpiresAt: now.Add(-time.Second)}))
	live := uuid.New()
	require.NoError(t, links.CreateLink(ctx, models.LoginLink{ID: live, Email: "c@example.com", ExpiresAt: now.Add(time.Hour)}))

	s, err := New(logger.NewDiscard(), "* * * * *",
		Target{Kind: "login_links", Repo: links},
		Target{Kind: "refresh_tokens", Repo: store.Tokens()},
	)
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	removed := s.RunOnce(ctx)
	assert.Equal(t, map[string]int64{"login_links": 2, "refresh_tokens": 0}, removed)

	_, err = links.LinkByID(ctx, live)
	assert.NoError(t, err)
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	links := memory.New().Links()
	require.NoError(t, links.CreateLink(ctx, models.LoginLink{ID: uuid.New(), ExpiresAt: time.Now().Add(-time.Hour)}))

	s, err := New(logger.NewDiscard(), "* * * * *",
		Target{Kind: "broken", Repo: brokenRepo{}},
		Target{Kind: "login_links", Repo: links},
	)
	require.NoError(t, err)

	removed := s.RunOnce(ctx)
	assert.NotContains(t, removed, "broken")
	assert.Equal(t, int64(1), removed["login_links"])
}

func TestRunOnceSkipsOverlap(t *testing.T) {
	s, err := New(logger.NewDiscard(), "* * * * *")
	require.NoError(t, err)

	s.running = true
	assert.Nil(t, s.RunOnce(context.Background()))

	s.running = false
	assert.NotNil(t, s.RunOnce(context.Background()))
}
