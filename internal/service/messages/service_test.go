package messages

import (
	"RoleChat/internal/app_errors"
	"RoleChat/internal/models"
	"RoleChat/internal/service/permissions"
	"RoleChat/internal/storage/memory"
	"RoleChat/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *memory.Store
	service *MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	log := logger.NewDiscard()
	checker := permissions.NewChecker(log, store.Users())
	return &fixture{
		store:   store,
		service: NewMessageService(log, store.Messages(), checker),
	}
}

func (f *fixture) user(t *testing.T, name string, role models.Role) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	u, err := f.store.Users().CreateUser(ctx, models.User{Name: name, Email: strings.ToLower(name) + "@example.com"})
	require.NoError(t, err)
	require.NoError(t, f.store.Users().SetRole(ctx, u.ID, role))
	return u.ID
}

// fakeIndex is a substring index over message bodies.
type fakeIndex struct {
	mu        sync.Mutex
	docs      map[uuid.UUID]string
	failIndex bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[uuid.UUID]string)}
}

func (i *fakeIndex) Index(_ context.Context, msg models.Message) error {
	if i.failIndex {
		return errors.New("index unavailable")
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs[msg.ID] = msg.Body
	return nil
}

func (i *fakeIndex) Delete(_ context.Context, id uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.docs, id)
	return nil
}

func (i *fakeIndex) Search(_ context.Context, query string, size int) ([]uuid.UUID, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var ids []uuid.UUID
	for id, body := range i.docs {
		if strings.Contains(body, query) && len(ids) < size {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func TestSendAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	writer := f.user(t, "Writer", models.WriteRole)
	reader := f.user(t, "Reader", models.ReadRole)

	require.NoError(t, f.service.Send(ctx, writer, "hello"))

	views, err := f.service.List(ctx, reader)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "hello", views[0].Body)
	assert.Equal(t, writer, views[0].UserID)
	assert.Equal(t, "Writer", views[0].Author)
	assert.False(t, views[0].CreatedAt.IsZero())
}

func TestSendAcceptsEmptyBody(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	writer := f.user(t, "Writer", models.WriteRole)

	require.NoError(t, f.service.Send(ctx, writer, ""))

	views, err := f.service.List(ctx, writer)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "", views[0].Body)
}

func TestReaderCannotSend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reader := f.user(t, "Reader", models.ReadRole)

	err := f.service.Send(ctx, reader, "hi")
	assert.ErrorIs(t, err, app_errors.ErrInsufficientPermissions)

	views, err := f.service.List(ctx, reader)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestWriterCannotDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	writer := f.user(t, "Writer", models.WriteRole)

	require.NoError(t, f.service.Send(ctx, writer, "keep me"))
	views, err := f.service.List(ctx, writer)
	require.NoError(t, err)
	require.Len(t, views, 1)

	err = f.service.Delete(ctx, writer, views[0].ID)
	assert.ErrorIs(t, err, app_errors.ErrInsufficientPermissions)

	views, err = f.service.List(ctx, writer)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestAdminDeletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.user(t, "Admin", models.AdminRole)

	require.NoError(t, f.service.Send(ctx, admin, "first"))
	require.NoError(t, f.service.Send(ctx, admin, "second"))
	views, err := f.service.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, views, 2)

	require.NoError(t, f.service.Delete(ctx, admin, views[0].ID))

	after, err := f.service.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, views[1].ID, after[0].ID)
}

func TestDeleteUnknownMessageSucceeds(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "Admin", models.AdminRole)

	assert.NoError(t, f.service.Delete(context.Background(), admin, uuid.New()))
}

func TestAnonymousCallsAreRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.List(ctx, uuid.Nil)
	assert.ErrorIs(t, err, app_errors.ErrNotSignedIn)
	assert.ErrorIs(t, f.service.Send(ctx, uuid.Nil, "x"), app_errors.ErrNotSignedIn)
	assert.ErrorIs(t, f.service.Delete(ctx, uuid.Nil, uuid.New()), app_errors.ErrNotSignedIn)
}

func TestUserWithoutRoleIsDenied(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u, err := f.store.Users().CreateUser(ctx, models.User{Email: "nobody@example.com"})
	require.NoError(t, err)

	_, err = f.service.List(ctx, u.ID)
	assert.ErrorIs(t, err, app_errors.ErrInsufficientPermissions)
}

func TestListIsNewestFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	writer := f.user(t, "Writer", models.WriteRole)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var n int
	f.store.SetClock(func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	})

	const total = ListLimit + 5
	for i := 0; i < total; i++ {
		require.NoError(t, f.service.Send(ctx, writer, fmt.Sprintf("m%d", i)))
	}

	views, err := f.service.List(ctx, writer)
	require.NoError(t, err)
	require.Len(t, views, ListLimit)
	assert.Equal(t, fmt.Sprintf("m%d", total-1), views[0].Body)
	assert.Equal(t, "m5", views[len(views)-1].Body)
	for i := 1; i < len(views); i++ {
		assert.False(t, views[i].CreatedAt.After(views[i-1].CreatedAt))
	}
}

func TestRoleChangeAppliesImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.user(t, "Promoted", models.ReadRole)

	assert.ErrorIs(t, f.service.Send(ctx, id, "nope"), app_errors.ErrInsufficientPermissions)
	require.NoError(t, f.store.Users().SetRole(ctx, id, models.WriteRole))
	assert.NoError(t, f.service.Send(ctx, id, "yes"))
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	idx := newFakeIndex()
	f.service.WithSearch(idx)
	require.True(t, f.service.SearchEnabled())

	admin := f.user(t, "Admin", models.AdminRole)
	reader := f.user(t, "Reader", models.ReadRole)
	require.NoError(t, f.service.Send(ctx, admin, "deploy at noon"))
	require.NoError(t, f.service.Send(ctx, admin, "lunch?"))

	views, err := f.service.Search(ctx, reader, "deploy")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "deploy at noon", views[0].Body)

	views, err = f.service.Search(ctx, reader, "   ")
	require.NoError(t, err)
	assert.Empty(t, views)

	require.NoError(t, f.service.Delete(ctx, admin, messageIDByBody(t, f, admin, "deploy at noon")))
	views, err = f.service.Search(ctx, reader, "deploy")
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = f.service.Search(ctx, uuid.Nil, "lunch")
	assert.ErrorIs(t, err, app_errors.ErrNotSignedIn)
}

func messageIDByBody(t *testing.T, f *fixture, caller uuid.UUID, body string) uuid.UUID {
	t.Helper()
	views, err := f.service.List(context.Background(), caller)
	require.NoError(t, err)
	for _, v := range views {
		if v.Body == body {
			return v.ID
		}
	}
	t.Fatalf("message %q not found", body)
	return uuid.Nil
}

func TestSearchDisabled(t *testing.T) {
	f := newFixture(t)
	reader := f.user(t, "Reader", models.ReadRole)

	_, err := f.service.Search(context.Background(), reader, "x")
	assert.ErrorIs(t, err, app_errors.ErrFeatureDisabled)
}

func TestSendSurvivesIndexFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	idx := newFakeIndex()
	idx.failIndex = true
	f.service.WithSearch(idx)
	writer := f.user(t, "Writer", models.WriteRole)

	require.NoError(t, f.service.Send(ctx, writer, "stored anyway"))
	views, err := f.service.List(ctx, writer)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}
