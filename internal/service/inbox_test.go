package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/repository/memory"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

func addNotification(t *testing.T, store *memory.Store, userID uint64, created time.Time, title string) model.Notification {
	t.Helper()
	n := model.Notification{
		RecipientUserID: userID,
		Kind:            model.KindGeneral,
		Title:           title,
		Message:         title,
		CreatedAt:       created,
		ExpiresAt:       created.Add(model.NotificationTTL),
	}
	require.NoError(t, store.CreateNotification(context.Background(), &n))
	return n
}

func TestInbox(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clock := newClock(at(monday, 12, 0))
	in := service.NewInbox(store, clock)

	older := addNotification(t, store, 1, at(monday, 9, 0), "older")
	newer := addNotification(t, store, 1, at(monday, 10, 0), "newer")
	other := addNotification(t, store, 2, at(monday, 10, 0), "someone else")

	page, err := in.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, newer.ID, page.Items[0].ID)
	assert.Equal(t, older.ID, page.Items[1].ID)
	assert.Equal(t, 2, page.Unread)

	_, err = in.MarkRead(ctx, other.ID, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)

	got, err := in.MarkRead(ctx, older.ID, 1)
	require.NoError(t, err)
	assert.True(t, got.Read)

	n, err := in.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	page, err = in.List(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, page.Unread)

	assert.ErrorIs(t, in.Delete(ctx, other.ID, 1), service.ErrNotFound)
	require.NoError(t, in.Delete(ctx, newer.ID, 1))
	page, err = in.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestInboxPurgeExpired(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clock := newClock(at(monday, 12, 0))
	in := service.NewInbox(store, clock)

	addNotification(t, store, 1, at(monday, 9, 0), "a")
	addNotification(t, store, 1, at(monday, 11, 0), "b")

	n, err := in.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.Set(at(tuesday, 10, 0))
	n, err = in.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	page, err := in.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].Title)
}
