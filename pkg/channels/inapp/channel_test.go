package inapp_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/channels/inapp"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newChannel(t *testing.T, opts ...inapp.Option) (*inapp.Channel, *notifications.MemoryStorage) {
	t.Helper()
	storage := notifications.NewMemoryStorage()
	opts = append([]inapp.Option{
		inapp.WithClock(func() time.Time { return fixedNow }),
		inapp.WithLogger(logger.Discard()),
	}, opts...)
	ch := inapp.New(storage, opts...)
	t.Cleanup(func() { _ = ch.Close() })
	return ch, storage
}

func newNotification(t *testing.T, userID string) notifications.Notification {
	t.Helper()
	n, err := notifications.New("Daily check-in", "How are you today?",
		notifications.DeliveryInApp, notifications.CategoryReminder,
		notifications.WithUserID(userID))
	require.NoError(t, err)
	return n
}

func receive(t *testing.T, sub *inapp.Subscription) inapp.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
	return inapp.Event{}
}

func TestChannel_Send(t *testing.T) {
	t.Parallel()

	t.Run("stores in recipient inbox and publishes", func(t *testing.T) {
		t.Parallel()
		ch, _ := newChannel(t)
		ctx := context.Background()

		sub := ch.Subscribe(ctx, "user-1")
		other := ch.Subscribe(ctx, "user-2")

		n := newNotification(t, "user-1")
		require.NoError(t, ch.Send(ctx, n))

		ev := receive(t, sub)
		assert.Equal(t, inapp.EventNotification, ev.Type)
		assert.Equal(t, n.ID, ev.NotificationID)
		assert.Equal(t, fixedNow, ev.At)
		require.NotNil(t, ev.Notification)
		assert.Equal(t, n.Title, ev.Notification.Title)

		select {
		case ev := <-other.Events():
			t.Fatalf("unexpected event for other user: %+v", ev)
		default:
		}

		list, err := ch.List(ctx, "user-1", notifications.ListOptions{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, n.ID, list[0].ID)
	})

	t.Run("missing recipient uses default inbox", func(t *testing.T) {
		t.Parallel()
		ch, _ := newChannel(t, inapp.WithDefaultUserID("local"))
		ctx := context.Background()

		require.NoError(t, ch.Send(ctx, newNotification(t, "")))

		count, err := ch.CountUnread(ctx, "local")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = ch.CountUnread(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("storage failure is a channel error", func(t *testing.T) {
		t.Parallel()
		storage := failingStorage{Storage: notifications.NewMemoryStorage(), err: errors.New("disk full")}
		ch := inapp.New(storage, inapp.WithLogger(logger.Discard()))

		n := newNotification(t, "user-1")
		err := ch.Send(context.Background(), n)
		require.Error(t, err)
		assert.ErrorIs(t, err, notifications.ErrChannel)

		var chErr *notifications.ChannelError
		require.ErrorAs(t, err, &chErr)
		assert.Equal(t, notifications.DeliveryInApp, chErr.Channel)
		assert.Equal(t, n.ID, chErr.NotificationID)
	})
}

func TestChannel_CancelSent(t *testing.T) {
	t.Parallel()
	ch, _ := newChannel(t)
	ctx := context.Background()

	n := newNotification(t, "user-1")
	require.NoError(t, ch.Send(ctx, n))

	sub := ch.Subscribe(ctx, "user-1")
	require.NoError(t, ch.CancelSent(ctx, n.ID))

	ev := receive(t, sub)
	assert.Equal(t, inapp.EventWithdrawn, ev.Type)
	assert.Equal(t, n.ID, ev.NotificationID)
	assert.Equal(t, "user-1", ev.UserID)

	list, err := ch.List(ctx, "user-1", notifications.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.NoError(t, ch.CancelSent(ctx, "unknown"), "unknown ids are a no-op")
}

func TestChannel_CancelAllSent(t *testing.T) {
	t.Parallel()
	ch, _ := newChannel(t)
	ctx := context.Background()

	n := newNotification(t, "user-1")
	require.NoError(t, ch.Send(ctx, n))

	a := ch.Subscribe(ctx, "user-1")
	b := ch.Subscribe(ctx, "user-2")
	require.NoError(t, ch.CancelAllSent(ctx))

	assert.Equal(t, inapp.EventCleared, receive(t, a).Type)
	assert.Equal(t, inapp.EventCleared, receive(t, b).Type)

	count, err := ch.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "history is kept")
}

func TestChannel_InboxOperations(t *testing.T) {
	t.Parallel()
	ch, _ := newChannel(t)
	ctx := context.Background()

	first := newNotification(t, "user-1")
	second := newNotification(t, "user-1")
	require.NoError(t, ch.Send(ctx, first))
	require.NoError(t, ch.Send(ctx, second))

	require.NoError(t, ch.MarkRead(ctx, "user-1", first.ID))
	require.NoError(t, ch.MarkRead(ctx, "user-1"))

	count, err := ch.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unread, err := ch.List(ctx, "user-1", notifications.ListOptions{OnlyUnread: true})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)

	require.NoError(t, ch.Dismiss(ctx, "user-1", second.ID))
	visible, err := ch.List(ctx, "user-1", notifications.ListOptions{SkipDismissed: true})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, first.ID, visible[0].ID)
}

type failingStorage struct {
	notifications.Storage
	err error
}

func (s failingStorage) Create(context.Context, notifications.Notification) error { return s.err }
