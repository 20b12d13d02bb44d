package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inboxItem(id, userID string, category Category, created time.Time) Notification {
	return Notification{
		ID:           id,
		UserID:       userID,
		Title:        "title " + id,
		DeliveryType: DeliveryInApp,
		Category:     category,
		CreatedAt:    created,
	}
}

func TestMemoryStorage_CreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	require.NoError(t, s.Create(ctx, inboxItem("n-1", "user-1", CategorySystem, time.Now())))

	got, err := s.Get(ctx, "user-1", "n-1")
	require.NoError(t, err)
	assert.Equal(t, "title n-1", got.Title)

	_, err = s.Get(ctx, "user-2", "n-1")
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	assert.Error(t, s.Create(ctx, Notification{UserID: "user-1"}), "id required")
	assert.Error(t, s.Create(ctx, Notification{ID: "n-2"}), "user required")
}

func TestMemoryStorage_CreateReplacesSameID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	first := inboxItem("n-1", "user-1", CategorySystem, time.Now())
	second := first
	second.Title = "updated"

	require.NoError(t, s.Create(ctx, first))
	require.NoError(t, s.Create(ctx, second))

	list, err := s.List(ctx, "user-1", ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "updated", list[0].Title)
}

func TestMemoryStorage_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	s := NewMemoryStorage()
	s.now = func() time.Time { return base.Add(time.Hour) }

	expired := inboxItem("expired", "user-1", CategorySystem, base)
	past := base.Add(time.Minute)
	expired.ExpiresAt = &past

	require.NoError(t, s.Create(ctx, inboxItem("n-1", "user-1", CategoryReminder, base)))
	require.NoError(t, s.Create(ctx, inboxItem("n-2", "user-1", CategoryPromotion, base.Add(time.Second))))
	require.NoError(t, s.Create(ctx, inboxItem("n-3", "user-1", CategoryReminder, base.Add(2*time.Second))))
	require.NoError(t, s.Create(ctx, expired))
	require.NoError(t, s.MarkRead(ctx, "user-1", "n-1"))
	require.NoError(t, s.Dismiss(ctx, "user-1", "n-2"))

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "newest first without expired", opts: ListOptions{}, want: []string{"n-3", "n-2", "n-1"}},
		{name: "only unread", opts: ListOptions{OnlyUnread: true}, want: []string{"n-3", "n-2"}},
		{name: "skip dismissed", opts: ListOptions{SkipDismissed: true}, want: []string{"n-3", "n-1"}},
		{name: "by category", opts: ListOptions{Categories: []Category{CategoryReminder}}, want: []string{"n-3", "n-1"}},
		{name: "pagination", opts: ListOptions{Limit: 1, Offset: 1}, want: []string{"n-2"}},
		{name: "offset past end", opts: ListOptions{Offset: 10}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			list, err := s.List(ctx, "user-1", tt.opts)
			require.NoError(t, err)
			ids := make([]string, 0, len(list))
			for _, n := range list {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMemoryStorage_DeleteAndCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Create(ctx, inboxItem(id, "user-1", CategoryActivity, time.Now())))
	}
	require.NoError(t, s.Create(ctx, inboxItem("d", "user-2", CategoryActivity, time.Now())))

	count, err := s.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, s.Delete(ctx, "user-1", "a"))
	owner, err := s.DeleteByID(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "user-2", owner)

	_, err = s.DeleteByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	count, err = s.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = s.CountUnread(ctx, "user-2")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryStorage_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('A' + i))
			_ = s.Create(ctx, inboxItem(id, "user-1", CategorySystem, time.Now()))
			_, _ = s.List(ctx, "user-1", ListOptions{})
			_ = s.MarkRead(ctx, "user-1", id)
		}(i)
	}
	wg.Wait()

	count, err := s.CountUnread(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}
