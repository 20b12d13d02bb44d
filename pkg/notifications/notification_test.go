package notifications_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("generates unique ids", func(t *testing.T) {
		t.Parallel()

		a, err := notifications.New("a", "body", notifications.DeliveryPush, notifications.CategorySystem)
		require.NoError(t, err)
		b, err := notifications.New("b", "body", notifications.DeliveryPush, notifications.CategorySystem)
		require.NoError(t, err)

		assert.NotEmpty(t, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
		assert.Equal(t, notifications.PriorityNormal, a.Priority)
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		n, err := notifications.New("Goal", "Done", notifications.DeliveryEmail, notifications.CategoryAchievement,
			notifications.WithCreatedAt(created),
			notifications.WithTTL(time.Hour),
			notifications.WithUserID("user-1"),
			notifications.WithDeepLink("app://goals"),
			notifications.WithGroupID("goals"),
			notifications.WithPriority(notifications.PriorityCritical),
			notifications.WithExtraData("STREAK", "7"),
		)
		require.NoError(t, err)

		require.NotNil(t, n.ExpiresAt)
		assert.Equal(t, created.Add(time.Hour), *n.ExpiresAt)
		assert.Equal(t, "user-1", n.UserID)
		assert.Equal(t, "app://goals", n.DeepLink)
		assert.Equal(t, "goals", n.GroupID)
		assert.Equal(t, notifications.PriorityCritical, n.Priority)
		assert.Equal(t, map[string]string{"STREAK": "7"}, n.ExtraData)
	})

	t.Run("rejects expiry before creation", func(t *testing.T) {
		t.Parallel()

		created := time.Now()
		_, err := notifications.New("x", "y", notifications.DeliveryInApp, notifications.CategoryUpdate,
			notifications.WithCreatedAt(created),
			notifications.WithExpiresAt(created.Add(-time.Second)),
		)
		assert.ErrorIs(t, err, notifications.ErrInvalidNotification)
	})
}

func TestNotification_Validate(t *testing.T) {
	t.Parallel()

	valid := notifications.Notification{
		ID:           "n-1",
		DeliveryType: notifications.DeliveryPush,
		Category:     notifications.CategoryReminder,
		Priority:     notifications.PriorityLow,
		CreatedAt:    time.Now(),
	}

	tests := []struct {
		name    string
		mutate  func(*notifications.Notification)
		wantErr bool
	}{
		{name: "valid", mutate: func(*notifications.Notification) {}},
		{name: "missing id", mutate: func(n *notifications.Notification) { n.ID = "" }, wantErr: true},
		{name: "unknown delivery type", mutate: func(n *notifications.Notification) { n.DeliveryType = "sms" }, wantErr: true},
		{name: "unknown category", mutate: func(n *notifications.Notification) { n.Category = "news" }, wantErr: true},
		{name: "priority out of range", mutate: func(n *notifications.Notification) { n.Priority = 9 }, wantErr: true},
		{
			name: "expiry equal to creation",
			mutate: func(n *notifications.Notification) {
				at := n.CreatedAt
				n.ExpiresAt = &at
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := valid
			tt.mutate(&n)
			err := n.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, notifications.ErrInvalidNotification)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNotification_IsExpired(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	n := notifications.Notification{ExpiresAt: &expiry}

	assert.False(t, n.IsExpired(expiry.Add(-time.Second)))
	assert.False(t, n.IsExpired(expiry), "expiry is strict")
	assert.True(t, n.IsExpired(expiry.Add(time.Nanosecond)))
	assert.False(t, notifications.Notification{}.IsExpired(expiry.Add(100*time.Hour)))
}

func TestChannelError(t *testing.T) {
	t.Parallel()

	cause := errors.New("gateway timeout")
	err := error(notifications.NewChannelError(notifications.DeliveryPush, "n-1", cause))

	assert.ErrorIs(t, err, notifications.ErrChannel)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "n-1")

	var chErr *notifications.ChannelError
	require.ErrorAs(t, err, &chErr)
	assert.Equal(t, notifications.DeliveryPush, chErr.Channel)
}

func TestCategory_Valid(t *testing.T) {
	t.Parallel()

	for _, c := range notifications.Categories {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, notifications.Category("marketing").Valid())
	assert.Equal(t, "critical", notifications.PriorityCritical.String())
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	for _, p := range []notifications.Priority{notifications.PriorityLow, notifications.PriorityNormal, notifications.PriorityHigh, notifications.PriorityCritical} {
		got, err := notifications.ParsePriority(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := notifications.ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, notifications.PriorityNormal, got)

	_, err = notifications.ParsePriority("urgent")
	assert.ErrorIs(t, err, notifications.ErrInvalidNotification)
}

func TestWithID(t *testing.T) {
	t.Parallel()

	n, err := notifications.New("t", "b", notifications.DeliveryPush, notifications.CategorySystem, notifications.WithID("client-1"))
	require.NoError(t, err)
	assert.Equal(t, "client-1", n.ID)

	n, err = notifications.New("t", "b", notifications.DeliveryPush, notifications.CategorySystem, notifications.WithID(""))
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
}
