package templates_test

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/templates"
)

var fixed = time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)

func clock() time.Time { return fixed }

func TestRender(t *testing.T) {
	t.Parallel()

	set, err := templates.Parse([]byte(`
fallback: system
categories:
  system:
    subject: "[{CATEGORY}] {TITLE}"
    body: "{MESSAGE} at {TIMESTAMP}"
  reminder:
    subject: "Reminder: {TITLE}"
    body: "{MESSAGE} for {name}, see {missing}"
`), templates.WithClock(clock))
	require.NoError(t, err)

	t.Run("category template with extra data", func(t *testing.T) {
		t.Parallel()
		n := notifications.Notification{
			Title:     "Standup",
			Body:      "Daily sync",
			Category:  notifications.CategoryReminder,
			ExtraData: map[string]string{"name": "Sam"},
		}
		msg := set.Render(n)
		assert.Equal(t, "Reminder: Standup", msg.Subject)
		assert.Equal(t, "Daily sync for Sam, see {missing}", msg.Body)
	})

	t.Run("fallback template", func(t *testing.T) {
		t.Parallel()
		n := notifications.Notification{
			Title:    "Level up",
			Body:     "You reached level 3",
			Category: notifications.CategoryAchievement,
		}
		msg := set.Render(n)
		assert.Equal(t, "[Achievement] Level up", msg.Subject)
		assert.Equal(t, "You reached level 3 at 02.03.2026 09:05", msg.Body)
	})
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	_, err := templates.Parse([]byte("categories: [oops"))
	require.ErrorIs(t, err, templates.ErrParseTemplates)

	_, err = templates.Parse([]byte(`
categories:
  bogus:
    subject: x
`))
	require.ErrorIs(t, err, templates.ErrUnknownCategory)

	_, err = templates.Parse([]byte(`
fallback: update
categories:
  system:
    subject: x
`))
	require.ErrorIs(t, err, templates.ErrMissingFallback)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"mail.yaml": {Data: []byte("categories:\n  system:\n    subject: \"{TITLE}!\"\n")},
	}
	set, err := templates.Load(fsys, "mail.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Hi!", set.Render(notifications.Notification{Title: "Hi", Category: notifications.CategoryUpdate}).Subject)

	_, err = templates.Load(fsys, "missing.yaml")
	require.ErrorIs(t, err, templates.ErrParseTemplates)
}

func TestDefaultCoversEveryCategory(t *testing.T) {
	t.Parallel()

	set := templates.Default(templates.WithClock(clock))
	for _, c := range notifications.Categories {
		msg := set.Render(notifications.Notification{Title: "T", Body: "B", Category: c})
		assert.NotEmpty(t, msg.Subject, c)
		assert.Contains(t, msg.Body, "B", c)
		assert.NotContains(t, msg.Body, "{MESSAGE}", c)
	}
}
