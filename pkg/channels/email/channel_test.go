package email_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	emailchannel "github.com/dmitrymomot/notifykit/pkg/channels/email"
	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/templates"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	return m.Called(ctx, params).Error(0)
}

func address(addr string) emailchannel.AddressFunc {
	return func() (string, bool) { return addr, addr != "" }
}

func newChannel(t *testing.T, sender email.EmailSender, addr string) *emailchannel.Channel {
	t.Helper()
	set := templates.Default(templates.WithClock(func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}))
	return emailchannel.New(sender, address(addr),
		emailchannel.WithTemplates(set),
		emailchannel.WithLogger(logger.Discard()))
}

func TestChannel_Send(t *testing.T) {
	t.Parallel()

	t.Run("renders category template", func(t *testing.T) {
		t.Parallel()
		sender := &mockSender{}
		var got email.SendEmailParams
		sender.On("SendEmail", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(email.SendEmailParams) }).
			Return(nil).Once()

		n, err := notifications.New("Breathing <break>", "Take 5 & relax",
			notifications.DeliveryEmail, notifications.CategoryReminder)
		require.NoError(t, err)

		require.NoError(t, newChannel(t, sender, "user@example.com").Send(context.Background(), n))
		sender.AssertExpectations(t)

		assert.Equal(t, "user@example.com", got.SendTo)
		assert.Equal(t, "Reminder: Breathing <break>", got.Subject)
		assert.Equal(t, "reminder", got.Tag)
		assert.Contains(t, got.BodyHTML, "Breathing &lt;break&gt;")
		assert.Contains(t, got.BodyHTML, "Take 5 &amp; relax")
		assert.Contains(t, got.BodyHTML, "14.03.2026 09:30")
	})

	t.Run("missing address reports no recipient", func(t *testing.T) {
		t.Parallel()
		sender := &mockSender{}

		n, err := notifications.New("t", "b", notifications.DeliveryEmail, notifications.CategorySystem)
		require.NoError(t, err)

		err = newChannel(t, sender, "").Send(context.Background(), n)
		assert.ErrorIs(t, err, notifications.ErrNoRecipient)
		assert.NotErrorIs(t, err, notifications.ErrChannel)
		sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("sender failure is a channel error", func(t *testing.T) {
		t.Parallel()
		sender := &mockSender{}
		sender.On("SendEmail", mock.Anything, mock.Anything).
			Return(errors.Join(email.ErrFailedToSendEmail, errors.New("422"))).Once()

		n, err := notifications.New("t", "b", notifications.DeliveryEmail, notifications.CategoryUpdate)
		require.NoError(t, err)

		err = newChannel(t, sender, "user@example.com").Send(context.Background(), n)
		require.Error(t, err)
		assert.ErrorIs(t, err, notifications.ErrChannel)
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	})
}

func TestChannel_CancelSent(t *testing.T) {
	t.Parallel()
	sender := &mockSender{}
	assert.NoError(t, newChannel(t, sender, "user@example.com").CancelSent(context.Background(), "any"))
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}

func TestChannel_ExtraDataIsEscapedInBody(t *testing.T) {
	t.Parallel()
	set, err := templates.Parse([]byte(`
fallback: system
categories:
  system:
    subject: "{TITLE} for {name}"
    body: "<p>Hi {name}</p>"
`))
	require.NoError(t, err)

	sender := &mockSender{}
	var got email.SendEmailParams
	sender.On("SendEmail", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(email.SendEmailParams) }).
		Return(nil).Once()

	ch := emailchannel.New(sender, address("user@example.com"),
		emailchannel.WithTemplates(set),
		emailchannel.WithLogger(logger.Discard()))

	n, err := notifications.New("News", "b", notifications.DeliveryEmail, notifications.CategorySystem,
		notifications.WithExtraData("name", "<Ann>"))
	require.NoError(t, err)
	require.NoError(t, ch.Send(context.Background(), n))

	assert.Equal(t, "News for <Ann>", got.Subject)
	assert.Equal(t, "<p>Hi &lt;Ann&gt;</p>", got.BodyHTML)
	assert.Equal(t, "<Ann>", n.ExtraData["name"], "caller data is not mutated")
}
